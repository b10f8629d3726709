package planner

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/discard"
	stdopentracing "github.com/opentracing/opentracing-go"
)

func newTestServer() *httptest.Server {
	logger := log.NewNopLogger()
	endpoints := NewSet(newPlanner(), logger, discard.NewHistogram(), stdopentracing.NoopTracer{}, nil)
	return httptest.NewServer(MakeHandler(endpoints, stdopentracing.NoopTracer{}, nil, logger))
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestHTTPVoyageLifecycle(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := do(t, srv, "POST", "/planner/v1/voyages", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created struct {
		ID     int    `json:"id"`
		Voyage Voyage `json:"voyage"`
	}
	decode(t, resp, &created)
	if created.ID != 1 || created.Voyage.DisplayName != "Voyage #1" {
		t.Errorf("created = %+v", created)
	}

	resp = do(t, srv, "PATCH", "/planner/v1/voyages/1",
		`{"name":"Coastal","departure":"2024-01-01T00:00","destination_timezone":"UTC+03:00","fuel":[{"slot":0,"type":"lsfo","amount":100}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	do(t, srv, "POST", "/planner/v1/voyages/1/waypoints", "").Body.Close()
	resp = do(t, srv, "POST", "/planner/v1/voyages/1/waypoints", "")
	var appended struct {
		WaypointID int `json:"waypoint_id"`
	}
	decode(t, resp, &appended)
	if appended.WaypointID != 2 {
		t.Fatalf("waypoint id = %d", appended.WaypointID)
	}

	resp = do(t, srv, "PATCH", "/planner/v1/voyages/1/waypoints/2",
		`{"name":"Pilot Station","distance":50,"speed":10,"fuel":[{"slot":0,"amount":5}]}`)
	var edited struct {
		ETA struct {
			Legs []struct {
				To             string `json:"to"`
				ETADestination string `json:"eta_destination"`
			} `json:"legs"`
			Summary *struct {
				TotalDistance float64 `json:"total_distance"`
			} `json:"summary"`
		} `json:"eta"`
	}
	decode(t, resp, &edited)
	if len(edited.ETA.Legs) != 1 || edited.ETA.Legs[0].To != "Pilot Station" {
		t.Fatalf("legs = %+v", edited.ETA.Legs)
	}
	if !strings.HasPrefix(edited.ETA.Legs[0].ETADestination, "2024-01-01T08:00:00") {
		t.Errorf("eta destination = %s", edited.ETA.Legs[0].ETADestination)
	}
	if edited.ETA.Summary == nil || edited.ETA.Summary.TotalDistance != 50 {
		t.Errorf("summary = %+v", edited.ETA.Summary)
	}

	resp = do(t, srv, "GET", "/planner/v1/voyages/1/print.txt", "")
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if !strings.Contains(buf.String(), "Starting Point → Pilot Station") {
		t.Errorf("text printout:\n%s", buf.String())
	}

	resp = do(t, srv, "GET", "/planner/v1/voyages/1/print", "")
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("print content type = %s", ct)
	}

	resp = do(t, srv, "DELETE", "/planner/v1/voyages/1", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("remove status = %d", resp.StatusCode)
	}
}

func TestHTTPErrors(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	do(t, srv, "POST", "/planner/v1/voyages", "").Body.Close()

	cases := []struct {
		method, path, body string
		status             int
	}{
		{"GET", "/planner/v1/voyages/9", "", http.StatusNotFound},
		{"GET", "/planner/v1/voyages/abc", "", http.StatusNotFound},
		{"DELETE", "/planner/v1/voyages/1/waypoints/4", "", http.StatusNotFound},
		{"PATCH", "/planner/v1/voyages/1", `{"departure":"tomorrow"}`, http.StatusBadRequest},
		{"PATCH", "/planner/v1/voyages/1", `{"fuel":[{"slot":0,"type":"LNG"}]}`, http.StatusBadRequest},
		{"PATCH", "/planner/v1/voyages/1", `{"departure_timezone":"UTC+15:00"}`, http.StatusBadRequest},
		{"PATCH", "/planner/v1/voyages/1", `not json`, http.StatusBadRequest},
		{"GET", "/planner/v1/voyages/1/print", "", http.StatusConflict},
	}
	for _, c := range cases {
		resp := do(t, srv, c.method, c.path, c.body)
		resp.Body.Close()
		if resp.StatusCode != c.status {
			t.Errorf("%s %s: status = %d, want %d", c.method, c.path, resp.StatusCode, c.status)
		}
	}
}

func TestParseDeparture(t *testing.T) {
	for _, s := range []string{"2024-03-01T09:30", "2024-03-01T09:30:00", "2024-03-01T09:30:00+05:00"} {
		d, err := parseDeparture(s)
		if err != nil {
			t.Errorf("%s: %v", s, err)
			continue
		}
		if d.Hour() != 9 || d.Minute() != 30 {
			t.Errorf("%s: parsed %v", s, d)
		}
	}
	if d, err := parseDeparture(" "); err != nil || !d.IsZero() {
		t.Errorf("blank departure = %v, %v", d, err)
	}
}
