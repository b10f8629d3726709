package planner

import (
	"sync"
	"testing"

	"github.com/go-kit/kit/metrics"
)

type observations struct {
	mtx    sync.Mutex
	values []float64
}

func (o *observations) record(v float64) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	o.values = append(o.values, v)
}

type recordingCounter struct{ *observations }

func (c recordingCounter) With(...string) metrics.Counter { return c }
func (c recordingCounter) Add(delta float64) { c.record(delta) }

type recordingHistogram struct{ *observations }

func (h recordingHistogram) With(...string) metrics.Histogram { return h }
func (h recordingHistogram) Observe(value float64) { h.record(value) }

type recordingGauge struct{ *observations }

func (g recordingGauge) With(...string) metrics.Gauge { return g }
func (g recordingGauge) Set(value float64) { g.record(value) }
func (g recordingGauge) Add(delta float64) { g.record(delta) }

func TestInstrumentingService(t *testing.T) {
	var (
		count   = recordingCounter{&observations{}}
		latency = recordingHistogram{&observations{}}
		voyages = recordingGauge{&observations{}}
	)
	s := NewInstrumentingService(count, latency, voyages, newPlanner())

	id, _ := s.CreateVoyage()
	s.AppendWaypoint(id)
	s.RemoveVoyage(id)

	if len(count.values) != 3 || len(latency.values) != 3 {
		t.Fatalf("count = %v, latency = %v", count.values, latency.values)
	}
	for _, v := range latency.values {
		if v < 0 || v >= 1 {
			t.Errorf("latency %v is not in seconds", v)
		}
	}
	if want := []float64{1, 0}; len(voyages.values) != 2 || voyages.values[0] != want[0] || voyages.values[1] != want[1] {
		t.Errorf("voyages gauge = %v, want %v", voyages.values, want)
	}
}
