package fuel

import (
	"reflect"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"HFO", HFO, false},
		{"mgo", MGO, false},
		{" lsfo ", LSFO, false},
		{"MDO", MDO, false},
		{"diesel", "", true},
		{"", "", true},
	}
	for _, test := range tests {
		got, err := ParseType(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseType(%q) err = %v, wantErr %v", test.in, err, test.wantErr)
		}
		if got != test.want {
			t.Errorf("ParseType(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestNewLedgerSeeding(t *testing.T) {
	cases := []struct {
		name    string
		onBoard []Quantity
		want    []Quantity
	}{
		{"zero amounts are not tracked", []Quantity{{HFO, 0}, {MDO, 0}}, []Quantity{}},
		{"one slot", []Quantity{{HFO, 50}, {MDO, 0}}, []Quantity{{HFO, 50}}},
		{"two grades", []Quantity{{MGO, 12.5}, {HFO, 300}}, []Quantity{{MGO, 12.5}, {HFO, 300}}},
		{"same grade accumulates", []Quantity{{HFO, 20}, {HFO, 30}}, []Quantity{{HFO, 50}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := NewLedger(c.onBoard)
			if got := l.Remaining(); !reflect.DeepEqual(got, c.want) {
				t.Errorf("Remaining() = %v, want %v", got, c.want)
			}
			if l.Empty() != (len(c.want) == 0) {
				t.Errorf("Empty() = %v", l.Empty())
			}
		})
	}
}

func TestLedgerDepletion(t *testing.T) {
	l := NewLedger([]Quantity{{HFO, 50}, {MDO, 0}})

	l.Apply([]Quantity{{HFO, 20}})
	if got, want := l.Remaining(), []Quantity{{HFO, 30}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after first leg remaining = %v, want %v", got, want)
	}

	l.Apply([]Quantity{{HFO, 40}})
	if got, want := l.Remaining(), []Quantity{{HFO, -10}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("after second leg remaining = %v, want %v", got, want)
	}
	if got, want := l.Consumed(), []Quantity{{HFO, 60}}; !reflect.DeepEqual(got, want) {
		t.Errorf("consumed = %v, want %v", got, want)
	}
}

func TestLedgerUnseededGrade(t *testing.T) {
	l := NewLedger([]Quantity{{HFO, 10}})
	l.Apply([]Quantity{{MGO, 2}, {HFO, 0}, {HFO, -3}})

	want := []Quantity{{HFO, 10}, {MGO, -2}}
	if got := l.Remaining(); !reflect.DeepEqual(got, want) {
		t.Errorf("Remaining() = %v, want %v", got, want)
	}
	wantUsed := []Quantity{{HFO, 0}, {MGO, 2}}
	if got := l.Consumed(); !reflect.DeepEqual(got, wantUsed) {
		t.Errorf("Consumed() = %v, want %v", got, wantUsed)
	}
}
