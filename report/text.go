package report

import (
	"fmt"
	"io"

	"github.com/Qalifah/passageplan/eta"
	"github.com/Qalifah/passageplan/timezone"
)

// Text writes a plain text passage plan for r.
func Text(w io.Writer, ref Reference, r *eta.Result) error {
	p := &printer{w: w}

	p.printf("PASSAGE PLAN %s\n", ref)
	p.printf("%s\n", r.Name)
	p.printf("Departure: %s\n", timezone.Format(r.Departure, r.DepartureTimezone))
	p.printf("Destination Timezone: %s\n", r.DestinationTimezone)
	p.printf("Initial Fuel: %s\n", Fuel(r.FuelOnBoard))
	if r.StartingPoint != "" {
		p.printf("Starting Point: %s\n", r.StartingPoint)
	}

	for _, l := range r.Legs {
		p.printf("\n%s → %s\n", l.From, l.To)
		p.printf("  Distance from previous waypoint: %s\n", Distance(l.Distance))
		p.printf("  Total Distance: %s\n", Distance(l.CumulativeDistance))
		p.printf("  Speed: %s\n", Speed(l.Speed))
		p.printf("  Travel Time: %s\n", Duration(l.TravelTime))
		p.printf("  ETA: %s / %s\n",
			timezone.Format(l.ETALocal, r.DepartureTimezone),
			timezone.Format(l.ETADestination, r.DestinationTimezone))
		p.printf("  Fuel Used: %s\n", Fuel(l.FuelUsed))
		p.printf("  Fuel Remaining: %s\n", Balance(l.FuelRemaining))
	}

	if s := r.Summary; s != nil {
		p.printf("\nVOYAGE SUMMARY\n")
		p.printf("  Total Distance: %s\n", Distance(s.TotalDistance))
		p.printf("  Total Time: %s\n", Duration(s.TotalTime))
		p.printf("  Final Arrival: %s\n", timezone.Format(s.FinalArrival, r.DestinationTimezone))
		p.printf("  Total Fuel Used: %s\n", Fuel(s.FuelUsed))
		p.printf("  Fuel Remaining: %s\n", Balance(s.FuelRemaining))
	}
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
