package report

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/Qalifah/passageplan/eta"
	"github.com/Qalifah/passageplan/timezone"
)

const (
	lineHeight = 6.0
	pageMargin = 12.0
)

// column widths of the leg table, in mm
var legColumns = []struct {
	title string
	width float64
}{
	{"Leg", 70},
	{"Distance", 25},
	{"Total", 25},
	{"Speed", 25},
	{"Time", 20},
	{"ETA (departure tz)", 42},
	{"ETA (destination tz)", 42},
	{"Fuel Used", 24},
}

// PDF writes a printable A4 landscape passage plan for r.
func PDF(w io.Writer, ref Reference, r *eta.Result) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetTitle("Passage Plan "+string(ref), false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, lineHeight, "Reference: "+string(ref), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Departure: "+timezone.Format(r.Departure, r.DepartureTimezone), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Destination Timezone: "+string(r.DestinationTimezone), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Initial Fuel: "+Fuel(r.FuelOnBoard), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(220, 230, 241)
	for _, c := range legColumns {
		pdf.CellFormat(c.width, lineHeight+1, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, l := range r.Legs {
		cells := []string{
			tr(l.From + " - " + l.To),
			Distance(l.Distance),
			Distance(l.CumulativeDistance),
			Speed(l.Speed),
			Duration(l.TravelTime),
			timezone.Format(l.ETALocal, r.DepartureTimezone),
			timezone.Format(l.ETADestination, r.DestinationTimezone),
			Fuel(l.FuelUsed),
		}
		for i, c := range legColumns {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(c.width, lineHeight, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if s := r.Summary; s != nil {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Voyage Summary", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, row := range [][2]string{
			{"Total Distance", Distance(s.TotalDistance)},
			{"Total Time", Duration(s.TotalTime)},
			{"Departure", timezone.Format(s.Departure, r.DepartureTimezone)},
			{"Final Arrival", timezone.Format(s.FinalArrival, r.DestinationTimezone)},
			{"Total Fuel Used", Fuel(s.FuelUsed)},
			{"Fuel Remaining", Balance(s.FuelRemaining)},
		} {
			pdf.CellFormat(45, lineHeight, row[0]+":", "", 0, "L", false, 0, "")
			pdf.CellFormat(0, lineHeight, row[1], "", 1, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}
