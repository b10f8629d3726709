// Package report renders a computed voyage for printing.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/pborman/uuid"

	"github.com/Qalifah/passageplan/fuel"
)

// Reference identifies a printed passage plan.
type Reference string

// NextReference generates a new printout reference.
func NextReference() Reference {
	return Reference("PP-" + strings.Split(strings.ToUpper(uuid.New()), "-")[0])
}

// Duration renders fractional hours as "12h 30m".
func Duration(hours float64) string {
	minutes := int64(math.Round(hours * 60))
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Distance renders nautical miles with one decimal.
func Distance(nm float64) string {
	return fmt.Sprintf("%.1f nm", nm)
}

// Speed renders knots with one decimal.
func Speed(knots float64) string {
	return fmt.Sprintf("%.1f knots", knots)
}

// Fuel lists the positive quantities as "20.0t HFO, 1.5t MDO", or "None".
func Fuel(qs []fuel.Quantity) string {
	var parts []string
	for _, q := range qs {
		if q.Amount > 0 {
			parts = append(parts, fmt.Sprintf("%.1ft %s", q.Amount, q.Type))
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}

// Balance lists every tracked grade with its sign, e.g. "-10.0t HFO, 5.0t MDO",
// or "None". Negative balances mean more was burnt than declared on board.
func Balance(qs []fuel.Quantity) string {
	if len(qs) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(qs))
	for _, q := range qs {
		parts = append(parts, fmt.Sprintf("%.1ft %s", q.Amount, q.Type))
	}
	return strings.Join(parts, ", ")
}
