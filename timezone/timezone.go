// Package timezone handles the fixed UTC offset labels used by voyages.
package timezone

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Label is a UTC offset of the form UTC+HH:MM
type Label string

// UTC is the default label for both ends of a voyage
const UTC Label = "UTC+00:00"

// range of offsets offered to the operator, in whole hours
const (
	minOffset = -12
	maxOffset = 14
)

var labelPattern = regexp.MustCompile(`UTC([+-])(\d{1,2}):(\d{2})`)

// Labels returns every selectable label, from UTC-12:00 to UTC+14:00.
func Labels() []Label {
	labels := make([]Label, 0, maxOffset-minOffset+1)
	for i := minOffset; i <= maxOffset; i++ {
		sign := "+"
		if i < 0 {
			sign = "-"
		}
		labels = append(labels, Label(fmt.Sprintf("UTC%s%02d:00", sign, abs(i))))
	}
	return labels
}

// Valid reports whether l is one of the selectable labels.
func (l Label) Valid() bool {
	for _, v := range Labels() {
		if v == l {
			return true
		}
	}
	return false
}

// Offset returns the offset of l in hours.
func (l Label) Offset() float64 {
	return ParseOffset(l)
}

// ParseOffset returns the signed offset in hours described by label.
// Labels that do not match the grammar are treated as UTC.
func ParseOffset(label Label) float64 {
	m := labelPattern.FindStringSubmatch(string(label))
	if m == nil {
		return 0
	}
	hours, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(m[3])
	if err != nil {
		return 0
	}
	sign := 1.0
	if m[1] == "-" {
		sign = -1
	}
	return sign * (float64(hours) + float64(minutes)/60)
}

// Convert shifts the wall clock t from one offset to another.
func Convert(t time.Time, from, to Label) time.Time {
	return t.Add(Hours(ParseOffset(to) - ParseOffset(from)))
}

// Format renders t followed by its label, e.g. "2024-01-01T13:00 UTC+03:00".
func Format(t time.Time, l Label) string {
	return t.Format("2006-01-02T15:04") + " " + string(l)
}

// Hours converts a fractional number of hours to a duration, rounded to the
// nearest nanosecond. Values beyond the range of time.Duration saturate.
func Hours(h float64) time.Duration {
	ns := math.Round(h * float64(time.Hour))
	switch {
	case ns >= math.MaxInt64:
		return math.MaxInt64
	case ns <= math.MinInt64:
		return math.MinInt64
	}
	return time.Duration(ns)
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
