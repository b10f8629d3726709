// Package fuel describes bunker fuel grades and keeps running fuel balances
// for a voyage.
package fuel

import (
	"errors"
	"strings"
)

// Type is a fuel grade
type Type string

// Fuel grades an operator can declare.
const (
	HFO  Type = "HFO"
	MDO  Type = "MDO"
	MGO  Type = "MGO"
	LSFO Type = "LSFO"
)

// Slots is the number of fuel declarations carried by a voyage.
const Slots = 2

// ErrUnknownType is used when a fuel grade is not recognised
var ErrUnknownType = errors.New("unknown fuel type")

// Types returns the recognised fuel grades.
func Types() []Type {
	return []Type{HFO, MDO, MGO, LSFO}
}

// Valid reports whether t is a recognised grade.
func (t Type) Valid() bool {
	for _, v := range Types() {
		if v == t {
			return true
		}
	}
	return false
}

// ParseType maps s onto a fuel grade, ignoring case and surrounding space.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrUnknownType
	}
	return t, nil
}

// Quantity is an amount of one fuel grade, in metric tons.
type Quantity struct {
	Type   Type    `json:"type"`
	Amount float64 `json:"amount"`
}

// DefaultOnBoard returns the declaration a new voyage starts with.
func DefaultOnBoard() [Slots]Quantity {
	return [Slots]Quantity{{Type: HFO}, {Type: MDO}}
}
