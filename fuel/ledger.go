package fuel

// Ledger tracks remaining and consumed fuel per grade while a voyage is
// walked leg by leg. Balances are never clamped; a negative remaining amount
// means more was consumed than was declared on board.
type Ledger struct {
	order     []Type
	remaining map[Type]float64
	consumed  map[Type]float64
}

// NewLedger seeds a ledger from the fuel on board. Declarations without a
// positive amount are ignored and slots sharing a grade accumulate.
func NewLedger(onBoard []Quantity) *Ledger {
	l := &Ledger{
		remaining: make(map[Type]float64),
		consumed:  make(map[Type]float64),
	}
	for _, q := range onBoard {
		if q.Amount > 0 {
			l.bucket(q.Type)
			l.remaining[q.Type] += q.Amount
		}
	}
	return l
}

func (l *Ledger) bucket(t Type) {
	if _, ok := l.remaining[t]; ok {
		return
	}
	l.order = append(l.order, t)
	l.remaining[t] = 0
	l.consumed[t] = 0
}

// Apply subtracts each positive amount from the bucket of its grade. A grade
// that was never on board gets a bucket of its own, which goes negative.
func (l *Ledger) Apply(used []Quantity) {
	for _, q := range used {
		if q.Amount <= 0 {
			continue
		}
		l.bucket(q.Type)
		l.remaining[q.Type] -= q.Amount
		l.consumed[q.Type] += q.Amount
	}
}

// Remaining returns the balance of every tracked grade in the order the
// grades were first seen.
func (l *Ledger) Remaining() []Quantity {
	return l.list(l.remaining)
}

// Consumed returns the cumulative consumption of every tracked grade.
func (l *Ledger) Consumed() []Quantity {
	return l.list(l.consumed)
}

// Empty reports whether no grade is tracked.
func (l *Ledger) Empty() bool {
	return len(l.order) == 0
}

func (l *Ledger) list(m map[Type]float64) []Quantity {
	qs := make([]Quantity, 0, len(l.order))
	for _, t := range l.order {
		qs = append(qs, Quantity{Type: t, Amount: m[t]})
	}
	return qs
}
