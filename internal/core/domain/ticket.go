package domain

import "fmt"

// TicketType is a closed set of ticket categories. The zero value is not a valid type.
type TicketType int

const (
	TicketTypeAdult TicketType = iota + 1
	TicketTypeChild
	TicketTypeInfant
)

// TicketTypes lists every valid ticket type in display order.
var TicketTypes = []TicketType{TicketTypeAdult, TicketTypeChild, TicketTypeInfant}

func (t TicketType) String() string {
	switch t {
	case TicketTypeAdult:
		return "ADULT"
	case TicketTypeChild:
		return "CHILD"
	case TicketTypeInfant:
		return "INFANT"
	default:
		return fmt.Sprintf("TicketType(%d)", int(t))
	}
}

// Valid reports whether t is one of the known ticket types.
func (t TicketType) Valid() bool {
	switch t {
	case TicketTypeAdult, TicketTypeChild, TicketTypeInfant:
		return true
	}
	return false
}

// OccupiesSeat reports whether a ticket of this type needs its own seat.
// Infants sit on an adult's lap.
func (t TicketType) OccupiesSeat() bool {
	return t == TicketTypeAdult || t == TicketTypeChild
}

// ParseTicketType converts the text form ("ADULT", "CHILD", "INFANT") into a TicketType.
func ParseTicketType(s string) (TicketType, error) {
	for _, t := range TicketTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, NewInvalidPurchase("Invalid ticket type: %s", s)
}

func (t TicketType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, NewInvalidPurchase("Invalid ticket type: %s", t)
	}
	return []byte(t.String()), nil
}

func (t *TicketType) UnmarshalText(text []byte) error {
	parsed, err := ParseTicketType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TicketTypeRequest asks for a number of tickets of a single type.
// It is a value type with no setters.
type TicketTypeRequest struct {
	ticketType TicketType
	quantity   int
}

func NewTicketTypeRequest(ticketType TicketType, quantity int) TicketTypeRequest {
	return TicketTypeRequest{ticketType: ticketType, quantity: quantity}
}

func (r TicketTypeRequest) Type() TicketType { return r.ticketType }

func (r TicketTypeRequest) Quantity() int { return r.quantity }

func (r TicketTypeRequest) String() string {
	return fmt.Sprintf("%s x%d", r.ticketType, r.quantity)
}

// TicketCounts holds the aggregated number of tickets per type for one purchase.
type TicketCounts struct {
	Adult  int `json:"ADULT"`
	Child  int `json:"CHILD"`
	Infant int `json:"INFANT"`
}

// Of returns the count for the given type, 0 for an unknown type.
func (c TicketCounts) Of(t TicketType) int {
	switch t {
	case TicketTypeAdult:
		return c.Adult
	case TicketTypeChild:
		return c.Child
	case TicketTypeInfant:
		return c.Infant
	}
	return 0
}

// Add returns a copy of c with n more tickets of type t.
// Counts saturate at maxCount instead of overflowing.
func (c TicketCounts) Add(t TicketType, n int) TicketCounts {
	switch t {
	case TicketTypeAdult:
		c.Adult = saturatingAdd(c.Adult, n)
	case TicketTypeChild:
		c.Child = saturatingAdd(c.Child, n)
	case TicketTypeInfant:
		c.Infant = saturatingAdd(c.Infant, n)
	}
	return c
}

// Total is the number of tickets of all types.
func (c TicketCounts) Total() int {
	return saturatingAdd(saturatingAdd(c.Adult, c.Child), c.Infant)
}

// Seats is the number of seats to reserve.
func (c TicketCounts) Seats() int {
	seats := 0
	for _, t := range TicketTypes {
		if t.OccupiesSeat() {
			seats = saturatingAdd(seats, c.Of(t))
		}
	}
	return seats
}

const maxCount = int(^uint(0) >> 1)

func saturatingAdd(a, b int) int {
	if b > 0 && a > maxCount-b {
		return maxCount
	}
	return a + b
}

// CountTickets folds a list of requests into per-type totals.
func CountTickets(requests []TicketTypeRequest) TicketCounts {
	var counts TicketCounts
	for _, r := range requests {
		counts = counts.Add(r.Type(), r.Quantity())
	}
	return counts
}
