package domain

// PurchaseStatus is our own type for statuses to avoid "magic strings".
type PurchaseStatus string

const (
	StatusSuccess PurchaseStatus = "success"
)

// PurchaseSucceededMessage is the message attached to every successful purchase.
const PurchaseSucceededMessage = "Tickets purchased successfully"

// PurchaseResult summarises a settled purchase.
type PurchaseResult struct {
	Status       PurchaseStatus `json:"status"`
	Message      string         `json:"message"`
	AccountID    int64          `json:"account_id"`
	TotalAmount  int            `json:"total_amount"`
	TotalSeats   int            `json:"total_seats"`
	TicketCounts TicketCounts   `json:"ticket_counts"`
}

// Pricing maps every ticket type to its unit price in whole currency units.
type Pricing struct {
	Adult  int `json:"ADULT"`
	Child  int `json:"CHILD"`
	Infant int `json:"INFANT"`
}

// PriceOf returns the unit price for t, 0 for an unknown type.
func (p Pricing) PriceOf(t TicketType) int {
	switch t {
	case TicketTypeAdult:
		return p.Adult
	case TicketTypeChild:
		return p.Child
	case TicketTypeInfant:
		return p.Infant
	}
	return 0
}

// Total is the price of all the tickets in counts. ok is false when a price is
// negative or the sum does not fit in an int.
func (p Pricing) Total(counts TicketCounts) (total int, ok bool) {
	for _, t := range TicketTypes {
		n, price := counts.Of(t), p.PriceOf(t)
		if price < 0 {
			return 0, false
		}
		if n > 0 && price > (maxCount-total)/n {
			return 0, false
		}
		total += n * price
	}
	return total, true
}
