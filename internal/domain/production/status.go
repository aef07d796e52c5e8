package production

import "github.com/shopspring/decimal"

// Status is the derived progress of an order item or a whole order
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPlanned   Status = "PLANNED"
	StatusPartial   Status = "PARTIAL"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) String() string {
	return string(s)
}

// DeriveItemStatus computes an order item's status from its three quantities.
// The checks run in order: nothing planned, nothing produced, partly produced, done.
func DeriveItemStatus(requested, planned, produced decimal.Decimal) Status {
	switch {
	case planned.IsZero():
		return StatusPending
	case produced.IsZero():
		return StatusPlanned
	case produced.LessThan(requested):
		return StatusPartial
	}
	return StatusCompleted
}

// AggregateStatus computes an order status as the least advanced of its items:
// any pending item keeps the order pending, all completed completes it, all
// planned leaves it planned, and every other mix is partial.
func AggregateStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusPending
	}
	allCompleted, allPlanned := true, true
	for _, s := range statuses {
		if s == StatusPending {
			return StatusPending
		}
		allCompleted = allCompleted && s == StatusCompleted
		allPlanned = allPlanned && s == StatusPlanned
	}
	switch {
	case allCompleted:
		return StatusCompleted
	case allPlanned:
		return StatusPlanned
	}
	return StatusPartial
}
