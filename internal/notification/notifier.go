package notification

import "context"

// Event is the fire-and-forget payload published after a state change has
// been durably committed. Failures to publish must never surface to the
// operation that triggered them.
type Event struct {
	Kind         string         `json:"kind"`
	OrderID      int            `json:"orderId,omitempty"`
	CommissionID int            `json:"commissionId,omitempty"`
	UserID       int            `json:"userId,omitempty"`
	Amount       float64        `json:"amount,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

const (
	EventOrderPlaced         = "order.placed"
	EventOrderPaid           = "order.paid"
	EventCommissionRequested = "commission.requested"
	EventCommissionPaid      = "commission.paid"
	EventCommissionDelivered = "commission.delivered"
)

type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Noop is used in tests and when no broker is configured.
type Noop struct{}

func (Noop) Notify(context.Context, Event) {}
