package commission

import "time"

// DeliveryFile is one artifact handed over by the vendor. The list is
// append-only; submissions never replace earlier files.
type DeliveryFile struct {
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Commission is a bespoke work request. VendorID is copied from the
// referenced service at creation and frozen; reassigning the service
// later does not move existing commissions. The fee split is likewise
// computed once at verified payment and frozen on the record.
type Commission struct {
	ID           int    `json:"commissionId"`
	ServiceID    int    `json:"serviceId"`
	CustomerID   int    `json:"customerId"`
	VendorID     int    `json:"vendorId"`
	Title        string `json:"title"`
	Requirements string `json:"requirements"`

	Budget          float64        `json:"budget"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	ReferenceImages []string       `json:"referenceImages,omitempty"`
	DeliveryFiles   []DeliveryFile `json:"deliveryFiles,omitempty"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	RazorpayOrderID   *string `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID *string `json:"razorpayPaymentId,omitempty"`

	PlatformFee  *float64   `json:"platformFee,omitempty"`
	VendorAmount *float64   `json:"vendorAmount,omitempty"`
	FeePercent   *float64   `json:"feePercent,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusRejected   = "rejected"
	StatusInProgress = "in_progress"
	StatusDelivered  = "delivered"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentReleased = "released"
)

// Terminal reports whether no further transitions are allowed.
func Terminal(status string) bool {
	return status == StatusRejected || status == StatusCompleted || status == StatusCancelled
}

// vendorTransitions maps each vendor-drivable target status to the set of
// statuses it may be entered from. in_progress is additionally gated on a
// funded escrow, checked by the service.
var vendorTransitions = map[string][]string{
	StatusAccepted:   {StatusPending},
	StatusRejected:   {StatusPending},
	StatusInProgress: {StatusAccepted},
	StatusDelivered:  {StatusInProgress},
	StatusCompleted:  {StatusPending, StatusAccepted, StatusInProgress, StatusDelivered},
}

func vendorMayTransition(from, to string) bool {
	for _, s := range vendorTransitions[to] {
		if s == from {
			return true
		}
	}
	return false
}
