package order

import "time"

// Item is one line of an order. UnitPrice is snapshotted from the catalog
// at creation time and never recomputed; it is the financial contract
// with the buyer. Options is an opaque bag the core passes through
// without interpretation (size, colour, personalization, ...).
type Item struct {
	ProductID int            `json:"productId"`
	Quantity  int            `json:"quantity"`
	UnitPrice float64        `json:"unitPrice"`
	Options   map[string]any `json:"options,omitempty"`
}

type Order struct {
	ID            int     `json:"orderId"`
	BuyerID       int     `json:"buyerId"`
	Items         []Item  `json:"items"`
	TotalAmount   float64 `json:"totalAmount"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`

	// gateway correlation, set once payment is initiated/verified
	RazorpayOrderID   *string `json:"razorpayOrderId,omitempty"`
	RazorpayPaymentID *string `json:"razorpayPaymentId,omitempty"`

	ShippingAddress string    `json:"shippingAddress"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

func ValidStatus(s string) bool { return validStatuses[s] }

// Item lookup by product; used by authorization and download checks.
func (o Order) ItemFor(productID int) (Item, bool) {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}
