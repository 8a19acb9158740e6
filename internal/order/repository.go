package order

type Repository interface {
	// Create persists the order and its items in one transaction and
	// returns the stored record with its assigned id.
	Create(o Order) (Order, error)

	GetByID(id int) (Order, error)
	ListByBuyer(buyerID int) ([]Order, error)
	UpdateStatus(id int, status string) error

	// FindByGatewayPayment looks an order up by its gateway correlation
	// ids; used to make payment verification safe under retry.
	FindByGatewayPayment(externalOrderID, externalPaymentID string) (Order, bool, error)
}
