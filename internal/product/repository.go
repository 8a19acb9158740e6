package product

type Repository interface {
	GetByID(id int) (Product, error)
	ListByIDs(ids []int) ([]Product, error)

	// DecrementStock applies a single atomic check-and-subtract. It must
	// fail when current stock < qty and flip status to sold_out in the
	// same statement when the decrement exhausts the stock.
	DecrementStock(id, qty int) error

	// IncrementSales bumps the running sales counter. Never decremented.
	IncrementSales(id, qty int) error
}
