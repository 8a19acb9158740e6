package product

// Service is the inventory ledger. Stock only exists for physical items;
// digital and service products decrement as no-ops.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}

// Decrement applies the atomic stock subtraction for a physical product.
func (s *Service) Decrement(p Product, qty int) error {
	if p.Type != TypePhysical {
		return nil
	}
	return s.repo.DecrementStock(p.ID, qty)
}

func (s *Service) IncrementSales(p Product, qty int) error {
	return s.repo.IncrementSales(p.ID, qty)
}

// ServiceInterface lets dependent packages substitute the ledger in tests.
type ServiceInterface interface {
	GetByID(id int) (Product, error)
	ListByIDs(ids []int) ([]Product, error)
	Decrement(p Product, qty int) error
	IncrementSales(p Product, qty int) error
}

var _ ServiceInterface = (*Service)(nil)
