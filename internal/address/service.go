package address

import (
	"fmt"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
)

// Service manages the buyer's saved shipping destinations. Ownership is
// enforced by user-scoping every repository call, so one user can never
// read or touch another's entries.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(userID int) ([]Address, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) Create(userID int, label, line, phone string) (Address, error) {
	if line == "" {
		return Address{}, fmt.Errorf("address line required: %w", apperr.ErrValidation)
	}
	return s.repo.Create(Address{UserID: userID, Label: label, Line: line, Phone: phone})
}

func (s *Service) Update(userID, id int, label, line, phone string) (Address, error) {
	if id <= 0 || line == "" {
		return Address{}, fmt.Errorf("address id and line required: %w", apperr.ErrValidation)
	}
	return s.repo.Update(Address{ID: id, UserID: userID, Label: label, Line: line, Phone: phone})
}

func (s *Service) Delete(userID, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid address id: %w", apperr.ErrValidation)
	}
	return s.repo.Delete(userID, id)
}

// Resolve renders a saved address into the single shipping line orders
// snapshot at creation.
func (s *Service) Resolve(userID, id int) (string, error) {
	a, err := s.repo.GetByID(userID, id)
	if err != nil {
		return "", err
	}
	if a.Phone != "" {
		return a.Line + " (" + a.Phone + ")", nil
	}
	return a.Line, nil
}
