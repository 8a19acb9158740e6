package download

import (
	"fmt"
	"time"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
	"github.com/TheVish04/ecommerce2-sub001/internal/product"
)

// Service issues and validates digital-delivery entitlements. A grant is
// created only as a side effect of a paid order containing a digital line
// item; the order manager drives that.
type Service struct {
	repo     Repository
	products product.ServiceInterface
}

func NewService(repo Repository, products product.ServiceInterface) *Service {
	return &Service{repo: repo, products: products}
}

// Grant is idempotent on the (user, product, order) triple.
func (s *Service) Grant(userID, productID, orderID int) error {
	if userID <= 0 || productID <= 0 || orderID <= 0 {
		return apperr.ErrValidation
	}
	return s.repo.Grant(userID, productID, orderID)
}

// CheckAndConsume validates the grant gates in order (revoked, expired,
// limit), consumes one download, and returns the artifact location.
func (s *Service) CheckAndConsume(userID, productID, orderID int) (string, error) {
	a, err := s.repo.Get(userID, productID, orderID)
	if err != nil {
		return "", err
	}

	if a.IsRevoked {
		return "", apperr.ErrRevoked
	}
	if a.ExpiresAt != nil && a.ExpiresAt.Before(time.Now()) {
		return "", apperr.ErrExpired
	}
	if a.MaxDownloads != nil && a.DownloadCount >= *a.MaxDownloads {
		return "", apperr.ErrLimitReached
	}

	p, err := s.products.GetByID(productID)
	if err != nil {
		return "", err
	}
	if p.DownloadURL == nil || *p.DownloadURL == "" {
		return "", fmt.Errorf("no download artifact configured: %w", apperr.ErrNotFound)
	}

	if err := s.repo.Consume(a.ID); err != nil {
		return "", err
	}
	return *p.DownloadURL, nil
}

// Revoke disables a grant; admin only, enforced by the caller.
func (s *Service) Revoke(userID, productID, orderID, revokedBy int) error {
	return s.repo.Revoke(userID, productID, orderID, revokedBy)
}

type ServiceInterface interface {
	Grant(userID, productID, orderID int) error
	CheckAndConsume(userID, productID, orderID int) (string, error)
	Revoke(userID, productID, orderID, revokedBy int) error
}

var _ ServiceInterface = (*Service)(nil)
