package commission

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
	"github.com/TheVish04/ecommerce2-sub001/internal/auth"
	"github.com/TheVish04/ecommerce2-sub001/internal/metrics"
	"github.com/TheVish04/ecommerce2-sub001/internal/notification"
	"github.com/TheVish04/ecommerce2-sub001/internal/payment"
	"github.com/TheVish04/ecommerce2-sub001/internal/product"
)

// Service drives the bespoke-work state machine and its escrow payment.
// feePercent is the platform rate captured at construction; the numbers
// it produces are frozen per commission at verified payment, so later
// rate changes never touch settled records.
type Service struct {
	repo       Repository
	products   product.ServiceInterface
	gateway    payment.Gateway
	notifier   notification.Notifier
	feePercent float64
}

func NewService(repo Repository, products product.ServiceInterface, gw payment.Gateway, notifier notification.Notifier, feePercent float64) *Service {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	return &Service{repo: repo, products: products, gateway: gw, notifier: notifier, feePercent: feePercent}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RequestInput carries the customer's proposal. Budget is authoritative
// for the eventual escrow amount.
type RequestInput struct {
	ServiceID       int        `json:"serviceId"`
	Title           string     `json:"title"`
	Requirements    string     `json:"requirements"`
	Budget          float64    `json:"budget"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	ReferenceImages []string   `json:"referenceImages,omitempty"`
}

// Request opens a commission against a listed service. The vendor is
// resolved from the service at this moment and frozen on the record.
func (s *Service) Request(ctx context.Context, customer auth.Principal, in RequestInput) (Commission, error) {
	if in.Budget <= 0 {
		return Commission{}, fmt.Errorf("budget must be positive: %w", apperr.ErrValidation)
	}

	svc, err := s.products.GetByID(in.ServiceID)
	if err != nil {
		return Commission{}, err
	}
	if svc.Type != product.TypeService {
		return Commission{}, fmt.Errorf("product %d is %s: %w", svc.ID, svc.Type, apperr.ErrInvalidProductType)
	}
	if !svc.Purchasable() {
		return Commission{}, fmt.Errorf("service %d: %w", svc.ID, apperr.ErrProductUnavailable)
	}

	created, err := s.repo.Create(Commission{
		ServiceID:       in.ServiceID,
		CustomerID:      customer.ID,
		VendorID:        svc.VendorID,
		Title:           in.Title,
		Requirements:    in.Requirements,
		Budget:          in.Budget,
		Deadline:        in.Deadline,
		ReferenceImages: in.ReferenceImages,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
	})
	if err != nil {
		return Commission{}, err
	}

	s.notifier.Notify(ctx, notification.Event{
		Kind:         notification.EventCommissionRequested,
		CommissionID: created.ID,
		UserID:       created.VendorID,
		Amount:       created.Budget,
	})
	return created, nil
}

// Get returns the commission to its customer or vendor only.
func (s *Service) Get(id int, requester auth.Principal) (Commission, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return Commission{}, err
	}
	if c.CustomerID != requester.ID && c.VendorID != requester.ID && !requester.IsAdmin() {
		return Commission{}, apperr.ErrNotAuthorized
	}
	return c, nil
}

func (s *Service) ListForUser(userID int) ([]Commission, error) {
	return s.repo.ListForUser(userID)
}

// UpdateStatus applies one state-machine transition. Vendors drive
// accepted/rejected/in_progress/delivered/completed; the customer may
// only cancel, and only while still pending. Entering in_progress
// requires the escrow to be funded.
func (s *Service) UpdateStatus(id int, requester auth.Principal, newStatus string) (Commission, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return Commission{}, err
	}
	if c.CustomerID != requester.ID && c.VendorID != requester.ID {
		return Commission{}, apperr.ErrNotAuthorized
	}

	switch {
	case requester.ID == c.CustomerID:
		if newStatus != StatusCancelled {
			return Commission{}, apperr.ErrNotAuthorized
		}
		if c.Status != StatusPending {
			return Commission{}, fmt.Errorf("cannot cancel from %q: %w", c.Status, apperr.ErrValidation)
		}

	default: // vendor
		if !vendorMayTransition(c.Status, newStatus) {
			return Commission{}, fmt.Errorf("cannot move %q to %q: %w", c.Status, newStatus, apperr.ErrValidation)
		}
		if newStatus == StatusInProgress && c.PaymentStatus != PaymentPaid {
			return Commission{}, apperr.ErrEscrowNotFunded
		}
	}

	if err := s.repo.UpdateStatus(id, newStatus); err != nil {
		return Commission{}, err
	}
	c.Status = newStatus
	return c, nil
}

// DeliveryInput is one file in a delivery submission.
type DeliveryInput struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// SubmitDelivery appends the vendor's files and forces the status to
// delivered regardless of the current state. The unconditional jump is
// long-standing behavior; gating it on in_progress is an open decision
// recorded in DESIGN.md.
func (s *Service) SubmitDelivery(ctx context.Context, id int, requester auth.Principal, files []DeliveryInput) (Commission, error) {
	if len(files) == 0 {
		return Commission{}, fmt.Errorf("delivery needs at least one file: %w", apperr.ErrValidation)
	}

	c, err := s.repo.GetByID(id)
	if err != nil {
		return Commission{}, err
	}
	if c.VendorID != requester.ID {
		return Commission{}, apperr.ErrNotAuthorized
	}

	now := time.Now().UTC()
	delivered := make([]DeliveryFile, 0, len(files))
	for _, f := range files {
		if f.URL == "" {
			return Commission{}, fmt.Errorf("delivery file needs a url: %w", apperr.ErrValidation)
		}
		delivered = append(delivered, DeliveryFile{URL: f.URL, Name: f.Name, SubmittedAt: now})
	}

	if err := s.repo.AppendDeliveryFiles(id, delivered, StatusDelivered); err != nil {
		return Commission{}, err
	}

	c.DeliveryFiles = append(c.DeliveryFiles, delivered...)
	c.Status = StatusDelivered
	s.notifier.Notify(ctx, notification.Event{
		Kind:         notification.EventCommissionDelivered,
		CommissionID: c.ID,
		UserID:       c.CustomerID,
	})
	return c, nil
}

// InitiateEscrowPayment reserves the commission budget with the gateway.
// Customer-only, and only once the vendor has accepted.
func (s *Service) InitiateEscrowPayment(ctx context.Context, id int, requester auth.Principal) (string, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return "", err
	}
	if c.CustomerID != requester.ID {
		return "", apperr.ErrNotAuthorized
	}
	if c.Status != StatusAccepted {
		return "", fmt.Errorf("commission is %q, not accepted: %w", c.Status, apperr.ErrValidation)
	}
	if c.PaymentStatus == PaymentPaid {
		return "", apperr.ErrAlreadyPaid
	}

	receipt := "comm_" + uuid.NewString()
	extID, err := s.gateway.CreateIntent(ctx, int64(math.Round(c.Budget*100)), "INR", receipt, map[string]string{
		"commissionId": fmt.Sprint(c.ID),
		"customerId":   fmt.Sprint(c.CustomerID),
	})
	if err != nil {
		return "", err
	}

	if err := s.repo.SetGatewayOrder(id, extID); err != nil {
		return "", err
	}
	return extID, nil
}

// VerifyEscrowPayment is idempotent: a commission already marked paid is
// returned unchanged without re-verifying. On first success the fee split
// is computed from the rate in effect right now and frozen on the record
// together with paidAt.
func (s *Service) VerifyEscrowPayment(ctx context.Context, id int, requester auth.Principal, externalOrderID, externalPaymentID, signature string) (Commission, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return Commission{}, err
	}
	if c.CustomerID != requester.ID {
		return Commission{}, apperr.ErrNotAuthorized
	}

	if c.PaymentStatus == PaymentPaid {
		return c, nil
	}

	if !s.gateway.VerifySignature(externalOrderID, externalPaymentID, signature) {
		metrics.PaymentFailures.Inc()
		return Commission{}, apperr.ErrPaymentVerificationFailed
	}

	platformFee := round2(c.Budget * s.feePercent / 100)
	vendorAmount := round2(c.Budget - platformFee)
	paidAt := time.Now().UTC()

	if err := s.repo.MarkPaid(id, externalOrderID, externalPaymentID, platformFee, vendorAmount, s.feePercent, paidAt); err != nil {
		// a concurrent verification settled the record between our read
		// and the guarded write; return what it froze
		if errors.Is(err, apperr.ErrAlreadyPaid) {
			return s.repo.GetByID(id)
		}
		return Commission{}, err
	}
	metrics.EscrowPayments.Inc()

	c.PaymentStatus = PaymentPaid
	c.RazorpayOrderID = &externalOrderID
	c.RazorpayPaymentID = &externalPaymentID
	c.PlatformFee = &platformFee
	c.VendorAmount = &vendorAmount
	fee := s.feePercent
	c.FeePercent = &fee
	c.PaidAt = &paidAt

	s.notifier.Notify(ctx, notification.Event{
		Kind:         notification.EventCommissionPaid,
		CommissionID: c.ID,
		UserID:       c.VendorID,
		Amount:       c.Budget,
	})
	return c, nil
}
