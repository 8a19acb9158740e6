package commission

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
	"github.com/TheVish04/ecommerce2-sub001/internal/auth"
	"github.com/TheVish04/ecommerce2-sub001/internal/product"
)

type memRepo struct {
	commissions map[int]Commission
	nextID      int
	markPaid    int
}

func newMemRepo() *memRepo {
	return &memRepo{commissions: map[int]Commission{}}
}

func (r *memRepo) Create(c Commission) (Commission, error) {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	r.commissions[c.ID] = c
	return c, nil
}

func (r *memRepo) GetByID(id int) (Commission, error) {
	c, ok := r.commissions[id]
	if !ok {
		return Commission{}, fmt.Errorf("commission %d: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

func (r *memRepo) ListForUser(userID int) ([]Commission, error) {
	out := []Commission{}
	for _, c := range r.commissions {
		if c.CustomerID == userID || c.VendorID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(id int, status string) error {
	c, ok := r.commissions[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.Status = status
	r.commissions[id] = c
	return nil
}

func (r *memRepo) AppendDeliveryFiles(id int, files []DeliveryFile, status string) error {
	c, ok := r.commissions[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.DeliveryFiles = append(c.DeliveryFiles, files...)
	c.Status = status
	r.commissions[id] = c
	return nil
}

func (r *memRepo) SetGatewayOrder(id int, extID string) error {
	c, ok := r.commissions[id]
	if !ok {
		return apperr.ErrNotFound
	}
	c.RazorpayOrderID = &extID
	r.commissions[id] = c
	return nil
}

func (r *memRepo) MarkPaid(id int, extOrderID, extPaymentID string, fee, vendorAmt, pct float64, paidAt time.Time) error {
	c, ok := r.commissions[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if c.PaymentStatus != PaymentPending {
		return fmt.Errorf("commission %d: %w", id, apperr.ErrAlreadyPaid)
	}
	r.markPaid++
	c.PaymentStatus = PaymentPaid
	c.RazorpayOrderID = &extOrderID
	c.RazorpayPaymentID = &extPaymentID
	c.PlatformFee = &fee
	c.VendorAmount = &vendorAmt
	c.FeePercent = &pct
	c.PaidAt = &paidAt
	r.commissions[id] = c
	return nil
}

type stubCatalog struct {
	byID map[int]product.Product
}

func (s *stubCatalog) GetByID(id int) (product.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return product.Product{}, fmt.Errorf("product %d: %w", id, apperr.ErrNotFound)
	}
	return p, nil
}

func (s *stubCatalog) ListByIDs(ids []int) ([]product.Product, error)  { return nil, nil }
func (s *stubCatalog) Decrement(p product.Product, qty int) error      { return nil }
func (s *stubCatalog) IncrementSales(p product.Product, qty int) error { return nil }

type stubGateway struct {
	verifyOK bool
	intentID string
}

func (g *stubGateway) Enabled() bool { return true }
func (g *stubGateway) CreateIntent(_ context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (string, error) {
	return g.intentID, nil
}
func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return g.verifyOK
}

var (
	customer = auth.Principal{ID: 1, Role: auth.RoleCustomer}
	vendor   = auth.Principal{ID: 9, Role: auth.RoleVendor}
	stranger = auth.Principal{ID: 77, Role: auth.RoleCustomer}
)

func newTestService(repo *memRepo, verifyOK bool) *Service {
	catalog := &stubCatalog{byID: map[int]product.Product{
		30: {ID: 30, VendorID: 9, Type: product.TypeService, Status: product.StatusActive, IsActive: true, Price: 0},
		31: {ID: 31, VendorID: 9, Type: product.TypePhysical, Status: product.StatusActive, IsActive: true},
	}}
	return NewService(repo, catalog, &stubGateway{verifyOK: verifyOK, intentID: "order_rzp9"}, nil, 10)
}

func request(t *testing.T, svc *Service, budget float64) Commission {
	t.Helper()
	c, err := svc.Request(context.Background(), customer, RequestInput{
		ServiceID:    30,
		Title:        "pet portrait",
		Requirements: "watercolor, two cats",
		Budget:       budget,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return c
}

func TestRequest_FreezesVendorFromService(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)

	c := request(t, svc, 5000)
	if c.VendorID != 9 {
		t.Errorf("vendor not derived from service: %d", c.VendorID)
	}
	if c.Status != StatusPending || c.PaymentStatus != PaymentPending {
		t.Errorf("expected pending/pending, got %s/%s", c.Status, c.PaymentStatus)
	}

	_, err := svc.Request(context.Background(), customer, RequestInput{ServiceID: 31, Budget: 100})
	if !errors.Is(err, apperr.ErrInvalidProductType) {
		t.Fatalf("expected ErrInvalidProductType for non-service product, got %v", err)
	}

	_, err = svc.Request(context.Background(), customer, RequestInput{ServiceID: 30, Budget: 0})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero budget, got %v", err)
	}
}

func TestUpdateStatus_VendorTransitions(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	c := request(t, svc, 5000)

	if _, err := svc.UpdateStatus(c.ID, stranger, StatusAccepted); !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}
	if _, err := svc.UpdateStatus(c.ID, customer, StatusAccepted); !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("customer may only cancel, got %v", err)
	}

	accepted, err := svc.UpdateStatus(c.ID, vendor, StatusAccepted)
	if err != nil {
		t.Fatalf("vendor accept failed: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Errorf("status = %s", accepted.Status)
	}

	// escrow gate: unpaid commissions cannot start
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusInProgress); !errors.Is(err, apperr.ErrEscrowNotFunded) {
		t.Fatalf("expected ErrEscrowNotFunded, got %v", err)
	}
	if got, _ := repo.GetByID(c.ID); got.Status != StatusAccepted {
		t.Errorf("failed gate must not change status, got %s", got.Status)
	}

	if _, err := svc.VerifyEscrowPayment(context.Background(), c.ID, customer, "order_rzp9", "pay_9", "sig"); err != nil {
		t.Fatalf("escrow payment failed: %v", err)
	}
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusInProgress); err != nil {
		t.Fatalf("funded transition to in_progress failed: %v", err)
	}

	if _, err := svc.UpdateStatus(c.ID, vendor, StatusDelivered); err != nil {
		t.Fatalf("in_progress to delivered failed: %v", err)
	}
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusCompleted); err != nil {
		t.Fatalf("delivered to completed failed: %v", err)
	}

	// completed is terminal
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusInProgress); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation on terminal transition, got %v", err)
	}
}

func TestUpdateStatus_CustomerCancel(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	c := request(t, svc, 5000)

	cancelled, err := svc.UpdateStatus(c.ID, customer, StatusCancelled)
	if err != nil {
		t.Fatalf("customer cancel failed: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %s", cancelled.Status)
	}

	// cancel is only available while still pending
	c2 := request(t, svc, 5000)
	if _, err := svc.UpdateStatus(c2.ID, vendor, StatusAccepted); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if _, err := svc.UpdateStatus(c2.ID, customer, StatusCancelled); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation cancelling accepted commission, got %v", err)
	}
}

func TestVerifyEscrowPayment_FeeSplit(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	c := request(t, svc, 5000)
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusAccepted); err != nil {
		t.Fatal(err)
	}

	paid, err := svc.VerifyEscrowPayment(context.Background(), c.ID, customer, "order_rzp9", "pay_9", "sig")
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}

	if paid.PaymentStatus != PaymentPaid {
		t.Errorf("paymentStatus = %s", paid.PaymentStatus)
	}
	if paid.PlatformFee == nil || *paid.PlatformFee != 500.00 {
		t.Errorf("platformFee = %v, want 500.00", paid.PlatformFee)
	}
	if paid.VendorAmount == nil || *paid.VendorAmount != 4500.00 {
		t.Errorf("vendorAmount = %v, want 4500.00", paid.VendorAmount)
	}
	if paid.FeePercent == nil || *paid.FeePercent != 10 {
		t.Errorf("feePercent = %v, want 10", paid.FeePercent)
	}
	if paid.PaidAt == nil {
		t.Errorf("paidAt not recorded")
	}
}

func TestVerifyEscrowPayment_Idempotent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	c := request(t, svc, 5000)
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusAccepted); err != nil {
		t.Fatal(err)
	}

	first, err := svc.VerifyEscrowPayment(context.Background(), c.ID, customer, "order_rzp9", "pay_9", "sig")
	if err != nil {
		t.Fatalf("first verification failed: %v", err)
	}
	second, err := svc.VerifyEscrowPayment(context.Background(), c.ID, customer, "order_rzp9", "pay_9", "sig")
	if err != nil {
		t.Fatalf("replayed verification failed: %v", err)
	}

	if repo.markPaid != 1 {
		t.Errorf("fee computation applied %d times, want 1", repo.markPaid)
	}
	if !second.PaidAt.Equal(*first.PaidAt) {
		t.Errorf("paidAt changed on replay: %v vs %v", second.PaidAt, first.PaidAt)
	}
	if *second.PlatformFee != *first.PlatformFee || *second.VendorAmount != *first.VendorAmount {
		t.Errorf("frozen amounts changed on replay")
	}
}

// raceRepo simulates a concurrent verification settling the record
// between the service's read and its guarded write.
type raceRepo struct {
	*memRepo
}

func (r *raceRepo) MarkPaid(id int, extOrderID, extPaymentID string, fee, vendorAmt, pct float64, paidAt time.Time) error {
	_ = r.memRepo.MarkPaid(id, extOrderID, "pay_winner", fee, vendorAmt, pct, paidAt)
	return fmt.Errorf("commission %d: %w", id, apperr.ErrAlreadyPaid)
}

func TestVerifyEscrowPayment_LostRaceReturnsSettledRecord(t *testing.T) {
	repo := newMemRepo()
	catalog := &stubCatalog{byID: map[int]product.Product{
		30: {ID: 30, VendorID: 9, Type: product.TypeService, Status: product.StatusActive, IsActive: true},
	}}
	svc := NewService(&raceRepo{repo}, catalog, &stubGateway{verifyOK: true, intentID: "order_rzp9"}, nil, 10)

	c := request(t, svc, 5000)
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusAccepted); err != nil {
		t.Fatal(err)
	}

	settled, err := svc.VerifyEscrowPayment(context.Background(), c.ID, customer, "order_rzp9", "pay_loser", "sig")
	if err != nil {
		t.Fatalf("losing the race must not surface an error: %v", err)
	}
	if settled.PaymentStatus != PaymentPaid {
		t.Errorf("paymentStatus = %s", settled.PaymentStatus)
	}
	if settled.RazorpayPaymentID == nil || *settled.RazorpayPaymentID != "pay_winner" {
		t.Errorf("expected the concurrent winner's record, got %+v", settled.RazorpayPaymentID)
	}
	if repo.markPaid != 1 {
		t.Errorf("fee split applied %d times, want 1", repo.markPaid)
	}
}

func TestVerifyEscrowPayment_BadSignature(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, false)
	c := request(t, svc, 5000)
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusAccepted); err != nil {
		t.Fatal(err)
	}

	_, err := svc.VerifyEscrowPayment(context.Background(), c.ID, customer, "order_rzp9", "pay_9", "bad")
	if !errors.Is(err, apperr.ErrPaymentVerificationFailed) {
		t.Fatalf("expected ErrPaymentVerificationFailed, got %v", err)
	}
	if got, _ := repo.GetByID(c.ID); got.PaymentStatus != PaymentPending {
		t.Errorf("payment status must stay pending, got %s", got.PaymentStatus)
	}
}

func TestInitiateEscrowPayment(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	c := request(t, svc, 5000)

	// only once accepted
	if _, err := svc.InitiateEscrowPayment(context.Background(), c.ID, customer); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation before acceptance, got %v", err)
	}
	if _, err := svc.UpdateStatus(c.ID, vendor, StatusAccepted); err != nil {
		t.Fatal(err)
	}

	// vendor cannot fund their own escrow
	if _, err := svc.InitiateEscrowPayment(context.Background(), c.ID, vendor); !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for vendor, got %v", err)
	}

	extID, err := svc.InitiateEscrowPayment(context.Background(), c.ID, customer)
	if err != nil {
		t.Fatalf("initiation failed: %v", err)
	}
	if extID != "order_rzp9" {
		t.Errorf("wrong gateway order id %q", extID)
	}

	if _, err := svc.VerifyEscrowPayment(context.Background(), c.ID, customer, "order_rzp9", "pay_9", "sig"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.InitiateEscrowPayment(context.Background(), c.ID, customer); !errors.Is(err, apperr.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestSubmitDelivery(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	c := request(t, svc, 5000)

	if _, err := svc.SubmitDelivery(context.Background(), c.ID, customer, []DeliveryInput{{URL: "https://x/y.png"}}); !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for customer, got %v", err)
	}

	// delivery forces the status jump even from pending
	delivered, err := svc.SubmitDelivery(context.Background(), c.ID, vendor, []DeliveryInput{{URL: "https://x/y.png", Name: "final.png"}})
	if err != nil {
		t.Fatalf("delivery failed: %v", err)
	}
	if delivered.Status != StatusDelivered {
		t.Errorf("status = %s, want delivered", delivered.Status)
	}
	if len(delivered.DeliveryFiles) != 1 || delivered.DeliveryFiles[0].Name != "final.png" {
		t.Errorf("files not appended: %+v", delivered.DeliveryFiles)
	}

	// a second submission appends rather than replaces
	again, err := svc.SubmitDelivery(context.Background(), c.ID, vendor, []DeliveryInput{{URL: "https://x/z.png", Name: "rev2.png"}})
	if err != nil {
		t.Fatalf("second delivery failed: %v", err)
	}
	if len(again.DeliveryFiles) != 2 {
		t.Errorf("expected 2 files after second delivery, got %d", len(again.DeliveryFiles))
	}
}
