package order

import (
	"context"
	"fmt"
	"math"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
	"github.com/TheVish04/ecommerce2-sub001/internal/auth"
	"github.com/TheVish04/ecommerce2-sub001/internal/download"
	"github.com/TheVish04/ecommerce2-sub001/internal/logging"
	"github.com/TheVish04/ecommerce2-sub001/internal/metrics"
	"github.com/TheVish04/ecommerce2-sub001/internal/notification"
	"github.com/TheVish04/ecommerce2-sub001/internal/payment"
	"github.com/TheVish04/ecommerce2-sub001/internal/product"
)

// ItemInput is a cart line as submitted by the client. Any price field
// the client sends is ignored; pricing always comes from the catalog.
type ItemInput struct {
	ProductID int            `json:"productId"`
	Quantity  int            `json:"quantity"`
	Options   map[string]any `json:"options,omitempty"`
}

// Service is the order manager. It owns cart-to-order conversion, the
// two-phase checkout flow, role-gated status transitions, invoice
// projection, and digital download handoff.
type Service struct {
	repo      Repository
	products  product.ServiceInterface
	downloads download.ServiceInterface
	gateway   payment.Gateway
	notifier  notification.Notifier
}

func NewService(repo Repository, products product.ServiceInterface, downloads download.ServiceInterface, gw payment.Gateway, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	return &Service{repo: repo, products: products, downloads: downloads, gateway: gw, notifier: notifier}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// priceItems is the shared validation/pricing primitive behind both
// CreateOrder and the two-phase checkout. It checks availability and
// stock for every line before anything is mutated and computes the total
// from catalog prices at call time.
func (s *Service) priceItems(inputs []ItemInput) ([]Item, map[int]product.Product, float64, error) {
	if len(inputs) == 0 {
		return nil, nil, 0, fmt.Errorf("order needs at least one item: %w", apperr.ErrValidation)
	}

	ids := make([]int, 0, len(inputs))
	needed := make(map[int]int, len(inputs))
	for _, in := range inputs {
		if in.ProductID <= 0 || in.Quantity < 1 {
			return nil, nil, 0, fmt.Errorf("bad line item: %w", apperr.ErrValidation)
		}
		if _, seen := needed[in.ProductID]; !seen {
			ids = append(ids, in.ProductID)
		}
		needed[in.ProductID] += in.Quantity
	}

	prods, err := s.products.ListByIDs(ids)
	if err != nil {
		return nil, nil, 0, err
	}
	byID := make(map[int]product.Product, len(prods))
	for _, p := range prods {
		byID[p.ID] = p
	}

	items := make([]Item, 0, len(inputs))
	total := 0.0
	for _, in := range inputs {
		p, ok := byID[in.ProductID]
		if !ok {
			return nil, nil, 0, fmt.Errorf("product %d: %w", in.ProductID, apperr.ErrProductUnavailable)
		}
		if !p.Purchasable() {
			return nil, nil, 0, fmt.Errorf("product %d: %w", p.ID, apperr.ErrProductUnavailable)
		}
		// stock is pre-checked against the summed quantity per product,
		// so duplicate lines for the same item cannot pass one line at a
		// time, and a doomed order never partially consumes inventory
		if p.Type == product.TypePhysical && p.Stock < needed[p.ID] {
			return nil, nil, 0, fmt.Errorf("product %d: %w", p.ID, apperr.ErrInsufficientStock)
		}
		items = append(items, Item{
			ProductID: p.ID,
			Quantity:  in.Quantity,
			UnitPrice: p.Price,
			Options:   in.Options,
		})
		total += p.Price * float64(in.Quantity)
	}

	return items, byID, round2(total), nil
}

// applyInventory runs the per-product decrements and sales counters for a
// persisted order. Insufficient stock was pre-checked; a race that drains
// stock between check and decrement is logged, not rolled back, since the
// order is already the durable financial record.
func (s *Service) applyInventory(ctx context.Context, o Order, byID map[int]product.Product) {
	log := logging.FromCtx(ctx)
	for _, it := range o.Items {
		p := byID[it.ProductID]
		if err := s.products.Decrement(p, it.Quantity); err != nil {
			log.Error("stock decrement failed", "orderId", o.ID, "productId", it.ProductID, "err", err)
			continue
		}
		if err := s.products.IncrementSales(p, it.Quantity); err != nil {
			log.Error("sales counter update failed", "orderId", o.ID, "productId", it.ProductID, "err", err)
		}
	}
}

// CreateOrder converts a validated cart into a pending order, decrements
// stock, and fires the confirmation notification best-effort.
func (s *Service) CreateOrder(ctx context.Context, buyer auth.Principal, inputs []ItemInput, shippingAddress string) (Order, error) {
	items, byID, total, err := s.priceItems(inputs)
	if err != nil {
		return Order{}, err
	}

	created, err := s.repo.Create(Order{
		BuyerID:         buyer.ID,
		Items:           items,
		TotalAmount:     total,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		ShippingAddress: shippingAddress,
	})
	if err != nil {
		return Order{}, err
	}
	metrics.OrdersCreated.Inc()

	s.applyInventory(ctx, created, byID)
	s.notifier.Notify(ctx, notification.Event{
		Kind:    notification.EventOrderPlaced,
		OrderID: created.ID,
		UserID:  buyer.ID,
		Amount:  created.TotalAmount,
	})

	return created, nil
}

// GetOrder returns the order to its buyer only. Vendors and admins go
// through the status-transition path, not this read.
func (s *Service) GetOrder(id int, requester auth.Principal) (Order, error) {
	o, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if o.BuyerID != requester.ID {
		return Order{}, apperr.ErrNotAuthorized
	}
	return o, nil
}

func (s *Service) ListByBuyer(buyerID int) ([]Order, error) {
	return s.repo.ListByBuyer(buyerID)
}

// UpdateStatus persists a new order status. Only an admin or a vendor
// owning at least one line item's product may call it. Any status in the
// enum is accepted regardless of the current one; transitions are not
// forced forward-only.
func (s *Service) UpdateStatus(id int, requester auth.Principal, newStatus string) (Order, error) {
	if !ValidStatus(newStatus) {
		return Order{}, fmt.Errorf("unknown status %q: %w", newStatus, apperr.ErrValidation)
	}

	o, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}

	if !requester.IsAdmin() {
		if requester.Role != auth.RoleVendor {
			return Order{}, apperr.ErrNotAuthorized
		}
		owns, err := s.vendorOwnsLineItem(o, requester.ID)
		if err != nil {
			return Order{}, err
		}
		if !owns {
			return Order{}, apperr.ErrNotAuthorized
		}
	}

	if err := s.repo.UpdateStatus(id, newStatus); err != nil {
		return Order{}, err
	}
	o.Status = newStatus
	return o, nil
}

func (s *Service) vendorOwnsLineItem(o Order, vendorID int) (bool, error) {
	ids := make([]int, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	prods, err := s.products.ListByIDs(ids)
	if err != nil {
		return false, err
	}
	for _, p := range prods {
		if p.VendorID == vendorID {
			return true, nil
		}
	}
	return false, nil
}

// Invoice builds the buyer-facing invoice projection. Pure read.
func (s *Service) Invoice(id int, requester auth.Principal) (Invoice, error) {
	o, err := s.GetOrder(id, requester)
	if err != nil {
		return Invoice{}, err
	}

	ids := make([]int, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	prods, err := s.products.ListByIDs(ids)
	if err != nil {
		return Invoice{}, err
	}
	byID := make(map[int]product.Product, len(prods))
	for _, p := range prods {
		byID[p.ID] = p
	}

	return BuildInvoice(o, byID), nil
}

// GetDownloadURL hands out the artifact location for a digital line item
// of the buyer's order, consuming one download from the grant.
func (s *Service) GetDownloadURL(orderID, productID int, requester auth.Principal) (string, error) {
	o, err := s.repo.GetByID(orderID)
	if err != nil {
		return "", err
	}
	if o.BuyerID != requester.ID {
		return "", apperr.ErrNotAuthorized
	}
	if _, ok := o.ItemFor(productID); !ok {
		return "", fmt.Errorf("product %d not on order %d: %w", productID, orderID, apperr.ErrNotFound)
	}

	p, err := s.products.GetByID(productID)
	if err != nil {
		return "", err
	}
	if p.Type != product.TypeDigital {
		return "", fmt.Errorf("product %d is %s: %w", productID, p.Type, apperr.ErrInvalidProductType)
	}

	url, err := s.downloads.CheckAndConsume(requester.ID, productID, orderID)
	if err != nil {
		return "", err
	}
	metrics.DownloadsServed.Inc()
	return url, nil
}

// grantDigitalAccess creates download entitlements for the digital lines
// of a paid order. Grant failures are logged, not surfaced; the grant can
// be retried by support tooling and the order itself is already settled.
func (s *Service) grantDigitalAccess(ctx context.Context, o Order, byID map[int]product.Product) {
	log := logging.FromCtx(ctx)
	for _, it := range o.Items {
		if byID[it.ProductID].Type != product.TypeDigital {
			continue
		}
		if err := s.downloads.Grant(o.BuyerID, it.ProductID, o.ID); err != nil {
			log.Error("download grant failed", "orderId", o.ID, "productId", it.ProductID, "err", err)
		}
	}
}
