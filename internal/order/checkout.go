package order

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
	"github.com/TheVish04/ecommerce2-sub001/internal/auth"
	"github.com/TheVish04/ecommerce2-sub001/internal/metrics"
	"github.com/TheVish04/ecommerce2-sub001/internal/notification"
)

// PaymentIntent is the client-facing result of checkout initiation.
// Nothing is persisted at this stage; an abandoned intent leaves no
// order behind.
type PaymentIntent struct {
	ExternalOrderID string  `json:"razorpayOrderId"`
	Amount          float64 `json:"amount"`
	AmountMinor     int64   `json:"amountMinor"`
	Currency        string  `json:"currency"`
}

const currency = "INR"

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// InitiatePayment validates the cart exactly as CreateOrder would and
// reserves the computed total with the gateway. No durable order state is
// written; the order is only created once payment is verified.
func (s *Service) InitiatePayment(ctx context.Context, buyer auth.Principal, inputs []ItemInput) (PaymentIntent, error) {
	_, _, total, err := s.priceItems(inputs)
	if err != nil {
		return PaymentIntent{}, err
	}

	receipt := "rcpt_" + uuid.NewString()
	extID, err := s.gateway.CreateIntent(ctx, toMinorUnits(total), currency, receipt, map[string]string{
		"buyerId": fmt.Sprint(buyer.ID),
	})
	if err != nil {
		return PaymentIntent{}, err
	}

	return PaymentIntent{
		ExternalOrderID: extID,
		Amount:          total,
		AmountMinor:     toMinorUnits(total),
		Currency:        currency,
	}, nil
}

// VerifyPayment completes the two-phase checkout: it checks the callback
// signature, re-validates the cart (prices and stock may have moved since
// initiation), and persists the order already marked paid with its
// gateway correlation ids in the same write. Inventory is decremented
// exactly once, here, never on initiation. A replayed callback for an
// already-persisted payment returns the existing order unchanged.
func (s *Service) VerifyPayment(ctx context.Context, buyer auth.Principal, externalOrderID, externalPaymentID, signature string, inputs []ItemInput, shippingAddress string) (Order, error) {
	if externalOrderID == "" || externalPaymentID == "" || signature == "" {
		return Order{}, fmt.Errorf("missing payment fields: %w", apperr.ErrValidation)
	}

	if !s.gateway.VerifySignature(externalOrderID, externalPaymentID, signature) {
		metrics.PaymentFailures.Inc()
		return Order{}, apperr.ErrPaymentVerificationFailed
	}

	// retry safety: the same callback delivered twice must not create a
	// second order or decrement stock again
	if existing, ok, err := s.repo.FindByGatewayPayment(externalOrderID, externalPaymentID); err != nil {
		return Order{}, err
	} else if ok {
		return existing, nil
	}

	items, byID, total, err := s.priceItems(inputs)
	if err != nil {
		return Order{}, err
	}

	created, err := s.repo.Create(Order{
		BuyerID:           buyer.ID,
		Items:             items,
		TotalAmount:       total,
		Status:            StatusPending,
		PaymentStatus:     PaymentPaid,
		RazorpayOrderID:   &externalOrderID,
		RazorpayPaymentID: &externalPaymentID,
		ShippingAddress:   shippingAddress,
	})
	if err != nil {
		return Order{}, err
	}
	metrics.PaymentsVerified.Inc()
	metrics.OrdersCreated.Inc()

	s.applyInventory(ctx, created, byID)
	s.grantDigitalAccess(ctx, created, byID)
	s.notifier.Notify(ctx, notification.Event{
		Kind:    notification.EventOrderPaid,
		OrderID: created.ID,
		UserID:  buyer.ID,
		Amount:  created.TotalAmount,
	})

	return created, nil
}
