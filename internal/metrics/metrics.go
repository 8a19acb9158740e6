package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the money paths. Registered on the default registry so
// promhttp.Handler() picks them up without extra wiring.
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_created_total",
		Help: "Orders persisted, either direct or via verified payment.",
	})

	PaymentsVerified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_payments_verified_total",
		Help: "Gateway callbacks that passed signature verification.",
	})

	PaymentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_payment_verification_failures_total",
		Help: "Gateway callbacks rejected for a bad signature.",
	})

	EscrowPayments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_escrow_payments_total",
		Help: "Commission escrow payments captured.",
	})

	DownloadsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_downloads_served_total",
		Help: "Digital download URLs handed out after a grant check.",
	})
)
