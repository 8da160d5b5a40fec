package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "tessera"
	subsystem = "canvas"
)

var (
	// PurchasesTotal counts successful region purchases.
	PurchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "purchases_total",
		Help:      "Total number of successful region purchases",
	})

	// PixelsSoldTotal counts pixels claimed through purchases.
	PixelsSoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "pixels_sold_total",
		Help:      "Total number of pixels sold",
	})

	// RetractionsTotal counts regions removed by admins.
	RetractionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "retractions_total",
		Help:      "Total number of regions retracted by admins",
	})

	// PaymentsVerifiedTotal counts accepted external payments.
	PaymentsVerifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "payments_verified_total",
		Help:      "Total number of verified external payments",
	})

	// CreditsGrantedTotal counts credits granted through verified payments.
	CreditsGrantedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "credits_granted_total",
		Help:      "Total credits granted through verified payments",
	})

	// ActiveVisitors tracks browsers currently polling the canvas.
	ActiveVisitors = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_visitors",
		Help:      "Number of visitors currently polling the canvas",
	})

	// OracleRequestsTotal counts payment oracle lookups by outcome.
	OracleRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "oracle_requests_total",
		Help:      "Total number of payment oracle lookups",
	}, []string{"outcome"})
)
