package metrics

import (
	"strconv"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "dispatch"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus records dispatch and settlement counters on a registerer.
type Prometheus struct {
	offersCreated      *prometheus.CounterVec
	offersResolved     *prometheus.CounterVec
	noCourierAvailable prometheus.Counter
	transitions        *prometheus.CounterVec
	ledgerPostings     *prometheus.CounterVec
	ledgerAmount       *prometheus.CounterVec
}

func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		offersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offers_created_total",
				Help:      "Offers sent to couriers, by search ring.",
			},
			[]string{"radius_tier"},
		),
		offersResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "offers_resolved_total",
				Help:      "Offers leaving the pending state, by outcome.",
			},
			[]string{"outcome"},
		),
		noCourierAvailable: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "no_courier_available_total",
				Help:      "Dispatch rounds that exhausted every ring.",
			},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delivery_transitions_total",
				Help:      "Delivery status transitions, by target status.",
			},
			[]string{"status"},
		),
		ledgerPostings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_postings_total",
				Help:      "Ledger entries appended, by reason.",
			},
			[]string{"reason"},
		),
		ledgerAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_amount_xaf_total",
				Help:      "Absolute XAF moved through the ledger, by reason.",
			},
			[]string{"reason"},
		),
	}
}

func (p *Prometheus) OfferCreated(radiusTier int) {
	p.offersCreated.WithLabelValues(strconv.Itoa(radiusTier)).Inc()
}

func (p *Prometheus) OfferResolved(outcome string) {
	p.offersResolved.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) NoCourierAvailable() {
	p.noCourierAvailable.Inc()
}

func (p *Prometheus) DeliveryTransition(status string) {
	p.transitions.WithLabelValues(status).Inc()
}

func (p *Prometheus) LedgerPosted(reason account.Reason, amount decimal.Decimal) {
	p.ledgerPostings.WithLabelValues(reason.String()).Inc()
	p.ledgerAmount.WithLabelValues(reason.String()).Add(amount.Abs().InexactFloat64())
}
