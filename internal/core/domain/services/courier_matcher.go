package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"
)

// weightSumTolerance is how far the rank weights may drift from 1.0.
const weightSumTolerance = 1e-6

// ErrCourierNotFound is returned when no ring contains an available courier.
var ErrCourierNotFound = errors.New("courier not found")

// RankWeights blend the ranking signals. Each must lie in [0,1] and they must sum to 1.
type RankWeights struct {
	Distance   float64
	Rating     float64
	Acceptance float64
}

// DistanceOnly ranks purely by proximity.
var DistanceOnly = RankWeights{Distance: 1}

// Validate checks the range and sum of the weights.
func (w RankWeights) Validate() error {
	var errList []error
	for name, v := range map[string]float64{
		"rank_weights.distance":   w.Distance,
		"rank_weights.rating":     w.Rating,
		"rank_weights.acceptance": w.Acceptance,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			errList = append(errList, errs.NewValueIsOutOfRangeError(name, v, 0, 1))
		}
	}
	if sum := w.Distance + w.Rating + w.Acceptance; math.Abs(sum-1) > weightSumTolerance {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"rank_weights",
			fmt.Errorf("weights sum to %v, want 1.0", sum),
		))
	}
	return errors.Join(errList...)
}

// DispatchConfig drives the expanding-radius search and the offer deadline.
type DispatchConfig struct {
	InitialRadiusKm float64
	MaxRadiusKm     float64
	RadiusStepKm    float64
	OfferTimeout    time.Duration
	RankWeights     RankWeights
}

// DefaultDispatchConfig searches 2, 4, 6 and 8 km with a 30s offer timeout.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		InitialRadiusKm: 2,
		MaxRadiusKm:     8,
		RadiusStepKm:    2,
		OfferTimeout:    offer.DefaultTimeout,
		RankWeights:     RankWeights{Distance: 0.6, Rating: 0.25, Acceptance: 0.15},
	}
}

// Validate checks the radii and timeout. Rank weights are not checked here:
// invalid weights only downgrade ranking to distance-only.
func (c DispatchConfig) Validate() error {
	var errList []error
	if !isPositiveFinite(c.InitialRadiusKm) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("initial_radius_km", fmt.Errorf("%v is not positive", c.InitialRadiusKm)))
	}
	if !isPositiveFinite(c.RadiusStepKm) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("radius_step_km", fmt.Errorf("%v is not positive", c.RadiusStepKm)))
	}
	if !isPositiveFinite(c.MaxRadiusKm) || c.MaxRadiusKm < c.InitialRadiusKm {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"max_radius_km",
			fmt.Errorf("%v must be positive and not below initial radius %v", c.MaxRadiusKm, c.InitialRadiusKm),
		))
	}
	if c.OfferTimeout <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("offer_timeout", fmt.Errorf("%s is not positive", c.OfferTimeout)))
	}
	return errors.Join(errList...)
}

// Rings lists the search radii: initial, initial+step, ... up to max, with max always last.
func (c DispatchConfig) Rings() []float64 {
	var rings []float64
	for r := c.InitialRadiusKm; r < c.MaxRadiusKm-1e-9; r += c.RadiusStepKm {
		rings = append(rings, r)
	}
	return append(rings, c.MaxRadiusKm)
}

// Candidate is a courier that passed the eligibility filter for a ring.
type Candidate struct {
	Courier    *account.Account
	DistanceKm float64
	Score      float64
}

// Match is the courier chosen for the next offer.
type Match struct {
	Candidate  Candidate
	RadiusTier int
	RadiusKm   float64
}

// CourierMatcher picks the courier that receives the next offer for a delivery.
//
// Key responsibilities:
//   - Expanding the search ring by ring until a ring holds a candidate
//   - Filtering out couriers that are offline, unverified, indebted past their
//     ceiling, busy, or already excluded for this delivery
//   - Ranking by score = w_d*(1 - d/ring) + w_r*(rating/5) + w_a*acceptance,
//     ties broken by distance then id
//
// A CourierMatcher is immutable and safe for concurrent use.
type CourierMatcher struct {
	cfg      DispatchConfig
	rings    []float64
	weights  RankWeights
	weighted bool
}

// NewCourierMatcher validates the radii of cfg. Invalid rank weights are
// accepted and switch ranking to distance-only; see UsesWeightedRanking.
func NewCourierMatcher(cfg DispatchConfig) (*CourierMatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &CourierMatcher{
		cfg:      cfg,
		rings:    cfg.Rings(),
		weights:  cfg.RankWeights,
		weighted: true,
	}
	if cfg.RankWeights.Validate() != nil {
		m.weights = DistanceOnly
		m.weighted = false
	}
	return m, nil
}

// Config returns the configuration the matcher was built with.
func (m *CourierMatcher) Config() DispatchConfig { return m.cfg }

// Rings returns a copy of the search radii in order.
func (m *CourierMatcher) Rings() []float64 {
	return append([]float64(nil), m.rings...)
}

// MaxRadiusKm is the widest ring.
func (m *CourierMatcher) MaxRadiusKm() float64 {
	return m.rings[len(m.rings)-1]
}

// UsesWeightedRanking is false when the configured weights were invalid.
func (m *CourierMatcher) UsesWeightedRanking() bool { return m.weighted }

// Select walks the rings and returns the top-ranked candidate of the first
// ring that has one. excluded holds couriers that must not be offered this
// delivery (pending offers elsewhere, or already offered in this round).
// It returns ErrCourierNotFound when every ring is empty.
func (m *CourierMatcher) Select(
	pickup kernel.Location,
	couriers []*account.Account,
	excluded map[kernel.UUID]struct{},
) (Match, error) {
	if err := pickup.Validate(); err != nil {
		return Match{}, err
	}

	pool, err := m.eligible(pickup, couriers, excluded)
	if err != nil {
		return Match{}, err
	}

	for tier, ring := range m.rings {
		ranked := m.rank(pool, ring)
		if len(ranked) > 0 {
			return Match{Candidate: ranked[0], RadiusTier: tier, RadiusKm: ring}, nil
		}
	}
	return Match{}, ErrCourierNotFound
}

// Rank returns the candidates inside ringKm, best first.
func (m *CourierMatcher) Rank(
	pickup kernel.Location,
	ringKm float64,
	couriers []*account.Account,
	excluded map[kernel.UUID]struct{},
) ([]Candidate, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}
	if !isPositiveFinite(ringKm) {
		return nil, errs.NewValueIsInvalidErrorWithCause("ring_km", fmt.Errorf("%v is not positive", ringKm))
	}

	pool, err := m.eligible(pickup, couriers, excluded)
	if err != nil {
		return nil, err
	}
	return m.rank(pool, ringKm), nil
}

func (m *CourierMatcher) eligible(
	pickup kernel.Location,
	couriers []*account.Account,
	excluded map[kernel.UUID]struct{},
) ([]Candidate, error) {
	pool := make([]Candidate, 0, len(couriers))
	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if !c.IsAvailableForDispatch() {
			continue
		}
		if _, skip := excluded[c.ID()]; skip {
			continue
		}

		d, err := c.Location().DistanceKm(pickup)
		if err != nil {
			return nil, err
		}
		pool = append(pool, Candidate{Courier: c, DistanceKm: d})
	}
	return pool, nil
}

func (m *CourierMatcher) rank(pool []Candidate, ringKm float64) []Candidate {
	ranked := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if c.DistanceKm > ringKm {
			continue
		}
		c.Score = m.weights.Distance*(1-c.DistanceKm/ringKm) +
			m.weights.Rating*(c.Courier.Rating()/account.RatingMax) +
			m.weights.Acceptance*c.Courier.AcceptanceRate()
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.Courier.ID().Less(b.Courier.ID())
	})
	return ranked
}

func isPositiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
