package pricing

import (
	"errors"
	"math"
	"math/rand"

	"booknest/internal/domain"
)

var (
	ErrInvalidPrice = errors.New("price must be positive")
)

// Config holds the tunable constants of the recommendation engine. The
// defaults are the canonical formula; they are surfaced through app config so
// the weightings live in exactly one place.
type Config struct {
	TrendWindow        int     // sales-history points considered for trend detection
	TrendRiseThreshold float64 // percent change above which demand is rising
	TrendFallThreshold float64 // percent change below which demand is falling

	RisingElasticity  float64 // elasticity factor under rising demand
	FallingElasticity float64 // elasticity factor under falling demand

	StockWeight  float64 // weight of the stock nudge around 1.0
	RatingWeight float64 // weight of the rating nudge around 1.0
	RisingNudge  float64 // trend multiplier under rising demand
	FallingNudge float64 // trend multiplier under falling demand

	PremiumRatio  float64 // price/market ratio above which a book is premium
	DiscountRatio float64 // price/market ratio below which a book is discount

	PremiumBlend  float64 // own-price blend weight for premium books
	DiscountBlend float64 // own-price blend weight for discount books
	AverageBlend  float64 // own-price blend weight for average books

	PremiumCapRatio    float64 // premium market target capped at this ratio
	DiscountFloorRatio float64 // discount market target floored at this ratio
}

// DefaultConfig returns the canonical engine constants.
func DefaultConfig() Config {
	return Config{
		TrendWindow:        3,
		TrendRiseThreshold: 10,
		TrendFallThreshold: -10,
		RisingElasticity:   1.15,
		FallingElasticity:  0.85,
		StockWeight:        0.1,
		RatingWeight:       0.15,
		RisingNudge:        1.08,
		FallingNudge:       0.93,
		PremiumRatio:       1.1,
		DiscountRatio:      0.9,
		PremiumBlend:       0.7,
		DiscountBlend:      0.5,
		AverageBlend:       0.6,
		PremiumCapRatio:    1.3,
		DiscountFloorRatio: 0.75,
	}
}

// BookInput is everything the engine needs to price one book.
type BookInput struct {
	Price         float64
	Stock         int
	Rating        float64
	SalesHistory  []int    // per-day quantities, most recent last
	MarketAverage *float64 // genre mean price across other books, nil when unknown
}

// Suggestion is the engine's output. The caller attaches book identity and
// persists it if desired.
type Suggestion struct {
	CurrentPrice        float64
	SuggestedPrice      float64
	PercentChange       float64
	DemandTrend         domain.DemandTrend
	MarketAverage       *float64
	CompetitivePosition domain.CompetitivePosition
	ElasticityFactor    float64
	Confidence          float64
}

// Engine computes price suggestions and demand scores. It is stateless apart
// from the injected randomness source, which feeds only the confidence jitter;
// with a fixed seed the output is fully reproducible.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// New creates an engine. rng must not be shared across goroutines; callers
// that analyze concurrently should create one engine per goroutine.
func New(cfg Config, rng *rand.Rand) *Engine {
	return &Engine{cfg: cfg, rng: rng}
}

// Suggest produces a price suggestion for one book. The only hard error is a
// non-positive price; every other degenerate input degrades gracefully, so a
// book with no sales history and no market peers still gets a suggestion.
func (e *Engine) Suggest(in BookInput) (Suggestion, error) {
	if in.Price <= 0 {
		return Suggestion{}, ErrInvalidPrice
	}

	rating := clamp(in.Rating, 0, 5)
	stock := in.Stock
	if stock < 0 {
		stock = 0
	}

	trend := e.detectTrend(in.SalesHistory)
	elasticity := e.elasticityFor(trend)
	position := e.competitivePosition(in.Price, in.MarketAverage)

	multiplier := 1.0

	// Stock nudge: scarce stock pushes the price up, deep stock pulls it down.
	stockFactor := 1 - (math.Min(float64(stock), 100)/100)*0.2
	multiplier *= 1 + (stockFactor-0.5)*e.cfg.StockWeight

	// Rating nudge: well-reviewed books support a higher price.
	ratingFactor := rating / 5
	multiplier *= 1 + (ratingFactor-0.5)*e.cfg.RatingWeight

	switch trend {
	case domain.TrendRising:
		multiplier *= e.cfg.RisingNudge
	case domain.TrendFalling:
		multiplier *= e.cfg.FallingNudge
	}

	suggested := in.Price * multiplier

	if in.MarketAverage != nil {
		suggested = e.blendWithMarket(in.Price, suggested, *in.MarketAverage, position, elasticity)
	}

	return Suggestion{
		CurrentPrice:        in.Price,
		SuggestedPrice:      round2(suggested),
		PercentChange:       round1((suggested - in.Price) / in.Price * 100),
		DemandTrend:         trend,
		MarketAverage:       in.MarketAverage,
		CompetitivePosition: position,
		ElasticityFactor:    elasticity,
		Confidence:          e.confidence(in),
	}, nil
}

// detectTrend splits the trailing window of sales history into halves and
// classifies the percent change between their means. An empty history reads
// as flat.
func (e *Engine) detectTrend(history []int) domain.DemandTrend {
	if len(history) == 0 {
		history = []int{0, 0, 0}
	}
	if len(history) < e.cfg.TrendWindow {
		return domain.TrendStable
	}

	recent := history[len(history)-e.cfg.TrendWindow:]
	mid := len(recent) / 2
	firstAvg := mean(recent[:mid])
	secondAvg := mean(recent[mid:])

	var changePercent float64
	switch {
	case firstAvg > 0:
		changePercent = (secondAvg - firstAvg) / firstAvg * 100
	case secondAvg > 0:
		changePercent = 100
	}

	switch {
	case changePercent > e.cfg.TrendRiseThreshold:
		return domain.TrendRising
	case changePercent < e.cfg.TrendFallThreshold:
		return domain.TrendFalling
	default:
		return domain.TrendStable
	}
}

func (e *Engine) elasticityFor(trend domain.DemandTrend) float64 {
	switch trend {
	case domain.TrendRising:
		return e.cfg.RisingElasticity
	case domain.TrendFalling:
		return e.cfg.FallingElasticity
	default:
		return 1.0
	}
}

func (e *Engine) competitivePosition(price float64, marketAverage *float64) domain.CompetitivePosition {
	if marketAverage == nil || *marketAverage <= 0 {
		return domain.PositionAverage
	}
	ratio := price / *marketAverage
	switch {
	case ratio > e.cfg.PremiumRatio:
		return domain.PositionPremium
	case ratio < e.cfg.DiscountRatio:
		return domain.PositionDiscount
	default:
		return domain.PositionAverage
	}
}

// blendWithMarket pulls the multiplier-based price toward a market-derived
// target. Premium books never drop below market average; discount books never
// rise above it.
func (e *Engine) blendWithMarket(price, suggested, marketAverage float64, position domain.CompetitivePosition, elasticity float64) float64 {
	ratio := price / marketAverage

	switch position {
	case domain.PositionPremium:
		target := marketAverage * math.Min(ratio, e.cfg.PremiumCapRatio)
		blended := suggested*e.cfg.PremiumBlend + target*(1-e.cfg.PremiumBlend)
		return math.Max(blended, marketAverage)
	case domain.PositionDiscount:
		target := marketAverage * math.Max(ratio, e.cfg.DiscountFloorRatio)
		blended := suggested*e.cfg.DiscountBlend + target*(1-e.cfg.DiscountBlend)
		return math.Min(blended, marketAverage)
	default:
		target := marketAverage * elasticity
		return suggested*e.cfg.AverageBlend + target*(1-e.cfg.AverageBlend)
	}
}

// confidence scores how much signal backed the suggestion: more history and
// more reviews mean more confidence, with a small jitter from the injected
// randomness source.
func (e *Engine) confidence(in BookInput) float64 {
	base := 0.5
	base += 0.05 * math.Min(float64(len(in.SalesHistory)), 6)
	base += 0.02 * clamp(in.Rating, 0, 5)
	if in.MarketAverage != nil {
		base += 0.05
	}
	jitter := (e.rng.Float64() - 0.5) * 0.04
	return round2(clamp(base+jitter, 0.1, 0.99))
}

// DemandScore computes the 0-10 composite urgency metric: half recent sales
// volume, 30% rating, 20% stock scarcity.
func (e *Engine) DemandScore(in BookInput) float64 {
	history := in.SalesHistory
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	total := 0
	for _, q := range history {
		if q > 0 {
			total += q
		}
	}

	stock := in.Stock
	if stock < 0 {
		stock = 0
	}

	salesScore := math.Min(10, float64(total)/5)
	ratingScore := clamp(in.Rating, 0, 5) / 5 * 10
	stockScore := 10 - math.Min(10, float64(stock)/10)

	return round1(salesScore*0.5 + ratingScore*0.3 + stockScore*0.2)
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
