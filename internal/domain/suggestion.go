package domain

import (
	"time"

	"github.com/google/uuid"
)

// DemandTrend classifies a book's recent sales velocity.
type DemandTrend string

const (
	TrendRising  DemandTrend = "rising"
	TrendStable  DemandTrend = "stable"
	TrendFalling DemandTrend = "falling"
)

// CompetitivePosition classifies a book's price against its genre average.
type CompetitivePosition string

const (
	PositionPremium  CompetitivePosition = "premium"
	PositionAverage  CompetitivePosition = "average"
	PositionDiscount CompetitivePosition = "discount"
)

// PriceSuggestion is the pricing engine's output for one book. It is derived
// state: at most one suggestion is kept per book, each new analysis replacing
// the last.
type PriceSuggestion struct {
	ID                  uuid.UUID           `json:"id" db:"id"`
	BookID              uuid.UUID           `json:"book_id" db:"book_id"`
	CurrentPrice        float64             `json:"current_price" db:"current_price"`
	SuggestedPrice      float64             `json:"suggested_price" db:"suggested_price"`
	PercentChange       float64             `json:"percent_change" db:"percent_change"`
	DemandTrend         DemandTrend         `json:"demand_trend" db:"demand_trend"`
	MarketAverage       *float64            `json:"market_average,omitempty" db:"market_average"`
	CompetitivePosition CompetitivePosition `json:"competitive_position,omitempty" db:"competitive_position"`
	ElasticityFactor    float64             `json:"elasticity_factor" db:"elasticity_factor"`
	Confidence          float64             `json:"confidence" db:"confidence"`
	CreatedAt           time.Time           `json:"created_at" db:"created_at"`
}

// PriceUpdate is one entry in a bulk price apply request.
type PriceUpdate struct {
	BookID   uuid.UUID `json:"book_id"`
	OldPrice float64   `json:"old_price"`
	NewPrice float64   `json:"new_price"`
}

// PriceUpdateResult reports one successfully applied price change.
type PriceUpdateResult struct {
	BookID        uuid.UUID `json:"book_id"`
	Title         string    `json:"title"`
	OldPrice      float64   `json:"old_price"`
	NewPrice      float64   `json:"new_price"`
	PercentChange float64   `json:"percent_change"`
}

// GenreForecast is a restock recommendation for one genre.
type GenreForecast struct {
	Genre           Genre   `json:"genre"`
	ProjectedGrowth float64 `json:"projected_growth"`
	StockLevel      float64 `json:"stock_level"`
	Recommendation  string  `json:"recommendation"`
}
