package pricing

import (
	"math"

	"booknest/internal/domain"
)

// SweepResult is the outcome of scanning a price range for the
// revenue-maximizing point.
type SweepResult struct {
	OptimalPrice           float64 `json:"optimal_price"`
	PredictedSalesIncrease int     `json:"predicted_sales_increase"`
	Confidence             float64 `json:"confidence"`
}

// priceElasticity is the slope of the assumed linear demand curve: a 1% price
// increase costs roughly 1.5% of unit sales.
const priceElasticity = -1.5

// SweepPrices scans [minPrice, maxPrice] in step increments and picks the
// price that maximizes projected revenue under a linear demand curve anchored
// at the book's current price and recent sales velocity. Confidence decays
// with distance from the current price.
func (e *Engine) SweepPrices(in BookInput, minPrice, maxPrice, step float64) (SweepResult, error) {
	if in.Price <= 0 || minPrice <= 0 || maxPrice < minPrice {
		return SweepResult{}, ErrInvalidPrice
	}
	if step <= 0 {
		step = 0.5
	}

	baseSales := mean(in.SalesHistory)
	if baseSales <= 0 {
		baseSales = 1
	}

	salesAt := func(price float64) float64 {
		demand := 1 + priceElasticity*(price-in.Price)/in.Price
		return baseSales * math.Max(0, demand)
	}

	optimal := minPrice
	bestRevenue := -1.0
	for price := minPrice; price <= maxPrice+1e-9; price += step {
		revenue := price * salesAt(price)
		if revenue > bestRevenue {
			bestRevenue = revenue
			optimal = price
		}
	}

	distance := math.Abs(optimal-in.Price) / in.Price
	confidence := 1 - math.Min(distance, 0.5)*2

	increase := salesAt(optimal) - baseSales

	return SweepResult{
		OptimalPrice:           round2(optimal),
		PredictedSalesIncrease: int(math.Round(increase)),
		Confidence:             round2(confidence),
	}, nil
}

// genreGrowth maps each genre to its projected demand growth in percent.
var genreGrowth = map[domain.Genre]float64{
	domain.GenreFiction:    12,
	domain.GenreNonFiction: 8,
	domain.GenreChildrens:  3,
	domain.GenreSciFi:      -2,
}

const defaultGrowth = 5

// ForecastGenres turns per-genre stock levels into restock recommendations.
// Stock level is the fraction of catalog capacity still on the shelf.
func ForecastGenres(stats []domain.GenreStats) []domain.GenreForecast {
	forecasts := make([]domain.GenreForecast, 0, len(stats))
	for _, s := range stats {
		growth, ok := genreGrowth[s.Genre]
		if !ok {
			growth = defaultGrowth
		}

		var recommendation string
		switch {
		case s.StockLevel < 0.3:
			recommendation = "Immediate restock needed"
		case s.StockLevel < 0.5 && growth > 5:
			recommendation = "Urgent restock recommended"
		case s.StockLevel < 0.5:
			recommendation = "Consider restocking"
		default:
			recommendation = "Stock levels optimal"
		}

		forecasts = append(forecasts, domain.GenreForecast{
			Genre:           s.Genre,
			ProjectedGrowth: growth,
			StockLevel:      s.StockLevel,
			Recommendation:  recommendation,
		})
	}
	return forecasts
}
