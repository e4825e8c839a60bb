package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"booknest/internal/domain"
	"booknest/internal/pricing"
	"booknest/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// salesWindowDays is the trailing window fed to the pricing engine. The trend
// detector only looks at the tail, but demand scoring wants a wider view.
const salesWindowDays = 30

// AnalyticsService runs the pricing engine over the catalog and serves the
// dashboard aggregates.
type AnalyticsService interface {
	AnalyzeBook(ctx context.Context, bookID uuid.UUID) (*domain.PriceSuggestion, error)
	AnalyzeAll(ctx context.Context) ([]*domain.PriceSuggestion, error)
	ApplyPriceUpdates(ctx context.Context, updates []domain.PriceUpdate) ([]*domain.PriceUpdateResult, error)
	Suggestions(ctx context.Context) ([]*domain.PriceSuggestion, error)
	SuggestionForBook(ctx context.Context, bookID uuid.UUID) (*domain.PriceSuggestion, error)
	DemandScore(ctx context.Context, bookID uuid.UUID) (float64, error)
	SweepPrices(ctx context.Context, bookID uuid.UUID, minPrice, maxPrice, step float64) (*pricing.SweepResult, error)
	SalesByDate(ctx context.Context) ([]*domain.DailySales, error)
	GenreDistribution(ctx context.Context) ([]*domain.GenreStats, error)
	GenreForecasts(ctx context.Context) ([]domain.GenreForecast, error)
}

type analyticsService struct {
	bookRepo       repository.BookRepository
	salesRepo      repository.SalesRepository
	suggestionRepo repository.SuggestionRepository
	engine         *pricing.Engine
	logger         *zap.Logger

	// The engine's randomness source is not goroutine safe.
	mu sync.Mutex
}

// NewAnalyticsService creates a new instance of AnalyticsService.
func NewAnalyticsService(
	bookRepo repository.BookRepository,
	salesRepo repository.SalesRepository,
	suggestionRepo repository.SuggestionRepository,
	engine *pricing.Engine,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsService{
		bookRepo:       bookRepo,
		salesRepo:      salesRepo,
		suggestionRepo: suggestionRepo,
		engine:         engine,
		logger:         logger,
	}
}

// AnalyzeBook runs the pricing engine for one book and caches the result,
// replacing any earlier suggestion for the same book.
func (s *analyticsService) AnalyzeBook(ctx context.Context, bookID uuid.UUID) (*domain.PriceSuggestion, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	input, err := s.engineInput(ctx, book)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	result, err := s.engine.Suggest(input)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	suggestion := &domain.PriceSuggestion{
		ID:                  uuid.New(),
		BookID:              book.ID,
		CurrentPrice:        result.CurrentPrice,
		SuggestedPrice:      result.SuggestedPrice,
		PercentChange:       result.PercentChange,
		DemandTrend:         result.DemandTrend,
		MarketAverage:       result.MarketAverage,
		CompetitivePosition: result.CompetitivePosition,
		ElasticityFactor:    result.ElasticityFactor,
		Confidence:          result.Confidence,
		CreatedAt:           time.Now(),
	}

	if err := s.suggestionRepo.Upsert(ctx, suggestion); err != nil {
		return nil, err
	}

	return suggestion, nil
}

// AnalyzeAll runs the engine over the whole catalog. A failure on one book is
// logged and skipped so the rest of the run still completes.
func (s *analyticsService) AnalyzeAll(ctx context.Context) ([]*domain.PriceSuggestion, error) {
	books, err := s.bookRepo.Filter(ctx, domain.BookFilter{})
	if err != nil {
		return nil, err
	}

	suggestions := make([]*domain.PriceSuggestion, 0, len(books))
	for _, book := range books {
		suggestion, err := s.AnalyzeBook(ctx, book.ID)
		if err != nil {
			s.logger.Warn("skipping book in bulk analysis",
				zap.String("book_id", book.ID.String()),
				zap.Error(err))
			continue
		}
		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}

// ApplyPriceUpdates applies a batch of price changes with partial success:
// updates referencing missing books are skipped, not fatal. The reported old
// price and percent change come from the prices the caller passed, which may
// lag the stored price when the book was repriced in between.
func (s *analyticsService) ApplyPriceUpdates(ctx context.Context, updates []domain.PriceUpdate) ([]*domain.PriceUpdateResult, error) {
	// Reject the whole batch up front; a bad entry must not abort midway with
	// earlier updates already written.
	for _, u := range updates {
		if u.OldPrice <= 0 || u.NewPrice <= 0 {
			return nil, ErrInvalidPrice
		}
	}

	results := make([]*domain.PriceUpdateResult, 0, len(updates))

	for _, u := range updates {
		book, err := s.bookRepo.FindByID(ctx, u.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrBookNotFound) {
				s.logger.Warn("skipping price update for missing book",
					zap.String("book_id", u.BookID.String()))
				continue
			}
			return nil, err
		}

		if err := s.bookRepo.UpdatePrice(ctx, book.ID, u.NewPrice); err != nil {
			if errors.Is(err, repository.ErrBookNotFound) {
				continue
			}
			return nil, err
		}

		results = append(results, &domain.PriceUpdateResult{
			BookID:        book.ID,
			Title:         book.Title,
			OldPrice:      u.OldPrice,
			NewPrice:      u.NewPrice,
			PercentChange: round1((u.NewPrice - u.OldPrice) / u.OldPrice * 100),
		})
	}

	return results, nil
}

// Suggestions lists every cached suggestion.
func (s *analyticsService) Suggestions(ctx context.Context) ([]*domain.PriceSuggestion, error) {
	return s.suggestionRepo.List(ctx)
}

// SuggestionForBook returns the cached suggestion for one book.
func (s *analyticsService) SuggestionForBook(ctx context.Context, bookID uuid.UUID) (*domain.PriceSuggestion, error) {
	return s.suggestionRepo.FindByBookID(ctx, bookID)
}

// DemandScore computes the 0-10 urgency metric for one book.
func (s *analyticsService) DemandScore(ctx context.Context, bookID uuid.UUID) (float64, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return 0, err
	}

	history, err := s.salesRepo.HistoryForBook(ctx, bookID, salesWindowDays)
	if err != nil {
		return 0, err
	}

	return s.engine.DemandScore(pricing.BookInput{
		Price:        book.Price,
		Stock:        book.Stock,
		Rating:       book.Rating,
		SalesHistory: history,
	}), nil
}

// SweepPrices scans a price range for the revenue-maximizing point.
func (s *analyticsService) SweepPrices(ctx context.Context, bookID uuid.UUID, minPrice, maxPrice, step float64) (*pricing.SweepResult, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	input, err := s.engineInput(ctx, book)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.SweepPrices(input, minPrice, maxPrice, step)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// SalesByDate returns the per-day rollup of the whole ledger.
func (s *analyticsService) SalesByDate(ctx context.Context) ([]*domain.DailySales, error) {
	return s.salesRepo.SalesByDate(ctx)
}

// GenreDistribution merges per-genre inventory with units sold.
func (s *analyticsService) GenreDistribution(ctx context.Context) ([]*domain.GenreStats, error) {
	stats, err := s.bookRepo.GenreInventory(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := s.salesRepo.GenreTotals(ctx)
	if err != nil {
		return nil, err
	}

	sold := make(map[domain.Genre]int, len(totals))
	for _, t := range totals {
		sold[t.Genre] = t.Total
	}
	for _, st := range stats {
		st.TotalSales = sold[st.Genre]
	}

	return stats, nil
}

// GenreForecasts turns per-genre stock levels into restock recommendations.
func (s *analyticsService) GenreForecasts(ctx context.Context) ([]domain.GenreForecast, error) {
	stats, err := s.GenreDistribution(ctx)
	if err != nil {
		return nil, err
	}

	flat := make([]domain.GenreStats, 0, len(stats))
	for _, st := range stats {
		flat = append(flat, *st)
	}

	return pricing.ForecastGenres(flat), nil
}

// engineInput assembles the pricing engine's view of one book. A genre with no
// other books yields no market average rather than a zero one.
func (s *analyticsService) engineInput(ctx context.Context, book *domain.Book) (pricing.BookInput, error) {
	history, err := s.salesRepo.HistoryForBook(ctx, book.ID, salesWindowDays)
	if err != nil {
		return pricing.BookInput{}, err
	}

	input := pricing.BookInput{
		Price:        book.Price,
		Stock:        book.Stock,
		Rating:       book.Rating,
		SalesHistory: history,
	}

	avg, peers, err := s.bookRepo.GenreAveragePrice(ctx, book.Genre, book.ID)
	if err != nil {
		return pricing.BookInput{}, err
	}
	if peers > 0 {
		input.MarketAverage = &avg
	}

	return input, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
