package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"booknest/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSuggestionNotFound = errors.New("price suggestion not found")
)

// SuggestionRepository caches the latest price suggestion per book. Each new
// analysis replaces the previous row; no history is kept.
type SuggestionRepository interface {
	Upsert(ctx context.Context, suggestion *domain.PriceSuggestion) error
	FindByBookID(ctx context.Context, bookID uuid.UUID) (*domain.PriceSuggestion, error)
	List(ctx context.Context) ([]*domain.PriceSuggestion, error)
}

type suggestionRepository struct {
	db *sql.DB
}

// NewSuggestionRepository creates a new instance of SuggestionRepository.
func NewSuggestionRepository(db *sql.DB) SuggestionRepository {
	return &suggestionRepository{db: db}
}

// Upsert writes a suggestion, replacing any earlier one for the same book.
func (r *suggestionRepository) Upsert(ctx context.Context, s *domain.PriceSuggestion) error {
	query := `
		INSERT INTO price_suggestions (id, book_id, current_price, suggested_price,
			percent_change, demand_trend, market_average, competitive_position,
			elasticity_factor, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (book_id) DO UPDATE SET
			current_price = EXCLUDED.current_price,
			suggested_price = EXCLUDED.suggested_price,
			percent_change = EXCLUDED.percent_change,
			demand_trend = EXCLUDED.demand_trend,
			market_average = EXCLUDED.market_average,
			competitive_position = EXCLUDED.competitive_position,
			elasticity_factor = EXCLUDED.elasticity_factor,
			confidence = EXCLUDED.confidence,
			created_at = EXCLUDED.created_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.BookID,
		s.CurrentPrice,
		s.SuggestedPrice,
		s.PercentChange,
		s.DemandTrend,
		s.MarketAverage,
		s.CompetitivePosition,
		s.ElasticityFactor,
		s.Confidence,
		s.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert price suggestion: %w", err)
	}

	return nil
}

const suggestionColumns = `id, book_id, current_price, suggested_price, percent_change,
		demand_trend, market_average, competitive_position, elasticity_factor,
		confidence, created_at`

func scanSuggestion(row interface{ Scan(...any) error }) (*domain.PriceSuggestion, error) {
	s := &domain.PriceSuggestion{}
	err := row.Scan(
		&s.ID,
		&s.BookID,
		&s.CurrentPrice,
		&s.SuggestedPrice,
		&s.PercentChange,
		&s.DemandTrend,
		&s.MarketAverage,
		&s.CompetitivePosition,
		&s.ElasticityFactor,
		&s.Confidence,
		&s.CreatedAt,
	)
	return s, err
}

// FindByBookID retrieves the latest suggestion for one book.
func (r *suggestionRepository) FindByBookID(ctx context.Context, bookID uuid.UUID) (*domain.PriceSuggestion, error) {
	query := fmt.Sprintf(`SELECT %s FROM price_suggestions WHERE book_id = $1`, suggestionColumns)

	s, err := scanSuggestion(r.db.QueryRowContext(ctx, query, bookID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("failed to find price suggestion: %w", err)
	}

	return s, nil
}

// List returns every cached suggestion, newest analysis first.
func (r *suggestionRepository) List(ctx context.Context) ([]*domain.PriceSuggestion, error) {
	query := fmt.Sprintf(`SELECT %s FROM price_suggestions ORDER BY created_at DESC`, suggestionColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list price suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := []*domain.PriceSuggestion{}
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price suggestions: %w", err)
	}

	return suggestions, nil
}
