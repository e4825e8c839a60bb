package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"booknest/internal/domain"

	"github.com/google/uuid"
)

// GenreSales pairs a genre with its total units sold.
type GenreSales struct {
	Genre domain.Genre
	Total int
}

// SalesRepository is the append-only sales ledger. Records are written once
// at checkout and never mutated.
type SalesRepository interface {
	Append(ctx context.Context, record *domain.SaleRecord) error
	HistoryForBook(ctx context.Context, bookID uuid.UUID, days int) ([]int, error)
	SalesByDate(ctx context.Context) ([]*domain.DailySales, error)
	GenreTotals(ctx context.Context) ([]GenreSales, error)
}

type salesRepository struct {
	db *sql.DB
}

// NewSalesRepository creates a new instance of SalesRepository.
func NewSalesRepository(db *sql.DB) SalesRepository {
	return &salesRepository{db: db}
}

// Append writes one ledger entry.
func (r *salesRepository) Append(ctx context.Context, record *domain.SaleRecord) error {
	query := `
		INSERT INTO sale_records (id, book_id, quantity, amount, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.BookID,
		record.Quantity,
		record.Amount,
		record.Date,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append sale record: %w", err)
	}

	return nil
}

// HistoryForBook returns per-day quantities for a book over the trailing
// window, oldest first. Days without sales after the first selling day count
// as zero, so a quiet spell reads as a decline instead of being skipped.
func (r *salesRepository) HistoryForBook(ctx context.Context, bookID uuid.UUID, days int) ([]int, error) {
	query := `
		SELECT date_trunc('day', date)::date, SUM(quantity)
		FROM sale_records
		WHERE book_id = $1 AND date >= NOW() - ($2 || ' days')::interval
		GROUP BY date_trunc('day', date)
		ORDER BY date_trunc('day', date)
	`

	rows, err := r.db.QueryContext(ctx, query, bookID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales history: %w", err)
	}
	defer rows.Close()

	var first time.Time
	byDay := map[string]int{}
	for rows.Next() {
		var day time.Time
		var quantity int
		if err := rows.Scan(&day, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sales history: %w", err)
		}
		if first.IsZero() {
			first = day
		}
		byDay[day.Format("2006-01-02")] = quantity
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales history: %w", err)
	}

	history := []int{}
	if first.IsZero() {
		return history, nil
	}

	now := time.Now()
	for d := first; !d.After(now); d = d.AddDate(0, 0, 1) {
		history = append(history, byDay[d.Format("2006-01-02")])
	}

	return history, nil
}

// SalesByDate aggregates the whole ledger per calendar day for the dashboard
// chart, oldest first.
func (r *salesRepository) SalesByDate(ctx context.Context) ([]*domain.DailySales, error) {
	query := `
		SELECT to_char(date_trunc('day', date), 'YYYY-MM-DD'), SUM(quantity), SUM(amount)
		FROM sale_records
		GROUP BY date_trunc('day', date)
		ORDER BY date_trunc('day', date)
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales by date: %w", err)
	}
	defer rows.Close()

	daily := []*domain.DailySales{}
	for rows.Next() {
		d := &domain.DailySales{}
		if err := rows.Scan(&d.Date, &d.Quantity, &d.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		daily = append(daily, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily sales: %w", err)
	}

	return daily, nil
}

// GenreTotals sums units sold per genre, highest first.
func (r *salesRepository) GenreTotals(ctx context.Context) ([]GenreSales, error) {
	query := `
		SELECT b.genre, COALESCE(SUM(s.quantity), 0)
		FROM books b
		LEFT JOIN sale_records s ON s.book_id = b.id
		GROUP BY b.genre
		ORDER BY COALESCE(SUM(s.quantity), 0) DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre totals: %w", err)
	}
	defer rows.Close()

	totals := []GenreSales{}
	for rows.Next() {
		var gs GenreSales
		if err := rows.Scan(&gs.Genre, &gs.Total); err != nil {
			return nil, fmt.Errorf("failed to scan genre totals: %w", err)
		}
		totals = append(totals, gs)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genre totals: %w", err)
	}

	return totals, nil
}
