package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"booknest/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

// BookRepository defines the interface for catalog data access.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, book *domain.Book) error
	UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int, availability domain.Availability) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Filter(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	GenreAveragePrice(ctx context.Context, genre domain.Genre, exclude uuid.UUID) (float64, int, error)
	GenreInventory(ctx context.Context) ([]*domain.GenreStats, error)
}

type bookRepository struct {
	db *sql.DB
}

// NewBookRepository creates a new instance of BookRepository.
func NewBookRepository(db *sql.DB) BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, title, author, description, price, original_price, genre, rating,
		review_count, stock, availability, featured, new_release, best_seller,
		published_at, created_at, updated_at`

func scanBook(row interface{ Scan(...any) error }) (*domain.Book, error) {
	book := &domain.Book{}
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.Price,
		&book.OriginalPrice,
		&book.Genre,
		&book.Rating,
		&book.ReviewCount,
		&book.Stock,
		&book.Availability,
		&book.Featured,
		&book.NewRelease,
		&book.BestSeller,
		&book.PublishedAt,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	return book, err
}

// Create inserts a new book into the catalog.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, author, description, price, original_price, genre,
			rating, review_count, stock, availability, featured, new_release, best_seller,
			published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.Price,
		book.OriginalPrice,
		book.Genre,
		book.Rating,
		book.ReviewCount,
		book.Stock,
		book.Availability,
		book.Featured,
		book.NewRelease,
		book.BestSeller,
		book.PublishedAt,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// Update replaces all mutable fields of an existing book.
func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, description = $4, price = $5, original_price = $6,
		    genre = $7, rating = $8, review_count = $9, stock = $10, availability = $11,
		    featured = $12, new_release = $13, best_seller = $14, published_at = $15,
		    updated_at = $16
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.Price,
		book.OriginalPrice,
		book.Genre,
		book.Rating,
		book.ReviewCount,
		book.Stock,
		book.Availability,
		book.Featured,
		book.NewRelease,
		book.BestSeller,
		book.PublishedAt,
		book.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}

	return requireRow(result, ErrBookNotFound)
}

// UpdatePrice changes only a book's price. Last write wins; concurrent price
// updates to the same book are not serialized.
func (r *bookRepository) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error {
	query := `UPDATE books SET price = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, price, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update book price: %w", err)
	}

	return requireRow(result, ErrBookNotFound)
}

// UpdateStock sets a book's stock level and derived availability.
func (r *bookRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int, availability domain.Availability) error {
	query := `UPDATE books SET stock = $2, availability = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, stock, availability, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update book stock: %w", err)
	}

	return requireRow(result, ErrBookNotFound)
}

// Delete removes a book from the catalog.
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	return requireRow(result, ErrBookNotFound)
}

// FindByID retrieves a book by ID.
func (r *bookRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)

	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}

	return book, nil
}

// Filter retrieves books matching every set predicate. An empty filter
// returns the whole catalog.
func (r *bookRepository) Filter(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	addArg := func(condition string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(condition, argIndex))
		args = append(args, value)
		argIndex++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		addArg("(title ILIKE $%d OR author ILIKE $%[1]d)", "%"+search+"%")
	}
	if filter.MinPrice != nil {
		addArg("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		addArg("price <= $%d", *filter.MaxPrice)
	}
	if len(filter.Genres) > 0 {
		placeholders := make([]string, len(filter.Genres))
		for i, g := range filter.Genres {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, g)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("genre IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(filter.Availability) > 0 {
		placeholders := make([]string, len(filter.Availability))
		for i, a := range filter.Availability {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, a)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("availability IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Featured != nil {
		addArg("featured = $%d", *filter.Featured)
	}
	if filter.NewRelease != nil {
		addArg("new_release = $%d", *filter.NewRelease)
	}
	if filter.BestSeller != nil {
		addArg("best_seller = $%d", *filter.BestSeller)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY created_at DESC`, bookColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to filter books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}

	return books, nil
}

// GenreAveragePrice returns the mean price across a genre's other books and
// how many books contributed. A zero count means the book has no market
// peers and no meaningful market average exists.
func (r *bookRepository) GenreAveragePrice(ctx context.Context, genre domain.Genre, exclude uuid.UUID) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(price), 0), COUNT(*)
		FROM books
		WHERE genre = $1 AND id <> $2
	`

	var avg float64
	var count int
	if err := r.db.QueryRowContext(ctx, query, genre, exclude).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("failed to compute genre average price: %w", err)
	}

	return avg, count, nil
}

// GenreInventory returns per-genre book counts and shelf levels. Stock level
// is the filled fraction of a nominal 100 copies per title, capped at 1.
func (r *bookRepository) GenreInventory(ctx context.Context) ([]*domain.GenreStats, error) {
	query := `
		SELECT genre, COUNT(*), LEAST(1.0, SUM(stock)::float / (COUNT(*) * 100))
		FROM books
		GROUP BY genre
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre inventory: %w", err)
	}
	defer rows.Close()

	stats := []*domain.GenreStats{}
	for rows.Next() {
		s := &domain.GenreStats{}
		if err := rows.Scan(&s.Genre, &s.BookCount, &s.StockLevel); err != nil {
			return nil, fmt.Errorf("failed to scan genre inventory: %w", err)
		}
		stats = append(stats, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genre inventory: %w", err)
	}

	return stats, nil
}

// requireRow converts a zero-row update into the given sentinel error.
func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
