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
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository manages session shopping carts.
type CartRepository interface {
	ItemsBySession(ctx context.Context, sessionID string) ([]*domain.CartItem, error)
	Add(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Remove(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context, sessionID string) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository.
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// ItemsBySession lists a session's cart, oldest line first.
func (r *cartRepository) ItemsBySession(ctx context.Context, sessionID string) ([]*domain.CartItem, error) {
	query := `
		SELECT id, session_id, book_id, quantity, created_at
		FROM cart_items
		WHERE session_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item := &domain.CartItem{}
		if err := rows.Scan(&item.ID, &item.SessionID, &item.BookID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Add puts a book in the cart. Adding a book already in the cart merges into
// the existing line by bumping its quantity.
func (r *cartRepository) Add(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (id, session_id, book_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, book_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, session_id, book_id, quantity, created_at
	`

	merged := &domain.CartItem{}
	err := r.db.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.SessionID,
		item.BookID,
		item.Quantity,
		item.CreatedAt,
	).Scan(&merged.ID, &merged.SessionID, &merged.BookID, &merged.Quantity, &merged.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return merged, nil
}

// UpdateQuantity sets the quantity of one cart line.
func (r *cartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return requireRow(result, ErrCartItemNotFound)
}

// Remove deletes one cart line.
func (r *cartRepository) Remove(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return requireRow(result, ErrCartItemNotFound)
}

// Clear empties a session's cart. Clearing an already-empty cart is not an
// error.
func (r *cartRepository) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
