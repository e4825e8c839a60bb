package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"booknest/internal/domain"
	"booknest/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// CheckoutParams carries the customer details for placing an order.
type CheckoutParams struct {
	CustomerName string
	Email        string
	Address      string
	City         string
	Country      string
}

// OrderService implements the cart and checkout flow. Carts are keyed by an
// opaque session ID supplied by the client.
type OrderService interface {
	CartLines(ctx context.Context, sessionID string) ([]*domain.CartLine, error)
	AddToCart(ctx context.Context, sessionID string, bookID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) error
	RemoveCartItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context, sessionID string) error
	Checkout(ctx context.Context, sessionID string, params CheckoutParams) (*domain.Order, []*domain.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderItem, error)
	OrdersForSession(ctx context.Context, sessionID string) ([]*domain.Order, error)
}

type orderService struct {
	bookRepo  repository.BookRepository
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
	salesRepo repository.SalesRepository
	logger    *zap.Logger
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	bookRepo repository.BookRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	salesRepo repository.SalesRepository,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		bookRepo:  bookRepo,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		salesRepo: salesRepo,
		logger:    logger,
	}
}

// CartLines returns a session's cart with each line's book attached. Lines
// whose book has been removed from the catalog are dropped from the view.
func (s *orderService) CartLines(ctx context.Context, sessionID string) ([]*domain.CartLine, error) {
	items, err := s.cartRepo.ItemsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lines := make([]*domain.CartLine, 0, len(items))
	for _, item := range items {
		book, err := s.bookRepo.FindByID(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrBookNotFound) {
				continue
			}
			return nil, err
		}
		lines = append(lines, &domain.CartLine{CartItem: *item, Book: book})
	}

	return lines, nil
}

// AddToCart puts a book in the cart, merging quantities if it is already there.
func (s *orderService) AddToCart(ctx context.Context, sessionID string, bookID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// Reject references to books that do not exist up front.
	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	item := &domain.CartItem{
		ID:        uuid.New(),
		SessionID: sessionID,
		BookID:    bookID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}

	return s.cartRepo.Add(ctx, item)
}

// UpdateCartItem sets the quantity of one cart line.
func (s *orderService) UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.cartRepo.UpdateQuantity(ctx, itemID, quantity)
}

// RemoveCartItem deletes one cart line.
func (s *orderService) RemoveCartItem(ctx context.Context, itemID uuid.UUID) error {
	return s.cartRepo.Remove(ctx, itemID)
}

// ClearCart empties a session's cart.
func (s *orderService) ClearCart(ctx context.Context, sessionID string) error {
	return s.cartRepo.Clear(ctx, sessionID)
}

// Checkout turns a session's cart into an order. Each line snapshots the
// book's price at purchase time, stock is decremented (never below zero),
// a sale is recorded in the ledger, and the cart is cleared.
func (s *orderService) Checkout(ctx context.Context, sessionID string, params CheckoutParams) (*domain.Order, []*domain.OrderItem, error) {
	lines, err := s.CartLines(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	now := time.Now()
	total := 0.0
	for _, line := range lines {
		total += line.Book.Price * float64(line.Quantity)
	}

	order := &domain.Order{
		ID:           uuid.New(),
		SessionID:    sessionID,
		CustomerName: params.CustomerName,
		Email:        params.Email,
		Address:      params.Address,
		City:         params.City,
		Country:      params.Country,
		Total:        round2(total),
		Status:       domain.OrderStatusConfirmed,
		CreatedAt:    now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, nil, err
	}

	items := make([]*domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			BookID:    line.BookID,
			Quantity:  line.Quantity,
			Price:     line.Book.Price,
			CreatedAt: now,
		}
		if err := s.orderRepo.CreateItem(ctx, item); err != nil {
			return nil, nil, err
		}
		items = append(items, item)

		if err := s.recordSale(ctx, line, now); err != nil {
			return nil, nil, err
		}
	}

	if err := s.cartRepo.Clear(ctx, sessionID); err != nil {
		return nil, nil, fmt.Errorf("failed to clear cart after checkout: %w", err)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(items)),
		zap.Float64("total", order.Total))

	return order, items, nil
}

// recordSale decrements stock for one purchased line and appends the sale to
// the ledger. Stock clamps at zero and availability is rederived.
func (s *orderService) recordSale(ctx context.Context, line *domain.CartLine, at time.Time) error {
	stock := line.Book.Stock - line.Quantity
	if stock < 0 {
		stock = 0
	}

	availability := domain.DeriveAvailability(stock, line.Book.Availability == domain.AvailabilityPreOrder)
	if err := s.bookRepo.UpdateStock(ctx, line.BookID, stock, availability); err != nil {
		return err
	}

	return s.salesRepo.Append(ctx, &domain.SaleRecord{
		ID:        uuid.New(),
		BookID:    line.BookID,
		Quantity:  line.Quantity,
		Amount:    round2(line.Book.Price * float64(line.Quantity)),
		Date:      at,
		CreatedAt: at,
	})
}

// GetOrder retrieves one order with its lines.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.orderRepo.ItemsForOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// OrdersForSession lists a session's orders, newest first.
func (s *orderService) OrdersForSession(ctx context.Context, sessionID string) ([]*domain.Order, error) {
	return s.orderRepo.FindBySession(ctx, sessionID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
