package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line in a session's shopping cart.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	BookID    uuid.UUID `json:"book_id" db:"book_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartLine pairs a cart item with its book for display and checkout.
type CartLine struct {
	CartItem
	Book *Book `json:"book"`
}

// OrderStatus tracks an order through fulfillment.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is a completed checkout.
type Order struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	SessionID    string      `json:"session_id" db:"session_id"`
	CustomerName string      `json:"customer_name" db:"customer_name"`
	Email        string      `json:"email" db:"email"`
	Address      string      `json:"address" db:"address"`
	City         string      `json:"city" db:"city"`
	Country      string      `json:"country" db:"country"`
	Total        float64     `json:"total" db:"total"`
	Status       OrderStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// OrderItem snapshots one purchased book at its price at purchase time.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	BookID    uuid.UUID `json:"book_id" db:"book_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Price     float64   `json:"price" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
