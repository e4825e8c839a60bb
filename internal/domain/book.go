package domain

import (
	"time"

	"github.com/google/uuid"
)

// Genre is the fixed set of catalog genres.
type Genre string

const (
	GenreFiction    Genre = "fiction"
	GenreNonFiction Genre = "non_fiction"
	GenreSciFi      Genre = "science_fiction"
	GenreMystery    Genre = "mystery"
	GenreChildrens  Genre = "childrens"
	GenreRomance    Genre = "romance"
)

// Genres lists every valid genre, in display order.
var Genres = []Genre{
	GenreFiction,
	GenreNonFiction,
	GenreSciFi,
	GenreMystery,
	GenreChildrens,
	GenreRomance,
}

// Valid reports whether g is one of the known genres.
func (g Genre) Valid() bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// Availability describes a book's stock status.
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityLowStock   Availability = "low_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityPreOrder   Availability = "pre_order"
)

// LowStockThreshold is the stock level at or below which a book is low-stock.
const LowStockThreshold = 5

// Valid reports whether a is a known availability status.
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityInStock, AvailabilityLowStock, AvailabilityOutOfStock, AvailabilityPreOrder:
		return true
	}
	return false
}

// DeriveAvailability computes the stock status for a stock level. Pre-order
// books keep that status regardless of stock.
func DeriveAvailability(stock int, preOrder bool) Availability {
	if preOrder {
		return AvailabilityPreOrder
	}
	if stock <= 0 {
		return AvailabilityOutOfStock
	}
	if stock <= LowStockThreshold {
		return AvailabilityLowStock
	}
	return AvailabilityInStock
}

// Book represents a catalog entry.
type Book struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	Title         string       `json:"title" db:"title"`
	Author        string       `json:"author" db:"author"`
	Description   string       `json:"description" db:"description"`
	Price         float64      `json:"price" db:"price"`
	OriginalPrice *float64     `json:"original_price,omitempty" db:"original_price"`
	Genre         Genre        `json:"genre" db:"genre"`
	Rating        float64      `json:"rating" db:"rating"`
	ReviewCount   int          `json:"review_count" db:"review_count"`
	Stock         int          `json:"stock" db:"stock"`
	Availability  Availability `json:"availability" db:"availability"`
	Featured      bool         `json:"featured" db:"featured"`
	NewRelease    bool         `json:"new_release" db:"new_release"`
	BestSeller    bool         `json:"best_seller" db:"best_seller"`
	PublishedAt   time.Time    `json:"published_at" db:"published_at"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// BookFilter is the set of predicates applied when browsing the catalog.
// Zero-valued fields are ignored.
type BookFilter struct {
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	Genres       []Genre
	Availability []Availability
	Featured     *bool
	NewRelease   *bool
	BestSeller   *bool
}

// SaleRecord is one append-only entry in the sales ledger. Created once per
// order item at checkout and never mutated.
type SaleRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	BookID    uuid.UUID `json:"book_id" db:"book_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Amount    float64   `json:"amount" db:"amount"`
	Date      time.Time `json:"date" db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DailySales aggregates ledger entries for one calendar day.
type DailySales struct {
	Date     string  `json:"date"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// GenreStats summarizes catalog presence and sales volume for one genre.
type GenreStats struct {
	Genre      Genre   `json:"genre"`
	BookCount  int     `json:"book_count"`
	TotalSales int     `json:"total_sales"`
	StockLevel float64 `json:"stock_level"`
}
