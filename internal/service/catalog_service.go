package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booknest/internal/domain"
	"booknest/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidGenre = errors.New("unknown genre")
	ErrInvalidPrice = errors.New("price must be positive")
)

// CreateBookParams carries everything needed to add a catalog entry.
type CreateBookParams struct {
	Title         string
	Author        string
	Description   string
	Price         float64
	OriginalPrice *float64
	Genre         domain.Genre
	Rating        float64
	ReviewCount   int
	Stock         int
	PreOrder      bool
	Featured      bool
	NewRelease    bool
	BestSeller    bool
	PublishedAt   time.Time
}

// UpdateBookParams lists the fields a catalog update may change. Nil fields
// are left untouched.
type UpdateBookParams struct {
	Title         *string
	Author        *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	Genre         *domain.Genre
	Rating        *float64
	ReviewCount   *int
	Stock         *int
	Featured      *bool
	NewRelease    *bool
	BestSeller    *bool
}

// CatalogService implements catalog browsing and management.
type CatalogService interface {
	CreateBook(ctx context.Context, params CreateBookParams) (*domain.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, params UpdateBookParams) (*domain.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
}

type catalogService struct {
	bookRepo repository.BookRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(bookRepo repository.BookRepository) CatalogService {
	return &catalogService{bookRepo: bookRepo}
}

// CreateBook validates and stores a new catalog entry. Availability is
// derived from stock unless the book is a pre-order.
func (s *catalogService) CreateBook(ctx context.Context, params CreateBookParams) (*domain.Book, error) {
	if params.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if !params.Genre.Valid() {
		return nil, ErrInvalidGenre
	}

	now := time.Now()
	book := &domain.Book{
		ID:            uuid.New(),
		Title:         params.Title,
		Author:        params.Author,
		Description:   params.Description,
		Price:         params.Price,
		OriginalPrice: params.OriginalPrice,
		Genre:         params.Genre,
		Rating:        params.Rating,
		ReviewCount:   params.ReviewCount,
		Stock:         params.Stock,
		Availability:  domain.DeriveAvailability(params.Stock, params.PreOrder),
		Featured:      params.Featured,
		NewRelease:    params.NewRelease,
		BestSeller:    params.BestSeller,
		PublishedAt:   params.PublishedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return book, nil
}

// UpdateBook applies a partial update to an existing book.
func (s *catalogService) UpdateBook(ctx context.Context, id uuid.UUID, params UpdateBookParams) (*domain.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Price != nil {
		if *params.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		book.Price = *params.Price
	}
	if params.Genre != nil {
		if !params.Genre.Valid() {
			return nil, ErrInvalidGenre
		}
		book.Genre = *params.Genre
	}
	if params.Title != nil {
		book.Title = *params.Title
	}
	if params.Author != nil {
		book.Author = *params.Author
	}
	if params.Description != nil {
		book.Description = *params.Description
	}
	if params.OriginalPrice != nil {
		book.OriginalPrice = params.OriginalPrice
	}
	if params.Rating != nil {
		book.Rating = *params.Rating
	}
	if params.ReviewCount != nil {
		book.ReviewCount = *params.ReviewCount
	}
	if params.Stock != nil {
		book.Stock = *params.Stock
		book.Availability = domain.DeriveAvailability(book.Stock, book.Availability == domain.AvailabilityPreOrder)
	}
	if params.Featured != nil {
		book.Featured = *params.Featured
	}
	if params.NewRelease != nil {
		book.NewRelease = *params.NewRelease
	}
	if params.BestSeller != nil {
		book.BestSeller = *params.BestSeller
	}

	book.UpdatedAt = time.Now()

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return book, nil
}

// DeleteBook removes a book from the catalog.
func (s *catalogService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return s.bookRepo.Delete(ctx, id)
}

// GetBook retrieves one book.
func (s *catalogService) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.bookRepo.FindByID(ctx, id)
}

// ListBooks applies the composite catalog filter.
func (s *catalogService) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	return s.bookRepo.Filter(ctx, filter)
}
