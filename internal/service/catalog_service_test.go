package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"booknest/internal/domain"
	"booknest/internal/repository"

	"github.com/google/uuid"
)

func TestCreateBook(t *testing.T) {
	tests := []struct {
		name             string
		params           CreateBookParams
		wantErr          error
		wantAvailability domain.Availability
	}{
		{
			name: "in stock",
			params: CreateBookParams{
				Title: "Dune", Author: "Frank Herbert", Price: 14.99,
				Genre: domain.GenreSciFi, Stock: 40, PublishedAt: time.Now(),
			},
			wantAvailability: domain.AvailabilityInStock,
		},
		{
			name: "low stock",
			params: CreateBookParams{
				Title: "Gideon", Author: "Tamsyn Muir", Price: 12.50,
				Genre: domain.GenreSciFi, Stock: 3,
			},
			wantAvailability: domain.AvailabilityLowStock,
		},
		{
			name: "out of stock",
			params: CreateBookParams{
				Title: "Piranesi", Author: "Susanna Clarke", Price: 11.00,
				Genre: domain.GenreFiction, Stock: 0,
			},
			wantAvailability: domain.AvailabilityOutOfStock,
		},
		{
			name: "pre-order keeps status regardless of stock",
			params: CreateBookParams{
				Title: "Untitled", Author: "TBA", Price: 19.99,
				Genre: domain.GenreFiction, Stock: 0, PreOrder: true,
			},
			wantAvailability: domain.AvailabilityPreOrder,
		},
		{
			name: "rejects zero price",
			params: CreateBookParams{
				Title: "Free", Author: "Nobody", Price: 0, Genre: domain.GenreFiction,
			},
			wantErr: ErrInvalidPrice,
		},
		{
			name: "rejects unknown genre",
			params: CreateBookParams{
				Title: "Odd", Author: "Nobody", Price: 5, Genre: "steampunk",
			},
			wantErr: ErrInvalidGenre,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCatalogService(newMockBookRepository())

			book, err := svc.CreateBook(context.Background(), tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBook failed: %v", err)
			}
			if book.Availability != tt.wantAvailability {
				t.Errorf("expected availability %s, got %s", tt.wantAvailability, book.Availability)
			}
			if book.ID == uuid.Nil {
				t.Error("expected a generated ID")
			}
		})
	}
}

func TestUpdateBook_PartialUpdate(t *testing.T) {
	bookRepo := newMockBookRepository()
	svc := NewCatalogService(bookRepo)
	ctx := context.Background()

	book := seedBook(bookRepo, domain.GenreFiction, 10.0, 40, 4.0)

	newPrice := 12.5
	newStock := 2
	updated, err := svc.UpdateBook(ctx, book.ID, UpdateBookParams{
		Price: &newPrice,
		Stock: &newStock,
	})
	if err != nil {
		t.Fatalf("UpdateBook failed: %v", err)
	}

	if updated.Price != 12.5 {
		t.Errorf("expected price 12.5, got %v", updated.Price)
	}
	if updated.Stock != 2 {
		t.Errorf("expected stock 2, got %d", updated.Stock)
	}
	if updated.Availability != domain.AvailabilityLowStock {
		t.Errorf("expected availability rederived to low_stock, got %s", updated.Availability)
	}
	// Untouched fields survive.
	if updated.Title != book.Title || updated.Genre != book.Genre {
		t.Error("expected untouched fields to be preserved")
	}
}

func TestUpdateBook_UnknownBook(t *testing.T) {
	svc := NewCatalogService(newMockBookRepository())

	price := 9.99
	_, err := svc.UpdateBook(context.Background(), uuid.New(), UpdateBookParams{Price: &price})
	if !errors.Is(err, repository.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestDeleteBook(t *testing.T) {
	bookRepo := newMockBookRepository()
	svc := NewCatalogService(bookRepo)
	ctx := context.Background()

	book := seedBook(bookRepo, domain.GenreFiction, 10.0, 40, 4.0)

	if err := svc.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}
	if _, err := svc.GetBook(ctx, book.ID); !errors.Is(err, repository.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound after delete, got %v", err)
	}
	if err := svc.DeleteBook(ctx, book.ID); !errors.Is(err, repository.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound on double delete, got %v", err)
	}
}
