package repository

import (
	"context"
	"testing"
	"time"

	"booknest/internal/domain"

	"github.com/google/uuid"
)

// appendSale writes one ledger entry dated daysAgo days back, at midday so
// day truncation is stable regardless of when the test runs.
func appendSale(t *testing.T, repo SalesRepository, bookID uuid.UUID, daysAgo, quantity int) {
	t.Helper()

	day := time.Now().UTC().Truncate(24 * time.Hour).Add(12 * time.Hour).AddDate(0, 0, -daysAgo)
	record := &domain.SaleRecord{
		ID:        uuid.New(),
		BookID:    bookID,
		Quantity:  quantity,
		Amount:    float64(quantity) * 9.99,
		Date:      day,
		CreatedAt: time.Now(),
	}
	if err := repo.Append(context.Background(), record); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
}

func TestHistoryForBook_ZeroFillsQuietDays(t *testing.T) {
	clearBooks(t)
	books := NewBookRepository(testDB)
	sales := NewSalesRepository(testDB)
	ctx := context.Background()

	book := testBook(domain.GenreFiction, 12.00)
	if err := books.Create(ctx, book); err != nil {
		t.Fatal(err)
	}

	appendSale(t, sales, book.ID, 3, 2)
	appendSale(t, sales, book.ID, 1, 4)

	history, err := sales.HistoryForBook(ctx, book.ID, 30)
	if err != nil {
		t.Fatalf("HistoryForBook failed: %v", err)
	}

	// Days -3 through today: the gap at -2 and the saleless today are zeros.
	want := []int{2, 0, 4, 0}
	if len(history) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(history), history)
	}
	for i, q := range want {
		if history[i] != q {
			t.Errorf("entry %d: expected %d, got %d", i, q, history[i])
		}
	}
}

func TestHistoryForBook_TrailingSilenceReadsAsZeros(t *testing.T) {
	clearBooks(t)
	books := NewBookRepository(testDB)
	sales := NewSalesRepository(testDB)
	ctx := context.Background()

	book := testBook(domain.GenreMystery, 15.00)
	if err := books.Create(ctx, book); err != nil {
		t.Fatal(err)
	}

	// Steady sales a week ago, then nothing. The trailing zeros are what lets
	// the trend detector see the collapse.
	appendSale(t, sales, book.ID, 6, 5)
	appendSale(t, sales, book.ID, 5, 5)
	appendSale(t, sales, book.ID, 4, 5)

	history, err := sales.HistoryForBook(ctx, book.ID, 30)
	if err != nil {
		t.Fatalf("HistoryForBook failed: %v", err)
	}

	if len(history) != 7 {
		t.Fatalf("expected 7 entries for days -6 through today, got %d: %v", len(history), history)
	}
	for i := 0; i < 3; i++ {
		if history[i] != 5 {
			t.Errorf("entry %d: expected 5, got %d", i, history[i])
		}
	}
	for i := 3; i < 7; i++ {
		if history[i] != 0 {
			t.Errorf("entry %d: expected 0, got %d", i, history[i])
		}
	}
}

func TestHistoryForBook_NoSales(t *testing.T) {
	clearBooks(t)
	books := NewBookRepository(testDB)
	sales := NewSalesRepository(testDB)
	ctx := context.Background()

	book := testBook(domain.GenreRomance, 9.00)
	if err := books.Create(ctx, book); err != nil {
		t.Fatal(err)
	}

	history, err := sales.HistoryForBook(ctx, book.ID, 30)
	if err != nil {
		t.Fatalf("HistoryForBook failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %v", history)
	}
}
