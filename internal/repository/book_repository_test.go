package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"booknest/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS books (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			author VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price DECIMAL(10, 2) NOT NULL CHECK (price > 0),
			original_price DECIMAL(10, 2),
			genre VARCHAR(50) NOT NULL,
			rating DECIMAL(3, 2) NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0,
			availability VARCHAR(20) NOT NULL DEFAULT 'in_stock',
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			new_release BOOLEAN NOT NULL DEFAULT FALSE,
			best_seller BOOLEAN NOT NULL DEFAULT FALSE,
			published_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS sale_records (
			id UUID PRIMARY KEY,
			book_id UUID NOT NULL REFERENCES books (id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL,
			amount DECIMAL(10, 2) NOT NULL,
			date TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func clearBooks(t *testing.T) {
	t.Helper()
	if _, err := testDB.Exec("DELETE FROM books"); err != nil {
		t.Fatalf("failed to clear books: %v", err)
	}
}

func testBook(genre domain.Genre, price float64) *domain.Book {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Book{
		ID:           uuid.New(),
		Title:        "The Left Hand of Darkness",
		Author:       "Ursula K. Le Guin",
		Description:  "A classic.",
		Price:        price,
		Genre:        genre,
		Rating:       4.5,
		ReviewCount:  120,
		Stock:        30,
		Availability: domain.AvailabilityInStock,
		PublishedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestBookRoundtrip(t *testing.T) {
	clearBooks(t)
	repo := NewBookRepository(testDB)
	ctx := context.Background()

	book := testBook(domain.GenreSciFi, 19.99)
	if err := repo.Create(ctx, book); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if found.Title != book.Title || found.Author != book.Author {
		t.Errorf("roundtrip mismatch: got %q by %q", found.Title, found.Author)
	}
	if found.Price != 19.99 {
		t.Errorf("expected price 19.99, got %v", found.Price)
	}
	if found.Genre != domain.GenreSciFi {
		t.Errorf("expected genre science_fiction, got %s", found.Genre)
	}
	if found.OriginalPrice != nil {
		t.Errorf("expected nil original price, got %v", *found.OriginalPrice)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo := NewBookRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestUpdatePrice(t *testing.T) {
	clearBooks(t)
	repo := NewBookRepository(testDB)
	ctx := context.Background()

	book := testBook(domain.GenreFiction, 10.00)
	if err := repo.Create(ctx, book); err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdatePrice(ctx, book.ID, 12.50); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}

	found, _ := repo.FindByID(ctx, book.ID)
	if found.Price != 12.50 {
		t.Errorf("expected price 12.50, got %v", found.Price)
	}

	if err := repo.UpdatePrice(ctx, uuid.New(), 5.00); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound for missing book, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	clearBooks(t)
	repo := NewBookRepository(testDB)
	ctx := context.Background()

	cheap := testBook(domain.GenreFiction, 5.00)
	cheap.Title = "Cheap Paperback"
	mid := testBook(domain.GenreMystery, 12.00)
	mid.Title = "The Hound"
	mid.Author = "Arthur Conan Doyle"
	pricey := testBook(domain.GenreMystery, 30.00)
	pricey.Title = "Collector Edition"
	pricey.Featured = true

	for _, b := range []*domain.Book{cheap, mid, pricey} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter domain.BookFilter
		want   []uuid.UUID
	}{
		{"no filter returns everything", domain.BookFilter{}, []uuid.UUID{cheap.ID, mid.ID, pricey.ID}},
		{"genre filter", domain.BookFilter{Genres: []domain.Genre{domain.GenreMystery}}, []uuid.UUID{mid.ID, pricey.ID}},
		{"price band", domain.BookFilter{MinPrice: floatPtr(10), MaxPrice: floatPtr(20)}, []uuid.UUID{mid.ID}},
		{"search matches author", domain.BookFilter{Search: "doyle"}, []uuid.UUID{mid.ID}},
		{"featured flag", domain.BookFilter{Featured: boolPtr(true)}, []uuid.UUID{pricey.ID}},
		{"combined", domain.BookFilter{Genres: []domain.Genre{domain.GenreMystery}, MaxPrice: floatPtr(15)}, []uuid.UUID{mid.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := repo.Filter(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}

			got := map[uuid.UUID]bool{}
			for _, b := range books {
				got[b.ID] = true
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d books, got %d", len(tt.want), len(got))
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Errorf("expected book %s in result", id)
				}
			}
		})
	}
}

func TestGenreAveragePrice(t *testing.T) {
	clearBooks(t)
	repo := NewBookRepository(testDB)
	ctx := context.Background()

	target := testBook(domain.GenreRomance, 100.00)
	peerA := testBook(domain.GenreRomance, 10.00)
	peerB := testBook(domain.GenreRomance, 20.00)
	other := testBook(domain.GenreFiction, 50.00)

	for _, b := range []*domain.Book{target, peerA, peerB, other} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	avg, count, err := repo.GenreAveragePrice(ctx, domain.GenreRomance, target.ID)
	if err != nil {
		t.Fatalf("GenreAveragePrice failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 peers, got %d", count)
	}
	if avg != 15.00 {
		t.Errorf("expected average 15.00 excluding the target book, got %v", avg)
	}

	// A genre with no peers reports zero count, not an error.
	_, count, err = repo.GenreAveragePrice(ctx, domain.GenreChildrens, target.ID)
	if err != nil {
		t.Fatalf("GenreAveragePrice failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 peers for empty genre, got %d", count)
	}
}

// The market average a book is compared against never includes the book's own
// price, no matter what the peer prices are.
func TestProperty_GenreAverageExcludesOwnPrice(t *testing.T) {
	repo := NewBookRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("average over peers only", prop.ForAll(
		func(peerCents []int) bool {
			clearBooks(t)

			target := testBook(domain.GenreNonFiction, 999.99)
			if err := repo.Create(ctx, target); err != nil {
				return false
			}

			sum := 0.0
			for _, cents := range peerCents {
				peer := testBook(domain.GenreNonFiction, float64(cents)/100)
				if err := repo.Create(ctx, peer); err != nil {
					return false
				}
				sum += float64(cents) / 100
			}

			avg, count, err := repo.GenreAveragePrice(ctx, domain.GenreNonFiction, target.ID)
			if err != nil {
				return false
			}
			if count != len(peerCents) {
				return false
			}
			if count == 0 {
				return true
			}

			expected := sum / float64(count)
			diff := avg - expected
			return diff < 0.001 && diff > -0.001
		},
		gen.SliceOfN(3, gen.IntRange(100, 10000)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func floatPtr(v float64) *float64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
