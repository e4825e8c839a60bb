package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationFilesExist(t *testing.T) {
	migrationsDir := "../../migrations"

	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_staff_table.sql",
		"00002_create_books_table.sql",
		"00003_create_cart_items_table.sql",
		"00004_create_orders_table.sql",
		"00005_create_order_items_table.sql",
		"00006_create_sale_records_table.sql",
		"00007_create_price_suggestions_table.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	migrationsDir := "../../migrations"

	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	migrationsDir := "../../migrations"

	expectedTables := map[string]string{
		"staff":             "00001_create_staff_table.sql",
		"books":             "00002_create_books_table.sql",
		"cart_items":        "00003_create_cart_items_table.sql",
		"orders":            "00004_create_orders_table.sql",
		"order_items":       "00005_create_order_items_table.sql",
		"sale_records":      "00006_create_sale_records_table.sql",
		"price_suggestions": "00007_create_price_suggestions_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "CREATE TABLE "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(contentStr, "DROP TABLE "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestBooksTableHasRequiredColumns(t *testing.T) {
	content, err := os.ReadFile("../../migrations/00002_create_books_table.sql")
	if err != nil {
		t.Fatalf("Failed to read books migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"title VARCHAR",
		"author VARCHAR",
		"description TEXT",
		"price DECIMAL",
		"original_price DECIMAL",
		"genre VARCHAR",
		"rating DECIMAL",
		"review_count INTEGER",
		"stock INTEGER",
		"availability VARCHAR",
		"published_at TIMESTAMP",
		"created_at TIMESTAMP",
		"updated_at TIMESTAMP",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Books table missing required column definition: %s", column)
		}
	}

	// Prices must be positive at the schema level too.
	if !strings.Contains(contentStr, "CHECK (price > 0)") {
		t.Error("Books table missing positive price constraint")
	}
}

func TestCartItemsTableHasUniqueConstraint(t *testing.T) {
	content, err := os.ReadFile("../../migrations/00003_create_cart_items_table.sql")
	if err != nil {
		t.Fatalf("Failed to read cart_items migration: %v", err)
	}

	// Adding the same book twice must merge into one line, which relies on
	// this constraint for the upsert.
	if !strings.Contains(string(content), "UNIQUE (session_id, book_id)") {
		t.Error("Cart items table missing unique constraint on (session_id, book_id)")
	}
}

func TestPriceSuggestionsKeepOneRowPerBook(t *testing.T) {
	content, err := os.ReadFile("../../migrations/00007_create_price_suggestions_table.sql")
	if err != nil {
		t.Fatalf("Failed to read price_suggestions migration: %v", err)
	}

	// The upsert that replaces a book's previous suggestion conflicts on this.
	if !strings.Contains(string(content), "UNIQUE") {
		t.Error("Price suggestions table missing unique book_id constraint")
	}
}
