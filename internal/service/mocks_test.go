package service

import (
	"context"
	"strings"

	"booknest/internal/domain"
	"booknest/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockBookRepository struct {
	books map[uuid.UUID]*domain.Book
}

func newMockBookRepository() *mockBookRepository {
	return &mockBookRepository{books: make(map[uuid.UUID]*domain.Book)}
}

func (m *mockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	copied := *book
	m.books[book.ID] = &copied
	return nil
}

func (m *mockBookRepository) Update(ctx context.Context, book *domain.Book) error {
	if _, ok := m.books[book.ID]; !ok {
		return repository.ErrBookNotFound
	}
	copied := *book
	m.books[book.ID] = &copied
	return nil
}

func (m *mockBookRepository) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error {
	book, ok := m.books[id]
	if !ok {
		return repository.ErrBookNotFound
	}
	book.Price = price
	return nil
}

func (m *mockBookRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int, availability domain.Availability) error {
	book, ok := m.books[id]
	if !ok {
		return repository.ErrBookNotFound
	}
	book.Stock = stock
	book.Availability = availability
	return nil
}

func (m *mockBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.books[id]; !ok {
		return repository.ErrBookNotFound
	}
	delete(m.books, id)
	return nil
}

func (m *mockBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book, ok := m.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}
	copied := *book
	return &copied, nil
}

func (m *mockBookRepository) Filter(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	books := []*domain.Book{}
	for _, book := range m.books {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(book.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(book.Author), strings.ToLower(filter.Search)) {
			continue
		}
		copied := *book
		books = append(books, &copied)
	}
	return books, nil
}

func (m *mockBookRepository) GenreAveragePrice(ctx context.Context, genre domain.Genre, exclude uuid.UUID) (float64, int, error) {
	sum, count := 0.0, 0
	for _, book := range m.books {
		if book.Genre != genre || book.ID == exclude {
			continue
		}
		sum += book.Price
		count++
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (m *mockBookRepository) GenreInventory(ctx context.Context) ([]*domain.GenreStats, error) {
	counts := map[domain.Genre]int{}
	stock := map[domain.Genre]int{}
	for _, book := range m.books {
		counts[book.Genre]++
		stock[book.Genre] += book.Stock
	}

	stats := []*domain.GenreStats{}
	for genre, count := range counts {
		level := float64(stock[genre]) / (float64(count) * 100)
		if level > 1 {
			level = 1
		}
		stats = append(stats, &domain.GenreStats{Genre: genre, BookCount: count, StockLevel: level})
	}
	return stats, nil
}

type mockSalesRepository struct {
	history  map[uuid.UUID][]int
	appended []*domain.SaleRecord
	daily    []*domain.DailySales
	genres   []repository.GenreSales
}

func newMockSalesRepository() *mockSalesRepository {
	return &mockSalesRepository{history: make(map[uuid.UUID][]int)}
}

func (m *mockSalesRepository) Append(ctx context.Context, record *domain.SaleRecord) error {
	m.appended = append(m.appended, record)
	return nil
}

func (m *mockSalesRepository) HistoryForBook(ctx context.Context, bookID uuid.UUID, days int) ([]int, error) {
	return m.history[bookID], nil
}

func (m *mockSalesRepository) SalesByDate(ctx context.Context) ([]*domain.DailySales, error) {
	return m.daily, nil
}

func (m *mockSalesRepository) GenreTotals(ctx context.Context) ([]repository.GenreSales, error) {
	return m.genres, nil
}

type mockSuggestionRepository struct {
	suggestions map[uuid.UUID]*domain.PriceSuggestion
}

func newMockSuggestionRepository() *mockSuggestionRepository {
	return &mockSuggestionRepository{suggestions: make(map[uuid.UUID]*domain.PriceSuggestion)}
}

func (m *mockSuggestionRepository) Upsert(ctx context.Context, s *domain.PriceSuggestion) error {
	copied := *s
	m.suggestions[s.BookID] = &copied
	return nil
}

func (m *mockSuggestionRepository) FindByBookID(ctx context.Context, bookID uuid.UUID) (*domain.PriceSuggestion, error) {
	s, ok := m.suggestions[bookID]
	if !ok {
		return nil, repository.ErrSuggestionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSuggestionRepository) List(ctx context.Context) ([]*domain.PriceSuggestion, error) {
	all := []*domain.PriceSuggestion{}
	for _, s := range m.suggestions {
		copied := *s
		all = append(all, &copied)
	}
	return all, nil
}

type mockCartRepository struct {
	items map[uuid.UUID]*domain.CartItem
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{items: make(map[uuid.UUID]*domain.CartItem)}
}

func (m *mockCartRepository) ItemsBySession(ctx context.Context, sessionID string) ([]*domain.CartItem, error) {
	items := []*domain.CartItem{}
	for _, item := range m.items {
		if item.SessionID == sessionID {
			copied := *item
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (m *mockCartRepository) Add(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	for _, existing := range m.items {
		if existing.SessionID == item.SessionID && existing.BookID == item.BookID {
			existing.Quantity += item.Quantity
			copied := *existing
			return &copied, nil
		}
	}
	copied := *item
	m.items[item.ID] = &copied
	result := copied
	return &result, nil
}

func (m *mockCartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	item, ok := m.items[id]
	if !ok {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (m *mockCartRepository) Remove(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, sessionID string) error {
	for id, item := range m.items {
		if item.SessionID == sessionID {
			delete(m.items, id)
		}
	}
	return nil
}

type mockOrderRepository struct {
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID][]*domain.OrderItem
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[uuid.UUID]*domain.Order),
		items:  make(map[uuid.UUID][]*domain.OrderItem),
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	copied := *item
	m.items[item.OrderID] = append(m.items[item.OrderID], &copied)
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) FindBySession(ctx context.Context, sessionID string) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for _, order := range m.orders {
		if order.SessionID == sessionID {
			copied := *order
			orders = append(orders, &copied)
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) ItemsForOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	return m.items[orderID], nil
}

type mockStaffRepository struct {
	users map[string]*domain.StaffUser
}

func newMockStaffRepository() *mockStaffRepository {
	return &mockStaffRepository{users: make(map[string]*domain.StaffUser)}
}

func (m *mockStaffRepository) Create(ctx context.Context, user *domain.StaffUser) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrStaffAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockStaffRepository) FindByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrStaffNotFound
	}
	return user, nil
}
