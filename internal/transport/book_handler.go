package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"booknest/internal/domain"
	"booknest/internal/middleware"
	"booknest/internal/repository"
	"booknest/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBookRequest represents the create book payload
type CreateBookRequest struct {
	Title         string    `json:"title" validate:"required"`
	Author        string    `json:"author" validate:"required"`
	Description   string    `json:"description"`
	Price         float64   `json:"price" validate:"required,gt=0"`
	OriginalPrice *float64  `json:"original_price" validate:"omitempty,gt=0"`
	Genre         string    `json:"genre" validate:"required,genre"`
	Rating        float64   `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount   int       `json:"review_count" validate:"gte=0"`
	Stock         int       `json:"stock" validate:"gte=0"`
	PreOrder      bool      `json:"pre_order"`
	Featured      bool      `json:"featured"`
	NewRelease    bool      `json:"new_release"`
	BestSeller    bool      `json:"best_seller"`
	PublishedAt   time.Time `json:"published_at"`
}

// UpdateBookRequest represents a partial book update; absent fields are kept.
type UpdateBookRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=1"`
	Author        *string  `json:"author" validate:"omitempty,min=1"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" validate:"omitempty,gt=0"`
	OriginalPrice *float64 `json:"original_price" validate:"omitempty,gt=0"`
	Genre         *string  `json:"genre" validate:"omitempty,genre"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount   *int     `json:"review_count" validate:"omitempty,gte=0"`
	Stock         *int     `json:"stock" validate:"omitempty,gte=0"`
	Featured      *bool    `json:"featured"`
	NewRelease    *bool    `json:"new_release"`
	BestSeller    *bool    `json:"best_seller"`
}

// BookHandler handles HTTP requests for the catalog
type BookHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(catalogService service.CatalogService, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers catalog routes. Browsing is public; mutations sit
// behind the admin middleware chain.
func (h *BookHandler) RegisterRoutes(r chi.Router, adminMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", h.ListBooks)
		r.Get("/featured", h.Featured)
		r.Get("/new-releases", h.NewReleases)
		r.Get("/best-sellers", h.BestSellers)
		r.Get("/genre/{genre}", h.ByGenre)
		r.Get("/{id}", h.GetBook)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware...)
			r.Post("/", h.CreateBook)
			r.Put("/{id}", h.UpdateBook)
			r.Delete("/{id}", h.DeleteBook)
		})
	})
}

// ListBooks handles catalog browsing with the composite filter
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBookFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	books, err := h.catalogService.ListBooks(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list books", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list books")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, books)
}

// Featured lists featured books
func (h *BookHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.listWithFlag(w, r, domain.BookFilter{Featured: boolPtr(true)})
}

// NewReleases lists new releases
func (h *BookHandler) NewReleases(w http.ResponseWriter, r *http.Request) {
	h.listWithFlag(w, r, domain.BookFilter{NewRelease: boolPtr(true)})
}

// BestSellers lists best sellers
func (h *BookHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	h.listWithFlag(w, r, domain.BookFilter{BestSeller: boolPtr(true)})
}

// ByGenre lists books in one genre
func (h *BookHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	genre := domain.Genre(chi.URLParam(r, "genre"))
	if !genre.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown genre")
		return
	}
	h.listWithFlag(w, r, domain.BookFilter{Genres: []domain.Genre{genre}})
}

func (h *BookHandler) listWithFlag(w http.ResponseWriter, r *http.Request, filter domain.BookFilter) {
	books, err := h.catalogService.ListBooks(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list books", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list books")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, books)
}

// GetBook retrieves one book
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := h.catalogService.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Failed to get book", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get book")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, book)
}

// CreateBook adds a catalog entry
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.catalogService.CreateBook(r.Context(), service.CreateBookParams{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Genre:         domain.Genre(req.Genre),
		Rating:        req.Rating,
		ReviewCount:   req.ReviewCount,
		Stock:         req.Stock,
		PreOrder:      req.PreOrder,
		Featured:      req.Featured,
		NewRelease:    req.NewRelease,
		BestSeller:    req.BestSeller,
		PublishedAt:   req.PublishedAt,
	})
	if err != nil {
		h.logger.Error("Failed to create book", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create book")
		return
	}

	h.logger.Info("Book created", zap.String("book_id", book.ID.String()), zap.String("title", book.Title))
	middleware.RespondWithJSON(w, http.StatusCreated, book)
}

// UpdateBook applies a partial update
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req UpdateBookRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := service.UpdateBookParams{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Rating:        req.Rating,
		ReviewCount:   req.ReviewCount,
		Stock:         req.Stock,
		Featured:      req.Featured,
		NewRelease:    req.NewRelease,
		BestSeller:    req.BestSeller,
	}
	if req.Genre != nil {
		genre := domain.Genre(*req.Genre)
		params.Genre = &genre
	}

	book, err := h.catalogService.UpdateBook(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Failed to update book", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update book")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, book)
}

// DeleteBook removes a catalog entry
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := h.catalogService.DeleteBook(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Failed to delete book", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete book")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseBookFilter reads the catalog filter from query parameters. Genres and
// availability accept comma-separated lists.
func parseBookFilter(r *http.Request) (domain.BookFilter, error) {
	q := r.URL.Query()
	filter := domain.BookFilter{Search: q.Get("search")}

	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("invalid min_price")
		}
		filter.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("invalid max_price")
		}
		filter.MaxPrice = &v
	}

	if raw := q.Get("genres"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			genre := domain.Genre(strings.TrimSpace(part))
			if !genre.Valid() {
				return filter, errors.New("unknown genre: " + string(genre))
			}
			filter.Genres = append(filter.Genres, genre)
		}
	}
	if raw := q.Get("availability"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			availability := domain.Availability(strings.TrimSpace(part))
			if !availability.Valid() {
				return filter, errors.New("unknown availability: " + string(availability))
			}
			filter.Availability = append(filter.Availability, availability)
		}
	}

	for name, target := range map[string]**bool{
		"featured":    &filter.Featured,
		"new_release": &filter.NewRelease,
		"best_seller": &filter.BestSeller,
	} {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return filter, errors.New("invalid " + name)
			}
			*target = &v
		}
	}

	return filter, nil
}

func boolPtr(v bool) *bool {
	return &v
}
