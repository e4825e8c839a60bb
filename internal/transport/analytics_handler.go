package transport

import (
	"errors"
	"net/http"

	"booknest/internal/domain"
	"booknest/internal/middleware"
	"booknest/internal/repository"
	"booknest/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PriceUpdateRequest is one entry in a bulk price apply payload
type PriceUpdateRequest struct {
	BookID   string  `json:"book_id" validate:"required,uuid"`
	OldPrice float64 `json:"old_price" validate:"required,gt=0"`
	NewPrice float64 `json:"new_price" validate:"required,gt=0"`
}

// ApplyPricesRequest represents the bulk price apply payload
type ApplyPricesRequest struct {
	Updates []PriceUpdateRequest `json:"updates" validate:"required,min=1,dive"`
}

// ApplyPricesResponse reports which updates were applied
type ApplyPricesResponse struct {
	Applied int                         `json:"applied"`
	Results []*domain.PriceUpdateResult `json:"results"`
}

// SweepRequest represents the price sweep payload
type SweepRequest struct {
	MinPrice float64 `json:"min_price" validate:"required,gt=0"`
	MaxPrice float64 `json:"max_price" validate:"required,gt=0"`
	Step     float64 `json:"step" validate:"gte=0"`
}

// DemandScoreResponse carries the 0-10 urgency metric for one book
type DemandScoreResponse struct {
	BookID      string  `json:"book_id"`
	DemandScore float64 `json:"demand_score"`
}

// AnalyticsHandler handles HTTP requests for the pricing dashboard
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

// RegisterRoutes registers analytics routes. Everything here is admin-only;
// the bulk run additionally sits behind the rate limiter because it walks the
// whole catalog.
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router, rateLimiter func(http.Handler) http.Handler, adminMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(adminMiddleware...)

		r.Group(func(r chi.Router) {
			r.Use(rateLimiter)
			r.Post("/run", h.RunAnalysis)
		})

		r.Post("/run/{bookID}", h.RunBookAnalysis)
		r.Get("/suggestions", h.ListSuggestions)
		r.Get("/suggestions/{bookID}", h.GetSuggestion)
		r.Post("/apply", h.ApplyPrices)
		r.Get("/sales", h.SalesByDate)
		r.Get("/genres", h.GenreDistribution)
		r.Get("/forecasts", h.GenreForecasts)
		r.Get("/demand-score/{bookID}", h.DemandScore)
		r.Post("/sweep/{bookID}", h.SweepPrices)
	})
}

// RunAnalysis analyzes the whole catalog
func (h *AnalyticsHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.analyticsService.AnalyzeAll(r.Context())
	if err != nil {
		h.logger.Error("Bulk analysis failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to run analysis")
		return
	}

	h.logger.Info("Bulk analysis completed", zap.Int("suggestions", len(suggestions)))
	middleware.RespondWithJSON(w, http.StatusOK, suggestions)
}

// RunBookAnalysis analyzes one book
func (h *AnalyticsHandler) RunBookAnalysis(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(w, r)
	if !ok {
		return
	}

	suggestion, err := h.analyticsService.AnalyzeBook(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Book analysis failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to analyze book")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, suggestion)
}

// ListSuggestions lists every cached suggestion
func (h *AnalyticsHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.analyticsService.Suggestions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list suggestions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list suggestions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, suggestions)
}

// GetSuggestion returns the cached suggestion for one book
func (h *AnalyticsHandler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(w, r)
	if !ok {
		return
	}

	suggestion, err := h.analyticsService.SuggestionForBook(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, repository.ErrSuggestionNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "no suggestion for this book")
			return
		}
		h.logger.Error("Failed to get suggestion", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get suggestion")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, suggestion)
}

// ApplyPrices applies a batch of price changes with partial success
func (h *AnalyticsHandler) ApplyPrices(w http.ResponseWriter, r *http.Request) {
	var req ApplyPricesRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := make([]domain.PriceUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		bookID, err := uuid.Parse(u.BookID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid book id: "+u.BookID)
			return
		}
		updates = append(updates, domain.PriceUpdate{
			BookID:   bookID,
			OldPrice: u.OldPrice,
			NewPrice: u.NewPrice,
		})
	}

	results, err := h.analyticsService.ApplyPriceUpdates(r.Context(), updates)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			middleware.RespondWithError(w, http.StatusBadRequest, "price must be positive")
			return
		}
		h.logger.Error("Failed to apply price updates", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to apply price updates")
		return
	}

	h.logger.Info("Price updates applied",
		zap.Int("requested", len(updates)),
		zap.Int("applied", len(results)))
	middleware.RespondWithJSON(w, http.StatusOK, ApplyPricesResponse{
		Applied: len(results),
		Results: results,
	})
}

// SalesByDate returns the per-day rollup for the dashboard chart
func (h *AnalyticsHandler) SalesByDate(w http.ResponseWriter, r *http.Request) {
	daily, err := h.analyticsService.SalesByDate(r.Context())
	if err != nil {
		h.logger.Error("Failed to get sales rollup", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get sales data")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, daily)
}

// GenreDistribution returns per-genre catalog and sales stats
func (h *AnalyticsHandler) GenreDistribution(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analyticsService.GenreDistribution(r.Context())
	if err != nil {
		h.logger.Error("Failed to get genre distribution", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get genre distribution")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// GenreForecasts returns restock recommendations per genre
func (h *AnalyticsHandler) GenreForecasts(w http.ResponseWriter, r *http.Request) {
	forecasts, err := h.analyticsService.GenreForecasts(r.Context())
	if err != nil {
		h.logger.Error("Failed to get genre forecasts", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get genre forecasts")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, forecasts)
}

// DemandScore returns the composite urgency metric for one book
func (h *AnalyticsHandler) DemandScore(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(w, r)
	if !ok {
		return
	}

	score, err := h.analyticsService.DemandScore(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Failed to compute demand score", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute demand score")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, DemandScoreResponse{
		BookID:      bookID.String(),
		DemandScore: score,
	})
}

// SweepPrices scans a price range for the revenue-maximizing point
func (h *AnalyticsHandler) SweepPrices(w http.ResponseWriter, r *http.Request) {
	bookID, ok := parseBookID(w, r)
	if !ok {
		return
	}

	var req SweepRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MaxPrice < req.MinPrice {
		middleware.RespondWithError(w, http.StatusBadRequest, "max_price must be at least min_price")
		return
	}

	result, err := h.analyticsService.SweepPrices(r.Context(), bookID, req.MinPrice, req.MaxPrice, req.Step)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "book not found")
			return
		}
		h.logger.Error("Price sweep failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to sweep prices")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func parseBookID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	bookID, err := uuid.Parse(chi.URLParam(r, "bookID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid book id")
		return uuid.Nil, false
	}
	return bookID, true
}
