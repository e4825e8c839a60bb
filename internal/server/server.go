package server

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"booknest/internal/config"
	"booknest/internal/database"
	custommiddleware "booknest/internal/middleware"
	"booknest/internal/pricing"
	"booknest/internal/repository"
	"booknest/internal/service"
	"booknest/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, db.Health())
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	bookRepo := repository.NewBookRepository(db.DB())
	salesRepo := repository.NewSalesRepository(db.DB())
	suggestionRepo := repository.NewSuggestionRepository(db.DB())
	cartRepo := repository.NewCartRepository(db.DB())
	orderRepo := repository.NewOrderRepository(db.DB())
	staffRepo := repository.NewStaffRepository(db.DB())

	// Initialize the pricing engine. Seed 0 means nondeterministic; a fixed
	// seed makes analysis runs reproducible.
	seed := cfg.Pricing.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engineCfg := pricing.DefaultConfig()
	engineCfg.StockWeight = cfg.Pricing.StockWeight
	engineCfg.RatingWeight = cfg.Pricing.RatingWeight
	engineCfg.PremiumBlend = cfg.Pricing.PremiumBlend
	engineCfg.DiscountBlend = cfg.Pricing.DiscountBlend
	engineCfg.AverageBlend = cfg.Pricing.AverageBlend
	engine := pricing.New(engineCfg, rand.New(rand.NewSource(seed)))

	// Initialize services
	catalogService := service.NewCatalogService(bookRepo)
	orderService := service.NewOrderService(bookRepo, cartRepo, orderRepo, salesRepo, logger)
	analyticsService := service.NewAnalyticsService(bookRepo, salesRepo, suggestionRepo, engine, logger)
	authService := service.NewAuthService(staffRepo, cfg.JWT.Secret)

	// A fresh deployment has no staff rows; seed the configured admin so the
	// dashboard is reachable.
	if cfg.Admin.Password != "" {
		created, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Name, cfg.Admin.Password)
		if err != nil {
			logger.Error("Failed to seed admin account", zap.Error(err))
		} else if created {
			logger.Info("Seeded initial admin account", zap.String("email", cfg.Admin.Email))
		}
	} else {
		logger.Warn("ADMIN_PASSWORD not set; admin login unavailable until a staff account is created")
	}

	// Initialize handlers
	bookHandler := transport.NewBookHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(orderService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	analyticsHandler := transport.NewAnalyticsHandler(analyticsService, logger)
	authHandler := transport.NewAuthHandler(authService, logger)

	// Admin chain: valid staff token, then admin role.
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// The bulk analysis run is throttled per client.
	rateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.Pricing.RateLimit,
		Window:            time.Minute,
		KeyPrefix:         "analysis_rate_limit",
	}, logger)

	// Register routes
	authHandler.RegisterRoutes(router)
	bookHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)
	analyticsHandler.RegisterRoutes(router, rateLimiter, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
