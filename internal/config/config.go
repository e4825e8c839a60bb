package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Pricing  PricingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

// AdminConfig describes the staff account seeded at startup when the staff
// table has no matching row. With no password set, nothing is seeded.
type AdminConfig struct {
	Email    string
	Name     string
	Password string
}

// PricingConfig carries the recommendation engine constants. The source
// material had several inconsistently weighted variants of the same formula;
// these defaults are the single canonical set, and any deviation belongs here
// rather than in code.
type PricingConfig struct {
	Seed          int64   // randomness seed; 0 means seed from the clock
	StockWeight   float64 // stock nudge weight around 1.0
	RatingWeight  float64 // rating nudge weight around 1.0
	PremiumBlend  float64 // own-price blend weight for premium books
	DiscountBlend float64 // own-price blend weight for discount books
	AverageBlend  float64 // own-price blend weight for average books
	RateLimit     int     // bulk-analysis requests per minute per client
}

func Load() *Config {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "booknest")
	viper.SetDefault("DB_DATABASE", "booknest")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 60)
	viper.SetDefault("ADMIN_EMAIL", "admin@booknest.local")
	viper.SetDefault("ADMIN_NAME", "Administrator")
	viper.SetDefault("PRICING_SEED", 0)
	viper.SetDefault("PRICING_STOCK_WEIGHT", 0.1)
	viper.SetDefault("PRICING_RATING_WEIGHT", 0.15)
	viper.SetDefault("PRICING_PREMIUM_BLEND", 0.7)
	viper.SetDefault("PRICING_DISCOUNT_BLEND", 0.5)
	viper.SetDefault("PRICING_AVERAGE_BLEND", 0.6)
	viper.SetDefault("PRICING_RATE_LIMIT", 10)

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Admin: AdminConfig{
			Email:    viper.GetString("ADMIN_EMAIL"),
			Name:     viper.GetString("ADMIN_NAME"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		Pricing: PricingConfig{
			Seed:          viper.GetInt64("PRICING_SEED"),
			StockWeight:   viper.GetFloat64("PRICING_STOCK_WEIGHT"),
			RatingWeight:  viper.GetFloat64("PRICING_RATING_WEIGHT"),
			PremiumBlend:  viper.GetFloat64("PRICING_PREMIUM_BLEND"),
			DiscountBlend: viper.GetFloat64("PRICING_DISCOUNT_BLEND"),
			AverageBlend:  viper.GetFloat64("PRICING_AVERAGE_BLEND"),
			RateLimit:     viper.GetInt("PRICING_RATE_LIMIT"),
		},
	}
}
