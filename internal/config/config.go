package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/tessera-canvas/tessera/pkg/validation"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string

	// Canvas geometry. The canvas is CanvasSize x CanvasSize pixels,
	// selectable in GridStep increments with MinRegionSize minimum edge.
	CanvasSize    int
	GridStep      int
	MinRegionSize int

	// Pricing, in credits per pixel. Admin purchases are charged the
	// reduced rate.
	UnitPriceNormal decimal.Decimal
	UnitPriceAdmin  decimal.Decimal
	// RefundFraction is the share of the original price returned on
	// retraction.
	RefundFraction decimal.Decimal

	// Payment configuration
	TreasuryAddress string
	// CreditsPerSol converts verified transfer amounts into credits.
	CreditsPerSol decimal.Decimal
	// MinTopUpCredits is the smallest grant a payment may produce.
	MinTopUpCredits int64

	// Oracle configuration. Endpoints are tried in order on failure.
	OracleEndpoints []string
	OracleTimeout   time.Duration

	// AdminWallets is the injected authorization policy: the set of wallets
	// allowed to retract regions and buy at the admin rate.
	AdminWallets map[string]struct{}

	// Redis configuration. Empty address disables the canvas cache.
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration
}

// IsAdminWallet reports whether the address is part of the admin set.
func (c *Config) IsAdminWallet(address string) bool {
	_, ok := c.AdminWallets[address]
	return ok
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		APIPort:          getEnvAsInt("API_PORT", 8080),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "tessera"),

		CanvasSize:    getEnvAsInt("CANVAS_SIZE", 1000),
		GridStep:      getEnvAsInt("GRID_STEP", 10),
		MinRegionSize: getEnvAsInt("MIN_REGION_SIZE", 10),

		UnitPriceNormal: getEnvAsDecimal("UNIT_PRICE_NORMAL", "0.01"),
		UnitPriceAdmin:  getEnvAsDecimal("UNIT_PRICE_ADMIN", "0.001"),
		RefundFraction:  getEnvAsDecimal("REFUND_FRACTION", "0.5"),

		TreasuryAddress: getEnv("TREASURY_ADDRESS", ""),
		CreditsPerSol:   getEnvAsDecimal("CREDITS_PER_SOL", "1000000"),
		MinTopUpCredits: getEnvAsInt64("MIN_TOPUP_CREDITS", 1000),

		OracleEndpoints: getEnvAsSlice("ORACLE_ENDPOINTS", []string{"https://api.mainnet-beta.solana.com"}),
		OracleTimeout:   getEnvAsDuration("ORACLE_TIMEOUT", 10*time.Second),

		AdminWallets: getEnvAsSet("ADMIN_WALLETS"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", 5*time.Second),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.TreasuryAddress == "" {
		return fmt.Errorf("TREASURY_ADDRESS is required")
	}

	if err := validation.ValidateWalletAddress(c.TreasuryAddress); err != nil {
		return fmt.Errorf("invalid TREASURY_ADDRESS: %w", err)
	}

	for wallet := range c.AdminWallets {
		if err := validation.ValidateWalletAddress(wallet); err != nil {
			return fmt.Errorf("invalid ADMIN_WALLETS entry %q: %w", wallet, err)
		}
	}

	if c.PostgresDB == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}

	if c.CanvasSize <= 0 || c.GridStep <= 0 || c.CanvasSize%c.GridStep != 0 {
		return fmt.Errorf("CANVAS_SIZE must be a positive multiple of GRID_STEP")
	}

	if c.MinRegionSize < c.GridStep {
		return fmt.Errorf("MIN_REGION_SIZE must be at least GRID_STEP")
	}

	if c.UnitPriceNormal.IsNegative() || c.UnitPriceAdmin.IsNegative() {
		return fmt.Errorf("unit prices must not be negative")
	}

	if c.RefundFraction.IsNegative() || c.RefundFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("REFUND_FRACTION must be between 0 and 1")
	}

	if !c.CreditsPerSol.IsPositive() {
		return fmt.Errorf("CREDITS_PER_SOL must be positive")
	}

	if len(c.OracleEndpoints) == 0 {
		return fmt.Errorf("ORACLE_ENDPOINTS is required")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsInt64(name string, defaultValue int64) int64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDecimal(name string, defaultValue string) decimal.Decimal {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := decimal.NewFromString(valueStr); err == nil {
			return value
		}
	}
	return decimal.RequireFromString(defaultValue)
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsSlice(name string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(name)
	if !exists {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

func getEnvAsSet(name string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, value := range getEnvAsSlice(name, nil) {
		set[value] = struct{}{}
	}
	return set
}
