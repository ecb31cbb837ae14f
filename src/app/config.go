package app

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethaccount/zksync/src/service"
	"github.com/ethereum/go-ethereum/common"
)

type AppConfig struct {
	// =========================== REQUIRED ===========================

	// Database configuration (required)
	DSN *string
	// Redis configuration (required)
	RedisAddr *string
	// zkSync node used for nonces, fees and broadcasting (required)
	L2RPCURL *string
	// Ethereum node used for ENS lookups (required)
	L1RPCURL *string

	// =========================== OPTIONAL ===========================

	// Logging configuration
	LogLevel *string

	// HTTP server configuration
	Port *string
	Host *string

	// "dev", "development", "staging" or "prod"
	Environment *string

	// CORS configuration
	AllowOrigins *[]string

	// Migration configuration
	MigrationPath *string

	// Private key of the server signer; signing routes are disabled without it
	PrivateKey *string
	// API secret guarding the signing routes
	APISecret *string

	// ENS configuration
	NameCacheTTL       *time.Duration
	ENSRegistryAddress *common.Address
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{}

	// Load required configuration
	loadRequiredConfig(config)

	// Load optional configuration with defaults
	loadOptionalConfig(config)

	return config
}

// IsDev reports whether the service runs in a development environment
func (c *AppConfig) IsDev() bool {
	return c.Environment != nil && (*c.Environment == "dev" || *c.Environment == "development")
}

// loadRequiredConfig loads all required configuration values and fails fast if any are missing
func loadRequiredConfig(config *AppConfig) {
	// Database URL (required)
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatalf("REQUIRED: DB_URL not set in environment")
	}
	config.DSN = &dsn

	// Redis URL (required)
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		log.Fatalf("REQUIRED: REDIS_URL not set in environment")
	}
	config.RedisAddr = &redisAddr

	l2RPCURL := os.Getenv("L2_RPC_URL")
	if l2RPCURL == "" {
		log.Fatalf("REQUIRED: L2_RPC_URL not set in environment")
	}
	config.L2RPCURL = &l2RPCURL

	l1RPCURL := os.Getenv("L1_RPC_URL")
	if l1RPCURL == "" {
		log.Fatalf("REQUIRED: L1_RPC_URL not set in environment")
	}
	config.L1RPCURL = &l1RPCURL
}

// loadOptionalConfig loads all optional configuration values with sensible defaults
func loadOptionalConfig(config *AppConfig) {
	// HTTP server port (default: 8080)
	port := getEnvWithDefault("PORT", "8080")
	config.Port = &port

	host := getEnvWithDefault("HOST", "localhost:"+port)
	config.Host = &host

	environment := getEnvWithDefault("ENVIRONMENT", "prod")
	config.Environment = &environment

	// Log level (default: debug)
	// Available levels: "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"
	logLevel := getEnvWithDefault("LOG_LEVEL", "debug")
	config.LogLevel = &logLevel

	// Migration path (default: file://migrations)
	migrationPath := getEnvWithDefault("MIGRATION_PATH", "file://migrations")
	config.MigrationPath = &migrationPath

	// Remove 0x prefix if it exists
	privateKey := strings.TrimPrefix(os.Getenv("PRIVATE_KEY"), "0x")
	config.PrivateKey = &privateKey

	apiSecret := os.Getenv("API_SECRET")
	config.APISecret = &apiSecret

	loadCORSConfig(config)
	loadENSConfig(config)
}

// loadCORSConfig handles CORS origins configuration with environment-specific behavior
func loadCORSConfig(config *AppConfig) {
	allowOriginsStr := os.Getenv("ALLOW_ORIGINS")
	var allowOrigins []string

	if allowOriginsStr != "" {
		// Parse comma-separated origins
		origins := strings.Split(allowOriginsStr, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowOrigins = append(allowOrigins, origin)
			}
		}
	} else {
		if config.IsDev() {
			// Default to localhost in development
			allowOrigins = []string{"http://localhost:5173"}
		} else {
			log.Fatalf("REQUIRED: ALLOW_ORIGINS not set in environment (required in production)")
		}
	}

	config.AllowOrigins = &allowOrigins
}

// loadENSConfig loads the name cache TTL and the registry address
func loadENSConfig(config *AppConfig) {
	ttl := time.Duration(getNameCacheTTL()) * time.Second
	config.NameCacheTTL = &ttl

	registryStr := getEnvWithDefault("ENS_REGISTRY_ADDRESS", service.DefaultENSRegistryAddress)
	if !common.IsHexAddress(registryStr) {
		log.Fatalf("Invalid ENS_REGISTRY_ADDRESS value '%s'", registryStr)
	}
	registry := common.HexToAddress(registryStr)
	config.ENSRegistryAddress = &registry
}

// getNameCacheTTL parses the name cache TTL in seconds from environment with default fallback
func getNameCacheTTL() int {
	ttlStr := os.Getenv("NAME_CACHE_TTL")
	if ttlStr == "" {
		return 3600 // default to 1 hour
	}

	if parsed, err := strconv.Atoi(ttlStr); err == nil && parsed > 0 {
		return parsed
	}

	log.Printf("Warning: Invalid NAME_CACHE_TTL value '%s', using default 3600 seconds", ttlStr)
	return 3600
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
