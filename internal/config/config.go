package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	NIBSS    NIBSSConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Recon    ReconConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds auth cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// NIBSSConfig holds the external mandate service configuration
type NIBSSConfig struct {
	BaseURL       string
	TokenURL      string
	APIKey        string
	ClientID      string
	ClientSecret  string
	Scope         string
	Timeout       time.Duration
	// TokenMargin is subtracted from the provider-reported token lifetime so a
	// cached token is never used in its final moments. TokenFloor is the
	// minimum cache lifetime regardless of margin.
	TokenMargin time.Duration
	TokenFloor  time.Duration
}

// RedisConfig holds the optional shared token cache configuration.
// When Addr is empty the in-memory cache is used instead.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SMTPConfig holds outbound email configuration
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ReconConfig holds the reconciliation sweep configuration
type ReconConfig struct {
	Enabled  bool
	Schedule string
	Window   time.Duration
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "8000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		NIBSS:    loadNIBSSConfig(),
		Redis:    loadRedisConfig(),
		SMTP:     loadSMTPConfig(),
		Recon:    loadReconConfig(),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "amfb_directdebit"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads auth cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure := mode == "prod"
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, _ = strconv.ParseBool(v)
	}
	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "Lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadNIBSSConfig loads the external mandate service config
func loadNIBSSConfig() NIBSSConfig {
	timeoutSecs, _ := strconv.Atoi(getEnv("API_REQUEST_TIMEOUT", "30"))
	marginSecs, _ := strconv.Atoi(getEnv("API_TOKEN_MARGIN_SECONDS", "300"))
	floorSecs, _ := strconv.Atoi(getEnv("API_TOKEN_FLOOR_SECONDS", "60"))

	return NIBSSConfig{
		BaseURL:      getEnv("NIBSS_BASE_URL", "https://api.nibss-plc.com.ng"),
		TokenURL:     getEnv("NIBSS_TOKEN_URL", "https://api.nibss-plc.com.ng/v2/reset"),
		APIKey:       getEnv("NIBSS_API_KEY", ""),
		ClientID:     getEnv("NIBSS_CLIENT_ID", ""),
		ClientSecret: getEnv("NIBSS_CLIENT_SECRET", ""),
		Scope:        getEnv("NIBSS_SCOPE", ""),
		Timeout:      time.Duration(timeoutSecs) * time.Second,
		TokenMargin:  time.Duration(marginSecs) * time.Second,
		TokenFloor:   time.Duration(floorSecs) * time.Second,
	}
}

// loadRedisConfig loads the optional Redis token cache config
func loadRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

// loadSMTPConfig loads outbound email config
func loadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@dap-alertgroup.com.ng"),
	}
}

// loadReconConfig loads the reconciliation sweep config
func loadReconConfig() ReconConfig {
	enabled, _ := strconv.ParseBool(getEnv("RECON_ENABLED", "true"))
	windowHours, _ := strconv.Atoi(getEnv("RECON_WINDOW_HOURS", "24"))
	return ReconConfig{
		Enabled:  enabled,
		Schedule: getEnv("RECON_SCHEDULE", "@every 1h"),
		Window:   time.Duration(windowHours) * time.Hour,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origin
		return "https://ndd.dap-alertgroup.com.ng"
	}
	return origins
}
