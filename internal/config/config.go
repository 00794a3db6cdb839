package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/conecta/internal/models"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Email providers accepted by EMAIL_PROVIDER.
const (
	EmailProviderLog = "log"
	EmailProviderSES = "ses"
)

type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Notifications NotificationsConfig
	Profile       ProfileConfig
	Email         EmailConfig
	Media         MediaConfig
	Seed          SeedConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

type StoreConfig struct {
	Driver     string
	SQLitePath string
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type AuthConfig struct {
	JWTSecret            string
	SessionTTL           time.Duration
	BcryptCost           int
	VerificationCode     string
	InstitutionalDomain  string
	RateLimitPerMinute   int
	SessionRatePerMinute int
}

type NotificationsConfig struct {
	Enabled  bool
	Interval time.Duration
	MaxFeed  int
}

type ProfileConfig struct {
	PerUser      bool
	MaxInterests int
}

type EmailConfig struct {
	Provider  string
	AWSRegion string
	From      string
}

type MediaConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UploadExpiry time.Duration
}

// Enabled reports whether presigned uploads can be issued.
func (c *MediaConfig) Enabled() bool {
	return c.Bucket != ""
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	DemoData      bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", "conecta.db"),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "conecta"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:            jwtSecret,
			SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			BcryptCost:           getEnvAsInt("BCRYPT_COST", 12),
			VerificationCode:     getEnv("VERIFICATION_CODE", models.DefaultVerificationCode),
			InstitutionalDomain:  getEnv("INSTITUTIONAL_DOMAIN", models.DefaultInstitutionalDomain),
			RateLimitPerMinute:   getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
			SessionRatePerMinute: getEnvAsInt("SESSION_RATE_LIMIT_PER_MINUTE", 120),
		},
		Notifications: NotificationsConfig{
			Enabled:  getEnvAsBool("NOTIFICATIONS_ENABLED", true),
			Interval: getEnvAsDuration("NOTIFICATIONS_INTERVAL", 30*time.Second),
			MaxFeed:  getEnvAsInt("NOTIFICATIONS_MAX_FEED", 100),
		},
		Profile: ProfileConfig{
			PerUser:      getEnvAsBool("PROFILE_PER_USER", true),
			MaxInterests: getEnvAsInt("PROFILE_MAX_INTERESTS", 8),
		},
		Email: EmailConfig{
			Provider:  strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderLog)),
			AWSRegion: getEnv("AWS_REGION", "us-east-1"),
			From:      getEnv("EMAIL_FROM", "no-reply@uniboyaca.edu.co"),
		},
		Media: MediaConfig{
			Bucket:       getEnv("MEDIA_S3_BUCKET", ""),
			Region:       getEnv("MEDIA_S3_REGION", "us-east-1"),
			Endpoint:     getEnv("MEDIA_S3_ENDPOINT", ""),
			AccessKey:    getEnv("MEDIA_S3_ACCESS_KEY", ""),
			SecretKey:    getEnv("MEDIA_S3_SECRET_KEY", ""),
			UploadExpiry: getEnvAsDuration("MEDIA_UPLOAD_EXPIRY", 15*time.Minute),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			AdminName:     getEnv("ADMIN_NAME", "Administrador"),
			DemoData:      getEnvAsBool("SEED_DEMO_DATA", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Validate JWT secret strength
	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, sqlite, postgres (got %q)", c.Store.Driver)
	}

	if c.Store.Driver == DriverSQLite && c.Store.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=sqlite")
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Auth.VerificationCode == "" {
		return fmt.Errorf("VERIFICATION_CODE cannot be empty")
	}

	if !strings.HasPrefix(c.Auth.InstitutionalDomain, "@") {
		return fmt.Errorf("INSTITUTIONAL_DOMAIN must start with @")
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("SERVER_REQUEST_TIMEOUT must be positive")
	}

	if c.Auth.RateLimitPerMinute <= 0 || c.Auth.SessionRatePerMinute <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT_PER_MINUTE and SESSION_RATE_LIMIT_PER_MINUTE must be positive")
	}

	if c.Profile.MaxInterests != 3 && c.Profile.MaxInterests != 8 {
		return fmt.Errorf("PROFILE_MAX_INTERESTS must be 3 or 8 (got %d)", c.Profile.MaxInterests)
	}

	if c.Notifications.Enabled && c.Notifications.Interval <= 0 {
		return fmt.Errorf("NOTIFICATIONS_INTERVAL must be positive")
	}

	if c.Notifications.MaxFeed <= 0 {
		return fmt.Errorf("NOTIFICATIONS_MAX_FEED must be positive")
	}

	switch c.Email.Provider {
	case EmailProviderLog, EmailProviderSES:
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be log or ses (got %q)", c.Email.Provider)
	}

	if (c.Seed.AdminEmail == "") != (c.Seed.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	// Minimum length based on environment
	minLength := 16 // Development minimum
	if env == "production" {
		minLength = 32 // Production requires stronger secret (256 bits)
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	// Check against common weak secrets
	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

// parseList splits a comma separated value, dropping blank entries.
func parseList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{} // Default to no origins in production
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants, Expo dev server included
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:8081",
		"http://localhost:19006",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:8081",
		"http://127.0.0.1:19006",
	}
}
