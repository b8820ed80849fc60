package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Session  SessionConfig
	Scoring  ScoringConfig
	Auth     AuthConfig
	Database DatabaseConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	UnmatchedLogPath   string
	CorsAllowedOrigins string
	NatsURL            string // empty keeps outcome events in-process
	RedisURL           string
	OutcomeConsumer    string // durable NATS consumer name
}

type CatalogConfig struct {
	WooCommerceURL string // empty disables the remote catalog
	ConsumerKey    string
	ConsumerSecret string
	Timeout        time.Duration
	Currency       string
	LocalPath      string
	LocalSource    string // "file" or "database"
}

type SessionConfig struct {
	Backend          string // "memory" or "redis"
	TTL              time.Duration
	SweepInterval    time.Duration
	SummaryThreshold int
	PageSize         int
}

type ScoringConfig struct {
	ExactName          float64
	NormalizedName     float64
	Containment        float64
	ModelToken         float64
	ShortTokenBoundary float64
	Brand              float64
	WordOverlap        float64
	UniqueScore        float64
	UniqueMargin       float64
	MinScore           float64
}

type AuthConfig struct {
	JWTSecret string
}

type DatabaseConfig struct {
	Connection string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			UnmatchedLogPath:   getEnv("UNMATCHED_LOG_PATH", "logs/unmatched_queries.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OutcomeConsumer:    getEnv("OUTCOME_CONSUMER", "unmatched-query-logger"),
		},
		Catalog: CatalogConfig{
			WooCommerceURL: getEnv("WOOCOMMERCE_URL", ""),
			ConsumerKey:    getEnv("WOOCOMMERCE_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("WOOCOMMERCE_CONSUMER_SECRET", ""),
			Timeout:        getEnvAsDuration("CATALOG_TIMEOUT", 5*time.Second),
			Currency:       getEnv("CATALOG_CURRENCY", "EUR"),
			LocalPath:      getEnv("CATALOG_LOCAL_PATH", "data/catalog.json"),
			LocalSource:    getEnv("CATALOG_LOCAL_SOURCE", "file"),
		},
		Session: SessionConfig{
			Backend:          getEnv("SESSION_BACKEND", "memory"),
			TTL:              getEnvAsDuration("SESSION_TTL", 48*time.Hour),
			SweepInterval:    getEnvAsDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
			SummaryThreshold: getEnvAsInt("SESSION_SUMMARY_THRESHOLD", 10),
			PageSize:         getEnvAsInt("PAGE_SIZE", 5),
		},
		Scoring: ScoringConfig{
			ExactName:          getEnvAsFloat("SCORE_EXACT_NAME", 100),
			NormalizedName:     getEnvAsFloat("SCORE_NORMALIZED_NAME", 80),
			Containment:        getEnvAsFloat("SCORE_CONTAINMENT", 40),
			ModelToken:         getEnvAsFloat("SCORE_MODEL_TOKEN", 30),
			ShortTokenBoundary: getEnvAsFloat("SCORE_SHORT_TOKEN_BOUNDARY", 15),
			Brand:              getEnvAsFloat("SCORE_BRAND", 15),
			WordOverlap:        getEnvAsFloat("SCORE_WORD_OVERLAP", 5),
			UniqueScore:        getEnvAsFloat("SCORE_UNIQUE", 50),
			UniqueMargin:       getEnvAsFloat("SCORE_UNIQUE_MARGIN", 10),
			MinScore:           getEnvAsFloat("SCORE_MIN", 15),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s", "48h") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
