package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// FrontendURL is where the browser is sent back to after the OAuth
	// round trip. Also the default CORS origin.
	FrontendURL string
	// AllowedOrigins controls HTTP CORS. Empty slice means all origins are
	// permitted (dev default).
	AllowedOrigins []string

	// Session cookie (signed-in identity).
	SessionSecret string
	SessionExpiry time.Duration

	// Google OAuth (sign-in).
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Generation backend.
	OpenAIKey     string
	OpenAIModel   string
	QuestionCount int

	// Publishing backend: Google Forms via a service account.
	FormsCredentialsFile string

	// Intake uploads.
	UploadDir      string
	MaxUploadBytes int64

	// Draft sessions idle longer than this are reaped.
	DraftTTL time.Duration

	// Requests per minute per IP on the generate/publish endpoints.
	RateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8000"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "pretty"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowedOrigins:       parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		SessionSecret:        getEnv("SESSION_SECRET", "change-this-to-a-secure-random-string"),
		SessionExpiry:        time.Duration(getEnvInt("SESSION_EXPIRY_HOURS", 24)) * time.Hour,
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:    getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8000/api/v1/auth/google/callback"),
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o"),
		QuestionCount:        getEnvInt("QUESTION_COUNT", 5),
		FormsCredentialsFile: getEnv("FORMS_CREDENTIALS_FILE", "service_account.json"),
		UploadDir:            getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		DraftTTL:             time.Duration(getEnvInt("DRAFT_TTL_MINUTES", 120)) * time.Minute,
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
