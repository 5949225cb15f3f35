package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	Session   SessionConfig
	AI        AIConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type SessionConfig struct {
	TokenSecret        string
	TokenIssuer        string
	TokenTTL           time.Duration
	IdleTTL            time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

type AIConfig struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	Timeout            time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	MaxOutputTokens    int
	MaxImageBytes      int
	ImageTypes         []string
}

// RateLimitConfig selects the backing store for the AI rate limiter.
// An empty RedisAddr keeps the limiter in process memory.
type RateLimitConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

var defaultImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif", "image/heic"}

// Load reads the application config from the environment and an optional .env file.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))

	serverPort, err := parseIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	// Chat turns block on the provider, so the write timeout must outlive AI_TIMEOUT.
	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 45*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		CORSOrigins:  parseCSVEnv("CORS_ALLOWED_ORIGINS", false),
	}

	tokenTTL, err := parseDurationEnv("SESSION_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return cfg, err
	}

	idleTTL, err := parseDurationEnv("SESSION_IDLE_TTL", 2*time.Hour)
	if err != nil {
		return cfg, err
	}

	sessionRatePerMinute, err := parseIntEnv("SESSION_RATE_LIMIT_PER_MINUTE", 20)
	if err != nil {
		return cfg, err
	}

	sessionRateBurst, err := parseIntEnv("SESSION_RATE_LIMIT_BURST", 5)
	if err != nil {
		return cfg, err
	}

	cfg.Session = SessionConfig{
		TokenSecret:        getEnv("SESSION_SECRET", ""),
		TokenIssuer:        getEnv("SESSION_ISSUER", "pennypilot"),
		TokenTTL:           tokenTTL,
		IdleTTL:            idleTTL,
		RateLimitPerMinute: sessionRatePerMinute,
		RateLimitBurst:     sessionRateBurst,
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	aiRateLimitPerMinute, err := parseIntEnv("AI_RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return cfg, err
	}

	aiRateLimitBurst, err := parseIntEnv("AI_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 4096)
	if err != nil {
		return cfg, err
	}

	aiMaxImageBytes, err := parseIntEnv("AI_MAX_IMAGE_BYTES", 5*1024*1024)
	if err != nil {
		return cfg, err
	}

	aiProvider := strings.ToLower(getEnv("AI_PROVIDER", "gemini"))
	defaultBaseURL := "https://api.groq.com/openai/v1"
	defaultModel := "meta-llama/llama-4-scout-17b-16e-instruct"
	if aiProvider == "gemini" {
		defaultBaseURL = ""
		defaultModel = "gemini-2.5-flash"
	}

	aiAPIKey := getEnv("AI_API_KEY", "")
	if aiAPIKey == "" && aiProvider == "gemini" {
		aiAPIKey = getEnv("GEMINI_API_KEY", "")
	}

	imageTypes := parseCSVEnv("AI_IMAGE_TYPES", true)
	if len(imageTypes) == 0 {
		imageTypes = defaultImageTypes
	}

	cfg.AI = AIConfig{
		Provider:           aiProvider,
		APIKey:             aiAPIKey,
		BaseURL:            getEnv("AI_BASE_URL", defaultBaseURL),
		Model:              getEnv("AI_MODEL", defaultModel),
		Timeout:            aiTimeout,
		RateLimitPerMinute: aiRateLimitPerMinute,
		RateLimitBurst:     aiRateLimitBurst,
		MaxOutputTokens:    aiMaxOutputTokens,
		MaxImageBytes:      aiMaxImageBytes,
		ImageTypes:         imageTypes,
	}

	redisDB, err := parseNonNegativeIntEnv("REDIS_DB", 0)
	if err != nil {
		return cfg, err
	}

	cfg.RateLimit = RateLimitConfig{
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be greater than 0")
	}

	if c.Session.TokenSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	switch c.AI.Provider {
	case "gemini", "groq":
	default:
		return fmt.Errorf("AI_PROVIDER must be gemini or groq, got %q", c.AI.Provider)
	}

	if c.AI.Provider == "groq" && c.AI.BaseURL == "" {
		return fmt.Errorf("AI_BASE_URL is required for groq")
	}

	if c.Server.WriteTimeout <= c.AI.Timeout {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must exceed AI_TIMEOUT")
	}

	for _, imageType := range c.AI.ImageTypes {
		if !strings.HasPrefix(imageType, "image/") {
			return fmt.Errorf("AI_IMAGE_TYPES entry %q is not an image type", imageType)
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseNonNegativeIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string, lower bool) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if lower {
			trimmed = strings.ToLower(trimmed)
		}
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
