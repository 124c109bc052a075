package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the configuration for the application.
type Config struct {
	DatabaseURL       string
	GeminiAPIKey      string
	LocalLLMURL       string
	UnsplashAccessKey string
	JWTSecret         string
	ListenAddr        string
	AllowedOrigins    []string
}

// NewFromEnv creates a new Config object from environment variables. A .env
// file in the working directory is loaded first if present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	// Either a Gemini key or a local model endpoint must be configured for
	// the import/scan/suggestion features.
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	localLLMURL := os.Getenv("LOCAL_LLM_URL")
	if geminiAPIKey == "" && localLLMURL == "" {
		return nil, fmt.Errorf("neither GEMINI_API_KEY nor LOCAL_LLM_URL environment variable is set")
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		DatabaseURL:       databaseURL,
		GeminiAPIKey:      geminiAPIKey,
		LocalLLMURL:       localLLMURL,
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		JWTSecret:         jwtSecret,
		ListenAddr:        listenAddr,
		AllowedOrigins:    origins,
	}, nil
}
