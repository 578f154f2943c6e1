package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIEndpoint = "http://localhost:8080"

type Config struct {
	APIEndpoint    string
	AuthToken      string
	Environment    string
	RequestTimeout time.Duration
}

// loads client configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	endpoint := os.Getenv("ALGOPATTERNS_API_ENDPOINT")
	token := os.Getenv("ALGOPATTERNS_TOKEN")
	environment := os.Getenv("ENVIRONMENT")

	if endpoint == "" {
		endpoint = defaultAPIEndpoint
	}

	if environment == "" {
		environment = "development"
	}

	// token is optional: anonymous practice sessions are allowed

	return &Config{
		APIEndpoint:    endpoint,
		AuthToken:      token,
		Environment:    environment,
		RequestTimeout: 15 * time.Second,
	}, nil
}
