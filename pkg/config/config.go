package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// GitHub
	GithubToken string `yaml:"github_token"`
	Repository  string `yaml:"repository"` // owner/name

	// Database
	DBHost     string `yaml:"db_host"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBPort     string `yaml:"db_port"`

	// LLM
	LLMAPIKey    string `yaml:"llm_api_key"`
	LLMBaseURL   string `yaml:"llm_base_url"`
	LLMModelName string `yaml:"llm_model_name"`

	// Serve mode
	ServerPort      string        `yaml:"server_port"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
}

// Load builds the configuration from defaults, an optional YAML file pointed
// at by STARGAZER_CONFIG, and environment variables, in that order of
// precedence (environment wins).
func Load() (*Config, error) {
	cfg := &Config{
		DBHost:          "localhost",
		DBUser:          "postgres",
		DBPassword:      "password",
		DBName:          "stargazers",
		DBPort:          "5432",
		LLMBaseURL:      "https://api.openai.com/v1",
		LLMModelName:    "gpt-4o-mini",
		ServerPort:      "8080",
		MonitorInterval: time.Hour,
	}

	if path := os.Getenv("STARGAZER_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.GithubToken = getEnv("GITHUB_TOKEN", cfg.GithubToken)
	cfg.Repository = getEnv("REPOSITORY", cfg.Repository)

	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)

	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMModelName = getEnv("LLM_MODEL_NAME", cfg.LLMModelName)

	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.MonitorInterval = getDuration("MONITOR_INTERVAL", cfg.MonitorInterval)

	return cfg, nil
}

// SplitRepo validates and splits an "owner/name" repository reference
func SplitRepo(repo string) (string, string, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("invalid repo, expected owner/name")
	}
	return parts[0], parts[1], nil
}

// Helper function to fetch environment variables with a fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
