package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trivia-quiz-service/internal/domain"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Trivia struct {
		BaseURL       string `yaml:"base_url"`
		Amount        int    `yaml:"amount"`
		Category      int    `yaml:"category"`
		Timeout       string `yaml:"timeout"`
		MaxConcurrent int64  `yaml:"max_concurrent"`
	} `yaml:"trivia"`
	Quiz struct {
		TimeLimit  string `yaml:"time_limit"`
		Tick       string `yaml:"tick"`
		Difficulty string `yaml:"difficulty"`
	} `yaml:"quiz"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Trivia.BaseURL = "https://opentdb.com/api.php"
	cfg.Trivia.Amount = 5
	cfg.Trivia.Category = 9
	cfg.Trivia.Timeout = "10s"
	cfg.Trivia.MaxConcurrent = 2
	cfg.Quiz.TimeLimit = "30s"
	cfg.Quiz.Tick = "1s"
	cfg.Quiz.Difficulty = string(domain.DefaultDifficulty)
	cfg.Redis.TTL = "10m"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks values that would otherwise fail at quiz start.
func (c Config) Validate() error {
	if _, err := domain.ParseDifficulty(c.Quiz.Difficulty); err != nil {
		return fmt.Errorf("quiz.difficulty: %w", err)
	}
	if c.Trivia.Amount <= 0 {
		return fmt.Errorf("trivia.amount must be positive, got %d", c.Trivia.Amount)
	}
	if c.Trivia.MaxConcurrent <= 0 {
		return fmt.Errorf("trivia.max_concurrent must be positive, got %d", c.Trivia.MaxConcurrent)
	}
	if TTLDuration(c.Quiz.Tick, 0) <= 0 {
		return fmt.Errorf("quiz.tick must be a positive duration, got %q", c.Quiz.Tick)
	}
	if TTLDuration(c.Quiz.TimeLimit, 0) <= 0 {
		return fmt.Errorf("quiz.time_limit must be a positive duration, got %q", c.Quiz.TimeLimit)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
