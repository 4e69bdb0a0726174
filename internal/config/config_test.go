package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Trivia.Amount != 5 || cfg.Trivia.Category != 9 {
		t.Errorf("Trivia = %+v, want amount 5 category 9", cfg.Trivia)
	}
	if cfg.Quiz.Difficulty != "medium" {
		t.Errorf("Quiz.Difficulty = %q, want medium", cfg.Quiz.Difficulty)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
trivia:
  amount: 10
quiz:
  time_limit: 15s
  difficulty: hard
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Trivia.Amount != 10 || cfg.Quiz.Difficulty != "hard" {
		t.Errorf("unexpected overlay %+v", cfg)
	}
	if cfg.Trivia.Category != 9 {
		t.Errorf("Trivia.Category = %d, want default 9 kept", cfg.Trivia.Category)
	}
	if TTLDuration(cfg.Quiz.TimeLimit, 0) != 15*time.Second {
		t.Errorf("time limit = %q", cfg.Quiz.TimeLimit)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty difficulty defaults", func(c *Config) { c.Quiz.Difficulty = "" }, false},
		{"bad difficulty", func(c *Config) { c.Quiz.Difficulty = "insane" }, true},
		{"zero amount", func(c *Config) { c.Trivia.Amount = 0 }, true},
		{"zero concurrency", func(c *Config) { c.Trivia.MaxConcurrent = 0 }, true},
		{"bad time limit", func(c *Config) { c.Quiz.TimeLimit = "soon" }, true},
		{"zero tick", func(c *Config) { c.Quiz.Tick = "0s" }, true},
		{"negative tick", func(c *Config) { c.Quiz.Tick = "-1s" }, true},
		{"unparsable tick", func(c *Config) { c.Quiz.Tick = "often" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Errorf("empty = %v", d)
	}
	if d := TTLDuration("bogus", time.Minute); d != time.Minute {
		t.Errorf("invalid = %v", d)
	}
	if d := TTLDuration("2s", time.Minute); d != 2*time.Second {
		t.Errorf("valid = %v", d)
	}
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("TRIVIA_TEST_A=from-file\nTRIVIA_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("TRIVIA_TEST_A", "from-env")
	t.Setenv("TRIVIA_TEST_B", "")
	os.Unsetenv("TRIVIA_TEST_B")

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("TRIVIA_TEST_A"); got != "from-env" {
		t.Errorf("TRIVIA_TEST_A = %q, want from-env", got)
	}
	if got := os.Getenv("TRIVIA_TEST_B"); got != "from-file" {
		t.Errorf("TRIVIA_TEST_B = %q, want from-file", got)
	}
}
