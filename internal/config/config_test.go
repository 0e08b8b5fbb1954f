package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ALTURA_API_URL", "")
	t.Setenv("ALTURA_STATE_DIR", "")
	t.Setenv("ALTURA_HTTP_DEBUG", "")
	t.Setenv("ALTURA_HTTP_TIMEOUT", "")

	cfg := Load()
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("expected default base URL, got %q", cfg.APIBaseURL)
	}
	if cfg.StateDir == "" {
		t.Fatal("expected a state dir default")
	}
	if cfg.HTTPDebug {
		t.Fatal("expected debug off by default")
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no timeout by default, got %v", cfg.HTTPTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ALTURA_API_URL", "http://localhost:9000/api")
	t.Setenv("ALTURA_STATE_DIR", "/tmp/altura-test")
	t.Setenv("ALTURA_HTTP_DEBUG", "true")
	t.Setenv("ALTURA_HTTP_TIMEOUT", "30s")

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:9000/api" {
		t.Fatalf("unexpected base URL %q", cfg.APIBaseURL)
	}
	if cfg.StateDir != "/tmp/altura-test" {
		t.Fatalf("unexpected state dir %q", cfg.StateDir)
	}
	if !cfg.HTTPDebug {
		t.Fatal("expected debug on")
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.HTTPTimeout)
	}
}

func TestLoadIgnoresBadTimeout(t *testing.T) {
	t.Setenv("ALTURA_HTTP_TIMEOUT", "soon")
	if cfg := Load(); cfg.HTTPTimeout != 0 {
		t.Fatalf("expected bad duration to fall back to 0, got %v", cfg.HTTPTimeout)
	}
}
