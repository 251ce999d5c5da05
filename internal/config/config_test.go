package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Storage != StoragePostgres {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Kolkata" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if cfg.Booking.DisplayCount != 3 || cfg.Booking.TransitMinute != time.Second {
		t.Fatalf("unexpected booking defaults: %+v", cfg.Booking)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CITYCAB_STORAGE", "memory")
	t.Setenv("CITYCAB_CONFIRM_TIMEOUT", "45s")
	t.Setenv("CITYCAB_DISPLAY_COUNT", "5")
	t.Setenv("CITYCAB_RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("CITYCAB_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.Booking.ConfirmTimeout != 45*time.Second || cfg.Booking.DisplayCount != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.HTTP.RateLimitRPS != 5 {
		t.Fatalf("bad number should fall back to the default, got %v", cfg.HTTP.RateLimitRPS)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CITYCAB_STORAGE", "sqlite"},
		{"CITYCAB_TIMEZONE", "Mars/Olympus"},
		{"CITYCAB_DISPLAY_COUNT", "0"},
		{"CITYCAB_FLEET_FLUSH_SECONDS", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
