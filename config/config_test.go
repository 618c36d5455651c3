package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	os := Default()
	if os.Port != 4000 || os.TickRate != 60 || os.DisconnectGraceMs != 15000 {
		t.Fatalf("unexpected defaults: %+v", os)
	}
}

func TestLoadOverridesAndSplitsOrigins(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CLIENT_URL", "https://a.example.com, https://b.example.com")
	t.Setenv("TICK_RATE", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("Port = %d, want 9090", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example.com" {
		t.Fatalf("AllowedOrigins = %+v", cfg.AllowedOrigins)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("TickRate = %d, want 30", cfg.TickRate)
	}
}

func TestLoadNeverErrorsOnMissingVars(t *testing.T) {
	if _, err := Load(); err != nil {
		t.Fatalf("Load with no env overrides should never error, got %v", err)
	}
}

func TestLoadErrorsOnBadInt(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable PORT")
	}
}

func TestTickIntervalMsFloor(t *testing.T) {
	cfg := Default()
	cfg.TickRate = 1000
	if got := cfg.TickIntervalMs(); got != 10 {
		t.Fatalf("TickIntervalMs() = %d, want floor of 10", got)
	}
	cfg.TickRate = 60
	if got := cfg.TickIntervalMs(); got != 16 {
		t.Fatalf("TickIntervalMs() = %d, want 16", got)
	}
}
