package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.Croot != 2 || cfg.Cnode != 2 {
		t.Errorf("Croot/Cnode = %d/%d, want 2/2", cfg.Croot, cfg.Cnode)
	}
	if cfg.HeartbeatTimeout != 15*time.Second {
		t.Errorf("HeartbeatTimeout = %s, want 15s", cfg.HeartbeatTimeout)
	}
	if cfg.HeartbeatSweep != 5*time.Second {
		t.Errorf("HeartbeatSweep = %s, want 5s", cfg.HeartbeatSweep)
	}
	if cfg.RebalanceInterval != 8*time.Second {
		t.Errorf("RebalanceInterval = %s, want 8s", cfg.RebalanceInterval)
	}
}

func TestEnvIntOrDefaultInvalid(t *testing.T) {
	t.Setenv("FM_CROOT", "not-a-number")
	cfg := Load()
	if cfg.Croot != 2 {
		t.Errorf("Croot = %d, want fallback 2 on invalid input", cfg.Croot)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("FM_CNODE", "4")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Cnode != 4 {
		t.Errorf("Cnode = %d, want 4", cfg.Cnode)
	}
}
