package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := Defaults()
	cfg.TCPPort = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero port")
	}
	cfg.TCPPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestValidate_RejectsLatencyBelowWindow(t *testing.T) {
	cfg := Defaults()
	cfg.CoherenceWindow = time.Second
	cfg.LatencyDelay = time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when latency_delay < coherence_window")
	}
}

func TestSafeConfig_UpdateRejectsInvalid(t *testing.T) {
	sc := NewSafeConfig(Defaults())
	bad := Defaults()
	bad.TCPPort = -1
	if err := sc.Update(bad); err == nil {
		t.Error("expected update to reject invalid config")
	}
	if sc.Get().TCPPort != DefaultTCPPort {
		t.Error("rejected update should not have changed the stored config")
	}
}

func TestSafeConfig_GetReturnsCopy(t *testing.T) {
	sc := NewSafeConfig(Defaults())
	a := sc.Get()
	a.TCPPort = 1
	b := sc.Get()
	if b.TCPPort != DefaultTCPPort {
		t.Error("mutating a Get() result should not affect stored config")
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	os.Setenv("EVENTBUILDER_TCP_PORT", "9100")
	os.Setenv("EVENTBUILDER_COHERENCE_WINDOW_NS", "500000")
	os.Setenv("EVENTBUILDER_LATENCY_DELAY_NS", "3000000000")
	os.Setenv("EVENTBUILDER_METRICS_ADDR", ":9191")
	defer func() {
		os.Unsetenv("EVENTBUILDER_TCP_PORT")
		os.Unsetenv("EVENTBUILDER_COHERENCE_WINDOW_NS")
		os.Unsetenv("EVENTBUILDER_LATENCY_DELAY_NS")
		os.Unsetenv("EVENTBUILDER_METRICS_ADDR")
	}()

	loader := NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TCPPort != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.TCPPort)
	}
	if cfg.CoherenceWindow != 500*time.Microsecond {
		t.Errorf("expected coherence window 500us, got %s", cfg.CoherenceWindow)
	}
	if cfg.LatencyDelay != 3*time.Second {
		t.Errorf("expected latency delay 3s, got %s", cfg.LatencyDelay)
	}
	if cfg.MetricsAddr != ":9191" {
		t.Errorf("expected metrics addr :9191, got %s", cfg.MetricsAddr)
	}
}

func TestLoader_FileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"tcp_port": 9500}`), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	loader := NewLoader()
	loader.AddLayer(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TCPPort != 9500 {
		t.Errorf("expected port 9500 from file, got %d", cfg.TCPPort)
	}
	if cfg.LatencyDelay != DefaultLatencyDelay {
		t.Errorf("expected unset fields to keep defaults, got %s", cfg.LatencyDelay)
	}
}

func TestLoader_EnvOverridesFileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"tcp_port": 9500}`), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	os.Setenv("EVENTBUILDER_TCP_PORT", "9600")
	defer os.Unsetenv("EVENTBUILDER_TCP_PORT")

	loader := NewLoader()
	loader.AddLayer(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TCPPort != 9600 {
		t.Errorf("expected env override to win over file, got %d", cfg.TCPPort)
	}
}

func TestLoader_InvalidConfigFailsValidation(t *testing.T) {
	os.Setenv("EVENTBUILDER_TCP_PORT", "999999")
	defer os.Unsetenv("EVENTBUILDER_TCP_PORT")

	loader := NewLoader()
	if _, err := loader.Load(); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Defaults()
	cfg.TCPPort = 9700
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loader := NewLoader()
	loader.AddLayer(path)
	reloaded, err := loader.Load()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.TCPPort != 9700 {
		t.Errorf("expected reloaded port 9700, got %d", reloaded.TCPPort)
	}
}
