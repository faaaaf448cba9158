package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Session.Store != StoreMemory {
		t.Errorf("store = %q, want memory", cfg.Session.Store)
	}
	if cfg.Session.EmptyFilter != "hide_all" {
		t.Errorf("empty_filter = %q, want hide_all", cfg.Session.EmptyFilter)
	}
	if cfg.Session.TTL() != 30*time.Minute {
		t.Errorf("TTL() = %v, want 30m", cfg.Session.TTL())
	}
	if cfg.Session.KeyPrefix != "tagfind:" {
		t.Errorf("key_prefix = %q", cfg.Session.KeyPrefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Store(t *testing.T) {
	tests := []struct {
		store   string
		addrs   []string
		wantErr bool
	}{
		{"memory", nil, false},
		{"redis", []string{"localhost:6379"}, false},
		{"valkey", []string{"localhost:6379"}, false},
		{"redis", nil, true},
		{"valkey", nil, true},
		{"etcd", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.store, func(t *testing.T) {
			cfg := validConfig()
			cfg.Session.Store = tt.store
			cfg.Database.Addrs = tt.addrs
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_EmptyFilter(t *testing.T) {
	cfg := validConfig()
	cfg.Session.EmptyFilter = "show_some"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid empty_filter")
	}
	expected := `session.empty_filter must be "hide_all" or "show_all", got "show_some"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TAGFIND_TEST_PORT", "9090")

	got := string(expandEnvVars([]byte("port: ${TAGFIND_TEST_PORT}\nstore: ${TAGFIND_TEST_UNSET:-memory}")))
	want := "port: 9090\nstore: memory"
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "http:\n  port: 8181\nsession:\n  store: memory\n  empty_filter: show_all\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8181 || cfg.Session.EmptyFilter != "show_all" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
