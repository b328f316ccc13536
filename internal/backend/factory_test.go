package backend

import (
	"context"
	"testing"

	"fintrack/internal/config"
)

func TestBackendTypeIsValid(t *testing.T) {
	tests := []struct {
		backendType BackendType
		valid       bool
	}{
		{MemoryBackend, true},
		{FileBackend, true},
		{SQLiteBackend, true},
		{BackendType("sheets"), false},
		{BackendType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.backendType), func(t *testing.T) {
			if got := tt.backendType.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		if _, err := FromAppConfig(nil); err == nil {
			t.Error("expected error for nil config")
		}
	})

	t.Run("invalid backend", func(t *testing.T) {
		if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})

	t.Run("valid config", func(t *testing.T) {
		cfg, err := FromAppConfig(&config.Config{
			DataBackend:  "sqlite",
			DataDir:      "./data",
			SQLiteDBPath: "./data/fintrack.db",
		})
		if err != nil {
			t.Fatalf("FromAppConfig() error = %v", err)
		}
		if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "./data/fintrack.db" {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without db path should fail validation")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory backend should validate, got %v", err)
	}
}

func TestCreateMemoryAndFileBackends(t *testing.T) {
	factory := NewFactory(nil)
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		result, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if result.KV == nil {
			t.Fatal("expected a KV instance")
		}
		if err := result.KV.Set("k", []byte("v")); err != nil {
			t.Errorf("Set() error = %v", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		result, err := factory.CreateBackend(ctx, Config{Type: FileBackend, DataDirectory: t.TempDir()})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if err := result.KV.Set("k", []byte("v")); err != nil {
			t.Errorf("Set() error = %v", err)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		if _, err := factory.CreateBackend(ctx, Config{Type: "sheets"}); err == nil {
			t.Error("expected error for invalid type")
		}
	})
}
