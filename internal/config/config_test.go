package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", ":memory:")
	t.Setenv("SYNC_BATCH", "7")
	t.Setenv("OUTBOX_RETENTION", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.Name != ":memory:" {
		t.Fatalf("unexpected db config %+v", cfg.DB)
	}
	if cfg.SyncBatch != 7 || cfg.SyncMaxAttempts != 5 {
		t.Fatalf("unexpected sync config batch=%d attempts=%d", cfg.SyncBatch, cfg.SyncMaxAttempts)
	}
	if cfg.OutboxMaxAttempts != 5 {
		t.Fatalf("unexpected outbox attempts %d", cfg.OutboxMaxAttempts)
	}
	if cfg.OutboxRetention != 2*time.Hour {
		t.Fatalf("unexpected retention %s", cfg.OutboxRetention)
	}
	if cfg.GRPCAddr != ":50051" || cfg.OutboxSchedule != "@every 5s" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Twilio.Enabled() {
		t.Fatalf("twilio must be disabled without credentials")
	}
}

func TestLoad_RequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "booking.db")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoad_RejectsBadSchedule(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", ":memory:")
	t.Setenv("SYNC_SCHEDULE", "every now and then")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}

func TestLoadDBConfig_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := LoadDBConfig(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
