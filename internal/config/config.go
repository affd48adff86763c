package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Env string

	GRPCAddr string
	HTTPAddr string

	JWTSecret string
	JWTIssuer string

	LogLevel  string
	LogPretty bool

	// Зона для филиалов с некорректной timezone.
	DefaultTimezone string

	// Расписания воркеров в формате robfig/cron ("@every 5s").
	OutboxSchedule    string
	OutboxBatch       int
	OutboxMaxAttempts int
	OutboxRetention   time.Duration
	SyncSchedule      string
	SyncBatch         int
	SyncMaxAttempts   int

	SMSDefaultOn bool
	Twilio       TwilioConfig

	DB DBConfig
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	v := newViper()

	cfg := &Config{
		Env:               v.GetString("ENV"),
		GRPCAddr:          v.GetString("GRPC_ADDR"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTIssuer:         v.GetString("JWT_ISSUER"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogPretty:         v.GetBool("LOG_PRETTY"),
		DefaultTimezone:   v.GetString("DEFAULT_TIMEZONE"),
		OutboxSchedule:    v.GetString("OUTBOX_SCHEDULE"),
		OutboxBatch:       v.GetInt("OUTBOX_BATCH"),
		OutboxMaxAttempts: v.GetInt("OUTBOX_MAX_ATTEMPTS"),
		OutboxRetention:   v.GetDuration("OUTBOX_RETENTION"),
		SyncSchedule:      v.GetString("SYNC_SCHEDULE"),
		SyncBatch:         v.GetInt("SYNC_BATCH"),
		SyncMaxAttempts:   v.GetInt("SYNC_MAX_ATTEMPTS"),
		SMSDefaultOn:      v.GetBool("SMS_DEFAULT_ON"),
		Twilio: TwilioConfig{
			AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
			From:       v.GetString("TWILIO_FROM"),
		},
		DB: *dbConfigFrom(v),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	if err := c.DB.validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" && !c.IsDev() {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.SyncMaxAttempts <= 0 {
		return fmt.Errorf("SYNC_MAX_ATTEMPTS must be positive")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{"OUTBOX_SCHEDULE": c.OutboxSchedule, "SYNC_SCHEDULE": c.SyncSchedule} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	// .env необязателен; уже выставленные переменные не перезаписываются.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("GRPC_ADDR", ":50051")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("JWT_ISSUER", "booking-engine")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("DEFAULT_TIMEZONE", "Europe/London")
	v.SetDefault("OUTBOX_SCHEDULE", "@every 5s")
	v.SetDefault("OUTBOX_BATCH", 1000)
	v.SetDefault("OUTBOX_MAX_ATTEMPTS", 5)
	v.SetDefault("OUTBOX_RETENTION", time.Hour)
	v.SetDefault("SYNC_SCHEDULE", "@every 30s")
	v.SetDefault("SYNC_BATCH", 50)
	v.SetDefault("SYNC_MAX_ATTEMPTS", 5)
	v.SetDefault("SMS_DEFAULT_ON", true)
	setDBDefaults(v)

	return v
}
