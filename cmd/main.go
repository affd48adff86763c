package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	_ "time/tzdata"

	"github.com/Leganyst/booking-engine/internal/config"
	"github.com/Leganyst/booking-engine/internal/db"
	"github.com/Leganyst/booking-engine/internal/logger"
	"github.com/Leganyst/booking-engine/internal/model"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "booking-engine",
		Short:         "Booking scheduling and conflict resolution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(dispatchCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap загружает конфиг и создаёт логгер. Общая часть всех команд.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	return cfg, log, nil
}

// openDB подключается к БД и прогоняет миграции.
func openDB(cfg *config.DBConfig) (*gorm.DB, error) {
	gormDB, err := db.NewGormDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return gormDB, nil
}

func closeDB(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func pingDB(gormDB *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
