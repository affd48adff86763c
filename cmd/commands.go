package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/config"
	"github.com/Leganyst/booking-engine/internal/logger"
	"github.com/Leganyst/booking-engine/internal/notify"
	"github.com/Leganyst/booking-engine/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg, err := config.LoadDBConfig()
			if err != nil {
				return fmt.Errorf("load db config: %w", err)
			}
			log := logger.New(os.Getenv("LOG_LEVEL"), false)
			gormDB, err := openDB(dbCfg)
			if err != nil {
				return err
			}
			defer closeDB(gormDB)
			log.Info().Str("driver", gormDB.Dialector.Name()).Msg("migrations applied")
			return nil
		},
	}
}

// dispatchCmd — один проход outbox и очереди синхронизации календарей.
func dispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Run a single outbox and calendar sync pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			gormDB, err := openDB(&cfg.DB)
			if err != nil {
				return err
			}
			defer closeDB(gormDB)

			store := repository.NewStore(gormDB)
			dispatcher := newDispatcher(cfg, store, newPublisher(cfg, notify.NewHub(), log), log)
			worker := newWorker(cfg, store, log)

			ctx := cmd.Context()
			published, err := dispatcher.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("dispatch outbox: %w", err)
			}
			synced, err := worker.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("calendar sync: %w", err)
			}
			log.Info().Int("published", published).Int("synced", synced).Msg("dispatch pass finished")
			return nil
		},
	}
}

// tokenCmd выпускает токен для локальной разработки.
func tokenCmd() *cobra.Command {
	var (
		role      string
		scope     string
		username  string
		scopeName string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := bootstrap()
			if err != nil {
				return err
			}
			actor := access.AuthContext{Role: access.Role(role), Username: username, ScopeName: scopeName}
			if scope != "" {
				id, err := uuid.Parse(scope)
				if err != nil {
					return fmt.Errorf("invalid scope id: %w", err)
				}
				actor.ScopeID = id
			}
			tok, err := access.NewTokens(cfg.JWTSecret, cfg.JWTIssuer).Issue(actor, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(access.RoleAdmin), "actor role")
	cmd.Flags().StringVar(&scope, "scope", "", "specialist, work point or organisation id")
	cmd.Flags().StringVar(&username, "username", "admin", "username")
	cmd.Flags().StringVar(&scopeName, "scope-name", "", "display name of the scope")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
