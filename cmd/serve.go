package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/access"
	"github.com/Leganyst/booking-engine/internal/api"
	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/calsync"
	"github.com/Leganyst/booking-engine/internal/config"
	"github.com/Leganyst/booking-engine/internal/notify"
	"github.com/Leganyst/booking-engine/internal/repository"
	"github.com/Leganyst/booking-engine/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start gRPC and HTTP servers with background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			app := fx.New(
				fx.NopLogger,
				fx.Supply(cfg, log),
				fx.Provide(
					newGormDB,
					repository.NewStore,
					repository.NewDetailsRepository,
					newZones,
					newSyncQueue,
					newBookingService,
					service.NewScheduleService,
					newTokens,
					notify.NewHub,
					newPublisher,
					newDispatcher,
					newWorker,
					newAPI,
				),
				fx.Invoke(runGRPC, runHTTP, runCron),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newGormDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := openDB(&cfg.DB)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return closeDB(gormDB) },
	})
	return gormDB, nil
}

func newZones(cfg *config.Config) calendar.TimezoneProvider {
	return calendar.NewZones(cfg.DefaultTimezone)
}

func newSyncQueue(store *repository.Store, log zerolog.Logger) service.SyncQueue {
	return calsync.NewQueue(store, log)
}

func newBookingService(
	store *repository.Store,
	details *repository.DetailsRepository,
	zones calendar.TimezoneProvider,
	sync service.SyncQueue,
	log zerolog.Logger,
) *service.BookingService {
	return service.NewBookingService(store, details, zones, sync, log)
}

func newTokens(cfg *config.Config) *access.Tokens {
	return access.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)
}

// newPublisher: хаб для /api/v1/events, лог и SMS, если Twilio настроен.
// SMS не повторяется: его ошибка не должна задерживать доставку в хаб.
func newPublisher(cfg *config.Config, hub *notify.Hub, log zerolog.Logger) notify.Publisher {
	publishers := notify.Multi{hub, notify.LogPublisher{Log: log}}
	if cfg.Twilio.Enabled() {
		sender := notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
		sms := notify.NewSMSPublisher(sender, cfg.SMSDefaultOn, log)
		publishers = append(publishers, notify.BestEffort{Publisher: sms, Log: log})
	} else {
		log.Warn().Msg("twilio is not configured, sms notifications disabled")
	}
	return publishers
}

func newDispatcher(cfg *config.Config, store *repository.Store, publisher notify.Publisher, log zerolog.Logger) *notify.Dispatcher {
	d := notify.NewDispatcher(store.Outbox, publisher, log)
	if cfg.OutboxBatch > 0 {
		d.Batch = cfg.OutboxBatch
	}
	if cfg.OutboxMaxAttempts > 0 {
		d.MaxAttempts = cfg.OutboxMaxAttempts
	}
	return d
}

func newWorker(cfg *config.Config, store *repository.Store, log zerolog.Logger) *calsync.Worker {
	w := calsync.NewWorker(store, calsync.LogCalendarClient{Log: log}, log)
	if cfg.SyncBatch > 0 {
		w.Batch = cfg.SyncBatch
	}
	w.MaxAttempts = cfg.SyncMaxAttempts
	return w
}

func newAPI(
	bookings *service.BookingService,
	schedule *service.ScheduleService,
	tokens *access.Tokens,
	hub *notify.Hub,
	gormDB *gorm.DB,
	log zerolog.Logger,
) *api.API {
	return api.New(bookings, schedule, tokens, pingDB(gormDB), log).WithHub(hub)
}

func runGRPC(lc fx.Lifecycle, cfg *config.Config, a *api.API, log zerolog.Logger) {
	srv := a.NewGRPCServer()
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
			go func() {
				if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					log.Error().Err(err).Msg("grpc serve")
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info().Msg("shutting down gRPC server")
			srv.GracefulStop()
			return nil
		},
	})
}

func runHTTP(lc fx.Lifecycle, cfg *config.Config, a *api.API, hub *notify.Hub, log zerolog.Logger) {
	e := a.NewHTTPServer()
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			lis, err := net.Listen("tcp", cfg.HTTPAddr)
			if err != nil {
				return err
			}
			e.Listener = lis
			log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
			go func() {
				if err := e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("http serve")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down HTTP server")
			hub.Close()
			return e.Shutdown(ctx)
		},
	})
}

// runCron запускает outbox, его очистку и синхронизацию календарей.
func runCron(lc fx.Lifecycle, cfg *config.Config, d *notify.Dispatcher, w *calsync.Worker, log zerolog.Logger) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	ctx, cancel := context.WithCancel(context.Background())

	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"outbox", cfg.OutboxSchedule, func() {
			if _, err := d.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("outbox pass")
			}
		}},
		{"outbox_cleanup", "@every 10m", func() {
			if _, err := d.Cleanup(ctx, cfg.OutboxRetention); err != nil {
				log.Error().Err(err).Msg("outbox cleanup")
			}
		}},
		{"calendar_sync", cfg.SyncSchedule, func() {
			if _, err := w.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("calendar sync pass")
			}
		}},
	}
	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, j.run); err != nil {
			cancel()
			return err
		}
		log.Info().Str("job", j.name).Str("schedule", j.spec).Msg("worker scheduled")
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-c.Stop().Done():
			case <-stopCtx.Done():
			}
			return nil
		},
	})
	return nil
}
