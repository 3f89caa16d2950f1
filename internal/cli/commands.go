package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/venuehub/reservations/config"
	"github.com/venuehub/reservations/internal/bootstrap"
	"github.com/venuehub/reservations/internal/kafka"
	"github.com/venuehub/reservations/internal/logger"
	"github.com/venuehub/reservations/internal/notify"
	"github.com/venuehub/reservations/internal/repository"
	"github.com/venuehub/reservations/internal/worker"
)

type runFunc func(cmd *cobra.Command, args []string) error

func NewServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  serve(v),
	}
}

func serve(v *viper.Viper) runFunc {
	return withApp(v, "app", func(ctx context.Context, a *app, _ []string) error {
		if a.pool != nil {
			if err := repository.Migrate(ctx, a.pool); err != nil {
				return err
			}
		}
		return bootstrap.Run(ctx, a.cfg, a.log, bootstrap.Services{
			Availability: a.availability(),
			Reservations: a.reservationService(),
			Health:       a.health,
		})
	})
}

func NewMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: withApp(v, "migrate", func(ctx context.Context, a *app, _ []string) error {
			if a.pool == nil {
				return fmt.Errorf("migrate requires the %s storage driver", config.StorageDriverPostgres)
			}
			if err := repository.Migrate(ctx, a.pool); err != nil {
				return err
			}
			a.log.Info("schema up to date")
			return nil
		}),
	}
}

func NewSeedCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Load resources from a YAML seed file",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(v, "seed", func(ctx context.Context, a *app, args []string) error {
			path := a.cfg.Storage.SeedFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no seed file given")
			}
			n, err := repository.LoadSeed(ctx, path, a.resources)
			if err != nil {
				return err
			}
			a.log.Info("seed loaded", zap.Int("resources", n), zap.String("file", path))
			return nil
		}),
	}
}

func NewWorkerCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the lifecycle sweeper and holder notifications",
		RunE: withApp(v, "worker", func(ctx context.Context, a *app, _ []string) error {
			var opts []worker.Option
			if a.cfg.Kafka.Enabled {
				consumer := kafka.NewConsumer(a.cfg.Kafka.Brokers, a.cfg.Kafka.GroupID, a.cfg.Kafka.NotificationsTopic, a.log)
				defer consumer.Close()
				opts = append(opts, worker.WithNotifications(consumer, notify.NewNotifier(a.log)))
			}
			interval := time.Duration(a.cfg.Worker.SweepIntervalMinutes) * time.Minute
			return worker.New(a.reservationService(), interval, a.log, opts...).Run(ctx)
		}),
	}
}

// withApp loads config, builds the logger and infrastructure, and runs fn
// until SIGINT or SIGTERM.
func withApp(v *viper.Viper, name string, fn func(ctx context.Context, a *app, args []string) error) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(v)
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.Log, name)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			log.Error("startup failed", zap.Error(err))
			return err
		}
		defer a.close()
		return fn(ctx, a, args)
	}
}
