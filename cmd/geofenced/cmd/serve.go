package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/westpoint-robotics/ros-cot/internal/api"
	"github.com/westpoint-robotics/ros-cot/internal/codec"
	"github.com/westpoint-robotics/ros-cot/internal/config"
	"github.com/westpoint-robotics/ros-cot/internal/feed"
	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/geofence"
	"github.com/westpoint-robotics/ros-cot/internal/metrics"
	"github.com/westpoint-robotics/ros-cot/internal/storage/sqlite"
	"github.com/westpoint-robotics/ros-cot/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configFile string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the geofence HTTP service",
		Long: `serve loads the mission named in the configuration file and answers
position checks over HTTP. SIGHUP reloads the mission file; SIGINT and
SIGTERM shut the service down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			log, err := logger.New(logger.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg, log); err != nil {
				log.Error("Service stopped with error", logger.Error(err))
				return err
			}
			return nil
		},
	}
	c.Flags().StringVar(&configFile, "config", "./geofenced.toml", "configuration file location")
	return c
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Mission.File == "" {
		return errors.New("mission.file is required")
	}
	sc, err := codec.LoadFile(cfg.Mission.File)
	if err != nil {
		return err
	}
	origin, err := geodetic.NewCoordinate3D(cfg.Origin.Latitude, cfg.Origin.Longitude, cfg.Origin.Altitude)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}

	opts := []geofence.Option{geofence.WithSmoothing(cfg.Origin.SmoothingAlpha)}

	var m *metrics.Collector
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if m, err = metrics.New(reg); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, geofence.WithMetrics(m))
	}

	var storage *sqlite.EvaluationStorage
	if cfg.Storage.SQLitePath != "" {
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		if storage, err = sqlite.NewEvaluationStorage(db, log); err != nil {
			return err
		}
		opts = append(opts, geofence.WithStore(storage))
	}

	svc, err := geofence.NewService(sc, origin, log, opts...)
	if err != nil {
		return err
	}

	hub := api.NewHub(cfg.Server.CORSAllowedOrigins, log)
	defer hub.Close()
	svc.AddNotifier(hub)

	go reloadOnHangup(ctx, svc, cfg.Mission.File, log)

	if cfg.Feed.Enabled {
		client := feed.NewClient(cfg.Feed.URL, cfg.Feed.RequestTimeout(), log)
		poller := feed.NewPoller(client, svc, cfg.Feed.PollInterval(), m, log)
		go poller.Run(ctx)
	}

	router := api.NewRouter(svc, storage, hub, m, cfg.Server, log)
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// reloadOnHangup swaps in a fresh copy of the mission file on every SIGHUP.
// A file that fails to load leaves the current constraints in place.
func reloadOnHangup(ctx context.Context, svc *geofence.Service, path string, log *logger.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			sc, err := codec.LoadFile(path)
			if err != nil {
				log.Error("Mission reload failed", logger.String("file", path), logger.Error(err))
				continue
			}
			if err := svc.Reload(sc); err != nil {
				log.Error("Mission reload failed", logger.String("file", path), logger.Error(err))
				continue
			}
			log.Info("Mission reloaded", logger.String("file", path))
		}
	}
}
