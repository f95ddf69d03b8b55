package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/swasthya/internal/api"
	"github.com/UnknownOlympus/swasthya/internal/auth"
	"github.com/UnknownOlympus/swasthya/internal/cache"
	"github.com/UnknownOlympus/swasthya/internal/config"
	"github.com/UnknownOlympus/swasthya/internal/geocoding"
	"github.com/UnknownOlympus/swasthya/internal/metrics"
	"github.com/UnknownOlympus/swasthya/internal/repository"
	"github.com/UnknownOlympus/swasthya/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const (
	// Total requests per second shared by the backfill workers.
	providerRateLimit = 50
	shutdownTimeout   = 10 * time.Second
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "swasthya",
		Short:        "SwasthyaConnect hospital directory service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd(), migrateCmd(), geocodeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API, the coordinate backfill and the monitoring server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Canceled on an interrupt signal for a graceful shutdown.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, config.MustLoad())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad()
			logger := setupLogger(cfg.Env)

			dtb, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer dtb.Close()

			if err = repository.NewRepository(dtb, logger).Migrate(cmd.Context()); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "Schema is up to date")
			return nil
		},
	}
}

func geocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address with the configured provider and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoad()
			logger := setupLogger(cfg.Env)

			provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
				Type:      geocoding.ProviderType(cfg.ProviderType),
				APIKey:    cfg.APIKey,
				RateLimit: 1,
				Logger:    logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create geocoding provider: %w", err)
			}

			place, err := provider.Geocode(cmd.Context(), cfg.AddrPrefix+args[0])
			if err != nil {
				return fmt.Errorf("failed to geocode %q: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(place)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dtb, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, logger)
	if err = repo.Migrate(ctx); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()

	// The provider is selected at runtime from configuration (Google or Nominatim).
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.ProviderType),
		APIKey:    cfg.APIKey,
		RateLimit: providerRateLimit / cfg.Workers,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	cached := geocoding.NewCachedProvider(geoProvider, rdb, cfg.GeocodeCacheTTL, appMetrics.GeocodeCache, logger)

	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.ProviderType)

	directory := service.NewDirectoryService(
		logger,
		repo,
		cache.NewOverrideStore(rdb, cfg.OverrideTTL, logger),
		appMetrics,
		service.Radii{NearbyKm: cfg.Radius.NearbyKm, AmbulanceKm: cfg.Radius.AmbulanceKm},
	)
	bookings := service.NewBookingService(logger, repo, directory, appMetrics)
	records := service.NewRecordService(logger, repo)

	geoService := service.NewGeocodingService(
		logger,
		repo,
		cached,
		cfg.ProviderType, // Provider name for metrics
		appMetrics,
		cfg.Workers,
		cfg.Interval,
		cfg.AddrPrefix,
	)

	if cfg.JWTSecret == "" {
		logger.WarnContext(ctx, "SWASTHYA_JWT_SECRET is empty, every signed-in request will be rejected")
	}
	resolver := auth.NewResolver(auth.NewTokenVerifier(cfg.JWTSecret), repo, logger)
	router := api.NewRouter(logger, resolver, api.NewHandler(logger, directory, bookings, records, cached))

	go startMonitoringServer(ctx, logger, reg, dtb, rdb, cfg.Port)
	go geoService.Run(ctx)

	serveErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Starting API server", "addr", cfg.HTTPAddr)
		serveErr <- serveAPI(router, cfg.HTTPAddr)
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C) or for the API server to fail.
	if err = awaitShutdown(ctx, serveErr); err != nil {
		logger.ErrorContext(ctx, "API server failed", "error", err)
		return err
	}

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = router.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop API server: %w", err)
	}

	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
	return nil
}

// serveAPI runs the echo server until it stops. A graceful shutdown is not an error.
func serveAPI(e *echo.Echo, addr string) error {
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve API on %s: %w", addr, err)
	}

	return nil
}

// awaitShutdown blocks until ctx is canceled or the API server returns.
func awaitShutdown(ctx context.Context, serveErr <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-serveErr:
		if err == nil {
			return errors.New("API server stopped unexpectedly")
		}
		return err
	}
}

func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dtb, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	return dtb, nil
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// Only an unreachable database fails the health check.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	rdb *redis.Client,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := rdb.Ping(req.Context()).Err(); err != nil {
			body = "OK (redis unavailable)"
		}
		if err := dtb.Ping(req.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
