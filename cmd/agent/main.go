package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stolik/internal/agent"
	"stolik/internal/config"
	"stolik/internal/directory"
	"stolik/internal/google"
	"stolik/internal/journal"
	"stolik/internal/metrics"
	"stolik/internal/notify"
	"stolik/internal/report"
	"stolik/internal/resy"
	"stolik/internal/scheduler"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Secrets may live in .env; missing file is fine.
	_ = godotenv.Load()

	var (
		configPath    = flag.String("config", os.Getenv("STOLIK_CONFIG_PATH"), "path to config.yaml")
		daemonMode    = flag.Bool("daemon", false, "run repeatedly on the configured interval")
		directoryMode = flag.Bool("directory", false, "backfill missing venue ids in the directory, then exit")
		upcomingMode  = flag.Bool("upcoming", false, "print active reservations, then exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resyClient := resy.New(cfg.Resy.APIKey, cfg.Resy.AuthToken, cfg.Resy.PaymentMethodID, resy.GeoHint{
		Latitude:  cfg.Resy.Search.Latitude,
		Longitude: cfg.Resy.Search.Longitude,
		Radius:    cfg.Resy.Search.RadiusM,
	})
	if cfg.Redis.Address != "" && cfg.Resy.CacheTTLSeconds > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		resyClient.UseRedisCache(rdb, cfg.ResyCacheTTL())
	}

	if *upcomingMode {
		printUpcoming(ctx, resyClient, &logger)
		return
	}

	httpClient, err := google.NewClient(ctx, cfg.Google.CredentialsPath, cfg.Google.TokenPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("google auth failed")
	}
	calendarSvc, err := google.NewCalendarService(ctx, httpClient, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("calendar service failed")
	}
	sheetsSvc, err := google.NewSheetsService(ctx, httpClient, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("sheets service failed")
	}

	if *directoryMode {
		job := directory.NewJob(sheetsSvc, resyClient, cfg.Google.SheetID, &logger)
		if err := job.Run(ctx); err != nil {
			logger.Fatal().Err(err).Msg("directory maintenance failed")
		}
		return
	}

	notifier := buildNotifier(ctx, cfg, httpClient, &logger)
	ag := agent.New(cfg, calendarSvc, sheetsSvc, resyClient, notifier, &logger)

	var jrnl *journal.Journal
	if cfg.Journal.Path != "" {
		jrnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("open journal failed")
		}
		defer jrnl.Close()
	}

	runPass := func(ctx context.Context) error {
		result, err := ag.RunOnce(ctx)
		if err != nil {
			return err
		}
		if jrnl != nil {
			if err := jrnl.RecordRun(ctx, result.ID, result.Outcome, result.ConfirmationID, result.StartedAt, result.FinishedAt, result.Attempts); err != nil {
				logger.Error().Err(err).Msg("journal write failed")
			}
		}
		if cfg.Report.Enabled {
			path, err := report.WriteRun(cfg.Report.Dir, result.ID, result.Outcome, result.Attempts)
			if err != nil {
				logger.Error().Err(err).Msg("report write failed")
			} else {
				logger.Info().Str("path", path).Msg("run report written")
			}
		}
		return nil
	}

	if *daemonMode {
		if cfg.Monitoring.HealthCheckPort == 0 {
			cfg.Monitoring.HealthCheckPort = 8090
		}
		go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, &logger)

		if cfg.Monitoring.PrometheusEnabled {
			if cfg.Monitoring.PrometheusPort == 0 {
				cfg.Monitoring.PrometheusPort = 9090
			}
			metrics.Register()
			go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
		}

		logger.Info().Msg("reservation agent started in daemon mode")
		scheduler.New(cfg.RunInterval(), runPass, &logger).Start(ctx)
		return
	}

	if err := runPass(ctx); err != nil {
		logger.Fatal().Err(err).Msg("reservation run failed")
	}
}

func buildNotifier(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *zerolog.Logger) notify.Notifier {
	var channels []notify.Notifier
	if cfg.Email.Enabled && cfg.Email.Recipient != "" {
		gm, err := notify.NewGmailNotifier(ctx, httpClient, cfg.Email.Recipient)
		if err != nil {
			logger.Fatal().Err(err).Msg("gmail notifier failed")
		}
		channels = append(channels, gm)
	}
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier failed")
		}
		channels = append(channels, tg)
	}
	if len(channels) == 0 {
		channels = append(channels, notify.LogNotifier{Logger: logger})
	}
	return notify.NewMulti(logger, channels...)
}

func printUpcoming(ctx context.Context, client *resy.Client, logger *zerolog.Logger) {
	reservations, err := client.ActiveReservations(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list reservations")
	}
	if len(reservations) == 0 {
		fmt.Println("No upcoming reservations found.")
		return
	}
	for _, r := range reservations {
		pretty, err := json.MarshalIndent(json.RawMessage(r), "", "  ")
		if err != nil {
			continue
		}
		fmt.Println(string(pretty))
	}
}

func startHealthServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
