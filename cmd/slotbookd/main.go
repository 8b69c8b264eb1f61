package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"slot-booking-backend/config"
	"slot-booking-backend/internal/api"
	"slot-booking-backend/internal/booking"
	"slot-booking-backend/internal/db"
	"slot-booking-backend/internal/logging"
	"slot-booking-backend/internal/metrics"
	"slot-booking-backend/internal/model"
	"slot-booking-backend/internal/mw"
	"slot-booking-backend/internal/notification"
	"slot-booking-backend/internal/schedule"
	"slot-booking-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	logger.Info("database initialized")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := appStore.RebuildFlags(ctx); err != nil {
		logger.Warn("failed to rebuild availability flags", zap.Error(err))
	}

	bookingMetrics := metrics.Booking()
	availabilityCache := mw.NewResponseCache(cfg.Server.CacheTTL(), 2*cfg.Server.CacheTTL())

	var webpushOptions *webpush.Options
	if cfg.Notification.Push.Enabled {
		if cfg.Notification.Push.PublicKey == "" || cfg.Notification.Push.PrivateKey == "" {
			logger.Fatal("push is enabled but VAPID keys are missing; generate them and add them to your config file")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Notification.Push.PublicKey,
			VAPIDPrivateKey: cfg.Notification.Push.PrivateKey,
			Subscriber:      cfg.Notification.Push.Subject,
			TTL:             cfg.Notification.Push.TTL,
		}
	}

	// Notifications run on the worker pool, off the request path.
	channels := buildChannels(cfg, appStore, webpushOptions, logger)
	dispatcher := notification.NewDispatcher(channels, cfg.Notification.Timeout, logger, bookingMetrics)
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, dispatcher, logger, bookingMetrics)
	workerPool.Start(ctx)
	logger.Info("notification workers started",
		zap.Int("workers", cfg.WorkerPool.Size),
		zap.Strings("channels", dispatcher.Channels()))

	bookingSvc := booking.NewService(appStore, appStore,
		booking.WithNotifier(workerPool),
		booking.WithHook(func(model.Reservation) { availabilityCache.Flush() }),
		booking.WithLogger(logger),
		booking.WithMetrics(bookingMetrics),
		booking.WithCountryCode(cfg.Booking.DefaultCountryCode),
		booking.WithMaxNoteLength(cfg.Booking.MaxNoteLength))

	if cfg.Schedule.Source != "" {
		scheduleSvc := schedule.NewService(
			schedule.NewLoader(cfg.Schedule, logger),
			appStore,
			cfg.Schedule.SyncInterval,
			cfg.Schedule.SyncOnStart,
			logger)
		scheduleSvc.OnSync(availabilityCache.Flush)
		go scheduleSvc.Run(ctx)
	}

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, 10*time.Minute)
	go sweepLimiter(ctx, limiter)

	router := api.NewRouter(api.RouterOptions{
		Store:          appStore,
		Booking:        bookingSvc,
		Cache:          availabilityCache,
		CacheTTL:       cfg.Server.CacheTTL(),
		RateLimiter:    limiter,
		WebPush:        webpushOptions,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		Logger:         logger,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Info("shutdown signal received, stopping services")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
	}

	// In-flight claims have returned; now stop the workers.
	cancel()
	workerPool.Wait()

	logger.Info("server gracefully stopped")
}

// buildChannels returns the notification channels enabled in cfg.
func buildChannels(cfg *config.Config, s store.Store, webpushOptions *webpush.Options, logger *zap.Logger) []notification.Channel {
	var channels []notification.Channel

	if cfg.Notification.WhatsApp.Enabled {
		channels = append(channels, notification.NewWhatsAppChannel(cfg.Notification.WhatsApp))
	}
	if cfg.Notification.Email.Enabled {
		client := &http.Client{Timeout: cfg.Notification.Timeout}
		channels = append(channels,
			notification.NewEmailJSChannel(cfg.Notification.Email, notification.RecipientCustomer, client),
			notification.NewEmailJSChannel(cfg.Notification.Email, notification.RecipientOwner, client))
	}
	if webpushOptions != nil {
		channels = append(channels, notification.NewWebPushChannel(s, webpushOptions, logger))
	}

	if len(channels) == 0 {
		logger.Warn("no notification channels enabled; confirmations will not be sent")
	}
	return channels
}

func sweepLimiter(ctx context.Context, limiter *mw.IPRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			limiter.Sweep(now)
		}
	}
}
