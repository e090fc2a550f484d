package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/api"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/api/handler"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/api/middleware"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/cache"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/config"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/events"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/layout"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/metrics"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository/postgresql"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	consumerTimeout = 5 * time.Second
)

func main() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	log := &l

	cfg := config.Load(log)
	l = l.Level(cfg.Level())
	log.Info().Str("port", cfg.ServerPort).Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to database")
	}
	defer db.Close()
	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("Database connected")

	metrics.Register()

	userRepo := postgresql.NewPgUserRepository(db)
	propRepo := postgresql.NewPgPropertyRepository(db)
	slotRepo := postgresql.NewPgPropertySlotRepository(db)
	bookingRepo := postgresql.NewPgBookingRepository(db)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, template cache will miss")
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.TemplateCacheTTL).Msg("Template cache enabled")
		}
	} else {
		log.Info().Msg("REDIS_ADDR not set, template cache disabled")
	}
	templateCache := cache.NewTemplateCache(redisClient, cfg.TemplateCacheTTL, log)

	gen := layout.NewGenerator(log)
	catalog := layout.NewCatalog(gen, layout.DefaultCategories(), log)

	wsManager := handler.NewWebSocketManager(log)
	go wsManager.Run(ctx)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, log)
	propertyService := service.NewPropertyService(propRepo, slotRepo, bookingRepo, log)
	bookingService := service.NewBookingService(propRepo, slotRepo, bookingRepo, wsManager, log)
	layoutService := service.NewLayoutService(gen, catalog, templateCache, cfg.DefaultPricePerHour, log)

	authMw := middleware.NewAuthMiddleware(authService, log)
	bookingLimiter := middleware.NewUserRateLimiter(cfg.BookingRatePerMinute, cfg.BookingRateBurst)

	var wg sync.WaitGroup
	if cfg.SQSPaymentQueueURL == "" {
		log.Warn().Msg("SQS_PAYMENT_QUEUE_URL not set, payment consumer will not run")
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatal().Err(err).Msg("Could not load AWS config")
		}
		consumer := events.NewSQSConsumer(sqs.NewFromConfig(awsCfg), cfg.SQSPaymentQueueURL, bookingService, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(ctx)
		}()
	}

	router := api.SetupRouter(api.Services{
		Auth:     authService,
		Property: propertyService,
		Booking:  bookingService,
		Layout:   layoutService,
	}, authMw, bookingLimiter, wsManager, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(consumerTimeout):
		log.Warn().Msg("Payment consumer did not stop in time")
	}
	log.Info().Msg("Server stopped")
}
