package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashcards_go_backend/cmd/api/config"
	"flashcards_go_backend/internal/api"
	"flashcards_go_backend/internal/auth"
	"flashcards_go_backend/internal/database"
	"flashcards_go_backend/internal/services"
	"flashcards_go_backend/internal/utils/logger"
	"flashcards_go_backend/internal/utils/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Logger = logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	zerolog.DefaultContextLogger = &log.Logger
	if envErr != nil {
		log.Debug().Msg("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get database handle")
	}
	defer sqlDB.Close()

	healthChecks := []func(context.Context) error{sqlDB.PingContext}

	var quotaStore services.QuotaStore
	switch cfg.Ledger.Backend {
	case config.LedgerBackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("address", cfg.Redis.Address).Msg("Failed to connect to Redis")
		}
		quotaStore = services.NewRedisQuotaStore(redisClient)
		healthChecks = append(healthChecks, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	default:
		quotaStore = services.NewDBQuotaStore(db)
	}
	log.Info().Str("backend", cfg.Ledger.Backend).Msg("Quota ledger ready")

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.AI.APIKey))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GenAI client")
	}
	defer genaiClient.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	ledger := services.NewQuotaLedger(quotaStore, cfg.Ledger.DefaultGenerations)
	generator := services.NewGeminiFlashcardGenerator(
		services.NewGeminiFlashcardModel(genaiClient, cfg.AI.Model),
		services.GeneratorSettings{
			RequestTimeout:   cfg.AI.RequestTimeout,
			FailureThreshold: cfg.AI.FailureThreshold,
			CircuitTimeout:   cfg.AI.CircuitTimeout,
		},
		m,
	)
	stripeService := services.NewStripeService(cfg.Stripe.SecretKey)

	svc := api.Services{
		Ledger:      ledger,
		Generation:  services.NewGenerationService(ledger, generator, cfg.AI.MaxInputBytes, m),
		Checkout:    services.NewCheckoutService(stripeService, services.NewCheckoutServiceDB(db), ledger, cfg.Stripe.FrontendURL, m),
		Collections: services.NewCollectionService(services.NewCollectionServiceDB(db)),
	}

	var verifier *auth.Verifier
	if cfg.Auth.Disabled {
		log.Warn().Msg("Token verification disabled, callers are identified by the " + auth.DevUserHeader + " header")
	} else {
		verifier, err = auth.NewVerifier(ctx, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.JWKSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize token verifier")
		}
	}
	authMiddleware := auth.AuthMiddleware(verifier, cfg.Auth.Disabled)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(api.RequestLogger(log.Logger), api.Recovery())
	if m != nil {
		r.Use(api.Metrics(m))
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Origins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", api.RequestIDHeader, auth.DevUserHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", api.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, authMiddleware, svc, cfg.Server.Origins())
	api.SetupHealthRoute(r, func(ctx context.Context) error {
		for _, check := range healthChecks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	auth.SetupRoutes(r, authMiddleware, ledger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shut down")
	}
}
