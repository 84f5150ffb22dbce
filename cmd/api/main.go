package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/tripsplit/docs"
	"github.com/fkhayef/tripsplit/internal/activity"
	"github.com/fkhayef/tripsplit/internal/balance"
	"github.com/fkhayef/tripsplit/internal/budget"
	"github.com/fkhayef/tripsplit/internal/config"
	"github.com/fkhayef/tripsplit/internal/database"
	"github.com/fkhayef/tripsplit/internal/expense"
	"github.com/fkhayef/tripsplit/internal/logger"
	"github.com/fkhayef/tripsplit/internal/metrics"
	"github.com/fkhayef/tripsplit/internal/realtime"
	"github.com/fkhayef/tripsplit/internal/settlement"
	"github.com/fkhayef/tripsplit/internal/trip"
	mw "github.com/fkhayef/tripsplit/pkg/middleware"
	"github.com/fkhayef/tripsplit/pkg/response"
)

// @title                      TripSplit API
// @version                    1.0
// @description                Shared trip expenses, split calculation and member balances.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresConnection(ctx, cfg.DatabaseURL, database.DefaultOptions)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
	logger.Log.Info().Strs("applied", applied).Msg("Connected to database")

	m := metrics.New()

	// Activity log
	activityService := activity.NewService(activity.NewRepository(db), logger.With("activity"), m)
	activityHandler := activity.NewHandler(activityService)

	// Trips and members
	tripService := trip.NewService(trip.NewRepository(db), activityService, cfg.DefaultCurrency)
	tripHandler := trip.NewHandler(tripService)

	// Balances read straight from the expense and settlement repositories
	expenseRepo := expense.NewRepository(db)
	settlementRepo := settlement.NewRepository(db)
	balanceService := balance.NewService(expenseRepo, settlementRepo, logger.With("balance"), m)
	balanceHandler := balance.NewHandler(balanceService)
	budgetHandler := budget.NewHandler(budget.NewService(tripService, expenseRepo))

	// Realtime sync
	hub := realtime.NewHub(m)
	publisher := realtime.NewPublisher(hub, balanceService, logger.With("realtime"))
	realtimeHandler := realtime.NewHandler(hub, cfg.AllowedOrigins)

	// Expenses and settlements notify the publisher after every write
	expenseService := expense.NewService(expenseRepo, tripService, activityService, publisher, m, expense.Settings{
		StrictSplits:    cfg.SplitStrict,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	expenseHandler := expense.NewHandler(expenseService)

	settlementService := settlement.NewService(settlementRepo, tripService, activityService, publisher, cfg.DefaultCurrency)
	settlementHandler := settlement.NewHandler(settlementService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger.With("http"), m))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, mw.TestUserHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", health(db))
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	auth := mw.AuthMiddleware([]byte(cfg.JWTSecret))
	if cfg.DevAuth() {
		logger.Log.Warn().Msg("AUTH_MODE=dev: trusting the " + mw.TestUserHeader + " header")
		auth = mw.TestUserMiddleware
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth)
		r.Mount("/trips", tripHandler.Routes(func(r chi.Router) {
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/settlements", settlementHandler.Routes())
			r.Mount("/balances", balanceHandler.Routes())
			r.Mount("/budget", budgetHandler.Routes())
			r.Mount("/activity", activityHandler.Routes())
			r.Mount("/ws", realtimeHandler.Routes())
		}))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server shutdown failed")
	}
	hub.Close()
	publisher.Wait()
	activityService.Wait()

	logger.Log.Info().Msg("Server stopped")
}

func health(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("health check failed")
			response.ServiceUnavailable(w, "database unavailable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
