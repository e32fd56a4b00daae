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
	"go.uber.org/zap"

	"github.com/georgemunganga/needsport-pos/internal/modules/auth"
	"github.com/georgemunganga/needsport-pos/internal/modules/catalog"
	"github.com/georgemunganga/needsport-pos/internal/modules/pos"
	"github.com/georgemunganga/needsport-pos/internal/modules/user"
	"github.com/georgemunganga/needsport-pos/internal/platform/cache"
	"github.com/georgemunganga/needsport-pos/internal/platform/config"
	"github.com/georgemunganga/needsport-pos/internal/platform/database"
	"github.com/georgemunganga/needsport-pos/internal/platform/logger"
)

func main() {
	cfg, notes, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()
	for _, n := range notes {
		log.Info(n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to the database")

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}

	productCache := catalog.NewNoopCache()
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, product list cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			productCache = catalog.NewRedisCache(rdb, cfg.CatalogTTL)
			log.Info("product list cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CatalogTTL))
		}
	}

	// ── Operators & auth ────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo, 0, log)
	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.JWTTTL, log)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		op, created, err := userService.EnsureUser(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatal("bootstrap operator", zap.Error(err))
		}
		if created {
			log.Info("bootstrap operator created", zap.String("email", op.Email))
		}
	}

	// ── Catalog & POS ───────────────────────────────────────
	catalogService := catalog.NewService(catalog.NewPostgresRepository(db), productCache, log)
	posService := pos.NewService(
		pos.NewPostgresRepository(db),
		catalogService,
		pos.NewPaymentMethods(cfg.PaymentMethods),
		log,
	)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(log))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	auth.NewHandler(authService, log).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		user.NewHandler(userService, log).RegisterRoutes(r)
		catalog.NewHandler(catalogService, log).RegisterRoutes(r)
		pos.NewHandler(posService, log).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("NEEDSPORT POS API starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
