package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maiolini/sitecafe/internal/config"
	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/Maiolini/sitecafe/internal/handler"
	"github.com/Maiolini/sitecafe/internal/infra/cache"
	"github.com/Maiolini/sitecafe/internal/infra/mail"
	"github.com/Maiolini/sitecafe/internal/infra/observability"
	"github.com/Maiolini/sitecafe/internal/infra/resilience"
	"github.com/Maiolini/sitecafe/internal/infra/sqlite"
	"github.com/Maiolini/sitecafe/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_path", cfg.DBPath),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "sitecafe")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage ---
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database ready", zap.String("path", cfg.DBPath))

	userStore := sqlite.NewUserStore(db)
	clienteStore := sqlite.NewClienteStore(db)
	fornecedorStore := sqlite.NewFornecedorStore(db)
	pedidoStore := sqlite.NewPedidoStore(db)
	cashbackStore := sqlite.NewCashbackStore(db)

	// --- Mail ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	mailCB := resilience.NewCircuitBreaker("mail")
	mailer := mail.NewResilient(
		mail.NewLogMailer(mail.Config{
			FromName: cfg.MailFromName,
			FromAddr: cfg.MailFromAddr,
			BaseURL:  cfg.BaseURL,
		}, logger),
		resilienceCfg,
		mailCB,
		metrics,
		logger,
	)

	// --- Cache ---
	beneficiosCache := cache.New[[]domain.BeneficioDisponivel](cfg.CacheTTL)

	// --- Services ---
	authSvc := service.NewAuthService(userStore, clienteStore, fornecedorStore, mailer, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	clienteSvc := service.NewClienteService(clienteStore, pedidoStore, cashbackStore, fornecedorStore, beneficiosCache, metrics, logger)
	fornecedorSvc := service.NewFornecedorService(fornecedorStore, clienteStore, beneficiosCache, logger)
	adminSvc := service.NewAdminService(userStore, clienteStore, pedidoStore, authSvc, metrics, logger)

	// --- Admin bootstrap ---
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		seedAdmin(adminSvc, cfg, logger)
	}

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:       authSvc,
		Cliente:    clienteSvc,
		Fornecedor: fornecedorSvc,
		Admin:      adminSvc,
	}, db, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// seedAdmin creates the bootstrap admin account when it does not exist yet.
func seedAdmin(adminSvc *service.AdminService, cfg *config.Config, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := adminSvc.CriarAdmin(ctx, &domain.CriarAdminRequest{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Nome:     cfg.AdminNome,
	})
	if err != nil {
		var conflict *domain.ErrConflict
		if errors.As(err, &conflict) {
			logger.Debug("admin account already exists", zap.String("email", cfg.AdminEmail))
			return
		}
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}
	logger.Info("admin account created", zap.String("email", cfg.AdminEmail))
}
