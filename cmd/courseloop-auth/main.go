package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/courseloop/courseloop-auth/internal/config"
	httpserver "github.com/courseloop/courseloop-auth/internal/http"
	"github.com/courseloop/courseloop-auth/internal/notification"
	"github.com/courseloop/courseloop-auth/pkg/auth"
	"github.com/courseloop/courseloop-auth/pkg/repository"
	"github.com/courseloop/courseloop-auth/pkg/session"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to redis")

	// Repositories
	identitiesRepo := repository.NewIdentitiesRepository(db)
	verificationTokensRepo := repository.NewVerificationTokensRepository(db)
	confirmationsRepo := repository.NewConfirmationsRepository(db)
	codeStore := repository.NewTwoFactorCodeStore(redisClient, "2fa", cfg.TwoFactorRetention)

	// Authenticator-app second factor is optional; it needs the secret
	// decryption key.
	var secretsRepo auth.AuthenticatorSecretStore
	var totpKey []byte
	if cfg.TOTPEncryptionKey != "" {
		totpKey, err = hex.DecodeString(cfg.TOTPEncryptionKey)
		if err != nil || len(totpKey) != 32 {
			logger.Error("TOTP_ENCRYPTION_KEY must be 64-char hex (32 bytes)")
			os.Exit(1)
		}
		secretsRepo = repository.NewAuthenticatorSecretsRepository(db)
		logger.Info("authenticator-app second factor enabled")
	}

	// Services
	verificationService := auth.NewVerificationService(auth.VerificationConfig{
		TokenTTL: cfg.VerificationTokenTTL,
	}, verificationTokensRepo)

	twoFactorService := auth.NewTwoFactorService(auth.TwoFactorConfig{
		CodeTTL:       cfg.TwoFactorCodeTTL,
		EncryptionKey: totpKey,
	}, codeStore, secretsRepo)

	if !cfg.HasSMTP() {
		logger.Warn("SMTP not configured; verification and two-factor mail will fail delivery")
	}
	emailService := notification.NewEmailService(notification.EmailConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		User:       cfg.SMTPUser,
		Password:   cfg.SMTPPassword,
		From:       cfg.SMTPFrom,
		FromName:   cfg.SMTPFromName,
		AppBaseURL: cfg.AppBaseURL,
	})

	sessionService := session.NewService(session.Config{
		JWTSecret:      []byte(cfg.JWTSecret),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}, identitiesRepo, confirmationsRepo)

	loginService := auth.NewLoginService(auth.LoginConfig{
		DefaultRedirect: cfg.DefaultLoginRedirect,
	}, logger, identitiesRepo, verificationService, twoFactorService, confirmationsRepo, emailService, sessionService)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:           logger,
		LoginFlow:        loginService,
		TokenConsumer:    verificationService,
		IdentityVerifier: identitiesRepo,
		AccessTokenTTL:   cfg.AccessTokenTTL,
		RateLimit:        cfg.RateLimit,
		SecurityHeaders:  cfg.SecurityHeaders,
		MaxBodySize:      cfg.MaxRequestBodySize,
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
