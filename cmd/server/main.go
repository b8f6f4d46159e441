package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/iudanet/rentspace/internal/config"
	"github.com/iudanet/rentspace/internal/crypto"
	"github.com/iudanet/rentspace/internal/mailer"
	"github.com/iudanet/rentspace/internal/models"
	"github.com/iudanet/rentspace/internal/server/handlers"
	"github.com/iudanet/rentspace/internal/server/jwt"
	"github.com/iudanet/rentspace/internal/server/otpguard"
	"github.com/iudanet/rentspace/internal/server/router"
	"github.com/iudanet/rentspace/internal/server/session"
	"github.com/iudanet/rentspace/internal/server/storage"
	"github.com/iudanet/rentspace/internal/server/storage/mongo"
	"github.com/iudanet/rentspace/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg := config.MustLoad(*configPath)
	logger := setupLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting rentspace server",
		slog.String("version", Version),
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.HTTP.Addr()))

	passwordKey, err := crypto.DeriveKey(cfg.Auth.CryptoSecret, "password")
	if err != nil {
		return fmt.Errorf("failed to derive password key: %w", err)
	}
	otpKey, err := crypto.DeriveKey(cfg.Auth.CryptoSecret, "otp")
	if err != nil {
		return fmt.Errorf("failed to derive otp key: %w", err)
	}

	db, err := sqlite.New(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open sqlite: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close sqlite", slog.Any("error", err))
		}
	}()

	deps := map[string]handlers.Pinger{"sqlite": db}

	var users, admins storage.CredentialStore
	switch cfg.Storage.CredentialsDriver {
	case config.DriverMongo:
		mdb, err := mongo.New(ctx, cfg.Storage.MongoURL)
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		defer func() {
			if err := mdb.Close(context.Background()); err != nil {
				logger.Error("failed to close mongo", slog.Any("error", err))
			}
		}()
		users, admins = mdb.Credentials(models.KindUser), mdb.Credentials(models.KindAdmin)
		deps["mongo"] = mdb
	default:
		users, admins = db.Credentials(models.KindUser), db.Credentials(models.KindAdmin)
	}
	logger.Info("credentials storage ready", slog.String("driver", cfg.Storage.CredentialsDriver))

	guard, closeGuard, err := setupGuard(ctx, cfg, logger, deps)
	if err != nil {
		return err
	}
	defer closeGuard()

	if err := handlers.BootstrapAdmin(ctx, logger, admins, passwordKey,
		cfg.BootstrapAdmin.Name, cfg.BootstrapAdmin.Email, cfg.BootstrapAdmin.Password); err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	codec, err := jwt.NewCodec([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	sessions, err := session.NewManager(codec, map[models.PrincipalKind]storage.PrincipalStore{
		models.KindUser:  users,
		models.KindAdmin: admins,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	if err := prometheus.Register(session.NewLiveSessionsCollector(map[models.PrincipalKind]session.TokenCounter{
		models.KindUser:  users,
		models.KindAdmin: admins,
	}, logger)); err != nil {
		return fmt.Errorf("failed to register session collector: %w", err)
	}

	m, err := setupMailer(cfg.Mail, logger)
	if err != nil {
		return err
	}
	accountCfg := handlers.AccountConfig{
		PasswordKey:   passwordKey,
		OTPKey:        otpKey,
		OTPTTL:        cfg.OTP.TTL,
		OTPDigits:     cfg.OTP.Digits,
		SecureCookies: cfg.Auth.SecureCookies,
	}
	userAccount := handlers.NewAccountHandler(logger, models.KindUser, users, sessions, guard, m, accountCfg)
	adminAccount := handlers.NewAccountHandler(logger, models.KindAdmin, admins, sessions, guard, m, accountCfg)

	handler := router.New(logger, sessions, router.Handlers{
		User:      handlers.NewUserHandler(userAccount, db, db),
		Admin:     handlers.NewAdminHandler(adminAccount, users),
		Property:  handlers.NewPropertyHandler(logger, db, db),
		Favourite: handlers.NewFavouriteHandler(logger, db),
		Review:    handlers.NewReviewHandler(logger, db, db),
		Support:   handlers.NewSupportHandler(logger, db, m),
		Chat:      handlers.NewChatHandler(logger, db, users),
		Content:   handlers.NewContentHandler(logger, db, db),
		Health:    handlers.NewHealthHandler(logger, Version, deps),
	}, router.Options{
		CORSOrigins:     cfg.CORS.AllowedOrigins,
		RateLimit:       cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// setupGuard подключает Redis для защиты OTP; без адреса работает in-memory вариант,
// который годится только для одного экземпляра сервера
func setupGuard(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps map[string]handlers.Pinger) (otpguard.Guard, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("redis is not configured, using in-memory otp guard")
		return otpguard.NewMemoryGuard(cfg.OTP.MaxAttempts, cfg.OTP.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	deps["redis"] = handlers.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis", slog.Any("error", err))
		}
	}

	return otpguard.NewRedisGuard(client, cfg.OTP.MaxAttempts, cfg.OTP.TTL), closeFn, nil
}

// setupMailer выбирает SMTP при заданном mail.host, иначе письма пишутся в лог.
func setupMailer(cfg config.MailConfig, logger *slog.Logger) (mailer.Mailer, error) {
	if !cfg.Enabled() {
		logger.Warn("SMTP is not configured, mail will be written to the log")
		return mailer.NewLogMailer(logger), nil
	}

	m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
		StartTLS: cfg.TLS == config.MailTLSStartTLS,
		Timeout:  cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp mailer: %w", err)
	}
	logger.Info("SMTP mailer configured", slog.String("host", cfg.Host), slog.Int("port", cfg.Port))
	return m, nil
}

func setupLogger(env string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case envLocal:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envProd:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return slog.New(handler)
}

func printVersion() {
	fmt.Printf("Rentspace Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
