package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brocante/brocante-api/internal/config"
	"github.com/brocante/brocante-api/internal/handler"
	"github.com/brocante/brocante-api/internal/media"
	"github.com/brocante/brocante-api/internal/payment"
	"github.com/brocante/brocante-api/internal/repository"
	"github.com/brocante/brocante-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	users, offers, db, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store initialization failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	uploader, mediaDir, err := openMedia(ctx, cfg)
	if err != nil {
		slog.Error("media initialization failed", "driver", cfg.MediaDriver, "error", err)
		os.Exit(1)
	}

	if cfg.StripeAPISecret == "" {
		slog.Warn("STRIPE_API_SECRET is empty, payments will be rejected by the gateway")
	}
	gateway := payment.NewStripeGateway(cfg.StripeAPISecret)

	r := handler.NewRouter(handler.Deps{
		Auth:           service.NewAuthService(users),
		Offers:         service.NewOfferService(offers, uploader, cfg.MediaFolder),
		Payments:       service.NewPaymentService(gateway, cfg.PaymentCurrency),
		CORSOrigins:    cfg.CORSOrigins,
		AuthRateRPS:    cfg.AuthRateRPS,
		AuthRateBurst:  cfg.AuthRateBurst,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MediaDir:       mediaDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver, "media", cfg.MediaDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		return
	}

	slog.Info("server stopped")
}

// openStore returns the user and offer stores for the configured driver.
// The returned *sql.DB is nil for the memory driver.
func openStore(ctx context.Context, cfg config.Config) (service.UserStore, service.OfferStore, *sql.DB, error) {
	if cfg.StorageDriver == config.StorageMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		return store.Users(), store.Offers(), nil, nil
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if cfg.DBMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("applying migrations: %w", err)
		}
	}
	return repository.NewUserRepository(db), repository.NewOfferRepository(db), db, nil
}

// openMedia returns the uploader for the configured driver and, for the
// local driver, the directory to serve.
func openMedia(ctx context.Context, cfg config.Config) (service.MediaUploader, string, error) {
	if cfg.MediaDriver == config.MediaLocal {
		uploader, err := media.NewLocalUploader(cfg.MediaLocalDir, cfg.MediaLocalURL)
		if err != nil {
			return nil, "", err
		}
		return uploader, cfg.MediaLocalDir, nil
	}

	client, err := media.NewS3Client(ctx, media.S3Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return nil, "", err
	}
	return media.NewS3Uploader(client, cfg.S3Bucket, cfg.S3PublicURL), "", nil
}
