package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/inventory/internal/config"
	"github.com/Skotchmaster/inventory/internal/es"
	"github.com/Skotchmaster/inventory/internal/httpserver"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/mailer"
	"github.com/Skotchmaster/inventory/internal/mykafka"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/storage"
	"github.com/Skotchmaster/inventory/internal/tokens"
	"github.com/Skotchmaster/inventory/pkg/db"
	loggingmw "github.com/Skotchmaster/inventory/pkg/middleware/logging"
)

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		fatal("config_invalid", err)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		fatal("db_init_failed", err)
	}
	if err := repo.Migrate(gdb); err != nil {
		fatal("db_migrate_failed", err)
	}
	store := repo.New(gdb)

	issuer := tokens.NewIssuer(cfg.JWTSecret)

	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.MailTimeout)
	if !cfg.MailEnabled() {
		logger.Warn("smtp_disabled", "reason", "SMTP_HOST is empty")
	}

	var images service.ImageStore
	if cfg.StorageEnabled() {
		s3, err := storage.NewS3Store(initCtx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			fatal("s3_init_failed", err)
		}
		images = s3
	} else {
		logger.Warn("image_storage_disabled", "reason", "S3_BUCKET is empty")
	}

	var events service.Publisher = mykafka.NopPublisher{}
	var producer *mykafka.Producer
	if cfg.EventsEnabled() {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			fatal("kafka_init_failed", err)
		}
		events = producer
	}

	var index service.Indexer
	if cfg.SearchEnabled() {
		client, err := es.NewClient(initCtx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			fatal("es_init_failed", err)
		}
		index = es.NewProductIndex(client, cfg.ESIndex)
	}

	users := &service.UserService{
		Repo:        store,
		Tokens:      issuer,
		Mailer:      mail,
		Events:      events,
		FrontendURL: cfg.FrontendURL,
		MailFrom:    cfg.MailFrom,
	}
	products := &service.ProductService{
		Repo:        store,
		Images:      images,
		Events:      events,
		Index:       index,
		ImageFolder: cfg.S3Folder,
	}
	contact := &service.ContactService{
		Mailer:       mail,
		SupportEmail: cfg.SupportEmail,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{cfg.FrontendURL},
			AllowCredentials: true,
		}),
	)

	httpserver.Register(e, &httpserver.Deps{
		Users:    &httpserver.UserHTTP{Svc: users},
		Products: &httpserver.ProductHTTP{Svc: products},
		Contact:  &httpserver.ContactHTTP{Svc: contact},
		Tokens:   issuer,
		UserSvc:  users,
		Ready:    func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("http_server_failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("shutdown_complete")
}
