package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/trainhub/config"
	repository "github.com/ds124wfegd/trainhub/internal/database/postgres"
	"github.com/ds124wfegd/trainhub/internal/database/realtime"
	"github.com/ds124wfegd/trainhub/internal/identity"
	entityRepository "github.com/ds124wfegd/trainhub/internal/repository"
	"github.com/ds124wfegd/trainhub/internal/service"
	"github.com/ds124wfegd/trainhub/internal/session"
	"github.com/ds124wfegd/trainhub/internal/transport"
	"github.com/ds124wfegd/trainhub/internal/worker"
	"github.com/ds124wfegd/trainhub/pkg/mail"
	"github.com/ds124wfegd/trainhub/pkg/postgres"
	"github.com/ds124wfegd/trainhub/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	// no WriteTimeout: watch streams stay open, other requests are bounded by the timeout middleware
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func setupLogger(cfg *config.LogConfig) {
	if cfg.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func newStore(ctx context.Context, cfg *config.StoreConfig, client *goredis.Client) (realtime.Store, error) {
	switch cfg.Driver {
	case "memory":
		logrus.Warn("using in-memory data store, data is lost on restart")
		return realtime.NewMemoryStore(), nil
	case "redis":
		return realtime.NewRedisStore(ctx, client, cfg.KeyPrefix)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func NewServer(cfg *config.Config) {
	setupLogger(&cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(ctx, db.DB); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logrus.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	store, err := newStore(ctx, &cfg.Store, redisClient)
	if err != nil {
		logrus.Fatalf("Failed to initialize data store: %v", err)
	}

	// Initialize repositories
	repos := entityRepository.NewRepositories(store)
	if err := repos.Start(ctx); err != nil {
		logrus.Fatalf("Failed to subscribe to collections: %v", err)
	}
	defer repos.Stop()

	dashboardService := service.NewDashboardService(repos)

	// Identity provider and mail
	mailer := mail.NewMailer(mail.NewSender(&cfg.Email), cfg.Mail.Subject)
	accounts := repository.NewAccountRepository(db)
	provider := identity.NewProvider(
		accounts,
		identity.NewRedisTokenStore(redisClient, cfg.Store.KeyPrefix),
		mailer,
		identity.Config{
			Secret:            []byte(cfg.Auth.JWTSecret),
			BaseURL:           cfg.Server.BaseURL,
			SessionTTL:        cfg.Auth.SessionTTL,
			ActionCodeTTL:     cfg.Auth.ActionCodeTTL,
			MaxFailedLogins:   cfg.Auth.MaxFailedLogins,
			FailedLoginWindow: cfg.Auth.FailedLoginWindow,
		},
	)
	// Initialize cleanup worker
	cleanupWorker := worker.NewAccountCleanupWorker(accounts, cfg.Auth.CleanupInterval, cfg.Auth.UnverifiedAccountTTL)
	go cleanupWorker.Start(ctx)

	relaySecret := cfg.Mail.RelaySecret
	if relaySecret == "" {
		// клиент и эндпоинт живут в одном процессе
		relaySecret = uuid.NewString()
		logrus.Info("mail.relay_secret is empty, using a generated one")
	}
	relay := mail.NewRelayClient(cfg.Mail.RelayURL, relaySecret, cfg.Mail.RelayTimeout)
	controller := session.NewController(provider, relay, cfg.Server.BaseURL)

	unsubscribe := controller.Subscribe(func(s session.Snapshot) {
		if s.User != nil {
			logrus.WithField("uid", s.User.UID).Debugf("session resolved: %s", s.State)
		}
	})
	defer unsubscribe()

	// Setup HTTP server
	if cfg.Server.Mode == "release" || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := transport.InitRoutes(transport.Handlers{
		Events:     transport.NewEventHandler(repos),
		Trainers:   transport.NewTrainerHandler(repos),
		Partners:   transport.NewPartnerHandler(repos),
		Categories: transport.NewEventCategoryHandler(repos),
		Dashboard:  transport.NewDashboardHandler(dashboardService),
		Auth: transport.NewAuthHandler(controller, provider, transport.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		Mail:       transport.NewMailHandler(mailer, relaySecret),
		Sessions:   controller,
		CookieName: cfg.Auth.CookieName,
		Timeout:    cfg.Server.Timeout,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize routes: %v", err)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("version", cfg.Server.AppVersion).Printf("App Started on %s", cfg.GetServerAddress())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
