// Package server wires configuration, storage, services and the HTTP and
// gRPC listeners into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/dmitrijs2005/orgchat/internal/server/auth"
	"github.com/dmitrijs2005/orgchat/internal/server/config"
	"github.com/dmitrijs2005/orgchat/internal/server/metrics"
	"github.com/dmitrijs2005/orgchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/orgchat/internal/server/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/orgchat/internal/server/grpc"
	hs "github.com/dmitrijs2005/orgchat/internal/server/http"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	tokens        *auth.Manager
	authService   *services.AuthService
	userService   *services.UserService
	notifications *services.NotificationService
	storage       *services.StorageService
	metrics       *metrics.Metrics
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel, c.Environment)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	tokens, err := auth.NewManager(auth.Config{
		Secret:     []byte(c.SecretKey),
		AccessTTL:  c.AccessTokenValidityDuration,
		RefreshTTL: c.RefreshTokenValidityDuration,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("token manager init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		tokens:      tokens,
		authService: services.NewAuthService(db, rm, tokens, auth.NewArgon2Hasher(), services.AuthOptions{
			ResetTTL:   c.ResetTokenValidityDuration,
			Production: c.IsProduction(),
		}, logger),
		userService:   services.NewUserService(db, rm, logger),
		notifications: services.NewNotificationService(db, rm, logger),
		storage: services.NewStorageService(db, rm, services.StorageOptions{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
		}, logger),
		metrics: metrics.New(),
	}, nil
}

// initSignalHandler cancels on SIGINT, SIGTERM or SIGQUIT. The handler is
// unregistered once ctx ends; the returned channel closes at that point.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) <-chan struct{} {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
	return done
}

func (app *App) router() *gin.Engine {
	if app.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return hs.NewRouter(hs.Deps{
		Auth:          app.authService,
		Users:         app.userService,
		Notifications: app.notifications,
		Storage:       app.storage,
		DB:            app.db,
		Logger:        app.logger,
		Metrics:       app.metrics,
	})
}

// Run migrates the schema and serves HTTP and gRPC until a signal arrives or
// either listener fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hs.NewServer(app.config.EndpointAddrHTTP, app.router(), app.logger).Run(ctx)
	})
	g.Go(func() error {
		return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.tokens).Run(ctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// Close releases the database pool and flushes buffered logs.
func (app *App) Close() error {
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return app.db.Close()
}
