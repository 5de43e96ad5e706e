// Package server wires storage, cache, events and services together and runs
// the HTTP API until the process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/cache"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophsocial/internal/server/rest"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectTimeout = 10 * time.Second
	eventPrefix    = "gophsocial"
)

type closer func(ctx context.Context) error

// openStore connects to MongoDB and prepares the collections.
var openStore = func(ctx context.Context, cfg *config.Config) (repomanager.RepositoryManager, closer, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	rm := repomanager.NewMongoRepositoryManager(client.Database(cfg.MongoDatabase))
	if err := rm.RunMigrations(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	return rm, client.Disconnect, nil
}

// openCache returns the Redis profile cache, or a no-op cache when Redis is
// not configured or unreachable.
var openCache = func(ctx context.Context, cfg *config.Config, log logging.Logger) (cache.ProfileCache, closer) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, nil
	}

	client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn(ctx, "redis unavailable, profile cache disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return cache.Nop{}, nil
	}

	return cache.NewRedisCache(client, cfg.ProfileCacheTTL), func(context.Context) error { return client.Close() }
}

// openEvents returns the NATS publisher, or a no-op one when NATS is not
// configured or unreachable.
var openEvents = func(ctx context.Context, cfg *config.Config, log logging.Logger) events.Publisher {
	if cfg.NatsURL == "" {
		return events.Nop{}
	}

	p, err := events.NewNatsPublisher(cfg.NatsURL, eventPrefix)
	if err != nil {
		log.Warn(ctx, "nats unavailable, events disabled", "url", cfg.NatsURL, "error", err)
		return events.Nop{}
	}
	return p
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	server    *rest.HTTPServer
	publisher events.Publisher
	closers   []closer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)
	ctx := context.Background()

	rm, closeStore, err := openStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger}
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}

	profiles, closeCache := openCache(ctx, c, logger)
	if closeCache != nil {
		app.closers = append(app.closers, closeCache)
	}

	app.publisher = openEvents(ctx, c, logger)

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)

	app.server = rest.NewHTTPServer(c.EndpointAddrHTTP, logger, rest.Services{
		Tokens:   tokens,
		Auth:     services.NewAuthService(rm, tokens, app.publisher, logger),
		Users:    services.NewUserService(rm, profiles, app.publisher, logger),
		Posts:    services.NewPostService(rm, profiles, app.publisher, logger),
		Comments: services.NewCommentService(rm),
		Uploads:  services.NewUploadService(c, logger),
	}, c.MaxUploadSize, c.ShutdownTimeout)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the external connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	timeout := app.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = connectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	app.publisher.Close()
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			app.logger.Error(ctx, "close error", "error", err)
		}
	}
}
