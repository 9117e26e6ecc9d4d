package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/layer-3/todo/adapters/events"
	"github.com/layer-3/todo/adapters/hasher"
	"github.com/layer-3/todo/adapters/store"
	"github.com/layer-3/todo/adapters/tokenizer"
	"github.com/layer-3/todo/config"
	"github.com/layer-3/todo/logging"
	"github.com/layer-3/todo/metrics"
	"github.com/layer-3/todo/ports"
	"github.com/layer-3/todo/service"
	todohttp "github.com/layer-3/todo/transport/http"
)

const shutdownTimeout = 10 * time.Second

type dataStore interface {
	ports.UserStore
	ports.TaskStore
	io.Closer
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// One client serves both the store and the event stream
	redisClient, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer closeIgnoringClosed(logger, "redis client", redisClient)
	}

	db, err := openStore(ctx, cfg, redisClient)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	defer closeIgnoringClosed(logger, "store", db)

	publisher, err := openPublisher(cfg, redisClient)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	eventPub := events.NewWatermillPublisher(publisher)
	defer closeIgnoringClosed(logger, "event publisher", eventPub)

	tok, err := tokenizer.NewJWTTokenizer(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to create tokenizer: %w", err)
	}

	m := metrics.New()
	authService := service.NewAuthService(db, hasher.NewBcryptHasher(cfg.BcryptCost), tok, eventPub, m, logging.Component(logger, "auth"))
	taskService := service.NewTaskService(db, eventPub, m, logging.Component(logger, "tasks"))

	gin.SetMode(gin.ReleaseMode)
	router := todohttp.SetupRouter(todohttp.RouterConfig{
		AuthService: authService,
		TaskService: taskService,
		Metrics:     m,
		Logger:      logging.Component(logger, "http"),
		CORSOrigin:  cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr, "store", cfg.StoreDriver, "redis_events", cfg.RedisEvents())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openRedis connects to REDIS_URL when the store or the event stream needs it
func openRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.StoreDriver != config.DriverRedis && !cfg.RedisEvents() {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach Redis: %w", err)
	}

	return client, nil
}

func openStore(ctx context.Context, cfg config.Config, redisClient *redis.Client) (dataStore, error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		return store.NewRedisStore(redisClient), nil
	case config.DriverPostgres:
		return store.OpenPostgresStore(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		return store.OpenSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return store.NewMemoryStore(), nil
	}
}

func openPublisher(cfg config.Config, redisClient *redis.Client) (message.Publisher, error) {
	logger := watermill.NewStdLogger(false, false)

	if !cfg.RedisEvents() {
		return gochannel.NewGoChannel(gochannel.Config{}, logger), nil
	}

	return redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
}

// closeIgnoringClosed closes c; the shared Redis client may already be closed by its other owner
func closeIgnoringClosed(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		logger.Warn("failed to close "+name, "error", err)
	}
}
