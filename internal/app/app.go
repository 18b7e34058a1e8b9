package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"community-grocery-go/internal/auth"
	"community-grocery-go/internal/config"
	"community-grocery-go/internal/db"
	articledomain "community-grocery-go/internal/domain/article"
	communitydomain "community-grocery-go/internal/domain/community"
	orderdomain "community-grocery-go/internal/domain/order"
	userdomain "community-grocery-go/internal/domain/user"
	"community-grocery-go/internal/repository/inmemory"
	kafkarepo "community-grocery-go/internal/repository/kafka"
	articlerepo "community-grocery-go/internal/repository/postgres/article"
	communityrepo "community-grocery-go/internal/repository/postgres/community"
	orderrepo "community-grocery-go/internal/repository/postgres/order"
	userrepo "community-grocery-go/internal/repository/postgres/user"
	redisrepo "community-grocery-go/internal/repository/redis"
	"community-grocery-go/internal/transport/httpserver"
	"community-grocery-go/internal/transport/httpserver/handler"
	authmw "community-grocery-go/internal/transport/httpserver/middleware"
	"community-grocery-go/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	redis      *redis.Client
	publisher  *kafkarepo.EventPublisher
	log        logger.Logger
}

type repositories struct {
	communities communitydomain.Repository
	articles    articledomain.Repository
	orders      orderdomain.Repository
	users       userdomain.Repository
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(context.Background(), cfg, log)
}

// NewWithConfig wires storage, cache and event publishing for cfg. Resources
// opened before a failure are released.
func NewWithConfig(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	repos, err := a.openStorage(cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	cache, err := a.openCache(ctx, cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := []communitydomain.Option{
		communitydomain.WithLogger(log),
		communitydomain.WithVersionRetries(cfg.Community.VersionRetries),
	}
	if cache != nil {
		opts = append(opts, communitydomain.WithCache(cache, cfg.Cache.TTL))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		log.Info("app: initializing kafka publisher", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		a.publisher = kafkarepo.NewEventPublisher(cfg.Kafka)
		opts = append(opts, communitydomain.WithPublisher(a.publisher))
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users := userdomain.NewService(repos.users, tokens)
	handlers := handler.New(
		communitydomain.NewService(repos.communities, opts...),
		articledomain.NewService(repos.articles),
		orderdomain.NewService(repos.orders),
		users,
		log,
	)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, authmw.NewJWTAuth(cfg.Auth, tokens, users, log), log)

	a.httpServer = httpserver.New(cfg, router)
	return a, nil
}

func (a *App) openStorage(cfg config.Config, log logger.Logger) (repositories, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMemory:
		log.Warn("app: using in-memory storage, data is lost on restart")
		store := inmemory.NewStore()
		return repositories{
			communities: store.Communities(),
			articles:    store.Articles(),
			orders:      store.Orders(),
			users:       store.Users(),
		}, nil
	case config.StorageBackendPostgres, "":
		log.Info("app: initializing database")
		dbConn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return repositories{}, err
		}
		a.db = dbConn
		if err := db.Migrate(dbConn, log); err != nil {
			return repositories{}, fmt.Errorf("migrate: %w", err)
		}
		return repositories{
			communities: communityrepo.NewPostgres(dbConn),
			articles:    articlerepo.NewPostgres(dbConn),
			orders:      orderrepo.NewPostgres(dbConn),
			users:       userrepo.NewPostgres(dbConn),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (a *App) openCache(ctx context.Context, cfg config.Config, log logger.Logger) (communitydomain.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		log.Info("app: initializing redis cache", "addr", cfg.Cache.RedisAddr)
		client, err := redisrepo.NewClient(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return redisrepo.NewCommunityCache(client, log), nil
	case config.CacheBackendMemory:
		return inmemory.NewInMemoryCommunityCache(), nil
	case config.CacheBackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := db.Close(a.db); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
