package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/templui/filesmanager/internal/config"
	"github.com/templui/filesmanager/internal/db"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/repository/memory"
	"github.com/templui/filesmanager/internal/repository/mongo"
	"github.com/templui/filesmanager/internal/service"
	"github.com/templui/filesmanager/internal/session"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/thumbnail"
	"github.com/templui/filesmanager/internal/worker"
)

// Backends are the infrastructure pieces the services run on.
type Backends struct {
	Store    *repository.Store
	Storage  storage.Storage
	Queue    queue.Queue
	Sessions session.Store
	Redis    *redis.Client // nil when no backend uses Redis
}

type App struct {
	Cfg           *config.Config
	Store         *repository.Store
	Storage       storage.Storage
	Queue         queue.Queue
	Redis         *redis.Client
	AuthService   *service.AuthService
	UserService   *service.UserService
	EmailService  *service.EmailService
	FileService   *service.FileService
	StatusService *service.StatusService
	Worker        *worker.Worker
}

// New connects the backends selected by cfg and wires the services on top of them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	b, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Assemble(cfg, b), nil
}

// Connect opens the backends selected by cfg. On error everything already opened is closed.
func Connect(ctx context.Context, cfg *config.Config) (_ *Backends, err error) {
	b := &Backends{}
	defer func() {
		if err != nil {
			_ = closeBackends(b)
		}
	}()

	b.Store, err = openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.UsesRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		b.Redis = redis.NewClient(opts)
		if err := b.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		slog.Info("redis connected", "addr", opts.Addr)
	}

	b.Storage, err = storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Sessions
	switch cfg.SessionBackend {
	case "jwt":
		b.Sessions = session.NewJWTStore(cfg.JWTSecret)
	default:
		b.Sessions = session.NewRedisStore(b.Redis)
	}
	if cfg.SessionCacheSize > 0 && cfg.SessionCacheTTL > 0 {
		b.Sessions = session.NewCachedStore(b.Sessions, cfg.SessionCacheSize, cfg.SessionCacheTTL)
	}

	// Jobs
	opts := queue.Options{
		Concurrency: cfg.WorkerConcurrency,
		MaxAttempts: cfg.JobMaxAttempts,
		RetryDelay:  cfg.JobRetryDelay,
	}
	switch cfg.QueueBackend {
	case "memory":
		b.Queue = queue.NewMemoryQueue(opts)
	default:
		b.Queue = queue.NewRedisQueue(b.Redis, opts)
	}

	return b, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		slog.Warn("using in-memory metadata store, records are lost on restart")
		return memory.NewStore(), nil
	case "mongo":
		client, err := mongo.NewClient(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		store, err := mongo.NewStore(ctx, client, cfg.DBDatabase)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		slog.Info("database connected", "driver", "mongo", "database", cfg.DBDatabase)
		return store, nil
	default:
		database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(database.DB, cfg.DBDriver); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repository.NewSQLStore(database), nil
	}
}

// Assemble wires the services on top of already opened backends.
func Assemble(cfg *config.Config, b *Backends) *App {
	emailService := service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.IsDevelopment())
	fileService := service.NewFileService(b.Store.Files, b.Storage, b.Queue)
	userService := service.NewUserService(b.Store.Users, b.Queue)
	authService := service.NewAuthService(b.Sessions, b.Store.Users)

	checks := map[string]service.HealthCheck{}
	if b.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return b.Redis.Ping(ctx).Err()
		}
	}
	statusService := service.NewStatusService(b.Store, checks)

	w := worker.New(b.Store.Files, b.Store.Users, thumbnail.NewGenerator(b.Storage), emailService)

	return &App{
		Cfg:           cfg,
		Store:         b.Store,
		Storage:       b.Storage,
		Queue:         b.Queue,
		Redis:         b.Redis,
		AuthService:   authService,
		UserService:   userService,
		EmailService:  emailService,
		FileService:   fileService,
		StatusService: statusService,
		Worker:        w,
	}
}

// RunWorker consumes the job queues until ctx is done.
func (a *App) RunWorker(ctx context.Context) error {
	a.Worker.Register(a.Queue)
	return a.Queue.Run(ctx)
}

func (a *App) Close() error {
	return closeBackends(&Backends{Store: a.Store, Queue: a.Queue, Redis: a.Redis})
}

func closeBackends(b *Backends) error {
	var errs []error
	if b.Queue != nil {
		errs = append(errs, b.Queue.Close())
	}
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	if b.Store != nil && b.Store.Close != nil {
		errs = append(errs, b.Store.Close())
	}
	return errors.Join(errs...)
}
