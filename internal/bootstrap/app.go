package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"mvp-foundry/internal/ai"
	"mvp-foundry/internal/app"
	"mvp-foundry/internal/cache"
	"mvp-foundry/internal/config"
	"mvp-foundry/internal/model"
	mysqlClient "mvp-foundry/internal/platform/mysql"
	rabbitmqClient "mvp-foundry/internal/platform/rabbitmq"
	redisClient "mvp-foundry/internal/platform/redis"
	"mvp-foundry/internal/repository"
	"mvp-foundry/internal/store"
	"mvp-foundry/internal/worker"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	ArchiveWorker *worker.ArchiveWorker

	Blueprints *app.BlueprintService
	Auth       *app.AuthService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := NewLogger(cfg)
	slog.SetDefault(logger)

	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// NewLogger builds the process JSON logger; dev runs log at debug level.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("app", cfg.App.Name, "env", cfg.App.Env)
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	if cfg.NeedsMySQL() {
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), mysqlClient.PoolOptions{
			MaxIdleConns: cfg.MySQL.MaxIdleConns,
			MaxOpenConns: cfg.MySQL.MaxOpenConns,
			Debug:        cfg.IsDev(),
		})
		if err != nil {
			return err
		}
		a.MySQL = db
		if err := db.AutoMigrate(&model.KVEntry{}, &model.BlueprintArchive{}); err != nil {
			return fmt.Errorf("auto migrate tables failed: %w", err)
		}
	}

	kv, err := a.openKeyValue(ctx)
	if err != nil {
		return err
	}
	documents := store.NewDocumentStore(kv, cfg.Storage.HistoryCapacity, cfg.Storage.KeyPrefix, a.Logger)

	var (
		publisher app.RecordedPublisher
		archive   app.ArchiveReader
	)
	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.App.Name)
		if err != nil {
			return err
		}
		a.MQConn = conn

		archiveRepo := repository.NewArchiveRepository(a.MySQL)
		a.ArchiveWorker = worker.NewArchiveWorker(conn, archiveRepo, cfg.RabbitMQ.ArchiveQueue, a.Logger)
		if err := a.ArchiveWorker.Start(ctx); err != nil {
			return fmt.Errorf("start archive worker failed: %w", err)
		}
		publisher = rabbitmqClient.NewEventPublisher(conn, cfg.RabbitMQ.ArchiveQueue)
		archive = archiveRepo
	}

	llm := ai.NewOpenAICompatibleClient(time.Duration(cfg.LLM.TimeoutSeconds) * time.Second)
	generator := ai.NewBlueprintGenerator(llm, ai.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})

	a.Blueprints = app.NewBlueprintService(generator, documents, publisher, archive, a.Logger)
	a.Auth = app.NewAuthService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		cfg.Auth.BootstrapKey,
	)

	a.Logger.Info("bootstrap complete",
		"storage", cfg.Storage.Driver,
		"rabbitmq", cfg.RabbitMQ.Enabled,
		"auth", a.Auth.Enabled(),
	)
	return nil
}

func (a *App) openKeyValue(ctx context.Context) (store.KeyValue, error) {
	cfg := a.Config
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return store.NewMemoryKV(), nil
	case config.StorageMySQL:
		return repository.NewKVRepository(a.MySQL), nil
	case config.StorageRedis:
		client, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.Redis = client
		return cache.NewRedisKV(client, time.Duration(cfg.Redis.TTLSeconds)*time.Second), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func (a *App) Close() error {
	var closeErr error
	if a.ArchiveWorker != nil {
		a.ArchiveWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
