package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatbot-backend/internal/ai"
	"chatbot-backend/internal/config"
	"chatbot-backend/internal/model"
	mysqlClient "chatbot-backend/internal/platform/mysql"
	rabbitmqClient "chatbot-backend/internal/platform/rabbitmq"
	redisClient "chatbot-backend/internal/platform/redis"
	"chatbot-backend/internal/repository"
	"chatbot-backend/internal/worker"
)

// App holds every process-wide dependency. The generation adapter is
// constructed once here and injected downstream; nothing reaches for a
// global provider instance.
type App struct {
	Config          *config.Config
	MySQL           *gorm.DB
	Redis           *redis.Client
	MQConn          *amqp.Connection
	Generator       *ai.Adapter
	TurnEventWorker *worker.TurnEventWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Chat{}, &model.Message{}, &model.TurnEvent{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	turnEventRepo := repository.NewTurnEventRepository(mysqlDB)
	turnEventWorker := worker.NewTurnEventWorker(mqConn, turnEventRepo, cfg.RabbitMQ.TurnEventQueue)
	if err := turnEventWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start turn event worker failed: %w", err)
	}

	generator := ai.NewAdapter(ai.New(cfg.AI))

	return &App{
		Config:          cfg,
		MySQL:           mysqlDB,
		Redis:           redisCli,
		MQConn:          mqConn,
		Generator:       generator,
		TurnEventWorker: turnEventWorker,
		StartedAt:       time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.TurnEventWorker != nil {
		a.TurnEventWorker.Close()
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
