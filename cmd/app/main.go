package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comuna-app/feed-service/internal/config"
	"github.com/comuna-app/feed-service/internal/handler"
	"github.com/comuna-app/feed-service/internal/rabbitmq"
	"github.com/comuna-app/feed-service/internal/repository"
	"github.com/comuna-app/feed-service/internal/repository/postgres"
	"github.com/comuna-app/feed-service/internal/server"
	"github.com/comuna-app/feed-service/internal/service"
	"github.com/comuna-app/feed-service/internal/storage/minio"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := config.LoadEnv(); err != nil {
		logger.Sugar().Panicf("failed to load environment variables: %s", err.Error())
	}

	if err := config.InitConfig("."); err != nil {
		logger.Sugar().Panicf("failed to initialize yaml config: %s", err.Error())
	}

	feedConfig := config.FeedFromViper()
	if err := feedConfig.Validate(); err != nil {
		logger.Sugar().Panicf("invalid feed config: %s", err.Error())
	}

	db, err := postgres.DB(ctx, config.DBFromEnv())
	if err != nil {
		logger.Sugar().Panicf("failed to connect to postgres: %s", err.Error())
	}
	defer db.Close()
	if err := db.Ping(ctx); err != nil {
		logger.Sugar().Panicf("failed to ping postgres: %s", err.Error())
	}
	logger.Info("Successfully connected to PostgreSQL")

	redisOptions := &redis.Options{
		Addr: os.Getenv("REDIS_ADDR"),
	}
	rdb := redis.NewClient(redisOptions)
	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		logger.Sugar().Panicf("failed to ping redis: %s", err.Error())
	}
	logger.Sugar().Infof("Successfully connected to Redis: %s", pong)

	mq, err := rabbitmq.New(os.Getenv("RABBITMQ_CONN_STRING"))
	if err != nil {
		logger.Sugar().Panicf("failed to connect to rabbitmq: %s", err.Error())
	}
	defer mq.Close()
	logger.Info("Successfully connected to RabbitMQ")

	s3Config := config.S3FromEnv()
	if err := s3Config.Validate(); err != nil {
		logger.Sugar().Panicf("invalid s3 config: %s", err.Error())
	}
	mediaStorage, err := minio.New(ctx, s3Config)
	if err != nil {
		logger.Sugar().Panicf("failed to connect to object storage: %s", err.Error())
	}
	logger.Info("Successfully connected to object storage")

	repos := repository.New(db, rdb, logger)
	services := service.New(logger, repos, mq, mediaStorage, feedConfig)
	handlers := handler.New(services, []byte(os.Getenv("ACCESS_SECRET")))

	srv := server.New(config.ServerConfig{
		Port:           viper.GetString("app.port"),
		Handler:        handlers.InitRoutes(),
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    time.Second * 10,
		WriteTimeout:   time.Second * 30,
	})
	go func() {
		if err := srv.Run(); err != nil {
			logger.Sugar().Panicf("failed to run http server: %s", err.Error())
		}
	}()

	services.StartConsumeAll(ctx)

	logger.Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Server shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("failed to shut down http server: %s", err.Error())
	}
}
