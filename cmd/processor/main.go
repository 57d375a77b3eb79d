package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/marketplace/internal/config"
	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/notify"
	"github.com/nimasrn/marketplace/internal/processor"
	"github.com/nimasrn/marketplace/internal/queue"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/nimasrn/marketplace/pkg/prom"
	"github.com/nimasrn/marketplace/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	if err = logger.Configure(cfg.LoggerOptions()); err != nil {
		logger.Error("failed to configure logger", "error", err)
		return
	}
	logger.Info("starting event processor", "version", version, "commit", commit, "date", date, "backend", cfg.EventsBackend)

	if cfg.EventsBackend == "none" {
		logger.Error("EVENTS_BACKEND=none leaves the processor nothing to consume")
		return
	}

	// idempotency state lives in redis for every backend
	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.RedisOptions("processor"))
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}
	defer redisAdap.Close()

	notifyCfg := notify.DefaultConfig()
	notifyCfg.Endpoints = []notify.EndpointConfig{
		{Name: "primary", URL: cfg.NotifyPrimaryURL, Weight: 100},
		{Name: "secondary", URL: cfg.NotifySecondaryURL, Weight: 60},
	}
	client, err := notify.NewClient(notifyCfg)
	if err != nil {
		logger.Error("failed to create notification client", "error", err)
		return
	}
	defer client.Close()

	idempotencyConfig := processor.DefaultIdempotencyConfig()
	idempotencyConfig.MaxRetries = cfg.QueueMaxRetries
	idempotencyService := processor.NewIdempotencyService(redisAdap, idempotencyConfig)

	service := processor.NewService(processor.NewNotificationHandler(client, idempotencyService), cfg.ProcessorWorkers)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.MetricsAddr, "/metrics")

	service.Start()

	switch cfg.EventsBackend {
	case "sqs":
		sqsClient, err := events.NewSQSClient(context.Background(), cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			logger.Error("failed to create sqs client", "error", err)
			service.Stop()
			return
		}
		service.ConsumeSQS(events.NewSQSSource(sqsClient, cfg.SQSQueueURL))
	default:
		for i := 0; i < max(cfg.QueueConsumers, 1); i++ {
			q, err := queue.NewQueue(redisAdap, queue.QueueConfig{
				Name:              cfg.QueueName,
				ConsumerGroup:     cfg.QueueConsumerGroup,
				ConsumerName:      fmt.Sprintf("%s-%s-%d", cfg.QueueConsumerName, hostname, i),
				MaxRetries:        cfg.QueueMaxRetries,
				VisibilityTimeout: cfg.QueueVisibilityTimeout,
				PollInterval:      cfg.QueuePollInterval,
				BatchSize:         cfg.QueueBatchSize,
				MaxLen:            cfg.QueueMaxLen,
				EnableDLQ:         cfg.QueueEnableDLQ,
			})
			if err != nil {
				logger.Error("failed creating queue", "error", err)
				service.Stop()
				return
			}
			if err = service.ConsumeQueue(q); err != nil {
				logger.Error("failed to start consumer", "error", err)
				service.Stop()
				return
			}
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	done := make(chan struct{})
	go func() {
		service.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(processor.ShutdownTimeout * 2):
		logger.Warn("processor did not stop in time")
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
