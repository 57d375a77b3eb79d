package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimasrn/marketplace/internal/auth"
	"github.com/nimasrn/marketplace/internal/config"
	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/fleetapi"
	"github.com/nimasrn/marketplace/internal/queue"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/internal/services"
	"github.com/nimasrn/marketplace/pkg/pg"
	"github.com/nimasrn/marketplace/pkg/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.Load(envPath()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	cfg := config.Get()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(level)
	}
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppDebug)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed connecting to postgres")
	}
	defer db.Close()

	emitter := events.NewEmitter(publisher(cfg))

	authn, _, err := auth.New(cfg.AuthMode, cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed creating authenticator")
	}

	svc := services.NewFleetService(db,
		repository.NewEmployeeRepository(db),
		repository.NewTruckRepository(db),
		repository.NewTripRepository(db),
		repository.NewLabourRepository(db),
		repository.NewOrderRepository(db),
		emitter,
	)
	router := fleetapi.SetupRouter(svc, authn, log.Logger)

	srv := &http.Server{
		Addr:         cfg.FleetListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Fleet portal started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down fleet portal...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Fleet portal exited")
}

// publisher mirrors the api binary; trip status events go to the same
// transport.
func publisher(cfg *config.Config) events.Publisher {
	switch cfg.EventsBackend {
	case "sqs":
		client, err := events.NewSQSClient(context.Background(), cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed creating SQS client")
		}
		return events.NewSQSPublisher(client, cfg.SQSQueueURL)
	case "redis":
		redisAdap, err := redis.NewRedisAdapter("fleet", cfg.RedisUniversalKeyPrefix, cfg.RedisOptions("fleet"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed connecting to redis")
		}
		q, err := queue.NewQueue(redisAdap, queue.QueueConfig{
			Name:              cfg.QueueName,
			ConsumerGroup:     cfg.QueueConsumerGroup,
			ConsumerName:      cfg.QueueConsumerName,
			MaxRetries:        cfg.QueueMaxRetries,
			VisibilityTimeout: cfg.QueueVisibilityTimeout,
			PollInterval:      cfg.QueuePollInterval,
			BatchSize:         cfg.QueueBatchSize,
			MaxLen:            cfg.QueueMaxLen,
			EnableDLQ:         cfg.QueueEnableDLQ,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed creating queue")
		}
		return events.NewQueuePublisher(q)
	}
	return events.Noop{}
}

func envPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			return strings.TrimPrefix(v, "--env=")
		}
	}
	return ""
}
