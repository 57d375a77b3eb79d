package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/marketplace/internal/auth"
	"github.com/nimasrn/marketplace/internal/config"
	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/handlers"
	"github.com/nimasrn/marketplace/internal/queue"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/internal/services"
	xhttp "github.com/nimasrn/marketplace/pkg/http"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/nimasrn/marketplace/pkg/pg"
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
	logger.Info("starting marketplace api", "version", version, "commit", commit, "date", date)

	s := xhttp.NewServer(xhttp.DefaultServerOption.WithTimeouts(
		cfg.HttpServerReadTimeout, cfg.HttpServerWriteTimeout, cfg.HttpRequestTimeout))
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.CORSMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), cfg.AppDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}
	defer db.Close()

	publisher, closePublisher, err := createPublisher(cfg)
	if err != nil {
		logger.Error("failed creating event publisher", "error", err)
		return
	}
	defer closePublisher()
	emitter := events.NewEmitter(publisher)

	authn, tokens, err := auth.New(cfg.AuthMode, cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("failed creating authenticator", "error", err)
		return
	}

	// repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	manufacturerRepo := repository.NewManufacturerRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	rechargeRepo := repository.NewRechargeRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	labourRepo := repository.NewLabourRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// services
	userService := services.NewUserService(userRepo)
	approvalService := services.NewApprovalService(db, userRepo, userRepo, agentRepo, manufacturerRepo, employeeRepo, auditRepo, emitter)
	balanceService := services.NewBalanceService(db, userRepo, transactionRepo, rechargeRepo, auditRepo, emitter)
	pinService := services.NewPinService(db, userRepo, auditRepo, emitter,
		services.WithPinPolicy(cfg.PinMaxAttempts, cfg.PinLockDuration))
	productService := services.NewProductService(productRepo, manufacturerRepo)
	manufacturerService := services.NewManufacturerService(db, userRepo, manufacturerRepo, employeeRepo)
	purchaseService := services.NewPurchaseService(db, userRepo, productRepo, transactionRepo, purchaseRepo, emitter,
		services.WithMaxItems(cfg.PurchaseMaxItems),
		services.WithRetries(cfg.PurchaseRetries),
	)
	orderService := services.NewOrderService(db, orderRepo, productRepo, employeeRepo, auditRepo, emitter)
	agentService := services.NewAgentService(userRepo, agentRepo)
	labourService := services.NewLabourService(labourRepo, manufacturerRepo, employeeRepo)
	// header mode has no issuer; admin login then answers 403
	var issuer services.TokenIssuer
	if tokens != nil {
		issuer = tokens
	}
	adminService := services.NewAdminService(db, adminRepo, auditRepo, issuer)

	// handlers
	handlers.ExposeInternalErrors = cfg.IsDev()
	guard := handlers.NewGuard(authn)

	g := s.Router.Group("/api")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(db))
	handlers.RegisterUserRoutes(g, handlers.NewUserHandler(userService, approvalService), guard)
	handlers.RegisterAccountRoutes(g, handlers.NewAccountHandler(balanceService, pinService), guard)
	handlers.RegisterProductRoutes(g, handlers.NewProductHandler(productService))
	handlers.RegisterManufacturerRoutes(g, handlers.NewManufacturerHandler(manufacturerService))
	handlers.RegisterPurchaseRoutes(g, handlers.NewPurchaseHandler(purchaseService), guard)
	handlers.RegisterOrderRoutes(g, handlers.NewOrderHandler(orderService))
	handlers.RegisterAgentRoutes(g, handlers.NewAgentHandler(agentService))
	handlers.RegisterLabourRoutes(g, handlers.NewLabourHandler(labourService))
	handlers.RegisterAdminRoutes(g, handlers.NewAdminHandler(adminService), guard)
	xhttp.ServeStatic(s.Router, "/uploads", cfg.UploadsDir)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go prom.ListenAndServer(cfg.MetricsAddr, "/metrics")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(cfg.HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
			c <- syscall.SIGTERM
		}
	}()

	<-c
	logger.Info("shutting down api")
	if err := s.Shutdown(); err != nil {
		logger.Error("failed to shutdown http-server", "error", err)
	}
}

// createPublisher picks the event transport. The returned func releases it.
func createPublisher(cfg *config.Config) (events.Publisher, func(), error) {
	switch cfg.EventsBackend {
	case "sqs":
		client, err := events.NewSQSClient(context.Background(), cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return nil, nil, err
		}
		return events.NewSQSPublisher(client, cfg.SQSQueueURL), func() {}, nil
	case "redis":
		redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, cfg.RedisOptions("api"))
		if err != nil {
			return nil, nil, err
		}
		q, err := queue.NewQueue(redisAdap, queueConfig(cfg))
		if err != nil {
			redisAdap.Close()
			return nil, nil, err
		}
		return events.NewQueuePublisher(q), func() { redisAdap.Close() }, nil
	}
	return events.Noop{}, func() {}, nil
}

func queueConfig(cfg *config.Config) queue.QueueConfig {
	return queue.QueueConfig{
		Name:              cfg.QueueName,
		ConsumerGroup:     cfg.QueueConsumerGroup,
		ConsumerName:      cfg.QueueConsumerName,
		MaxRetries:        cfg.QueueMaxRetries,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		PollInterval:      cfg.QueuePollInterval,
		BatchSize:         cfg.QueueBatchSize,
		MaxLen:            cfg.QueueMaxLen,
		EnableDLQ:         cfg.QueueEnableDLQ,
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
