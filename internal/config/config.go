package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/nimasrn/marketplace/pkg/pg"
	"github.com/nimasrn/marketplace/pkg/redis"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every configuration value of the binaries. Only this struct
// is used to read configuration; no package reads the environment directly.
type Config struct {
	AppEnv     string `env:"APP_ENV,default=dev"`
	AppName    string `env:"APP_NAME,default=marketplace"`
	AppDebug   bool   `env:"APP_DEBUG,default=false"`
	UploadsDir string `env:"UPLOADS_DIR,default=./uploads"`

	HttpListenAddr         string        `env:"HTTP_LISTEN_ADDR,default=:5000"`
	HttpServerReadTimeout  time.Duration `env:"HTTP_SERVER_READ_TIMEOUT,default=5s"`
	HttpServerWriteTimeout time.Duration `env:"HTTP_SERVER_WRITE_TIMEOUT,default=5s"`
	HttpRequestTimeout     time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=10s"`
	FleetListenAddr        string        `env:"FLEET_LISTEN_ADDR,default=:5001"`
	MetricsAddr            string        `env:"METRICS_ADDR,default=:9100"`

	DatabaseURL string `env:"DATABASE_URL"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST,default=localhost"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST,default=localhost"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE,default=0"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=marketplace:"`

	PromNamespace string `env:"PROM_NAMESPACE,default=marketplace"`

	LogLevel string `env:"LOG_LEVEL"`
	LogFile  string `env:"LOG_FILE"`

	QueueName              string        `env:"QUEUE_NAME,default=events"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=notifier"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME,default=processor"`
	QueueConsumers         int           `env:"QUEUE_CONSUMERS,default=2"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES,default=5"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=1s"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=10"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ,default=true"`

	// redis | sqs | none
	EventsBackend string `env:"EVENTS_BACKEND,default=redis"`
	AWSRegion     string `env:"AWS_REGION,default=us-east-1"`
	AWSEndpoint   string `env:"AWS_ENDPOINT"`
	SQSQueueURL   string `env:"SQS_QUEUE_URL"`

	NotifyPrimaryURL   string `env:"NOTIFY_PRIMARY_URL"`
	NotifySecondaryURL string `env:"NOTIFY_SECONDARY_URL"`
	ProcessorWorkers   int    `env:"PROCESSOR_WORKERS,default=20"`

	// header | jwt
	AuthMode  string        `env:"AUTH_MODE,default=header"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`

	PinMaxAttempts   int           `env:"PIN_MAX_ATTEMPTS,default=3"`
	PinLockDuration  time.Duration `env:"PIN_LOCK_DURATION,default=15m"`
	PurchaseRetries  int           `env:"PURCHASE_RETRIES,default=3"`
	PurchaseMaxItems int           `env:"PURCHASE_MAX_ITEMS,default=100"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if err = c.Validate(); err != nil {
		return err
	}

	config = c
	return nil
}

// Validate checks combinations that go-env tags cannot express.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case "header":
	case "jwt":
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return errors.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	switch c.EventsBackend {
	case "redis", "none":
	case "sqs":
		if c.SQSQueueURL == "" {
			return errors.New("SQS_QUEUE_URL is required when EVENTS_BACKEND=sqs")
		}
	default:
		return errors.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend)
	}

	if c.PinMaxAttempts <= 0 {
		return errors.New("PIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev"
}

// PostgresRead is the replica connection. DATABASE_URL, when set, serves
// both sides.
func (c *Config) PostgresRead() pg.Config {
	return pg.Config{
		URL:      c.DatabaseURL,
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
	}
}

func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		URL:      c.DatabaseURL,
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
	}
}

func (c *Config) RedisOptions(clientName string) *redis.Options {
	return &redis.Options{
		Addrs:      []string{c.RedisAddr},
		ClientName: clientName,
		DB:         c.RedisDatabase,
		Username:   c.RedisUsername,
		Password:   c.RedisPassword,
	}
}

func (c *Config) LoggerOptions() logger.Options {
	env := "development"
	if !c.IsDev() {
		env = "production"
	}
	return logger.Options{Env: env, Level: c.LogLevel, File: c.LogFile}
}

// Set replaces the loaded configuration. Used by tests and tools that build Config by hand.
func Set(c *Config) {
	config = c
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
