package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP           HTTP
		Log            Log
		PG             PG
		S3             S3
		Upload         Upload
		OutboxRelay    OutboxRelay
		Kafka          Kafka
		DeleteConsumer DeleteConsumer
		Swagger        Swagger
	}

	HTTP struct {
		Port           string `env:"HTTP_PORT,required"`
		UsePreforkMode bool   `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		BodyLimit      int    `env:"HTTP_BODY_LIMIT" envDefault:"52428800"` // 50 MB, large originals are compressed down
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	// S3 is the optional off-site mirror of the upload directory.
	S3 struct {
		Enabled        bool          `env:"S3_ENABLED" envDefault:"false"`
		Endpoint       string        `env:"S3_ENDPOINT"`
		AccessKey      string        `env:"S3_ACCESS_KEY"`
		SecretKey      string        `env:"S3_SECRET_KEY"`
		Bucket         string        `env:"S3_BUCKET"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Upload struct {
		Dir              string `env:"UPLOAD_DIR" envDefault:"./uploads"`
		MaxWidth         int    `env:"UPLOAD_MAX_WIDTH" envDefault:"1600"`
		MaxHeight        int    `env:"UPLOAD_MAX_HEIGHT" envDefault:"1600"`
		Quality          int    `env:"UPLOAD_QUALITY" envDefault:"80"`
		ThumbnailWidth   int    `env:"UPLOAD_THUMBNAIL_WIDTH" envDefault:"500"`
		ThumbnailQuality int    `env:"UPLOAD_THUMBNAIL_QUALITY" envDefault:"75"`
	}

	Kafka struct {
		Brokers     []string `env:"KAFKA_BROKERS,required"`
		GroupID     string   `env:"KAFKA_GROUP_ID,required"`
		EventsTopic string   `env:"KAFKA_EVENTS_TOPIC,required"`
		DeleteTopic string   `env:"KAFKA_DELETE_TOPIC,required"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	DeleteConsumer struct {
		CommitTimeout   time.Duration `env:"DELETE_CONSUMER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"DELETE_CONSUMER_PROCESS_TIMEOUT" envDefault:"10s"`
		ShutdownTimeout time.Duration `env:"DELETE_CONSUMER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Workers         int           `env:"DELETE_CONSUMER_WORKERS" envDefault:"2"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
