package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	QueueDriverRabbitMQ = "rabbitmq"
	QueueDriverKafka    = "kafka"
)

type Config struct {
	HTTPAddr string

	MySQLDSN         string
	SQLitePath       string
	MemoryMaxRecords int

	QueueDriver         string
	RabbitMQURL         string
	RabbitExchange      string
	RabbitQueue         string
	RabbitRoutingKey    string
	RabbitConsumerTag   string
	RabbitPublishPrefix string
	KafkaBrokers        []string
	KafkaTopic          string
	KafkaGroupID        string
	KafkaMaxRetries     int

	SSEHeartbeat time.Duration
	HistoryLimit int
	MaxListLimit int

	RetentionTTL      time.Duration
	RetentionInterval time.Duration

	OTELServiceName string
	OTLPEndpoint    string
	OTLPInsecure    bool
	OTELSampleRatio float64

	LogLevel string
	LogFile  string
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:            ":8080",
		MemoryMaxRecords:    10000,
		SSEHeartbeat:        15 * time.Second,
		HistoryLimit:        20,
		MaxListLimit:        100,
		RabbitExchange:      "notifications",
		RabbitQueue:         "notifications.store",
		RabbitRoutingKey:    "notification.*",
		RabbitConsumerTag:   "notistore-consumer",
		RabbitPublishPrefix: "notification",
		KafkaTopic:          "notifications",
		KafkaGroupID:        "notistore",
		KafkaMaxRetries:     3,
		RetentionInterval:   time.Hour,
		OTELServiceName:     "notistore",
		OTLPInsecure:        true,
		OTELSampleRatio:     1,
		LogLevel:            "info",
		LogFile:             "logs/notistore.log",
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}

	cfg.MySQLDSN = os.Getenv("MYSQL_DSN")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	if v := os.Getenv("MEMORY_MAX_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MemoryMaxRecords = n
		}
	}

	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")
	if v := os.Getenv("RABBITMQ_EXCHANGE"); v != "" {
		cfg.RabbitExchange = v
	}
	if v := os.Getenv("RABBITMQ_QUEUE"); v != "" {
		cfg.RabbitQueue = v
	}
	if v := os.Getenv("RABBITMQ_ROUTING_KEY"); v != "" {
		cfg.RabbitRoutingKey = v
	}
	if v := os.Getenv("RABBITMQ_CONSUMER_TAG"); v != "" {
		cfg.RabbitConsumerTag = v
	}
	if v := os.Getenv("RABBITMQ_PUBLISH_PREFIX"); v != "" {
		cfg.RabbitPublishPrefix = v
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
	if v := os.Getenv("KAFKA_GROUP_ID"); v != "" {
		cfg.KafkaGroupID = v
	}
	if v := os.Getenv("KAFKA_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.KafkaMaxRetries = n
		}
	}

	cfg.QueueDriver = strings.ToLower(os.Getenv("QUEUE_DRIVER"))
	if cfg.QueueDriver == "" {
		switch {
		case cfg.RabbitMQURL != "":
			cfg.QueueDriver = QueueDriverRabbitMQ
		case len(cfg.KafkaBrokers) > 0:
			cfg.QueueDriver = QueueDriverKafka
		}
	}

	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		cfg.OTELServiceName = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OTLPInsecure = b
		}
	}

	if v := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.OTELSampleRatio = f
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		cfg.LogFile = v
	}

	if v := os.Getenv("SSE_HEARTBEAT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSEHeartbeat = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := os.Getenv("MAX_LIST_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxListLimit = n
		}
	}

	// Durations accept Go syntax ("72h", "30m").
	if v := os.Getenv("RETENTION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.RetentionTTL = d
		}
	}
	if v := os.Getenv("RETENTION_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RetentionInterval = d
		}
	}

	return cfg
}
