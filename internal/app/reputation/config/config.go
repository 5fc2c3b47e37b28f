package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Kafka          KafkaConfig
	JWT            JWTConfig
	ArticleService ArticleServiceConfig
	UserService    UserServiceConfig
	Cron           CronConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8084)
}

// DatabaseConfig - настройки подключения к PostgreSQL.
// Единственная таблица сервиса - reviews
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // disable/require/verify-full
}

// RedisConfig - настройки Redis для кеша температуры доверия
type RedisConfig struct {
	Host     string
	Port     string
	Password string // Опционально
	DB       int    // Номер БД Redis (0-15)
	ScoreTTL time.Duration
}

// KafkaConfig - настройки Kafka: producer пишет события отзывов,
// consumer слушает события объявлений для инвалидации кеша
type KafkaConfig struct {
	Brokers       []string
	ProducerTopic string // review_events
	ConsumerTopic string // article_events
	ConsumerGroup string
	MinBytes      int
	MaxBytes      int
}

// JWTConfig - настройки для проверки JWT токенов
// Секрет должен совпадать с Auth Service
type JWTConfig struct {
	Secret string
}

// ArticleServiceConfig - URL Article Service (сделки и счетчики)
type ArticleServiceConfig struct {
	URL string
}

// UserServiceConfig - URL User Service (существование и район пользователя)
type UserServiceConfig struct {
	URL string
}

// CronConfig - расписание прогрева кеша температуры
type CronConfig struct {
	Schedule string
}

func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	scoreTTLMinutes, err := strconv.Atoi(getEnv("SCORE_CACHE_TTL_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCORE_CACHE_TTL_MINUTES value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8084"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "reputation_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			ScoreTTL: time.Duration(scoreTTLMinutes) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ProducerTopic: getEnv("KAFKA_PRODUCER_TOPIC", "review_events"),
			ConsumerTopic: getEnv("KAFKA_CONSUMER_TOPIC", "article_events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "reputation-service"),
			MinBytes:      getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes:      getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		ArticleService: ArticleServiceConfig{
			URL: getEnv("ARTICLE_SERVICE_URL", "http://localhost:8081"),
		},
		UserService: UserServiceConfig{
			URL: getEnv("USER_SERVICE_URL", "http://localhost:8080"),
		},
		Cron: CronConfig{
			Schedule: getEnv("CRON_SCHEDULE", "*/30 * * * *"),
		},
	}, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
