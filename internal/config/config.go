package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Telegram TelegramConfig
	Raffle   RaffleConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// KafkaConfig holds Kafka-specific configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	MockBot  bool
}

// RaffleConfig holds raffle engine configuration. The default settings are
// written to the settings collection on first boot only; after that the
// admin endpoints own them.
type RaffleConfig struct {
	CacheTTLSeconds          int
	DefaultParticipantsLimit int
	DefaultBetAmount         int64
	DefaultWinnerPercent     int
	DefaultOrganizerPercent  int
	DefaultMaxDurationHours  int
}

// CacheTTL returns the current-raffle cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Raffle.CacheTTLSeconds) * time.Second
}

// JWTExpiry returns the token lifetime as a duration.
func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiresIn) * time.Second
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("MongoDB.Database", "telegram-raffle")
	viper.SetDefault("Redis.Addr", "localhost:6379")
	viper.SetDefault("Redis.DB", 0)
	viper.SetDefault("Redis.Enabled", true)
	viper.SetDefault("Kafka.Brokers", []string{"localhost:9092"})
	viper.SetDefault("Kafka.Topic", "raffle-events")
	viper.SetDefault("Kafka.Enabled", false)
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Telegram.MockBot", true)
	viper.SetDefault("Raffle.CacheTTLSeconds", 30)
	viper.SetDefault("Raffle.DefaultParticipantsLimit", 10)
	viper.SetDefault("Raffle.DefaultBetAmount", 10)
	viper.SetDefault("Raffle.DefaultWinnerPercent", 70)
	viper.SetDefault("Raffle.DefaultOrganizerPercent", 30)
	viper.SetDefault("Raffle.DefaultMaxDurationHours", 24)
	viper.SetDefault("LogLevel", "info")
}
