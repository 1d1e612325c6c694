package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment   string        `mapstructure:"environment"`
	ServerAddress string        `mapstructure:"server.address"`
	ServerTimeout time.Duration `mapstructure:"server.timeout"`
	LogLevel      string        `mapstructure:"logging.level"`
	Mongo         MongoConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Orders        OrdersConfig
	Rating        RatingConfig
	Azure         AzureConfig
	Elastic       ElasticConfig
	Tracing       TracingConfig
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI            string        `mapstructure:"mongo.uri"`
	Database       string        `mapstructure:"mongo.database"`
	ConnectTimeout time.Duration `mapstructure:"mongo.connect_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string        `mapstructure:"redis.host"`
	Port     int           `mapstructure:"redis.port"`
	Password string        `mapstructure:"redis.password"`
	DB       int           `mapstructure:"redis.db"`
	Enabled  bool          `mapstructure:"redis.enabled"`
	PostsTTL time.Duration `mapstructure:"redis.posts_ttl"`
}

// AuthConfig holds JWT cookie configuration
type AuthConfig struct {
	Secret       string        `mapstructure:"auth.secret"`
	TokenExpiry  time.Duration `mapstructure:"auth.token_expiry"`
	CookieDomain string        `mapstructure:"auth.cookie_domain"`
	CookieSecure bool          `mapstructure:"auth.cookie_secure"`
}

// OrdersConfig holds order state machine policy toggles
type OrdersConfig struct {
	// AllowPickupSkip permits marking an order delivered straight from
	// on-going, without an intervening picked-up transition.
	AllowPickupSkip bool `mapstructure:"orders.allow_pickup_skip"`
}

// RatingConfig holds rating recomputation settings
type RatingConfig struct {
	BatchSize       int           `mapstructure:"rating.batch_size"`
	RefreshInterval time.Duration `mapstructure:"rating.refresh_interval"`
}

// AzureConfig holds Azure Service Bus configuration
type AzureConfig struct {
	QueueConnStr string `mapstructure:"azure.queue_conn_str"`
	QueueName    string `mapstructure:"azure.queue_name"`
}

// ElasticConfig holds Elasticsearch configuration
type ElasticConfig struct {
	URL      string `mapstructure:"elastic.url"`
	Username string `mapstructure:"elastic.username"`
	Password string `mapstructure:"elastic.password"`
	Prefix   string `mapstructure:"elastic.prefix"`
	Index    string `mapstructure:"elastic.index"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	LicenseKey     string `mapstructure:"tracing.license_key"`
	AppName        string `mapstructure:"tracing.app_name"`
	LogEnabled     bool   `mapstructure:"tracing.log_enabled"`
	DistribTracing bool   `mapstructure:"tracing.distributed_tracing_enabled"`
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Setup configuration paths
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Continue even if no config file is found - we'll use ENV vars and defaults
			fmt.Printf("Warning: No configuration file found: %v\n", err)
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Enable environment variables to override config
	v.SetEnvPrefix("HUNGERHEARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("environment", "development")
	v.SetDefault("server.address", "0.0.0.0:8080")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("logging.level", "info")

	// Mongo settings
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "hungerhearts")
	v.SetDefault("mongo.connect_timeout", "10s")

	// Redis settings
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.posts_ttl", "10m")

	// Auth settings
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_expiry", "24h")
	v.SetDefault("auth.cookie_domain", "")
	v.SetDefault("auth.cookie_secure", false)

	// Order policy settings
	v.SetDefault("orders.allow_pickup_skip", true)

	// Rating settings
	v.SetDefault("rating.batch_size", 100)
	v.SetDefault("rating.refresh_interval", "5m")

	// Azure settings
	v.SetDefault("azure.queue_name", "order-events")

	// Elasticsearch settings
	v.SetDefault("elastic.url", "http://localhost:9200")
	v.SetDefault("elastic.prefix", "hungerhearts")
	v.SetDefault("elastic.index", "posts")

	// Tracing settings
	v.SetDefault("tracing.app_name", "HungerHearts")
	v.SetDefault("tracing.log_enabled", true)
	v.SetDefault("tracing.distributed_tracing_enabled", true)
}

// FormatIndex formats an Elasticsearch index name with the configured prefix
func FormatIndex(cfg ElasticConfig, index string) string {
	return cfg.Prefix + "-" + index
}
