package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	IHub     IHubConfig     `mapstructure:"ihub"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigin   string        `mapstructure:"cors_origin"`
}

// UpstreamConfig holds claims platform API configuration
type UpstreamConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Token            string        `mapstructure:"token"`
	Timeout          time.Duration `mapstructure:"timeout"`
	OrganID          int64         `mapstructure:"organ_id"`
	ProductLineCode  string        `mapstructure:"product_line_code"`
	ProductTreeIndex int           `mapstructure:"product_tree_index"`
}

// IHubConfig holds the downstream payment notification endpoint configuration
type IHubConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.cors_origin", "*")

	// Upstream claims platform defaults
	viper.SetDefault("upstream.base_url", "https://us-vault-punetst-gw.insuremo.com/aw/1.0/general-claim")
	viper.SetDefault("upstream.timeout", 30*time.Second)
	viper.SetDefault("upstream.organ_id", int64(1000000000002))
	viper.SetDefault("upstream.product_line_code", "1")
	// Active product is picked by position in the product line tree, per the
	// current business configuration of the tenant.
	viper.SetDefault("upstream.product_tree_index", 2)

	// iHub defaults
	viper.SetDefault("ihub.url", "https://portal-gw.insuremo.com/ebaoeco/1.0/us/sales/travelers/v1/claim/payment/notification")
	viper.SetDefault("ihub.timeout", 30*time.Second)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("upstream.token", "TRAVELERS_CLAIM_SERVER_TOKEN")
	viper.BindEnv("ihub.token", "TRAVELERS_IHUB_TOKEN")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.cors_origin", "CORS_ORIGIN_ALLOWED")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Upstream.Token == "" {
		return fmt.Errorf("upstream.token is required (set TRAVELERS_CLAIM_SERVER_TOKEN)")
	}
	if c.Upstream.ProductTreeIndex < 0 {
		return fmt.Errorf("upstream.product_tree_index must not be negative")
	}
	if c.IHub.URL == "" {
		return fmt.Errorf("ihub.url is required")
	}
	if c.IHub.Token == "" {
		return fmt.Errorf("ihub.token is required (set TRAVELERS_IHUB_TOKEN)")
	}
	return nil
}
