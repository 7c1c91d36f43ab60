// Package config loads service configuration from flags, an optional YAML
// file, a .env file and DOCDATA_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yourorg/docdata-orchestrator/internal/context"
)

// EnvPrefix prefixes every environment variable, e.g. DOCDATA_MERCHANT_PASSWORD.
const EnvPrefix = "DOCDATA"

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// SchemaDir holds request contract files that replace the bundled ones
	// by name, e.g. refund.json.
	SchemaDir string `mapstructure:"schema_dir"`
}

type GatewayConfig struct {
	TestMode     bool          `mapstructure:"test_mode"`
	LiveEndpoint string        `mapstructure:"live_endpoint"`
	TestEndpoint string        `mapstructure:"test_endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type MerchantConfig struct {
	ID             string `mapstructure:"id"`
	Name           string `mapstructure:"name"`
	Password       string `mapstructure:"password"`
	PaymentProfile string `mapstructure:"payment_profile"`
	PaymentDays    int    `mapstructure:"payment_days"`
	Language       string `mapstructure:"language"`
}

type StatusConfig struct {
	PendingMethods       []string `mapstructure:"pending_methods"`
	AcceptShopperPending bool     `mapstructure:"accept_shopper_pending"`
}

type CircuitBreakerConfig struct {
	FailureThreshold  int           `mapstructure:"failure_threshold"`
	OpenTimeout       time.Duration `mapstructure:"open_timeout"`
	HalfOpenSuccesses int           `mapstructure:"half_open_successes"`
}

type JournalConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Config is the whole service configuration.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Gateway        GatewayConfig        `mapstructure:"gateway"`
	Merchant       MerchantConfig       `mapstructure:"merchant"`
	Status         StatusConfig         `mapstructure:"status"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Journal        JournalConfig        `mapstructure:"journal"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.schema_dir", "")
	v.SetDefault("gateway.test_mode", true)
	v.SetDefault("gateway.live_endpoint", "https://secure.docdatapayments.com/ps/services/paymentservice/1_3")
	v.SetDefault("gateway.test_endpoint", "https://testsecure.docdatapayments.com/ps/services/paymentservice/1_3")
	v.SetDefault("gateway.timeout", 10*time.Second)
	v.SetDefault("merchant.id", "default")
	v.SetDefault("merchant.name", "")
	v.SetDefault("merchant.password", "")
	v.SetDefault("merchant.payment_profile", "default")
	v.SetDefault("merchant.payment_days", 7)
	v.SetDefault("merchant.language", "en")
	v.SetDefault("status.pending_methods", []string{"BANK_TRANSFER"})
	v.SetDefault("status.accept_shopper_pending", false)
	v.SetDefault("circuit_breaker.failure_threshold", 5)
	v.SetDefault("circuit_breaker.open_timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.half_open_successes", 2)
	v.SetDefault("journal.dsn", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("logging.development", false)
}

// Load parses args (without the program name) and builds the configuration.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("docdata-orchestrator", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "path to a dotenv file, ignored when missing")
	flags.String("addr", ":8080", "HTTP listen address")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", *envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlag("server.addr", flags.Lookup("addr")); err != nil {
		return nil, err
	}

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", *configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the gateway would refuse anyway.
func (c *Config) Validate() error {
	if c.Merchant.Name == "" {
		return errors.New("config: merchant.name is required")
	}
	if c.Merchant.Password == "" {
		return errors.New("config: merchant.password is required")
	}
	if c.Gateway.Timeout <= 0 {
		return errors.New("config: gateway.timeout must be positive")
	}
	return nil
}

// MerchantConfig returns the merchant account in the form the context package uses.
func (c *Config) MerchantConfig() context.MerchantConfig {
	return context.MerchantConfig{
		ID:             c.Merchant.ID,
		Name:           c.Merchant.Name,
		Password:       c.Merchant.Password,
		TestMode:       c.Gateway.TestMode,
		PaymentProfile: c.Merchant.PaymentProfile,
		PaymentDays:    c.Merchant.PaymentDays,
		Language:       c.Merchant.Language,
		Timeout:        c.Gateway.Timeout,
	}
}
