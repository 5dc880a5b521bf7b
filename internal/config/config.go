package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

const (
	OWNERSHIP_MODE_APPROXIMATE   = "approximate"
	OWNERSHIP_MODE_AUTHORITATIVE = "authoritative"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables event publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// RedisConfig holds Redis configuration. An empty Addr disables Redis-backed features.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig holds the limit for a single upstream provider
type RateLimitConfig struct {
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxQueueTime      time.Duration `mapstructure:"max_queue_time"`
}

// RateLimiterConfig holds the provider rate limiter configuration
type RateLimiterConfig struct {
	Enabled                 bool                       `mapstructure:"enabled"`
	RedisKeyPrefix          string                     `mapstructure:"redis_key_prefix"`
	MaxWorkers              int                        `mapstructure:"max_workers"`
	MaxQueueSize            int                        `mapstructure:"max_queue_size"`
	EnableLocalFallback     bool                       `mapstructure:"enable_local_fallback"`
	LocalFallbackMultiplier float64                    `mapstructure:"local_fallback_multiplier"`
	Providers               map[string]RateLimitConfig `mapstructure:"providers"`
}

// EthereumConfig holds Ethereum JSON-RPC configuration
type EthereumConfig struct {
	RPCURL       string        `mapstructure:"rpc_url"`
	RPCTimeout   time.Duration `mapstructure:"rpc_timeout"`    // 0 disables the per-call deadline
	LogRangeStep uint64        `mapstructure:"log_range_step"` // 0 queries logs from genesis in one request
	MaxRetries   uint64        `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	MaxBackoff   time.Duration `mapstructure:"max_backoff"`
	// RetryMaxElapsed bounds the total time spent retrying one call
	RetryMaxElapsed time.Duration `mapstructure:"retry_max_elapsed"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds

	CORSOrigins []string `mapstructure:"cors_origins"` // empty allows every origin
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// ContractConfig describes a configured token contract
type ContractConfig struct {
	Name    string `mapstructure:"name"`
	Symbol  string `mapstructure:"symbol"`
	Address string `mapstructure:"address"`
}

// ToDomain converts the configured contract into its domain form
func (c ContractConfig) ToDomain() (domain.TokenContract, error) {
	addr, err := domain.NormalizeAddress(c.Address)
	if err != nil {
		return domain.TokenContract{}, fmt.Errorf("contract %s: %w", c.Name, err)
	}
	return domain.TokenContract{Name: c.Name, Symbol: c.Symbol, Address: addr}, nil
}

// ExchangeConfig holds the fixed configuration of the exchange flow
type ExchangeConfig struct {
	SourceToken   ContractConfig   `mapstructure:"source_token"`
	NftContracts  []ContractConfig `mapstructure:"nft_contracts"`
	AdminWallet   string           `mapstructure:"admin_wallet"`
	OwnershipMode string           `mapstructure:"ownership_mode"`
	GuardTTL      time.Duration    `mapstructure:"guard_ttl"`
	Timeout       time.Duration    `mapstructure:"timeout"`
}

// WalletConfig holds the signer endpoint used to authorize transfers. An empty
// SignerURL leaves the exchange without a wallet provider.
type WalletConfig struct {
	SignerURL string        `mapstructure:"signer_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// ExchangeAPIConfig holds configuration for the exchange API server
type ExchangeAPIConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Redis       RedisConfig       `mapstructure:"redis"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Ethereum    EthereumConfig    `mapstructure:"ethereum"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Exchange    ExchangeConfig    `mapstructure:"exchange"`
	Wallet      WalletConfig      `mapstructure:"wallet"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// LoadExchangeAPIConfig loads configuration for the exchange API server
func LoadExchangeAPIConfig(configFile string, envPath string) (*ExchangeAPIConfig, error) {
	v := configureViper("exchange-api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "TOKEN_EXCHANGE")
	v.SetDefault("nats.subject_prefix", "exchange")
	v.SetDefault("nats.connection_name", "exchange-api")
	v.SetDefault("rate_limiter.enabled", false)
	v.SetDefault("rate_limiter.enable_local_fallback", true)
	v.SetDefault("rate_limiter.local_fallback_multiplier", 0.5)
	v.SetDefault("rate_limiter.providers", map[string]interface{}{
		"ethereum": map[string]interface{}{
			"requests_per_second": 25,
			"burst":               25,
			"max_queue_time":      "30s",
		},
	})
	v.SetDefault("ethereum.rpc_timeout", "0s")
	v.SetDefault("ethereum.log_range_step", 0)
	v.SetDefault("ethereum.max_retries", 3)
	v.SetDefault("ethereum.retry_backoff", "500ms")
	v.SetDefault("ethereum.max_backoff", "5s")
	v.SetDefault("ethereum.retry_max_elapsed", "30s")
	v.SetDefault("worker.pool_size", 8)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("exchange.source_token.name", "Feral File Token")
	v.SetDefault("exchange.source_token.symbol", "FF")
	v.SetDefault("exchange.ownership_mode", OWNERSHIP_MODE_AUTHORITATIVE)
	v.SetDefault("exchange.guard_ttl", "5m")
	v.SetDefault("exchange.timeout", "3m")
	v.SetDefault("wallet.timeout", "2m")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "ff")

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg ExchangeAPIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and formats
func (c *ExchangeAPIConfig) Validate() error {
	if c.Ethereum.RPCURL == "" {
		return errors.New("ethereum.rpc_url is required")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if _, err := c.Exchange.SourceToken.ToDomain(); err != nil {
		return fmt.Errorf("exchange.source_token.address: %w", err)
	}
	for i, nft := range c.Exchange.NftContracts {
		if _, err := nft.ToDomain(); err != nil {
			return fmt.Errorf("exchange.nft_contracts[%d]: %w", i, err)
		}
	}
	if c.Exchange.AdminWallet == "" {
		return errors.New("exchange.admin_wallet is required")
	}
	if _, err := domain.NormalizeAddress(c.Exchange.AdminWallet); err != nil {
		return fmt.Errorf("exchange.admin_wallet: %w", err)
	}
	switch c.Exchange.OwnershipMode {
	case OWNERSHIP_MODE_APPROXIMATE, OWNERSHIP_MODE_AUTHORITATIVE:
	default:
		return fmt.Errorf("exchange.ownership_mode must be %q or %q, got %q",
			OWNERSHIP_MODE_APPROXIMATE, OWNERSHIP_MODE_AUTHORITATIVE, c.Exchange.OwnershipMode)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/exchange-api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_EXCHANGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Rate limiter
		"rate_limiter.enabled",
		"rate_limiter.redis_key_prefix",
		"rate_limiter.max_workers",
		"rate_limiter.max_queue_size",
		"rate_limiter.enable_local_fallback",
		"rate_limiter.local_fallback_multiplier",
		// Ethereum
		"ethereum.rpc_url",
		"ethereum.rpc_timeout",
		"ethereum.log_range_step",
		"ethereum.max_retries",
		"ethereum.retry_backoff",
		"ethereum.max_backoff",
		"ethereum.retry_max_elapsed",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Exchange
		"exchange.source_token.name",
		"exchange.source_token.symbol",
		"exchange.source_token.address",
		"exchange.admin_wallet",
		"exchange.ownership_mode",
		"exchange.guard_ttl",
		"exchange.timeout",
		// Wallet
		"wallet.signer_url",
		"wallet.timeout",
		// Metrics
		"metrics.enabled",
		"metrics.path",
		"metrics.namespace",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
