package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requiredFields = `
ethereum:
  rpc_url: "https://mainnet.example.com"
database:
  host: localhost
  dbname: exchange
exchange:
  source_token:
    address: "0x975aE55f09d4C9c485d1D97C49C549BEF7a24504"
  admin_wallet: "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadExchangeAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *ExchangeAPIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9090
database:
  host: db.internal
  port: 6543
  user: exchange
  password: secret
  dbname: exchange
  sslmode: require
nats:
  url: "nats://localhost:4222"
  stream_name: "EXCHANGE_TEST"
redis:
  addr: "localhost:6379"
  db: 2
rate_limiter:
  enabled: true
  providers:
    ethereum:
      requests_per_second: 10
      burst: 20
      max_queue_time: 5s
ethereum:
  rpc_url: "https://mainnet.example.com"
  rpc_timeout: 3s
  log_range_step: 5000
  max_retries: 5
  retry_max_elapsed: 10s
exchange:
  source_token:
    name: "Feral File Token"
    symbol: "FF"
    address: "0x975aE55f09d4C9c485d1D97C49C549BEF7a24504"
  nft_contracts:
    - name: "Genesis"
      address: "0x5FbDB2315678afecb367f032d93F642f64180aa3"
    - name: "Editions"
      address: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
  admin_wallet: "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30"
  ownership_mode: approximate
  guard_ttl: 1m
wallet:
  signer_url: "http://localhost:8545"
  timeout: 30s
metrics:
  enabled: false
`,
			validate: func(t *testing.T, cfg *ExchangeAPIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "db.internal", cfg.Database.Host)
				assert.Equal(t, 6543, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "EXCHANGE_TEST", cfg.NATS.StreamName)
				assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
				assert.Equal(t, 2, cfg.Redis.DB)
				assert.True(t, cfg.RateLimiter.Enabled)
				require.Contains(t, cfg.RateLimiter.Providers, "ethereum")
				assert.Equal(t, 10, cfg.RateLimiter.Providers["ethereum"].RequestsPerSecond)
				assert.Equal(t, 20, cfg.RateLimiter.Providers["ethereum"].Burst)
				assert.Equal(t, 5*time.Second, cfg.RateLimiter.Providers["ethereum"].MaxQueueTime)
				assert.Equal(t, "https://mainnet.example.com", cfg.Ethereum.RPCURL)
				assert.Equal(t, 3*time.Second, cfg.Ethereum.RPCTimeout)
				assert.Equal(t, uint64(5000), cfg.Ethereum.LogRangeStep)
				assert.Equal(t, uint64(5), cfg.Ethereum.MaxRetries)
				assert.Equal(t, 10*time.Second, cfg.Ethereum.RetryMaxElapsed)
				assert.Equal(t, "FF", cfg.Exchange.SourceToken.Symbol)
				require.Len(t, cfg.Exchange.NftContracts, 2)
				assert.Equal(t, "Editions", cfg.Exchange.NftContracts[1].Name)
				assert.Equal(t, OWNERSHIP_MODE_APPROXIMATE, cfg.Exchange.OwnershipMode)
				assert.Equal(t, time.Minute, cfg.Exchange.GuardTTL)
				assert.Equal(t, "http://localhost:8545", cfg.Wallet.SignerURL)
				assert.Equal(t, 30*time.Second, cfg.Wallet.Timeout)
				assert.False(t, cfg.Metrics.Enabled)
			},
		},
		{
			name:       "config with defaults",
			configFile: requiredFields,
			validate: func(t *testing.T, cfg *ExchangeAPIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
				assert.Equal(t, "TOKEN_EXCHANGE", cfg.NATS.StreamName)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Empty(t, cfg.NATS.URL)
				assert.Empty(t, cfg.Redis.Addr)
				assert.False(t, cfg.RateLimiter.Enabled)
				assert.True(t, cfg.RateLimiter.EnableLocalFallback)
				require.Contains(t, cfg.RateLimiter.Providers, "ethereum")
				assert.Equal(t, 25, cfg.RateLimiter.Providers["ethereum"].RequestsPerSecond)
				assert.Zero(t, cfg.Ethereum.RPCTimeout)
				assert.Equal(t, uint64(0), cfg.Ethereum.LogRangeStep)
				assert.Equal(t, uint64(3), cfg.Ethereum.MaxRetries)
				assert.Equal(t, 500*time.Millisecond, cfg.Ethereum.RetryBackoff)
				assert.Equal(t, 30*time.Second, cfg.Ethereum.RetryMaxElapsed)
				assert.Equal(t, 8, cfg.Worker.WorkerPoolSize)
				assert.Equal(t, "FF", cfg.Exchange.SourceToken.Symbol)
				assert.Equal(t, OWNERSHIP_MODE_AUTHORITATIVE, cfg.Exchange.OwnershipMode)
				assert.Equal(t, 5*time.Minute, cfg.Exchange.GuardTTL)
				assert.Empty(t, cfg.Wallet.SignerURL)
				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, "/metrics", cfg.Metrics.Path)
			},
		},
		{
			name: "missing rpc url",
			configFile: `
database:
  host: localhost
  dbname: exchange
`,
			expectError: "ethereum.rpc_url is required",
		},
		{
			name: "invalid source token address",
			configFile: `
ethereum:
  rpc_url: "https://mainnet.example.com"
database:
  host: localhost
  dbname: exchange
exchange:
  source_token:
    address: "0x1234"
  admin_wallet: "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30"
`,
			expectError: "exchange.source_token.address",
		},
		{
			name: "invalid nft contract",
			configFile: requiredFields + `
  nft_contracts:
    - name: "Broken"
      address: "not-an-address"
`,
			expectError: "exchange.nft_contracts[0]",
		},
		{
			name: "unknown ownership mode",
			configFile: requiredFields + `
  ownership_mode: optimistic
`,
			expectError: "exchange.ownership_mode",
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: "failed to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadExchangeAPIConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadExchangeAPIConfig_MissingConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "nonexistent.yaml")

	// Without a file every required field is missing
	cfg, err := LoadExchangeAPIConfig(configFile, t.TempDir())
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "is required")
}

func TestContractConfig_ToDomain(t *testing.T) {
	contract, err := ContractConfig{
		Name:    "Feral File Token",
		Symbol:  "FF",
		Address: "0x975ae55f09d4c9c485d1d97c49c549bef7a24504",
	}.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, "0x975aE55f09d4C9c485d1D97C49C549BEF7a24504", contract.Address.Hex())
	assert.Equal(t, "FF", contract.Symbol)

	_, err = ContractConfig{Name: "Broken", Address: "0xabc"}.ToDomain()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// Viper uses the FF_EXCHANGE_ prefix
	envVars := map[string]string{
		"FF_EXCHANGE_DEBUG":                 "true",
		"FF_EXCHANGE_DATABASE_HOST":         "env-host",
		"FF_EXCHANGE_DATABASE_PORT":         "6432",
		"FF_EXCHANGE_ETHEREUM_RPC_URL":      "https://env.example.com",
		"FF_EXCHANGE_EXCHANGE_ADMIN_WALLET": "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	}
	content := ""
	for k, v := range envVars {
		content += k + "=" + v + "\n"
		t.Cleanup(func(key string) func() {
			return func() { _ = os.Unsetenv(key) }
		}(k))
	}
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(content), 0600))

	// .env.local overrides .env
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env.local"),
		[]byte("FF_EXCHANGE_DATABASE_HOST=local-host\n"), 0600))

	configPath := writeConfig(t, `
debug: false
ethereum:
  rpc_url: "https://file.example.com"
database:
  host: file-host
  port: 5432
  dbname: exchange
exchange:
  source_token:
    address: "0x975aE55f09d4C9c485d1D97C49C549BEF7a24504"
  admin_wallet: "0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30"
`)

	cfg, err := LoadExchangeAPIConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "local-host", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "exchange", cfg.Database.DBName)
	assert.Equal(t, "https://env.example.com", cfg.Ethereum.RPCURL)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.Exchange.AdminWallet)
}
