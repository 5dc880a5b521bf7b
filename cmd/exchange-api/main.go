package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/api/middleware"
	"github.com/feral-file/ff-token-exchange/internal/api/rest"
	"github.com/feral-file/ff-token-exchange/internal/api/server"
	"github.com/feral-file/ff-token-exchange/internal/config"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/exchange"
	"github.com/feral-file/ff-token-exchange/internal/logger"
	"github.com/feral-file/ff-token-exchange/internal/messaging"
	"github.com/feral-file/ff-token-exchange/internal/metrics"
	"github.com/feral-file/ff-token-exchange/internal/providers/ethereum"
	"github.com/feral-file/ff-token-exchange/internal/providers/jetstream"
	"github.com/feral-file/ff-token-exchange/internal/ratelimit"
	"github.com/feral-file/ff-token-exchange/internal/resolver"
	"github.com/feral-file/ff-token-exchange/internal/store"
	"github.com/feral-file/ff-token-exchange/internal/wallet"
)

const rpcProvider = "ethereum"

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadExchangeAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "exchange-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Feral File Token Exchange API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(cfg.Ethereum.RPCTimeout)

	// Metrics
	var telemetry metrics.Recorder = metrics.NewNoopRecorder()
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		telemetry = metrics.NewPrometheusRecorder(cfg.Metrics.Namespace, registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	// Redis is optional; it backs the distributed rate limiter and the exchange guard
	var redisClient adapter.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient = adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close Redis client", zap.Error(err))
			}
		}()
		logger.InfoCtx(ctx, "Redis configured", zap.String("addr", cfg.Redis.Addr))
	}

	// Ethereum JSON-RPC client
	var rpc ethereum.RPCClient = ethereum.NewRPCClient(cfg.Ethereum.RPCURL, httpClient, jsonAdapter)
	rpc = ethereum.WithTimeout(rpc, cfg.Ethereum.RPCTimeout)
	if cfg.RateLimiter.Enabled {
		proxy, err := ratelimit.NewProxy(cfg.RateLimiter, redisClient, clock)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to create rate limit proxy", zap.Error(err))
		}
		defer func() {
			if err := proxy.Close(); err != nil {
				logger.Warn("Failed to close rate limit proxy", zap.Error(err))
			}
		}()
		rpc = ethereum.WithRateLimit(rpc, proxy, rpcProvider)
	}
	rpc = ethereum.WithMetrics(rpc, telemetry, clock)
	rpc = ethereum.WithRetry(rpc, ethereum.RetryConfig{
		MaxRetries:      cfg.Ethereum.MaxRetries,
		InitialInterval: cfg.Ethereum.RetryBackoff,
		MaxInterval:     cfg.Ethereum.MaxBackoff,
		MaxElapsedTime:  cfg.Ethereum.RetryMaxElapsed,
	})
	ethClient := ethereum.NewClient(rpc, jsonAdapter, ethereum.Config{LogRangeStep: cfg.Ethereum.LogRangeStep})

	// Configured contracts
	sourceToken, err := cfg.Exchange.SourceToken.ToDomain()
	if err != nil {
		logger.FatalCtx(ctx, "Invalid source token", zap.Error(err))
	}
	nftContracts := make([]domain.TokenContract, 0, len(cfg.Exchange.NftContracts))
	for _, c := range cfg.Exchange.NftContracts {
		contract, err := c.ToDomain()
		if err != nil {
			logger.FatalCtx(ctx, "Invalid NFT contract", zap.Error(err))
		}
		nftContracts = append(nftContracts, contract)
	}
	balanceContracts := []domain.TokenContract{sourceToken}

	// Balance and ownership resolver
	var ownership resolver.OwnershipStrategy
	switch cfg.Exchange.OwnershipMode {
	case config.OWNERSHIP_MODE_APPROXIMATE:
		ownership = resolver.NewApproximateOwnership()
	default:
		ownership = resolver.NewAuthoritativeOwnership()
	}
	balanceResolver, err := resolver.New(ethClient, resolver.Config{
		BalanceContracts: balanceContracts,
		NftContracts:     nftContracts,
		Ownership:        ownership,
		PoolSize:         cfg.Worker.WorkerPoolSize,
	}, clock, telemetry)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create resolver", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Resolver configured",
		zap.String("ownership_mode", cfg.Exchange.OwnershipMode),
		zap.Int("nft_contracts", len(nftContracts)),
	)

	// Wallet provider
	var walletProvider exchange.WalletProvider
	if cfg.Wallet.SignerURL != "" {
		var signer ethereum.RPCClient = ethereum.NewRPCClient(cfg.Wallet.SignerURL, adapter.NewHTTPClient(cfg.Wallet.Timeout), jsonAdapter)
		signer = ethereum.WithTimeout(signer, cfg.Wallet.Timeout)
		walletProvider = wallet.NewRPCWallet(signer, jsonAdapter)
		logger.InfoCtx(ctx, "Wallet signer configured")
	} else {
		logger.WarnCtx(ctx, "Wallet signer not configured, exchanges will fail with wallet_unavailable")
	}

	// Exchange guard
	var guard exchange.Guard
	if redisClient != nil {
		guard = exchange.NewRedisGuard(redisClient, "exchange:inflight:", cfg.Exchange.GuardTTL)
	} else {
		guard = exchange.NewMemoryGuard()
	}

	// Event publisher
	var publisher messaging.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), jsonAdapter)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
	} else {
		logger.WarnCtx(ctx, "NATS not configured, exchange events will not be published")
		publisher = messaging.NewNoopPublisher()
	}
	defer publisher.Close()

	// Exchange orchestrator
	orchestrator := exchange.NewOrchestrator(exchange.Config{
		SourceToken: sourceToken,
		AdminWallet: common.HexToAddress(cfg.Exchange.AdminWallet),
		Timeout:     cfg.Exchange.Timeout,
	}, dataStore, balanceResolver, walletProvider, guard, publisher, telemetry, clock, jsonAdapter)

	handler := rest.NewHandler(rest.Config{
		BalanceContracts: balanceContracts,
		NftContracts:     nftContracts,
	}, dataStore, balanceResolver, orchestrator)

	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: metricsHandler,
	}
	srv := server.New(serverConfig, handler)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// In-flight exchanges may be waiting on the wallet, allow them to settle
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}

	logger.Info("Exchange API server stopped")
}
