package resolver

import (
	"context"
	"fmt"
	"runtime"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/feral-file/ff-token-exchange/internal/abi"
	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/logger"
	"github.com/feral-file/ff-token-exchange/internal/metrics"
	"github.com/feral-file/ff-token-exchange/internal/providers/ethereum"
)

const DEFAULT_DECIMALS_CACHE_SIZE = 1024

// Resolver computes wallet balances and NFT ownership from chain state
//
//go:generate mockgen -source=resolver.go -destination=../mocks/resolver.go -package=mocks -mock_names=Resolver=MockResolver
type Resolver interface {
	// GetTokenBalance resolves the ERC-20 balance of wallet. On failure the returned
	// balance carries the error as well.
	GetTokenBalance(ctx context.Context, contract domain.TokenContract, wallet common.Address) (domain.TokenBalance, error)

	// GetTokenBalances resolves every contract concurrently. The result has one entry
	// per contract in input order; failures are reported per entry.
	GetTokenBalances(ctx context.Context, contracts []domain.TokenContract, wallet common.Address) []domain.TokenBalance

	// GetOwnedNfts returns the ERC-721 tokens of contract owned by wallet
	GetOwnedNfts(ctx context.Context, contract domain.TokenContract, wallet common.Address) ([]domain.NftAsset, error)

	// GetOwnedNftsAll resolves ownership for every contract concurrently, one entry
	// per contract in input order
	GetOwnedNftsAll(ctx context.Context, contracts []domain.TokenContract, wallet common.Address) []domain.NftResult

	// Refresh resolves balances and NFTs of all configured contracts
	Refresh(ctx context.Context, wallet common.Address) *domain.WalletSnapshot

	// Close waits for in-flight lookups and releases the worker pool
	Close()
}

// Config configures the resolver
type Config struct {
	// BalanceContracts are the ERC-20 contracts included in Refresh
	BalanceContracts []domain.TokenContract
	// NftContracts are the ERC-721 contracts included in Refresh
	NftContracts []domain.TokenContract
	// Ownership decides NFT ownership; defaults to AuthoritativeOwnership
	Ownership OwnershipStrategy
	// PoolSize bounds concurrent per-contract lookups
	PoolSize int
	// DecimalsCacheSize bounds the number of cached contract decimals
	DecimalsCacheSize int
}

type resolver struct {
	client    ethereum.EthereumClient
	cfg       Config
	pool      pond.Pool
	decimals  *lru.Cache[common.Address, uint8]
	inflight  singleflight.Group
	clock     adapter.Clock
	telemetry metrics.Recorder
}

// New creates a resolver
func New(client ethereum.EthereumClient, cfg Config, clock adapter.Clock, telemetry metrics.Recorder) (Resolver, error) {
	if cfg.Ownership == nil {
		cfg.Ownership = NewAuthoritativeOwnership()
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = runtime.NumCPU()
	}
	if cfg.DecimalsCacheSize <= 0 {
		cfg.DecimalsCacheSize = DEFAULT_DECIMALS_CACHE_SIZE
	}
	if telemetry == nil {
		telemetry = metrics.NewNoopRecorder()
	}

	cache, err := lru.New[common.Address, uint8](cfg.DecimalsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create decimals cache: %w", err)
	}

	return &resolver{
		client:    client,
		cfg:       cfg,
		pool:      pond.NewPool(cfg.PoolSize),
		decimals:  cache,
		clock:     clock,
		telemetry: telemetry,
	}, nil
}

// GetTokenBalance calls balanceOf(wallet) on contract
func (r *resolver) GetTokenBalance(ctx context.Context, contract domain.TokenContract, wallet common.Address) (domain.TokenBalance, error) {
	balance := domain.TokenBalance{
		Contract: contract,
		Decimals: r.getDecimals(ctx, contract.Address),
	}

	result, err := r.client.Call(ctx, contract.Address, abi.EncodeBalanceOf(wallet))
	if err == nil {
		balance.Raw, err = abi.DecodeUint(result)
	}
	if err != nil {
		balance.Raw = nil
		balance.Err = fmt.Errorf("failed to get balance of %s: %w", contract.Address.Hex(), err)
		r.telemetry.ObserveResolution(metrics.RESOLUTION_KIND_BALANCE, false)
		return balance, balance.Err
	}

	r.telemetry.ObserveResolution(metrics.RESOLUTION_KIND_BALANCE, true)
	return balance, nil
}

func (r *resolver) GetTokenBalances(ctx context.Context, contracts []domain.TokenContract, wallet common.Address) []domain.TokenBalance {
	balances := make([]domain.TokenBalance, len(contracts))
	if len(contracts) == 0 {
		return balances
	}

	group := r.pool.NewGroup()
	for i, contract := range contracts {
		group.Submit(func() {
			balance, err := r.GetTokenBalance(ctx, contract, wallet)
			if err != nil {
				logger.WarnCtx(ctx, "Failed to resolve token balance",
					zap.String("contract", contract.Address.Hex()),
					zap.String("wallet", wallet.Hex()),
					zap.Error(err))
			}
			balances[i] = balance
		})
	}
	r.wait(ctx, group)

	return balances
}

func (r *resolver) GetOwnedNfts(ctx context.Context, contract domain.TokenContract, wallet common.Address) ([]domain.NftAsset, error) {
	ids, err := r.cfg.Ownership.OwnedTokenIDs(ctx, r.client, contract.Address, wallet)
	if err != nil {
		r.telemetry.ObserveResolution(metrics.RESOLUTION_KIND_NFT, false)
		return nil, fmt.Errorf("failed to resolve owned tokens of %s: %w", contract.Address.Hex(), err)
	}

	assets := make([]domain.NftAsset, 0, len(ids))
	for _, id := range ids {
		assets = append(assets, domain.NewNftAsset(contract, id))
	}

	r.telemetry.ObserveResolution(metrics.RESOLUTION_KIND_NFT, true)
	return assets, nil
}

func (r *resolver) GetOwnedNftsAll(ctx context.Context, contracts []domain.TokenContract, wallet common.Address) []domain.NftResult {
	results := make([]domain.NftResult, len(contracts))
	if len(contracts) == 0 {
		return results
	}

	group := r.pool.NewGroup()
	for i, contract := range contracts {
		group.Submit(func() {
			assets, err := r.GetOwnedNfts(ctx, contract, wallet)
			if err != nil {
				logger.WarnCtx(ctx, "Failed to resolve NFT ownership",
					zap.String("contract", contract.Address.Hex()),
					zap.String("wallet", wallet.Hex()),
					zap.String("strategy", r.cfg.Ownership.Name()),
					zap.Error(err))
			}
			results[i] = domain.NftResult{Contract: contract, Assets: assets, Err: err}
		})
	}
	r.wait(ctx, group)

	return results
}

func (r *resolver) Refresh(ctx context.Context, wallet common.Address) *domain.WalletSnapshot {
	snapshot := &domain.WalletSnapshot{Wallet: wallet}

	// Balance and NFT lookups share the pool; wait for both sets together
	done := make(chan struct{})
	go func() {
		defer close(done)
		snapshot.Nfts = r.GetOwnedNftsAll(ctx, r.cfg.NftContracts, wallet)
	}()
	snapshot.Balances = r.GetTokenBalances(ctx, r.cfg.BalanceContracts, wallet)
	<-done

	snapshot.RefreshedAt = r.clock.Now()
	return snapshot
}

func (r *resolver) Close() {
	r.pool.StopAndWait()
}

// wait blocks until every task of the group finished. Task bodies never fail, so
// the only error is a stopped pool, which is logged.
func (r *resolver) wait(ctx context.Context, group pond.TaskGroup) {
	if err := group.Wait(); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("resolver task group failed: %w", err))
	}
}

// getDecimals returns the cached decimals of contract, resolving them on first use.
// Concurrent lookups of the same contract share one call. A failed lookup falls
// back to 18 and is not cached.
func (r *resolver) getDecimals(ctx context.Context, contract common.Address) uint8 {
	if d, ok := r.decimals.Get(contract); ok {
		return d
	}

	v, err, _ := r.inflight.Do(contract.Hex(), func() (interface{}, error) {
		if d, ok := r.decimals.Get(contract); ok {
			return d, nil
		}

		result, err := r.client.Call(ctx, contract, abi.EncodeDecimals())
		if err != nil {
			return nil, err
		}
		d, err := abi.DecodeUint8(result)
		if err != nil {
			return nil, err
		}

		r.decimals.Add(contract, d)
		return d, nil
	})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to resolve token decimals, using default",
			zap.String("contract", contract.Hex()),
			zap.Uint8("default", domain.DEFAULT_TOKEN_DECIMALS),
			zap.Error(err))
		return domain.DEFAULT_TOKEN_DECIMALS
	}

	return v.(uint8)
}
