package exchange

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// WalletProvider is the signing capability that authorizes on-chain transfers for a user
//
//go:generate mockgen -source=ports.go -destination=../mocks/exchange_ports.go -package=mocks -mock_names=WalletProvider=MockWalletProvider,Guard=MockGuard
type WalletProvider interface {
	// RequestAccounts returns the accounts the provider is allowed to sign for
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// SendContractTransaction signs and broadcasts a call to contract from the given account
	// and returns the transaction hash
	SendContractTransaction(ctx context.Context, from, contract common.Address, data []byte) (common.Hash, error)
}

// Guard serializes exchanges per key. A second TryAcquire of a held key fails
// immediately instead of waiting.
type Guard interface {
	// TryAcquire takes the key. When ok is true the caller must call release exactly once.
	TryAcquire(ctx context.Context, key string) (release func(), ok bool)
}
