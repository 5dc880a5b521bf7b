package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/exchange"
	"github.com/feral-file/ff-token-exchange/internal/logger"
	"github.com/feral-file/ff-token-exchange/internal/providers/ethereum"
)

const (
	METHOD_ETH_REQUEST_ACCOUNTS = "eth_requestAccounts"
	METHOD_ETH_SEND_TRANSACTION = "eth_sendTransaction"
)

type transaction struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// RPCWallet is a wallet provider backed by a signer JSON-RPC endpoint. The signer
// holds the user's key and asks the user to authorize each request.
type RPCWallet struct {
	rpc  ethereum.RPCClient
	json adapter.JSON
}

// NewRPCWallet creates a wallet provider that signs through rpc
func NewRPCWallet(rpc ethereum.RPCClient, json adapter.JSON) *RPCWallet {
	return &RPCWallet{rpc: rpc, json: json}
}

var _ exchange.WalletProvider = (*RPCWallet)(nil)

// RequestAccounts returns the accounts the signer authorizes for this session
func (w *RPCWallet) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	raw, err := w.rpc.Call(ctx, METHOD_ETH_REQUEST_ACCOUNTS)
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := w.json.Unmarshal(raw, &accounts); err != nil {
		return nil, domain.NewDecodingError(string(raw), "accounts are not a string array")
	}

	addresses := make([]common.Address, 0, len(accounts))
	for _, account := range accounts {
		addr, err := domain.NormalizeAddress(account)
		if err != nil {
			logger.WarnCtx(ctx, "Signer returned a malformed account", zap.String("account", account))
			continue
		}
		addresses = append(addresses, addr)
	}

	return addresses, nil
}

// SendContractTransaction submits a call of contract with data, signed by from
func (w *RPCWallet) SendContractTransaction(ctx context.Context, from, contract common.Address, data []byte) (common.Hash, error) {
	raw, err := w.rpc.Call(ctx, METHOD_ETH_SEND_TRANSACTION, transaction{
		From: from,
		To:   contract,
		Data: data,
	})
	if err != nil {
		return common.Hash{}, err
	}

	var hash string
	if err := w.json.Unmarshal(raw, &hash); err != nil {
		return common.Hash{}, domain.NewDecodingError(string(raw), "transaction hash is not a string")
	}

	decoded, err := hexutil.Decode(hash)
	if err != nil || len(decoded) != common.HashLength {
		return common.Hash{}, domain.NewDecodingError(hash, "invalid transaction hash")
	}

	logger.InfoCtx(ctx, "Transaction submitted",
		zap.String("from", from.Hex()),
		zap.String("to", contract.Hex()),
		zap.String("tx_hash", hash))

	return common.BytesToHash(decoded), nil
}
