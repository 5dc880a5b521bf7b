package ethereum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-exchange/internal/abi"
	"github.com/feral-file/ff-token-exchange/internal/adapter"
	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/logger"
)

const (
	METHOD_ETH_CALL         = "eth_call"
	METHOD_ETH_GET_LOGS     = "eth_getLogs"
	METHOD_ETH_BLOCK_NUMBER = "eth_blockNumber"

	BLOCK_TAG_LATEST = "latest"
)

// EthereumClient exposes the typed node reads used by the resolver
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	// Call executes eth_call against the latest block and returns the decoded return data
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)

	// GetLogs returns logs matching filter from genesis to the latest block
	GetLogs(ctx context.Context, filter LogFilter) ([]Log, error)

	// BlockNumber returns the latest block number
	BlockNumber(ctx context.Context) (uint64, error)
}

// LogFilter selects logs emitted by Address. Each Topics position is either empty
// (wildcard), a single value, or a set of alternatives.
type LogFilter struct {
	Address common.Address
	Topics  [][]common.Hash
}

// Log is an event log as returned by eth_getLogs
type Log struct {
	Address     common.Address `json:"address"`
	Topics      []common.Hash  `json:"topics"`
	Data        hexutil.Bytes  `json:"data"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	TxHash      common.Hash    `json:"transactionHash"`
	LogIndex    hexutil.Uint   `json:"logIndex"`
	Removed     bool           `json:"removed"`
}

// Config configures the ethereum client
type Config struct {
	// LogRangeStep splits eth_getLogs into block ranges of this size. Zero queries
	// the whole chain in a single request.
	LogRangeStep uint64
}

type ethereumClient struct {
	rpc  RPCClient
	json adapter.JSON
	cfg  Config
}

// NewClient creates an ethereum client on top of a JSON-RPC client
func NewClient(rpc RPCClient, jsonAdapter adapter.JSON, cfg Config) EthereumClient {
	return &ethereumClient{rpc: rpc, json: jsonAdapter, cfg: cfg}
}

type callMessage struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

type logQuery struct {
	FromBlock string         `json:"fromBlock"`
	ToBlock   string         `json:"toBlock"`
	Address   common.Address `json:"address"`
	Topics    []interface{}  `json:"topics,omitempty"`
}

// Call executes eth_call with params [{to, data}, "latest"]
func (c *ethereumClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	raw, err := c.rpc.Call(ctx, METHOD_ETH_CALL, callMessage{To: to, Data: data}, BLOCK_TAG_LATEST)
	if err != nil {
		return nil, err
	}

	var result string
	if err := c.json.Unmarshal(raw, &result); err != nil {
		return nil, domain.NewDecodingError(string(raw), "eth_call result is not a string")
	}

	return abi.DecodeHex(result)
}

// BlockNumber returns the latest block number
func (c *ethereumClient) BlockNumber(ctx context.Context) (uint64, error) {
	raw, err := c.rpc.Call(ctx, METHOD_ETH_BLOCK_NUMBER)
	if err != nil {
		return 0, err
	}

	var result string
	if err := c.json.Unmarshal(raw, &result); err != nil {
		return 0, domain.NewDecodingError(string(raw), "block number is not a string")
	}

	n, err := abi.DecodeUintHex(result)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, domain.NewDecodingError(result, "block number overflows uint64")
	}
	return n.Uint64(), nil
}

// GetLogs returns logs matching filter from block 0 to latest
func (c *ethereumClient) GetLogs(ctx context.Context, filter LogFilter) ([]Log, error) {
	if c.cfg.LogRangeStep == 0 {
		return c.getLogs(ctx, filter, "0x0", BLOCK_TAG_LATEST)
	}
	return c.getLogsWithPagination(ctx, filter)
}

func (c *ethereumClient) getLogs(ctx context.Context, filter LogFilter, fromBlock, toBlock string) ([]Log, error) {
	query := logQuery{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		Address:   filter.Address,
		Topics:    encodeTopics(filter.Topics),
	}

	raw, err := c.rpc.Call(ctx, METHOD_ETH_GET_LOGS, query)
	if err != nil {
		return nil, err
	}

	var logs []Log
	if err := c.json.Unmarshal(raw, &logs); err != nil {
		return nil, domain.NewDecodingError(string(raw), "malformed logs: %v", err)
	}
	return logs, nil
}

// getLogsWithPagination walks 0..latest in LogRangeStep chunks. A "too many results"
// rejection halves the step for the remaining range.
func (c *ethereumClient) getLogsWithPagination(ctx context.Context, filter LogFilter) ([]Log, error) {
	latest, err := c.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block: %w", err)
	}

	var allLogs []Log
	stepSize := c.cfg.LogRangeStep
	currentFrom := uint64(0)

	for currentFrom <= latest {
		currentTo := currentFrom + stepSize - 1
		if currentTo > latest || currentTo < currentFrom {
			currentTo = latest
		}

		logs, err := c.getLogs(ctx, filter, hexutil.EncodeUint64(currentFrom), hexutil.EncodeUint64(currentTo))
		if err == nil {
			allLogs = append(allLogs, logs...)
			if currentTo == latest {
				break
			}
			currentFrom = currentTo + 1
			continue
		}

		if !isTooManyResultsError(err) || stepSize == 1 {
			return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", currentFrom, currentTo, err)
		}

		stepSize = stepSize / 2
		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("oldStepSize", stepSize*2),
			zap.Uint64("newStepSize", stepSize),
			zap.Uint64("fromBlock", currentFrom),
			zap.Uint64("toBlock", currentTo))
	}

	return allLogs, nil
}

func encodeTopics(topics [][]common.Hash) []interface{} {
	if len(topics) == 0 {
		return nil
	}

	encoded := make([]interface{}, len(topics))
	for i, alternatives := range topics {
		switch len(alternatives) {
		case 0:
			encoded[i] = nil
		case 1:
			encoded[i] = alternatives[0]
		default:
			encoded[i] = alternatives
		}
	}
	return encoded
}

// isTooManyResultsError checks if the node rejected a log query for its size
func isTooManyResultsError(err error) bool {
	var protocolErr *domain.RPCProtocolError
	if !errors.As(err, &protocolErr) {
		return false
	}

	msg := strings.ToLower(protocolErr.Message)
	return strings.Contains(msg, "query returned more than 10000 results") ||
		strings.Contains(msg, "query timeout exceeded") ||
		strings.Contains(msg, "too many results") ||
		strings.Contains(msg, "exceeded maximum")
}
