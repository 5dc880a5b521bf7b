package resolver

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-token-exchange/internal/abi"
	"github.com/feral-file/ff-token-exchange/internal/providers/ethereum"
)

// ERC721_TRANSFER_TOPICS is the topic count of an ERC-721 Transfer log. ERC-20
// transfers carry the amount in data and only have three topics.
const ERC721_TRANSFER_TOPICS = 4

// OwnershipStrategy decides which token ids of an ERC-721 contract a wallet owns
type OwnershipStrategy interface {
	// Name identifies the strategy in logs
	Name() string

	// OwnedTokenIDs returns the owned token ids in ascending order
	OwnedTokenIDs(ctx context.Context, client ethereum.EthereumClient, contract, wallet common.Address) ([]*big.Int, error)
}

// ApproximateOwnership treats every token ever transferred to the wallet as owned.
// Tokens that later left the wallet are still reported.
type ApproximateOwnership struct{}

// NewApproximateOwnership creates the inbound-only strategy
func NewApproximateOwnership() OwnershipStrategy {
	return ApproximateOwnership{}
}

func (ApproximateOwnership) Name() string {
	return "approximate"
}

func (ApproximateOwnership) OwnedTokenIDs(ctx context.Context, client ethereum.EthereumClient, contract, wallet common.Address) ([]*big.Int, error) {
	inbound, err := client.GetLogs(ctx, inboundFilter(contract, wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound transfers: %w", err)
	}

	owned := make(map[string]*big.Int)
	for _, l := range inbound {
		if !isNftTransfer(l) {
			continue
		}
		id := abi.TopicToUint(l.Topics[3])
		owned[id.String()] = id
	}
	return sortedIDs(owned), nil
}

// AuthoritativeOwnership replays inbound and outbound transfers. A token is owned
// when its latest inbound transfer is not older than its latest outbound transfer.
type AuthoritativeOwnership struct{}

// NewAuthoritativeOwnership creates the inbound/outbound strategy
func NewAuthoritativeOwnership() OwnershipStrategy {
	return AuthoritativeOwnership{}
}

func (AuthoritativeOwnership) Name() string {
	return "authoritative"
}

func (AuthoritativeOwnership) OwnedTokenIDs(ctx context.Context, client ethereum.EthereumClient, contract, wallet common.Address) ([]*big.Int, error) {
	inbound, err := client.GetLogs(ctx, inboundFilter(contract, wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to get inbound transfers: %w", err)
	}

	outbound, err := client.GetLogs(ctx, outboundFilter(contract, wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to get outbound transfers: %w", err)
	}

	lastIn := latestPositions(inbound)
	lastOut := latestPositions(outbound)

	owned := make(map[string]*big.Int, len(lastIn))
	for key, in := range lastIn {
		out, moved := lastOut[key]
		if moved && out.after(in.logPosition) {
			continue
		}
		owned[key] = in.tokenID
	}
	return sortedIDs(owned), nil
}

type logPosition struct {
	block uint64
	index uint
}

func (p logPosition) after(other logPosition) bool {
	if p.block != other.block {
		return p.block > other.block
	}
	return p.index > other.index
}

type tokenPosition struct {
	logPosition
	tokenID *big.Int
}

// latestPositions returns the most recent transfer of each token id in logs
func latestPositions(logs []ethereum.Log) map[string]tokenPosition {
	latest := make(map[string]tokenPosition)
	for _, l := range logs {
		if !isNftTransfer(l) {
			continue
		}
		id := abi.TopicToUint(l.Topics[3])
		pos := logPosition{block: uint64(l.BlockNumber), index: uint(l.LogIndex)}

		key := id.String()
		if current, ok := latest[key]; ok && !pos.after(current.logPosition) {
			continue
		}
		latest[key] = tokenPosition{logPosition: pos, tokenID: id}
	}
	return latest
}

func isNftTransfer(l ethereum.Log) bool {
	return !l.Removed && len(l.Topics) == ERC721_TRANSFER_TOPICS && l.Topics[0] == abi.TransferEventTopic
}

func inboundFilter(contract, wallet common.Address) ethereum.LogFilter {
	return ethereum.LogFilter{
		Address: contract,
		Topics: [][]common.Hash{
			{abi.TransferEventTopic},
			nil,
			{abi.AddressToTopic(wallet)},
		},
	}
}

func outboundFilter(contract, wallet common.Address) ethereum.LogFilter {
	return ethereum.LogFilter{
		Address: contract,
		Topics: [][]common.Hash{
			{abi.TransferEventTopic},
			{abi.AddressToTopic(wallet)},
		},
	}
}

func sortedIDs(ids map[string]*big.Int) []*big.Int {
	out := make([]*big.Int, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Cmp(out[j]) < 0
	})
	return out
}
