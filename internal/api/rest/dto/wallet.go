package dto

import (
	"github.com/samber/lo"

	"github.com/feral-file/ff-token-exchange/internal/domain"
	"github.com/feral-file/ff-token-exchange/internal/quote"
)

// ContractResponse represents a configured token contract
type ContractResponse struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol,omitempty"`
	Address string `json:"address"`
}

// TokenBalanceResponse is a per-contract balance outcome. Raw and Display are
// empty when Error is set.
type TokenBalanceResponse struct {
	Contract ContractResponse `json:"contract"`
	Raw      string           `json:"raw,omitempty"`
	Decimals uint8            `json:"decimals"`
	Display  string           `json:"display,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// NftAssetResponse represents an owned ERC-721 token
type NftAssetResponse struct {
	TokenID     string `json:"token_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NftResultResponse is a per-contract ownership outcome
type NftResultResponse struct {
	Contract ContractResponse   `json:"contract"`
	Assets   []NftAssetResponse `json:"assets"`
	Error    string             `json:"error,omitempty"`
}

// WalletBalancesResponse is the body of GET /wallets/:address/balances
type WalletBalancesResponse struct {
	Address  string                 `json:"address"`
	Balances []TokenBalanceResponse `json:"balances"`
}

// WalletNftsResponse is the body of GET /wallets/:address/nfts
type WalletNftsResponse struct {
	Address string              `json:"address"`
	Nfts    []NftResultResponse `json:"nfts"`
}

func mapContract(c domain.TokenContract) ContractResponse {
	return ContractResponse{
		Name:    c.Name,
		Symbol:  c.Symbol,
		Address: c.Address.Hex(),
	}
}

// MapTokenBalancesToDTO maps per-contract balance outcomes
func MapTokenBalancesToDTO(balances []domain.TokenBalance) []TokenBalanceResponse {
	return lo.Map(balances, func(b domain.TokenBalance, _ int) TokenBalanceResponse {
		resp := TokenBalanceResponse{
			Contract: mapContract(b.Contract),
			Decimals: b.Decimals,
		}
		if !b.OK() {
			if b.Err != nil {
				resp.Error = b.Err.Error()
			}
			return resp
		}
		resp.Raw = b.Raw.String()
		resp.Display = quote.Display(b)
		return resp
	})
}

// MapNftResultsToDTO maps per-contract ownership outcomes
func MapNftResultsToDTO(results []domain.NftResult) []NftResultResponse {
	return lo.Map(results, func(r domain.NftResult, _ int) NftResultResponse {
		resp := NftResultResponse{
			Contract: mapContract(r.Contract),
			Assets: lo.Map(r.Assets, func(a domain.NftAsset, _ int) NftAssetResponse {
				return NftAssetResponse{
					TokenID:     a.TokenID.String(),
					Title:       a.Title,
					Description: a.Description,
				}
			}),
		}
		if r.Err != nil {
			resp.Error = r.Err.Error()
		}
		return resp
	})
}
