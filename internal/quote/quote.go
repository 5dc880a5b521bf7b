// Package quote derives exchange quotes and the display values of token balances.
// Every function is pure: the result depends only on the arguments.
package quote

import (
	"math/big"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

// ParseAmount strips every non-digit character from raw and parses the rest as a
// non-negative integer. It returns nil when nothing parseable remains.
func ParseAmount(raw string) *big.Int {
	digits := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return -1
		}
		return r
	}, raw)
	if digits == "" {
		return nil
	}

	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil
	}
	return n
}

// EffectiveRate returns the conversion rate truncated to an integer. Non-positive
// or missing rates yield nil.
func EffectiveRate(tokenType *domain.ExchangeTokenType) *big.Int {
	if tokenType == nil || !tokenType.ConversionRate.IsPositive() {
		return nil
	}
	return tokenType.ConversionRate.Truncate(0).BigInt()
}

// Quote derives the exchange quote for sourceAmountRaw against the available balance
// (in whole source-token units).
//
// The source amount is clamped to balance, a nil balance counting as zero. Without a
// token type only the source amount is set. Otherwise the destination amount is the
// source amount times the integer-truncated conversion rate.
func Quote(sourceAmountRaw string, balance *big.Int, tokenType *domain.ExchangeTokenType) domain.ExchangeQuote {
	source := ParseAmount(sourceAmountRaw)
	if source == nil {
		return domain.ExchangeQuote{}
	}

	available := balance
	if available == nil || available.Sign() < 0 {
		available = new(big.Int)
	}
	if source.Cmp(available) > 0 {
		source = new(big.Int).Set(available)
	}

	q := domain.ExchangeQuote{SourceAmount: source}
	if tokenType == nil {
		return q
	}

	rate := EffectiveRate(tokenType)
	if rate == nil {
		return q
	}

	q.TokenType = tokenType
	q.EffectiveRate = rate
	q.DestinationAmount = new(big.Int).Mul(source, rate)
	return q
}

// ToSmallestUnit converts a whole-unit amount to the token's smallest unit
func ToSmallestUnit(amount *big.Int, decimals uint8) *big.Int {
	if amount == nil {
		return nil
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(amount, scale)
}

// WholeUnits converts a raw balance to whole units, truncating toward zero.
// This is the value used for exchange math.
func WholeUnits(raw *big.Int, decimals uint8) *big.Int {
	if raw == nil {
		return new(big.Int)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Quo(raw, scale)
}

// FormatDisplay formats a raw balance for display, rounded half-up to two decimal places
func FormatDisplay(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return ""
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).
		StringFixed(domain.DISPLAY_DECIMAL_PLACES)
}

// Display returns the display value of a resolved balance, or an empty string when
// the balance could not be resolved
func Display(balance domain.TokenBalance) string {
	if !balance.OK() {
		return ""
	}
	return FormatDisplay(balance.Raw, balance.Decimals)
}
