package abi

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

const (
	// WORD_SIZE is the size of an ABI word in bytes
	WORD_SIZE = 32

	// SELECTOR_SIZE is the size of a function selector in bytes
	SELECTOR_SIZE = 4
)

// Canonical signatures used by the resolver and the exchange flow
const (
	SIGNATURE_BALANCE_OF     = "balanceOf(address)"
	SIGNATURE_DECIMALS       = "decimals()"
	SIGNATURE_TRANSFER       = "transfer(address,uint256)"
	SIGNATURE_TRANSFER_EVENT = "Transfer(address,address,uint256)"
)

var (
	// BalanceOfSelector is 0x70a08231
	BalanceOfSelector = Selector(SIGNATURE_BALANCE_OF)

	// DecimalsSelector is 0x313ce567
	DecimalsSelector = Selector(SIGNATURE_DECIMALS)

	// TransferSelector is 0xa9059cbb
	TransferSelector = Selector(SIGNATURE_TRANSFER)

	// TransferEventTopic is the keccak256 hash of the Transfer event signature
	TransferEventTopic = EventTopic(SIGNATURE_TRANSFER_EVENT)
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// CanonicalSignature builds "name(type1,type2)" with whitespace removed
func CanonicalSignature(name string, types ...string) string {
	cleaned := make([]string, len(types))
	for i, t := range types {
		cleaned[i] = strings.ReplaceAll(strings.TrimSpace(t), " ", "")
	}
	return fmt.Sprintf("%s(%s)", strings.TrimSpace(name), strings.Join(cleaned, ","))
}

// Selector returns the first 4 bytes of the Keccak-256 hash of the signature
func Selector(signature string) [SELECTOR_SIZE]byte {
	var selector [SELECTOR_SIZE]byte
	copy(selector[:], crypto.Keccak256([]byte(signature))[:SELECTOR_SIZE])
	return selector
}

// EventTopic returns the Keccak-256 hash of an event signature
func EventTopic(signature string) common.Hash {
	return crypto.Keccak256Hash([]byte(signature))
}

// EncodeAddress right-aligns a 20-byte address in a 32-byte word
func EncodeAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), WORD_SIZE)
}

// EncodeUint256 encodes v as a big-endian 32-byte word
func EncodeUint256(v *big.Int) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot encode nil integer")
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("cannot encode negative integer %s as uint256", v.String())
	}
	if v.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("integer %s overflows uint256", v.String())
	}
	return common.LeftPadBytes(v.Bytes(), WORD_SIZE), nil
}

// EncodeBool encodes a boolean as a 32-byte word
func EncodeBool(v bool) []byte {
	word := make([]byte, WORD_SIZE)
	if v {
		word[WORD_SIZE-1] = 1
	}
	return word
}

// EncodeCall builds calldata: the selector of signature followed by each argument
// padded to a 32-byte word. Only static types are supported.
func EncodeCall(signature string, argTypes []string, args []interface{}) ([]byte, error) {
	if len(argTypes) != len(args) {
		return nil, fmt.Errorf("argument count mismatch: %d types, %d values", len(argTypes), len(args))
	}

	selector := Selector(signature)
	data := make([]byte, 0, SELECTOR_SIZE+WORD_SIZE*len(args))
	data = append(data, selector[:]...)

	for i, argType := range argTypes {
		word, err := encodeArgument(argType, args[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode argument %d (%s): %w", i, argType, err)
		}
		data = append(data, word...)
	}

	return data, nil
}

// EncodeBalanceOf builds balanceOf(owner) calldata
func EncodeBalanceOf(owner common.Address) []byte {
	data := make([]byte, 0, SELECTOR_SIZE+WORD_SIZE)
	data = append(data, BalanceOfSelector[:]...)
	return append(data, EncodeAddress(owner)...)
}

// EncodeDecimals builds decimals() calldata
func EncodeDecimals() []byte {
	return append([]byte{}, DecimalsSelector[:]...)
}

// EncodeTransfer builds transfer(to, amount) calldata
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return EncodeCall(SIGNATURE_TRANSFER, []string{"address", "uint256"}, []interface{}{to, amount})
}

func encodeArgument(argType string, value interface{}) ([]byte, error) {
	switch {
	case argType == "address":
		switch v := value.(type) {
		case common.Address:
			return EncodeAddress(v), nil
		case string:
			addr, err := domain.NormalizeAddress(v)
			if err != nil {
				return nil, err
			}
			return EncodeAddress(addr), nil
		default:
			return nil, fmt.Errorf("unsupported address value %T", value)
		}

	case argType == "bool":
		v, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("unsupported bool value %T", value)
		}
		return EncodeBool(v), nil

	case strings.HasPrefix(argType, "uint"):
		bits, err := uintBits(argType)
		if err != nil {
			return nil, err
		}
		n, err := toBigInt(value)
		if err != nil {
			return nil, err
		}
		if n.Sign() >= 0 && n.BitLen() > bits {
			return nil, fmt.Errorf("integer %s overflows %s", n.String(), argType)
		}
		return EncodeUint256(n)

	default:
		return nil, fmt.Errorf("unsupported argument type %q", argType)
	}
}

func uintBits(argType string) (int, error) {
	suffix := strings.TrimPrefix(argType, "uint")
	if suffix == "" {
		return 256, nil
	}
	bits, err := strconv.Atoi(suffix)
	if err != nil || bits <= 0 || bits > 256 || bits%8 != 0 {
		return 0, fmt.Errorf("invalid integer type %q", argType)
	}
	return bits, nil
}

func toBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case uint8:
		return big.NewInt(int64(v)), nil
	case string:
		n, ok := new(big.Int).SetString(v, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer string %q", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported integer value %T", value)
	}
}

// DecodeHex decodes 0x-prefixed hex data as returned by eth_call
func DecodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, domain.NewDecodingError(s, "empty hex string")
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, domain.NewDecodingError(s, "invalid hex data: %v", err)
	}
	return b, nil
}

// DecodeUint interprets up to one 32-byte word as an unsigned big-endian integer.
// Empty input and input longer than a word are rejected.
func DecodeUint(b []byte) (*big.Int, error) {
	if len(b) == 0 {
		return nil, domain.NewDecodingError("", "empty uint word")
	}
	if len(b) > WORD_SIZE {
		return nil, domain.NewDecodingError(hexutil.Encode(b), "uint word is %d bytes, expected at most %d", len(b), WORD_SIZE)
	}
	return new(big.Int).SetBytes(b), nil
}

// DecodeUintHex interprets a variable-length hex quantity ("0x1a", "0x000...01")
// as an unsigned integer of at most 256 bits
func DecodeUintHex(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return nil, domain.NewDecodingError(s, "empty hex quantity")
	}
	if len(digits) > WORD_SIZE*2 {
		return nil, domain.NewDecodingError(s, "hex quantity exceeds 256 bits")
	}
	for _, c := range digits {
		if !isHexDigit(c) {
			return nil, domain.NewDecodingError(s, "non-hex character %q", c)
		}
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, domain.NewDecodingError(s, "invalid hex quantity")
	}
	return n, nil
}

// DecodeUint8 decodes a word holding a uint8 value such as decimals()
func DecodeUint8(b []byte) (uint8, error) {
	n, err := DecodeUint(b)
	if err != nil {
		return 0, err
	}
	if n.BitLen() > 8 {
		return 0, domain.NewDecodingError(hexutil.Encode(b), "value %s overflows uint8", n.String())
	}
	return uint8(n.Uint64()), nil
}

// AddressToTopic left-pads an address to 32 bytes for log topic filters
func AddressToTopic(addr common.Address) common.Hash {
	return common.BytesToHash(EncodeAddress(addr))
}

// TopicToAddress extracts the address from an indexed topic. The 12 high bytes must be zero.
func TopicToAddress(topic common.Hash) (common.Address, error) {
	for _, b := range topic[:WORD_SIZE-common.AddressLength] {
		if b != 0 {
			return common.Address{}, domain.NewDecodingError(topic.Hex(), "topic is not a padded address")
		}
	}
	return common.BytesToAddress(topic[WORD_SIZE-common.AddressLength:]), nil
}

// TopicToUint decodes an indexed uint256 topic
func TopicToUint(topic common.Hash) *big.Int {
	return new(big.Int).SetBytes(topic.Bytes())
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
