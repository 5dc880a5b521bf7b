package abi

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

func TestWellKnownSelectors(t *testing.T) {
	assert.Equal(t, "70a08231", hex.EncodeToString(BalanceOfSelector[:]))
	assert.Equal(t, "313ce567", hex.EncodeToString(DecimalsSelector[:]))
	assert.Equal(t, "a9059cbb", hex.EncodeToString(TransferSelector[:]))
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		TransferEventTopic.Hex())
}

func TestCanonicalSignature(t *testing.T) {
	assert.Equal(t, "transfer(address,uint256)", CanonicalSignature("transfer", "address", " uint256 "))
	assert.Equal(t, "decimals()", CanonicalSignature("decimals"))
}

func TestEncodeCall(t *testing.T) {
	to := common.HexToAddress("0x1C85f5520Ca012d9394e5349Db223fBeab6D6d30")

	data, err := EncodeCall(SIGNATURE_TRANSFER, []string{"address", "uint256"}, []interface{}{to, big.NewInt(1000)})
	require.NoError(t, err)
	require.Len(t, data, 4+32+32)

	assert.Equal(t,
		"a9059cbb"+
			"0000000000000000000000001c85f5520ca012d9394e5349db223fbeab6d6d30"+
			"00000000000000000000000000000000000000000000000000000000000003e8",
		hex.EncodeToString(data))

	viaHelper, err := EncodeTransfer(to, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, data, viaHelper)
}

func TestEncodeCall_StringAddressIsNormalized(t *testing.T) {
	lower, err := EncodeCall(SIGNATURE_BALANCE_OF, []string{"address"}, []interface{}{"0x1c85f5520ca012d9394e5349db223fbeab6d6d30"})
	require.NoError(t, err)
	upper, err := EncodeCall(SIGNATURE_BALANCE_OF, []string{"address"}, []interface{}{"0x1C85F5520CA012D9394E5349DB223FBEAB6D6D30"})
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
	assert.Equal(t, EncodeBalanceOf(common.HexToAddress("0x1c85f5520ca012d9394e5349db223fbeab6d6d30")), lower)
}

func TestEncodeCall_Errors(t *testing.T) {
	tests := []struct {
		name     string
		argTypes []string
		args     []interface{}
	}{
		{"count mismatch", []string{"address"}, []interface{}{}},
		{"negative uint", []string{"uint256"}, []interface{}{big.NewInt(-1)}},
		{"uint8 overflow", []string{"uint8"}, []interface{}{256}},
		{"invalid address", []string{"address"}, []interface{}{"0x1234"}},
		{"unsupported type", []string{"string"}, []interface{}{"hello"}},
		{"invalid uint width", []string{"uint7"}, []interface{}{1}},
		{"bool with wrong value", []string{"bool"}, []interface{}{"true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeCall("f()", tt.argTypes, tt.args)
			assert.Error(t, err)
		})
	}
}

func TestEncodeUint256(t *testing.T) {
	word, err := EncodeUint256(big.NewInt(1))
	require.NoError(t, err)
	assert.Len(t, word, 32)
	assert.Equal(t, byte(1), word[31])

	_, err = EncodeUint256(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.Error(t, err)

	_, err = EncodeUint256(nil)
	assert.Error(t, err)
}

func TestEncodeBool(t *testing.T) {
	assert.Equal(t, byte(1), EncodeBool(true)[31])
	assert.Equal(t, make([]byte, 32), EncodeBool(false))
}

func TestDecodeUint(t *testing.T) {
	word := common.LeftPadBytes(big.NewInt(150).Bytes(), 32)
	n, err := DecodeUint(word)
	require.NoError(t, err)
	assert.Equal(t, int64(150), n.Int64())

	n, err = DecodeUint([]byte{0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, int64(256), n.Int64())

	_, err = DecodeUint(nil)
	assert.True(t, domain.IsDecodingError(err))

	_, err = DecodeUint(make([]byte, 33))
	assert.True(t, domain.IsDecodingError(err))
}

func TestDecodeUintHex(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"0x1a", "26", false},
		{"0x00000000000000000000000000000000000000000000000821ab0d4414980000", "150000000000000000000", false},
		{"0X10", "16", false},
		{"ff", "255", false},
		{"0x", "", true},
		{"", "", true},
		{"0xzz", "", true},
		{"0x1" + strings.Repeat("0", 64), "", true},
	}

	for _, tt := range tests {
		n, err := DecodeUintHex(tt.input)
		if tt.wantErr {
			assert.True(t, domain.IsDecodingError(err), "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, n.String())
	}
}

func TestDecodeHex(t *testing.T) {
	b, err := DecodeHex("0x0102")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)

	_, err = DecodeHex("0x123")
	assert.True(t, domain.IsDecodingError(err))

	_, err = DecodeHex("0xgg")
	assert.True(t, domain.IsDecodingError(err))

	_, err = DecodeHex("")
	assert.True(t, domain.IsDecodingError(err))
}

func TestDecodeUint8(t *testing.T) {
	d, err := DecodeUint8(common.LeftPadBytes([]byte{18}, 32))
	require.NoError(t, err)
	assert.Equal(t, uint8(18), d)

	_, err = DecodeUint8(common.LeftPadBytes([]byte{1, 0}, 32))
	assert.True(t, domain.IsDecodingError(err))
}

func TestAddressTopicRoundTrip(t *testing.T) {
	addr := common.HexToAddress("0x975aE55f09d4C9c485d1D97C49C549BEF7a24504")
	topic := AddressToTopic(addr)

	assert.Equal(t, "0x000000000000000000000000975ae55f09d4c9c485d1d97c49c549bef7a24504", topic.Hex())

	back, err := TopicToAddress(topic)
	require.NoError(t, err)
	assert.Equal(t, addr, back)

	_, err = TopicToAddress(common.HexToHash("0x100000000000000000000000975ae55f09d4c9c485d1d97c49c549bef7a24504"))
	assert.True(t, domain.IsDecodingError(err))
}

func TestTopicToUint(t *testing.T) {
	assert.Equal(t, int64(42), TopicToUint(common.BigToHash(big.NewInt(42))).Int64())
}
