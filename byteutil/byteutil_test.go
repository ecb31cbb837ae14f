package byteutil

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBigInt(t *testing.T) {
	maxUint256, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

	tests := []struct {
		name    string
		input   any
		want    *big.Int
		wantErr error
	}{
		{name: "int", input: 42, want: big.NewInt(42)},
		{name: "negative int64", input: int64(-7), want: big.NewInt(-7)},
		{name: "uint8", input: uint8(255), want: big.NewInt(255)},
		{name: "decimal string", input: "1000", want: big.NewInt(1000)},
		{name: "negative decimal string", input: "-1000", want: big.NewInt(-1000)},
		{name: "hex string", input: "0xff", want: big.NewInt(255)},
		{name: "max uint256 decimal", input: maxUint256.String(), want: maxUint256},
		{name: "json number", input: json.Number("12345"), want: big.NewInt(12345)},
		{name: "integral float", input: float64(3), want: big.NewInt(3)},
		{name: "hexutil big", input: (*hexutil.Big)(big.NewInt(9)), want: big.NewInt(9)},
		{name: "hexutil uint64", input: hexutil.Uint64(10), want: big.NewInt(10)},
		{name: "big int pointer", input: big.NewInt(-5), want: big.NewInt(-5)},
		{name: "nil", input: nil, wantErr: ErrInvalidNumber},
		{name: "fractional float", input: 1.5, wantErr: ErrInvalidNumber},
		{name: "bool", input: true, wantErr: ErrInvalidNumber},
		{name: "garbage string", input: "12abc", wantErr: ErrInvalidNumber},
		{name: "bare prefix", input: "0x", wantErr: ErrInvalidNumber},
		{name: "empty string", input: "", wantErr: ErrInvalidNumber},
		{name: "negative hex string", input: "-0x7b", want: big.NewInt(-123)},
		{name: "double minus", input: "--5", wantErr: ErrInvalidNumber},
		{name: "minus plus", input: "-+5", wantErr: ErrInvalidNumber},
		{name: "leading plus", input: "+5", wantErr: ErrInvalidNumber},
		{name: "sign after hex prefix", input: "0x-5", wantErr: ErrInvalidNumber},
		{name: "plus after hex prefix", input: "0x+5", wantErr: ErrInvalidNumber},
		{name: "bare minus", input: "-", wantErr: ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBigInt(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestToBigIntDoesNotAlias(t *testing.T) {
	in := big.NewInt(1)
	out, err := ToBigInt(in)
	require.NoError(t, err)

	out.SetInt64(2)
	assert.Equal(t, int64(1), in.Int64())
}

func TestToBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []byte
		wantErr bool
	}{
		{name: "hex string", input: "0x0102", want: []byte{1, 2}},
		{name: "uppercase prefix", input: "0XAB", want: []byte{0xab}},
		{name: "empty hex", input: "0x", want: []byte{}},
		{name: "byte slice", input: []byte{9}, want: []byte{9}},
		{name: "hexutil bytes", input: hexutil.Bytes{7, 8}, want: []byte{7, 8}},
		{name: "byte array", input: [3]byte{1, 2, 3}, want: []byte{1, 2, 3}},
		{name: "address", input: common.HexToAddress("0x01"), want: common.HexToAddress("0x01").Bytes()},
		{name: "odd length", input: "0x123", wantErr: true},
		{name: "missing prefix", input: "0102", wantErr: true},
		{name: "non hex", input: "0xzz", wantErr: true},
		{name: "number", input: 12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBytes(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHex)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsHexString(t *testing.T) {
	assert.True(t, IsHexString("0x", -1))
	assert.True(t, IsHexString("0xabcd", 2))
	assert.False(t, IsHexString("0xabcd", 3))
	assert.False(t, IsHexString("abcd", -1))
	assert.True(t, IsHexString("0x"+common.Bytes2Hex(make([]byte, 20)), common.AddressLength))
	assert.False(t, IsHexString("alice.eth", common.AddressLength))
}

func TestPadding(t *testing.T) {
	left, err := ZeroPadLeft([]byte{1, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1, 2}, left)

	right, err := ZeroPadRight([]byte{1, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 0, 0}, right)

	_, err = ZeroPadLeft(make([]byte, 33), 32)
	assert.ErrorIs(t, err, ErrTooLong)
	_, err = ZeroPadRight(make([]byte, 33), 32)
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestConcatAndStrip(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3}, Concat([]byte{1}, nil, []byte{2, 3}))
	assert.Equal(t, []byte{1, 0}, StripZeros([]byte{0, 0, 1, 0}))
	assert.Empty(t, StripZeros([]byte{0, 0}))
}

func TestMinimalBytes(t *testing.T) {
	assert.Equal(t, []byte{}, MinimalBytes(nil))
	assert.Equal(t, []byte{}, MinimalBytes(big.NewInt(0)))
	assert.Equal(t, []byte{0x01, 0x00}, MinimalBytes(big.NewInt(256)))
}

func TestToTwos256(t *testing.T) {
	minusOne := ToTwos256(big.NewInt(-1))
	for _, b := range minusOne {
		assert.Equal(t, byte(0xff), b)
	}

	one := ToTwos256(big.NewInt(1))
	assert.Len(t, one, 32)
	assert.Equal(t, byte(1), one[31])

	in := big.NewInt(-2)
	ToTwos256(in)
	assert.Equal(t, int64(-2), in.Int64())
}

func TestToAddress(t *testing.T) {
	const checksummed = "0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826"
	want := common.HexToAddress(checksummed)

	tests := []struct {
		name    string
		input   any
		wantErr error
	}{
		{name: "checksummed", input: checksummed},
		{name: "lowercase", input: "0xcd2a3d9f938e13cd947ec05abc7fe734df8dd826"},
		{name: "uppercase", input: "0xCD2A3D9F938E13CD947EC05ABC7FE734DF8DD826"},
		{name: "address value", input: want},
		{name: "bad checksum", input: "0xcD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826", wantErr: ErrBadChecksum},
		{name: "short", input: "0x1234", wantErr: ErrInvalidAddress},
		{name: "name", input: "alice.eth", wantErr: ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToAddress(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
