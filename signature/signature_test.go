package signature

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testR = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	testS = common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")
)

func TestNormalizeV(t *testing.T) {
	tests := []struct {
		in   uint64
		want byte
	}{
		{0, 27},
		{1, 28},
		{27, 27},
		{28, 28},
		{37, 27},
		{38, 28},
		{2, 28},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeV(tt.in), "v=%d", tt.in)
	}
}

func TestFromBytes(t *testing.T) {
	raw := append(append(testR.Bytes(), testS.Bytes()...), 0)

	tests := []struct {
		name  string
		last  byte
		wantV byte
	}{
		{name: "v=0", last: 0, wantV: 27},
		{name: "v=1", last: 1, wantV: 28},
		{name: "v=27", last: 27, wantV: 27},
		{name: "v=28", last: 28, wantV: 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw[64] = tt.last
			sig, err := FromBytes(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantV, sig.V())
			assert.Equal(t, testR, sig.R())
			assert.Equal(t, testS, sig.S())
			assert.Len(t, sig.Bytes(), 65)
			assert.Equal(t, tt.wantV, sig.Bytes()[64])
		})
	}

	_, err := FromBytes(make([]byte, 63))
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = FromBytes(make([]byte, 66))
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestCompactRoundTrip(t *testing.T) {
	for _, v := range []uint64{27, 28} {
		sig := FromValues(testR, testS, v)
		compact := sig.Compact()
		require.Len(t, compact, 64)

		back, err := FromBytes(compact)
		require.NoError(t, err)
		assert.Equal(t, sig, back)
	}

	compact := FromValues(testR, testS, 28).Compact()
	assert.Equal(t, byte(0xa2), compact[32])
}

func TestFromBigValues(t *testing.T) {
	sig, err := FromBigValues(testR.Big(), testS.Big(), big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, byte(27), sig.V())

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = FromBigValues(tooBig, testS.Big(), big.NewInt(27))
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestString(t *testing.T) {
	sig := FromValues(testR, testS, 1)
	s := sig.String()
	assert.Len(t, s, 2+130)
	assert.True(t, strings.HasPrefix(s, "0x1111"))
	assert.True(t, strings.HasSuffix(s, "1c"))
	assert.Equal(t, testR.Hex()+testS.Hex()[2:]+hexutil.EncodeUint64(28)[2:], s)

	small := FromValues(common.HexToHash("0x01"), common.HexToHash("0x02"), 27)
	assert.Equal(t, "0x"+strings.Repeat("0", 63)+"1"+strings.Repeat("0", 63)+"2"+"1b", small.String())

	parsed, err := FromHex(s)
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)
}

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)
	digest := crypto.Keccak256Hash([]byte("zksync"))

	sig, err := Sign(digest, key)
	require.NoError(t, err)
	assert.Contains(t, []byte{27, 28}, sig.V())

	addr, err := sig.Recover(digest)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)

	compact, err := FromBytes(sig.Compact())
	require.NoError(t, err)
	addr, err = compact.Recover(digest)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)
}

func TestJSON(t *testing.T) {
	sig := FromValues(testR, testS, 28)

	out, err := json.Marshal(sig)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"r": "0x1111111111111111111111111111111111111111111111111111111111111111",
		"s": "0x2222222222222222222222222222222222222222222222222222222222222222",
		"v": "0x1c",
		"yParity": "0x1"
	}`, string(out))

	var fromObject Signature
	require.NoError(t, json.Unmarshal(out, &fromObject))
	assert.Equal(t, sig, fromObject)

	var fromHex Signature
	require.NoError(t, json.Unmarshal([]byte(`"`+sig.String()+`"`), &fromHex))
	assert.Equal(t, sig, fromHex)

	var missing Signature
	assert.Error(t, json.Unmarshal([]byte(`{"r":"`+testR.Hex()+`","s":"`+testS.Hex()+`"}`), &missing))
}
