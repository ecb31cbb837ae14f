package zktx

import (
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethaccount/zksync/signature"
)

var (
	testTo   = common.HexToAddress("0xa61464658AfeAf65CccaaFD3a512b69A83B77618")
	testFrom = common.HexToAddress("0x36615Cf349d7F6344891B1e7CA7C72883F5dc049")
)

const (
	unsignedHex = "0x71f8418080808094a61464658afeaf65cccaafd3a512b69a83b77618830f42408082010e808082010e9436615cf349d7f6344891b1e7ca7c72883f5dc04982c350c080c0"
	signedHex   = "0x71f87f8080808094a61464658afeaf65cccaafd3a512b69a83b77618830f42408001a01111111111111111111111111111111111111111111111111111111111111111a0222222222222222222222222222222222222222222222222222222222222222282010e9436615cf349d7f6344891b1e7ca7c72883f5dc04982c350c080c0"
	customHex   = "0x71f887056481fa830493e094a61464658afeaf65cccaafd3a512b69a83b77618830f424084a9059cbb82010e808082010e9436615cf349d7f6344891b1e7ca7c72883f5dc04982c350e1a0000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f83abcdefda94ffffffffffffffffffffffffffffffffffffffff848c5a3445"
)

func transferTx() *Transaction {
	to, from := testTo, testFrom
	return &Transaction{
		Nonce:                big.NewInt(0),
		MaxFeePerGas:         big.NewInt(0),
		MaxPriorityFeePerGas: big.NewInt(0),
		GasLimit:             big.NewInt(0),
		To:                   &to,
		Value:                big.NewInt(1000000),
		Data:                 []byte{},
		ChainID:              big.NewInt(270),
		From:                 &from,
	}
}

func testBytecode() []byte {
	code := make([]byte, 32)
	for i := range code {
		code[i] = byte(i)
	}
	return code
}

func paymasterTx() *Transaction {
	tx := transferTx()
	tx.Nonce = big.NewInt(5)
	tx.MaxPriorityFeePerGas = big.NewInt(100)
	tx.MaxFeePerGas = big.NewInt(250)
	tx.GasLimit = big.NewInt(300000)
	tx.Data = hexutil.MustDecode("0xa9059cbb")
	tx.FactoryDeps = [][]byte{testBytecode()}
	tx.CustomSignature = hexutil.MustDecode("0xabcdef")
	tx.PaymasterParams = &PaymasterParams{
		Paymaster:      common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff"),
		PaymasterInput: hexutil.MustDecode("0x8c5a3445"),
	}
	return tx
}

func testSignature() signature.Signature {
	return signature.FromValues(
		common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111"),
		common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222"),
		1,
	)
}

func TestSerializeUnsigned(t *testing.T) {
	raw, err := Serialize(transferTx(), nil)
	require.NoError(t, err)
	assert.Equal(t, byte(TxType), raw[0])
	assert.Equal(t, unsignedHex, hexutil.Encode(raw))

	var fields []any
	require.NoError(t, rlp.DecodeBytes(raw[1:], &fields))
	require.Len(t, fields, 16)
	assert.Equal(t, testTo.Bytes(), fields[4])
	assert.Equal(t, []byte{0x0f, 0x42, 0x40}, fields[5])
	assert.Equal(t, []byte{0x01, 0x0e}, fields[7])
	assert.Equal(t, []byte{0x01, 0x0e}, fields[10])
	assert.Equal(t, testFrom.Bytes(), fields[11])
	assert.Equal(t, []byte{0xc3, 0x50}, fields[12])
	assert.Empty(t, fields[15])
}

func TestSerializeSigned(t *testing.T) {
	sig := testSignature()
	raw, err := Serialize(transferTx(), &sig)
	require.NoError(t, err)
	assert.Equal(t, signedHex, hexutil.Encode(raw))
}

func TestSerializeWithExtensions(t *testing.T) {
	raw, err := Serialize(paymasterTx(), nil)
	require.NoError(t, err)
	assert.Equal(t, customHex, hexutil.Encode(raw))
}

func TestSerializeDefaults(t *testing.T) {
	tx := transferTx()
	tx.MaxFeePerGas = nil
	tx.MaxPriorityFeePerGas = nil
	tx.GasPrice = big.NewInt(7)

	raw, err := Serialize(tx, nil)
	require.NoError(t, err)

	var fields []any
	require.NoError(t, rlp.DecodeBytes(raw[1:], &fields))
	assert.Equal(t, []byte{7}, fields[1])
	assert.Equal(t, []byte{7}, fields[2])

	tx.MaxFeePerGas = big.NewInt(9)
	raw, err = Serialize(tx, nil)
	require.NoError(t, err)
	require.NoError(t, rlp.DecodeBytes(raw[1:], &fields))
	assert.Equal(t, []byte{9}, fields[1])
	assert.Equal(t, []byte{9}, fields[2])
}

func TestSerializeErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr error
	}{
		{name: "missing chain id", mutate: func(tx *Transaction) { tx.ChainID = nil }, wantErr: ErrMissingChainID},
		{name: "missing from", mutate: func(tx *Transaction) { tx.From = nil }, wantErr: ErrMissingFrom},
		{name: "empty custom signature", mutate: func(tx *Transaction) { tx.CustomSignature = []byte{} }, wantErr: ErrEmptyCustomSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := transferTx()
			tt.mutate(tx)
			_, err := Serialize(tx, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	tx := transferTx()
	tx.Value = big.NewInt(-1)
	_, err := Serialize(tx, nil)
	assert.Error(t, err)
}

func TestParseUnsigned(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(unsignedHex))
	require.NoError(t, err)

	assert.Nil(t, tx.Hash)
	assert.Nil(t, tx.Signature)
	assert.Nil(t, tx.PaymasterParams)
	assert.Nil(t, tx.CustomSignature)
	assert.Equal(t, int64(270), tx.ChainID.Int64())
	assert.Equal(t, int64(1000000), tx.Value.Int64())
	assert.Equal(t, int64(DefaultGasPerPubdataLimit), tx.GasPerPubdata.Int64())
	assert.Equal(t, testTo, *tx.To)
	assert.Equal(t, testFrom, *tx.From)
	assert.Empty(t, tx.FactoryDeps)

	raw, err := Serialize(tx, nil)
	require.NoError(t, err)
	assert.Equal(t, unsignedHex, hexutil.Encode(raw))
}

func TestParseSigned(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(signedHex))
	require.NoError(t, err)

	require.NotNil(t, tx.Signature)
	assert.Equal(t, testSignature(), *tx.Signature)
	assert.Equal(t, byte(28), tx.Signature.V())
	require.NotNil(t, tx.Hash)
	assert.Equal(t, "0x7c7cb8fc55d6ee329caac7363ce210bf638a52031d0546560ede8e55befd36ed", tx.Hash.Hex())

	raw, err := Serialize(tx, tx.Signature)
	require.NoError(t, err)
	assert.Equal(t, signedHex, hexutil.Encode(raw))
}

func TestParseCustomSignature(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(customHex))
	require.NoError(t, err)

	assert.Nil(t, tx.Signature)
	assert.Equal(t, hexutil.MustDecode("0xabcdef"), tx.CustomSignature)
	require.NotNil(t, tx.PaymasterParams)
	assert.Equal(t, common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff"), tx.PaymasterParams.Paymaster)
	assert.Equal(t, hexutil.MustDecode("0x8c5a3445"), tx.PaymasterParams.PaymasterInput)
	assert.Equal(t, [][]byte{testBytecode()}, tx.FactoryDeps)
	require.NotNil(t, tx.Hash)
	assert.Equal(t, "0xf59ea31cc36c5c87c516b5f6eb2d65915a8cc49bf55a07c95160674a762b0369", tx.Hash.Hex())
}

func encodeFields(t *testing.T, mutate func(fields []any)) []byte {
	t.Helper()
	var fields []any
	require.NoError(t, rlp.DecodeBytes(hexutil.MustDecode(unsignedHex)[1:], &fields))
	mutate(fields)
	payload, err := rlp.EncodeToBytes(fields)
	require.NoError(t, err)
	return append([]byte{TxType}, payload...)
}

func TestParseErrors(t *testing.T) {
	t.Run("wrong type byte", func(t *testing.T) {
		raw := hexutil.MustDecode(unsignedHex)
		raw[0] = 0x02
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidType)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Parse(nil)
		assert.ErrorIs(t, err, ErrInvalidType)
	})

	for _, length := range []int{1, 3} {
		t.Run(fmt.Sprintf("paymaster params of length %d", length), func(t *testing.T) {
			raw := encodeFields(t, func(fields []any) {
				params := make([]any, length)
				for i := range params {
					params[i] = []byte{}
				}
				fields[15] = params
			})
			_, err := Parse(raw)
			var lengthErr *PaymasterParamsLengthError
			require.ErrorAs(t, err, &lengthErr)
			assert.Equal(t, length, lengthErr.Length)
		})
	}

	t.Run("invalid v", func(t *testing.T) {
		raw := encodeFields(t, func(fields []any) {
			fields[7] = []byte{27}
			fields[8] = []byte{1}
			fields[9] = []byte{2}
		})
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("short field list", func(t *testing.T) {
		payload, err := rlp.EncodeToBytes([]any{[]byte{}, []byte{}})
		require.NoError(t, err)
		_, err = Parse(append([]byte{TxType}, payload...))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestParseEmptyCustomSignatureIsAbsent(t *testing.T) {
	tx, err := Parse(hexutil.MustDecode(unsignedHex))
	require.NoError(t, err)
	assert.Nil(t, tx.CustomSignature)

	_, err = Serialize(tx, nil)
	assert.NoError(t, err)
}

func TestSignedDigest(t *testing.T) {
	digest, err := SignedDigest(transferTx())
	require.NoError(t, err)
	assert.Equal(t, "0x8dab5bf770e684d64358f554ad181cf6c4c5b92d54f45b2b70127efd7061042a", digest.Hex())

	digest, err = SignedDigest(paymasterTx())
	require.NoError(t, err)
	assert.Equal(t, "0x3e936c58df8698b603b5dcfa08d804d8946e68e8a70344d4aad2a55cc7128fed", digest.Hex())
}

func TestTypedData(t *testing.T) {
	td, err := TypedData(transferTx())
	require.NoError(t, err)

	assert.Equal(t, "Transaction", td.PrimaryType)
	assert.Equal(t, "zkSync", *td.Domain.Name)
	assert.Equal(t, "2", *td.Domain.Version)
	assert.Equal(t, int64(270), td.Domain.ChainID.Int64())
	assert.Equal(t, "113", td.Message["txType"])
	assert.Equal(t, "50000", td.Message["gasPerPubdataByteLimit"])
	assert.Equal(t, "0x", td.Message["data"])
	assert.Equal(t, []any{}, td.Message["factoryDeps"])
	assert.Len(t, td.Types["EIP712Domain"], 3)

	digest, err := td.Hash()
	require.NoError(t, err)
	assert.Equal(t, "0x8dab5bf770e684d64358f554ad181cf6c4c5b92d54f45b2b70127efd7061042a", digest.Hex())
}

func TestSignAndHash(t *testing.T) {
	key, err := crypto.HexToECDSA("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	require.NoError(t, err)

	tx := transferTx()
	from := crypto.PubkeyToAddress(key.PublicKey)
	tx.From = &from

	sig, err := Sign(tx, key)
	require.NoError(t, err)

	digest, err := SignedDigest(tx)
	require.NoError(t, err)
	signer, err := sig.Recover(digest)
	require.NoError(t, err)
	assert.Equal(t, from, signer)

	raw, err := Serialize(tx, sig)
	require.NoError(t, err)

	parsed, err := Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, parsed.Hash)

	want, err := TxHash(tx, sig)
	require.NoError(t, err)
	assert.Equal(t, want, *parsed.Hash)
	assert.Equal(t, *sig, *parsed.Signature)
}

func TestTxHashRequiresSignature(t *testing.T) {
	_, err := TxHash(transferTx(), nil)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHashBytecode(t *testing.T) {
	hash, err := HashBytecode(testBytecode())
	require.NoError(t, err)
	assert.Equal(t, "0x0100000166c4336691125448bbb25b4ff412a49c732db2c8abc1b8581bd710dd", hash.Hex())

	three := make([]byte, 96)
	for i := range three {
		three[i] = byte(i)
	}
	hash, err = HashBytecode(three)
	require.NoError(t, err)
	assert.Equal(t, "0x010000038fa567f5dcf319fa3434da6abbc1d595f426372666447f09cc5a87dc", hash.Hex())

	_, err = HashBytecode(make([]byte, 33))
	assert.ErrorIs(t, err, ErrBytecodeLength)
	_, err = HashBytecode(make([]byte, 64))
	assert.ErrorIs(t, err, ErrBytecodeEvenWords)
	_, err = HashBytecode(make([]byte, MaxBytecodeSize+32))
	assert.ErrorIs(t, err, ErrBytecodeTooLong)
}

func TestTransactionJSON(t *testing.T) {
	tx := paymasterTx()
	out, err := json.Marshal(tx)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.Equal(t, "0x71", fields["type"])
	assert.Equal(t, "0x10e", fields["chainId"])
	custom := fields["customData"].(map[string]any)
	assert.Equal(t, "0xabcdef", custom["customSignature"])

	var decoded Transaction
	require.NoError(t, json.Unmarshal(out, &decoded))

	want, err := Serialize(tx, nil)
	require.NoError(t, err)
	got, err := Serialize(&decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTransactionJSONDecimalNumbers(t *testing.T) {
	input := `{
		"type": "0x71",
		"nonce": "0",
		"value": "1000000",
		"gasLimit": "0x0",
		"to": "0xa61464658AfeAf65CccaaFD3a512b69A83B77618",
		"from": "0x36615Cf349d7F6344891B1e7CA7C72883F5dc049",
		"data": "0x",
		"chainId": "270"
	}`

	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(input), &tx))

	raw, err := Serialize(&tx, nil)
	require.NoError(t, err)
	assert.Equal(t, unsignedHex, hexutil.Encode(raw))
}
