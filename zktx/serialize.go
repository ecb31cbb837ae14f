package zktx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ethaccount/zksync/byteutil"
	"github.com/ethaccount/zksync/signature"
)

// Serialize returns 0x71 followed by the RLP list of the transaction's 16
// fields. Without sig the signature slots carry the chain id and two empty
// strings.
func Serialize(tx *Transaction, sig *signature.Signature) ([]byte, error) {
	if tx.ChainID == nil {
		return nil, ErrMissingChainID
	}
	if tx.From == nil {
		return nil, ErrMissingFrom
	}
	if tx.CustomSignature != nil && len(tx.CustomSignature) == 0 {
		return nil, ErrEmptyCustomSignature
	}

	fields := []any{
		orZero(tx.Nonce),
		tx.EffectiveMaxPriorityFeePerGas(),
		tx.EffectiveMaxFeePerGas(),
		orZero(tx.GasLimit),
		addressOrEmpty(tx),
		orZero(tx.Value),
		nonNil(tx.Data),
	}

	if sig != nil {
		r, s := sig.R(), sig.S()
		fields = append(fields,
			uint64(sig.YParity()),
			byteutil.StripZeros(r[:]),
			byteutil.StripZeros(s[:]),
		)
	} else {
		fields = append(fields, tx.ChainID, []byte{}, []byte{})
	}

	deps := make([][]byte, len(tx.FactoryDeps))
	for i, dep := range tx.FactoryDeps {
		deps[i] = nonNil(dep)
	}

	paymaster := []any{}
	if tx.PaymasterParams != nil {
		paymaster = []any{
			tx.PaymasterParams.Paymaster.Bytes(),
			nonNil(tx.PaymasterParams.PaymasterInput),
		}
	}

	fields = append(fields,
		tx.ChainID,
		tx.From.Bytes(),
		tx.EffectiveGasPerPubdata(),
		deps,
		nonNil(tx.CustomSignature),
		paymaster,
	)

	for _, f := range fields {
		if n, ok := f.(*big.Int); ok && n.Sign() < 0 {
			return nil, fmt.Errorf("failed to encode transaction: negative value %s", n)
		}
	}

	payload, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return append([]byte{TxType}, payload...), nil
}

func addressOrEmpty(tx *Transaction) []byte {
	if tx.To == nil {
		return []byte{}
	}
	return tx.To.Bytes()
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
