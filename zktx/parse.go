package zktx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ethaccount/zksync/signature"
)

const fieldCount = 16

// Parse decodes a serialized 0x71 transaction. A signed transaction also gets
// its Hash, and its Signature when it carries no custom signature.
func Parse(raw []byte) (*Transaction, error) {
	if len(raw) == 0 || raw[0] != TxType {
		return nil, ErrInvalidType
	}

	var fields []any
	if err := rlp.DecodeBytes(raw[1:], &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, found %d", ErrMalformed, fieldCount, len(fields))
	}

	d := decoder{fields: fields}
	tx := &Transaction{
		Nonce:                d.number(0, "nonce"),
		MaxPriorityFeePerGas: d.number(1, "maxPriorityFeePerGas"),
		MaxFeePerGas:         d.number(2, "maxFeePerGas"),
		GasLimit:             d.number(3, "gasLimit"),
		To:                   d.address(4, "to"),
		Value:                d.number(5, "value"),
		Data:                 d.bytes(6, "data"),
		ChainID:              d.number(10, "chainId"),
		From:                 d.address(11, "from"),
		GasPerPubdata:        d.number(12, "gasPerPubdata"),
		FactoryDeps:          d.byteList(13, "factoryDeps"),
	}
	if customSignature := d.bytes(14, "customSignature"); len(customSignature) > 0 {
		tx.CustomSignature = customSignature
	}

	paymaster := d.list(15, "paymasterParams")
	if d.err != nil {
		return nil, d.err
	}
	switch len(paymaster) {
	case 0:
	case 2:
		pd := decoder{fields: paymaster}
		tx.PaymasterParams = &PaymasterParams{}
		if addr := pd.address(0, "paymaster"); addr != nil {
			tx.PaymasterParams.Paymaster = *addr
		}
		tx.PaymasterParams.PaymasterInput = pd.bytes(1, "paymasterInput")
		if pd.err != nil {
			return nil, pd.err
		}
	default:
		return nil, &PaymasterParamsLengthError{Length: len(paymaster)}
	}

	v := d.number(7, "v")
	r := d.bytes(8, "r")
	s := d.bytes(9, "s")
	if d.err != nil {
		return nil, d.err
	}

	hasCustom := tx.CustomSignature != nil
	if len(r) == 0 && len(s) == 0 && !hasCustom {
		return tx, nil
	}
	if !hasCustom && (!v.IsUint64() || v.Uint64() > 1) {
		return nil, ErrInvalidSignature
	}

	var sig *signature.Signature
	if !hasCustom {
		if len(r) > common.HashLength || len(s) > common.HashLength {
			return nil, ErrInvalidSignature
		}
		parsed := signature.FromValues(common.BytesToHash(r), common.BytesToHash(s), v.Uint64())
		sig = &parsed
		tx.Signature = sig
	}

	hash, err := TxHash(tx, sig)
	if err != nil {
		return nil, err
	}
	tx.Hash = &hash
	return tx, nil
}

// decoder reads positional fields of a decoded RLP list, keeping the first
// error.
type decoder struct {
	fields []any
	err    error
}

func (d *decoder) bytes(i int, name string) []byte {
	if d.err != nil {
		return nil
	}
	b, ok := d.fields[i].([]byte)
	if !ok {
		d.err = fmt.Errorf("%w: %s must be a byte string", ErrMalformed, name)
		return nil
	}
	return b
}

func (d *decoder) number(i int, name string) *big.Int {
	b := d.bytes(i, name)
	if d.err != nil {
		return nil
	}
	if len(b) > 32 {
		d.err = fmt.Errorf("%w: %s exceeds 256 bits", ErrMalformed, name)
		return nil
	}
	return new(big.Int).SetBytes(b)
}

func (d *decoder) address(i int, name string) *common.Address {
	b := d.bytes(i, name)
	if d.err != nil || len(b) == 0 {
		return nil
	}
	if len(b) != common.AddressLength {
		d.err = fmt.Errorf("%w: %s must be 20 bytes", ErrMalformed, name)
		return nil
	}
	addr := common.BytesToAddress(b)
	return &addr
}

func (d *decoder) list(i int, name string) []any {
	if d.err != nil {
		return nil
	}
	l, ok := d.fields[i].([]any)
	if !ok {
		d.err = fmt.Errorf("%w: %s must be a list", ErrMalformed, name)
		return nil
	}
	return l
}

func (d *decoder) byteList(i int, name string) [][]byte {
	items := d.list(i, name)
	if d.err != nil {
		return nil
	}
	out := make([][]byte, len(items))
	for k := range items {
		sub := decoder{fields: items}
		out[k] = sub.bytes(k, name)
		if sub.err != nil {
			d.err = sub.err
			return nil
		}
	}
	return out
}
