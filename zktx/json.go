package zktx

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/ethaccount/zksync/signature"
)

type paymasterParamsJSON struct {
	Paymaster      common.Address `json:"paymaster"`
	PaymasterInput hexutil.Bytes  `json:"paymasterInput"`
}

type customDataJSON struct {
	GasPerPubdata   *math.HexOrDecimal256 `json:"gasPerPubdata,omitempty"`
	FactoryDeps     []hexutil.Bytes       `json:"factoryDeps,omitempty"`
	CustomSignature *hexutil.Bytes        `json:"customSignature,omitempty"`
	PaymasterParams *paymasterParamsJSON  `json:"paymasterParams,omitempty"`
}

type transactionJSON struct {
	Type                 hexutil.Uint64        `json:"type"`
	Nonce                *math.HexOrDecimal256 `json:"nonce,omitempty"`
	GasPrice             *math.HexOrDecimal256 `json:"gasPrice,omitempty"`
	MaxPriorityFeePerGas *math.HexOrDecimal256 `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *math.HexOrDecimal256 `json:"maxFeePerGas,omitempty"`
	GasLimit             *math.HexOrDecimal256 `json:"gasLimit,omitempty"`
	To                   *common.Address       `json:"to,omitempty"`
	From                 *common.Address       `json:"from,omitempty"`
	Value                *math.HexOrDecimal256 `json:"value,omitempty"`
	Data                 hexutil.Bytes         `json:"data"`
	ChainID              *math.HexOrDecimal256 `json:"chainId,omitempty"`
	CustomData           *customDataJSON       `json:"customData,omitempty"`
	Signature            *signature.Signature  `json:"signature,omitempty"`
	Hash                 *common.Hash          `json:"hash,omitempty"`
}

func toJSONInt(n *big.Int) *math.HexOrDecimal256 {
	if n == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(n))
}

func fromJSONInt(n *math.HexOrDecimal256) *big.Int {
	if n == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(n))
}

// MarshalJSON encodes tx with hex quantities and the zkSync extension
// fields grouped under customData.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	enc := transactionJSON{
		Type:                 TxType,
		Nonce:                toJSONInt(tx.Nonce),
		GasPrice:             toJSONInt(tx.GasPrice),
		MaxPriorityFeePerGas: toJSONInt(tx.MaxPriorityFeePerGas),
		MaxFeePerGas:         toJSONInt(tx.MaxFeePerGas),
		GasLimit:             toJSONInt(tx.GasLimit),
		To:                   tx.To,
		From:                 tx.From,
		Value:                toJSONInt(tx.Value),
		Data:                 nonNil(tx.Data),
		ChainID:              toJSONInt(tx.ChainID),
		Signature:            tx.Signature,
		Hash:                 tx.Hash,
	}

	custom := customDataJSON{GasPerPubdata: toJSONInt(tx.GasPerPubdata)}
	for _, dep := range tx.FactoryDeps {
		custom.FactoryDeps = append(custom.FactoryDeps, dep)
	}
	if tx.CustomSignature != nil {
		cs := hexutil.Bytes(tx.CustomSignature)
		custom.CustomSignature = &cs
	}
	if tx.PaymasterParams != nil {
		custom.PaymasterParams = &paymasterParamsJSON{
			Paymaster:      tx.PaymasterParams.Paymaster,
			PaymasterInput: nonNil(tx.PaymasterParams.PaymasterInput),
		}
	}
	if custom.GasPerPubdata != nil || custom.FactoryDeps != nil || custom.CustomSignature != nil || custom.PaymasterParams != nil {
		enc.CustomData = &custom
	}

	return json.Marshal(enc)
}

// UnmarshalJSON decodes the form written by MarshalJSON. Numbers may be hex
// quantities or decimal strings.
func (tx *Transaction) UnmarshalJSON(input []byte) error {
	var dec transactionJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Type != 0 && dec.Type != TxType {
		return fmt.Errorf("%w: type %d", ErrInvalidType, uint64(dec.Type))
	}

	*tx = Transaction{
		Nonce:                fromJSONInt(dec.Nonce),
		GasPrice:             fromJSONInt(dec.GasPrice),
		MaxPriorityFeePerGas: fromJSONInt(dec.MaxPriorityFeePerGas),
		MaxFeePerGas:         fromJSONInt(dec.MaxFeePerGas),
		GasLimit:             fromJSONInt(dec.GasLimit),
		To:                   dec.To,
		From:                 dec.From,
		Value:                fromJSONInt(dec.Value),
		Data:                 dec.Data,
		ChainID:              fromJSONInt(dec.ChainID),
		Signature:            dec.Signature,
		Hash:                 dec.Hash,
	}

	if dec.CustomData != nil {
		tx.GasPerPubdata = fromJSONInt(dec.CustomData.GasPerPubdata)
		for _, dep := range dec.CustomData.FactoryDeps {
			tx.FactoryDeps = append(tx.FactoryDeps, dep)
		}
		if dec.CustomData.CustomSignature != nil {
			tx.CustomSignature = nonNil(*dec.CustomData.CustomSignature)
		}
		if pp := dec.CustomData.PaymasterParams; pp != nil {
			tx.PaymasterParams = &PaymasterParams{
				Paymaster:      pp.Paymaster,
				PaymasterInput: pp.PaymasterInput,
			}
		}
	}
	return nil
}
