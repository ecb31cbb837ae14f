// Package zktx encodes, decodes, hashes and signs zkSync EIP-712
// transactions (type 0x71).
package zktx

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/zksync/signature"
)

// TxType is the EIP-2718 type byte of a zkSync EIP-712 transaction.
const TxType = 0x71

// DefaultGasPerPubdataLimit is used when a transaction does not set GasPerPubdata.
const DefaultGasPerPubdataLimit = 50000

var (
	// ErrMissingChainID indicates serialization of a transaction without a chain id.
	ErrMissingChainID = errors.New("zktx: transaction chainId isn't set")

	// ErrMissingFrom indicates serialization of a transaction without a sender.
	ErrMissingFrom = errors.New("zktx: explicitly providing `from` field is required for EIP712 transactions")

	// ErrEmptyCustomSignature indicates a custom signature that is present but empty.
	ErrEmptyCustomSignature = errors.New("zktx: empty signatures are not supported")

	// ErrInvalidSignature indicates a standard signature whose v is not 0 or 1.
	ErrInvalidSignature = errors.New("zktx: failed to parse signature")

	// ErrInvalidType indicates raw bytes that do not start with the 0x71 type byte.
	ErrInvalidType = errors.New("zktx: not an EIP712 transaction")

	// ErrMalformed indicates an RLP payload that does not have the 16-field layout.
	ErrMalformed = errors.New("zktx: malformed transaction payload")
)

// PaymasterParamsLengthError indicates a paymasterParams list that is neither
// empty nor a (paymaster, input) pair.
type PaymasterParamsLengthError struct {
	Length int
}

func (e *PaymasterParamsLengthError) Error() string {
	return fmt.Sprintf("zktx: invalid paymaster parameters, expected to have length of 2, found %d", e.Length)
}

// PaymasterParams names the contract paying fees for a transaction and the
// input it is called with.
type PaymasterParams struct {
	Paymaster      common.Address
	PaymasterInput []byte
}

// Transaction is a zkSync EIP-712 transaction. Nil numeric fields are
// treated as zero, except ChainID which is required for serialization.
type Transaction struct {
	Nonce                *big.Int
	GasPrice             *big.Int
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             *big.Int
	To                   *common.Address
	From                 *common.Address
	Value                *big.Int
	Data                 []byte
	ChainID              *big.Int

	GasPerPubdata *big.Int
	FactoryDeps   [][]byte
	// CustomSignature replaces the ECDSA signature for account-abstraction
	// senders. nil means absent; a non-nil empty slice is rejected.
	CustomSignature []byte
	PaymasterParams *PaymasterParams

	// Set by Parse.
	Signature *signature.Signature
	Hash      *common.Hash
}

// firstSet returns the first value that is neither nil nor zero.
func firstSet(values ...*big.Int) *big.Int {
	for _, v := range values {
		if v != nil && v.Sign() != 0 {
			return v
		}
	}
	return new(big.Int)
}

// EffectiveMaxFeePerGas returns MaxFeePerGas, falling back to GasPrice and then zero.
func (tx *Transaction) EffectiveMaxFeePerGas() *big.Int {
	return firstSet(tx.MaxFeePerGas, tx.GasPrice)
}

// EffectiveMaxPriorityFeePerGas returns MaxPriorityFeePerGas, falling back to
// the effective max fee.
func (tx *Transaction) EffectiveMaxPriorityFeePerGas() *big.Int {
	return firstSet(tx.MaxPriorityFeePerGas, tx.EffectiveMaxFeePerGas())
}

// EffectiveGasPerPubdata returns GasPerPubdata, falling back to DefaultGasPerPubdataLimit.
func (tx *Transaction) EffectiveGasPerPubdata() *big.Int {
	return firstSet(tx.GasPerPubdata, big.NewInt(DefaultGasPerPubdataLimit))
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
