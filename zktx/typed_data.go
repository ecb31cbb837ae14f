package zktx

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethaccount/zksync/byteutil"
	"github.com/ethaccount/zksync/eip712"
	"github.com/ethaccount/zksync/signature"
)

// Domain name and version of the zkSync transaction typed data.
const (
	DomainName    = "zkSync"
	DomainVersion = "2"
)

// TransactionTypes is the EIP-712 declaration of a zkSync transaction.
var TransactionTypes = eip712.Types{
	"Transaction": {
		{Name: "txType", Type: "uint256"},
		{Name: "from", Type: "uint256"},
		{Name: "to", Type: "uint256"},
		{Name: "gasLimit", Type: "uint256"},
		{Name: "gasPerPubdataByteLimit", Type: "uint256"},
		{Name: "maxFeePerGas", Type: "uint256"},
		{Name: "maxPriorityFeePerGas", Type: "uint256"},
		{Name: "paymaster", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "value", Type: "uint256"},
		{Name: "data", Type: "bytes"},
		{Name: "factoryDeps", Type: "bytes32[]"},
		{Name: "paymasterInput", Type: "bytes"},
	},
}

var transactionEncoder *eip712.Encoder

func init() {
	enc, err := eip712.NewEncoder(TransactionTypes)
	if err != nil {
		panic(fmt.Sprintf("invalid transaction types: %v", err))
	}
	transactionEncoder = enc
}

// Domain returns the typed-data domain for chainID.
func Domain(chainID *big.Int) eip712.Domain {
	return eip712.NewDomain(DomainName, DomainVersion, chainID)
}

// SignInput returns the Transaction struct value signed by the sender. An
// absent recipient is encoded as zero.
func SignInput(tx *Transaction) (map[string]any, error) {
	if tx.From == nil {
		return nil, ErrMissingFrom
	}

	to := new(big.Int)
	if tx.To != nil {
		to.SetBytes(tx.To.Bytes())
	}

	paymaster := new(big.Int)
	paymasterInput := []byte{}
	if tx.PaymasterParams != nil {
		paymaster.SetBytes(tx.PaymasterParams.Paymaster.Bytes())
		paymasterInput = nonNil(tx.PaymasterParams.PaymasterInput)
	}

	factoryDeps := make([]any, len(tx.FactoryDeps))
	for i, dep := range tx.FactoryDeps {
		h, err := HashBytecode(dep)
		if err != nil {
			return nil, err
		}
		factoryDeps[i] = h
	}

	return map[string]any{
		"txType":                 big.NewInt(TxType),
		"from":                   new(big.Int).SetBytes(tx.From.Bytes()),
		"to":                     to,
		"gasLimit":               orZero(tx.GasLimit),
		"gasPerPubdataByteLimit": tx.EffectiveGasPerPubdata(),
		"maxFeePerGas":           tx.EffectiveMaxFeePerGas(),
		"maxPriorityFeePerGas":   tx.EffectiveMaxPriorityFeePerGas(),
		"paymaster":              paymaster,
		"nonce":                  orZero(tx.Nonce),
		"value":                  orZero(tx.Value),
		"data":                   nonNil(tx.Data),
		"factoryDeps":            factoryDeps,
		"paymasterInput":         paymasterInput,
	}, nil
}

// TypedData returns the eth_signTypedData_v4 document for tx.
func TypedData(tx *Transaction) (*eip712.TypedData, error) {
	if tx.ChainID == nil {
		return nil, ErrMissingChainID
	}
	input, err := SignInput(tx)
	if err != nil {
		return nil, err
	}
	return eip712.GetPayload(Domain(tx.ChainID), TransactionTypes, input)
}

// SignedDigest returns the EIP-712 digest the sender signs.
func SignedDigest(tx *Transaction) (common.Hash, error) {
	if tx.ChainID == nil {
		return common.Hash{}, ErrMissingChainID
	}
	input, err := SignInput(tx)
	if err != nil {
		return common.Hash{}, err
	}
	return transactionEncoder.Digest(Domain(tx.ChainID), input)
}

// TxHash returns the transaction hash: keccak256 of the signed digest
// followed by keccak256 of the signature bytes. The custom signature takes
// precedence over sig.
func TxHash(tx *Transaction, sig *signature.Signature) (common.Hash, error) {
	digest, err := SignedDigest(tx)
	if err != nil {
		return common.Hash{}, err
	}

	var sigBytes []byte
	switch {
	case len(tx.CustomSignature) > 0:
		sigBytes = tx.CustomSignature
	case sig != nil:
		r, s := sig.R(), sig.S()
		sigBytes = byteutil.Concat(r[:], s[:], []byte{sig.YParity()})
	default:
		return common.Hash{}, fmt.Errorf("%w: no signature provided", ErrInvalidSignature)
	}

	return crypto.Keccak256Hash(digest.Bytes(), crypto.Keccak256(sigBytes)), nil
}

// Sign signs the digest of tx with key.
func Sign(tx *Transaction, key *ecdsa.PrivateKey) (*signature.Signature, error) {
	digest, err := SignedDigest(tx)
	if err != nil {
		return nil, err
	}
	sig, err := signature.Sign(digest, key)
	if err != nil {
		return nil, err
	}
	return &sig, nil
}
