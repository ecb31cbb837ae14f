package eip712

import (
	"bytes"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethaccount/zksync/byteutil"
)

var digestPrefix = []byte{0x19, 0x01}

// HashStruct returns the struct hash of value as the named struct of types.
func HashStruct(name string, types Types, value any) (common.Hash, error) {
	enc, err := NewEncoder(types)
	if err != nil {
		return common.Hash{}, err
	}
	return enc.HashStruct(name, value)
}

// Encode returns 0x1901 followed by the domain separator and the struct hash
// of value as the primary type of types.
func Encode(domain Domain, types Types, value any) ([]byte, error) {
	enc, err := NewEncoder(types)
	if err != nil {
		return nil, err
	}
	return encodeDigestInput(domain, enc, enc.PrimaryType(), value)
}

// Hash returns the EIP-712 signing digest, keccak256 of Encode.
func Hash(domain Domain, types Types, value any) (common.Hash, error) {
	payload, err := Encode(domain, types, value)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(payload), nil
}

// Digest returns the signing digest of value as the primary type under domain.
func (e *Encoder) Digest(domain Domain, value any) (common.Hash, error) {
	payload, err := encodeDigestInput(domain, e, e.PrimaryType(), value)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(payload), nil
}

func encodeDigestInput(domain Domain, enc *Encoder, primaryType string, value any) ([]byte, error) {
	domainSeparator, err := HashDomain(domain)
	if err != nil {
		return nil, err
	}
	structHash, err := enc.HashStruct(primaryType, value)
	if err != nil {
		return nil, err
	}
	return byteutil.Concat(digestPrefix, domainSeparator.Bytes(), structHash.Bytes()), nil
}

// TypedData is the JSON document exchanged with wallets for signing. Types
// may carry the EIP712Domain declaration; it is ignored when hashing since
// the domain type is derived from Domain.
type TypedData struct {
	Types       Types          `json:"types"`
	PrimaryType string         `json:"primaryType"`
	Domain      Domain         `json:"domain"`
	Message     map[string]any `json:"message"`
}

// Encode returns the digest input of td. When PrimaryType is empty the
// derived primary type is used.
func (td *TypedData) Encode() ([]byte, error) {
	types := td.Types
	if _, ok := types[DomainTypeName]; ok {
		types = types.Copy()
		delete(types, DomainTypeName)
	}
	enc, err := NewEncoder(types)
	if err != nil {
		return nil, err
	}
	primaryType := td.PrimaryType
	if primaryType == "" {
		primaryType = enc.PrimaryType()
	}
	return encodeDigestInput(td.Domain, enc, primaryType, td.Message)
}

// Hash returns the signing digest of td.
func (td *TypedData) Hash() (common.Hash, error) {
	payload, err := td.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(payload), nil
}

// UnmarshalJSON keeps message numbers exact instead of decoding them as
// float64.
func (td *TypedData) UnmarshalJSON(input []byte) error {
	type typedData TypedData
	var out typedData
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return err
	}
	*td = TypedData(out)
	return nil
}
