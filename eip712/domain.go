package eip712

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ethaccount/zksync/byteutil"
)

// maxSafeInteger is the largest chain id rendered as a plain JSON number.
const maxSafeInteger = 1<<53 - 1

// Domain is the EIP712Domain value. Absent fields are left out of both the
// synthesized domain type and its encoding.
type Domain struct {
	Name              *string
	Version           *string
	ChainID           *big.Int
	VerifyingContract *string
	Salt              *common.Hash
}

// NewDomain returns a domain with name, version and chain id set.
func NewDomain(name, version string, chainID *big.Int) Domain {
	return Domain{
		Name:    &name,
		Version: &version,
		ChainID: new(big.Int).Set(chainID),
	}
}

// Fields returns the EIP712Domain declaration for the fields present in d,
// in the canonical order name, version, chainId, verifyingContract, salt.
func (d Domain) Fields() []Field {
	var fields []Field
	if d.Name != nil {
		fields = append(fields, Field{Name: "name", Type: "string"})
	}
	if d.Version != nil {
		fields = append(fields, Field{Name: "version", Type: "string"})
	}
	if d.ChainID != nil {
		fields = append(fields, Field{Name: "chainId", Type: "uint256"})
	}
	if d.VerifyingContract != nil {
		fields = append(fields, Field{Name: "verifyingContract", Type: "address"})
	}
	if d.Salt != nil {
		fields = append(fields, Field{Name: "salt", Type: "bytes32"})
	}
	return fields
}

// Values returns the present domain fields keyed by their EIP-712 names.
func (d Domain) Values() map[string]any {
	values := make(map[string]any, 5)
	if d.Name != nil {
		values["name"] = *d.Name
	}
	if d.Version != nil {
		values["version"] = *d.Version
	}
	if d.ChainID != nil {
		values["chainId"] = new(big.Int).Set(d.ChainID)
	}
	if d.VerifyingContract != nil {
		values["verifyingContract"] = *d.VerifyingContract
	}
	if d.Salt != nil {
		values["salt"] = *d.Salt
	}
	return values
}

// HashDomain returns the domain separator of d.
func HashDomain(d Domain) (common.Hash, error) {
	enc, err := NewEncoder(Types{DomainTypeName: d.Fields()})
	if err != nil {
		return common.Hash{}, err
	}
	return enc.HashStruct(DomainTypeName, d.Values())
}

// DomainFromMap reads a domain from its JSON object form. Null entries are
// treated as absent.
func DomainFromMap(m map[string]any) (Domain, error) {
	var d Domain
	for key, value := range m {
		if value == nil {
			continue
		}
		switch key {
		case "name", "version":
			s, ok := value.(string)
			if !ok {
				return Domain{}, fmt.Errorf("%w: %s must be a string", ErrInvalidDomainKey, key)
			}
			if key == "name" {
				d.Name = &s
			} else {
				d.Version = &s
			}
		case "chainId":
			n, err := byteutil.ToBigInt(value)
			if err != nil {
				return Domain{}, fmt.Errorf("invalid domain chainId: %w", err)
			}
			if n.Sign() < 0 {
				return Domain{}, fmt.Errorf("%w: negative chainId", ErrOutOfRange)
			}
			d.ChainID = n
		case "verifyingContract":
			switch v := value.(type) {
			case string:
				d.VerifyingContract = &v
			case common.Address:
				s := v.Hex()
				d.VerifyingContract = &s
			default:
				return Domain{}, fmt.Errorf("%w: verifyingContract must be a string", ErrInvalidDomainKey)
			}
		case "salt":
			b, err := byteutil.ToBytes(value)
			if err != nil {
				return Domain{}, fmt.Errorf("invalid domain salt: %w", err)
			}
			if len(b) != common.HashLength {
				return Domain{}, fmt.Errorf("%w: salt must be 32 bytes", ErrLengthMismatch)
			}
			salt := common.BytesToHash(b)
			d.Salt = &salt
		default:
			return Domain{}, fmt.Errorf("%w: %q", ErrInvalidDomainKey, key)
		}
	}
	return d, nil
}

// render returns the JSON-ready form of the domain: chainId as a number
// when it fits in 53 bits and as a hex quantity otherwise, verifyingContract
// lowercased.
func (d Domain) render() (map[string]any, error) {
	out := make(map[string]any, 5)
	if d.Name != nil {
		out["name"] = *d.Name
	}
	if d.Version != nil {
		out["version"] = *d.Version
	}
	if d.ChainID != nil {
		if d.ChainID.IsInt64() && d.ChainID.Int64() <= maxSafeInteger {
			out["chainId"] = d.ChainID.Int64()
		} else {
			out["chainId"] = hexutil.EncodeBig(d.ChainID)
		}
	}
	if d.VerifyingContract != nil {
		addr, err := byteutil.ToAddress(*d.VerifyingContract)
		if err != nil {
			return nil, fmt.Errorf("invalid domain verifyingContract: %w", err)
		}
		out["verifyingContract"] = strings.ToLower(addr.Hex())
	}
	if d.Salt != nil {
		out["salt"] = d.Salt.Hex()
	}
	return out, nil
}

// MarshalJSON renders the present domain fields. A verifyingContract that is
// not yet resolved to an address is emitted as given.
func (d Domain) MarshalJSON() ([]byte, error) {
	out, err := d.render()
	if err != nil {
		out = d.Values()
		if d.ChainID != nil {
			out["chainId"] = hexutil.EncodeBig(d.ChainID)
		}
		if d.Salt != nil {
			out["salt"] = d.Salt.Hex()
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a domain object, accepting chainId as a number, a
// decimal string or a hex quantity.
func (d *Domain) UnmarshalJSON(input []byte) error {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	parsed, err := DomainFromMap(m)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
