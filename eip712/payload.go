package eip712

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ethaccount/zksync/byteutil"
)

// GetPayload validates domain, types and value, then returns the JSON-ready
// document a wallet's eth_signTypedData_v4 expects. Message leaves are
// rendered as hex for bytes types, decimal strings for integers and
// lowercase hex for addresses.
func GetPayload(domain Domain, types Types, value any) (*TypedData, error) {
	if _, err := domain.render(); err != nil {
		return nil, err
	}
	if _, err := HashDomain(domain); err != nil {
		return nil, err
	}
	if _, ok := types[DomainTypeName]; ok {
		return nil, ErrReservedDomainType
	}

	enc, err := NewEncoder(types)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Encode(value); err != nil {
		return nil, err
	}

	message, err := enc.Visit(value, renderLeaf)
	if err != nil {
		return nil, err
	}

	outTypes := enc.Types()
	outTypes[DomainTypeName] = domain.Fields()

	return &TypedData{
		Types:       outTypes,
		PrimaryType: enc.PrimaryType(),
		Domain:      domain,
		Message:     message.(map[string]any),
	}, nil
}

func renderLeaf(typ string, value any) (any, error) {
	switch {
	case strings.HasPrefix(typ, "bytes"):
		b, err := byteutil.ToBytes(value)
		if err != nil {
			return nil, err
		}
		return hexutil.Encode(b), nil
	case strings.HasPrefix(typ, "int"), strings.HasPrefix(typ, "uint"):
		n, err := byteutil.ToBigInt(value)
		if err != nil {
			return nil, err
		}
		return n.String(), nil
	case typ == "address":
		addr, err := byteutil.ToAddress(value)
		if err != nil {
			return nil, err
		}
		return strings.ToLower(addr.Hex()), nil
	case typ == "bool", typ == "string":
		return value, nil
	}
	return nil, &UnknownTypeError{Type: typ}
}
