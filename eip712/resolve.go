package eip712

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/zksync/byteutil"
)

// NameResolver maps a human-readable name to an address. A zero address
// means the name is not configured.
type NameResolver interface {
	ResolveName(ctx context.Context, name string) (common.Address, error)
}

// NameResolverFunc adapts a function to NameResolver.
type NameResolverFunc func(ctx context.Context, name string) (common.Address, error)

// ResolveName calls f.
func (f NameResolverFunc) ResolveName(ctx context.Context, name string) (common.Address, error) {
	return f(ctx, name)
}

// ResolveNames replaces every address leaf of value, and the domain's
// verifyingContract, that is not already a 20-byte hex string with the
// address its name resolves to. Each distinct name is resolved once, in
// first-seen order. Errors from the resolver are returned unchanged.
func ResolveNames(ctx context.Context, domain Domain, types Types, value any, resolver NameResolver) (Domain, any, error) {
	enc, err := NewEncoder(types)
	if err != nil {
		return Domain{}, nil, err
	}

	var names []string
	seen := make(map[string]struct{})
	collect := func(name string) {
		if byteutil.IsHexString(name, common.AddressLength) {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if domain.VerifyingContract != nil {
		collect(*domain.VerifyingContract)
	}
	_, err = enc.Visit(value, func(typ string, v any) (any, error) {
		if s, ok := v.(string); ok && typ == "address" {
			collect(s)
		}
		return v, nil
	})
	if err != nil {
		return Domain{}, nil, err
	}

	resolved := make(map[string]string, len(names))
	for _, name := range names {
		addr, err := resolver.ResolveName(ctx, name)
		if err != nil {
			return Domain{}, nil, err
		}
		if addr == (common.Address{}) {
			return Domain{}, nil, &UnresolvedNameError{Name: name}
		}
		resolved[name] = addr.Hex()
	}

	if domain.VerifyingContract != nil {
		if addr, ok := resolved[*domain.VerifyingContract]; ok {
			domain.VerifyingContract = &addr
		}
	}
	out, err := enc.Visit(value, func(typ string, v any) (any, error) {
		if s, ok := v.(string); ok && typ == "address" {
			if addr, ok := resolved[s]; ok {
				return addr, nil
			}
		}
		return v, nil
	})
	if err != nil {
		return Domain{}, nil, err
	}
	return domain, out, nil
}
