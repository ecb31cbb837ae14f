package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethaccount/zksync/eip712"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// DefaultENSRegistryAddress is the ENS registry on Ethereum mainnet and its
// testnets.
const DefaultENSRegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

const ensABI = `[
	{"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"node","type":"bytes32"}],"name":"addr","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

var parsedENSABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(ensABI))
	if err != nil {
		panic(fmt.Sprintf("invalid ens abi: %v", err))
	}
	return parsed
}()

// NameCache stores resolved names between calls.
type NameCache interface {
	Get(ctx context.Context, name string) (common.Address, bool, error)
	Set(ctx context.Context, name string, addr common.Address) error
}

// NameResolverService resolves ENS names on L1 through the registry and
// the name's resolver contract.
type NameResolverService struct {
	provider *ProviderService
	cache    NameCache
	registry common.Address
}

var _ eip712.NameResolver = (*NameResolverService)(nil)

// NewNameResolverService returns a resolver using registry. cache may be nil.
func NewNameResolverService(provider *ProviderService, cache NameCache, registry common.Address) *NameResolverService {
	return &NameResolverService{
		provider: provider,
		cache:    cache,
		registry: registry,
	}
}

func (s *NameResolverService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "resolver").Logger()
	return &l
}

// Namehash returns the ENS node of name. Labels are lowercased; no further
// normalization is applied.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node[:], label)
	}
	return node
}

// ResolveName returns the address name points to, or the zero address when
// the name has no resolver or no address record.
func (s *NameResolverService) ResolveName(ctx context.Context, name string) (common.Address, error) {
	logger := s.logger(ctx).With().Str("name", name).Logger()

	if s.cache != nil {
		addr, ok, err := s.cache.Get(ctx, name)
		if err != nil {
			logger.Warn().Err(err).Msg("name cache lookup failed")
		} else if ok {
			logger.Debug().Str("address", addr.Hex()).Msg("name cache hit")
			return addr, nil
		}
	}

	node := Namehash(name)

	resolver, err := s.callAddress(ctx, s.registry, "resolver", node)
	if err != nil {
		logger.Error().Err(err).Msg("failed to query ens registry")
		return common.Address{}, err
	}
	if resolver == (common.Address{}) {
		logger.Debug().Msg("name has no resolver")
		return common.Address{}, nil
	}

	addr, err := s.callAddress(ctx, resolver, "addr", node)
	if err != nil {
		logger.Error().Err(err).Str("resolver", resolver.Hex()).Msg("failed to query ens resolver")
		return common.Address{}, err
	}
	if addr == (common.Address{}) {
		logger.Debug().Str("resolver", resolver.Hex()).Msg("name has no address record")
		return common.Address{}, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, name, addr); err != nil {
			logger.Warn().Err(err).Msg("failed to cache resolved name")
		}
	}

	logger.Info().Str("address", addr.Hex()).Msg("name resolved")
	return addr, nil
}

func (s *NameResolverService) callAddress(ctx context.Context, contract common.Address, method string, node common.Hash) (common.Address, error) {
	calldata, err := parsedENSABI.Pack(method, [32]byte(node))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	out, err := s.provider.CallContract(ctx, NetworkL1, ethereum.CallMsg{
		To:   &contract,
		Data: calldata,
	})
	if err != nil {
		return common.Address{}, err
	}

	unpacked, err := parsedENSABI.Unpack(method, out)
	if err != nil {
		return common.Address{}, remoteError(err, fmt.Sprintf("invalid %s result", method))
	}
	addr, ok := unpacked[0].(common.Address)
	if !ok {
		return common.Address{}, remoteError(fmt.Errorf("unexpected %s result type %T", method, unpacked[0]), fmt.Sprintf("invalid %s result", method))
	}
	return addr, nil
}
