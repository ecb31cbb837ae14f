package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethaccount/zksync/zktx"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Network selects the chain a ProviderService call goes to.
type Network string

const (
	NetworkL1 Network = "l1"
	NetworkL2 Network = "l2"
)

// ChainProvider is the part of the L2 node the signer depends on.
type ChainProvider interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, tx *zktx.Transaction) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
}

type ProviderConfig struct {
	L1RPCURL string
	L2RPCURL string
}

type ProviderService struct {
	rpcURLs    map[Network]string
	clientPool map[Network]*ethclient.Client
	mu         sync.RWMutex
}

var _ ChainProvider = (*ProviderService)(nil)

func NewProviderService(config ProviderConfig) *ProviderService {
	return &ProviderService{
		rpcURLs: map[Network]string{
			NetworkL1: config.L1RPCURL,
			NetworkL2: config.L2RPCURL,
		},
		clientPool: make(map[Network]*ethclient.Client),
	}
}

func (p *ProviderService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "provider").Logger()
	return &l
}

// GetClient returns the pooled client of network, dialing it on first use.
func (p *ProviderService) GetClient(ctx context.Context, network Network) (*ethclient.Client, error) {
	p.mu.RLock()
	if client, exists := p.clientPool[network]; exists {
		p.mu.RUnlock()
		return client, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check pattern
	if client, exists := p.clientPool[network]; exists {
		return client, nil
	}

	rpcURL := p.rpcURLs[network]
	if rpcURL == "" {
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, fmt.Errorf("no rpc url configured for network %q", network))
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		p.logger(ctx).Error().Err(err).Str("network", string(network)).Msg("failed to dial rpc")
		return nil, remoteError(err, "failed to connect to node")
	}

	if p.clientPool == nil {
		p.clientPool = make(map[Network]*ethclient.Client)
	}
	p.clientPool[network] = client

	return client, nil
}

// Close closes all client connections and cleans up the connection pool
func (p *ProviderService) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, client := range p.clientPool {
		client.Close()
	}
	p.clientPool = nil
}

// ChainID returns the chain id of the L2 node.
func (p *ProviderService) ChainID(ctx context.Context) (*big.Int, error) {
	client, err := p.GetClient(ctx, NetworkL2)
	if err != nil {
		return nil, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		p.logger(ctx).Error().Err(err).Msg("failed to get chain id")
		return nil, remoteError(err, "failed to get chain id")
	}
	return chainID, nil
}

func (p *ProviderService) PendingNonce(ctx context.Context, account common.Address) (uint64, error) {
	client, err := p.GetClient(ctx, NetworkL2)
	if err != nil {
		return 0, err
	}
	nonce, err := client.PendingNonceAt(ctx, account)
	if err != nil {
		p.logger(ctx).Error().Err(err).Str("account", account.Hex()).Msg("failed to get pending nonce")
		return 0, remoteError(err, "failed to get nonce")
	}
	return nonce, nil
}

func (p *ProviderService) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	client, err := p.GetClient(ctx, NetworkL2)
	if err != nil {
		return nil, err
	}
	price, err := client.SuggestGasPrice(ctx)
	if err != nil {
		p.logger(ctx).Error().Err(err).Msg("failed to get gas price")
		return nil, remoteError(err, "failed to get gas price")
	}
	return price, nil
}

// EstimateGas estimates the gas limit of tx as a plain call. The zkSync
// extension fields are not part of the estimate.
func (p *ProviderService) EstimateGas(ctx context.Context, tx *zktx.Transaction) (uint64, error) {
	client, err := p.GetClient(ctx, NetworkL2)
	if err != nil {
		return 0, err
	}

	msg := ethereum.CallMsg{
		To:    tx.To,
		Value: tx.Value,
		Data:  tx.Data,
	}
	if tx.From != nil {
		msg.From = *tx.From
	}

	gas, err := client.EstimateGas(ctx, msg)
	if err != nil {
		p.logger(ctx).Error().Err(err).Msg("failed to estimate gas")
		return 0, remoteError(err, "failed to estimate gas")
	}
	return gas, nil
}

// SendRawTransaction submits a serialized envelope with eth_sendRawTransaction.
func (p *ProviderService) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	client, err := p.GetClient(ctx, NetworkL2)
	if err != nil {
		return common.Hash{}, err
	}

	var hash common.Hash
	if err := client.Client().CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		p.logger(ctx).Error().Err(err).Msg("failed to send raw transaction")
		return common.Hash{}, remoteError(err, "failed to send transaction")
	}

	p.logger(ctx).Info().Str("tx_hash", hash.Hex()).Msg("transaction sent")
	return hash, nil
}

// CallContract executes a read-only call on network at the latest block.
func (p *ProviderService) CallContract(ctx context.Context, network Network, msg ethereum.CallMsg) ([]byte, error) {
	client, err := p.GetClient(ctx, network)
	if err != nil {
		return nil, err
	}
	out, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, remoteError(err, "contract call failed")
	}
	return out, nil
}

func remoteError(err error, msg string) error {
	return domain.NewError(domain.ErrorCodeRemoteProcess, err, domain.WithMsg(msg))
}
