package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethaccount/zksync/src/domain"
	"github.com/ethaccount/zksync/src/testutil"
	"github.com/ethaccount/zksync/zktx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signerAddress = common.HexToAddress("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")

func newL2Node(t *testing.T) *testutil.RPCServer {
	return testutil.NewRPCServer(t, map[string]testutil.RPCHandler{
		"eth_chainId": func([]json.RawMessage) (interface{}, error) {
			return hexutil.Uint64(324), nil
		},
		"eth_getTransactionCount": func(params []json.RawMessage) (interface{}, error) {
			var account common.Address
			if err := json.Unmarshal(params[0], &account); err != nil {
				return nil, err
			}
			var block string
			if err := json.Unmarshal(params[1], &block); err != nil {
				return nil, err
			}
			if account != signerAddress || block != "pending" {
				return hexutil.Uint64(0), nil
			}
			return hexutil.Uint64(7), nil
		},
		"eth_gasPrice": func([]json.RawMessage) (interface{}, error) {
			return (*hexutil.Big)(big.NewInt(250_000_000)), nil
		},
		"eth_estimateGas": func([]json.RawMessage) (interface{}, error) {
			return hexutil.Uint64(21_000), nil
		},
		"eth_sendRawTransaction": func(params []json.RawMessage) (interface{}, error) {
			var raw hexutil.Bytes
			if err := json.Unmarshal(params[0], &raw); err != nil {
				return nil, err
			}
			tx, err := zktx.Parse(raw)
			if err != nil {
				return nil, err
			}
			if tx.Hash == nil {
				return nil, errors.New("transaction is not signed")
			}
			return tx.Hash, nil
		},
	})
}

func TestProviderService_Queries(t *testing.T) {
	node := newL2Node(t)
	provider := NewProviderService(ProviderConfig{L2RPCURL: node.URL})
	defer provider.Close()
	ctx := context.Background()

	chainID, err := provider.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(324), chainID.Int64())

	nonce, err := provider.PendingNonce(ctx, signerAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)

	gasPrice, err := provider.SuggestGasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250_000_000), gasPrice.Int64())

	to := common.HexToAddress("0xa61464658AfeAf65CccaaFD3a512b69A83B77618")
	gas, err := provider.EstimateGas(ctx, &zktx.Transaction{From: &signerAddress, To: &to, Value: big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, uint64(21_000), gas)
}

func TestProviderService_ClientPool(t *testing.T) {
	node := newL2Node(t)
	provider := NewProviderService(ProviderConfig{L2RPCURL: node.URL})
	defer provider.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	clients := make([]*ethclient.Client, 8)
	for i := range clients {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := provider.GetClient(ctx, NetworkL2)
			if err == nil {
				clients[i] = client
			}
		}(i)
	}
	wg.Wait()

	for _, client := range clients {
		require.NotNil(t, client)
		assert.Same(t, clients[0], client)
	}
}

func TestProviderService_MissingNetwork(t *testing.T) {
	provider := NewProviderService(ProviderConfig{})
	_, err := provider.ChainID(context.Background())
	require.Error(t, err)

	var domainErr domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INTERNAL_PROCESS", domainErr.Name())
}

func TestProviderService_SendRawTransaction(t *testing.T) {
	node := newL2Node(t)
	provider := NewProviderService(ProviderConfig{L2RPCURL: node.URL})
	defer provider.Close()
	ctx := context.Background()

	to := common.HexToAddress("0xa61464658AfeAf65CccaaFD3a512b69A83B77618")
	tx := &zktx.Transaction{
		ChainID: big.NewInt(324),
		From:    &signerAddress,
		To:      &to,
	}

	_, err := provider.SendRawTransaction(ctx, mustSerialize(t, tx))
	require.Error(t, err)
	var domainErr domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "REMOTE_PROCESS_ERROR", domainErr.Name())
	assert.Equal(t, 1, node.Calls("eth_sendRawTransaction"))
}

func mustSerialize(t *testing.T, tx *zktx.Transaction) []byte {
	t.Helper()
	raw, err := zktx.Serialize(tx, nil)
	require.NoError(t, err)
	return raw
}
