//go:build integration

package syncer

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bnb-chain/block-feed/config"
	"github.com/bnb-chain/block-feed/types"
)

const anvilImage = "ghcr.io/foundry-rs/foundry:latest"

// startAnvil runs a local dev node and returns its JSON-RPC URL. The container is removed when the test ends.
func startAnvil(t *testing.T) *url.URL {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        anvilImage,
			Entrypoint:   []string{"anvil"},
			Cmd:          []string{"--host", "0.0.0.0"},
			ExposedPorts: []string{"8545/tcp"},
			WaitingFor:   wait.ForListeningPort("8545/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8545")
	require.NoError(t, err)

	u, err := url.Parse(fmt.Sprintf("http://%s:%s", host, port.Port()))
	require.NoError(t, err)
	return u
}

func TestAnvilGenesisBlock(t *testing.T) {
	rpcURL := startAnvil(t)

	s := NewEVMFetcher(WithPollInterval(200 * time.Millisecond)).Spawn(config.FetcherConfig{Chain: types.Anvil, RPCURL: rpcURL})
	defer s.Close()

	p, err := s.RecvTimeout(30 * time.Second)
	require.NoError(t, err)
	require.Equal(t, uint64(0), p.Number)
	require.Equal(t, uint32(0), p.TxCount)
	require.Nil(t, p.L1OriginNumber)
}

func TestAnvilValueTransfers(t *testing.T) {
	rpcURL := startAnvil(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := rpc.DialContext(ctx, rpcURL.String())
	require.NoError(t, err)
	defer client.Close()

	var accounts []common.Address
	require.NoError(t, client.CallContext(ctx, &accounts, "eth_accounts"))
	require.GreaterOrEqual(t, len(accounts), 2, "anvil pre-funds dev accounts")

	s := NewEVMFetcher(WithPollInterval(200 * time.Millisecond)).Spawn(config.FetcherConfig{Chain: types.Anvil, RPCURL: rpcURL})
	defer s.Close()

	genesis, err := s.RecvTimeout(30 * time.Second)
	require.NoError(t, err)
	require.Equal(t, uint32(0), genesis.TxCount)

	oneEth := (*hexutil.Big)(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	for i := 0; i < 2; i++ {
		var hash common.Hash
		err := client.CallContext(ctx, &hash, "eth_sendTransaction", map[string]interface{}{
			"from":  accounts[0],
			"to":    accounts[1],
			"value": oneEth,
		})
		require.NoError(t, err)
	}

	for {
		p, err := s.RecvTimeout(30 * time.Second)
		require.NoError(t, err)
		if p.TxCount == 0 {
			continue
		}
		require.Len(t, p.Transactions, int(p.TxCount))
		tx := p.Transactions[0]
		require.Equal(t, accounts[0], tx.From)
		require.NotNil(t, tx.To)
		require.Equal(t, accounts[1], *tx.To)
		require.Greater(t, tx.ValueEth, 0.0)
		require.InDelta(t, 1.0, tx.ValueEth, 1e-9)
		return
	}
}
