package external_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/bnb-chain/block-feed/external"
	"github.com/bnb-chain/block-feed/external/fakenode"
)

func dial(t *testing.T, node *fakenode.Node) external.IClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := external.NewClient(ctx, node.URL())
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestBlockNumber(t *testing.T) {
	node := fakenode.New()
	defer node.Close()
	node.Mine(5)

	head, err := dial(t, node).BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(4), head)
}

func TestGetBlockByNumberDecodesFullTransactions(t *testing.T) {
	node := fakenode.New()
	defer node.Close()

	to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	blobFee := (*hexutil.Big)(big.NewInt(3))
	node.PutBlock(fakenode.NewBlock(3,
		&external.RPCTransaction{
			Type:     2,
			From:     common.HexToAddress("0x01"),
			To:       &to,
			Gas:      21000,
			GasPrice: (*hexutil.Big)(big.NewInt(7)),
			Value:    (*hexutil.Big)(big.NewInt(1)),
		},
		&external.RPCTransaction{
			Type:                3,
			From:                common.HexToAddress("0x02"),
			Gas:                 50000,
			Value:               (*hexutil.Big)(big.NewInt(0)),
			Input:               hexutil.Bytes{0xde, 0xad},
			MaxFeePerBlobGas:    blobFee,
			BlobVersionedHashes: []common.Hash{{0x01}, {0x01, 0x02}},
		},
	))

	block, err := dial(t, node).GetBlockByNumber(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, hexutil.Uint64(3), block.Number)
	require.Equal(t, fakenode.BlockHash(3), block.Hash)
	require.Len(t, block.Transactions, 2)

	first := block.Transactions[0]
	require.Equal(t, to, *first.To)
	require.Equal(t, int64(7), first.GasPrice.ToInt().Int64())

	second := block.Transactions[1]
	require.Nil(t, second.To)
	require.Len(t, second.BlobVersionedHashes, 2)
	require.Equal(t, hexutil.Bytes{0xde, 0xad}, second.Input)
	require.Equal(t, int64(3), second.MaxFeePerBlobGas.ToInt().Int64())
}

func TestGetBlockByNumberNotFound(t *testing.T) {
	node := fakenode.New()
	defer node.Close()

	_, err := dial(t, node).GetBlockByNumber(context.Background(), 42)
	require.ErrorIs(t, err, external.ErrBlockNotFound)
}

func TestGetBlockByNumberRPCError(t *testing.T) {
	node := fakenode.New()
	defer node.Close()
	node.Mine(2)
	node.FailBlock(1)

	_, err := dial(t, node).GetBlockByNumber(context.Background(), 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, external.ErrBlockNotFound)
}

func TestGetBlockReceipts(t *testing.T) {
	node := fakenode.New()
	defer node.Close()
	node.SetReceipts(9, []*external.RPCReceipt{{
		TransactionIndex: 0,
		L1Fee:            (*hexutil.Big)(big.NewInt(1234)),
	}})

	client := dial(t, node)
	receipts, err := client.GetBlockReceipts(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, int64(1234), receipts[0].L1Fee.ToInt().Int64())
	require.Nil(t, receipts[0].L1GasUsed)

	_, err = client.GetBlockReceipts(context.Background(), 10)
	require.ErrorIs(t, err, external.ErrBlockNotFound)
}
