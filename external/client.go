package external

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrBlockNotFound = errors.New("the block is not found")
)

type IClient interface {
	// BlockNumber returns the current head height.
	BlockNumber(ctx context.Context) (uint64, error)
	// GetBlockByNumber returns the block with full transaction objects, or ErrBlockNotFound.
	GetBlockByNumber(ctx context.Context, number uint64) (*RPCBlock, error)
	// GetBlockReceipts returns every receipt of the block, or ErrBlockNotFound.
	GetBlockReceipts(ctx context.Context, number uint64) ([]*RPCReceipt, error)
	Close()
}

type Client struct {
	ethClient *ethclient.Client
	rpcClient *rpc.Client
	endpoint  string
}

// NewClient dials the endpoint. HTTP endpoints connect lazily, so a bad host surfaces on the first call.
func NewClient(ctx context.Context, endpoint string) (IClient, error) {
	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return &Client{
		ethClient: ethclient.NewClient(rpcClient),
		rpcClient: rpcClient,
		endpoint:  endpoint,
	}, nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

func (c *Client) GetBlockByNumber(ctx context.Context, number uint64) (*RPCBlock, error) {
	var block *RPCBlock
	if err := c.rpcClient.CallContext(ctx, &block, "eth_getBlockByNumber", hexutil.EncodeUint64(number), true); err != nil {
		return nil, err
	}
	if block == nil {
		return nil, ErrBlockNotFound
	}
	return block, nil
}

func (c *Client) GetBlockReceipts(ctx context.Context, number uint64) ([]*RPCReceipt, error) {
	var receipts []*RPCReceipt
	if err := c.rpcClient.CallContext(ctx, &receipts, "eth_getBlockReceipts", hexutil.EncodeUint64(number)); err != nil {
		return nil, err
	}
	if receipts == nil {
		return nil, ErrBlockNotFound
	}
	return receipts, nil
}

func (c *Client) Close() {
	c.ethClient.Close()
}
