// Package fakenode serves a scripted EVM JSON-RPC endpoint over loopback HTTP for tests.
package fakenode

import (
	"encoding/binary"
	"errors"
	"net/http/httptest"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/bnb-chain/block-feed/external"
)

var errInjected = errors.New("injected failure")

type Node struct {
	mu         sync.Mutex
	head       uint64
	blocks     map[uint64]*external.RPCBlock
	receipts   map[uint64][]*external.RPCReceipt
	headFails  int
	failBlocks map[uint64]bool
	headCalls  int
	blockCalls map[uint64]int

	rpcServer *rpc.Server
	server    *httptest.Server
}

func New() *Node {
	n := &Node{
		blocks:     map[uint64]*external.RPCBlock{},
		receipts:   map[uint64][]*external.RPCReceipt{},
		failBlocks: map[uint64]bool{},
		blockCalls: map[uint64]int{},
		rpcServer:  rpc.NewServer(),
	}
	if err := n.rpcServer.RegisterName("eth", &ethService{node: n}); err != nil {
		panic(err)
	}
	n.server = httptest.NewServer(n.rpcServer)
	return n
}

func (n *Node) URL() string {
	return n.server.URL
}

func (n *Node) Close() {
	n.server.CloseClientConnections()
	n.server.Close()
	n.rpcServer.Stop()
}

// BlockHash is the deterministic hash the node gives block number.
func BlockHash(number uint64) common.Hash {
	var h common.Hash
	h[0] = 0xb1
	binary.BigEndian.PutUint64(h[24:], number)
	return h
}

// NewBlock builds a block with the given transactions, filling hashes and indices.
func NewBlock(number uint64, txs ...*external.RPCTransaction) *external.RPCBlock {
	for i, tx := range txs {
		idx := hexutil.Uint64(i)
		tx.TransactionIndex = &idx
		if tx.Hash == (common.Hash{}) {
			var h common.Hash
			h[0] = 0x7a
			binary.BigEndian.PutUint64(h[16:], number)
			binary.BigEndian.PutUint64(h[24:], uint64(i))
			tx.Hash = h
		}
	}
	if txs == nil {
		txs = []*external.RPCTransaction{}
	}
	return &external.RPCBlock{
		Number:       hexutil.Uint64(number),
		Hash:         BlockHash(number),
		ParentHash:   BlockHash(number - 1),
		GasUsed:      hexutil.Uint64(21000 * len(txs)),
		GasLimit:     30_000_000,
		Timestamp:    hexutil.Uint64(1_700_000_000 + 2*number),
		Transactions: txs,
	}
}

// PutBlock stores b and raises the head to its number if needed.
func (n *Node) PutBlock(b *external.RPCBlock) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.blocks[uint64(b.Number)] = b
	if uint64(b.Number) > n.head {
		n.head = uint64(b.Number)
	}
}

// Mine appends count empty blocks on top of the head and returns the new head.
func (n *Node) Mine(count int) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := 0; i < count; i++ {
		next := n.head + 1
		if len(n.blocks) == 0 {
			next = 0
		}
		n.blocks[next] = NewBlock(next)
		n.head = next
	}
	return n.head
}

func (n *Node) Head() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.head
}

// SetHead moves the reported head without touching stored blocks.
func (n *Node) SetHead(head uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.head = head
}

// FailHead makes the next times head queries fail.
func (n *Node) FailHead(times int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.headFails = times
}

// FailBlock makes every fetch of block number fail.
func (n *Node) FailBlock(number uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failBlocks[number] = true
}

// DropBlock forgets block number so fetching it answers null.
func (n *Node) DropBlock(number uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.blocks, number)
}

func (n *Node) SetReceipts(number uint64, receipts []*external.RPCReceipt) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts[number] = receipts
}

func (n *Node) HeadCalls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.headCalls
}

func (n *Node) BlockCalls(number uint64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.blockCalls[number]
}

type ethService struct {
	node *Node
}

func (s *ethService) BlockNumber() (hexutil.Uint64, error) {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	n.headCalls++
	if n.headFails > 0 {
		n.headFails--
		return 0, errInjected
	}
	return hexutil.Uint64(n.head), nil
}

func (s *ethService) GetBlockByNumber(number rpc.BlockNumber, fullTx bool) (*external.RPCBlock, error) {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	num := uint64(number.Int64())
	n.blockCalls[num]++
	if n.failBlocks[num] {
		return nil, errInjected
	}
	if !fullTx {
		return nil, errors.New("fake node only serves full blocks")
	}
	return n.blocks[num], nil
}

func (s *ethService) GetBlockReceipts(number rpc.BlockNumber) ([]*external.RPCReceipt, error) {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.receipts[uint64(number.Int64())], nil
}
