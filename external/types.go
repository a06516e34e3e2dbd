package external

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RPCBlock is the eth_getBlockByNumber response with full transaction objects. It is decoded by hand rather
// than through ethclient so that OP Stack deposit transactions (type 0x7e) are accepted.
type RPCBlock struct {
	Number        hexutil.Uint64    `json:"number"`
	Hash          common.Hash       `json:"hash"`
	ParentHash    common.Hash       `json:"parentHash"`
	GasUsed       hexutil.Uint64    `json:"gasUsed"`
	GasLimit      hexutil.Uint64    `json:"gasLimit"`
	Timestamp     hexutil.Uint64    `json:"timestamp"`
	BaseFeePerGas *hexutil.Big      `json:"baseFeePerGas,omitempty"`
	BlobGasUsed   *hexutil.Uint64   `json:"blobGasUsed,omitempty"`
	Transactions  []*RPCTransaction `json:"transactions"`
}

type RPCTransaction struct {
	Hash                 common.Hash     `json:"hash"`
	Type                 hexutil.Uint64  `json:"type"`
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to"`
	Gas                  hexutil.Uint64  `json:"gas"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerBlobGas     *hexutil.Big    `json:"maxFeePerBlobGas,omitempty"`
	BlobVersionedHashes  []common.Hash   `json:"blobVersionedHashes,omitempty"`
	Value                *hexutil.Big    `json:"value"`
	Input                hexutil.Bytes   `json:"input"`
	TransactionIndex     *hexutil.Uint64 `json:"transactionIndex,omitempty"`
}

// RPCReceipt carries the fields of an OP Stack receipt the feed reads. L1 fee fields are absent on L1 chains.
type RPCReceipt struct {
	TransactionHash  common.Hash    `json:"transactionHash"`
	TransactionIndex hexutil.Uint64 `json:"transactionIndex"`
	L1Fee            *hexutil.Big   `json:"l1Fee,omitempty"`
	L1GasUsed        *hexutil.Big   `json:"l1GasUsed,omitempty"`
	L1GasPrice       *hexutil.Big   `json:"l1GasPrice,omitempty"`
	L1BlobBaseFee    *hexutil.Big   `json:"l1BlobBaseFee,omitempty"`
}
