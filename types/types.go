package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BlockPayload is one ingested block, normalized across chains. It is immutable once sent on a stream.
type BlockPayload struct {
	Chain          ChainIdentity `json:"chain"`
	Number         uint64        `json:"number"`
	GasUsed        uint64        `json:"gas_used"`
	GasLimit       uint64        `json:"gas_limit"`
	Timestamp      uint64        `json:"timestamp"`
	TxCount        uint32        `json:"tx_count"`
	BaseFeePerGas  *uint64       `json:"base_fee_per_gas"`
	BlobGasUsed    *uint64       `json:"blob_gas_used"`
	Transactions   []*TxPayload  `json:"transactions"`
	L1OriginNumber *uint64       `json:"l1_origin_number"`
}

// TxPayload is one transaction within a block. TxIndex equals its position in BlockPayload.Transactions.
type TxPayload struct {
	Hash             common.Hash     `json:"hash"`
	TxIndex          int             `json:"tx_index"`
	Gas              uint64          `json:"gas"`
	GasPrice         *big.Int        `json:"gas_price"` // effective price in wei, at most 2^128-1
	ValueEth         float64         `json:"value_eth"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"` // nil for contract creation
	BlobCount        int             `json:"blob_count"`
	MaxFeePerBlobGas *big.Int        `json:"max_fee_per_blob_gas"`
	OpStackFees      *OpStackFees    `json:"op_stack_fees"`
}

// OpStackFees is the L1 data fee breakdown an OP Stack receipt carries. Any field may be missing
// depending on the hardfork the chain runs.
type OpStackFees struct {
	L1Fee         *big.Int `json:"l1_fee"`
	L1GasUsed     *big.Int `json:"l1_gas_used"`
	L1GasPrice    *big.Int `json:"l1_gas_price"`
	L1BlobBaseFee *big.Int `json:"l1_blob_base_fee"`
}

// Validate checks the invariants a payload holds when it leaves a fetcher.
func (b *BlockPayload) Validate() error {
	if int(b.TxCount) != len(b.Transactions) {
		return fmt.Errorf("block %d: tx_count %d but %d transactions", b.Number, b.TxCount, len(b.Transactions))
	}
	for i, tx := range b.Transactions {
		if tx == nil {
			return fmt.Errorf("block %d: transaction %d is null", b.Number, i)
		}
		if tx.TxIndex != i {
			return fmt.Errorf("block %d: transaction %d has tx_index %d", b.Number, i, tx.TxIndex)
		}
	}
	return nil
}

// IsContractCreation reports whether the transaction deploys a contract.
func (t *TxPayload) IsContractCreation() bool {
	return t.To == nil
}
