package syncer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/bnb-chain/block-feed/external"
	"github.com/bnb-chain/block-feed/types"
	"github.com/bnb-chain/block-feed/util"
)

// ToBlockPayload normalizes an RPC block. The L1 origin is derived only for OP Stack chains.
func ToBlockPayload(chain types.ChainIdentity, block *external.RPCBlock) *types.BlockPayload {
	var baseFee *big.Int
	if block.BaseFeePerGas != nil {
		baseFee = block.BaseFeePerGas.ToInt()
	}

	txs := make([]*types.TxPayload, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		if tx == nil {
			continue
		}
		txs = append(txs, ToTxPayload(len(txs), tx, baseFee))
	}

	payload := &types.BlockPayload{
		Chain:         chain,
		Number:        uint64(block.Number),
		GasUsed:       uint64(block.GasUsed),
		GasLimit:      uint64(block.GasLimit),
		Timestamp:     uint64(block.Timestamp),
		TxCount:       uint32(len(txs)),
		BaseFeePerGas: util.BigToUint64Saturating(baseFee),
		Transactions:  txs,
	}
	if block.BlobGasUsed != nil {
		v := uint64(*block.BlobGasUsed)
		payload.BlobGasUsed = &v
	}
	if chain.IsOpStack() {
		payload.L1OriginNumber = blockL1Origin(block.Transactions)
	}
	return payload
}

// ToTxPayload normalizes one transaction found at position index of its block.
func ToTxPayload(index int, tx *external.RPCTransaction, baseFee *big.Int) *types.TxPayload {
	payload := &types.TxPayload{
		Hash:             tx.Hash,
		TxIndex:          index,
		Gas:              uint64(tx.Gas),
		GasPrice:         util.SaturateUint128(effectiveGasPrice(tx, baseFee)),
		ValueEth:         util.WeiToEth(bigOrNil(tx.Value)),
		From:             tx.From,
		BlobCount:        len(tx.BlobVersionedHashes),
		MaxFeePerBlobGas: util.SaturateUint128(bigOrNil(tx.MaxFeePerBlobGas)),
	}
	if tx.To != nil {
		to := *tx.To
		payload.To = &to
	}
	return payload
}

// effectiveGasPrice prefers the node-reported gasPrice, which mined dynamic fee transactions carry as the price
// actually paid. Without it the price is min(maxFee, baseFee+tip), and zero when that cannot be computed.
func effectiveGasPrice(tx *external.RPCTransaction, baseFee *big.Int) *big.Int {
	if tx.GasPrice != nil {
		return tx.GasPrice.ToInt()
	}
	if tx.MaxFeePerGas == nil || baseFee == nil {
		return new(big.Int)
	}
	price := new(big.Int).Set(baseFee)
	if tx.MaxPriorityFeePerGas != nil {
		price.Add(price, tx.MaxPriorityFeePerGas.ToInt())
	}
	if maxFee := tx.MaxFeePerGas.ToInt(); price.Cmp(maxFee) > 0 {
		price.Set(maxFee)
	}
	return price
}

func bigOrNil(v *hexutil.Big) *big.Int {
	if v == nil {
		return nil
	}
	return v.ToInt()
}
