package syncer

import (
	"github.com/bnb-chain/block-feed/external"
	"github.com/bnb-chain/block-feed/types"
	"github.com/bnb-chain/block-feed/util"
)

// attachOpStackFees copies the L1 fee fields of each receipt onto the transaction with the same hash.
// Receipts without any L1 fee field, such as deposits, leave the transaction untouched.
func attachOpStackFees(payload *types.BlockPayload, receipts []*external.RPCReceipt) int {
	byHash := make(map[string]*external.RPCReceipt, len(receipts))
	for _, r := range receipts {
		if r != nil {
			byHash[r.TransactionHash.Hex()] = r
		}
	}
	attached := 0
	for _, tx := range payload.Transactions {
		r, ok := byHash[tx.Hash.Hex()]
		if !ok {
			continue
		}
		if r.L1Fee == nil && r.L1GasUsed == nil && r.L1GasPrice == nil && r.L1BlobBaseFee == nil {
			continue
		}
		tx.OpStackFees = &types.OpStackFees{
			L1Fee:         util.SaturateUint128(bigOrNil(r.L1Fee)),
			L1GasUsed:     util.SaturateUint128(bigOrNil(r.L1GasUsed)),
			L1GasPrice:    util.SaturateUint128(bigOrNil(r.L1GasPrice)),
			L1BlobBaseFee: util.SaturateUint128(bigOrNil(r.L1BlobBaseFee)),
		}
		attached++
	}
	return attached
}
