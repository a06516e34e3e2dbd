package syncer

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bnb-chain/block-feed/external"
)

// L1BlockPredeploy is the L1Block system contract every OP Stack L1 attributes deposit targets.
var L1BlockPredeploy = common.HexToAddress("0x4200000000000000000000000000000000000015")

const (
	l1NumberOffset = 28
	l1NumberEnd    = 36
)

// L1OriginNumber reads the L1 block number out of an L1 attributes deposit. Bytes 28..35 of the calldata hold it
// big-endian in both the ABI-encoded (pre-Ecotone) and the packed (Ecotone and later) layout.
func L1OriginNumber(to *common.Address, input []byte) (uint64, bool) {
	if to == nil || *to != L1BlockPredeploy {
		return 0, false
	}
	if len(input) < l1NumberEnd {
		return 0, false
	}
	return binary.BigEndian.Uint64(input[l1NumberOffset:l1NumberEnd]), true
}

// blockL1Origin looks only at the first transaction of the block.
func blockL1Origin(txs []*external.RPCTransaction) *uint64 {
	if len(txs) == 0 || txs[0] == nil {
		return nil
	}
	n, ok := L1OriginNumber(txs[0].To, txs[0].Input)
	if !ok {
		return nil
	}
	return &n
}
