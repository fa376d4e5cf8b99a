package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// EvmLog is an event emitted by a contract during a transaction.
type EvmLog struct {
	Address          common.Address `json:"address"`
	Topics           []common.Hash  `json:"topics"`
	Data             []byte         `json:"data"`
	BlockNumber      uint64         `json:"block_number"`
	TransactionHash  common.Hash    `json:"transaction_hash"`
	TransactionIndex uint64         `json:"transaction_index"`
	LogIndex         uint64         `json:"log_index"`
	Removed          bool           `json:"removed"`
}

func (l *EvmLog) String() string {
	return fmt.Sprintf("{address: %s, topics: %d, data: %x}", l.Address.Hex(), len(l.Topics), l.Data)
}

// Receipt is the result of applying a transaction to the state ledger.
type Receipt struct {
	TxHash      common.Hash `json:"tx_hash"`
	BlockNumber uint64      `json:"block_number"`
	Status      uint64      `json:"status"`
	Ret         []byte      `json:"ret"`
	Logs        []*EvmLog   `json:"logs"`
	Err         string      `json:"err,omitempty"`
}

const (
	ReceiptFailed  uint64 = 0
	ReceiptSuccess uint64 = 1
)

func (r *Receipt) IsSuccess() bool {
	return r.Status == ReceiptSuccess
}
