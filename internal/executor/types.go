package executor

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/axiomesh/axiom-custody/internal/ledger"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

type Executor interface {
	// ApplyTransaction runs tx in the open block, opening one if needed
	ApplyTransaction(ctx context.Context, tx *Transaction) (*types.Receipt, error)

	// Call runs a read only call against the latest state, all changes are dropped
	Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error)

	// Commit persists the open block
	Commit() (*ledger.ChainMeta, error)

	CurrentHeight() uint64

	// GetNonce returns the nonce the next transaction of addr must carry
	GetNonce(addr common.Address) uint64

	SubscribeLogsEvent(chan<- []*types.EvmLog) event.Subscription

	Close()
}

// Transaction is a call sent by an externally owned account.
type Transaction struct {
	From  common.Address
	To    common.Address
	Nonce uint64
	Value *big.Int
	Data  []byte
}

func (tx *Transaction) Hash() common.Hash {
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	// every field has a canonical rlp encoding
	encoded, _ := rlp.EncodeToBytes([]any{tx.From, tx.To, tx.Nonce, value, tx.Data})
	return crypto.Keccak256Hash(encoded)
}
