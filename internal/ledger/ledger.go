package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-custody/pkg/types"
)

// StateLedger is the journaled account state the native contracts run on.
type StateLedger interface {
	StateAccessor

	AddLog(log *types.EvmLog)

	GetLogs(txHash common.Hash) []*types.EvmLog

	// SetTxContext sets the transaction that following logs belong to
	SetTxContext(txHash common.Hash, txIndex int)

	// PrepareBlock sets the height and timestamp of the block being built
	PrepareBlock(height uint64, blockTime uint64)

	// Finalise drops the journal, state changes can no longer be reverted
	Finalise()

	// Commit flushes dirty accounts into the backend storage
	Commit() (*ChainMeta, error)

	ChainMeta() *ChainMeta

	// Close release resource
	Close()
}

// StateAccessor manipulates the state data
type StateAccessor interface {
	// GetOrCreateAccount
	GetOrCreateAccount(common.Address) IAccount

	// GetAccount returns nil when the account does not exist
	GetAccount(common.Address) IAccount

	// GetBalance
	GetBalance(common.Address) *big.Int

	// SetBalance
	SetBalance(common.Address, *big.Int)

	// SubBalance
	SubBalance(common.Address, *big.Int)

	// AddBalance
	AddBalance(common.Address, *big.Int)

	// GetState
	GetState(common.Address, []byte) (bool, []byte)

	// SetState
	SetState(common.Address, []byte, []byte)

	// SetCode
	SetCode(common.Address, []byte)

	// GetCode
	GetCode(common.Address) []byte

	// SetNonce
	SetNonce(common.Address, uint64)

	// GetNonce
	GetNonce(common.Address) uint64

	// Exist
	Exist(common.Address) bool

	// Empty
	Empty(common.Address) bool

	// RevertToSnapshot
	RevertToSnapshot(int)

	// Snapshot
	Snapshot() int
}

type IAccount interface {
	GetAddress() common.Address

	GetState(key []byte) (bool, []byte)

	SetState(key []byte, value []byte)

	SetCodeAndHash(code []byte)

	Code() []byte

	CodeHash() []byte

	SetNonce(nonce uint64)

	GetNonce() uint64

	GetBalance() *big.Int

	SetBalance(balance *big.Int)

	SubBalance(amount *big.Int)

	AddBalance(amount *big.Int)

	IsEmpty() bool
}

type ChainMeta struct {
	Height    uint64 `json:"height"`
	BlockTime uint64 `json:"block_time"`
}
