package common

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-custody/internal/ledger"
	"github.com/axiomesh/axiom-custody/pkg/repo"
)

type TestNVM struct {
	t           testing.TB
	Rep         *repo.Repo
	StateLedger ledger.StateLedger
	VM          VirtualMachine
	BlockNumber uint64
	BlockTime   uint64
}

func NewTestNVM(t testing.TB) *TestNVM {
	return &TestNVM{
		t:           t,
		Rep:         repo.MockRepo(t),
		StateLedger: ledger.NewMemoryStateLedger(),
		BlockNumber: 1,
		BlockTime:   1700000000,
	}
}

type TestNVMRunOption func(ctx *VMContext)

func (nvm *TestNVM) newContext(from ethcommon.Address, opts ...TestNVMRunOption) *VMContext {
	ctx := &VMContext{
		StateLedger: nvm.StateLedger,
		BlockNumber: nvm.BlockNumber,
		BlockTime:   nvm.BlockTime,
		From:        from,
		Value:       big.NewInt(0),
		VM:          nvm.VM,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx
}

// RunSingleTX keeps the changes made by executor unless it fails.
func (nvm *TestNVM) RunSingleTX(contract SystemContract, from ethcommon.Address, executor func() error, opts ...TestNVMRunOption) error {
	snapshot := nvm.StateLedger.Snapshot()
	contract.SetContext(nvm.newContext(from, opts...))
	if err := executor(); err != nil {
		nvm.StateLedger.RevertToSnapshot(snapshot)
		return err
	}
	nvm.StateLedger.Finalise()
	return nil
}

// Call runs executor and always drops its changes.
func (nvm *TestNVM) Call(contract SystemContract, from ethcommon.Address, executor func()) {
	snapshot := nvm.StateLedger.Snapshot()
	contract.SetContext(nvm.newContext(from))
	executor()
	nvm.StateLedger.RevertToSnapshot(snapshot)
}

// AdvanceTime moves the block clock forward by seconds.
func (nvm *TestNVM) AdvanceTime(seconds uint64) {
	nvm.BlockNumber++
	nvm.BlockTime += seconds
}
