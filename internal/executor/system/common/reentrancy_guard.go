package common

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/axiomesh/axiom-custody/internal/ledger"
)

const (
	NOT_ENTERED = 1
	ENTERED     = 2

	reentrancyGuardSlot = "reentrancy_guard_status"
)

// ReentrancyGuard keeps its status in the storage of the guarded account,
// so a nested frame building a fresh contract instance still observes it.
type ReentrancyGuard struct {
	status *VMSlot[uint8]
}

func NewReentrancyGuard(account ledger.IAccount) *ReentrancyGuard {
	return &ReentrancyGuard{status: NewVMSlot[uint8](account, reentrancyGuardSlot)}
}

// Enter marks the guard entered and returns the function releasing it,
// callers must defer release on every path.
func (rg *ReentrancyGuard) Enter() (release func(), err error) {
	if rg.IsEntered() {
		return func() {}, ReentrancyGuardReentrantCall()
	}

	if err := rg.status.Put(ENTERED); err != nil {
		return func() {}, err
	}
	return func() {
		// status is a single byte, Put cannot fail to marshal it
		_ = rg.status.Put(NOT_ENTERED)
	}, nil
}

func (rg *ReentrancyGuard) IsEntered() bool {
	_, status, err := rg.status.Get()
	return err == nil && status == ENTERED
}

func ReentrancyGuardReentrantCall() error {
	return NewRevertError("ReentrancyGuardReentrantCall", abi.Arguments{}, nil)
}
