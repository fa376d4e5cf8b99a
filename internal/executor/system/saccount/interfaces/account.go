package interfaces

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

const (
	SigValidationSucceeded = 0
	SigValidationFailed    = 1
)

type IAccount interface {
	common.SystemContract

	// ValidateOperation checks nonce and owner signature of op and pays
	// missingFunds to the caller. Ordinary rejections are reported as
	// SigValidationFailed instead of an error so a relayer can skip one
	// operation of a batch.
	ValidateOperation(op Operation, opHash [32]byte, missingFunds *big.Int) (*big.Int, error)

	Execute(target ethcommon.Address, value *big.Int, data []byte) error

	ExecuteBatch(targets []ethcommon.Address, values []*big.Int, data [][]byte) error

	// ExecuteDelegate runs target's logic against the storage of the account
	ExecuteDelegate(target ethcommon.Address, data []byte) ([]byte, error)
}

type IAccountFactory interface {
	common.SystemContract

	CreateAccount(owner ethcommon.Address, salt *big.Int, initData []byte) (ethcommon.Address, error)

	GetAddress(owner ethcommon.Address, salt *big.Int) (ethcommon.Address, error)
}

// IRecovery replaces the owner of an account once enough guardians approved
// and the recovery delay passed.
type IRecovery interface {
	InitiateRecovery(newOwner ethcommon.Address) error

	ApproveRecovery() error

	ExecuteRecovery() error

	CancelRecovery() error
}
