package saccount

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-custody/pkg/packer"
)

type ErrorInvalidOwner struct{}

func (e *ErrorInvalidOwner) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["InvalidOwner"])
}

type ErrorAlreadyInitialized struct{}

func (e *ErrorAlreadyInitialized) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["AlreadyInitialized"])
}

type ErrorOnlyAuthorizedCaller struct{}

func (e *ErrorOnlyAuthorizedCaller) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["OnlyAuthorizedCaller"])
}

type ErrorOnlyOwnerOrAuthorizedCaller struct{}

func (e *ErrorOnlyOwnerOrAuthorizedCaller) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["OnlyOwnerOrAuthorizedCaller"])
}

type ErrorExecutionFailed struct{}

func (e *ErrorExecutionFailed) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["ExecutionFailed"])
}

type ErrorArrayLengthMismatch struct{}

func (e *ErrorArrayLengthMismatch) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["ArrayLengthMismatch"])
}

type ErrorInvalidGuardian struct{}

func (e *ErrorInvalidGuardian) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["InvalidGuardian"])
}

type ErrorGuardianAlreadyExists struct{}

func (e *ErrorGuardianAlreadyExists) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["GuardianAlreadyExists"])
}

type ErrorGuardianNotFound struct{}

func (e *ErrorGuardianNotFound) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["GuardianNotFound"])
}

type ErrorInvalidThreshold struct{}

func (e *ErrorInvalidThreshold) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["InvalidThreshold"])
}

type ErrorInvalidRecoveryDelay struct{}

func (e *ErrorInvalidRecoveryDelay) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["InvalidRecoveryDelay"])
}

type ErrorNotGuardian struct{}

func (e *ErrorNotGuardian) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["NotGuardian"])
}

type ErrorRecoveryAlreadyActive struct{}

func (e *ErrorRecoveryAlreadyActive) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["RecoveryAlreadyActive"])
}

type ErrorRecoveryNotActive struct{}

func (e *ErrorRecoveryNotActive) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["RecoveryNotActive"])
}

type ErrorAlreadyApproved struct{}

func (e *ErrorAlreadyApproved) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["AlreadyApproved"])
}

type ErrorRecoveryDelayNotPassed struct{}

func (e *ErrorRecoveryDelayNotPassed) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["RecoveryDelayNotPassed"])
}

type ErrorInsufficientApprovals struct{}

func (e *ErrorInsufficientApprovals) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["InsufficientApprovals"])
}

type ErrorAccountAlreadyExists struct{}

func (e *ErrorAccountAlreadyExists) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["AccountAlreadyExists"])
}

type ErrorOwnableUnauthorizedAccount struct {
	Account ethcommon.Address
}

func (e *ErrorOwnableUnauthorizedAccount) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["OwnableUnauthorizedAccount"])
}

type ErrorERC1967InvalidImplementation struct {
	Implementation ethcommon.Address
}

func (e *ErrorERC1967InvalidImplementation) Pack(abi abi.ABI) error {
	return packer.PackError(e, abi.Errors["ERC1967InvalidImplementation"])
}
