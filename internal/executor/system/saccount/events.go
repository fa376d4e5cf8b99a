package saccount

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-custody/pkg/packer"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

type EventAccountCreated struct {
	Account ethcommon.Address
	Owner   ethcommon.Address
	Salt    *big.Int
}

func (e *EventAccountCreated) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["AccountCreated"])
}

type EventAccountInitialized struct {
	Owner      ethcommon.Address
	EntryPoint ethcommon.Address
}

func (e *EventAccountInitialized) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["AccountInitialized"])
}

type EventTransactionExecuted struct {
	Target ethcommon.Address
	Value  *big.Int
	Data   []byte
}

func (e *EventTransactionExecuted) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["TransactionExecuted"])
}

type EventBatchTransactionExecuted struct {
	Targets []ethcommon.Address
	Values  []*big.Int
}

func (e *EventBatchTransactionExecuted) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["BatchTransactionExecuted"])
}

type EventUpgraded struct {
	Implementation ethcommon.Address
}

func (e *EventUpgraded) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["Upgraded"])
}

type EventOwnershipTransferred struct {
	PreviousOwner ethcommon.Address
	NewOwner      ethcommon.Address
}

func (e *EventOwnershipTransferred) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["OwnershipTransferred"])
}

type EventGuardianAdded struct {
	Guardian ethcommon.Address
}

func (e *EventGuardianAdded) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["GuardianAdded"])
}

type EventGuardianRemoved struct {
	Guardian ethcommon.Address
}

func (e *EventGuardianRemoved) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["GuardianRemoved"])
}

type EventThresholdChanged struct {
	Threshold *big.Int
}

func (e *EventThresholdChanged) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["ThresholdChanged"])
}

type EventRecoveryDelayChanged struct {
	RecoveryDelay *big.Int
}

func (e *EventRecoveryDelayChanged) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["RecoveryDelayChanged"])
}

type EventRecoveryInitiated struct {
	NewOwner    ethcommon.Address
	InitiatedAt *big.Int
}

func (e *EventRecoveryInitiated) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["RecoveryInitiated"])
}

type EventRecoveryApproved struct {
	Guardian      ethcommon.Address
	ApprovalCount *big.Int
}

func (e *EventRecoveryApproved) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["RecoveryApproved"])
}

type EventRecoveryExecuted struct {
	OldOwner ethcommon.Address
	NewOwner ethcommon.Address
}

func (e *EventRecoveryExecuted) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["RecoveryExecuted"])
}

type EventRecoveryCancelled struct{}

func (e *EventRecoveryCancelled) Pack(abi abi.ABI) (*types.EvmLog, error) {
	return packer.PackEvent(e, abi.Events["RecoveryCancelled"])
}
