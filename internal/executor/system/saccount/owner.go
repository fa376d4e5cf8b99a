package saccount

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Owner returns the zero address before initialization.
func (sa *SmartAccount) Owner() (ethcommon.Address, error) {
	return sa.owner.GetOrDefault()
}

func (sa *SmartAccount) checkOwner() error {
	owner, err := sa.Owner()
	if err != nil {
		return err
	}
	if owner == (ethcommon.Address{}) || owner != sa.Ctx.From {
		return sa.Revert(&ErrorOwnableUnauthorizedAccount{Account: sa.Ctx.From})
	}
	return nil
}

func (sa *SmartAccount) setOwner(newOwner ethcommon.Address) error {
	previousOwner, err := sa.Owner()
	if err != nil {
		return err
	}
	if err := sa.owner.Put(newOwner); err != nil {
		return err
	}
	sa.EmitEvent(&EventOwnershipTransferred{
		PreviousOwner: previousOwner,
		NewOwner:      newOwner,
	})
	return nil
}

func (sa *SmartAccount) TransferOwnership(newOwner ethcommon.Address) error {
	if err := sa.checkOwner(); err != nil {
		return err
	}
	if newOwner == (ethcommon.Address{}) {
		return sa.Revert(&ErrorInvalidOwner{})
	}
	return sa.setOwner(newOwner)
}
