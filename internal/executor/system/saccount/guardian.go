package saccount

import (
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

func (sa *SmartAccount) GetGuardians() ([]ethcommon.Address, error) {
	guardians, err := sa.guardians.GetOrDefault()
	if err != nil {
		return nil, err
	}
	if guardians == nil {
		return []ethcommon.Address{}, nil
	}
	return guardians, nil
}

func (sa *SmartAccount) IsGuardian(account ethcommon.Address) (bool, error) {
	guardians, err := sa.GetGuardians()
	if err != nil {
		return false, err
	}
	return lo.Contains(guardians, account), nil
}

func (sa *SmartAccount) Threshold() (*big.Int, error) {
	threshold, err := sa.threshold.GetOrDefault()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(threshold), nil
}

// RecoveryDelay returns the delay in seconds.
func (sa *SmartAccount) RecoveryDelay() (*big.Int, error) {
	delay, err := sa.recoveryDelaySeconds()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(delay), nil
}

func (sa *SmartAccount) recoveryDelaySeconds() (uint64, error) {
	exist, delay, err := sa.recoveryDelay.Get()
	if err != nil {
		return 0, err
	}
	if !exist {
		return uint64(sa.config.DefaultRecoveryDelay / time.Second), nil
	}
	return delay, nil
}

func (sa *SmartAccount) checkGuardian() error {
	isGuardian, err := sa.IsGuardian(sa.Ctx.From)
	if err != nil {
		return err
	}
	if !isGuardian {
		return sa.Revert(&ErrorNotGuardian{})
	}
	return nil
}

func (sa *SmartAccount) AddGuardian(guardian ethcommon.Address) error {
	if err := sa.checkOwner(); err != nil {
		return err
	}
	return sa.addGuardian(guardian)
}

func (sa *SmartAccount) addGuardian(guardian ethcommon.Address) error {
	owner, err := sa.Owner()
	if err != nil {
		return err
	}
	if guardian == (ethcommon.Address{}) || guardian == owner || guardian == sa.EthAddress {
		return sa.Revert(&ErrorInvalidGuardian{})
	}

	err = sa.guardians.Update(func(guardians *[]ethcommon.Address) error {
		if lo.Contains(*guardians, guardian) {
			return sa.Revert(&ErrorGuardianAlreadyExists{})
		}
		*guardians = append(*guardians, guardian)
		return nil
	})
	if err != nil {
		return err
	}
	sa.EmitEvent(&EventGuardianAdded{Guardian: guardian})

	// a non empty set needs at least one approval
	threshold, err := sa.threshold.GetOrDefault()
	if err != nil {
		return err
	}
	if threshold == 0 {
		return sa.updateThreshold(1)
	}
	return nil
}

// RemoveGuardian keeps an approval the guardian already gave to the
// pending recovery request.
func (sa *SmartAccount) RemoveGuardian(guardian ethcommon.Address) error {
	if err := sa.checkOwner(); err != nil {
		return err
	}

	var guardians []ethcommon.Address
	err := sa.guardians.Update(func(v *[]ethcommon.Address) error {
		if !lo.Contains(*v, guardian) {
			return sa.Revert(&ErrorGuardianNotFound{})
		}
		*v = lo.Without(*v, guardian)
		guardians = *v
		return nil
	})
	if err != nil {
		return err
	}
	sa.EmitEvent(&EventGuardianRemoved{Guardian: guardian})

	threshold, err := sa.threshold.GetOrDefault()
	if err != nil {
		return err
	}
	if threshold > uint64(len(guardians)) {
		return sa.updateThreshold(uint64(len(guardians)))
	}
	return nil
}

func (sa *SmartAccount) SetThreshold(threshold *big.Int) error {
	if err := sa.checkOwner(); err != nil {
		return err
	}
	return sa.setThreshold(threshold)
}

func (sa *SmartAccount) setThreshold(threshold *big.Int) error {
	guardians, err := sa.GetGuardians()
	if err != nil {
		return err
	}
	if threshold.Sign() <= 0 || threshold.Cmp(big.NewInt(int64(len(guardians)))) > 0 {
		return sa.Revert(&ErrorInvalidThreshold{})
	}
	return sa.updateThreshold(threshold.Uint64())
}

func (sa *SmartAccount) updateThreshold(threshold uint64) error {
	if err := sa.threshold.Put(threshold); err != nil {
		return err
	}
	sa.EmitEvent(&EventThresholdChanged{Threshold: new(big.Int).SetUint64(threshold)})
	return nil
}

// SetRecoveryDelay takes the delay in seconds.
func (sa *SmartAccount) SetRecoveryDelay(recoveryDelay *big.Int) error {
	if err := sa.checkOwner(); err != nil {
		return err
	}
	return sa.setRecoveryDelay(recoveryDelay)
}

func (sa *SmartAccount) setRecoveryDelay(recoveryDelay *big.Int) error {
	minDelay := big.NewInt(int64(sa.config.MinRecoveryDelay / time.Second))
	maxDelay := big.NewInt(int64(sa.config.MaxRecoveryDelay / time.Second))
	if recoveryDelay.Cmp(minDelay) < 0 || recoveryDelay.Cmp(maxDelay) > 0 {
		return sa.Revert(&ErrorInvalidRecoveryDelay{})
	}

	if err := sa.recoveryDelay.Put(recoveryDelay.Uint64()); err != nil {
		return err
	}
	sa.EmitEvent(&EventRecoveryDelayChanged{RecoveryDelay: recoveryDelay})
	return nil
}
