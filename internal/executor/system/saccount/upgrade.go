package saccount

import (
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

// UpgradeTo points the account at another registered implementation. The
// storage layout is shared by all versions, so nothing is migrated.
func (sa *SmartAccount) UpgradeTo(newImplementation ethcommon.Address) error {
	if err := sa.checkOwner(); err != nil {
		return err
	}
	if err := sa.authorizeUpgrade(newImplementation); err != nil {
		return err
	}
	if !sa.Ctx.VM.IsImplementation(newImplementation) {
		return sa.Revert(&ErrorERC1967InvalidImplementation{Implementation: newImplementation})
	}

	if err := common.SetProxyImplementation(sa.StateAccount, newImplementation); err != nil {
		return err
	}
	sa.EmitEvent(&EventUpgraded{Implementation: newImplementation})
	upgradeCounter.Inc()
	sa.Logger.Infof("smart account %s upgraded to %s by %s", sa.EthAddress, newImplementation, sa.Ctx.From)
	return nil
}

// authorizeUpgrade is the hook of the running logic, it accepts everything
// unless the implementation was built with a check.
func (sa *SmartAccount) authorizeUpgrade(newImplementation ethcommon.Address) error {
	if sa.config.AuthorizeUpgrade == nil {
		return nil
	}
	return sa.config.AuthorizeUpgrade(sa.EthAddress, newImplementation)
}

// Implementation returns the logic the account currently runs.
func (sa *SmartAccount) Implementation() (ethcommon.Address, error) {
	implementation, _, err := common.GetProxyImplementation(sa.StateAccount)
	return implementation, err
}

func (sa *SmartAccount) Version() (uint64, error) {
	return sa.config.Version, nil
}
