package saccount

import (
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

func readVersion(t *testing.T, env *testEnv, addr ethcommon.Address) uint64 {
	ret, err := env.vm.Call(stranger, addr, nil, packAccount(t, "version"))
	require.Nil(t, err)
	out, err := SmartAccountBuildABI().Unpack("version", ret)
	require.Nil(t, err)
	return out[0].(uint64)
}

func TestSmartAccount_UpgradeTo(t *testing.T) {
	env := newTestEnv(t)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	initData, err := PackInitData([]ethcommon.Address{guardianA}, 1, 0)
	require.Nil(t, err)
	addr := env.createAccount(owner, 0, initData)
	v2 := ethcommon.HexToAddress(common.AccountImplementationV2Addr)

	assert.Equal(t, AccountImplementationV1Version, readVersion(t, env, addr))

	t.Run("owner only", func(t *testing.T) {
		err := env.run(stranger, addr, func(sa *SmartAccount) error {
			return sa.UpgradeTo(v2)
		})
		assert.ErrorIs(t, err, revert(&ErrorOwnableUnauthorizedAccount{Account: stranger}))

		// the relayer is not the owner either
		err = env.run(testEntryPoint, addr, func(sa *SmartAccount) error {
			return sa.UpgradeTo(v2)
		})
		assert.ErrorIs(t, err, revert(&ErrorOwnableUnauthorizedAccount{Account: testEntryPoint}))
		assert.Equal(t, AccountImplementationV1Version, readVersion(t, env, addr))
	})

	t.Run("unregistered implementation", func(t *testing.T) {
		err := env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.UpgradeTo(testTarget)
		})
		assert.ErrorIs(t, err, revert(&ErrorERC1967InvalidImplementation{Implementation: testTarget}))
	})

	t.Run("upgrade keeps storage", func(t *testing.T) {
		err := env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.UpgradeTo(v2)
		})
		require.Nil(t, err)
		assert.Equal(t, AccountImplementationV2Version, readVersion(t, env, addr))
		assert.Len(t, env.logs("Upgraded"), 1)

		assert.Equal(t, owner, env.owner(addr))
		env.view(addr, func(sa *SmartAccount) {
			implementation, err := sa.Implementation()
			require.Nil(t, err)
			assert.Equal(t, v2, implementation)
			guardians, err := sa.GetGuardians()
			require.Nil(t, err)
			assert.Equal(t, []ethcommon.Address{guardianA}, guardians)
		})

		// and back again
		err = env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.UpgradeTo(ethcommon.HexToAddress(common.AccountImplementationV1Addr))
		})
		require.Nil(t, err)
		assert.Equal(t, AccountImplementationV1Version, readVersion(t, env, addr))
	})
}

func TestSmartAccount_UpgradeHook(t *testing.T) {
	errFrozen := errors.New("account frozen")
	var seen []ethcommon.Address
	cfg := testAccountConfig(AccountImplementationV1Version)
	cfg.AuthorizeUpgrade = func(account, newImplementation ethcommon.Address) error {
		seen = append(seen, account, newImplementation)
		return errFrozen
	}
	env := newTestEnvWithConfig(t, cfg)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	addr := env.createAccount(owner, 0, nil)
	v2 := ethcommon.HexToAddress(common.AccountImplementationV2Addr)

	err := env.run(owner, addr, func(sa *SmartAccount) error {
		return sa.UpgradeTo(v2)
	})
	assert.ErrorIs(t, err, errFrozen)
	assert.Equal(t, []ethcommon.Address{addr, v2}, seen)
	assert.Equal(t, AccountImplementationV1Version, readVersion(t, env, addr))
	assert.Len(t, env.logs("Upgraded"), 0)

	// the hook is not consulted for unauthorized callers
	seen = nil
	err = env.run(stranger, addr, func(sa *SmartAccount) error {
		return sa.UpgradeTo(v2)
	})
	assert.ErrorIs(t, err, revert(&ErrorOwnableUnauthorizedAccount{Account: stranger}))
	assert.Empty(t, seen)
}
