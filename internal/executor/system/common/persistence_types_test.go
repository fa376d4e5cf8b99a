package common

import (
	"errors"
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-custody/internal/ledger"
)

func TestVMMap(t *testing.T) {
	type Value struct {
		Name    string
		Balance *big.Int
	}

	account := ledger.NewMockAccount(ethcommon.HexToAddress(ZeroAddress))
	vmMap := NewVMMap[ethcommon.Address, Value](account, "test", func(key ethcommon.Address) string { return key.String() })
	key := ethcommon.HexToAddress("0x01")

	assert.False(t, vmMap.Has(key))
	exist, v, err := vmMap.Get(key)
	assert.Nil(t, err)
	assert.Empty(t, v)
	assert.False(t, exist)
	_, err = vmMap.MustGet(key)
	assert.NotNil(t, err)

	old := Value{Name: "name", Balance: big.NewInt(10)}
	require.Nil(t, vmMap.Put(key, old))
	exist, v, err = vmMap.Get(key)
	assert.Nil(t, err)
	assert.True(t, exist)
	assert.Equal(t, old, v)

	// zero value is still present
	other := ethcommon.HexToAddress("0x02")
	require.Nil(t, vmMap.Put(other, Value{}))
	assert.True(t, vmMap.Has(other))

	vmMap.Delete(other)
	assert.False(t, vmMap.Has(other))
	assert.True(t, vmMap.Has(key))
}

func TestVMSlot(t *testing.T) {
	account := ledger.NewMockAccount(ethcommon.HexToAddress(ZeroAddress))
	slot := NewVMSlot[[]ethcommon.Address](account, "guardians")
	assert.Equal(t, "guardians", slot.Name())

	assert.False(t, slot.Has())
	v, err := slot.GetOrDefault()
	assert.Nil(t, err)
	assert.Empty(t, v)
	_, err = slot.MustGet()
	assert.NotNil(t, err)

	g1 := ethcommon.HexToAddress("0x11")
	g2 := ethcommon.HexToAddress("0x12")
	require.Nil(t, slot.Update(func(v *[]ethcommon.Address) error {
		*v = append(*v, g1, g2)
		return nil
	}))
	v, err = slot.MustGet()
	assert.Nil(t, err)
	assert.Equal(t, []ethcommon.Address{g1, g2}, v)

	failed := errors.New("failed")
	err = slot.Update(func(v *[]ethcommon.Address) error {
		*v = nil
		return failed
	})
	assert.ErrorIs(t, err, failed)
	v, _ = slot.MustGet()
	assert.Len(t, v, 2)

	slot.Delete()
	assert.False(t, slot.Has())
}

func TestVMSlotCorrupted(t *testing.T) {
	account := ledger.NewMockAccount(ethcommon.HexToAddress(ZeroAddress))
	account.SetState([]byte("broken"), []byte{flagPresent, '{'})

	slot := NewVMSlot[uint64](account, "broken")
	exist, _, err := slot.Get()
	assert.False(t, exist)
	assert.NotNil(t, err)
	assert.False(t, slot.Has())
}

func TestReentrancyGuard(t *testing.T) {
	account := ledger.NewMockAccount(ethcommon.HexToAddress(AccountImplementationV1Addr))
	guard := NewReentrancyGuard(account)
	assert.False(t, guard.IsEntered())

	release, err := guard.Enter()
	require.Nil(t, err)
	assert.True(t, guard.IsEntered())

	// a second guard over the same storage sees the lock
	_, err = NewReentrancyGuard(account).Enter()
	assert.ErrorIs(t, err, ReentrancyGuardReentrantCall())

	release()
	assert.False(t, guard.IsEntered())
	release, err = guard.Enter()
	assert.Nil(t, err)
	release()
}

func TestProxy(t *testing.T) {
	account := ledger.NewMockAccount(ethcommon.HexToAddress("0xabc"))
	_, ok, err := GetProxyImplementation(account)
	assert.Nil(t, err)
	assert.False(t, ok)

	impl := ethcommon.HexToAddress(AccountImplementationV1Addr)
	require.Nil(t, InstallProxy(account, impl))
	assert.True(t, IsProxyCode(account.Code()))
	got, ok, err := GetProxyImplementation(account)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, impl, got)

	assert.Equal(t, ProxyRuntimeCode, ProxyCreationCode[10:])
	assert.EqualValues(t, len(ProxyRuntimeCode), ProxyCreationCode[2])
}

func TestIsSystemContractAddr(t *testing.T) {
	assert.True(t, IsSystemContractAddr(ethcommon.HexToAddress(AccountFactoryContractAddr)))
	assert.True(t, IsSystemContractAddr(ethcommon.HexToAddress(SystemContractEndAddr)))
	assert.False(t, IsSystemContractAddr(ethcommon.HexToAddress("0x0fff")))
	assert.False(t, IsSystemContractAddr(ethcommon.HexToAddress("0x010000")))
}
