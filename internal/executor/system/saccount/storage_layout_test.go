package saccount

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

func TestAccountStorageLayout(t *testing.T) {
	names := lo.Map(AccountStorageLayout, func(slot StorageSlot, _ int) string { return slot.Name })
	assert.Len(t, lo.Uniq(names), len(names))

	// versions only grow along the list
	for i := 1; i < len(AccountStorageLayout); i++ {
		assert.LessOrEqual(t, AccountStorageLayout[i-1].Since, AccountStorageLayout[i].Since)
	}

	for _, slot := range []string{ownerSlot, initializedSlot, nonceSlot, guardiansSlot, thresholdSlot, recoveryDelaySlot, recoveryRequestSlot, reentrancyStatusSlot, implementationSlot} {
		assert.Contains(t, names, slot)
	}
	assert.Equal(t, common.ProxyImplementationSlot, implementationSlot)

	for _, slot := range AccountStorageLayout {
		assert.LessOrEqual(t, slot.Since, uint64(AccountImplementationV2Version))
	}
}

func TestReentrancySlotMatchesGuard(t *testing.T) {
	account := newTestAccountState()
	guard := common.NewReentrancyGuard(account)
	release, err := guard.Enter()
	assert.Nil(t, err)
	exist, _ := account.GetState([]byte(reentrancyStatusSlot))
	assert.True(t, exist)
	release()
}
