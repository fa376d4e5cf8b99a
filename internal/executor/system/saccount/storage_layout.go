package saccount

import (
	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
)

// storage slot names of an account. Every implementation version reads the
// same slots, so the list below is append only: never rename, reorder or
// reuse an entry, retire a slot by leaving it in place.
const (
	ownerSlot            = "owner"
	initializedSlot      = "initialized"
	nonceSlot            = "nonce"
	guardiansSlot        = "guardians"
	thresholdSlot        = "threshold"
	recoveryDelaySlot    = "recovery_delay"
	recoveryRequestSlot  = "recovery_request"
	reentrancyStatusSlot = "reentrancy_guard_status"
	implementationSlot   = common.ProxyImplementationSlot
)

// factory slots
const (
	deployedAccountsMap = "deployed_accounts"
	factoryImplSlot     = "account_implementation"
)

type StorageSlot struct {
	Name string
	// Since is the implementation version introducing the slot
	Since uint64
}

// AccountStorageLayout lists the account slots in allocation order, reserved
// entries keep room for later versions.
var AccountStorageLayout = []StorageSlot{
	{Name: ownerSlot, Since: 1},
	{Name: initializedSlot, Since: 1},
	{Name: nonceSlot, Since: 1},
	{Name: implementationSlot, Since: 1},
	{Name: reentrancyStatusSlot, Since: 1},
	{Name: guardiansSlot, Since: 1},
	{Name: thresholdSlot, Since: 1},
	{Name: recoveryDelaySlot, Since: 1},
	{Name: recoveryRequestSlot, Since: 1},
	{Name: "reserved_0", Since: 1},
	{Name: "reserved_1", Since: 1},
	{Name: "reserved_2", Since: 1},
	{Name: "reserved_3", Since: 1},
}
