package saccount

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// SmartAccountBuildABI returns the parsed abi shared by every account implementation.
var SmartAccountBuildABI = sync.OnceValue(func() *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(smartAccountABI))
	if err != nil {
		panic(err)
	}
	return &parsed
})

const smartAccountABI = `[
	{"type":"function","name":"initialize","stateMutability":"nonpayable","inputs":[{"name":"owner","type":"address"},{"name":"initData","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"validateOperation","stateMutability":"nonpayable","inputs":[
		{"name":"op","type":"tuple","internalType":"struct Operation","components":[
			{"name":"sender","type":"address"},
			{"name":"nonce","type":"uint256"},
			{"name":"callData","type":"bytes"},
			{"name":"callGasLimit","type":"uint256"},
			{"name":"verificationGasLimit","type":"uint256"},
			{"name":"preVerificationGas","type":"uint256"},
			{"name":"maxFeePerGas","type":"uint256"},
			{"name":"maxPriorityFeePerGas","type":"uint256"},
			{"name":"signature","type":"bytes"}
		]},
		{"name":"opHash","type":"bytes32"},
		{"name":"missingFunds","type":"uint256"}
	],"outputs":[{"name":"validationData","type":"uint256"}]},
	{"type":"function","name":"execute","stateMutability":"payable","inputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"executeBatch","stateMutability":"payable","inputs":[{"name":"targets","type":"address[]"},{"name":"values","type":"uint256[]"},{"name":"data","type":"bytes[]"}],"outputs":[]},
	{"type":"function","name":"executeDelegate","stateMutability":"payable","inputs":[{"name":"target","type":"address"},{"name":"data","type":"bytes"}],"outputs":[{"name":"result","type":"bytes"}]},
	{"type":"function","name":"upgradeTo","stateMutability":"nonpayable","inputs":[{"name":"newImplementation","type":"address"}],"outputs":[]},
	{"type":"function","name":"implementation","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"version","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint64"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getNonce","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"entryPoint","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"addGuardian","stateMutability":"nonpayable","inputs":[{"name":"guardian","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeGuardian","stateMutability":"nonpayable","inputs":[{"name":"guardian","type":"address"}],"outputs":[]},
	{"type":"function","name":"setThreshold","stateMutability":"nonpayable","inputs":[{"name":"threshold","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"setRecoveryDelay","stateMutability":"nonpayable","inputs":[{"name":"recoveryDelay","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getGuardians","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"isGuardian","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"threshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"recoveryDelay","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"initiateRecovery","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"approveRecovery","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"executeRecovery","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"cancelRecovery","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"getRecoveryRequest","stateMutability":"view","inputs":[],"outputs":[{"name":"active","type":"bool"},{"name":"pendingOwner","type":"address"},{"name":"initiatedAt","type":"uint256"},{"name":"approvals","type":"address[]"}]},

	{"type":"event","name":"AccountInitialized","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"entryPoint","type":"address","indexed":true}]},
	{"type":"event","name":"TransactionExecuted","anonymous":false,"inputs":[{"name":"target","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false},{"name":"data","type":"bytes","indexed":false}]},
	{"type":"event","name":"BatchTransactionExecuted","anonymous":false,"inputs":[{"name":"targets","type":"address[]","indexed":false},{"name":"values","type":"uint256[]","indexed":false}]},
	{"type":"event","name":"Upgraded","anonymous":false,"inputs":[{"name":"implementation","type":"address","indexed":true}]},
	{"type":"event","name":"OwnershipTransferred","anonymous":false,"inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]},
	{"type":"event","name":"GuardianAdded","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true}]},
	{"type":"event","name":"GuardianRemoved","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true}]},
	{"type":"event","name":"ThresholdChanged","anonymous":false,"inputs":[{"name":"threshold","type":"uint256","indexed":false}]},
	{"type":"event","name":"RecoveryDelayChanged","anonymous":false,"inputs":[{"name":"recoveryDelay","type":"uint256","indexed":false}]},
	{"type":"event","name":"RecoveryInitiated","anonymous":false,"inputs":[{"name":"newOwner","type":"address","indexed":true},{"name":"initiatedAt","type":"uint256","indexed":false}]},
	{"type":"event","name":"RecoveryApproved","anonymous":false,"inputs":[{"name":"guardian","type":"address","indexed":true},{"name":"approvalCount","type":"uint256","indexed":false}]},
	{"type":"event","name":"RecoveryExecuted","anonymous":false,"inputs":[{"name":"oldOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]},
	{"type":"event","name":"RecoveryCancelled","anonymous":false,"inputs":[]},

	{"type":"error","name":"InvalidOwner","inputs":[]},
	{"type":"error","name":"AlreadyInitialized","inputs":[]},
	{"type":"error","name":"OnlyAuthorizedCaller","inputs":[]},
	{"type":"error","name":"OnlyOwnerOrAuthorizedCaller","inputs":[]},
	{"type":"error","name":"ExecutionFailed","inputs":[]},
	{"type":"error","name":"ArrayLengthMismatch","inputs":[]},
	{"type":"error","name":"OwnableUnauthorizedAccount","inputs":[{"name":"account","type":"address"}]},
	{"type":"error","name":"ERC1967InvalidImplementation","inputs":[{"name":"implementation","type":"address"}]},
	{"type":"error","name":"InvalidGuardian","inputs":[]},
	{"type":"error","name":"GuardianAlreadyExists","inputs":[]},
	{"type":"error","name":"GuardianNotFound","inputs":[]},
	{"type":"error","name":"InvalidThreshold","inputs":[]},
	{"type":"error","name":"InvalidRecoveryDelay","inputs":[]},
	{"type":"error","name":"NotGuardian","inputs":[]},
	{"type":"error","name":"RecoveryAlreadyActive","inputs":[]},
	{"type":"error","name":"RecoveryNotActive","inputs":[]},
	{"type":"error","name":"AlreadyApproved","inputs":[]},
	{"type":"error","name":"RecoveryDelayNotPassed","inputs":[]},
	{"type":"error","name":"InsufficientApprovals","inputs":[]},
	{"type":"error","name":"ReentrancyGuardReentrantCall","inputs":[]}
]`

const accountFactoryABI = `[
	{"type":"function","name":"createAccount","stateMutability":"nonpayable","inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"},{"name":"initData","type":"bytes"}],"outputs":[{"name":"account","type":"address"}]},
	{"type":"function","name":"getAddress","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"salt","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"isAccount","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"accountImplementation","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},

	{"type":"event","name":"AccountCreated","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"salt","type":"uint256","indexed":false}]},

	{"type":"error","name":"InvalidOwner","inputs":[]},
	{"type":"error","name":"AccountAlreadyExists","inputs":[]}
]`
