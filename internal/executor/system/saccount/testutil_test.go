package saccount

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-custody/internal/executor/system"
	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/saccount/interfaces"
	"github.com/axiomesh/axiom-custody/internal/ledger"
	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/packer"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

const targetABI = `[
	{"type":"function","name":"setValue","inputs":[{"name":"v","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"value","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"fail","inputs":[],"outputs":[]},
	{"type":"function","name":"reenter","inputs":[{"name":"account","type":"address"},{"name":"data","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"reentrancyBlocked","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]}
]`

const testTargetAddr = "0x0000000000000000000000000000000000001200"

var (
	testEntryPoint = ethcommon.HexToAddress("0x00000000000000000000000000000000000e4e11")
	testChainID    = big.NewInt(1356)
	testTarget     = ethcommon.HexToAddress(testTargetAddr)
	stranger       = ethcommon.HexToAddress("0x7000000000000000000000000000000000000009")

	guardianA = ethcommon.HexToAddress("0x6000000000000000000000000000000000000001")
	guardianB = ethcommon.HexToAddress("0x6000000000000000000000000000000000000002")
	guardianC = ethcommon.HexToAddress("0x6000000000000000000000000000000000000003")
)

// target is a plain contract the accounts call into.
type target struct {
	common.SystemContractBase
	value   *common.VMSlot[*big.Int]
	blocked *common.VMSlot[bool]
}

func (c *target) SetContext(ctx *common.VMContext) {
	c.SystemContractBase.SetContext(ctx)
	c.value = common.NewVMSlot[*big.Int](c.StateAccount, "value")
	c.blocked = common.NewVMSlot[bool](c.StateAccount, "reentrancy_blocked")
}

func (c *target) SetValue(v *big.Int) error {
	return c.value.Put(v)
}

func (c *target) Value() (*big.Int, error) {
	v, err := c.value.GetOrDefault()
	if err != nil {
		return nil, err
	}
	return bigOrZero(v), nil
}

func (c *target) Fail() error {
	return errors.New("target refused")
}

// Reenter calls back into account and records whether the guard stopped it.
func (c *target) Reenter(account ethcommon.Address, data []byte) error {
	_, err := c.Ctx.VM.Call(c.EthAddress, account, big.NewInt(0), data)
	return c.blocked.Put(errors.Is(err, common.ReentrancyGuardReentrantCall()))
}

func (c *target) ReentrancyBlocked() (bool, error) {
	return c.blocked.GetOrDefault()
}

func (c *target) Receive() error {
	return nil
}

var targetBuildConfig = &common.SystemContractBuildConfig[*target]{
	Name:    "target",
	Address: testTargetAddr,
	AbiStr:  targetABI,
	Constructor: func(systemContractBase common.SystemContractBase) *target {
		return &target{SystemContractBase: systemContractBase}
	},
}

func newTestAccountState() ledger.IAccount {
	return ledger.NewMockAccount(ethcommon.HexToAddress("0xaa00000000000000000000000000000000000001"))
}

func testAccountConfig(version uint64) Config {
	cfg := DefaultConfig(testEntryPoint)
	cfg.Version = version
	return cfg
}

type testEnv struct {
	t       *testing.T
	nvm     *common.TestNVM
	vm      *system.NativeVM
	cfg     *common.SystemContractConfig
	v1      *common.SystemContractBuildConfig[*SmartAccount]
	v2      *common.SystemContractBuildConfig[*SmartAccount]
	factory *SmartAccountFactory
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, testAccountConfig(AccountImplementationV1Version))
}

func newTestEnvWithConfig(t *testing.T, v1Config Config) *testEnv {
	cfg := &common.SystemContractConfig{Logger: loggers.Logger(loggers.SystemContract)}
	env := &testEnv{
		t:   t,
		nvm: common.NewTestNVM(t),
		vm:  system.New(cfg.Logger),
		cfg: cfg,
		v1:  NewSmartAccountBuildConfig("saccount_v1", common.AccountImplementationV1Addr, v1Config),
		v2:  NewSmartAccountBuildConfig("saccount_v2", common.AccountImplementationV2Addr, testAccountConfig(AccountImplementationV2Version)),
	}
	env.vm.Deploy(ethcommon.HexToAddress(common.AccountFactoryContractAddr), SmartAccountFactoryBuildConfig.Construct(cfg))
	env.vm.Deploy(testTarget, targetBuildConfig.Construct(cfg))
	env.vm.RegisterImplementation(ethcommon.HexToAddress(common.AccountImplementationV1Addr), env.v1.Construct(cfg))
	env.vm.RegisterImplementation(ethcommon.HexToAddress(common.AccountImplementationV2Addr), env.v2.Construct(cfg))
	env.vm.Reset(env.nvm.StateLedger, env.nvm.BlockNumber, env.nvm.BlockTime)
	env.nvm.VM = env.vm
	env.factory = SmartAccountFactoryBuildConfig.Build(cfg)
	return env
}

func (env *testEnv) advance(seconds uint64) {
	env.nvm.AdvanceTime(seconds)
	env.vm.Reset(env.nvm.StateLedger, env.nvm.BlockNumber, env.nvm.BlockTime)
}

func (env *testEnv) createAccount(owner ethcommon.Address, salt int64, initData []byte) ethcommon.Address {
	var addr ethcommon.Address
	err := env.nvm.RunSingleTX(env.factory, owner, func() error {
		var err error
		addr, err = env.factory.CreateAccount(owner, big.NewInt(salt), initData)
		return err
	})
	require.Nil(env.t, err)
	return addr
}

func (env *testEnv) createAccountWithGuardians(owner ethcommon.Address, guardians []ethcommon.Address, threshold uint64) ethcommon.Address {
	initData, err := PackInitData(guardians, threshold, 0)
	require.Nil(env.t, err)
	return env.createAccount(owner, 0, initData)
}

// account binds the logic the proxy at addr currently points to.
func (env *testEnv) account(addr ethcommon.Address) *SmartAccount {
	implementation, ok, err := common.GetProxyImplementation(env.nvm.StateLedger.GetOrCreateAccount(addr))
	require.Nil(env.t, err)
	require.True(env.t, ok)
	if implementation == ethcommon.HexToAddress(common.AccountImplementationV2Addr) {
		return env.v2.BuildWithAddress(env.cfg, addr)
	}
	return env.v1.BuildWithAddress(env.cfg, addr)
}

// run executes fn against the account as one transaction sent by from.
func (env *testEnv) run(from, addr ethcommon.Address, fn func(sa *SmartAccount) error) error {
	sa := env.account(addr)
	return env.nvm.RunSingleTX(sa, from, func() error {
		return fn(sa)
	})
}

// view reads from the account without keeping any change.
func (env *testEnv) view(addr ethcommon.Address, fn func(sa *SmartAccount)) {
	sa := env.account(addr)
	env.nvm.Call(sa, stranger, func() {
		fn(sa)
	})
}

func (env *testEnv) owner(addr ethcommon.Address) ethcommon.Address {
	var owner ethcommon.Address
	env.view(addr, func(sa *SmartAccount) {
		var err error
		owner, err = sa.Owner()
		require.Nil(env.t, err)
	})
	return owner
}

func (env *testEnv) nonce(addr ethcommon.Address) *big.Int {
	var nonce *big.Int
	env.view(addr, func(sa *SmartAccount) {
		var err error
		nonce, err = sa.GetNonce()
		require.Nil(env.t, err)
	})
	return nonce
}

func (env *testEnv) targetValue() *big.Int {
	ret, err := env.vm.Call(stranger, testTarget, nil, packTarget(env.t, "value"))
	require.Nil(env.t, err)
	out, err := targetBuildConfig.MustGetABI().Unpack("value", ret)
	require.Nil(env.t, err)
	return out[0].(*big.Int)
}

// logs returns the logs of the named account event emitted so far.
func (env *testEnv) logs(event string) []*types.EvmLog {
	id := SmartAccountBuildABI().Events[event].ID
	if factoryEvent, ok := SmartAccountFactoryBuildConfig.MustGetABI().Events[event]; ok {
		id = factoryEvent.ID
	}
	return lo.Filter(env.nvm.StateLedger.GetLogs(ethcommon.Hash{}), func(log *types.EvmLog, _ int) bool {
		return len(log.Topics) > 0 && log.Topics[0] == id
	})
}

func packTarget(t *testing.T, method string, args ...any) []byte {
	data, err := targetBuildConfig.MustGetABI().Pack(method, args...)
	require.Nil(t, err)
	return data
}

func packAccount(t *testing.T, method string, args ...any) []byte {
	data, err := SmartAccountBuildABI().Pack(method, args...)
	require.Nil(t, err)
	return data
}

// revert packs an account error for comparison with errors.Is.
func revert(e packer.Error) error {
	return e.Pack(*SmartAccountBuildABI())
}

func newOwnerKey(t *testing.T) (*ecdsa.PrivateKey, ethcommon.Address) {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

// signOperation signs op the way a wallet signs a personal message.
func signOperation(t *testing.T, key *ecdsa.PrivateKey, op *interfaces.Operation) ethcommon.Hash {
	hash := interfaces.GetOperationHash(op, testEntryPoint, testChainID)
	sig, err := crypto.Sign(accounts.TextHash(hash[:]), key)
	require.Nil(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	op.Signature = sig
	return hash
}
