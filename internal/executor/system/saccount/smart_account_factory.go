package saccount

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/saccount/interfaces"
	"github.com/axiomesh/axiom-custody/internal/ledger"
)

var SmartAccountFactoryBuildConfig = &common.SystemContractBuildConfig[*SmartAccountFactory]{
	Name:    "saccount_factory",
	Address: common.AccountFactoryContractAddr,
	AbiStr:  accountFactoryABI,
	Constructor: func(systemContractBase common.SystemContractBase) *SmartAccountFactory {
		return &SmartAccountFactory{
			SystemContractBase: systemContractBase,
			hasher:             KeccakHasher{},
		}
	},
}

var _ interfaces.IAccountFactory = (*SmartAccountFactory)(nil)

// SmartAccountFactory deploys accounts at the address GetAddress predicts.
// CreateAccount returns the account address even if it is already deployed,
// so a client can call it without checking first.
type SmartAccountFactory struct {
	common.SystemContractBase
	hasher Hasher

	deployed       *common.VMMap[ethcommon.Address, bool]
	implementation *common.VMSlot[ethcommon.Address]
}

func (factory *SmartAccountFactory) SetContext(context *common.VMContext) {
	factory.SystemContractBase.SetContext(context)

	factory.deployed = common.NewVMMap[ethcommon.Address, bool](factory.StateAccount, deployedAccountsMap, func(key ethcommon.Address) string { return key.Hex() })
	factory.implementation = common.NewVMSlot[ethcommon.Address](factory.StateAccount, factoryImplSlot)
}

// InitAccountFactory sets the logic new accounts start with, the state is
// only written when the implementation changes.
func InitAccountFactory(lg ledger.StateLedger, implementation ethcommon.Address) error {
	account := lg.GetOrCreateAccount(ethcommon.HexToAddress(common.AccountFactoryContractAddr))
	slot := common.NewVMSlot[ethcommon.Address](account, factoryImplSlot)
	exist, current, err := slot.Get()
	if err != nil {
		return err
	}
	if exist && current == implementation {
		return nil
	}
	return slot.Put(implementation)
}

func (factory *SmartAccountFactory) AccountImplementation() (ethcommon.Address, error) {
	exist, implementation, err := factory.implementation.Get()
	if err != nil {
		return ethcommon.Address{}, err
	}
	if !exist {
		return ethcommon.HexToAddress(common.AccountImplementationV1Addr), nil
	}
	return implementation, nil
}

func (factory *SmartAccountFactory) GetAddress(owner ethcommon.Address, salt *big.Int) (ethcommon.Address, error) {
	implementation, err := factory.AccountImplementation()
	if err != nil {
		return ethcommon.Address{}, err
	}
	return DeriveAddress(factory.hasher, factory.EthAddress, owner, salt, implementation), nil
}

func (factory *SmartAccountFactory) IsAccount(account ethcommon.Address) (bool, error) {
	exist, _, err := factory.deployed.Get(account)
	return exist, err
}

func (factory *SmartAccountFactory) CreateAccount(owner ethcommon.Address, salt *big.Int, initData []byte) (ethcommon.Address, error) {
	if owner == (ethcommon.Address{}) {
		return ethcommon.Address{}, factory.Revert(&ErrorInvalidOwner{})
	}

	implementation, err := factory.AccountImplementation()
	if err != nil {
		return ethcommon.Address{}, err
	}
	addr := DeriveAddress(factory.hasher, factory.EthAddress, owner, salt, implementation)
	if addr == (ethcommon.Address{}) {
		return ethcommon.Address{}, factory.Revert(&ErrorAccountAlreadyExists{})
	}

	isAccount, err := factory.IsAccount(addr)
	if err != nil {
		return ethcommon.Address{}, err
	}
	if isAccount || len(factory.Ctx.StateLedger.GetCode(addr)) != 0 {
		factory.Logger.Debugf("account %s of owner %s already deployed", addr, owner)
		return addr, nil
	}

	if err := common.InstallProxy(factory.Ctx.StateLedger.GetOrCreateAccount(addr), implementation); err != nil {
		return ethcommon.Address{}, err
	}
	initialize, err := SmartAccountBuildABI().Pack("initialize", owner, initData)
	if err != nil {
		return ethcommon.Address{}, errors.Wrap(err, "pack initialize")
	}
	if _, err := factory.Ctx.VM.Call(factory.EthAddress, addr, big.NewInt(0), initialize); err != nil {
		return ethcommon.Address{}, err
	}

	if err := factory.deployed.Put(addr, true); err != nil {
		return ethcommon.Address{}, err
	}
	factory.EmitEvent(&EventAccountCreated{
		Account: addr,
		Owner:   owner,
		Salt:    bigOrZero(salt),
	})
	accountCreatedCounter.Inc()
	factory.Logger.Infof("create account %s, owner: %s, implementation: %s", addr, owner, implementation)
	return addr, nil
}
