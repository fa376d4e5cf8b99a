package system

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/ledger"
)

const MaxCallDepth = 1024

var (
	ErrNotExistSystemContract         = errors.New("not exist this system contract")
	ErrNotExistMethodName             = errors.New("not exist method name of this system contract")
	ErrNotImplementFuncSystemContract = errors.New("not implement the function for this system contract")
	ErrNotRegisteredImplementation    = errors.New("proxy points to an unregistered implementation")
	ErrUnsupportedCode                = errors.New("account code is not runnable by the native vm")
	ErrNotReceivable                  = errors.New("contract does not accept plain value transfers")
	ErrInsufficientBalance            = errors.New("insufficient balance for transfer")
	ErrCallDepthExceeded              = errors.New("max call depth exceeded")
	ErrNotPrepared                    = errors.New("native vm is not reset to a state ledger")
)

// Receiver is implemented by contracts accepting calls with empty data.
type Receiver interface {
	Receive() error
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

var _ common.VirtualMachine = (*NativeVM)(nil)

// NativeVM runs system contracts written in go. It handles abi decoding of
// parameters, abi encoding of return data, value transfers and frame level
// atomicity.
type NativeVM struct {
	logger logrus.FieldLogger

	// singleton contracts bound to their own address
	contracts map[ethcommon.Address]*common.SystemContractConstruct
	// account logic shared by every proxy pointing at it
	implementations map[ethcommon.Address]*common.SystemContractConstruct

	stateLedger ledger.StateLedger
	blockNumber uint64
	blockTime   uint64
	depth       int
}

func New(logger logrus.FieldLogger) *NativeVM {
	return &NativeVM{
		logger:          logger,
		contracts:       make(map[ethcommon.Address]*common.SystemContractConstruct),
		implementations: make(map[ethcommon.Address]*common.SystemContractConstruct),
	}
}

func checkRange(addr ethcommon.Address) {
	if !common.IsSystemContractAddr(addr) {
		panic(fmt.Sprintf("this system contract %s is out of range", addr))
	}
}

// Deploy binds a singleton contract to addr.
func (nvm *NativeVM) Deploy(addr ethcommon.Address, construct *common.SystemContractConstruct) {
	checkRange(addr)
	if _, ok := nvm.contracts[addr]; ok {
		panic("deploy system contract repeated")
	}
	nvm.contracts[addr] = construct
}

// RegisterImplementation makes construct selectable as account logic under addr.
func (nvm *NativeVM) RegisterImplementation(addr ethcommon.Address, construct *common.SystemContractConstruct) {
	checkRange(addr)
	if _, ok := nvm.implementations[addr]; ok {
		panic("register implementation repeated")
	}
	nvm.implementations[addr] = construct
}

func (nvm *NativeVM) IsImplementation(addr ethcommon.Address) bool {
	_, ok := nvm.implementations[addr]
	return ok
}

func (nvm *NativeVM) IsSystemContract(addr ethcommon.Address) bool {
	_, ok := nvm.contracts[addr]
	return ok
}

// Reset points the vm at the state and block of the next transaction.
func (nvm *NativeVM) Reset(stateLedger ledger.StateLedger, blockNumber uint64, blockTime uint64) {
	nvm.stateLedger = stateLedger
	nvm.blockNumber = blockNumber
	nvm.blockTime = blockTime
	nvm.depth = 0
}

func (nvm *NativeVM) Transfer(from, to ethcommon.Address, value *big.Int) error {
	if value == nil || value.Sign() == 0 {
		return nil
	}
	if value.Sign() < 0 {
		return errors.Errorf("negative transfer value %s", value)
	}
	if nvm.stateLedger.GetBalance(from).Cmp(value) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %s, want %s", from, nvm.stateLedger.GetBalance(from), value)
	}
	nvm.stateLedger.SubBalance(from, value)
	nvm.stateLedger.AddBalance(to, value)
	return nil
}

func (nvm *NativeVM) Call(caller, to ethcommon.Address, value *big.Int, data []byte) (ret []byte, err error) {
	if nvm.stateLedger == nil {
		return nil, ErrNotPrepared
	}
	if value == nil {
		value = big.NewInt(0)
	}
	if nvm.depth >= MaxCallDepth {
		return nil, ErrCallDepthExceeded
	}
	nvm.depth++
	snapshot := nvm.stateLedger.Snapshot()
	defer func() {
		nvm.depth--
		if err != nil {
			nvm.stateLedger.RevertToSnapshot(snapshot)
		}
	}()

	if err := nvm.Transfer(caller, to, value); err != nil {
		return nil, err
	}

	construct, err := nvm.resolve(to)
	if err != nil {
		return nil, err
	}
	if construct == nil {
		// externally owned account
		return nil, nil
	}
	return nvm.run(construct, to, caller, value, data)
}

func (nvm *NativeVM) DelegateCall(self, caller, target ethcommon.Address, value *big.Int, data []byte) (ret []byte, err error) {
	if nvm.stateLedger == nil {
		return nil, ErrNotPrepared
	}
	if value == nil {
		value = big.NewInt(0)
	}
	if nvm.depth >= MaxCallDepth {
		return nil, ErrCallDepthExceeded
	}
	nvm.depth++
	snapshot := nvm.stateLedger.Snapshot()
	defer func() {
		nvm.depth--
		if err != nil {
			nvm.stateLedger.RevertToSnapshot(snapshot)
		}
	}()

	construct, ok := nvm.implementations[target]
	if !ok {
		construct, ok = nvm.contracts[target]
	}
	if !ok {
		// logic free target, nothing runs
		if len(nvm.stateLedger.GetCode(target)) == 0 {
			return nil, nil
		}
		return nil, ErrUnsupportedCode
	}
	return nvm.run(construct, self, caller, value, data)
}

// resolve returns nil for an account without code.
func (nvm *NativeVM) resolve(to ethcommon.Address) (*common.SystemContractConstruct, error) {
	if construct, ok := nvm.contracts[to]; ok {
		return construct, nil
	}
	if construct, ok := nvm.implementations[to]; ok {
		return construct, nil
	}

	account := nvm.stateLedger.GetAccount(to)
	if account == nil || len(account.Code()) == 0 {
		return nil, nil
	}
	implementation, ok, err := common.GetProxyImplementation(account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedCode, "address %s", to)
	}
	construct, ok := nvm.implementations[implementation]
	if !ok {
		return nil, errors.Wrapf(ErrNotRegisteredImplementation, "proxy %s, implementation %s", to, implementation)
	}
	return construct, nil
}

func (nvm *NativeVM) run(construct *common.SystemContractConstruct, self, caller ethcommon.Address, value *big.Int, data []byte) (execResult []byte, execErr error) {
	defer func() {
		if err := recover(); err != nil {
			nvm.logger.Error(err)
			execResult = nil
			execErr = fmt.Errorf("%s", err)
		}
	}()

	contractInstance := construct.Build(self)
	contractInstance.SetContext(&common.VMContext{
		StateLedger: nvm.stateLedger,
		BlockNumber: nvm.blockNumber,
		BlockTime:   nvm.blockTime,
		From:        caller,
		Value:       value,
		VM:          nvm,
	})

	if len(data) == 0 {
		receiver, ok := contractInstance.(Receiver)
		if !ok {
			return nil, ErrNotReceivable
		}
		return nil, receiver.Receive()
	}
	if len(data) < 4 {
		return nil, ErrNotExistMethodName
	}

	method, err := construct.Abi.MethodById(data[:4])
	if err != nil {
		return nil, errors.Wrap(ErrNotExistMethodName, err.Error())
	}

	// capitalize the first letter of a function
	methodName := method.RawName
	funcName := fmt.Sprintf("%s%s", strings.ToUpper(methodName[:1]), methodName[1:])
	nvm.logger.Debugf("run system contract %s method: %s, self: %s, caller: %s", construct.Name, funcName, self, caller)
	fn := reflect.ValueOf(contractInstance).MethodByName(funcName)
	if !fn.IsValid() {
		return nil, ErrNotImplementFuncSystemContract
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s input", methodName)
	}
	if fn.Type().NumIn() != len(args) {
		return nil, errors.Errorf("method %s wants %d args, abi declares %d", funcName, fn.Type().NumIn(), len(args))
	}
	inputs := make([]reflect.Value, len(args))
	for i, arg := range args {
		inputs[i] = reflect.ValueOf(arg)
		inType := fn.Type().In(i)
		if !inputs[i].Type().AssignableTo(inType) {
			// tuple args are unpacked as anonymous structs
			inputs[i] = reflect.ValueOf(abi.ConvertType(arg, reflect.New(inType).Interface())).Elem()
		}
	}

	results := fn.Call(inputs)

	var returnRes []any
	for _, result := range results {
		if result.Type() == errorType {
			if !result.IsNil() {
				returnErr := result.Interface().(error)
				nvm.logger.Debugf("system contract %s method %s failed: %s", construct.Name, methodName, returnErr)
				return nil, returnErr
			}
			continue
		}
		returnRes = append(returnRes, result.Interface())
	}

	if len(method.Outputs) == 0 {
		return nil, nil
	}
	return method.Outputs.Pack(returnRes...)
}
