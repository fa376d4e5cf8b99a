package common

import (
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/internal/ledger"
	"github.com/axiomesh/axiom-custody/pkg/packer"
)

const (
	// ZeroAddress is a special address, no one has control
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// system contract address range 0x1000-0xffff, start from 1000, avoid conflicts with precompiled contracts
	// SystemContractStartAddr is the start address of system contract
	SystemContractStartAddr = "0x0000000000000000000000000000000000001000"

	// AccountFactoryContractAddr deploys custody accounts at deterministic addresses
	AccountFactoryContractAddr = "0x0000000000000000000000000000000000001009"

	// AccountImplementationV1Addr is the first registered account logic
	AccountImplementationV1Addr = "0x000000000000000000000000000000000000100a"

	// AccountImplementationV2Addr is reserved for the next account logic
	AccountImplementationV2Addr = "0x000000000000000000000000000000000000100b"

	// SystemContractEndAddr is the end address of system contract
	SystemContractEndAddr = "0x000000000000000000000000000000000000ffff"
)

// IsSystemContractAddr reports whether addr lies in the reserved system range.
func IsSystemContractAddr(addr ethcommon.Address) bool {
	start := ethcommon.HexToAddress(SystemContractStartAddr)
	end := ethcommon.HexToAddress(SystemContractEndAddr)
	return addr.Cmp(start) >= 0 && addr.Cmp(end) <= 0
}

type SystemContractConfig struct {
	Logger logrus.FieldLogger
}

// VirtualMachine is what a running contract can ask of the engine executing it.
//
//go:generate mockgen -destination mock_common/mock_common.go -package mock_common -source common.go
type VirtualMachine interface {
	// Call runs data against to in a nested frame, value moves from caller to to.
	// All state changes of the frame are reverted when an error is returned.
	Call(caller, to ethcommon.Address, value *big.Int, data []byte) ([]byte, error)

	// DelegateCall runs the logic deployed at target against the storage and
	// identity of self, caller and value are kept from the current frame.
	DelegateCall(self, caller, target ethcommon.Address, value *big.Int, data []byte) ([]byte, error)

	// Transfer moves value between two accounts
	Transfer(from, to ethcommon.Address, value *big.Int) error

	// IsImplementation reports whether addr is registered account logic
	IsImplementation(addr ethcommon.Address) bool
}

type VMContext struct {
	StateLedger ledger.StateLedger
	BlockNumber uint64
	BlockTime   uint64
	From        ethcommon.Address
	Value       *big.Int
	VM          VirtualMachine
}

// SystemContract must be implemented by all system contract
type SystemContract interface {
	SetContext(*VMContext)
}

type SystemContractBase struct {
	Logger       logrus.FieldLogger
	EthAddress   ethcommon.Address
	Abi          *abi.ABI
	Ctx          *VMContext
	StateAccount ledger.IAccount
}

func (s *SystemContractBase) SetContext(ctx *VMContext) {
	s.Ctx = ctx
	s.StateAccount = ctx.StateLedger.GetOrCreateAccount(s.EthAddress)
}

// EmitEvent records the event as a log of the current frame, it is dropped
// if the frame reverts.
func (s *SystemContractBase) EmitEvent(event packer.Event) {
	log, err := event.Pack(*s.Abi)
	if err != nil {
		panic(err)
	}
	log.Address = s.EthAddress
	s.Ctx.StateLedger.AddLog(log)
}

// Revert packs a declared abi error of this contract.
func (s *SystemContractBase) Revert(err packer.Error) error {
	return err.Pack(*s.Abi)
}

// SystemContractConstruct is the type erased form of a build config, used
// by the engine to instantiate contracts bound to an address.
type SystemContractConstruct struct {
	Name  string
	Abi   *abi.ABI
	Build func(addr ethcommon.Address) SystemContract
}

type SystemContractBuildConfig[T SystemContract] struct {
	Name        string
	Address     string
	AbiStr      string
	Constructor func(systemContractBase SystemContractBase) T

	abiOnce sync.Once
	abi     *abi.ABI
	abiErr  error
}

func (m *SystemContractBuildConfig[T]) GetABI() (*abi.ABI, error) {
	m.abiOnce.Do(func() {
		contractABI, err := abi.JSON(strings.NewReader(m.AbiStr))
		if err != nil {
			m.abiErr = err
			return
		}
		m.abi = &contractABI
	})
	return m.abi, m.abiErr
}

func (m *SystemContractBuildConfig[T]) MustGetABI() *abi.ABI {
	contractABI, err := m.GetABI()
	if err != nil {
		panic(err)
	}
	return contractABI
}

// Build returns the contract bound to its fixed address.
func (m *SystemContractBuildConfig[T]) Build(cfg *SystemContractConfig) T {
	return m.BuildWithAddress(cfg, ethcommon.HexToAddress(m.Address))
}

// BuildWithAddress returns the contract bound to addr, used for logic shared
// by many accounts.
func (m *SystemContractBuildConfig[T]) BuildWithAddress(cfg *SystemContractConfig, addr ethcommon.Address) T {
	return m.Constructor(SystemContractBase{
		Logger:     cfg.Logger.WithField("contract", m.Name),
		EthAddress: addr,
		Abi:        m.MustGetABI(),
	})
}

func (m *SystemContractBuildConfig[T]) Construct(cfg *SystemContractConfig) *SystemContractConstruct {
	return &SystemContractConstruct{
		Name: m.Name,
		Abi:  m.MustGetABI(),
		Build: func(addr ethcommon.Address) SystemContract {
			return m.BuildWithAddress(cfg, addr)
		},
	}
}
