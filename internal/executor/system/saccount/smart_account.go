package saccount

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/saccount/interfaces"
)

const (
	AccountImplementationV1Version uint64 = 1
	AccountImplementationV2Version uint64 = 2
)

var (
	// initData of createAccount
	initDataArgs = abi.Arguments{
		{Name: "guardians", Type: common.AddressSliceType},
		{Name: "threshold", Type: common.BigIntType},
		{Name: "recoveryDelay", Type: common.BigIntType},
	}
)

// Config is fixed when an implementation is built, every account running
// the implementation shares it.
type Config struct {
	// EntryPoint is the only relayer allowed to validate operations
	EntryPoint ethcommon.Address

	Version uint64

	MinRecoveryDelay     time.Duration
	MaxRecoveryDelay     time.Duration
	DefaultRecoveryDelay time.Duration

	// AuthorizeUpgrade runs before an account swaps its logic, a non nil
	// error aborts the upgrade
	AuthorizeUpgrade func(account, newImplementation ethcommon.Address) error
}

func DefaultConfig(entryPoint ethcommon.Address) Config {
	return Config{
		EntryPoint:           entryPoint,
		Version:              AccountImplementationV1Version,
		MinRecoveryDelay:     24 * time.Hour,
		MaxRecoveryDelay:     30 * 24 * time.Hour,
		DefaultRecoveryDelay: 24 * time.Hour,
	}
}

// NewSmartAccountBuildConfig returns the account logic of one implementation version.
func NewSmartAccountBuildConfig(name string, addr string, cfg Config) *common.SystemContractBuildConfig[*SmartAccount] {
	return &common.SystemContractBuildConfig[*SmartAccount]{
		Name:    name,
		Address: addr,
		AbiStr:  smartAccountABI,
		Constructor: func(systemContractBase common.SystemContractBase) *SmartAccount {
			return &SmartAccount{
				SystemContractBase: systemContractBase,
				config:             cfg,
			}
		},
	}
}

var _ interfaces.IAccount = (*SmartAccount)(nil)
var _ interfaces.IRecovery = (*SmartAccount)(nil)

type SmartAccount struct {
	common.SystemContractBase
	config Config

	owner           *common.VMSlot[ethcommon.Address]
	initialized     *common.VMSlot[bool]
	nonce           *common.VMSlot[*big.Int]
	guardians       *common.VMSlot[[]ethcommon.Address]
	threshold       *common.VMSlot[uint64]
	recoveryDelay   *common.VMSlot[uint64]
	recoveryRequest *common.VMSlot[RecoveryRequest]
	guard           *common.ReentrancyGuard
}

func (sa *SmartAccount) SetContext(context *common.VMContext) {
	sa.SystemContractBase.SetContext(context)

	sa.owner = common.NewVMSlot[ethcommon.Address](sa.StateAccount, ownerSlot)
	sa.initialized = common.NewVMSlot[bool](sa.StateAccount, initializedSlot)
	sa.nonce = common.NewVMSlot[*big.Int](sa.StateAccount, nonceSlot)
	sa.guardians = common.NewVMSlot[[]ethcommon.Address](sa.StateAccount, guardiansSlot)
	sa.threshold = common.NewVMSlot[uint64](sa.StateAccount, thresholdSlot)
	sa.recoveryDelay = common.NewVMSlot[uint64](sa.StateAccount, recoveryDelaySlot)
	sa.recoveryRequest = common.NewVMSlot[RecoveryRequest](sa.StateAccount, recoveryRequestSlot)
	sa.guard = common.NewReentrancyGuard(sa.StateAccount)
}

// Initialize sets the owner exactly once, initData optionally carries the
// guardian setup.
func (sa *SmartAccount) Initialize(owner ethcommon.Address, initData []byte) error {
	initialized, err := sa.initialized.GetOrDefault()
	if err != nil {
		return err
	}
	if initialized {
		return sa.Revert(&ErrorAlreadyInitialized{})
	}
	if owner == (ethcommon.Address{}) {
		return sa.Revert(&ErrorInvalidOwner{})
	}

	if err := sa.initialized.Put(true); err != nil {
		return err
	}
	if err := sa.owner.Put(owner); err != nil {
		return err
	}
	if err := sa.nonce.Put(big.NewInt(0)); err != nil {
		return err
	}
	sa.EmitEvent(&EventAccountInitialized{
		Owner:      owner,
		EntryPoint: sa.config.EntryPoint,
	})

	if len(initData) == 0 {
		return nil
	}
	return sa.applyInitData(initData)
}

func (sa *SmartAccount) applyInitData(initData []byte) error {
	values, err := initDataArgs.Unpack(initData)
	if err != nil {
		return errors.Wrap(err, "decode account init data")
	}
	guardians := values[0].([]ethcommon.Address)
	threshold := values[1].(*big.Int)
	recoveryDelay := values[2].(*big.Int)

	for _, guardian := range guardians {
		if err := sa.addGuardian(guardian); err != nil {
			return err
		}
	}
	if threshold.Sign() != 0 {
		if err := sa.setThreshold(threshold); err != nil {
			return err
		}
	}
	if recoveryDelay.Sign() != 0 {
		if err := sa.setRecoveryDelay(recoveryDelay); err != nil {
			return err
		}
	}
	return nil
}

// PackInitData encodes the guardian setup accepted by createAccount.
func PackInitData(guardians []ethcommon.Address, threshold uint64, recoveryDelay time.Duration) ([]byte, error) {
	if guardians == nil {
		guardians = []ethcommon.Address{}
	}
	return initDataArgs.Pack(guardians, new(big.Int).SetUint64(threshold), big.NewInt(int64(recoveryDelay/time.Second)))
}

func (sa *SmartAccount) EntryPoint() (ethcommon.Address, error) {
	return sa.config.EntryPoint, nil
}

func (sa *SmartAccount) GetNonce() (*big.Int, error) {
	nonce, err := sa.nonce.GetOrDefault()
	if err != nil {
		return nil, err
	}
	if nonce == nil {
		return big.NewInt(0), nil
	}
	return nonce, nil
}

func (sa *SmartAccount) checkEntryPoint() error {
	if sa.Ctx.From != sa.config.EntryPoint {
		return sa.Revert(&ErrorOnlyAuthorizedCaller{})
	}
	return nil
}

func (sa *SmartAccount) checkOwnerOrEntryPoint() error {
	if sa.Ctx.From == sa.config.EntryPoint {
		return nil
	}
	owner, err := sa.Owner()
	if err != nil {
		return err
	}
	if owner == (ethcommon.Address{}) || sa.Ctx.From != owner {
		return sa.Revert(&ErrorOnlyOwnerOrAuthorizedCaller{})
	}
	return nil
}

// ValidateOperation implements interfaces.IAccount.
// Nonce mismatch, a signature not from the owner and a failed fee payment
// all return SigValidationFailed. The nonce is consumed once the signature
// matched, even if the payment fails afterwards.
func (sa *SmartAccount) ValidateOperation(op interfaces.Operation, opHash [32]byte, missingFunds *big.Int) (*big.Int, error) {
	if err := sa.checkEntryPoint(); err != nil {
		return nil, err
	}
	failed := big.NewInt(interfaces.SigValidationFailed)

	nonce, err := sa.GetNonce()
	if err != nil {
		return nil, err
	}
	if op.Nonce == nil || op.Nonce.Cmp(nonce) != 0 {
		sa.Logger.Debugf("operation nonce mismatch, account: %s, want: %s, got: %v", sa.EthAddress, nonce, op.Nonce)
		validateOperationCounter.WithLabelValues(resultNonceMismatch).Inc()
		return failed, nil
	}

	owner, err := sa.Owner()
	if err != nil {
		return nil, err
	}
	signer, err := recoveryAddrFromSignature(opHash, op.Signature)
	if err != nil || owner == (ethcommon.Address{}) || signer != owner {
		sa.Logger.Debugf("operation signature is not from owner, account: %s, owner: %s, signer: %s, err: %v", sa.EthAddress, owner, signer, err)
		validateOperationCounter.WithLabelValues(resultBadSignature).Inc()
		return failed, nil
	}

	if err := sa.nonce.Put(new(big.Int).Add(nonce, big.NewInt(1))); err != nil {
		return nil, err
	}

	if missingFunds != nil && missingFunds.Sign() > 0 {
		// the payment runs in its own frame, a failure keeps the nonce increment
		if _, err := sa.Ctx.VM.Call(sa.EthAddress, sa.Ctx.From, missingFunds, nil); err != nil {
			sa.Logger.Warnf("pay missing funds %s to %s failed: %v", missingFunds, sa.Ctx.From, err)
			validateOperationCounter.WithLabelValues(resultPaymentFailed).Inc()
			return failed, nil
		}
	}

	validateOperationCounter.WithLabelValues(resultAccepted).Inc()
	return big.NewInt(interfaces.SigValidationSucceeded), nil
}

// Execute calls target with value from the account.
func (sa *SmartAccount) Execute(target ethcommon.Address, value *big.Int, data []byte) error {
	if err := sa.checkOwnerOrEntryPoint(); err != nil {
		return err
	}
	release, err := sa.guard.Enter()
	defer release()
	if err != nil {
		return err
	}

	sa.Logger.Debugf("smart account %s execute, target: %s, value: %s, data: %x", sa.EthAddress, target, value, data)
	if _, err := sa.Ctx.VM.Call(sa.EthAddress, target, value, data); err != nil {
		sa.Logger.Infof("smart account %s execute failed: %v", sa.EthAddress, err)
		return sa.Revert(&ErrorExecutionFailed{})
	}

	sa.EmitEvent(&EventTransactionExecuted{
		Target: target,
		Value:  bigOrZero(value),
		Data:   data,
	})
	return nil
}

// ExecuteBatch runs every call in order, any failure aborts the whole batch.
func (sa *SmartAccount) ExecuteBatch(targets []ethcommon.Address, values []*big.Int, data [][]byte) error {
	if err := sa.checkOwnerOrEntryPoint(); err != nil {
		return err
	}
	release, err := sa.guard.Enter()
	defer release()
	if err != nil {
		return err
	}

	if len(targets) != len(values) || len(targets) != len(data) {
		return sa.Revert(&ErrorArrayLengthMismatch{})
	}

	for i := range targets {
		if _, err := sa.Ctx.VM.Call(sa.EthAddress, targets[i], values[i], data[i]); err != nil {
			sa.Logger.Infof("smart account %s execute batch failed at %d: %v", sa.EthAddress, i, err)
			return sa.Revert(&ErrorExecutionFailed{})
		}
	}

	sa.EmitEvent(&EventBatchTransactionExecuted{
		Targets: targets,
		Values:  values,
	})
	return nil
}

// ExecuteDelegate runs the logic of target in the storage and identity of
// the account and returns its raw result.
func (sa *SmartAccount) ExecuteDelegate(target ethcommon.Address, data []byte) ([]byte, error) {
	if err := sa.checkOwnerOrEntryPoint(); err != nil {
		return nil, err
	}
	release, err := sa.guard.Enter()
	defer release()
	if err != nil {
		return nil, err
	}

	ret, err := sa.Ctx.VM.DelegateCall(sa.EthAddress, sa.Ctx.From, target, sa.Ctx.Value, data)
	if err != nil {
		sa.Logger.Infof("smart account %s delegate to %s failed: %v", sa.EthAddress, target, err)
		return nil, sa.Revert(&ErrorExecutionFailed{})
	}

	sa.EmitEvent(&EventTransactionExecuted{
		Target: target,
		Value:  big.NewInt(0),
		Data:   data,
	})
	if ret == nil {
		ret = []byte{}
	}
	return ret, nil
}

// Receive accepts plain value transfers.
func (sa *SmartAccount) Receive() error {
	return nil
}

func recoveryAddrFromSignature(hash [32]byte, signature []byte) (ethcommon.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return ethcommon.Address{}, errors.New("invalid signature length")
	}

	ethHash := accounts.TextHash(hash[:])
	// wallets return r|s|v with v = recovery id + 27
	sig := make([]byte, len(signature))
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	recoveredPub, err := crypto.SigToPub(ethHash, sig)
	if err != nil {
		return ethcommon.Address{}, err
	}
	return crypto.PubkeyToAddress(*recoveredPub), nil
}
