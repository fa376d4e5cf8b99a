package saccount

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/common/mock_common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/saccount/interfaces"
)

func TestSmartAccount_Initialize(t *testing.T) {
	env := newTestEnv(t)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	addr := env.createAccount(owner, 0, nil)

	err := env.run(stranger, addr, func(sa *SmartAccount) error {
		return sa.Initialize(stranger, nil)
	})
	assert.ErrorIs(t, err, revert(&ErrorAlreadyInitialized{}))
	assert.Equal(t, owner, env.owner(addr))

	// a bare proxy without the factory
	bare := ethcommon.HexToAddress("0xaa00000000000000000000000000000000000002")
	require.Nil(t, common.InstallProxy(env.nvm.StateLedger.GetOrCreateAccount(bare), ethcommon.HexToAddress(common.AccountImplementationV1Addr)))
	assert.Equal(t, ethcommon.Address{}, env.owner(bare))
	err = env.run(stranger, bare, func(sa *SmartAccount) error {
		return sa.Initialize(ethcommon.Address{}, nil)
	})
	assert.ErrorIs(t, err, revert(&ErrorInvalidOwner{}))

	// an uninitialized account cannot be driven by anyone but the relayer
	err = env.run(stranger, bare, func(sa *SmartAccount) error {
		return sa.Execute(testTarget, big.NewInt(0), packTarget(t, "setValue", big.NewInt(1)))
	})
	assert.ErrorIs(t, err, revert(&ErrorOnlyOwnerOrAuthorizedCaller{}))
}

func TestSmartAccount_ValidateOperation(t *testing.T) {
	env := newTestEnv(t)
	key, owner := newOwnerKey(t)
	addr := env.createAccount(owner, 0, nil)

	validate := func(from ethcommon.Address, op *interfaces.Operation, hash ethcommon.Hash, missingFunds *big.Int) (*big.Int, error) {
		var code *big.Int
		err := env.run(from, addr, func(sa *SmartAccount) error {
			var err error
			code, err = sa.ValidateOperation(*op, hash, missingFunds)
			return err
		})
		return code, err
	}

	t.Run("nonce mismatch", func(t *testing.T) {
		op := &interfaces.Operation{Sender: addr, Nonce: big.NewInt(5)}
		hash := signOperation(t, key, op)
		code, err := validate(testEntryPoint, op, hash, nil)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationFailed, code.Int64())
		assert.Zero(t, env.nonce(addr).Sign())
	})

	t.Run("signature not from owner", func(t *testing.T) {
		otherKey, _ := newOwnerKey(t)
		op := &interfaces.Operation{Sender: addr, Nonce: big.NewInt(0)}
		hash := signOperation(t, otherKey, op)
		code, err := validate(testEntryPoint, op, hash, nil)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationFailed, code.Int64())
		assert.Zero(t, env.nonce(addr).Sign())

		op.Signature = op.Signature[:10]
		code, err = validate(testEntryPoint, op, hash, nil)
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationFailed, code.Int64())
	})

	t.Run("only the relayer", func(t *testing.T) {
		op := &interfaces.Operation{Sender: addr, Nonce: big.NewInt(0)}
		hash := signOperation(t, key, op)
		_, err := validate(owner, op, hash, nil)
		assert.ErrorIs(t, err, revert(&ErrorOnlyAuthorizedCaller{}))
		assert.Zero(t, env.nonce(addr).Sign())
	})

	t.Run("accepted operations consume nonces in order", func(t *testing.T) {
		for i := int64(0); i < 3; i++ {
			op := &interfaces.Operation{Sender: addr, Nonce: big.NewInt(i), CallData: []byte{byte(i)}}
			hash := signOperation(t, key, op)
			code, err := validate(testEntryPoint, op, hash, nil)
			require.Nil(t, err)
			assert.EqualValues(t, interfaces.SigValidationSucceeded, code.Int64())
			assert.EqualValues(t, i+1, env.nonce(addr).Int64())

			// replay is rejected
			code, err = validate(testEntryPoint, op, hash, nil)
			require.Nil(t, err)
			assert.EqualValues(t, interfaces.SigValidationFailed, code.Int64())
			assert.EqualValues(t, i+1, env.nonce(addr).Int64())
		}
	})

	t.Run("missing funds are paid to the relayer", func(t *testing.T) {
		env.nvm.StateLedger.SetBalance(addr, big.NewInt(1000))
		op := &interfaces.Operation{Sender: addr, Nonce: big.NewInt(3)}
		hash := signOperation(t, key, op)
		code, err := validate(testEntryPoint, op, hash, big.NewInt(300))
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationSucceeded, code.Int64())
		assert.Equal(t, big.NewInt(700), env.nvm.StateLedger.GetBalance(addr))
		assert.Equal(t, big.NewInt(300), env.nvm.StateLedger.GetBalance(testEntryPoint))
	})

	t.Run("failed payment keeps the nonce increment", func(t *testing.T) {
		op := &interfaces.Operation{Sender: addr, Nonce: big.NewInt(4)}
		hash := signOperation(t, key, op)
		code, err := validate(testEntryPoint, op, hash, big.NewInt(5000))
		require.Nil(t, err)
		assert.EqualValues(t, interfaces.SigValidationFailed, code.Int64())
		assert.EqualValues(t, 5, env.nonce(addr).Int64())
		assert.Equal(t, big.NewInt(700), env.nvm.StateLedger.GetBalance(addr))
	})
}

func TestSmartAccount_ValidateOperationPaymentWithMockVM(t *testing.T) {
	env := newTestEnv(t)
	key, owner := newOwnerKey(t)
	addr := env.createAccount(owner, 0, nil)

	ctrl := gomock.NewController(t)
	mockVM := mock_common.NewMockVirtualMachine(ctrl)
	mockVM.EXPECT().Call(addr, testEntryPoint, big.NewInt(10), gomock.Any()).Return(nil, errors.New("transfer refused")).Times(1)
	env.nvm.VM = mockVM

	op := &interfaces.Operation{Sender: addr, Nonce: big.NewInt(0)}
	hash := signOperation(t, key, op)
	var code *big.Int
	err := env.run(testEntryPoint, addr, func(sa *SmartAccount) error {
		var err error
		code, err = sa.ValidateOperation(*op, hash, big.NewInt(10))
		return err
	})
	require.Nil(t, err)
	assert.EqualValues(t, interfaces.SigValidationFailed, code.Int64())

	env.nvm.VM = env.vm
	assert.EqualValues(t, 1, env.nonce(addr).Int64())
}

func TestSmartAccount_ValidateOperationThroughVM(t *testing.T) {
	env := newTestEnv(t)
	key, owner := newOwnerKey(t)
	addr := env.createAccount(owner, 0, nil)

	// every numeric field is set, abi packing rejects nil integers
	op := &interfaces.Operation{
		Sender:               addr,
		Nonce:                big.NewInt(0),
		CallData:             []byte("call"),
		CallGasLimit:         big.NewInt(100000),
		VerificationGasLimit: big.NewInt(50000),
		PreVerificationGas:   big.NewInt(21000),
		MaxFeePerGas:         big.NewInt(2),
		MaxPriorityFeePerGas: big.NewInt(1),
	}
	hash := signOperation(t, key, op)
	ret, err := env.vm.Call(testEntryPoint, addr, nil, packAccount(t, "validateOperation", *op, hash, big.NewInt(0)))
	require.Nil(t, err)
	out, err := SmartAccountBuildABI().Unpack("validateOperation", ret)
	require.Nil(t, err)
	assert.Zero(t, out[0].(*big.Int).Sign())
	assert.EqualValues(t, 1, env.nonce(addr).Int64())
}

func TestSmartAccount_Execute(t *testing.T) {
	env := newTestEnv(t)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	addr := env.createAccount(owner, 0, nil)
	payload := packTarget(t, "setValue", big.NewInt(42))

	err := env.run(owner, addr, func(sa *SmartAccount) error {
		return sa.Execute(testTarget, big.NewInt(0), payload)
	})
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(42), env.targetValue())

	executed := env.logs("TransactionExecuted")
	require.Len(t, executed, 1)
	assert.Equal(t, addr, executed[0].Address)
	assert.Equal(t, ethcommon.BytesToHash(testTarget.Bytes()), executed[0].Topics[1])
	values, err := SmartAccountBuildABI().Events["TransactionExecuted"].Inputs.NonIndexed().Unpack(executed[0].Data)
	require.Nil(t, err)
	assert.Zero(t, values[0].(*big.Int).Sign())
	assert.Equal(t, payload, values[1].([]byte))

	t.Run("relayer may execute", func(t *testing.T) {
		err := env.run(testEntryPoint, addr, func(sa *SmartAccount) error {
			return sa.Execute(testTarget, big.NewInt(0), packTarget(t, "setValue", big.NewInt(43)))
		})
		require.Nil(t, err)
		assert.Equal(t, big.NewInt(43), env.targetValue())
	})

	t.Run("others may not", func(t *testing.T) {
		err := env.run(stranger, addr, func(sa *SmartAccount) error {
			return sa.Execute(testTarget, big.NewInt(0), packTarget(t, "setValue", big.NewInt(44)))
		})
		assert.ErrorIs(t, err, revert(&ErrorOnlyOwnerOrAuthorizedCaller{}))
		assert.Equal(t, big.NewInt(43), env.targetValue())
	})

	t.Run("value transfer", func(t *testing.T) {
		env.nvm.StateLedger.SetBalance(addr, big.NewInt(100))
		receiver := ethcommon.HexToAddress("0x7000000000000000000000000000000000000003")
		err := env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.Execute(receiver, big.NewInt(60), nil)
		})
		require.Nil(t, err)
		assert.Equal(t, big.NewInt(40), env.nvm.StateLedger.GetBalance(addr))
		assert.Equal(t, big.NewInt(60), env.nvm.StateLedger.GetBalance(receiver))

		err = env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.Execute(receiver, big.NewInt(60), nil)
		})
		assert.ErrorIs(t, err, revert(&ErrorExecutionFailed{}))
		assert.Equal(t, big.NewInt(40), env.nvm.StateLedger.GetBalance(addr))
	})

	t.Run("failed call", func(t *testing.T) {
		before := len(env.logs("TransactionExecuted"))
		err := env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.Execute(testTarget, big.NewInt(0), packTarget(t, "fail"))
		})
		assert.ErrorIs(t, err, revert(&ErrorExecutionFailed{}))
		assert.Len(t, env.logs("TransactionExecuted"), before)
	})

	t.Run("guard is released after a failure", func(t *testing.T) {
		err := env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.Execute(testTarget, big.NewInt(0), packTarget(t, "setValue", big.NewInt(45)))
		})
		require.Nil(t, err)
		assert.Equal(t, big.NewInt(45), env.targetValue())
	})
}

func TestSmartAccount_ExecuteReentrancy(t *testing.T) {
	// the target is the entry point so its callback passes authorization
	cfg := testAccountConfig(AccountImplementationV1Version)
	cfg.EntryPoint = testTarget
	env := newTestEnvWithConfig(t, cfg)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	addr := env.createAccount(owner, 0, nil)

	inner := packAccount(t, "execute", testTarget, big.NewInt(0), packTarget(t, "setValue", big.NewInt(7)))
	err := env.run(owner, addr, func(sa *SmartAccount) error {
		return sa.Execute(testTarget, big.NewInt(0), packTarget(t, "reenter", addr, inner))
	})
	require.Nil(t, err)
	assert.Zero(t, env.targetValue().Sign())

	ret, err := env.vm.Call(stranger, testTarget, nil, packTarget(t, "reentrancyBlocked"))
	require.Nil(t, err)
	out, err := targetBuildConfig.MustGetABI().Unpack("reentrancyBlocked", ret)
	require.Nil(t, err)
	assert.True(t, out[0].(bool))

	err = env.run(owner, addr, func(sa *SmartAccount) error {
		release, err := common.NewReentrancyGuard(sa.StateAccount).Enter()
		require.Nil(t, err)
		defer release()
		return sa.ExecuteBatch(nil, nil, nil)
	})
	assert.ErrorIs(t, err, common.ReentrancyGuardReentrantCall())
}

func TestSmartAccount_ExecuteUnauthorizedWhileEntered(t *testing.T) {
	env := newTestEnv(t)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	addr := env.createAccount(owner, 0, nil)

	held := func(call func(sa *SmartAccount) error) func(sa *SmartAccount) error {
		return func(sa *SmartAccount) error {
			release, err := common.NewReentrancyGuard(sa.StateAccount).Enter()
			require.Nil(t, err)
			defer release()
			return call(sa)
		}
	}

	err := env.run(stranger, addr, held(func(sa *SmartAccount) error {
		return sa.Execute(testTarget, big.NewInt(0), packTarget(t, "setValue", big.NewInt(7)))
	}))
	assert.ErrorIs(t, err, revert(&ErrorOnlyOwnerOrAuthorizedCaller{}))

	err = env.run(stranger, addr, held(func(sa *SmartAccount) error {
		return sa.ExecuteBatch(nil, nil, nil)
	}))
	assert.ErrorIs(t, err, revert(&ErrorOnlyOwnerOrAuthorizedCaller{}))

	err = env.run(stranger, addr, held(func(sa *SmartAccount) error {
		_, err := sa.ExecuteDelegate(testTarget, packTarget(t, "setValue", big.NewInt(7)))
		return err
	}))
	assert.ErrorIs(t, err, revert(&ErrorOnlyOwnerOrAuthorizedCaller{}))
	assert.Zero(t, env.targetValue().Sign())
}

func TestSmartAccount_ExecuteBatch(t *testing.T) {
	env := newTestEnv(t)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	addr := env.createAccount(owner, 0, nil)
	receiver := ethcommon.HexToAddress("0x7000000000000000000000000000000000000003")
	env.nvm.StateLedger.SetBalance(addr, big.NewInt(100))

	t.Run("length mismatch calls nothing", func(t *testing.T) {
		err := env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.ExecuteBatch(
				[]ethcommon.Address{testTarget, receiver},
				[]*big.Int{big.NewInt(0), big.NewInt(10)},
				[][]byte{packTarget(t, "setValue", big.NewInt(1))},
			)
		})
		assert.ErrorIs(t, err, revert(&ErrorArrayLengthMismatch{}))
		assert.Zero(t, env.targetValue().Sign())
		assert.Zero(t, env.nvm.StateLedger.GetBalance(receiver).Sign())
	})

	t.Run("all or nothing", func(t *testing.T) {
		err := env.run(owner, addr, func(sa *SmartAccount) error {
			return sa.ExecuteBatch(
				[]ethcommon.Address{testTarget, receiver, testTarget},
				[]*big.Int{big.NewInt(0), big.NewInt(10), big.NewInt(0)},
				[][]byte{packTarget(t, "setValue", big.NewInt(1)), nil, packTarget(t, "fail")},
			)
		})
		assert.ErrorIs(t, err, revert(&ErrorExecutionFailed{}))
		assert.Zero(t, env.targetValue().Sign())
		assert.Equal(t, big.NewInt(100), env.nvm.StateLedger.GetBalance(addr))
		assert.Len(t, env.logs("BatchTransactionExecuted"), 0)
	})

	t.Run("success", func(t *testing.T) {
		err := env.run(testEntryPoint, addr, func(sa *SmartAccount) error {
			return sa.ExecuteBatch(
				[]ethcommon.Address{testTarget, receiver},
				[]*big.Int{big.NewInt(0), big.NewInt(10)},
				[][]byte{packTarget(t, "setValue", big.NewInt(2)), nil},
			)
		})
		require.Nil(t, err)
		assert.Equal(t, big.NewInt(2), env.targetValue())
		assert.Equal(t, big.NewInt(10), env.nvm.StateLedger.GetBalance(receiver))
		assert.Len(t, env.logs("BatchTransactionExecuted"), 1)
	})

	t.Run("unauthorized", func(t *testing.T) {
		err := env.run(stranger, addr, func(sa *SmartAccount) error {
			return sa.ExecuteBatch(nil, nil, nil)
		})
		assert.ErrorIs(t, err, revert(&ErrorOnlyOwnerOrAuthorizedCaller{}))
	})
}

func TestSmartAccount_ExecuteDelegate(t *testing.T) {
	env := newTestEnv(t)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	addr := env.createAccount(owner, 0, nil)

	err := env.run(owner, addr, func(sa *SmartAccount) error {
		_, err := sa.ExecuteDelegate(testTarget, packTarget(t, "setValue", big.NewInt(77)))
		return err
	})
	require.Nil(t, err)
	// the target logic wrote into the account storage
	assert.Zero(t, env.targetValue().Sign())
	exist, _ := env.nvm.StateLedger.GetState(addr, []byte("value"))
	assert.True(t, exist)

	var ret []byte
	err = env.run(owner, addr, func(sa *SmartAccount) error {
		var err error
		ret, err = sa.ExecuteDelegate(testTarget, packTarget(t, "value"))
		return err
	})
	require.Nil(t, err)
	out, err := targetBuildConfig.MustGetABI().Unpack("value", ret)
	require.Nil(t, err)
	assert.Equal(t, big.NewInt(77), out[0].(*big.Int))
	assert.Len(t, env.logs("TransactionExecuted"), 2)

	err = env.run(owner, addr, func(sa *SmartAccount) error {
		_, err := sa.ExecuteDelegate(testTarget, packTarget(t, "fail"))
		return err
	})
	assert.ErrorIs(t, err, revert(&ErrorExecutionFailed{}))

	err = env.run(stranger, addr, func(sa *SmartAccount) error {
		_, err := sa.ExecuteDelegate(testTarget, packTarget(t, "value"))
		return err
	})
	assert.ErrorIs(t, err, revert(&ErrorOnlyOwnerOrAuthorizedCaller{}))
	assert.Equal(t, owner, env.owner(addr))
}

func TestSmartAccount_TransferOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000001")
	newOwner := ethcommon.HexToAddress("0x7000000000000000000000000000000000000002")
	addr := env.createAccount(owner, 0, nil)

	err := env.run(stranger, addr, func(sa *SmartAccount) error {
		return sa.TransferOwnership(newOwner)
	})
	assert.ErrorIs(t, err, revert(&ErrorOwnableUnauthorizedAccount{Account: stranger}))

	err = env.run(owner, addr, func(sa *SmartAccount) error {
		return sa.TransferOwnership(ethcommon.Address{})
	})
	assert.ErrorIs(t, err, revert(&ErrorInvalidOwner{}))

	err = env.run(owner, addr, func(sa *SmartAccount) error {
		return sa.TransferOwnership(newOwner)
	})
	require.Nil(t, err)
	assert.Equal(t, newOwner, env.owner(addr))
	assert.Len(t, env.logs("OwnershipTransferred"), 1)
}
