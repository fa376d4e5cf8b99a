package jsonrpc

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomesh/axiom-custody/internal/executor"
	sys_common "github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/saccount"
	"github.com/axiomesh/axiom-custody/internal/ledger"
	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/packer"
	"github.com/axiomesh/axiom-custody/pkg/repo"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

var (
	factoryAddr = common.HexToAddress(sys_common.AccountFactoryContractAddr)
	owner       = common.HexToAddress("0x7000000000000000000000000000000000000001")
	stranger    = common.HexToAddress("0x7000000000000000000000000000000000000009")
)

func newTestClient(t *testing.T) (*rpc.Client, *executor.BlockExecutor) {
	exec, err := executor.New(repo.MockRepo(t), ledger.NewMemoryStateLedger())
	require.Nil(t, err)
	t.Cleanup(exec.Close)

	cbs, err := NewChainBrokerService(exec, loggers.Logger(loggers.API))
	require.Nil(t, err)
	srv := httptest.NewServer(cbs.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.Nil(t, cbs.Stop())
	})

	client, err := rpc.DialHTTP(srv.URL)
	require.Nil(t, err)
	t.Cleanup(client.Close)
	return client, exec
}

func pack(t *testing.T, contractABI *abi.ABI, method string, args ...any) hexutil.Bytes {
	data, err := contractABI.Pack(method, args...)
	require.Nil(t, err)
	return data
}

func TestCustodyAPI_SendTransaction(t *testing.T) {
	client, exec := newTestClient(t)
	ctx := context.Background()
	factoryABI := saccount.SmartAccountFactoryBuildConfig.MustGetABI()

	var predicted hexutil.Bytes
	err := client.CallContext(ctx, &predicted, "custody_call", CallArgs{
		To:   factoryAddr,
		Data: pack(t, factoryABI, "getAddress", owner, big.NewInt(0)),
	})
	require.Nil(t, err)

	var receipt RPCReceipt
	err = client.CallContext(ctx, &receipt, "custody_sendTransaction", TransactionArgs{
		From: owner,
		To:   factoryAddr,
		Data: pack(t, factoryABI, "createAccount", owner, big.NewInt(0), []byte{}),
	})
	require.Nil(t, err)
	assert.Equal(t, hexutil.Uint64(types.ReceiptSuccess), receipt.Status)
	assert.Equal(t, hexutil.Uint64(1), receipt.BlockNumber)
	assert.NotEmpty(t, receipt.Logs)
	assert.Equal(t, []byte(predicted), []byte(receipt.Ret))

	// the submission is committed in its own block
	assert.EqualValues(t, 1, exec.CurrentHeight())

	var height hexutil.Uint64
	require.Nil(t, client.CallContext(ctx, &height, "custody_blockNumber"))
	assert.Equal(t, hexutil.Uint64(1), height)

	var nonce hexutil.Uint64
	require.Nil(t, client.CallContext(ctx, &nonce, "custody_getNonce", owner))
	assert.Equal(t, hexutil.Uint64(1), nonce)

	t.Run("stale nonce is rejected", func(t *testing.T) {
		stale := hexutil.Uint64(0)
		err := client.CallContext(ctx, &receipt, "custody_sendTransaction", TransactionArgs{
			From:  owner,
			To:    factoryAddr,
			Nonce: &stale,
			Data:  pack(t, factoryABI, "createAccount", owner, big.NewInt(1), []byte{}),
		})
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), executor.ErrNonceMismatch.Error())
		assert.EqualValues(t, 1, exec.CurrentHeight())
	})

	t.Run("failed transaction returns a receipt", func(t *testing.T) {
		account := common.BytesToAddress(predicted)
		var failed RPCReceipt
		err := client.CallContext(ctx, &failed, "custody_sendTransaction", TransactionArgs{
			From: stranger,
			To:   account,
			Data: pack(t, saccount.SmartAccountBuildABI(), "execute", stranger, big.NewInt(0), []byte{}),
		})
		require.Nil(t, err)
		assert.Equal(t, hexutil.Uint64(types.ReceiptFailed), failed.Status)
		name, _, err := packer.UnpackError(*saccount.SmartAccountBuildABI(), failed.Ret)
		require.Nil(t, err)
		assert.Equal(t, "OnlyOwnerOrAuthorizedCaller", name)
	})
}

func TestCustodyAPI_CallRevert(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	factoryABI := saccount.SmartAccountFactoryBuildConfig.MustGetABI()

	var receipt RPCReceipt
	require.Nil(t, client.CallContext(ctx, &receipt, "custody_sendTransaction", TransactionArgs{
		From: owner,
		To:   factoryAddr,
		Data: pack(t, factoryABI, "createAccount", owner, big.NewInt(0), []byte{}),
	}))
	out, err := factoryABI.Unpack("createAccount", receipt.Ret)
	require.Nil(t, err)
	account := out[0].(common.Address)

	var ret hexutil.Bytes
	err = client.CallContext(ctx, &ret, "custody_call", CallArgs{
		From: stranger,
		To:   account,
		Data: pack(t, saccount.SmartAccountBuildABI(), "execute", stranger, big.NewInt(0), []byte{}),
	})
	require.NotNil(t, err)

	var dataErr rpc.DataError
	require.True(t, errors.As(err, &dataErr))
	data, err := hexutil.Decode(dataErr.ErrorData().(string))
	require.Nil(t, err)
	name, _, err := packer.UnpackError(*saccount.SmartAccountBuildABI(), data)
	require.Nil(t, err)
	assert.Equal(t, "OnlyOwnerOrAuthorizedCaller", name)
}
