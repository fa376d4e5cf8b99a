package jsonrpc

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/internal/executor"
	"github.com/axiomesh/axiom-custody/pkg/packer"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

// TransactionArgs is a transaction submitted over rpc, a missing nonce is
// filled with the next nonce of the sender.
type TransactionArgs struct {
	From  common.Address  `json:"from"`
	To    common.Address  `json:"to"`
	Nonce *hexutil.Uint64 `json:"nonce"`
	Value *hexutil.Big    `json:"value"`
	Data  hexutil.Bytes   `json:"data"`
}

type CallArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

type RPCReceipt struct {
	TransactionHash common.Hash     `json:"transactionHash"`
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	Status          hexutil.Uint64  `json:"status"`
	Ret             hexutil.Bytes   `json:"ret"`
	Logs            []*types.EvmLog `json:"logs"`
	Error           string          `json:"error,omitempty"`
}

// revertError carries the revert data of a failed call to the client.
type revertError struct {
	error
	data string
}

func (e *revertError) ErrorCode() int {
	return 3
}

func (e *revertError) ErrorData() any {
	return e.data
}

// CustodyAPI exposes transaction submission and reads of the custody ledger.
type CustodyAPI struct {
	exec   executor.Executor
	logger logrus.FieldLogger

	// one submission per block
	sendLock sync.Mutex
}

func NewCustodyAPI(exec executor.Executor, logger logrus.FieldLogger) *CustodyAPI {
	return &CustodyAPI{exec: exec, logger: logger}
}

// SendTransaction applies the transaction and commits it in its own block.
func (api *CustodyAPI) SendTransaction(ctx context.Context, args TransactionArgs) (ret *RPCReceipt, err error) {
	defer func(start time.Time) {
		invokeDuration.WithLabelValues("sendTransaction").Observe(time.Since(start).Seconds())
		if err != nil {
			requestFailedCounter.WithLabelValues("sendTransaction").Inc()
		}
	}(time.Now())

	api.sendLock.Lock()
	defer api.sendLock.Unlock()

	tx := &executor.Transaction{
		From: args.From,
		To:   args.To,
		Data: args.Data,
	}
	if args.Nonce != nil {
		tx.Nonce = uint64(*args.Nonce)
	} else {
		tx.Nonce = api.exec.GetNonce(args.From)
	}
	if args.Value != nil {
		tx.Value = args.Value.ToInt()
	}
	api.logger.WithFields(logrus.Fields{
		"from":  tx.From,
		"to":    tx.To,
		"nonce": tx.Nonce,
	}).Debug("custody_sendTransaction")

	receipt, err := api.exec.ApplyTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := api.exec.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit transaction")
	}

	return &RPCReceipt{
		TransactionHash: receipt.TxHash,
		BlockNumber:     hexutil.Uint64(receipt.BlockNumber),
		Status:          hexutil.Uint64(receipt.Status),
		Ret:             receipt.Ret,
		Logs:            receipt.Logs,
		Error:           receipt.Err,
	}, nil
}

// Call runs a read only call against the latest state.
func (api *CustodyAPI) Call(ctx context.Context, args CallArgs) (ret hexutil.Bytes, err error) {
	defer func(start time.Time) {
		invokeDuration.WithLabelValues("call").Observe(time.Since(start).Seconds())
		if err != nil {
			requestFailedCounter.WithLabelValues("call").Inc()
		}
	}(time.Now())

	api.logger.WithFields(logrus.Fields{
		"from": args.From,
		"to":   args.To,
	}).Debug("custody_call")

	ret, err = api.exec.Call(ctx, args.From, args.To, args.Data)
	if err != nil {
		var revert *packer.RevertError
		if errors.As(err, &revert) {
			return nil, &revertError{error: err, data: hexutil.Encode(revert.Data)}
		}
		return nil, err
	}
	return ret, nil
}

func (api *CustodyAPI) GetNonce(address common.Address) hexutil.Uint64 {
	api.logger.Debug("custody_getNonce")
	return hexutil.Uint64(api.exec.GetNonce(address))
}

func (api *CustodyAPI) BlockNumber() hexutil.Uint64 {
	api.logger.Debug("custody_blockNumber")
	return hexutil.Uint64(api.exec.CurrentHeight())
}
