package executor

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/pkg/packer"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

// applyTransaction rejects a transaction with a wrong sender nonce before
// touching state. Any other failure is recorded in a failed receipt, its
// state changes are reverted and only the nonce increment is kept.
func (exec *BlockExecutor) applyTransaction(tx *Transaction) (*types.Receipt, error) {
	current := time.Now()
	txHash := tx.Hash()

	nonce := exec.stateLedger.GetNonce(tx.From)
	if tx.Nonce != nonce {
		return nil, errors.Wrapf(ErrNonceMismatch, "from %s, want %d, got %d", tx.From, nonce, tx.Nonce)
	}
	exec.stateLedger.SetNonce(tx.From, nonce+1)

	exec.stateLedger.SetTxContext(txHash, exec.blockTxCount)
	exec.blockTxCount++
	exec.nvm.Reset(exec.stateLedger, exec.blockHeight, exec.blockTime)

	receipt := &types.Receipt{
		TxHash:      txHash,
		BlockNumber: exec.blockHeight,
		Status:      types.ReceiptSuccess,
	}
	ret, err := exec.nvm.Call(tx.From, tx.To, tx.Value, tx.Data)
	if err != nil {
		receipt.Status = types.ReceiptFailed
		receipt.Err = err.Error()
		var revertErr *packer.RevertError
		if errors.As(err, &revertErr) {
			receipt.Ret = revertErr.Data
		}
		exec.logger.WithFields(logrus.Fields{
			"hash": txHash,
			"from": tx.From,
			"to":   tx.To,
			"err":  err,
		}).Debug("Transaction failed")
	} else {
		receipt.Ret = ret
	}
	receipt.Logs = exec.stateLedger.GetLogs(txHash)
	exec.blockLogs = append(exec.blockLogs, receipt.Logs...)
	exec.stateLedger.Finalise()

	txCounter.WithLabelValues(receiptStatus(receipt)).Inc()
	applyTxDuration.Observe(float64(time.Since(current)) / float64(time.Second))
	return receipt, nil
}

func receiptStatus(receipt *types.Receipt) string {
	if receipt.IsSuccess() {
		return "success"
	}
	return "failed"
}
