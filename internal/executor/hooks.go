package executor

import (
	"github.com/axiomesh/axiom-custody/internal/ledger"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

func (exec *BlockExecutor) publishLogs(_ *ledger.ChainMeta, logs []*types.EvmLog) {
	if len(logs) == 0 {
		return
	}
	exec.logsFeed.Send(logs)
}

func (exec *BlockExecutor) updateMetrics(meta *ledger.ChainMeta, logs []*types.EvmLog) {
	committedHeight.Set(float64(meta.Height))
	committedLogsCounter.Add(float64(len(logs)))
}
