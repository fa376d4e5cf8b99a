package executor

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/internal/executor/system"
	sys_common "github.com/axiomesh/axiom-custody/internal/executor/system/common"
	"github.com/axiomesh/axiom-custody/internal/executor/system/saccount"
	"github.com/axiomesh/axiom-custody/internal/ledger"
	"github.com/axiomesh/axiom-custody/internal/storagemgr"
	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/repo"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

var (
	ErrNonceMismatch   = errors.New("transaction nonce mismatch")
	ErrBlockTimeGoBack = errors.New("block time is before the last committed block")
)

var _ Executor = (*BlockExecutor)(nil)

var accountImplementations = map[uint64]string{
	saccount.AccountImplementationV1Version: sys_common.AccountImplementationV1Addr,
	saccount.AccountImplementationV2Version: sys_common.AccountImplementationV2Addr,
}

// BlockExecutor applies transactions to the state ledger one at a time,
// transactions applied since the last Commit form the open block.
type BlockExecutor struct {
	rep         *repo.Repo
	logger      logrus.FieldLogger
	stateLedger ledger.StateLedger
	nvm         *system.NativeVM
	lock        *sync.Mutex
	logsFeed    event.Feed

	// set when the executor opened the ledger storage itself
	storagePath string

	// now is the block clock, replaced in tests
	now func() uint64

	// logic the factory installs in new accounts
	accountImplementation common.Address

	blockOpen       bool
	blockHeight     uint64
	blockTime       uint64
	blockTxCount    int
	blockLogs       []*types.EvmLog
	afterBlockHooks []func(meta *ledger.ChainMeta, logs []*types.EvmLog)
}

// New creates an executor on top of stateLedger.
func New(rep *repo.Repo, stateLedger ledger.StateLedger) (*BlockExecutor, error) {
	if err := rep.Config.Check(); err != nil {
		return nil, errors.Wrap(err, "check config")
	}

	implementation, ok := accountImplementations[rep.Config.Account.ImplementationVersion]
	if !ok {
		return nil, errors.Errorf("unknown account implementation version %d", rep.Config.Account.ImplementationVersion)
	}

	logger := loggers.Logger(loggers.Executor)
	exec := &BlockExecutor{
		rep:         rep,
		logger:      logger,
		stateLedger: stateLedger,
		nvm:         system.New(loggers.Logger(loggers.SystemContract)),
		lock:        &sync.Mutex{},
		now: func() uint64 {
			return uint64(time.Now().Unix())
		},
		accountImplementation: common.HexToAddress(implementation),
	}
	exec.deploySystemContracts()

	exec.afterBlockHooks = []func(meta *ledger.ChainMeta, logs []*types.EvmLog){
		exec.publishLogs,
		exec.updateMetrics,
	}

	meta := stateLedger.ChainMeta()
	exec.logger.WithFields(logrus.Fields{
		"height":         meta.Height,
		"block_time":     meta.BlockTime,
		"entry_point":    rep.Config.Account.EntryPoint,
		"implementation": exec.accountImplementation,
	}).Info("BlockExecutor created")
	return exec, nil
}

// NewWithRepo opens the ledger storage of the repo and creates an executor on it.
func NewWithRepo(rep *repo.Repo) (*BlockExecutor, error) {
	if err := storagemgr.Initialize(rep.Config); err != nil {
		return nil, errors.Wrap(err, "initialize storage manager")
	}
	backend, err := storagemgr.Open(storagemgr.GetLedgerComponentPath(rep, storagemgr.Ledger))
	if err != nil {
		return nil, errors.Wrap(err, "open ledger storage")
	}
	stateLedger, err := ledger.NewStateLedger(backend)
	if err != nil {
		return nil, errors.Wrap(err, "load state ledger")
	}
	exec, err := New(rep, stateLedger)
	if err != nil {
		return nil, err
	}
	exec.storagePath = storagemgr.GetLedgerComponentPath(rep, storagemgr.Ledger)
	return exec, nil
}

// AccountConfig returns the config shared by the account implementations.
func AccountConfig(cfg *repo.Config, version uint64) saccount.Config {
	return saccount.Config{
		EntryPoint:           common.HexToAddress(cfg.Account.EntryPoint),
		Version:              version,
		MinRecoveryDelay:     cfg.Account.MinRecoveryDelay.ToDuration(),
		MaxRecoveryDelay:     cfg.Account.MaxRecoveryDelay.ToDuration(),
		DefaultRecoveryDelay: cfg.Account.DefaultRecoveryDelay.ToDuration(),
	}
}

func (exec *BlockExecutor) deploySystemContracts() {
	cfg := &sys_common.SystemContractConfig{Logger: loggers.Logger(loggers.SystemContract)}

	exec.nvm.Deploy(common.HexToAddress(sys_common.AccountFactoryContractAddr), saccount.SmartAccountFactoryBuildConfig.Construct(cfg))

	v1 := saccount.NewSmartAccountBuildConfig("saccount_v1", sys_common.AccountImplementationV1Addr, AccountConfig(exec.rep.Config, saccount.AccountImplementationV1Version))
	v2 := saccount.NewSmartAccountBuildConfig("saccount_v2", sys_common.AccountImplementationV2Addr, AccountConfig(exec.rep.Config, saccount.AccountImplementationV2Version))
	exec.nvm.RegisterImplementation(common.HexToAddress(v1.Address), v1.Construct(cfg))
	exec.nvm.RegisterImplementation(common.HexToAddress(v2.Address), v2.Construct(cfg))
}

// SetClock replaces the source of block timestamps.
func (exec *BlockExecutor) SetClock(now func() uint64) {
	exec.lock.Lock()
	defer exec.lock.Unlock()
	exec.now = now
}

func (exec *BlockExecutor) CurrentHeight() uint64 {
	exec.lock.Lock()
	defer exec.lock.Unlock()
	return exec.stateLedger.ChainMeta().Height
}

// GetNonce returns the nonce the next transaction of addr must carry.
func (exec *BlockExecutor) GetNonce(addr common.Address) uint64 {
	exec.lock.Lock()
	defer exec.lock.Unlock()
	return exec.stateLedger.GetNonce(addr)
}

// openBlock starts the next block, the block time never goes back.
func (exec *BlockExecutor) openBlock() error {
	meta := exec.stateLedger.ChainMeta()
	blockTime := exec.now()
	if blockTime < meta.BlockTime {
		return errors.Wrapf(ErrBlockTimeGoBack, "last: %d, now: %d", meta.BlockTime, blockTime)
	}

	exec.blockOpen = true
	exec.blockHeight = meta.Height + 1
	exec.blockTime = blockTime
	exec.blockTxCount = 0
	exec.blockLogs = nil
	exec.stateLedger.PrepareBlock(exec.blockHeight, exec.blockTime)
	if err := saccount.InitAccountFactory(exec.stateLedger, exec.accountImplementation); err != nil {
		exec.blockOpen = false
		return errors.Wrap(err, "init account factory")
	}
	exec.logger.WithFields(logrus.Fields{
		"height":     exec.blockHeight,
		"block_time": exec.blockTime,
	}).Debug("Open block")
	return nil
}

func (exec *BlockExecutor) ApplyTransaction(ctx context.Context, tx *Transaction) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exec.lock.Lock()
	defer exec.lock.Unlock()

	if !exec.blockOpen {
		if err := exec.openBlock(); err != nil {
			return nil, err
		}
	}
	return exec.applyTransaction(tx)
}

func (exec *BlockExecutor) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	exec.lock.Lock()
	defer exec.lock.Unlock()

	height, blockTime := exec.blockHeight, exec.blockTime
	if !exec.blockOpen {
		meta := exec.stateLedger.ChainMeta()
		height, blockTime = meta.Height, meta.BlockTime
	}
	snapshot := exec.stateLedger.Snapshot()
	defer exec.stateLedger.RevertToSnapshot(snapshot)

	// reads see the factory as the next block will
	if err := saccount.InitAccountFactory(exec.stateLedger, exec.accountImplementation); err != nil {
		return nil, errors.Wrap(err, "init account factory")
	}
	exec.nvm.Reset(exec.stateLedger, height, blockTime)
	return exec.nvm.Call(from, to, big.NewInt(0), data)
}

// Commit persists the open block, it is a no-op without one.
func (exec *BlockExecutor) Commit() (*ledger.ChainMeta, error) {
	exec.lock.Lock()
	defer exec.lock.Unlock()

	if !exec.blockOpen {
		return exec.stateLedger.ChainMeta(), nil
	}

	current := time.Now()
	meta, err := exec.stateLedger.Commit()
	if err != nil {
		return nil, errors.Wrapf(err, "commit block %d", exec.blockHeight)
	}
	logs := exec.blockLogs
	txCount := exec.blockTxCount
	exec.blockOpen = false
	exec.blockLogs = nil

	for _, hook := range exec.afterBlockHooks {
		hook(meta, logs)
	}

	commitBlockDuration.Observe(float64(time.Since(current)) / float64(time.Second))
	exec.logger.WithFields(logrus.Fields{
		"height":     meta.Height,
		"block_time": meta.BlockTime,
		"txs":        txCount,
		"logs":       len(logs),
		"elapse":     time.Since(current),
	}).Info("Commit block")
	return meta, nil
}

// SubscribeLogsEvent registers a subscription of the logs of every committed block.
func (exec *BlockExecutor) SubscribeLogsEvent(ch chan<- []*types.EvmLog) event.Subscription {
	return exec.logsFeed.Subscribe(ch)
}

func (exec *BlockExecutor) Close() {
	exec.lock.Lock()
	defer exec.lock.Unlock()
	if exec.storagePath == "" {
		exec.stateLedger.Close()
	} else if err := storagemgr.Close(exec.storagePath); err != nil {
		exec.logger.Errorf("close ledger storage: %v", err)
	}
	exec.logger.Info("BlockExecutor stopped")
}
