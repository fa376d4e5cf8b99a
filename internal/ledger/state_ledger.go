package ledger

import (
	"encoding/json"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/storage/kv"
	"github.com/axiomesh/axiom-custody/pkg/types"
)

var _ StateLedger = (*StateLedgerImpl)(nil)

type StateLedgerImpl struct {
	logger   logrus.FieldLogger
	backend  kv.Storage
	accounts map[common.Address]*SimpleAccount
	changer  *stateChanger

	logs    map[common.Hash][]*types.EvmLog
	logSize uint64
	thash   common.Hash
	txIndex int

	blockHeight uint64
	blockTime   uint64
	chainMeta   *ChainMeta
}

// NewStateLedger loads the chain meta from backend, a fresh backend starts at height 0.
func NewStateLedger(backend kv.Storage) (*StateLedgerImpl, error) {
	l := &StateLedgerImpl{
		logger:    loggers.Logger(loggers.Ledger),
		backend:   backend,
		accounts:  make(map[common.Address]*SimpleAccount),
		changer:   newChanger(),
		logs:      make(map[common.Hash][]*types.EvmLog),
		chainMeta: &ChainMeta{},
	}

	if data := backend.Get([]byte(chainMetaKey)); data != nil {
		if err := json.Unmarshal(data, l.chainMeta); err != nil {
			return nil, errors.Wrap(err, "unmarshal chain meta")
		}
	}
	l.blockHeight = l.chainMeta.Height
	l.blockTime = l.chainMeta.BlockTime
	blockHeightMetric.Set(float64(l.chainMeta.Height))
	return l, nil
}

// NewMemoryStateLedger is a state ledger over an in-memory backend.
func NewMemoryStateLedger() *StateLedgerImpl {
	l, err := NewStateLedger(kv.NewMemory())
	if err != nil {
		// empty memory backend has no chain meta to decode
		panic(err)
	}
	return l
}

func (l *StateLedgerImpl) GetOrCreateAccount(addr common.Address) IAccount {
	return l.getOrCreateAccount(addr)
}

func (l *StateLedgerImpl) getOrCreateAccount(addr common.Address) *SimpleAccount {
	if account := l.getAccount(addr); account != nil {
		return account
	}

	account := NewAccount(l.backend, addr, l.changer)
	l.changer.append(createObjectChange{account: addr})
	l.accounts[addr] = account
	return account
}

func (l *StateLedgerImpl) GetAccount(addr common.Address) IAccount {
	account := l.getAccount(addr)
	if account == nil {
		return nil
	}
	return account
}

func (l *StateLedgerImpl) getAccount(addr common.Address) *SimpleAccount {
	if account, ok := l.accounts[addr]; ok {
		return account
	}

	start := time.Now()
	data := l.backend.Get(compositeAccountKey(addr))
	accountReadDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	if data == nil {
		return nil
	}

	inner := &InnerAccount{}
	if err := json.Unmarshal(data, inner); err != nil {
		panic(errors.Wrapf(err, "unmarshal account %s", addr))
	}
	if inner.Balance == nil {
		inner.Balance = new(big.Int)
	}
	account := NewAccount(l.backend, addr, l.changer)
	account.originAccount = inner
	l.accounts[addr] = account
	return account
}

func (l *StateLedgerImpl) GetBalance(addr common.Address) *big.Int {
	account := l.getAccount(addr)
	if account == nil {
		return new(big.Int)
	}
	return account.GetBalance()
}

func (l *StateLedgerImpl) SetBalance(addr common.Address, value *big.Int) {
	l.getOrCreateAccount(addr).SetBalance(value)
}

func (l *StateLedgerImpl) SubBalance(addr common.Address, value *big.Int) {
	l.getOrCreateAccount(addr).SubBalance(value)
}

func (l *StateLedgerImpl) AddBalance(addr common.Address, value *big.Int) {
	l.getOrCreateAccount(addr).AddBalance(value)
}

func (l *StateLedgerImpl) GetState(addr common.Address, key []byte) (bool, []byte) {
	account := l.getAccount(addr)
	if account == nil {
		return false, nil
	}
	return account.GetState(key)
}

func (l *StateLedgerImpl) SetState(addr common.Address, key []byte, v []byte) {
	l.getOrCreateAccount(addr).SetState(key, v)
}

func (l *StateLedgerImpl) SetCode(addr common.Address, code []byte) {
	l.getOrCreateAccount(addr).SetCodeAndHash(code)
}

func (l *StateLedgerImpl) GetCode(addr common.Address) []byte {
	account := l.getAccount(addr)
	if account == nil {
		return nil
	}
	return account.Code()
}

func (l *StateLedgerImpl) SetNonce(addr common.Address, nonce uint64) {
	l.getOrCreateAccount(addr).SetNonce(nonce)
}

func (l *StateLedgerImpl) GetNonce(addr common.Address) uint64 {
	account := l.getAccount(addr)
	if account == nil {
		return 0
	}
	return account.GetNonce()
}

func (l *StateLedgerImpl) Exist(addr common.Address) bool {
	return l.getAccount(addr) != nil
}

func (l *StateLedgerImpl) Empty(addr common.Address) bool {
	account := l.getAccount(addr)
	return account == nil || account.IsEmpty()
}

func (l *StateLedgerImpl) Snapshot() int {
	return l.changer.length()
}

func (l *StateLedgerImpl) RevertToSnapshot(snapshot int) {
	l.changer.revert(l, snapshot)
}

func (l *StateLedgerImpl) SetTxContext(txHash common.Hash, txIndex int) {
	l.thash = txHash
	l.txIndex = txIndex
}

func (l *StateLedgerImpl) AddLog(log *types.EvmLog) {
	log.TransactionHash = l.thash
	log.TransactionIndex = uint64(l.txIndex)
	log.BlockNumber = l.blockHeight
	log.LogIndex = l.logSize
	l.changer.append(addLogChange{txHash: l.thash})
	l.logs[l.thash] = append(l.logs[l.thash], log)
	l.logSize++
}

func (l *StateLedgerImpl) GetLogs(txHash common.Hash) []*types.EvmLog {
	return l.logs[txHash]
}

func (l *StateLedgerImpl) PrepareBlock(height uint64, blockTime uint64) {
	l.blockHeight = height
	l.blockTime = blockTime
	l.logs = make(map[common.Hash][]*types.EvmLog)
	l.logSize = 0
}

func (l *StateLedgerImpl) Finalise() {
	l.changer.reset()
}

func (l *StateLedgerImpl) Commit() (*ChainMeta, error) {
	start := time.Now()
	batch := l.backend.NewBatch()

	// sorted for a deterministic batch layout
	dirty := lo.Filter(lo.Values(l.accounts), func(account *SimpleAccount, _ int) bool {
		return account.isDirty()
	})
	sort.Slice(dirty, func(i, j int) bool {
		return dirty[i].Addr.Cmp(dirty[j].Addr) < 0
	})
	for _, account := range dirty {
		if err := account.commit(batch); err != nil {
			return nil, errors.Wrapf(err, "commit account %s", account.Addr)
		}
	}

	meta := &ChainMeta{Height: l.blockHeight, BlockTime: l.blockTime}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chain meta")
	}
	batch.Put([]byte(chainMetaKey), data)
	batch.Commit()

	l.chainMeta = meta
	l.changer.reset()
	flushDirtyWorldStateDuration.Observe(float64(time.Since(start)) / float64(time.Second))
	blockHeightMetric.Set(float64(meta.Height))
	l.logger.WithFields(logrus.Fields{
		"height":   meta.Height,
		"accounts": len(dirty),
	}).Debug("Commit state")
	return meta, nil
}

func (l *StateLedgerImpl) ChainMeta() *ChainMeta {
	return &ChainMeta{Height: l.chainMeta.Height, BlockTime: l.chainMeta.BlockTime}
}

func (l *StateLedgerImpl) Close() {
	if err := l.backend.Close(); err != nil {
		l.logger.Errorf("close state backend: %v", err)
	}
}
