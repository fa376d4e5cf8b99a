package storagemgr

import (
	"fmt"
	"sync"

	"github.com/axiomesh/axiom-custody/pkg/loggers"
	"github.com/axiomesh/axiom-custody/pkg/repo"
	"github.com/axiomesh/axiom-custody/pkg/storage/kv"
)

const (
	Ledger = "ledger"
)

var globalStorageMgr = &storageMgr{
	storageBuilderMap: make(map[string]func(p string) (kv.Storage, error)),
	storages:          make(map[string]kv.Storage),
	lock:              new(sync.Mutex),
}

func init() {
	memoryBuilder := func(p string) (kv.Storage, error) {
		return kv.NewMemory(), nil
	}

	globalStorageMgr.storageBuilderMap[repo.KVStorageTypeMemory] = memoryBuilder
	// only for test, replaced by Initialize
	globalStorageMgr.storageBuilderMap[repo.KVStorageTypeLeveldb] = memoryBuilder
	globalStorageMgr.storageBuilderMap[""] = memoryBuilder
}

type storageMgr struct {
	storageBuilderMap map[string]func(p string) (kv.Storage, error)
	storages          map[string]kv.Storage
	defaultKVType     string
	cacheSize         int
	lock              *sync.Mutex
}

func (m *storageMgr) open(typ string, p string) (kv.Storage, error) {
	builder, ok := m.storageBuilderMap[typ]
	if !ok {
		return nil, fmt.Errorf("unknow kv type %s, expect leveldb or memory", typ)
	}
	return builder(p)
}

func Initialize(config *repo.Config) error {
	globalStorageMgr.lock.Lock()
	defer globalStorageMgr.lock.Unlock()

	globalStorageMgr.storageBuilderMap[repo.KVStorageTypeLeveldb] = func(p string) (kv.Storage, error) {
		return kv.NewLeveldb(p, nil, config.Storage.Sync)
	}
	_, ok := globalStorageMgr.storageBuilderMap[config.Storage.KvType]
	if !ok {
		return fmt.Errorf("unknow kv type %s, expect leveldb or memory", config.Storage.KvType)
	}
	globalStorageMgr.defaultKVType = config.Storage.KvType
	globalStorageMgr.cacheSize = config.Storage.KvCacheSize
	return nil
}

func Open(p string) (kv.Storage, error) {
	return OpenSpecifyType(globalStorageMgr.defaultKVType, p)
}

// OpenSpecifyType returns the storage already opened at p, or opens a new
// one wrapped by the read cache.
func OpenSpecifyType(typ string, p string) (kv.Storage, error) {
	globalStorageMgr.lock.Lock()
	defer globalStorageMgr.lock.Unlock()
	s, ok := globalStorageMgr.storages[p]
	if !ok {
		raw, err := globalStorageMgr.open(typ, p)
		if err != nil {
			return nil, err
		}
		s = NewCachedStorage(raw, globalStorageMgr.cacheSize)
		globalStorageMgr.storages[p] = s
		loggers.Logger(loggers.Storage).WithFields(map[string]any{
			"type": typ,
			"path": p,
		}).Info("Open storage")
	}
	return s, nil
}

// Close closes the storage opened at p and forgets it.
func Close(p string) error {
	globalStorageMgr.lock.Lock()
	defer globalStorageMgr.lock.Unlock()
	s, ok := globalStorageMgr.storages[p]
	if !ok {
		return nil
	}
	delete(globalStorageMgr.storages, p)
	return s.Close()
}

func GetLedgerComponentPath(rep *repo.Repo, component string) string {
	return repo.GetStoragePath(rep.RepoRoot, component)
}
