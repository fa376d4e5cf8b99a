package storagemgr

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/axiomesh/axiom-custody/pkg/storage/kv"
)

var (
	kvCacheHitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "storage",
		Name:      "kv_cache_hit_counter",
		Help:      "The total number of kv cache hit",
	})

	kvCacheMissCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_custody",
		Subsystem: "storage",
		Name:      "kv_cache_miss_counter",
		Help:      "The total number of kv cache miss",
	})
)

func init() {
	prometheus.MustRegister(kvCacheHitCounter)
	prometheus.MustRegister(kvCacheMissCounter)
}

// CachedStorage keeps recently read values in an lru cache, absent keys
// are cached as nil.
type CachedStorage struct {
	kv.Storage
	cache *lru.Cache[string, []byte]
}

func NewCachedStorage(s kv.Storage, entriesLimit int) kv.Storage {
	if entriesLimit <= 0 {
		entriesLimit = 4096
	}
	cache, err := lru.New[string, []byte](entriesLimit)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &CachedStorage{
		Storage: s,
		cache:   cache,
	}
}

func (c *CachedStorage) Get(key []byte) []byte {
	value, ok := c.cache.Get(string(key))
	if ok {
		kvCacheHitCounter.Inc()
		return value
	}
	v := c.Storage.Get(key)
	kvCacheMissCounter.Inc()
	c.cache.Add(string(key), v)
	return v
}

func (c *CachedStorage) Has(key []byte) bool {
	value, ok := c.cache.Get(string(key))
	if ok {
		kvCacheHitCounter.Inc()
		return value != nil
	}
	kvCacheMissCounter.Inc()
	return c.Storage.Has(key)
}

func (c *CachedStorage) Put(key, value []byte) {
	if len(value) == 0 {
		value = nil
	}
	c.Storage.Put(key, value)
	c.cache.Add(string(key), value)
}

func (c *CachedStorage) Delete(key []byte) {
	c.cache.Remove(string(key))
	c.Storage.Delete(key)
}

func (c *CachedStorage) Close() error {
	c.cache.Purge()
	return c.Storage.Close()
}

func (c *CachedStorage) NewBatch() kv.Batch {
	return &BatchWrapper{
		Batch:      c.Storage.NewBatch(),
		cache:      c.cache,
		finalState: make(map[string][]byte),
	}
}

type BatchWrapper struct {
	kv.Batch
	cache      *lru.Cache[string, []byte]
	finalState map[string][]byte
}

func (w *BatchWrapper) Put(key, value []byte) {
	if len(value) == 0 {
		w.finalState[string(key)] = nil
		w.Batch.Delete(key)
	} else {
		w.finalState[string(key)] = value
		w.Batch.Put(key, value)
	}
}

func (w *BatchWrapper) Delete(key []byte) {
	w.finalState[string(key)] = nil
	w.Batch.Delete(key)
}

func (w *BatchWrapper) Commit() {
	w.Batch.Commit()
	for k, v := range w.finalState {
		if v == nil {
			w.cache.Remove(k)
		} else {
			w.cache.Add(k, v)
		}
	}
}

func (w *BatchWrapper) Reset() {
	w.Batch.Reset()
	w.finalState = make(map[string][]byte)
}
