package kv

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type memory struct {
	lock sync.RWMutex
	db   map[string][]byte
}

func NewMemory() Storage {
	return &memory{
		db: make(map[string][]byte),
	}
}

func (m *memory) Get(key []byte) []byte {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return common.CopyBytes(m.db[string(key)])
}

func (m *memory) Has(key []byte) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.db[string(key)]
	return ok
}

func (m *memory) Put(key, value []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if len(value) == 0 {
		delete(m.db, string(key))
		return
	}
	m.db[string(key)] = common.CopyBytes(value)
}

func (m *memory) Delete(key []byte) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.db, string(key))
}

func (m *memory) NewBatch() Batch {
	return &memoryBatch{
		db:     m,
		writes: make(map[string][]byte),
	}
}

func (m *memory) Close() error {
	return nil
}

type memoryBatch struct {
	db     *memory
	keys   []string
	writes map[string][]byte
	size   int
}

func (b *memoryBatch) Put(key, value []byte) {
	if _, ok := b.writes[string(key)]; !ok {
		b.keys = append(b.keys, string(key))
	}
	b.writes[string(key)] = common.CopyBytes(value)
	b.size += len(key) + len(value)
}

func (b *memoryBatch) Delete(key []byte) {
	b.Put(key, nil)
}

func (b *memoryBatch) Commit() {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()
	for _, k := range b.keys {
		v := b.writes[k]
		if len(v) == 0 {
			delete(b.db.db, k)
			continue
		}
		b.db.db[k] = v
	}
}

func (b *memoryBatch) Size() int {
	return b.size
}

func (b *memoryBatch) Reset() {
	b.keys = nil
	b.writes = make(map[string][]byte)
	b.size = 0
}
