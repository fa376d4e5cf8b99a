package kv

// Storage is a flat byte key value store. A nil value and a missing key are
// indistinguishable.
type Storage interface {
	Get(key []byte) []byte
	Has(key []byte) bool
	Put(key, value []byte)
	Delete(key []byte)
	NewBatch() Batch
	Close() error
}

// Batch buffers writes until Commit applies them atomically.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Commit()
	Size() int
	Reset()
}
