package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type ldb struct {
	db           *leveldb.DB
	writeOptions *opt.WriteOptions
}

// NewLeveldb opens (or creates) a goleveldb store at path.
func NewLeveldb(path string, options *opt.Options, sync bool) (Storage, error) {
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s", path)
	}

	return &ldb{
		db:           db,
		writeOptions: &opt.WriteOptions{Sync: sync},
	}, nil
}

func (l *ldb) Get(key []byte) []byte {
	val, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil
		}
		panic(err)
	}
	return val
}

func (l *ldb) Has(key []byte) bool {
	has, err := l.db.Has(key, nil)
	if err != nil {
		panic(err)
	}
	return has
}

func (l *ldb) Put(key, value []byte) {
	if len(value) == 0 {
		l.Delete(key)
		return
	}
	if err := l.db.Put(key, value, l.writeOptions); err != nil {
		panic(err)
	}
}

func (l *ldb) Delete(key []byte) {
	if err := l.db.Delete(key, l.writeOptions); err != nil {
		panic(err)
	}
}

func (l *ldb) NewBatch() Batch {
	return &ldbBatch{
		ldb:   l,
		batch: new(leveldb.Batch),
	}
}

func (l *ldb) Close() error {
	return l.db.Close()
}

type ldbBatch struct {
	ldb   *ldb
	batch *leveldb.Batch
	size  int
}

func (b *ldbBatch) Put(key, value []byte) {
	if len(value) == 0 {
		b.Delete(key)
		return
	}
	b.batch.Put(key, value)
	b.size += len(key) + len(value)
}

func (b *ldbBatch) Delete(key []byte) {
	b.batch.Delete(key)
	b.size += len(key)
}

func (b *ldbBatch) Commit() {
	if err := b.ldb.db.Write(b.batch, b.ldb.writeOptions); err != nil {
		panic(err)
	}
}

func (b *ldbBatch) Size() int {
	return b.size
}

func (b *ldbBatch) Reset() {
	b.batch.Reset()
	b.size = 0
}
