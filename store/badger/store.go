package badger

import (
	"bytes"
	"encoding/binary"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/store"
	"github.com/tendermint/tendermint/libs/log"
)

// All application data is namespaced so that the version information
// never shows up in an iteration.
var (
	dataPrefix = []byte("d")
	dataEnd    = []byte("e")
	versionKey = []byte("m:version")
)

// CommitStore is a persistent store backed by badger. Batches are written
// within a single badger transaction.
type CommitStore struct {
	db *badgerdb.DB
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// Open opens or creates a database in given directory.
func Open(dir string, logger log.Logger) (*CommitStore, error) {
	return open(badgerdb.DefaultOptions(dir), logger)
}

// OpenInMemory creates a database that is never written to disk.
func OpenInMemory(logger log.Logger) (*CommitStore, error) {
	return open(badgerdb.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badgerdb.Options, logger log.Logger) (*CommitStore, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	opts = opts.WithLogger(&loggerAdapter{logger: logger.With("module", "badger")}).
		WithNumVersionsToKeep(1)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open badger: %s", err)
	}
	return &CommitStore{db: db}, nil
}

// Close releases the database.
func (s *CommitStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Get returns the value at last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	return s.Adapter().Get(key)
}

// Commit increments the version. All data is persisted when a cache wrap is
// written, so this only marks a new version.
func (s *CommitStore) Commit() (store.CommitID, error) {
	var version int64
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		current, err := readVersion(txn)
		if err != nil {
			return err
		}
		version = current + 1
		raw := make([]byte, 8)
		binary.BigEndian.PutUint64(raw, uint64(version))
		return txn.Set(versionKey, raw)
	})
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{Version: version}, nil
}

// LoadLatestVersion is a noop, badger always exposes its latest state.
func (s *CommitStore) LoadLatestVersion() error {
	return nil
}

// LatestVersion returns the last committed version. Badger does not
// provide a state hash.
func (s *CommitStore) LatestVersion() (store.CommitID, error) {
	var version int64
	err := s.db.View(func(txn *badgerdb.Txn) error {
		v, err := readVersion(txn)
		version = v
		return err
	})
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{Version: version}, nil
}

func readVersion(txn *badgerdb.Txn) (int64, error) {
	item, err := txn.Get(versionKey)
	if err == badgerdb.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrDatabase, "malformed version: %X", raw)
	}
	return int64(binary.BigEndian.Uint64(raw)), nil
}

// Adapter returns a KVStore that reads and writes directly to the database.
func (s *CommitStore) Adapter() store.CacheableKVStore {
	return adapter{db: s.db}
}

// CacheWrap returns a btree cache that is written in a single transaction.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

type adapter struct {
	db *badgerdb.DB
}

var _ store.CacheableKVStore = adapter{}

func dataKey(key []byte) []byte {
	res := make([]byte, 0, len(dataPrefix)+len(key))
	return append(append(res, dataPrefix...), key...)
}

func (a adapter) Get(key []byte) ([]byte, error) {
	var val []byte
	err := a.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(dataKey(key))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return val, nil
}

func (a adapter) Has(key []byte) (bool, error) {
	var has bool
	err := a.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(dataKey(key))
		switch {
		case err == badgerdb.ErrKeyNotFound:
			return nil
		case err != nil:
			return err
		}
		has = true
		return nil
	})
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return has, nil
}

func (a adapter) Set(key, value []byte) error {
	return a.write(store.SetOp(key, value))
}

func (a adapter) Delete(key []byte) error {
	return a.write(store.DelOp(key))
}

func (a adapter) write(ops ...store.Op) error {
	err := a.db.Update(func(txn *badgerdb.Txn) error {
		for _, op := range ops {
			var err error
			if op.IsSetOp() {
				err = txn.Set(dataKey(op.Key()), op.Value())
			} else {
				err = txn.Delete(dataKey(op.Key()))
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// NewBatch returns a batch whose operations are applied in one transaction.
func (a adapter) NewBatch() store.Batch {
	return &batch{adapter: a}
}

func (a adapter) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, false), nil
}

func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.iterate(start, end, true), nil
}

func (a adapter) iterate(start, end []byte, reverse bool) *iterator {
	low := dataPrefix
	if start != nil {
		low = dataKey(start)
	}
	high := dataEnd
	if end != nil {
		high = dataKey(end)
	}

	txn := a.db.NewTransaction(false)
	opts := badgerdb.DefaultIteratorOptions
	opts.Reverse = reverse
	it := txn.NewIterator(opts)
	if reverse {
		it.Seek(high)
		// Reverse seek lands on the end key if it exists, end is exclusive.
		if it.Valid() && bytes.Equal(it.Item().Key(), high) {
			it.Next()
		}
	} else {
		it.Seek(low)
	}
	return &iterator{
		txn:     txn,
		it:      it,
		low:     low,
		high:    high,
		reverse: reverse,
	}
}

type batch struct {
	adapter adapter
	ops     []store.Op
}

var _ store.Batch = (*batch)(nil)

func (b *batch) Set(key, value []byte) error {
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

func (b *batch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}
	if err := b.adapter.write(b.ops...); err != nil {
		return err
	}
	b.ops = nil
	return nil
}

// iterator reads from a read only transaction that is discarded on
// release.
type iterator struct {
	txn     *badgerdb.Txn
	it      *badgerdb.Iterator
	low     []byte
	high    []byte
	reverse bool
	started bool
}

var _ store.Iterator = (*iterator)(nil)

func (i *iterator) Next() (key, value []byte, err error) {
	if i.started {
		i.it.Next()
	}
	i.started = true

	if !i.it.Valid() {
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "badger iterator")
	}
	item := i.it.Item()
	k := item.Key()
	if i.reverse && bytes.Compare(k, i.low) < 0 {
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "badger iterator")
	}
	if !i.reverse && bytes.Compare(k, i.high) >= 0 {
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "badger iterator")
	}

	value, err = item.ValueCopy(nil)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return item.KeyCopy(nil)[len(dataPrefix):], value, nil
}

func (i *iterator) Release() {
	i.it.Close()
	i.txn.Discard()
}
