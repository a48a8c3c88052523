package orm

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

const idxPrefix = "_i."

// MultiKeyIndexer calculates the secondary index keys for a given model.
type MultiKeyIndexer func(Model) ([][]byte, error)

// index stores one entry per (index key, primary key) pair. Entries are
// stored under
//    _i.<bucket>_<name>:<uvarint len(index key)><index key><primary key>
// with an empty value so that lookups are a prefix scan.
type index struct {
	name    string
	prefix  []byte
	unique  bool
	indexer MultiKeyIndexer
}

func newIndex(bucket, name string, indexer MultiKeyIndexer, unique bool) index {
	return index{
		name:    name,
		prefix:  []byte(idxPrefix + bucket + "_" + name + ":"),
		unique:  unique,
		indexer: indexer,
	}
}

func (i index) valuePrefix(value []byte) []byte {
	var l [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(l[:], uint64(len(value)))
	p := make([]byte, 0, len(i.prefix)+n+len(value))
	p = append(p, i.prefix...)
	p = append(p, l[:n]...)
	return append(p, value...)
}

// keys returns all primary keys indexed under value.
func (i index) keys(db msig.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	start := i.valuePrefix(value)
	it, err := db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(err, "index iterator")
	}
	defer it.Release()

	var keys [][]byte
	for {
		k, _, err := it.Next()
		switch {
		case errors.ErrIteratorDone.Is(err):
			return keys, nil
		case err != nil:
			return nil, err
		}
		keys = append(keys, append([]byte(nil), k[len(start):]...))
	}
}

// update replaces the index entries of prev with those of save. Either may
// be nil for an insert or a delete.
func (i index) update(db msig.KVStore, key []byte, prev, save Model) error {
	before, err := i.values(prev)
	if err != nil {
		return err
	}
	after, err := i.values(save)
	if err != nil {
		return err
	}
	for _, v := range before {
		if contains(after, v) {
			continue
		}
		if err := db.Delete(append(i.valuePrefix(v), key...)); err != nil {
			return errors.Wrap(err, "cannot delete index entry")
		}
	}
	for _, v := range after {
		if contains(before, v) {
			continue
		}
		if i.unique {
			existing, err := i.keys(db, v)
			if err != nil {
				return err
			}
			if len(existing) != 0 {
				return errors.Wrapf(errors.ErrDuplicate, "unique index %q", i.name)
			}
		}
		if err := db.Set(append(i.valuePrefix(v), key...), []byte{}); err != nil {
			return errors.Wrap(err, "cannot set index entry")
		}
	}
	return nil
}

func (i index) values(m Model) ([][]byte, error) {
	if m == nil {
		return nil, nil
	}
	vals, err := i.indexer(m)
	if err != nil {
		return nil, errors.Wrapf(err, "index %q", i.name)
	}
	for _, v := range vals {
		if len(v) == 0 {
			return nil, errors.Wrapf(ErrInvalidIndex, "%q: empty value", i.name)
		}
	}
	return vals, nil
}

func contains(set [][]byte, v []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, v) {
			return true
		}
	}
	return false
}

// prefixEnd returns the first key that does not start with prefix, or nil
// if there is none.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
