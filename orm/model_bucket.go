package orm

import (
	"fmt"
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket stores models of a single type under a prefixed subspace of
// the database.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db msig.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists.
	Has(db msig.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database, updating all indexes.
	Put(db msig.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db msig.KVStore, key []byte) error

	// ByIndex returns the primary keys of all entities indexed under
	// given value.
	ByIndex(db msig.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error)

	// Each calls fn for every stored entity, in primary key order.
	// Iteration stops at the first error returned by fn.
	Each(db msig.ReadOnlyKVStore, fn func(key []byte, m Model) error) error
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. Unique indexes refuse a value already in use.
func WithIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q already registered", name))
		}
		mb.indexes[name] = newIndex(mb.name, name, indexer, unique)
	}
}

// NewModelBucket returns a ModelBucket for models of the prototype type.
func NewModelBucket(name string, prototype Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	mb := &modelBucket{
		name:      name,
		prefix:    []byte(name + ":"),
		prototype: prototype,
		indexes:   make(map[string]index),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name      string
	prefix    []byte
	prototype Model
	indexes   map[string]index
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte(nil), mb.prefix...), key...)
}

func (mb *modelBucket) One(db msig.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	return load(raw, dest)
}

func (mb *modelBucket) Has(db msig.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s:%X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Put(db msig.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	prev, err := mb.previous(db, key)
	if err != nil {
		return err
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, m); err != nil {
			return err
		}
	}
	raw, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot marshal: %s", err)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db msig.KVStore, key []byte) error {
	prev, err := mb.previous(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s:%X", mb.name, key)
	}
	for _, idx := range mb.indexes {
		if err := idx.update(db, key, prev, nil); err != nil {
			return err
		}
	}
	return db.Delete(mb.dbKey(key))
}

// previous returns the currently stored entity or nil.
func (mb *modelBucket) previous(db msig.ReadOnlyKVStore, key []byte) (Model, error) {
	prev := newModel(mb.prototype)
	switch err := mb.One(db, key, prev); {
	case errors.ErrNotFound.Is(err):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return prev, nil
}

func (mb *modelBucket) ByIndex(db msig.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "name %q", indexName)
	}
	return idx.keys(db, value)
}

func (mb *modelBucket) Each(db msig.ReadOnlyKVStore, fn func(key []byte, m Model) error) error {
	it, err := db.Iterator(mb.prefix, prefixEnd(mb.prefix))
	if err != nil {
		return errors.Wrap(err, "bucket iterator")
	}
	defer it.Release()

	for {
		k, v, err := it.Next()
		switch {
		case errors.ErrIteratorDone.Is(err):
			return nil
		case err != nil:
			return err
		}
		m := newModel(mb.prototype)
		if err := load(v, m); err != nil {
			return err
		}
		if err := fn(k[len(mb.prefix):], m); err != nil {
			return err
		}
	}
}
