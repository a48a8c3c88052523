package store

import "github.com/iov-one/msig"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = msig.ReadOnlyKVStore
type SetDeleter = msig.SetDeleter
type KVStore = msig.KVStore
type Batch = msig.Batch
type Iterator = msig.Iterator
type CacheableKVStore = msig.CacheableKVStore
type KVCacheWrap = msig.KVCacheWrap
type CommitKVStore = msig.CommitKVStore
type CommitID = msig.CommitID

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
