package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/msig/errors"
)

// collectRange returns, in ascending order, all btree items in [start, end).
// A nil bound is open.
func collectRange(bt *btree.BTree, start, end []byte) []btree.Item {
	var items []btree.Item
	collect := func(item btree.Item) bool {
		items = append(items, item)
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(bkey{end}, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, collect)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, collect)
	}
	return items
}

// mergeIterator combines the items of a cache layer with the iterator of
// its parent. Cache items shadow parent entries with the same key and
// deleted items hide them.
type mergeIterator struct {
	items   []btree.Item
	pos     int
	reverse bool

	parent     Iterator
	parentDone bool
	hasHead    bool
	headKey    []byte
	headValue  []byte
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(items []btree.Item, parent Iterator, reverse bool) *mergeIterator {
	return &mergeIterator{
		items:   items,
		parent:  parent,
		reverse: reverse,
	}
}

// Next returns the next key value pair. ErrIteratorDone is returned when
// both sources are exhausted.
func (m *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := m.loadHead(); err != nil {
			return nil, nil, err
		}
		hasOwn := m.pos < len(m.items)

		switch {
		case !hasOwn && !m.hasHead:
			return nil, nil, errors.Wrap(errors.ErrIteratorDone, "cache iterator")
		case !hasOwn:
			return m.popHead()
		case !m.hasHead:
			if k, v, ok := m.popOwn(); ok {
				return k, v, nil
			}
			continue
		}

		cmp := bytes.Compare(m.items[m.pos].(keyer).Key(), m.headKey)
		if m.reverse {
			cmp = -cmp
		}
		switch {
		case cmp > 0:
			return m.popHead()
		case cmp == 0:
			// Own value shadows the parent entry.
			m.hasHead = false
		}
		if k, v, ok := m.popOwn(); ok {
			return k, v, nil
		}
	}
}

// loadHead ensures the next parent entry is buffered unless the parent is
// exhausted.
func (m *mergeIterator) loadHead() error {
	if m.hasHead || m.parentDone {
		return nil
	}
	k, v, err := m.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		m.parentDone = true
		return nil
	case err != nil:
		return err
	}
	m.hasHead = true
	m.headKey = k
	m.headValue = v
	return nil
}

func (m *mergeIterator) popHead() ([]byte, []byte, error) {
	m.hasHead = false
	return m.headKey, m.headValue, nil
}

// popOwn consumes the next cache item. Returns false for deleted items.
func (m *mergeIterator) popOwn() ([]byte, []byte, bool) {
	item := m.items[m.pos]
	m.pos++
	if set, ok := item.(setItem); ok {
		return set.key, set.value, true
	}
	return nil, nil, false
}

// Release releases the parent iterator.
func (m *mergeIterator) Release() {
	m.items = nil
	m.parent.Release()
}
