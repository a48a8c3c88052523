package app

import (
	"context"
	"sync"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Runtime executes transactions against a committed store. Every
// transaction is atomic: it is written to the deliver cache only when all
// of its instructions succeed.
type Runtime struct {
	mu          sync.Mutex
	logger      log.Logger
	store       *CommitStore
	handler     msig.Handler
	initializer msig.Initializer
	chainID     string
}

// NewRuntime loads the latest state of the store and returns a runtime
// dispatching all instructions to handler.
func NewRuntime(store msig.CommitKVStore, handler msig.Handler, initializer msig.Initializer, logger log.Logger) (*Runtime, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Runtime{
		logger:      logger,
		store:       cs,
		handler:     handler,
		initializer: initializer,
		chainID:     chainID,
	}, nil
}

// ChainID returns the chain id set at genesis, empty if not initialized.
func (r *Runtime) ChainID() string {
	return r.chainID
}

// InitChain stores the chain id and passes the genesis options to the
// initializer. Nothing is written unless all initializers succeed.
func (r *Runtime) InitChain(gen Genesis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.store.DeliverStore().CacheWrap()
	if err := saveChainID(cache, gen.ChainID); err != nil {
		cache.Discard()
		return err
	}
	if r.initializer != nil {
		if err := r.initializer.FromGenesis(gen.AppOptions, cache); err != nil {
			cache.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	r.chainID = gen.ChainID
	r.logger.Info("chain initialized", "chain_id", gen.ChainID)
	return nil
}

// Check runs all instructions of the transaction without persisting any
// state change.
func (r *Runtime) Check(ctx context.Context, tx *Tx) ([]*msig.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.store.CheckStore().CacheWrap()
	defer cache.Discard()
	return r.run(ctx, cache, tx, false)
}

// Deliver runs all instructions of the transaction. State changes are kept
// only if every instruction succeeds.
func (r *Runtime) Deliver(ctx context.Context, tx *Tx) ([]*msig.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.store.DeliverStore().CacheWrap()
	results, err := r.run(ctx, cache, tx, true)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write transaction")
	}
	return results, nil
}

// CheckTx decodes and checks a serialized transaction.
func (r *Runtime) CheckTx(ctx context.Context, raw []byte) ([]*msig.Result, error) {
	tx, err := DecodeTx(raw)
	if err != nil {
		return nil, err
	}
	return r.Check(ctx, tx)
}

// DeliverTx decodes and delivers a serialized transaction.
func (r *Runtime) DeliverTx(ctx context.Context, raw []byte) ([]*msig.Result, error) {
	tx, err := DecodeTx(raw)
	if err != nil {
		return nil, err
	}
	return r.Deliver(ctx, tx)
}

// Commit persists all delivered transactions.
func (r *Runtime) Commit() (msig.CommitID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.store.Commit()
	if err != nil {
		return id, err
	}
	r.logger.Info("commit", "version", id.Version)
	return id, nil
}

// Query calls fn with a read only view of the state, including delivered
// but not yet committed transactions.
func (r *Runtime) Query(fn func(db msig.ReadOnlyKVStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.store.DeliverStore())
}

func (r *Runtime) run(ctx context.Context, db msig.KVStore, tx *Tx, deliver bool) ([]*msig.Result, error) {
	if tx == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "transaction")
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	ctx = msig.WithLogger(ctx, r.logger)
	ctx = msig.WithInstructions(ctx, tx.Instructions)

	results := make([]*msig.Result, 0, len(tx.Instructions))
	for i, ins := range tx.Instructions {
		ictx := msig.WithInstructionIndex(ctx, uint16(i))
		ictx = msig.WithLogInfo(ictx, "instruction", i)

		var (
			res *msig.Result
			err error
		)
		if deliver {
			res, err = r.handler.Deliver(ictx, db, ins)
		} else {
			res, err = r.handler.Check(ictx, db, ins)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		results = append(results, res)
	}
	return results, nil
}
