package app

import (
	"context"
	"reflect"

	"github.com/iov-one/msig"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []msig.Decorator
}

/*
ChainDecorators takes a chain of decorators,
and upon adding a final Handler (often a Router),
returns a Handler that will execute this whole stack.

  app.ChainDecorators(
    utils.NewLogging(),
    utils.NewRecovery(),
  ).WithHandler(
    app.NewRouter(auth),
  )
*/
func ChainDecorators(chain ...msig.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain
func (d Decorators) Chain(chain ...msig.Decorator) Decorators {
	chain = cutoffNil(chain)
	newChain := make([]msig.Decorator, 0, len(d.chain)+len(chain))
	newChain = append(newChain, d.chain...)
	newChain = append(newChain, chain...)
	return Decorators{newChain}
}

// cutoffNil will in-place remove all nil values from given slice.
func cutoffNil(ds []msig.Decorator) []msig.Decorator {
	var cutoff int
	for i := 0; i < len(ds); i++ {
		ds[i-cutoff] = ds[i]
		if ds[i] == nil || (reflect.ValueOf(ds[i]).Kind() == reflect.Ptr && reflect.ValueOf(ds[i]).IsNil()) {
			cutoff++
		}
	}
	return ds[:len(ds)-cutoff]
}

// WithHandler resolves the stack and returns a concrete Handler
// that will pass through the chain of decorators before calling
// the final Handler.
func (d Decorators) WithHandler(h msig.Handler) msig.Handler {
	// the top of the chain is executed first
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a
// specific Handler.
type step struct {
	d    msig.Decorator
	next msig.Handler
}

var _ msig.Handler = step{}

// Check passes the handler into the decorator, implements Handler
func (s step) Check(ctx context.Context, store msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	return s.d.Check(ctx, store, ins, s.next)
}

// Deliver passes the handler into the decorator, implements Handler
func (s step) Deliver(ctx context.Context, store msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	return s.d.Deliver(ctx, store, ins, s.next)
}
