package app

import (
	"context"
	"fmt"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/x"
)

// Router dispatches an instruction to the handler registered for its
// target. Before a handler is called every account marked as a signer must
// be authenticated.
type Router struct {
	auth   x.Authenticator
	routes map[string]msig.Handler
}

var _ msig.Registry = (*Router)(nil)
var _ msig.Handler = (*Router)(nil)

// NewRouter returns a new empty router. auth is used to authenticate
// signer accounts of every routed instruction.
func NewRouter(auth x.Authenticator) *Router {
	return &Router{
		auth:   auth,
		routes: make(map[string]msig.Handler),
	}
}

// Handle registers a handler for the given target. This function panics if
// the target is invalid or already registered.
func (r *Router) Handle(target msig.Address, h msig.Handler) {
	if err := target.Validate(); err != nil {
		panic(fmt.Sprintf("invalid route target %q: %s", target, err))
	}
	key := string(target)
	if _, ok := r.routes[key]; ok {
		panic(fmt.Sprintf("re-registering route: %s", target))
	}
	r.routes[key] = h
}

// Handler returns the handler registered for given target.
func (r *Router) Handler(target msig.Address) (msig.Handler, error) {
	h, ok := r.routes[string(target)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for target %s", target)
	}
	return h, nil
}

// Check dispatches to the proper handler.
func (r *Router) Check(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	h, err := r.route(ctx, ins)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, db, ins)
}

// Deliver dispatches to the proper handler.
func (r *Router) Deliver(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	h, err := r.route(ctx, ins)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, ins)
}

func (r *Router) route(ctx context.Context, ins *msig.Instruction) (msig.Handler, error) {
	if err := ins.Validate(); err != nil {
		return nil, errors.Wrap(err, "instruction")
	}
	h, err := r.Handler(ins.Target)
	if err != nil {
		return nil, err
	}
	if missing := x.MissingAddresses(ctx, r.auth, ins.Signers()); len(missing) != 0 {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "signer %s not authenticated", missing[0])
	}
	return h, nil
}
