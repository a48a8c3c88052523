package utils

import (
	"context"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

// Recovery is a decorator to recover from panics in instructions,
// so we can log them as errors
type Recovery struct{}

var _ msig.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx context.Context, store msig.KVStore, ins *msig.Instruction, next msig.Checker) (_ *msig.Result, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, ins)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx context.Context, store msig.KVStore, ins *msig.Instruction, next msig.Deliverer) (_ *msig.Result, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, ins)
}
