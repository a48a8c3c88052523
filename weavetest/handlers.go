package weavetest

import (
	"context"

	"github.com/iov-one/msig"
)

// Handler is a mock implementation of the msig.Handler interface.
//
// It counts calls and records the last instruction and context it received.
// Set CheckErr or DeliverErr to force an error response.
type Handler struct {
	checkCall   int
	CheckResult msig.Result
	CheckErr    error

	deliverCall   int
	DeliverResult msig.Result
	DeliverErr    error

	// OnDeliver if set is called with the instruction before returning.
	// Use it to inspect the context or modify the store.
	OnDeliver func(ctx context.Context, db msig.KVStore, ins *msig.Instruction) error

	lastCtx context.Context
	last    *msig.Instruction
}

var _ msig.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	h.checkCall++
	h.lastCtx, h.last = ctx, ins
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	h.deliverCall++
	h.lastCtx, h.last = ctx, ins
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	if h.OnDeliver != nil {
		if err := h.OnDeliver(ctx, db, ins); err != nil {
			return nil, err
		}
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// LastInstruction returns the instruction passed in the most recent call.
func (h *Handler) LastInstruction() *msig.Instruction {
	return h.last
}

// LastContext returns the context passed in the most recent call.
func (h *Handler) LastContext() context.Context {
	return h.lastCtx
}
