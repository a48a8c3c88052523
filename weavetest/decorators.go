package weavetest

import (
	"context"

	"github.com/iov-one/msig"
)

// Decorator is a mock implementation of the msig.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
// Each method call is counted. Regardless of the method call result the
// counter is incremented.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ msig.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx context.Context, db msig.KVStore, ins *msig.Instruction, next msig.Checker) (*msig.Result, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, ins)
}

func (d *Decorator) Deliver(ctx context.Context, db msig.KVStore, ins *msig.Instruction, next msig.Deliverer) (*msig.Result, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, ins)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}
