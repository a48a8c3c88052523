package weavetest

import (
	"context"
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/store"
	"github.com/iov-one/msig/weavetest/assert"
)

func TestHandlerAndDecorator(t *testing.T) {
	h := &Handler{DeliverErr: errors.ErrInvalidState}
	d := &Decorator{}
	db := store.MemStore()
	ins := &msig.Instruction{Target: RandomAddress()}

	_, err := d.Check(context.Background(), db, ins, h)
	assert.Nil(t, err)
	_, err = d.Deliver(context.Background(), db, ins, h)
	assert.IsErr(t, errors.ErrInvalidState, err)

	assert.Equal(t, 1, h.CheckCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())
	assert.Equal(t, 2, h.CallCount())
	assert.Equal(t, 1, d.CheckCallCount())
	assert.Equal(t, 1, d.DeliverCallCount())
	assert.Equal(t, ins, h.LastInstruction())
}

func TestAuth(t *testing.T) {
	cond := NewCondition()
	addr := RandomAddress()
	auth := &Auth{Signer: cond, Addresses: []msig.Address{addr}}

	ctx := context.Background()
	assert.Equal(t, true, auth.HasAddress(ctx, cond.Address()))
	assert.Equal(t, true, auth.HasAddress(ctx, addr))
	assert.Equal(t, false, auth.HasAddress(ctx, RandomAddress()))

	ctxAuth := &CtxAuth{Key: "auth"}
	assert.Equal(t, false, ctxAuth.HasAddress(ctx, cond.Address()))
	ctx = ctxAuth.SetConditions(ctx, cond)
	assert.Equal(t, true, ctxAuth.HasAddress(ctx, cond.Address()))
}

func TestKeys(t *testing.T) {
	ed := NewEd25519Key()
	assert.Equal(t, 32, len(ed.Identity()))
	sig, err := ed.Sign([]byte("message"))
	assert.Nil(t, err)
	assert.Equal(t, 64, len(sig))

	secp := NewSecp256k1Key()
	assert.Equal(t, 20, len(secp.Identity()))
	sig, err = secp.Sign([]byte("message"))
	assert.Nil(t, err)
	assert.Equal(t, 65, len(sig))
}
