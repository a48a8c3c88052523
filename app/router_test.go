package app

import (
	"context"
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/store"
	"github.com/iov-one/msig/weavetest"
	"github.com/iov-one/msig/weavetest/assert"
)

func TestRouterRegistration(t *testing.T) {
	r := NewRouter(&weavetest.Auth{})
	target := weavetest.RandomAddress()
	r.Handle(target, &weavetest.Handler{})

	assert.Panics(t, func() { r.Handle(target, &weavetest.Handler{}) })
	assert.Panics(t, func() { r.Handle(nil, &weavetest.Handler{}) })
	assert.Panics(t, func() { r.Handle(make(msig.Address, 33), &weavetest.Handler{}) })

	_, err := r.Handler(target)
	assert.Nil(t, err)
	_, err = r.Handler(weavetest.RandomAddress())
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestRouterDispatch(t *testing.T) {
	signer := weavetest.RandomAddress()
	other := weavetest.RandomAddress()
	target := weavetest.RandomAddress()

	cases := map[string]struct {
		ins     *msig.Instruction
		wantErr *errors.Error
		called  bool
	}{
		"no signers": {
			ins: &msig.Instruction{
				Target:   target,
				Accounts: []*msig.AccountRef{{Address: other, IsWritable: true}},
			},
			called: true,
		},
		"authenticated signer": {
			ins: &msig.Instruction{
				Target:   target,
				Accounts: []*msig.AccountRef{{Address: signer, IsSigner: true}, {Address: other}},
			},
			called: true,
		},
		"unauthenticated signer": {
			ins: &msig.Instruction{
				Target:   target,
				Accounts: []*msig.AccountRef{{Address: signer, IsSigner: true}, {Address: other, IsSigner: true}},
			},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown target": {
			ins:     &msig.Instruction{Target: other},
			wantErr: errors.ErrNotFound,
		},
		"invalid instruction": {
			ins:     &msig.Instruction{Target: target, Accounts: []*msig.AccountRef{nil}},
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := &weavetest.Handler{}
			r := NewRouter(&weavetest.Auth{Addresses: []msig.Address{signer}})
			r.Handle(target, h)
			db := store.MemStore()

			_, err := r.Check(context.Background(), db, tc.ins)
			assert.IsErr(t, tc.wantErr, err)
			_, err = r.Deliver(context.Background(), db, tc.ins)
			assert.IsErr(t, tc.wantErr, err)

			if tc.called {
				assert.Equal(t, 1, h.CheckCallCount())
				assert.Equal(t, 1, h.DeliverCallCount())
			} else {
				assert.Equal(t, 0, h.CallCount())
			}
		})
	}
}
