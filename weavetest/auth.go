package weavetest

import (
	"context"
	"fmt"

	"github.com/iov-one/msig"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions. Addresses
// authenticates identities directly, which is how public key and ethereum
// address signers are represented.
type Auth struct {
	// Signer represents an authentication of a single signer.
	Signer msig.Condition

	// Signers represents an authentication of multiple signers.
	Signers []msig.Condition

	// Addresses are authenticated as they are.
	Addresses []msig.Address
}

func (a *Auth) GetConditions(context.Context) []msig.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx context.Context, addr msig.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	for _, known := range a.Addresses {
		if addr.Equals(known) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve permissions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetConditions(ctx context.Context, permissions ...msig.Condition) context.Context {
	return context.WithValue(ctx, a.Key, permissions)
}

func (a *CtxAuth) GetConditions(ctx context.Context) []msig.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]msig.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []msig.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx context.Context, addr msig.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
