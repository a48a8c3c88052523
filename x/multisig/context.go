package multisig

import (
	"context"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/x"
)

type contextKey int // local to the multisig module

const (
	contextKeyAuthority contextKey = iota
)

// withAuthority is a private method, as only this module can grant the
// delegated authority of a configuration.
func withAuthority(ctx context.Context, config msig.Address) context.Context {
	granted := append(authorities(ctx), AuthorityCondition(config))
	return context.WithValue(ctx, contextKeyAuthority, granted)
}

func authorities(ctx context.Context) []msig.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyAuthority).([]msig.Condition)
	// Copy so that sibling contexts do not share the backing array.
	return append([]msig.Condition(nil), val...)
}

// Authenticate reports the delegated authorities granted by executed
// multisig requests.
type Authenticate struct {
}

var _ x.Authenticator = Authenticate{}

// GetConditions returns authorities previously granted on this context
func (a Authenticate) GetConditions(ctx context.Context) []msig.Condition {
	return authorities(ctx)
}

// HasAddress returns true iff this address is in GetConditions
func (a Authenticate) HasAddress(ctx context.Context, addr msig.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
