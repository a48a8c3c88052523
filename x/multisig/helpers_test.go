package multisig

import (
	"context"
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/weavetest"
	"github.com/iov-one/msig/x/sigbatch"
	"github.com/stretchr/testify/require"
)

func seed(b byte) []byte {
	s := make([]byte, SeedLength)
	s[0] = b
	return s
}

func identities(keys ...weavetest.Key) []msig.Address {
	ids := make([]msig.Address, len(keys))
	for i, k := range keys {
		ids[i] = k.Identity()
	}
	return ids
}

// signRecord returns an ed25519 facility record of keys signing digest.
func signRecord(t testing.TB, digest []byte, keys ...weavetest.Key) *msig.Instruction {
	t.Helper()
	entries := make([]sigbatch.Entry, len(keys))
	for i, k := range keys {
		sig, err := k.Sign(digest)
		require.NoError(t, err)
		entries[i] = sigbatch.Entry{Identity: k.Identity(), Signature: sig, Message: digest}
	}
	ins, err := sigbatch.NewEd25519Instruction(entries)
	require.NoError(t, err)
	return ins
}

// txContext returns a context executing the last of given instructions.
func txContext(ins ...*msig.Instruction) context.Context {
	ctx := msig.WithInstructions(context.Background(), ins)
	return msig.WithInstructionIndex(ctx, uint16(len(ins)-1))
}

// stubOracle returns preset records.
type stubOracle struct {
	records []sigbatch.Record
	err     error
	calls   int
}

func (o *stubOracle) Signatures(ctx context.Context, index uint16, n int) ([]sigbatch.Record, error) {
	o.calls++
	return o.records, o.err
}
