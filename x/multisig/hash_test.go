package multisig

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/msig"
	"github.com/stretchr/testify/assert"
)

func TestTxHashSerialization(t *testing.T) {
	got := TxHash(
		msig.Address{1, 2},
		1,
		[]*msig.AccountRef{{Address: msig.Address{3}, IsSigner: true}},
		[]byte{5, 6},
		msig.Address{4},
	)
	want := crypto.Keccak256([]byte{
		1, 2,
		1, 0, 0, 0, 0, 0, 0, 0,
		3, 1, 0,
		4,
		5, 6,
	})
	assert.Equal(t, want, got)
	assert.Len(t, got, 32)
}

func TestTxHashChanges(t *testing.T) {
	authority := msig.Address(bytes.Repeat([]byte{1}, 20))
	target := msig.Address(bytes.Repeat([]byte{2}, 20))
	accounts := func() []*msig.AccountRef {
		return []*msig.AccountRef{
			{Address: msig.Address(bytes.Repeat([]byte{3}, 20)), IsWritable: true},
			{Address: msig.Address(bytes.Repeat([]byte{4}, 20))},
		}
	}
	payload := []byte("transfer 10")
	base := TxHash(authority, 3, accounts(), payload, target)

	assert.Equal(t, base, TxHash(authority, 3, accounts(), payload, target), "must be deterministic")

	cases := map[string][]byte{
		"nonce":     TxHash(authority, 4, accounts(), payload, target),
		"authority": TxHash(target, 3, accounts(), payload, target),
		"target":    TxHash(authority, 3, accounts(), payload, authority),
		"payload":   TxHash(authority, 3, accounts(), []byte("transfer 11"), target),
		"signer flag": func() []byte {
			acc := accounts()
			acc[1].IsSigner = true
			return TxHash(authority, 3, acc, payload, target)
		}(),
		"writable flag": func() []byte {
			acc := accounts()
			acc[0].IsWritable = false
			return TxHash(authority, 3, acc, payload, target)
		}(),
		"account order": func() []byte {
			acc := accounts()
			acc[0], acc[1] = acc[1], acc[0]
			return TxHash(authority, 3, acc, payload, target)
		}(),
		"no accounts": TxHash(authority, 3, nil, payload, target),
	}
	for name, digest := range cases {
		assert.NotEqual(t, base, digest, name)
	}
}
