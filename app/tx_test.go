package app

import (
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxValidate(t *testing.T) {
	ins := &msig.Instruction{Target: weavetest.RandomAddress(), Data: []byte("x")}

	cases := map[string]struct {
		tx        *Tx
		wantErr   *errors.Error
		wantField string
	}{
		"valid": {
			tx: NewTx(ins, ins),
		},
		"empty": {
			tx:      NewTx(),
			wantErr: errors.ErrEmpty,
		},
		"too many instructions": {
			tx:      &Tx{Instructions: make([]*msig.Instruction, MaxInstructions+1)},
			wantErr: errors.ErrInvalidInput,
		},
		"nil instruction": {
			tx:        NewTx(ins, nil),
			wantErr:   errors.ErrEmpty,
			wantField: "Instructions.1",
		},
		"invalid instruction": {
			tx:        NewTx(&msig.Instruction{}),
			wantErr:   errors.ErrEmpty,
			wantField: "Instructions.0",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.tx.Validate()
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantField != "" {
				assert.NotEmpty(t, errors.FieldErrors(err, tc.wantField))
			}
		})
	}
}

func TestTxEncoding(t *testing.T) {
	tx := NewTx(
		&msig.Instruction{Target: weavetest.RandomAddress(), Data: []byte("first")},
		&msig.Instruction{
			Target:   weavetest.RandomAddress(),
			Accounts: []*msig.AccountRef{{Address: weavetest.RandomAddress(), IsSigner: true}},
		},
	)
	raw, err := tx.Marshal()
	require.NoError(t, err)

	got, err := DecodeTx(raw)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	_, err = DecodeTx([]byte{0xff, 0xff})
	assert.True(t, errors.ErrInvalidInput.Is(err))

	empty, err := NewTx().Marshal()
	require.NoError(t, err)
	_, err = DecodeTx(empty)
	assert.True(t, errors.ErrEmpty.Is(err))
}
