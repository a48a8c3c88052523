package multisig

import (
	"context"
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/weavetest"
	"github.com/iov-one/msig/x/sigbatch"
	"github.com/stretchr/testify/require"
)

func TestVerifyOrder(t *testing.T) {
	a, b, c := weavetest.NewEd25519Key(), weavetest.NewEd25519Key(), weavetest.NewEd25519Key()
	stranger := weavetest.NewEd25519Key()
	conf, err := NewConfig(seed(1), identities(a, b, c), 2, sigbatch.Ed25519)
	require.NoError(t, err)
	conf.Nonce = 5

	request := func(nonce uint64, signers ...weavetest.Key) *ExecuteMsg {
		return &ExecuteMsg{
			Metadata: &msig.Metadata{Schema: 1},
			Config:   conf.Address,
			Nonce:    nonce,
			Signers:  identities(signers...),
			Target:   weavetest.RandomAddress(),
			Payload:  []byte("payload"),
		}
	}
	records := func(m *ExecuteMsg, digest []byte, signers ...weavetest.Key) []sigbatch.Record {
		res := make([]sigbatch.Record, len(signers))
		for i, s := range signers {
			res[i] = sigbatch.Record{Identity: s.Identity(), Message: digest}
		}
		return res
	}

	oracleFailure := errors.Wrap(errors.ErrHuman, "oracle failure")

	cases := map[string]struct {
		msg        *ExecuteMsg
		oracle     func(m *ExecuteMsg) *stubOracle
		wantErr    *errors.Error
		wantCalled bool
	}{
		"authorized": {
			msg: request(5, a, b),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), a, b)}
			},
			wantCalled: true,
		},
		"all owners": {
			msg: request(5, c, b, a),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), c, b, a)}
			},
			wantCalled: true,
		},
		"duplicate is reported before the nonce": {
			msg: request(1, a, a),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), a, a)}
			},
			wantErr: ErrDuplicateSigner,
		},
		"threshold is reported before the nonce": {
			msg: request(1, a),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), a)}
			},
			wantErr: ErrThresholdNotMet,
		},
		"no signers": {
			msg:     request(5),
			oracle:  func(m *ExecuteMsg) *stubOracle { return &stubOracle{} },
			wantErr: ErrThresholdNotMet,
		},
		"nonce is reported before membership": {
			msg: request(4, a, stranger),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), a, stranger)}
			},
			wantErr: ErrNonceTooOld,
		},
		"future nonce": {
			msg: request(6, a, b),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), a, b)}
			},
			wantErr: ErrNonceTooOld,
		},
		"not an owner": {
			msg:     request(5, a, stranger),
			oracle:  func(m *ExecuteMsg) *stubOracle { return &stubOracle{err: oracleFailure} },
			wantErr: ErrInvalidSigner,
		},
		"oracle failure surfaces unchanged": {
			msg:        request(5, a, b),
			oracle:     func(m *ExecuteMsg) *stubOracle { return &stubOracle{err: oracleFailure} },
			wantErr:    errors.ErrHuman,
			wantCalled: true,
		},
		"record count mismatch": {
			msg: request(5, a, b),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), a)}
			},
			wantErr:    ErrInvalidVerifierInstruction,
			wantCalled: true,
		},
		"signer order differs from the record": {
			msg: request(5, a, b),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, m.Digest(conf), b, a)}
			},
			wantErr:    ErrInvalidMessageSigner,
			wantCalled: true,
		},
		"signer is checked before the message": {
			msg: request(5, a, b),
			oracle: func(m *ExecuteMsg) *stubOracle {
				return &stubOracle{records: records(m, []byte("something else"), a, c)}
			},
			wantErr:    ErrInvalidMessageSigner,
			wantCalled: true,
		},
		"signed another message": {
			msg: request(5, a, b),
			oracle: func(m *ExecuteMsg) *stubOracle {
				rs := records(m, m.Digest(conf), a, b)
				rs[1].Message = make([]byte, 32)
				return &stubOracle{records: rs}
			},
			wantErr:    ErrInvalidMessage,
			wantCalled: true,
		},
		"signed digest of a previous nonce": {
			msg: request(5, a, b),
			oracle: func(m *ExecuteMsg) *stubOracle {
				prev := TxHash(conf.Authority, 4, m.Accounts, m.Payload, m.Target)
				return &stubOracle{records: records(m, prev, a, b)}
			},
			wantErr:    ErrInvalidMessage,
			wantCalled: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			oracle := tc.oracle(tc.msg)
			before := *conf
			err := Verify(context.Background(), conf, tc.msg, oracle)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if got := oracle.calls != 0; got != tc.wantCalled {
				t.Fatalf("oracle called: %v", got)
			}
			if conf.Nonce != before.Nonce {
				t.Fatal("verification modified the configuration")
			}
		})
	}
}

// Verification with signatures read from a facility record of the
// transaction.
func TestVerifyWithInstructionOracle(t *testing.T) {
	a, b, c := weavetest.NewEd25519Key(), weavetest.NewEd25519Key(), weavetest.NewEd25519Key()
	conf, err := NewConfig(seed(1), identities(a, b, c), 2, sigbatch.Ed25519)
	require.NoError(t, err)

	msg := &ExecuteMsg{
		Metadata: &msig.Metadata{Schema: 1},
		Config:   conf.Address,
		Signers:  identities(a, b),
		Target:   weavetest.RandomAddress(),
		Accounts: []*msig.AccountRef{{Address: conf.Authority, IsWritable: true}},
		Payload:  []byte("payload"),
	}
	oracle := sigbatch.InstructionOracle{Parser: sigbatch.NewParser(sigbatch.Ed25519), Verify: true}

	record := signRecord(t, msg.Digest(conf), a, b)
	ctx := txContext(record, &msig.Instruction{Target: ProgramID})
	require.NoError(t, Verify(ctx, conf, msg, oracle))

	// A record produced by an unexpected facility.
	forged := record.Clone()
	forged.Target = weavetest.RandomAddress()
	ctx = txContext(forged, &msig.Instruction{Target: ProgramID})
	err = Verify(ctx, conf, msg, oracle)
	require.True(t, ErrInvalidVerifierInstruction.Is(err), "%+v", err)

	// A record that references accounts.
	forged = record.Clone()
	forged.Accounts = []*msig.AccountRef{{Address: weavetest.RandomAddress()}}
	ctx = txContext(forged, &msig.Instruction{Target: ProgramID})
	err = Verify(ctx, conf, msg, oracle)
	require.True(t, ErrInvalidVerifierInstruction.Is(err), "%+v", err)

	// Owners signed a different payload.
	ctx = txContext(signRecord(t, TxHash(conf.Authority, 0, msg.Accounts, []byte("other"), msg.Target), a, b),
		&msig.Instruction{Target: ProgramID})
	err = Verify(ctx, conf, msg, oracle)
	require.True(t, ErrInvalidMessage.Is(err), "%+v", err)
}
