package sigbatch

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutPositions(t *testing.T) {
	cases := map[string]struct {
		layout layout
		n      int
		starts [3]int
		end    int
	}{
		"ed25519 single": {
			layout: ed25519Layout,
			n:      1,
			starts: [3]int{16, 80, 112},
			end:    144,
		},
		"ed25519 pair": {
			layout: ed25519Layout,
			n:      2,
			starts: [3]int{30, 158, 222},
			end:    286,
		},
		"secp256k1 pair": {
			layout: secp256k1Layout,
			n:      2,
			starts: [3]int{23, 63, 193},
			end:    257,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			pos, err := tc.layout.positions(tc.n)
			require.NoError(t, err)
			assert.Equal(t, tc.starts, pos.starts)
			assert.Equal(t, tc.end, pos.end)
		})
	}
}

func TestCheckedMulAdd(t *testing.T) {
	_, err := checkedMulAdd(10, 1000, 100)
	assert.True(t, errors.ErrOverflow.Is(err))

	got, err := checkedMulAdd(2, 14, MaxSignatures)
	require.NoError(t, err)
	assert.Equal(t, 2+14*255, got)
}

func TestSecp256k1OffsetsEncoding(t *testing.T) {
	o := Offsets{
		SignatureOffset:      0x0102,
		SignatureInstruction: 3,
		IdentityOffset:       0x0405,
		IdentityInstruction:  6,
		MessageOffset:        0x0708,
		MessageSize:          32,
		MessageInstruction:   9,
	}
	raw := secp256k1Layout.encode(nil, o)
	assert.Equal(t, []byte{0x02, 0x01, 3, 0x05, 0x04, 6, 0x08, 0x07, 32, 0, 9}, raw)
	assert.Equal(t, o, secp256k1Layout.decode(append([]byte{1}, raw...), 0))
}

func message(text string) []byte {
	h := sha256.Sum256([]byte(text))
	return h[:]
}

func signAll(t *testing.T, msg []byte, keys ...weavetest.Key) []Entry {
	t.Helper()
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		sig, err := k.Sign(msg)
		require.NoError(t, err)
		entries[i] = Entry{Identity: k.Identity(), Signature: sig, Message: msg}
	}
	return entries
}

func executing(ins ...*msig.Instruction) context.Context {
	ctx := msig.WithInstructions(context.Background(), ins)
	return msig.WithInstructionIndex(ctx, uint16(len(ins)-1))
}

func TestEd25519Roundtrip(t *testing.T) {
	msg := message("transfer")
	a, b := weavetest.NewEd25519Key(), weavetest.NewEd25519Key()

	ins, err := NewEd25519Instruction(signAll(t, msg, a, b))
	require.NoError(t, err)
	assert.Equal(t, Ed25519ProgramID, ins.Target)
	assert.Len(t, ins.Data, 286)

	for _, relaxed := range []bool{false, true} {
		p := NewParser(Ed25519)
		p.RelaxedOffsets = relaxed
		records, err := p.Parse(ins, 0, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, a.Identity(), records[0].Identity)
		assert.Equal(t, b.Identity(), records[1].Identity)
		assert.Equal(t, msg, records[0].Message)
		assert.Equal(t, msg, records[1].Message)
	}

	prog, err := NewProgram(Ed25519)
	require.NoError(t, err)
	_, err = prog.Deliver(executing(ins), nil, ins)
	assert.NoError(t, err)
}

func TestSecp256k1Roundtrip(t *testing.T) {
	msg := message("transfer")
	a, b, c := weavetest.NewSecp256k1Key(), weavetest.NewSecp256k1Key(), weavetest.NewSecp256k1Key()

	ins, err := NewSecp256k1Instruction(0, signAll(t, msg, a, b, c))
	require.NoError(t, err)

	records, err := NewParser(Secp256k1).Parse(ins, 0, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, k := range []weavetest.Key{a, b, c} {
		assert.Equal(t, k.Identity(), records[i].Identity)
		assert.Equal(t, msg, records[i].Message)
	}

	// Strict parsing must fail when the own index is not the encoded one.
	_, err = NewParser(Secp256k1).Parse(ins, 1, 3)
	assert.True(t, ErrInvalidVerifierInstruction.Is(err))

	prog, err := NewProgram(Secp256k1)
	require.NoError(t, err)
	_, err = prog.Check(executing(ins), nil, ins)
	assert.NoError(t, err)
}

func TestParseErrors(t *testing.T) {
	msg := message("payload")
	key := weavetest.NewEd25519Key()
	valid, err := NewEd25519Instruction(signAll(t, msg, key))
	require.NoError(t, err)

	mutate := func(fn func(*msig.Instruction)) *msig.Instruction {
		ins := valid.Clone()
		fn(ins)
		return ins
	}

	cases := map[string]struct {
		ins     *msig.Instruction
		n       int
		relaxed bool
	}{
		"missing instruction": {
			ins: nil,
			n:   1,
		},
		"unexpected source": {
			ins: mutate(func(ins *msig.Instruction) { ins.Target = Secp256k1ProgramID }),
			n:   1,
		},
		"references accounts": {
			ins: mutate(func(ins *msig.Instruction) {
				ins.Accounts = []*msig.AccountRef{{Address: weavetest.RandomAddress()}}
			}),
			n: 1,
		},
		"zero signatures": {
			ins: valid,
			n:   0,
		},
		"too many signatures": {
			ins: valid,
			n:   MaxSignatures + 1,
		},
		"count mismatch": {
			ins: mutate(func(ins *msig.Instruction) { ins.Data[0] = 2 }),
			n:   1,
		},
		"expects more signatures than stored": {
			ins: valid,
			n:   2,
		},
		"truncated": {
			ins: mutate(func(ins *msig.Instruction) { ins.Data = ins.Data[:len(ins.Data)-1] }),
			n:   1,
		},
		"relaxed truncated": {
			ins:     mutate(func(ins *msig.Instruction) { ins.Data = ins.Data[:len(ins.Data)-1] }),
			n:       1,
			relaxed: true,
		},
		"trailing data": {
			ins: mutate(func(ins *msig.Instruction) { ins.Data = append(ins.Data, 0) }),
			n:   1,
		},
		"padding": {
			ins: mutate(func(ins *msig.Instruction) { ins.Data[1] = 1 }),
			n:   1,
		},
		"foreign message": {
			ins: mutate(func(ins *msig.Instruction) { ins.Data[2+12] = 4 }),
			n:   1,
		},
		"repointed triple": {
			ins: repointed(t, key, msg),
			n:   1,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			p := NewParser(Ed25519)
			p.RelaxedOffsets = tc.relaxed
			_, err := p.Parse(tc.ins, 0, tc.n)
			if !ErrInvalidVerifierInstruction.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

// repointed returns a record whose fixed slots hold the victim key, the
// message and an empty signature while its offsets table points at a triple
// signed by another key appended after the record.
func repointed(t testing.TB, victim weavetest.Key, msg []byte) *msig.Instruction {
	t.Helper()
	ins, err := NewEd25519Instruction([]Entry{{
		Identity:  victim.Identity(),
		Signature: make([]byte, ed25519SignatureLen),
		Message:   msg,
	}})
	require.NoError(t, err)
	require.Len(t, ins.Data, 144)

	other := weavetest.NewEd25519Key()
	sig, err := other.Sign(msg)
	require.NoError(t, err)
	ins.Data = append(ins.Data, sig...)
	ins.Data = append(ins.Data, other.Identity()...)
	ins.Data = append(ins.Data, msg...)
	binary.LittleEndian.PutUint16(ins.Data[2:], 144)
	binary.LittleEndian.PutUint16(ins.Data[6:], 208)
	binary.LittleEndian.PutUint16(ins.Data[10:], 240)
	return ins
}

func TestProgramRejects(t *testing.T) {
	msg := message("payload")
	ed := weavetest.NewEd25519Key()
	secp := weavetest.NewSecp256k1Key()

	edIns, err := NewEd25519Instruction(signAll(t, msg, ed))
	require.NoError(t, err)
	secpIns, err := NewSecp256k1Instruction(0, signAll(t, msg, secp))
	require.NoError(t, err)

	cases := map[string]struct {
		scheme  Scheme
		ins     *msig.Instruction
		mutate  func(*msig.Instruction)
		wantErr *errors.Error
	}{
		"ed25519 tampered signature": {
			scheme:  Ed25519,
			ins:     edIns,
			mutate:  func(ins *msig.Instruction) { ins.Data[16] ^= 0xff },
			wantErr: ErrInvalidSignature,
		},
		"ed25519 tampered message": {
			scheme:  Ed25519,
			ins:     edIns,
			mutate:  func(ins *msig.Instruction) { ins.Data[len(ins.Data)-1] ^= 0xff },
			wantErr: ErrInvalidSignature,
		},
		"ed25519 offset out of bounds": {
			scheme:  Ed25519,
			ins:     edIns,
			mutate:  func(ins *msig.Instruction) { ins.Data[2] = 0xff; ins.Data[3] = 0x0f },
			wantErr: ErrInvalidVerifierInstruction,
		},
		"ed25519 empty batch": {
			scheme:  Ed25519,
			ins:     edIns,
			mutate:  func(ins *msig.Instruction) { ins.Data[0] = 0 },
			wantErr: ErrInvalidVerifierInstruction,
		},
		"ed25519 unknown instruction": {
			scheme:  Ed25519,
			ins:     edIns,
			mutate:  func(ins *msig.Instruction) { ins.Data[2+4+2] = 7; ins.Data[2+4+3] = 0 },
			wantErr: ErrInvalidVerifierInstruction,
		},
		"secp256k1 wrong address": {
			scheme:  Secp256k1,
			ins:     secpIns,
			mutate:  func(ins *msig.Instruction) { ins.Data[12] ^= 0xff },
			wantErr: ErrInvalidSignature,
		},
		"secp256k1 with accounts": {
			scheme: Secp256k1,
			ins:    secpIns,
			mutate: func(ins *msig.Instruction) {
				ins.Accounts = []*msig.AccountRef{{Address: weavetest.RandomAddress()}}
			},
			wantErr: ErrInvalidVerifierInstruction,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ins := tc.ins.Clone()
			tc.mutate(ins)
			prog, err := NewProgram(tc.scheme)
			require.NoError(t, err)
			_, err = prog.Deliver(executing(ins), nil, ins)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestInstructionOracle(t *testing.T) {
	msg := message("payload")
	a, b := weavetest.NewEd25519Key(), weavetest.NewEd25519Key()

	record, err := NewEd25519Instruction(signAll(t, msg, a, b))
	require.NoError(t, err)
	caller := &msig.Instruction{Target: weavetest.RandomAddress()}
	ctx := executing(record, caller)

	oracle := InstructionOracle{Parser: NewParser(Ed25519), Verify: true}
	records, err := oracle.Signatures(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, a.Identity(), records[0].Identity)

	_, err = oracle.Signatures(ctx, 1, 2)
	assert.True(t, ErrInvalidVerifierInstruction.Is(err))

	_, err = oracle.Signatures(ctx, 5, 2)
	assert.True(t, ErrInvalidVerifierInstruction.Is(err))

	_, err = oracle.Signatures(ctx, msig.CurrentInstruction, 2)
	assert.True(t, ErrInvalidVerifierInstruction.Is(err))

	// A record whose signature does not verify is rejected only when the
	// oracle verifies.
	forged := record.Clone()
	forged.Data[30] ^= 0xff
	ctx = executing(forged, caller)
	_, err = oracle.Signatures(ctx, 0, 2)
	assert.True(t, ErrInvalidSignature.Is(err))

	oracle.Verify = false
	_, err = oracle.Signatures(ctx, 0, 2)
	assert.NoError(t, err)
}

func TestRelaxedOracleResolvesOffsets(t *testing.T) {
	msg := message("payload")
	victim := weavetest.NewEd25519Key()
	caller := &msig.Instruction{Target: weavetest.RandomAddress()}

	relaxed := NewParser(Ed25519)
	relaxed.RelaxedOffsets = true
	oracle := InstructionOracle{Parser: relaxed}

	// The facility accepts the repointed record because the appended triple
	// verifies, yet it does not sign for the key in the fixed slots.
	forged := repointed(t, victim, msg)
	prog, err := NewProgram(Ed25519)
	require.NoError(t, err)
	_, err = prog.Deliver(executing(forged), nil, forged)
	require.NoError(t, err)

	_, err = relaxed.Parse(forged, 0, 1)
	require.NoError(t, err)
	_, err = oracle.Signatures(executing(forged, caller), 0, 1)
	assert.True(t, ErrInvalidVerifierInstruction.Is(err))

	// Trailing data is tolerated as long as the offsets address the parsed
	// entries.
	record, err := NewEd25519Instruction(signAll(t, msg, victim))
	require.NoError(t, err)
	record.Data = append(record.Data, 0, 0)
	records, err := oracle.Signatures(executing(record, caller), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, victim.Identity(), records[0].Identity)

	_, err = NewParser(Ed25519).Parse(record, 0, 1)
	assert.True(t, ErrInvalidVerifierInstruction.Is(err))

	// Entries may also point at the record through its index.
	indexed := record.Clone()
	binary.LittleEndian.PutUint16(indexed.Data[4:], 0)
	_, err = oracle.Signatures(executing(indexed, caller), 0, 1)
	assert.NoError(t, err)
}

func TestBuilderRejectsMalformedEntries(t *testing.T) {
	_, err := NewEd25519Instruction(nil)
	assert.True(t, errors.ErrInvalidInput.Is(err))

	_, err = NewEd25519Instruction([]Entry{{Identity: make([]byte, 32), Signature: make([]byte, 63), Message: make([]byte, 32)}})
	assert.True(t, errors.ErrInvalidInput.Is(err))

	_, err = NewInstruction(SchemeUnknown, weavetest.RandomAddress(), 0, []Entry{{}})
	assert.True(t, errors.ErrInvalidType.Is(err))
}
