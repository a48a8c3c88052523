package sigbatch

import (
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

// Record is a single entry of a signature batch.
type Record struct {
	// Identity is the public key or the address that signed.
	Identity msig.Address
	// Message is the signed message.
	Message []byte
	// Signature is passed along for callers that verify themselves.
	Signature []byte
}

// Parser extracts the entries of a facility instruction.
type Parser struct {
	// Facility must be the target of every parsed instruction.
	Facility msig.Address
	Scheme   Scheme
	// RelaxedOffsets accepts offsets tables that do not describe the fixed
	// layout. By default every entry must point into the record itself, at
	// the position of its block.
	RelaxedOffsets bool
}

// NewParser returns a strict parser for the default facility of the scheme.
func NewParser(scheme Scheme) Parser {
	return Parser{
		Facility: scheme.ProgramID(),
		Scheme:   scheme,
	}
}

// Parse returns the n entries stored in the instruction. self is the
// position of the instruction within the transaction.
func (p Parser) Parse(ins *msig.Instruction, self uint16, n int) ([]Record, error) {
	if ins == nil {
		return nil, errors.Wrap(ErrInvalidVerifierInstruction, "missing instruction")
	}
	if !ins.Target.Equals(p.Facility) {
		return nil, errors.Wrapf(ErrInvalidVerifierInstruction, "unexpected source %s", ins.Target)
	}
	if len(ins.Accounts) != 0 {
		return nil, errors.Wrap(ErrInvalidVerifierInstruction, "facility instruction must not reference accounts")
	}
	if n < 1 || n > MaxSignatures {
		return nil, errors.Wrapf(ErrInvalidVerifierInstruction, "invalid signature count %d", n)
	}
	l, err := layoutFor(p.Scheme)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidVerifierInstruction, err.Error())
	}
	pos, err := l.positions(n)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidVerifierInstruction, "%d signatures: %s", n, err)
	}

	data := ins.Data
	if len(data) < pos.end {
		return nil, errors.Wrapf(ErrInvalidVerifierInstruction, "record too short: want %d bytes, got %d", pos.end, len(data))
	}
	if got := int(data[0]); got != n {
		return nil, errors.Wrapf(ErrInvalidVerifierInstruction, "record holds %d signatures, want %d", got, n)
	}
	if !p.RelaxedOffsets {
		if err := checkStrict(l, pos, data, self, n); err != nil {
			return nil, err
		}
	}

	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Identity:  element(data, l, pos, l.idBlock, i),
			Message:   element(data, l, pos, l.msgBlock, i),
			Signature: element(data, l, pos, l.sigBlock, i),
		}
	}
	return records, nil
}

// element returns a copy of the i-th element of a block.
func element(data []byte, l layout, pos blockStarts, block, i int) []byte {
	size := l.blocks[block]
	start := pos.starts[block] + i*size
	out := make([]byte, size)
	copy(out, data[start:start+size])
	return out
}

func checkStrict(l layout, pos blockStarts, data []byte, self uint16, n int) error {
	if len(data) != pos.end {
		return errors.Wrapf(ErrInvalidVerifierInstruction, "unexpected %d trailing bytes", len(data)-pos.end)
	}
	if l.headerLen == ed25519HeaderLen && data[1] != 0 {
		return errors.Wrap(ErrInvalidVerifierInstruction, "non zero padding")
	}
	own, err := l.selfIndex(self)
	if err != nil {
		return errors.Wrap(ErrInvalidVerifierInstruction, err.Error())
	}
	for i := 0; i < n; i++ {
		got := l.decode(data, i)
		if l.scheme == Ed25519 {
			got = got.replaceInstruction(self, msig.CurrentInstruction)
		}
		if got != l.entry(pos, i, own) {
			return errors.Wrapf(ErrInvalidVerifierInstruction, "offsets of signature %d do not match the record", i)
		}
	}
	return nil
}

// replaceInstruction rewrites every instruction index equal to from.
func (o Offsets) replaceInstruction(from, to uint16) Offsets {
	swap := func(v uint16) uint16 {
		if v == from {
			return to
		}
		return v
	}
	o.SignatureInstruction = swap(o.SignatureInstruction)
	o.IdentityInstruction = swap(o.IdentityInstruction)
	o.MessageInstruction = swap(o.MessageInstruction)
	return o
}
