package sigbatch

import (
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

// Entry is a single signature to be included in a facility instruction.
type Entry struct {
	Identity  []byte
	Signature []byte
	Message   []byte
}

// NewInstruction encodes entries using the layout of the scheme. The
// offsets table points into the instruction itself, self being its
// position within the transaction.
func NewInstruction(scheme Scheme, facility msig.Address, self uint16, entries []Entry) (*msig.Instruction, error) {
	l, err := layoutFor(scheme)
	if err != nil {
		return nil, err
	}
	n := len(entries)
	if n == 0 || n > MaxSignatures {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "cannot encode %d signatures", n)
	}
	pos, err := l.positions(n)
	if err != nil {
		return nil, err
	}
	own, err := l.selfIndex(self)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, pos.end)
	data = append(data, byte(n))
	for len(data) < l.headerLen {
		data = append(data, 0)
	}
	for i := range entries {
		data = l.encode(data, l.entry(pos, i, own))
	}
	for block, size := range l.blocks {
		for i, e := range entries {
			field := l.field(e, block)
			if len(field) != size {
				return nil, errors.Wrapf(errors.ErrInvalidInput, "entry %d: want %d bytes, got %d", i, size, len(field))
			}
			data = append(data, field...)
		}
	}
	return &msig.Instruction{Target: facility, Data: data}, nil
}

// NewEd25519Instruction encodes entries for the default ed25519 facility.
func NewEd25519Instruction(entries []Entry) (*msig.Instruction, error) {
	return NewInstruction(Ed25519, Ed25519ProgramID, msig.CurrentInstruction, entries)
}

// NewSecp256k1Instruction encodes entries for the default secp256k1
// facility. The secp256k1 layout cannot refer to the current instruction
// so its position must be given.
func NewSecp256k1Instruction(self uint8, entries []Entry) (*msig.Instruction, error) {
	return NewInstruction(Secp256k1, Secp256k1ProgramID, uint16(self), entries)
}

func (l layout) field(e Entry, block int) []byte {
	switch block {
	case l.sigBlock:
		return e.Signature
	case l.idBlock:
		return e.Identity
	default:
		return e.Message
	}
}
