package sigbatch

import (
	"encoding/binary"
	"math"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

// MaxSignatures is the largest batch a record can describe. The count is
// stored in a single byte.
const MaxSignatures = math.MaxUint8

const (
	ed25519HeaderLen  = 2
	ed25519OffsetsLen = 14

	secp256k1HeaderLen  = 1
	secp256k1OffsetsLen = 11
)

// Offsets points at the signature, identity and message of one entry of a
// batch. Instruction indexes refer to the instruction holding the bytes.
type Offsets struct {
	SignatureOffset      uint16
	SignatureInstruction uint16
	IdentityOffset       uint16
	IdentityInstruction  uint16
	MessageOffset        uint16
	MessageSize          uint16
	MessageInstruction   uint16
}

// layout describes where each block of a record starts.
type layout struct {
	scheme     Scheme
	headerLen  int
	offsetsLen int

	// element length of each block, in the order they are stored
	blocks [3]int

	sigBlock int
	idBlock  int
	msgBlock int
}

var (
	ed25519Layout = layout{
		scheme:     Ed25519,
		headerLen:  ed25519HeaderLen,
		offsetsLen: ed25519OffsetsLen,
		blocks:     [3]int{ed25519SignatureLen, ed25519PublicKeyLen, messageLen},
		sigBlock:   0,
		idBlock:    1,
		msgBlock:   2,
	}
	secp256k1Layout = layout{
		scheme:     Secp256k1,
		headerLen:  secp256k1HeaderLen,
		offsetsLen: secp256k1OffsetsLen,
		blocks:     [3]int{secp256k1AddressLen, secp256k1SignatureLen, messageLen},
		sigBlock:   1,
		idBlock:    0,
		msgBlock:   2,
	}
)

func layoutFor(s Scheme) (layout, error) {
	switch s {
	case Ed25519:
		return ed25519Layout, nil
	case Secp256k1:
		return secp256k1Layout, nil
	default:
		return layout{}, s.Validate()
	}
}

// blockStarts holds the first byte of each block and the total length of
// a record with n entries.
type blockStarts struct {
	starts [3]int
	end    int
}

func (l layout) positions(n int) (blockStarts, error) {
	var b blockStarts
	pos, err := checkedMulAdd(l.headerLen, l.offsetsLen, n)
	if err != nil {
		return b, err
	}
	for i, size := range l.blocks {
		b.starts[i] = pos
		if pos, err = checkedMulAdd(pos, size, n); err != nil {
			return b, err
		}
	}
	b.end = pos
	return b, nil
}

// entry returns the expected offsets of the i-th entry.
func (l layout) entry(b blockStarts, i int, self uint16) Offsets {
	at := func(block int) uint16 {
		return uint16(b.starts[block] + i*l.blocks[block])
	}
	return Offsets{
		SignatureOffset:      at(l.sigBlock),
		SignatureInstruction: self,
		IdentityOffset:       at(l.idBlock),
		IdentityInstruction:  self,
		MessageOffset:        at(l.msgBlock),
		MessageSize:          messageLen,
		MessageInstruction:   self,
	}
}

// checkedMulAdd returns base + size*n, failing when the result does not fit
// an offset.
func checkedMulAdd(base, size, n int) (int, error) {
	if n < 0 || size < 0 || base < 0 {
		return 0, errors.Wrap(errors.ErrOverflow, "negative length")
	}
	if n != 0 && size > (math.MaxUint16-base)/n {
		return 0, errors.Wrap(errors.ErrOverflow, "record length")
	}
	return base + size*n, nil
}

// encode appends the wire form of offsets.
func (l layout) encode(dst []byte, o Offsets) []byte {
	le := binary.LittleEndian
	switch l.scheme {
	case Ed25519:
		var raw [ed25519OffsetsLen]byte
		le.PutUint16(raw[0:], o.SignatureOffset)
		le.PutUint16(raw[2:], o.SignatureInstruction)
		le.PutUint16(raw[4:], o.IdentityOffset)
		le.PutUint16(raw[6:], o.IdentityInstruction)
		le.PutUint16(raw[8:], o.MessageOffset)
		le.PutUint16(raw[10:], o.MessageSize)
		le.PutUint16(raw[12:], o.MessageInstruction)
		return append(dst, raw[:]...)
	default:
		var raw [secp256k1OffsetsLen]byte
		le.PutUint16(raw[0:], o.SignatureOffset)
		raw[2] = uint8(o.SignatureInstruction)
		le.PutUint16(raw[3:], o.IdentityOffset)
		raw[5] = uint8(o.IdentityInstruction)
		le.PutUint16(raw[6:], o.MessageOffset)
		le.PutUint16(raw[8:], o.MessageSize)
		raw[10] = uint8(o.MessageInstruction)
		return append(dst, raw[:]...)
	}
}

// decode reads the offsets of the i-th entry. data must hold the complete
// offsets table.
func (l layout) decode(data []byte, i int) Offsets {
	le := binary.LittleEndian
	raw := data[l.headerLen+i*l.offsetsLen:]
	switch l.scheme {
	case Ed25519:
		return Offsets{
			SignatureOffset:      le.Uint16(raw[0:]),
			SignatureInstruction: le.Uint16(raw[2:]),
			IdentityOffset:       le.Uint16(raw[4:]),
			IdentityInstruction:  le.Uint16(raw[6:]),
			MessageOffset:        le.Uint16(raw[8:]),
			MessageSize:          le.Uint16(raw[10:]),
			MessageInstruction:   le.Uint16(raw[12:]),
		}
	default:
		return Offsets{
			SignatureOffset:      le.Uint16(raw[0:]),
			SignatureInstruction: uint16(raw[2]),
			IdentityOffset:       le.Uint16(raw[3:]),
			IdentityInstruction:  uint16(raw[5]),
			MessageOffset:        le.Uint16(raw[6:]),
			MessageSize:          le.Uint16(raw[8:]),
			MessageInstruction:   uint16(raw[10]),
		}
	}
}

// selfIndex returns the value used by the layout to refer to the record's
// own instruction.
func (l layout) selfIndex(self uint16) (uint16, error) {
	if l.scheme == Ed25519 {
		return msig.CurrentInstruction, nil
	}
	if self > math.MaxUint8 {
		return 0, errors.Wrapf(errors.ErrOverflow, "instruction index %d", self)
	}
	return self, nil
}
