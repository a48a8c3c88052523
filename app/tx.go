package app

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

// MaxInstructions is the number of instructions a single transaction can
// carry. Instruction indexes must remain addressable by an uint16 that is
// distinct from msig.CurrentInstruction.
const MaxInstructions = int(msig.CurrentInstruction)

// Tx is an ordered list of instructions executed atomically.
type Tx struct {
	Instructions []*msig.Instruction `protobuf:"bytes,1,rep,name=instructions,proto3" json:"instructions,omitempty"`
}

func (m *Tx) Reset()         { *m = Tx{} }
func (m *Tx) String() string { return proto.CompactTextString(m) }
func (*Tx) ProtoMessage()    {}

// NewTx returns a transaction executing given instructions in order.
func NewTx(ins ...*msig.Instruction) *Tx {
	return &Tx{Instructions: ins}
}

// Validate checks the transaction shape and every instruction.
func (m *Tx) Validate() error {
	switch n := len(m.Instructions); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "no instructions")
	case n > MaxInstructions:
		return errors.Wrapf(errors.ErrInvalidInput, "too many instructions: %d", n)
	}
	var errs error
	for i, ins := range m.Instructions {
		if ins == nil {
			errs = errors.AppendField(errs, fmt.Sprintf("Instructions.%d", i), errors.ErrEmpty)
			continue
		}
		errs = errors.AppendField(errs, fmt.Sprintf("Instructions.%d", i), ins.Validate())
	}
	return errs
}

// Marshal serializes the transaction.
func (m *Tx) Marshal() ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return raw, nil
}

// DecodeTx deserializes and validates a transaction.
func DecodeTx(raw []byte) (*Tx, error) {
	var tx Tx
	if err := proto.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return &tx, nil
}
