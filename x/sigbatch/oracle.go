package sigbatch

import (
	"bytes"
	"context"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

// InstructionOracle reads signature records from sibling instructions of
// the transaction being executed.
type InstructionOracle struct {
	Parser Parser
	// Verify checks every signature again after parsing. Use it when the
	// runtime does not execute the facility instructions itself.
	Verify bool
}

// Signatures returns the n entries of the record at index.
func (o InstructionOracle) Signatures(ctx context.Context, index uint16, n int) ([]Record, error) {
	if index == msig.CurrentInstruction {
		return nil, errors.Wrap(ErrInvalidVerifierInstruction, "record must be a sibling instruction")
	}
	ins, err := msig.GetInstruction(ctx, index)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidVerifierInstruction, err.Error())
	}
	records, err := o.Parser.Parse(ins, index, n)
	if err != nil {
		return nil, err
	}
	if o.Parser.RelaxedOffsets {
		if err := matchOffsets(ctx, ins, records, o.Parser.Scheme); err != nil {
			return nil, err
		}
	}
	if o.Verify {
		for i, r := range records {
			if err := VerifySignature(o.Parser.Scheme, r.Identity, r.Message, r.Signature); err != nil {
				return nil, errors.Wrapf(err, "entry %d", i)
			}
		}
	}
	return records, nil
}

// matchOffsets resolves the offsets table of the record the way the facility
// does and fails unless every entry addresses the parsed bytes.
func matchOffsets(ctx context.Context, ins *msig.Instruction, records []Record, scheme Scheme) error {
	l, err := layoutFor(scheme)
	if err != nil {
		return errors.Wrap(ErrInvalidVerifierInstruction, err.Error())
	}
	for i, r := range records {
		o := l.decode(ins.Data, i)
		sig, err := fetch(ctx, ins.Data, o.SignatureInstruction, o.SignatureOffset, l.blocks[l.sigBlock])
		if err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
		id, err := fetch(ctx, ins.Data, o.IdentityInstruction, o.IdentityOffset, l.blocks[l.idBlock])
		if err != nil {
			return errors.Wrapf(err, "identity %d", i)
		}
		msg, err := fetch(ctx, ins.Data, o.MessageInstruction, o.MessageOffset, int(o.MessageSize))
		if err != nil {
			return errors.Wrapf(err, "message %d", i)
		}
		if !bytes.Equal(sig, r.Signature) || !bytes.Equal(id, r.Identity) || !bytes.Equal(msg, r.Message) {
			return errors.Wrapf(ErrInvalidVerifierInstruction, "offsets of signature %d address other bytes", i)
		}
	}
	return nil
}
