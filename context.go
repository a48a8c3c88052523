package msig

import (
	"context"

	"github.com/iov-one/msig/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultLogger is used for all context that have not
// set anything themselves
var DefaultLogger = log.NewNopLogger()

// CurrentInstruction is the index value that refers to the instruction
// currently being executed.
const CurrentInstruction uint16 = 1<<16 - 1

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeyInstructions
	contextKeyIndex
)

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx context.Context) log.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}

// WithLogInfo accepts keyvalue pairs, and returns another
// context like this, after passing all the keyvals to the
// Logger
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	return WithLogger(ctx, GetLogger(ctx).With(keyvals...))
}

// WithInstructions attaches all instructions of the transaction being
// executed. Handlers can read their siblings using GetInstruction.
func WithInstructions(ctx context.Context, ins []*Instruction) context.Context {
	return context.WithValue(ctx, contextKeyInstructions, ins)
}

// WithInstructionIndex marks the position of the instruction being executed.
func WithInstructionIndex(ctx context.Context, index uint16) context.Context {
	return context.WithValue(ctx, contextKeyIndex, index)
}

// GetInstructionIndex returns the index of the instruction being executed.
func GetInstructionIndex(ctx context.Context) (uint16, bool) {
	i, ok := ctx.Value(contextKeyIndex).(uint16)
	return i, ok
}

// GetInstruction returns an instruction of the transaction being executed.
// CurrentInstruction refers to the one currently executed.
func GetInstruction(ctx context.Context, index uint16) (*Instruction, error) {
	all, _ := ctx.Value(contextKeyInstructions).([]*Instruction)
	if index == CurrentInstruction {
		cur, ok := GetInstructionIndex(ctx)
		if !ok {
			return nil, errors.Wrap(errors.ErrInvalidState, "no instruction is executed")
		}
		index = cur
	}
	if int(index) >= len(all) {
		return nil, errors.Wrapf(errors.ErrNotFound, "instruction %d", index)
	}
	return all[index], nil
}
