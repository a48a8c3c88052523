package utils

import (
	"context"
	"time"

	"github.com/iov-one/msig"
)

// Logging is a decorator to log instructions as they pass through
type Logging struct{}

var _ msig.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (r Logging) Check(ctx context.Context, store msig.KVStore, ins *msig.Instruction, next msig.Checker) (*msig.Result, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, ins)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, ins, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx context.Context, store msig.KVStore, ins *msig.Instruction, next msig.Deliverer) (*msig.Result, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, ins)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, ins, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx context.Context, start time.Time, ins *msig.Instruction, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := msig.GetLogger(ctx).With(
		"duration", delta/time.Microsecond,
		"target", ins.Target.String(),
	)

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.

	if err != nil {
		logger.With("err", err).Error(msg)
	} else if lowPrio {
		logger.Debug(msg)
	} else {
		logger.Info(msg)
	}
}
