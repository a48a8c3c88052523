package errors

import (
	"fmt"
)

const (
	// SuccessCode is returned when the processing was successful and no
	// error is returned.
	SuccessCode = 0

	// All unclassified errors that do not provide a code are clubbed under
	// an internal error code and a generic message instead of detailed
	// error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Info returns the code and the log message that should be returned to the
// client. Any error that does not provide code information is categorized as
// an internal error with code 1 and, unless debug is set, its message is
// replaced with a generic one.
func Info(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessCode, ""
	}

	if code := errCode(err); code != internalCode {
		if debug {
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return internalCode, fmt.Sprintf("%+v", err)
	}
	return internalCode, internalLog
}

type coder interface {
	Code() uint32
}

// errCode returns the code of the root error. Panics are redacted and
// reported as internal errors.
func errCode(err error) uint32 {
	if ErrPanic.Is(err) {
		return internalCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		if u, ok := err.(unpacker); ok {
			// The first error of a group is its cause.
			if errs := u.Unpack(); len(errs) > 0 {
				err = errs[0]
				continue
			}
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}
