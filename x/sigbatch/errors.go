package sigbatch

import "github.com/iov-one/msig/errors"

var (
	// ErrInvalidVerifierInstruction is returned when a signature record
	// does not come from the expected facility or does not match the
	// layout.
	ErrInvalidVerifierInstruction = errors.Register(1040, "invalid verifier instruction")

	// ErrInvalidSignature is returned by a facility when a signature does
	// not verify.
	ErrInvalidSignature = errors.Register(1041, "invalid signature")
)
