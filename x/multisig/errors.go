package multisig

import (
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/x/sigbatch"
)

// multisig takes 1030-1039
var (
	ErrNonceTooOld          = errors.Register(1030, "given nonce is older than the existing nonce")
	ErrInvalidOwnersLen     = errors.Register(1031, "owners length must be non zero")
	ErrInvalidThreshold     = errors.Register(1032, "threshold must be greater than 0 and less than or equal to owner count")
	ErrDuplicateSigner      = errors.Register(1033, "duplicate signer")
	ErrThresholdNotMet      = errors.Register(1034, "signers below threshold")
	ErrInvalidSigner        = errors.Register(1035, "invalid signer")
	ErrInvalidMessageSigner = errors.Register(1036, "invalid message signer")
	ErrInvalidMessage       = errors.Register(1037, "invalid message")
)

// ErrInvalidVerifierInstruction is returned when the signature record
// cannot be used.
var ErrInvalidVerifierInstruction = sigbatch.ErrInvalidVerifierInstruction
