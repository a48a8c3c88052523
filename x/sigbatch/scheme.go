package sigbatch

import (
	"encoding/json"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
)

// Scheme is the signature scheme of a record and of the owners of a
// multisig configuration.
type Scheme int32

const (
	SchemeUnknown Scheme = 0
	// Ed25519 identities are 32 bytes public keys.
	Ed25519 Scheme = 1
	// Secp256k1 identities are 20 bytes ethereum addresses.
	Secp256k1 Scheme = 2
)

const (
	messageLen = 32

	ed25519SignatureLen = 64
	ed25519PublicKeyLen = 32

	secp256k1SignatureLen = 64 + 1 // signature and recovery id
	secp256k1AddressLen   = 20
)

var (
	// Ed25519ProgramID is the target of the ed25519 facility program.
	Ed25519ProgramID = msig.NewCondition("sigbatch", "program", []byte("ed25519")).Address()

	// Secp256k1ProgramID is the target of the secp256k1 facility program.
	Secp256k1ProgramID = msig.NewCondition("sigbatch", "program", []byte("secp256k1")).Address()
)

// IdentityLen returns the length of an identity recovered from a record.
func (s Scheme) IdentityLen() int {
	switch s {
	case Ed25519:
		return ed25519PublicKeyLen
	case Secp256k1:
		return secp256k1AddressLen
	default:
		return 0
	}
}

// ProgramID returns the default facility program target for this scheme.
func (s Scheme) ProgramID() msig.Address {
	switch s {
	case Ed25519:
		return Ed25519ProgramID
	case Secp256k1:
		return Secp256k1ProgramID
	default:
		return nil
	}
}

// Validate returns an error if the scheme is not supported.
func (s Scheme) Validate() error {
	switch s {
	case Ed25519, Secp256k1:
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidType, "unknown signature scheme %d", s)
	}
}

func (s Scheme) String() string {
	switch s {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	default:
		return "unknown"
	}
}

func (s Scheme) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the scheme name.
func (s *Scheme) UnmarshalJSON(raw []byte) error {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "scheme must be a string")
	}
	switch name {
	case "ed25519":
		*s = Ed25519
	case "secp256k1":
		*s = Secp256k1
	default:
		return errors.Wrapf(errors.ErrInvalidType, "unknown signature scheme %q", name)
	}
	return nil
}
