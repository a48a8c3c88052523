package sigbatch

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"golang.org/x/crypto/ed25519"
)

// Program is the signature verification facility of a scheme. It reads
// the offsets table of its instruction and fails unless every signature
// verifies.
type Program struct {
	layout layout
}

var _ msig.Handler = Program{}

// NewProgram returns the facility for the scheme.
func NewProgram(scheme Scheme) (Program, error) {
	l, err := layoutFor(scheme)
	if err != nil {
		return Program{}, err
	}
	return Program{layout: l}, nil
}

// RegisterRoutes registers both facilities under their default targets.
func RegisterRoutes(r msig.Registry) {
	r.Handle(Ed25519ProgramID, Program{layout: ed25519Layout})
	r.Handle(Secp256k1ProgramID, Program{layout: secp256k1Layout})
}

func (p Program) Check(ctx context.Context, store msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	if err := p.verify(ctx, ins); err != nil {
		return nil, err
	}
	return &msig.Result{}, nil
}

func (p Program) Deliver(ctx context.Context, store msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	if err := p.verify(ctx, ins); err != nil {
		return nil, err
	}
	return &msig.Result{}, nil
}

func (p Program) verify(ctx context.Context, ins *msig.Instruction) error {
	if len(ins.Accounts) != 0 {
		return errors.Wrap(ErrInvalidVerifierInstruction, "facility instruction must not reference accounts")
	}
	l := p.layout
	data := ins.Data
	if len(data) < l.headerLen {
		return errors.Wrap(ErrInvalidVerifierInstruction, "missing header")
	}
	n := int(data[0])
	if n == 0 {
		return errors.Wrap(ErrInvalidVerifierInstruction, "empty batch")
	}
	if len(data) < l.headerLen+n*l.offsetsLen {
		return errors.Wrap(ErrInvalidVerifierInstruction, "offsets table too short")
	}

	for i := 0; i < n; i++ {
		o := l.decode(data, i)
		sig, err := fetch(ctx, data, o.SignatureInstruction, o.SignatureOffset, l.blocks[l.sigBlock])
		if err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
		id, err := fetch(ctx, data, o.IdentityInstruction, o.IdentityOffset, l.blocks[l.idBlock])
		if err != nil {
			return errors.Wrapf(err, "identity %d", i)
		}
		msg, err := fetch(ctx, data, o.MessageInstruction, o.MessageOffset, int(o.MessageSize))
		if err != nil {
			return errors.Wrapf(err, "message %d", i)
		}
		if err := VerifySignature(l.scheme, id, msg, sig); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
	}
	return nil
}

// fetch returns size bytes at offset of the referenced instruction.
func fetch(ctx context.Context, own []byte, index, offset uint16, size int) ([]byte, error) {
	src := own
	if index != msig.CurrentInstruction {
		ins, err := msig.GetInstruction(ctx, index)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidVerifierInstruction, err.Error())
		}
		src = ins.Data
	}
	end := int(offset) + size
	if end > len(src) {
		return nil, errors.Wrapf(ErrInvalidVerifierInstruction, "offset %d out of bounds", offset)
	}
	return src[offset:end], nil
}

// VerifySignature checks a single signature. Ed25519 identities are public
// keys. Secp256k1 identities are addresses recovered from the signature of
// the keccak256 hash of the message.
func VerifySignature(scheme Scheme, identity, message, signature []byte) error {
	switch scheme {
	case Ed25519:
		if len(identity) != ed25519.PublicKeySize {
			return errors.Wrap(ErrInvalidSignature, "invalid public key length")
		}
		if !ed25519.Verify(ed25519.PublicKey(identity), message, signature) {
			return errors.Wrap(ErrInvalidSignature, "ed25519")
		}
		return nil
	case Secp256k1:
		pub, err := crypto.SigToPub(crypto.Keccak256(message), signature)
		if err != nil {
			return errors.Wrap(ErrInvalidSignature, err.Error())
		}
		if addr := crypto.PubkeyToAddress(*pub); !bytes.Equal(addr.Bytes(), identity) {
			return errors.Wrap(ErrInvalidSignature, "recovered address does not match")
		}
		return nil
	default:
		return scheme.Validate()
	}
}
