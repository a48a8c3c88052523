package weavetest

import (
	"crypto/ecdsa"
	"crypto/rand"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/msig"
	"golang.org/x/crypto/ed25519"
)

// Key is a private key used in tests to produce signatures that are
// verified by a signature facility.
type Key interface {
	// Identity returns the identity a signature of this key is recovered
	// to.
	Identity() msig.Address
	// Sign returns a signature of given message in the format expected by
	// the facility of the key scheme.
	Sign(message []byte) ([]byte, error)
}

// Ed25519Key identifies by its 32 bytes public key.
type Ed25519Key struct {
	priv ed25519.PrivateKey
}

var _ Key = (*Ed25519Key)(nil)

// NewEd25519Key generates a random ed25519 key.
func NewEd25519Key() *Ed25519Key {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return &Ed25519Key{priv: priv}
}

func (k *Ed25519Key) Identity() msig.Address {
	return msig.Address(k.priv.Public().(ed25519.PublicKey))
}

// Sign returns a 64 bytes ed25519 signature.
func (k *Ed25519Key) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, message), nil
}

// Secp256k1Key identifies by its 20 bytes ethereum address.
type Secp256k1Key struct {
	priv *ecdsa.PrivateKey
}

var _ Key = (*Secp256k1Key)(nil)

// NewSecp256k1Key generates a random secp256k1 key.
func NewSecp256k1Key() *Secp256k1Key {
	priv, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &Secp256k1Key{priv: priv}
}

func (k *Secp256k1Key) Identity() msig.Address {
	return msig.Address(crypto.PubkeyToAddress(k.priv.PublicKey).Bytes())
}

// Sign returns a 65 bytes recoverable signature of the keccak digest of the
// message. The last byte is the recovery id.
func (k *Secp256k1Key) Sign(message []byte) ([]byte, error) {
	return crypto.Sign(crypto.Keccak256(message), k.priv)
}
