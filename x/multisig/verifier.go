package multisig

import (
	"bytes"
	"context"

	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/x/sigbatch"
)

// SignatureOracle tells who signed what. The multisig never verifies
// signatures itself.
type SignatureOracle interface {
	// Signatures returns the n entries of the signature record at given
	// position of the transaction.
	Signatures(ctx context.Context, index uint16, n int) ([]sigbatch.Record, error)
}

// Verify returns nil if the request is authorized by the configuration.
// Checks are done in a fixed order and the first failure is returned.
// Neither the configuration nor the request is modified.
func Verify(ctx context.Context, c *Config, m *ExecuteMsg, oracle SignatureOracle) error {
	for i, s := range m.Signers {
		for _, prev := range m.Signers[:i] {
			if prev.Equals(s) {
				return errors.Wrapf(ErrDuplicateSigner, "signer %s", s)
			}
		}
	}
	if len(m.Signers) < int(c.Threshold) {
		return errors.Wrapf(ErrThresholdNotMet, "%d signers, threshold %d", len(m.Signers), c.Threshold)
	}
	if m.Nonce != c.Nonce {
		return errors.Wrapf(ErrNonceTooOld, "got %d, want %d", m.Nonce, c.Nonce)
	}
	for _, s := range m.Signers {
		if !c.IsOwner(s) {
			return errors.Wrapf(ErrInvalidSigner, "%s is not an owner", s)
		}
	}

	records, err := oracle.Signatures(ctx, uint16(m.VerifierIndex), len(m.Signers))
	if err != nil {
		return err
	}
	if len(records) != len(m.Signers) {
		return errors.Wrapf(ErrInvalidVerifierInstruction, "%d records for %d signers", len(records), len(m.Signers))
	}
	for i, r := range records {
		if !r.Identity.Equals(m.Signers[i]) {
			return errors.Wrapf(ErrInvalidMessageSigner, "record %d signed by %s", i, r.Identity)
		}
	}
	digest := m.Digest(c)
	for i, r := range records {
		if !bytes.Equal(r.Message, digest) {
			return errors.Wrapf(ErrInvalidMessage, "record %d", i)
		}
	}
	return nil
}
