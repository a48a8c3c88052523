package multisig

import (
	"context"
	"encoding/json"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/gconf"
	"github.com/iov-one/msig/x/sigbatch"
)

const configurationPkg = "multisig"

// Configuration selects the signature facilities trusted by this
// extension. It is stored with gconf.
type Configuration struct {
	Metadata *msig.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Owner may update the configuration.
	Owner             msig.Address `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
	Ed25519Verifier   msig.Address `protobuf:"bytes,3,opt,name=ed25519_verifier,proto3" json:"ed25519_verifier,omitempty"`
	Secp256k1Verifier msig.Address `protobuf:"bytes,4,opt,name=secp256k1_verifier,proto3" json:"secp256k1_verifier,omitempty"`
	// RelaxedOffsets accepts records whose offsets do not describe the
	// fixed layout, as long as they address the parsed entries.
	RelaxedOffsets bool `protobuf:"varint,5,opt,name=relaxed_offsets,proto3" json:"relaxed_offsets,omitempty"`
	// VerifySignatures checks signatures of a record again when reading
	// it.
	VerifySignatures bool `protobuf:"varint,6,opt,name=verify_signatures,proto3" json:"verify_signatures,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

var _ gconf.OwnedConfig = (*Configuration)(nil)

// DefaultConfiguration trusts the facilities registered by the sigbatch
// package.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Metadata:          &msig.Metadata{Schema: 1},
		Ed25519Verifier:   sigbatch.Ed25519ProgramID,
		Secp256k1Verifier: sigbatch.Secp256k1ProgramID,
	}
}

func (m *Configuration) GetOwner() msig.Address {
	return m.Owner
}

func (m *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	}
	errs = errors.AppendField(errs, "Ed25519Verifier", m.Ed25519Verifier.Validate())
	errs = errors.AppendField(errs, "Secp256k1Verifier", m.Secp256k1Verifier.Validate())
	return errs
}

// Verifier returns the facility trusted for given scheme.
func (m *Configuration) Verifier(s sigbatch.Scheme) msig.Address {
	switch s {
	case sigbatch.Ed25519:
		return m.Ed25519Verifier
	case sigbatch.Secp256k1:
		return m.Secp256k1Verifier
	default:
		return nil
	}
}

// loadConfiguration returns the stored configuration or the default one if
// none was saved.
func loadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var c Configuration
	switch err := gconf.Load(db, configurationPkg, &c); {
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	case err != nil:
		return nil, err
	}
	return &c, nil
}

// OracleFactory returns the oracle used to read signatures of a
// configuration.
type OracleFactory func(ctx context.Context, db msig.ReadOnlyKVStore, c *Config) (SignatureOracle, error)

// ConfiguredOracle reads signature records from the transaction, trusting
// the facilities selected by the stored Configuration.
func ConfiguredOracle(ctx context.Context, db msig.ReadOnlyKVStore, c *Config) (SignatureOracle, error) {
	conf, err := loadConfiguration(db)
	if err != nil {
		return nil, errors.Wrap(err, "multisig configuration")
	}
	return sigbatch.InstructionOracle{
		Parser: sigbatch.Parser{
			Facility:       conf.Verifier(c.Scheme),
			Scheme:         c.Scheme,
			RelaxedOffsets: conf.RelaxedOffsets,
		},
		Verify: conf.VerifySignatures,
	}, nil
}

// decodeConfigurationPatch reads a JSON encoded configuration patch.
func decodeConfigurationPatch(data []byte) (gconf.OwnedConfig, error) {
	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "configuration patch: %s", err)
	}
	return &c, nil
}
