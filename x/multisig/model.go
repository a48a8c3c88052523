package multisig

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/orm"
	"github.com/iov-one/msig/x/sigbatch"
)

const (
	// SeedLength is the length of the seed a configuration address is
	// derived from.
	SeedLength = 16

	// MaxOwners is bound by the number of signatures a single facility
	// record can hold.
	MaxOwners = sigbatch.MaxSignatures
)

// Config is the persisted state of a multisig.
type Config struct {
	Metadata *msig.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Seed is chosen by the creator. The configuration address is derived
	// from it.
	Seed []byte `protobuf:"bytes,2,opt,name=seed,proto3" json:"seed,omitempty"`
	// Scheme of the owner identities.
	Scheme sigbatch.Scheme `protobuf:"varint,3,opt,name=scheme,proto3" json:"scheme"`
	Owners []msig.Address  `protobuf:"bytes,4,rep,name=owners,proto3" json:"owners"`
	// Threshold is the minimal number of owners required to authorize an
	// action.
	Threshold uint32 `protobuf:"varint,5,opt,name=threshold,proto3" json:"threshold"`
	// Nonce must be signed by owners and is incremented after each
	// execution.
	Nonce     uint64       `protobuf:"varint,6,opt,name=nonce,proto3" json:"nonce"`
	Address   msig.Address `protobuf:"bytes,7,opt,name=address,proto3" json:"address"`
	Authority msig.Address `protobuf:"bytes,8,opt,name=authority,proto3" json:"authority"`
}

func (m *Config) Reset()         { *m = Config{} }
func (m *Config) String() string { return proto.CompactTextString(m) }
func (*Config) ProtoMessage()    {}

var _ orm.Model = (*Config)(nil)

// NewConfig returns a configuration with a zero nonce. Addresses are
// derived from the seed.
func NewConfig(seed []byte, owners []msig.Address, threshold uint32, scheme sigbatch.Scheme) (*Config, error) {
	if err := validatePolicy(owners, threshold, scheme); err != nil {
		return nil, err
	}
	if len(seed) != SeedLength {
		return nil, errors.Field("Seed", errors.ErrInvalidInput, "must be %d bytes", SeedLength)
	}
	ows := make([]msig.Address, len(owners))
	for i, o := range owners {
		ows[i] = o.Clone()
	}
	addr := ConfigAddress(seed)
	return &Config{
		Metadata:  &msig.Metadata{Schema: 1},
		Seed:      append([]byte(nil), seed...),
		Scheme:    scheme,
		Owners:    ows,
		Threshold: threshold,
		Address:   addr,
		Authority: AuthorityCondition(addr).Address(),
	}, nil
}

// validatePolicy returns an error if owners and threshold do not describe
// a usable multisig.
func validatePolicy(owners []msig.Address, threshold uint32, scheme sigbatch.Scheme) error {
	switch n := len(owners); {
	case n == 0:
		return ErrInvalidOwnersLen
	case n > MaxOwners:
		return errors.Wrapf(ErrInvalidOwnersLen, "at most %d owners allowed", MaxOwners)
	}
	if threshold == 0 || int(threshold) > len(owners) {
		return ErrInvalidThreshold
	}
	if err := scheme.Validate(); err != nil {
		return errors.Field("Scheme", err, "")
	}
	for i, o := range owners {
		if len(o) != scheme.IdentityLen() {
			return errors.Wrapf(ErrInvalidSigner, "owner %d: want %d bytes %s identity", i, scheme.IdentityLen(), scheme)
		}
		for _, prev := range owners[:i] {
			if prev.Equals(o) {
				return errors.Wrapf(ErrDuplicateSigner, "owner %s", o)
			}
		}
	}
	return nil
}

func (m *Config) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validatePolicy(m.Owners, m.Threshold, m.Scheme); err != nil {
		return err
	}
	var errs error
	if len(m.Seed) != SeedLength {
		errs = errors.AppendField(errs, "Seed", errors.Wrapf(errors.ErrInvalidModel, "must be %d bytes", SeedLength))
	}
	if !m.Address.Equals(ConfigAddress(m.Seed)) {
		errs = errors.AppendField(errs, "Address", errors.Wrap(errors.ErrInvalidModel, "not derived from the seed"))
	}
	if !m.Authority.Equals(AuthorityCondition(m.Address).Address()) {
		errs = errors.AppendField(errs, "Authority", errors.Wrap(errors.ErrInvalidModel, "not derived from the address"))
	}
	return errs
}

// IsOwner returns true if given identity is one of the owners.
func (m *Config) IsOwner(id msig.Address) bool {
	for _, o := range m.Owners {
		if o.Equals(id) {
			return true
		}
	}
	return false
}

// IncrementNonce advances the nonce by one.
func (m *Config) IncrementNonce() error {
	if m.Nonce == math.MaxUint64 {
		return errors.Wrap(errors.ErrOverflow, "nonce")
	}
	m.Nonce++
	return nil
}

// ConfigAddress returns the address of a configuration created with given
// seed.
func ConfigAddress(seed []byte) msig.Address {
	return msig.NewCondition("multisig", "config", seed).Address()
}

// AuthorityCondition returns the condition of the delegated authority of
// the configuration with given address.
func AuthorityCondition(config msig.Address) msig.Condition {
	return msig.NewCondition("multisig", "authority", config)
}

// ConfigBucket stores configurations by their address and indexes them by
// owner.
type ConfigBucket struct {
	orm.ModelBucket
}

// NewConfigBucket returns a bucket storing configurations under the
// "msig:" prefix.
func NewConfigBucket() ConfigBucket {
	b := orm.NewModelBucket("msig", &Config{},
		orm.WithIndex("owner", ownerIndexer, false))
	return ConfigBucket{ModelBucket: b}
}

func ownerIndexer(m orm.Model) ([][]byte, error) {
	c, ok := m.(*Config)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", m)
	}
	keys := make([][]byte, len(c.Owners))
	for i, o := range c.Owners {
		keys[i] = o
	}
	return keys, nil
}

// Create stores a new configuration. ErrDuplicate is returned if a
// configuration with the same address exists.
func (b ConfigBucket) Create(db msig.KVStore, c *Config) error {
	switch err := b.Has(db, c.Address); {
	case err == nil:
		return errors.Wrapf(errors.ErrDuplicate, "config %s", c.Address)
	case !errors.ErrNotFound.Is(err):
		return err
	}
	return b.Save(db, c)
}

// Get returns the configuration stored under given address.
func (b ConfigBucket) Get(db msig.ReadOnlyKVStore, addr msig.Address) (*Config, error) {
	var c Config
	if err := b.One(db, addr, &c); err != nil {
		return nil, errors.Wrapf(err, "config %s", addr)
	}
	return &c, nil
}

// Save stores the configuration under its address.
func (b ConfigBucket) Save(db msig.KVStore, c *Config) error {
	return b.Put(db, c.Address, c)
}

// ByOwner returns all configurations given identity is an owner of.
func (b ConfigBucket) ByOwner(db msig.ReadOnlyKVStore, owner msig.Address) ([]*Config, error) {
	keys, err := b.ByIndex(db, "owner", owner)
	if err != nil {
		return nil, err
	}
	res := make([]*Config, 0, len(keys))
	for _, k := range keys {
		c, err := b.Get(db, k)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

// List returns all configurations ordered by address.
func (b ConfigBucket) List(db msig.ReadOnlyKVStore) ([]*Config, error) {
	var res []*Config
	err := b.Each(db, func(_ []byte, m orm.Model) error {
		res = append(res, m.(*Config))
		return nil
	})
	return res, err
}
