package multisig

import (
	"encoding/hex"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/gconf"
	"github.com/iov-one/msig/x/sigbatch"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ msig.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial configurations from genesis and save them
// in the database. The extension configuration is read from the "conf"
// section if present.
func (*Initializer) FromGenesis(opts msig.Options, kv msig.KVStore) error {
	var configs []struct {
		Seed      string          `json:"seed"`
		Scheme    sigbatch.Scheme `json:"scheme"`
		Owners    []msig.Address  `json:"owners"`
		Threshold uint32          `json:"threshold"`
		Nonce     uint64          `json:"nonce"`
	}
	if err := opts.ReadOptions("multisig", &configs); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "multisig genesis: %s", err)
	}

	bucket := NewConfigBucket()
	for i, c := range configs {
		seed, err := hex.DecodeString(c.Seed)
		if err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "config #%d: seed must be hex encoded", i)
		}
		conf, err := NewConfig(seed, c.Owners, c.Threshold, c.Scheme)
		if err != nil {
			return errors.Wrapf(err, "config #%d", i)
		}
		conf.Nonce = c.Nonce
		if err := bucket.Create(kv, conf); err != nil {
			return errors.Wrapf(err, "cannot save #%d config", i)
		}
	}

	err := gconf.InitConfig(kv, opts, configurationPkg, &Configuration{})
	if err != nil && !errors.ErrNotFound.Is(err) {
		return err
	}
	return nil
}
