package multisig

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/gconf"
	"github.com/iov-one/msig/store"
	"github.com/iov-one/msig/weavetest"
	"github.com/iov-one/msig/weavetest/assert"
	"github.com/iov-one/msig/x/sigbatch"
)

func TestGenesis(t *testing.T) {
	eth1, eth2 := weavetest.NewSecp256k1Key(), weavetest.NewSecp256k1Key()
	ed := weavetest.NewEd25519Key()
	owner := weavetest.RandomAddress()

	genesis := `{
		"multisig": [
			{
				"seed": "` + hex.EncodeToString(seed(1)) + `",
				"scheme": "secp256k1",
				"owners": ["` + hex.EncodeToString(eth1.Identity()) + `", "` + hex.EncodeToString(eth2.Identity()) + `"],
				"threshold": 2,
				"nonce": 4
			},
			{
				"seed": "` + hex.EncodeToString(seed(2)) + `",
				"scheme": "ed25519",
				"owners": ["` + hex.EncodeToString(ed.Identity()) + `"],
				"threshold": 1
			}
		],
		"conf": {
			"multisig": {
				"metadata": {"schema": 1},
				"owner": "` + owner.String() + `",
				"ed25519_verifier": "` + sigbatch.Ed25519ProgramID.String() + `",
				"secp256k1_verifier": "` + sigbatch.Secp256k1ProgramID.String() + `",
				"relaxed_offsets": true
			}
		}
	}`

	var opts msig.Options
	if err := json.Unmarshal([]byte(genesis), &opts); err != nil {
		t.Fatalf("cannot unmarshal genesis: %s", err)
	}

	db := store.MemStore()
	var ini Initializer
	if err := ini.FromGenesis(opts, db); err != nil {
		t.Fatalf("cannot load genesis: %+v", err)
	}

	bucket := NewConfigBucket()
	c, err := bucket.Get(db, ConfigAddress(seed(1)))
	assert.Nil(t, err)
	assert.Equal(t, sigbatch.Secp256k1, c.Scheme)
	assert.Equal(t, uint32(2), c.Threshold)
	assert.Equal(t, uint64(4), c.Nonce)
	assert.Equal(t, identities(eth1, eth2), c.Owners)

	c, err = bucket.Get(db, ConfigAddress(seed(2)))
	assert.Nil(t, err)
	assert.Equal(t, sigbatch.Ed25519, c.Scheme)

	var conf Configuration
	assert.Nil(t, gconf.Load(db, "multisig", &conf))
	assert.Equal(t, owner, conf.Owner)
	assert.Equal(t, true, conf.RelaxedOffsets)
}

func TestGenesisErrors(t *testing.T) {
	ed := weavetest.NewEd25519Key()
	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
	}{
		"empty genesis": {
			genesis: `{}`,
		},
		"seed is not hex": {
			genesis: `{"multisig": [{"seed": "zz", "scheme": "ed25519", "owners": ["` + hex.EncodeToString(ed.Identity()) + `"], "threshold": 1}]}`,
			wantErr: errors.ErrInvalidInput,
		},
		"threshold above owners": {
			genesis: `{"multisig": [{"seed": "` + hex.EncodeToString(seed(1)) + `", "scheme": "ed25519", "owners": ["` + hex.EncodeToString(ed.Identity()) + `"], "threshold": 2}]}`,
			wantErr: ErrInvalidThreshold,
		},
		"unknown scheme": {
			genesis: `{"multisig": [{"seed": "` + hex.EncodeToString(seed(1)) + `", "scheme": "rsa", "owners": [], "threshold": 1}]}`,
			wantErr: errors.ErrInvalidInput,
		},
		"same seed twice": {
			genesis: `{"multisig": [
				{"seed": "` + hex.EncodeToString(seed(1)) + `", "scheme": "ed25519", "owners": ["` + hex.EncodeToString(ed.Identity()) + `"], "threshold": 1},
				{"seed": "` + hex.EncodeToString(seed(1)) + `", "scheme": "ed25519", "owners": ["` + hex.EncodeToString(ed.Identity()) + `"], "threshold": 1}
			]}`,
			wantErr: errors.ErrDuplicate,
		},
		"invalid configuration": {
			genesis: `{"conf": {"multisig": {"metadata": {"schema": 1}}}}`,
			wantErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts msig.Options
			if err := json.Unmarshal([]byte(tc.genesis), &opts); err != nil {
				t.Fatalf("cannot unmarshal genesis: %s", err)
			}
			var ini Initializer
			err := ini.FromGenesis(opts, store.MemStore())
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
