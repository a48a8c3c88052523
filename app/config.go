package app

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/store/badger"
	"github.com/iov-one/msig/store/iavl"
	"github.com/tendermint/tendermint/libs/log"
)

// Supported store backends.
const (
	StoreMemory = "memory"
	StoreIAVL   = "iavl"
	StoreBadger = "badger"
)

// Config is the process configuration of the runtime, read from the
// environment.
type Config struct {
	Store    string `env:"MSIG_STORE" envDefault:"memory"`
	DataDir  string `env:"MSIG_DATA_DIR" envDefault:"data"`
	LogLevel string `env:"MSIG_LOG_LEVEL" envDefault:"info"`
	Genesis  string `env:"MSIG_GENESIS"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return c, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return c, c.Validate()
}

// Validate checks that the configuration can be used to open a runtime.
func (c Config) Validate() error {
	var errs error
	switch c.Store {
	case StoreMemory:
	case StoreIAVL, StoreBadger:
		if c.DataDir == "" {
			errs = errors.AppendField(errs, "DataDir", errors.ErrEmpty)
		}
	default:
		errs = errors.AppendField(errs, "Store", errors.Wrapf(errors.ErrInvalidInput, "unknown store %q", c.Store))
	}
	if _, err := log.AllowLevel(c.LogLevel); err != nil {
		errs = errors.AppendField(errs, "LogLevel", errors.Wrap(errors.ErrInvalidInput, err.Error()))
	}
	return errs
}

// Logger returns a logger writing to stdout, filtered by the configured
// level.
func (c Config) Logger() (log.Logger, error) {
	allow, err := log.AllowLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stdout)), allow), nil
}

// OpenStore opens the configured store backend. The returned function
// releases the store resources.
func (c Config) OpenStore(logger log.Logger) (msig.CommitKVStore, func() error, error) {
	switch c.Store {
	case StoreMemory:
		db := iavl.NewMemCommitStore()
		return db, closeIAVL(db), nil
	case StoreIAVL:
		if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
			return nil, nil, errors.Wrapf(errors.ErrDatabase, "data dir: %s", err)
		}
		db := iavl.NewCommitStore(filepath.Join(c.DataDir, "iavl"), "msig")
		return db, closeIAVL(db), nil
	case StoreBadger:
		db, err := badger.Open(filepath.Join(c.DataDir, "badger"), logger)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		return nil, nil, errors.Wrapf(errors.ErrInvalidInput, "unknown store %q", c.Store)
	}
}

func closeIAVL(db *iavl.CommitStore) func() error {
	return func() error {
		db.Close()
		return nil
	}
}
