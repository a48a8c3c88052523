package app

import (
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/x"
	"github.com/iov-one/msig/x/multisig"
	"github.com/iov-one/msig/x/sigbatch"
	"github.com/iov-one/msig/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Stack builds the handler every instruction is sent to, together with the
// router application handlers can be registered on. The multisig programs
// dispatch authorized actions back into the same stack, so an action gets
// routed, authenticated and logged like a top level instruction. auths
// extend the authentication of signer accounts, multisig authorities are
// always recognized.
func Stack(auths ...x.Authenticator) (*Router, msig.Handler) {
	auth := x.ChainAuth(append([]x.Authenticator{multisig.Authenticate{}}, auths...)...)
	router := NewRouter(auth)
	stack := ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
	).WithHandler(router)

	sigbatch.RegisterRoutes(router)
	multisig.RegisterRoutes(router, auth, stack)
	return router, stack
}

// Initializer returns the genesis initializer of all extensions.
func Initializer() msig.Initializer {
	return ChainInitializers(&multisig.Initializer{})
}

// New returns a runtime serving the multisig and signature batch programs
// over the given store.
func New(store msig.CommitKVStore, logger log.Logger, auths ...x.Authenticator) (*Runtime, error) {
	_, stack := Stack(auths...)
	return NewRuntime(store, stack, Initializer(), logger)
}

// Open builds a runtime from the process configuration. A fresh store is
// initialized from the configured genesis file. The returned function
// releases the store.
func Open(c Config, auths ...x.Authenticator) (*Runtime, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, nil, err
	}
	db, closeStore, err := c.OpenStore(logger)
	if err != nil {
		return nil, nil, err
	}
	rt, err := New(db, logger.With("module", "msig"), auths...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	if rt.ChainID() == "" && c.Genesis != "" {
		gen, err := LoadGenesis(c.Genesis)
		if err == nil {
			err = rt.InitChain(gen)
		}
		if err != nil {
			closeStore()
			return nil, nil, err
		}
	}
	return rt, closeStore, nil
}
