package multisig

import (
	"context"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/gconf"
	"github.com/iov-one/msig/x"
)

// RegisterRoutes will instantiate and register all handlers in this
// package. Authorized actions are passed to dispatch, usually the router
// itself.
func RegisterRoutes(r msig.Registry, auth x.Authenticator, dispatch msig.Handler) {
	bucket := NewConfigBucket()
	r.Handle(ProgramID, Handler{
		create:  CreateHandler{bucket: bucket},
		execute: NewExecuteHandler(bucket, ConfiguredOracle, dispatch),
	})
	r.Handle(ConfigurationProgramID, gconf.NewUpdateConfigurationHandler(
		configurationPkg, &Configuration{}, auth, decodeConfigurationPatch))
}

// Handler routes create and execute instructions, both addressed to
// ProgramID.
type Handler struct {
	create  CreateHandler
	execute ExecuteHandler
}

var _ msig.Handler = Handler{}

func (h Handler) Check(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	m, err := decodeMsg(ins.Data)
	if err != nil {
		return nil, err
	}
	switch m := m.(type) {
	case *CreateMsg:
		if _, err := h.create.validate(db, m); err != nil {
			return nil, err
		}
		return &msig.Result{}, nil
	case *ExecuteMsg:
		return h.execute.check(ctx, db, m)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "unsupported message %T", m)
	}
}

func (h Handler) Deliver(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	m, err := decodeMsg(ins.Data)
	if err != nil {
		return nil, err
	}
	switch m := m.(type) {
	case *CreateMsg:
		return h.create.deliver(db, m)
	case *ExecuteMsg:
		return h.execute.deliver(ctx, db, m)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "unsupported message %T", m)
	}
}

// CreateHandler stores new configurations.
type CreateHandler struct {
	bucket ConfigBucket
}

func (h CreateHandler) deliver(db msig.KVStore, m *CreateMsg) (*msig.Result, error) {
	c, err := h.validate(db, m)
	if err != nil {
		return nil, err
	}
	if err := h.bucket.Create(db, c); err != nil {
		return nil, errors.Wrap(err, "cannot store config")
	}
	return &msig.Result{Data: c.Address}, nil
}

// validate does all common pre-processing between Check and Deliver
func (h CreateHandler) validate(db msig.ReadOnlyKVStore, m *CreateMsg) (*Config, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	c, err := NewConfig(m.Seed, m.Owners, m.Threshold, m.Scheme)
	if err != nil {
		return nil, err
	}
	switch err := h.bucket.Has(db, c.Address); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "config %s", c.Address)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	return c, nil
}

// ExecuteHandler authorizes requests and dispatches their actions.
type ExecuteHandler struct {
	bucket   ConfigBucket
	oracles  OracleFactory
	dispatch msig.Handler
}

// NewExecuteHandler returns a handler reading signatures with the oracle
// built by oracles.
func NewExecuteHandler(bucket ConfigBucket, oracles OracleFactory, dispatch msig.Handler) ExecuteHandler {
	return ExecuteHandler{
		bucket:   bucket,
		oracles:  oracles,
		dispatch: dispatch,
	}
}

// check verifies the request, increments the nonce in the check store and
// simulates the action.
func (h ExecuteHandler) check(ctx context.Context, db msig.KVStore, m *ExecuteMsg) (*msig.Result, error) {
	c, action, err := h.authorize(ctx, db, m)
	if err != nil {
		return nil, err
	}
	res, err := h.dispatch.Check(withAuthority(ctx, c.Address), db, action)
	if err != nil {
		return nil, errors.Wrap(err, "action")
	}
	return res, nil
}

// deliver verifies the request, increments the nonce and executes the
// action as the delegated authority.
func (h ExecuteHandler) deliver(ctx context.Context, db msig.KVStore, m *ExecuteMsg) (*msig.Result, error) {
	c, action, err := h.authorize(ctx, db, m)
	if err != nil {
		return nil, err
	}
	ctx = msig.WithLogInfo(ctx, "multisig", c.Address.String(), "nonce", c.Nonce)
	res, err := h.dispatch.Deliver(withAuthority(ctx, c.Address), db, action)
	if err != nil {
		return nil, errors.Wrap(err, "action")
	}
	return res, nil
}

// authorize verifies the request and consumes its nonce. The action is
// built before the nonce changes.
func (h ExecuteHandler) authorize(ctx context.Context, db msig.KVStore, m *ExecuteMsg) (*Config, *msig.Instruction, error) {
	c, err := h.verify(ctx, db, m)
	if err != nil {
		return nil, nil, err
	}
	action := m.Action(c.Authority)
	if err := c.IncrementNonce(); err != nil {
		return nil, nil, err
	}
	if err := h.bucket.Save(db, c); err != nil {
		return nil, nil, errors.Wrap(err, "cannot store config")
	}
	return c, action, nil
}

func (h ExecuteHandler) verify(ctx context.Context, db msig.ReadOnlyKVStore, m *ExecuteMsg) (*Config, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	c, err := h.bucket.Get(db, m.Config)
	if err != nil {
		return nil, err
	}
	oracle, err := h.oracles(ctx, db, c)
	if err != nil {
		return nil, err
	}
	if err := Verify(ctx, c, m, oracle); err != nil {
		return nil, err
	}
	return c, nil
}
