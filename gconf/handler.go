package gconf

import (
	"context"
	"reflect"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/x"
)

// OwnedConfig must have an Owner field in protobuf. A configuration update
// instruction must be signed by an owner in order to be authorized to apply
// the change.
type OwnedConfig interface {
	Configuration
	GetOwner() msig.Address
}

// PatchDecoder extracts the configuration patch from the instruction data.
type PatchDecoder func(data []byte) (OwnedConfig, error)

type UpdateConfigurationHandler struct {
	pkg string
	// We require this type to load the data.
	config OwnedConfig
	auth   x.Authenticator
	decode PatchDecoder
}

var _ msig.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns a handler that process configuration
// patch instructions.
//
// To pass authentication step, each instruction must be signed by the current
// configuration owner. The configuration must be created via genesis first.
// Zero value fields of the patch do not modify the configuration.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator, decode PatchDecoder) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:    pkg,
		config: config,
		auth:   auth,
		decode: decode,
	}
}

func (h UpdateConfigurationHandler) Check(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	if err := h.apply(ctx, db, ins); err != nil {
		return nil, err
	}
	return &msig.Result{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx context.Context, db msig.KVStore, ins *msig.Instruction) (*msig.Result, error) {
	if err := h.apply(ctx, db, ins); err != nil {
		return nil, err
	}
	return &msig.Result{Log: "configuration updated"}, nil
}

func (h UpdateConfigurationHandler) apply(ctx context.Context, db msig.KVStore, ins *msig.Instruction) error {
	if err := Load(db, h.pkg, h.config); err != nil {
		return errors.Wrap(err, "load current configuration")
	}

	// Configuration owner must sign the instruction in order to
	// authenticate the change.
	owner := h.config.GetOwner()
	if owner == nil {
		return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}
	if !h.auth.HasAddress(ctx, owner) {
		return errors.Wrap(errors.ErrUnauthorized, "owner did not sign instruction")
	}

	payload, err := h.decode(ins.Data)
	if err != nil {
		return errors.Wrap(err, "cannot decode configuration patch")
	}
	if err := patch(h.config, payload); err != nil {
		return errors.Wrap(err, "cannot patch config with message payload")
	}

	if err := Save(db, h.pkg, h.config); err != nil {
		return errors.Wrap(err, "cannot save updated config")
	}
	return nil
}

func patch(config OwnedConfig, payload OwnedConfig) error {
	pType := reflect.TypeOf(payload)
	cType := reflect.TypeOf(config)
	if pType != cType {
		return errors.Wrapf(errors.ErrInvalidMsg, "patch of type %s does not match configuration %s", pType, cType)
	}

	cval := reflect.ValueOf(config).Elem()
	pval := reflect.ValueOf(payload).Elem()

	for i := 0; i < cval.NumField(); i++ {
		got := pval.Field(i)

		// Zero values do not update the original configuration.
		if isZero(got) {
			continue
		}

		cval.Field(i).Set(got)
	}

	return nil
}

// isZero returns true if given value represents a zero value of a given type.
func isZero(val reflect.Value) bool {
	zero := reflect.Zero(val.Type()).Interface()
	return reflect.DeepEqual(val.Interface(), zero)
}
