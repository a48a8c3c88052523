package orm

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msig/errors"
)

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	proto.Message
	Validate() error
}

// newModel returns an empty instance of the same type as given prototype.
func newModel(prototype Model) Model {
	t := reflect.TypeOf(prototype).Elem()
	return reflect.New(t).Interface().(Model)
}

func load(raw []byte, dest Model) error {
	if err := proto.Unmarshal(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}
