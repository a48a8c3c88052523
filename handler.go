package msig

import (
	"context"
	"encoding/json"
)

// Handler is a core engine that can process instructions addressed to a
// single target. This could represent "create a multisig configuration" or
// "verify a batch of signatures".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of an instruction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx context.Context, store KVStore, ins *Instruction) (*Result, error)
}

// Deliverer is a subset of Handler to execute an instruction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx context.Context, store KVStore, ins *Instruction) (*Result, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or logging, to many Handlers
type Decorator interface {
	Check(ctx context.Context, store KVStore, ins *Instruction, next Checker) (*Result, error)
	Deliver(ctx context.Context, store KVStore, ins *Instruction, next Deliverer) (*Result, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(target Address, h Handler)
}

// Result is returned by a handler after processing an instruction.
type Result struct {
	// Log is a human readable message.
	Log string
	// Data is an opaque, handler specific response.
	Data []byte
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	return json.Unmarshal(msg, obj)
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}
