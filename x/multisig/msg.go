package multisig

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	"github.com/iov-one/msig/x/sigbatch"
)

var (
	// ProgramID is the target of create and execute instructions.
	ProgramID = msig.NewCondition("multisig", "program", []byte("v1")).Address()

	// ConfigurationProgramID is the target of configuration update
	// instructions.
	ConfigurationProgramID = msig.NewCondition("multisig", "program", []byte("conf")).Address()
)

// Instruction data starts with one of these tags followed by the protobuf
// encoded message.
const (
	tagCreateMsg  byte = 1
	tagExecuteMsg byte = 2
)

// CreateMsg creates a new configuration.
type CreateMsg struct {
	Metadata  *msig.Metadata  `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Seed      []byte          `protobuf:"bytes,2,opt,name=seed,proto3" json:"seed,omitempty"`
	Scheme    sigbatch.Scheme `protobuf:"varint,3,opt,name=scheme,proto3" json:"scheme"`
	Owners    []msig.Address  `protobuf:"bytes,4,rep,name=owners,proto3" json:"owners"`
	Threshold uint32          `protobuf:"varint,5,opt,name=threshold,proto3" json:"threshold"`
}

func (m *CreateMsg) Reset()         { *m = CreateMsg{} }
func (m *CreateMsg) String() string { return proto.CompactTextString(m) }
func (*CreateMsg) ProtoMessage()    {}

// Validate checks the message shape. Owners and threshold are validated
// when the configuration is built.
func (m *CreateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Seed) != SeedLength {
		errs = errors.AppendField(errs, "Seed", errors.Wrapf(errors.ErrInvalidInput, "must be %d bytes", SeedLength))
	}
	errs = errors.AppendField(errs, "Scheme", m.Scheme.Validate())
	return errs
}

// ExecuteMsg requests an action to be executed by the delegated authority
// of a configuration.
type ExecuteMsg struct {
	Metadata *msig.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Config is the address of the configuration.
	Config msig.Address `protobuf:"bytes,2,opt,name=config,proto3" json:"config"`
	// Nonce must be equal to the configuration nonce.
	Nonce uint64 `protobuf:"varint,3,opt,name=nonce,proto3" json:"nonce"`
	// Signers are the owners that signed, in the order of the entries of
	// the signature record.
	Signers []msig.Address `protobuf:"bytes,4,rep,name=signers,proto3" json:"signers"`
	// VerifierIndex is the position of the signature record within the
	// transaction.
	VerifierIndex uint32 `protobuf:"varint,5,opt,name=verifier_index,proto3" json:"verifier_index"`
	// Target, Accounts and Payload describe the action.
	Target   msig.Address       `protobuf:"bytes,6,opt,name=target,proto3" json:"target"`
	Accounts []*msig.AccountRef `protobuf:"bytes,7,rep,name=accounts,proto3" json:"accounts,omitempty"`
	Payload  []byte             `protobuf:"bytes,8,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *ExecuteMsg) Reset()         { *m = ExecuteMsg{} }
func (m *ExecuteMsg) String() string { return proto.CompactTextString(m) }
func (*ExecuteMsg) ProtoMessage()    {}

// Validate checks the message shape. Signers are validated against the
// configuration.
func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Config", m.Config.Validate())
	if m.VerifierIndex >= math.MaxUint16 {
		errs = errors.AppendField(errs, "VerifierIndex", errors.Wrapf(errors.ErrInvalidInput, "must be lower than %d", math.MaxUint16))
	}
	action := &msig.Instruction{Target: m.Target, Accounts: m.Accounts, Data: m.Payload}
	errs = errors.Append(errs, action.Validate())
	return errs
}

// Action returns the instruction to execute. Account references to the
// authority are marked as signers.
func (m *ExecuteMsg) Action(authority msig.Address) *msig.Instruction {
	ins := (&msig.Instruction{Target: m.Target, Accounts: m.Accounts, Data: m.Payload}).Clone()
	for _, a := range ins.Accounts {
		if a.Address.Equals(authority) {
			a.IsSigner = true
		}
	}
	return ins
}

// Digest returns the message owners must sign for this request.
func (m *ExecuteMsg) Digest(c *Config) []byte {
	return TxHash(c.Authority, c.Nonce, m.Accounts, m.Payload, m.Target)
}

// NewCreateInstruction returns an instruction creating a configuration.
func NewCreateInstruction(m *CreateMsg) (*msig.Instruction, error) {
	data, err := encode(tagCreateMsg, m)
	if err != nil {
		return nil, err
	}
	return &msig.Instruction{
		Target: ProgramID,
		Accounts: []*msig.AccountRef{
			{Address: ConfigAddress(m.Seed), IsWritable: true},
		},
		Data: data,
	}, nil
}

// NewExecuteInstruction returns an instruction executing an action.
func NewExecuteInstruction(m *ExecuteMsg) (*msig.Instruction, error) {
	data, err := encode(tagExecuteMsg, m)
	if err != nil {
		return nil, err
	}
	return &msig.Instruction{
		Target: ProgramID,
		Accounts: []*msig.AccountRef{
			{Address: m.Config, IsWritable: true},
		},
		Data: data,
	}, nil
}

func encode(tag byte, m proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "marshal: %s", err)
	}
	return append([]byte{tag}, raw...), nil
}

// decodeMsg returns the message encoded in the instruction data. The
// result is either *CreateMsg or *ExecuteMsg.
func decodeMsg(data []byte) (proto.Message, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidMsg, "empty instruction data")
	}
	var m proto.Message
	switch data[0] {
	case tagCreateMsg:
		m = &CreateMsg{}
	case tagExecuteMsg:
		m = &ExecuteMsg{}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "unknown message tag %d", data[0])
	}
	if err := proto.Unmarshal(data[1:], m); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "unmarshal: %s", err)
	}
	return m, nil
}
