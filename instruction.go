package msig

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msig/errors"
)

// AccountRef describes a resource an instruction touches and how.
type AccountRef struct {
	Address    Address `protobuf:"bytes,1,opt,name=address,proto3" json:"address,omitempty"`
	IsSigner   bool    `protobuf:"varint,2,opt,name=is_signer,proto3" json:"is_signer,omitempty"`
	IsWritable bool    `protobuf:"varint,3,opt,name=is_writable,proto3" json:"is_writable,omitempty"`
}

func (m *AccountRef) Reset()         { *m = AccountRef{} }
func (m *AccountRef) String() string { return proto.CompactTextString(m) }
func (*AccountRef) ProtoMessage()    {}

// Instruction is a single action addressed to a target handler. The target
// interprets the data, the accounts list the resources it may read or
// modify.
type Instruction struct {
	Target   Address       `protobuf:"bytes,1,opt,name=target,proto3" json:"target,omitempty"`
	Accounts []*AccountRef `protobuf:"bytes,2,rep,name=accounts,proto3" json:"accounts,omitempty"`
	Data     []byte        `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *Instruction) Reset()         { *m = Instruction{} }
func (m *Instruction) String() string { return proto.CompactTextString(m) }
func (*Instruction) ProtoMessage()    {}

// Validate ensures the instruction is addressed and every account reference
// is valid.
func (m *Instruction) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Target", m.Target.Validate())
	for i, a := range m.Accounts {
		if a == nil {
			errs = errors.Append(errs, errors.Field(fieldIndex("Accounts", i), errors.ErrEmpty, "nil account"))
			continue
		}
		errs = errors.AppendField(errs, fieldIndex("Accounts", i)+".Address", a.Address.Validate())
	}
	return errs
}

// Clone returns a deep copy. Handlers that rewrite account flags must work on
// a copy so that the original transaction is never modified.
func (m *Instruction) Clone() *Instruction {
	cpy := &Instruction{
		Target: m.Target.Clone(),
		Data:   append([]byte(nil), m.Data...),
	}
	if m.Accounts != nil {
		cpy.Accounts = make([]*AccountRef, len(m.Accounts))
		for i, a := range m.Accounts {
			c := *a
			c.Address = a.Address.Clone()
			cpy.Accounts[i] = &c
		}
	}
	return cpy
}

// Signers returns addresses of all accounts that are flagged as signers.
func (m *Instruction) Signers() []Address {
	var res []Address
	for _, a := range m.Accounts {
		if a.IsSigner {
			res = append(res, a.Address)
		}
	}
	return res
}

func fieldIndex(name string, i int) string {
	return fmt.Sprintf("%s.%d", name, i)
}
