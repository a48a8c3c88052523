package multisig

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/msig"
)

// TxHash returns the digest owners must sign to authorize an action.
//
// The digest is the keccak256 hash of the authority, the little endian
// nonce, every account reference (address, signer flag, writable flag), the
// target and finally the payload.
func TxHash(authority msig.Address, nonce uint64, accounts []*msig.AccountRef, payload []byte, target msig.Address) []byte {
	size := len(authority) + 8 + len(target) + len(payload)
	for _, a := range accounts {
		size += len(a.Address) + 2
	}
	buf := make([]byte, 0, size)
	buf = append(buf, authority...)

	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], nonce)
	buf = append(buf, n[:]...)

	for _, a := range accounts {
		buf = append(buf, a.Address...)
		buf = append(buf, flag(a.IsSigner), flag(a.IsWritable))
	}
	buf = append(buf, target...)
	buf = append(buf, payload...)
	return crypto.Keccak256(buf)
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
