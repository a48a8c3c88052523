package weavetest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/msig"
)

// ParseAddress takes an address in a human readable format and returns
// its binary representation. This function is a test helper that is using
// msig.ParseAddress function functionality.
func ParseAddress(t testing.TB, encodedAddress string) msig.Address {
	t.Helper()

	addr, err := msig.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// NewCondition returns a random condition owned by the test extension.
func NewCondition() msig.Condition {
	return msig.NewCondition("test", "random", randBytes(16))
}

// RandomAddress returns a random address of the standard length.
func RandomAddress() msig.Address {
	return msig.Address(randBytes(msig.AddressLength))
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
