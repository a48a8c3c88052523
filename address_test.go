package msig_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/iov-one/msig"
	"github.com/iov-one/msig/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionAddress(t *testing.T) {
	Convey("conditions derive short addresses", t, func() {
		cond := msig.NewCondition("multisig", "config", []byte("seed"))
		So(cond.Validate(), ShouldBeNil)

		addr := cond.Address()
		So(len(addr), ShouldEqual, msig.AddressLength)
		So(addr.Equals(msig.NewCondition("multisig", "config", []byte("seed")).Address()), ShouldBeTrue)
		So(addr.Equals(msig.NewCondition("multisig", "config", []byte("other")).Address()), ShouldBeFalse)

		Convey("and the sections can be parsed back", func() {
			ext, typ, data, err := cond.Parse()
			So(err, ShouldBeNil)
			So(ext, ShouldEqual, "multisig")
			So(typ, ShouldEqual, "config")
			So(string(data), ShouldEqual, "seed")
		})
	})

	Convey("malformed conditions are refused", t, func() {
		cond := msig.Condition("no sections here")
		So(errors.ErrInvalidInput.Is(cond.Validate()), ShouldBeTrue)
		So(cond.String(), ShouldStartWith, "Invalid Condition")
	})
}

func TestAddressValidate(t *testing.T) {
	cases := map[string]struct {
		addr    msig.Address
		wantErr *errors.Error
	}{
		"derived address": {
			addr: msig.NewAddress([]byte("foo")),
		},
		"public key": {
			addr: make(msig.Address, 32),
		},
		"empty": {
			addr:    nil,
			wantErr: errors.ErrEmpty,
		},
		"too long": {
			addr:    make(msig.Address, msig.MaxAddressLength+1),
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.addr.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestAddressBech32(t *testing.T) {
	addr := msig.NewAddress([]byte("bech32"))
	enc, err := addr.Bech32("msig")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "msig1"))

	got, err := msig.ParseAddress("bech32:" + enc)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestAddressUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr msig.Address
	}{
		"default decoding": {
			json:     `"6865782d61646472"`,
			wantAddr: msig.Address("hex-addr"),
		},
		"hex decoding": {
			json:     `"hex:6865782d61646472"`,
			wantAddr: msig.Address("hex-addr"),
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: msig.NewCondition("foo", "bar", []byte("conditiondata")).Address(),
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInvalidInput,
		},
		"invalid bech32": {
			json:    `"bech32:msig1xxxx"`,
			wantErr: errors.ErrInvalidInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrInvalidType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
		"zero cond address": {
			json:     `"cond:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a msig.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestConditionMarshalJSON(t *testing.T) {
	cases := map[string]struct {
		source   msig.Condition
		wantJson string
	}{
		"cond encoding": {
			source:   msig.NewCondition("foo", "bar", []byte("conditiondata")),
			wantJson: `"foo/bar/636F6E646974696F6E64617461"`,
		},
		"nil encoding": {
			source:   nil,
			wantJson: `""`,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := json.Marshal(tc.source)
			require.NoError(t, err)
			assert.Equal(t, tc.wantJson, string(got))

			var back msig.Condition
			require.NoError(t, json.Unmarshal(got, &back))
			assert.True(t, back.Equals(tc.source))
		})
	}
}
