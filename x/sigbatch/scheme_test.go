package sigbatch

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/msig/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScheme(t *testing.T) {
	Convey("supported schemes", t, func() {
		So(Ed25519.Validate(), ShouldBeNil)
		So(Secp256k1.Validate(), ShouldBeNil)
		So(Ed25519.IdentityLen(), ShouldEqual, 32)
		So(Secp256k1.IdentityLen(), ShouldEqual, 20)
		So(Ed25519.ProgramID(), ShouldResemble, Ed25519ProgramID)
		So(Secp256k1.ProgramID(), ShouldResemble, Secp256k1ProgramID)
		So(Ed25519ProgramID.Equals(Secp256k1ProgramID), ShouldBeFalse)

		Convey("are encoded by name", func() {
			raw, err := json.Marshal(Secp256k1)
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `"secp256k1"`)

			var s Scheme
			So(json.Unmarshal([]byte(`"ed25519"`), &s), ShouldBeNil)
			So(s, ShouldEqual, Ed25519)
		})
	})

	Convey("unknown schemes are refused", t, func() {
		So(errors.ErrInvalidType.Is(SchemeUnknown.Validate()), ShouldBeTrue)
		So(errors.ErrInvalidType.Is(Scheme(7).Validate()), ShouldBeTrue)
		So(SchemeUnknown.IdentityLen(), ShouldEqual, 0)
		So(SchemeUnknown.ProgramID(), ShouldBeNil)

		var s Scheme
		So(errors.ErrInvalidType.Is(json.Unmarshal([]byte(`"rsa"`), &s)), ShouldBeTrue)
		So(errors.ErrInvalidInput.Is(json.Unmarshal([]byte(`2`), &s)), ShouldBeTrue)

		Convey("and have no layout", func() {
			_, err := NewProgram(SchemeUnknown)
			So(errors.ErrInvalidType.Is(err), ShouldBeTrue)
		})
	})
}
