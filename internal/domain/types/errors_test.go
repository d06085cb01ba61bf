package types_test

import (
	"errors"
	"testing"

	"github.com/okian/applytrack/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorKinds(t *testing.T) {
	Convey("Given a wrapped error", t, func() {
		cause := errors.New("month out of range")
		err := types.WrapKind("dates.ParseISO", types.ErrInvalidArgument, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, types.ErrInvalidArgument), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, types.ErrNotFound), ShouldBeFalse)
			So(err.Error(), ShouldEqual, "dates.ParseISO: invalid argument: month out of range")
		})

		Convey("Then KindOf reports the kind", func() {
			So(types.KindOf(err), ShouldEqual, types.ErrInvalidArgument)
			So(types.KindOf(errors.New("plain")), ShouldBeNil)
		})

		Convey("Then errors.As recovers the operation", func() {
			var te *types.Error
			So(errors.As(err, &te), ShouldBeTrue)
			So(te.Op, ShouldEqual, "dates.ParseISO")
		})
	})

	Convey("Given the other constructors", t, func() {
		Convey("When wrapping nil", func() {
			So(types.Wrap("op", nil), ShouldBeNil)
		})

		Convey("When building a bare kind", func() {
			err := types.NewKind("store.GetTask", types.ErrNotFound)
			So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "store.GetTask: not found")
		})

		Convey("When wrapping without a kind", func() {
			err := types.Wrap("store.Open", errors.New("disk full"))
			So(types.KindOf(err), ShouldBeNil)
			So(err.Error(), ShouldEqual, "store.Open: disk full")
		})

		Convey("When formatting an invalid argument", func() {
			err := types.Invalid("calendar.Build", "unknown mode %q", "weekly")
			So(errors.Is(err, types.ErrInvalidArgument), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `unknown mode "weekly"`)
		})
	})
}
