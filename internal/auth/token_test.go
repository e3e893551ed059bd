package auth_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rizeos/workforce/internal/auth"
)

func TestVerify(t *testing.T) {
	Convey("Given a shared signing secret", t, func() {
		secret := []byte("test-secret")
		claims := auth.Claims{Subject: "emp-1", OrgID: "org-1", Role: "ADMIN"}

		Convey("When verifying a freshly signed token", func() {
			token, err := auth.Sign(claims, secret, time.Hour)
			So(err, ShouldBeNil)

			got, err := auth.Verify(token, secret)

			Convey("Then the claims round-trip", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, claims)
			})
		})

		Convey("When the token is expired", func() {
			token, err := auth.Sign(claims, secret, -time.Minute)
			So(err, ShouldBeNil)

			_, err = auth.Verify(token, secret)

			Convey("Then verification fails", func() {
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When the token was signed with another secret", func() {
			token, err := auth.Sign(claims, []byte("wrong-secret"), time.Hour)
			So(err, ShouldBeNil)

			_, err = auth.Verify(token, secret)

			Convey("Then verification fails", func() {
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When the token is garbage", func() {
			_, err := auth.Verify("not.a.token", secret)

			Convey("Then verification fails", func() {
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When identity claims are missing", func() {
			token, err := auth.Sign(auth.Claims{Role: "ADMIN"}, secret, time.Hour)
			So(err, ShouldBeNil)

			_, err = auth.Verify(token, secret)

			Convey("Then verification fails", func() {
				So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
			})
		})
	})
}
