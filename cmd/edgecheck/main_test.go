package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eastkentcx/ekcx/internal/edgecheck"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseFlags(t *testing.T) {
	convey.Convey("Given command line flags", t, func() {
		convey.Convey("When none are passed", func() {
			cfg, err := parseFlags(nil)

			convey.Convey("Then defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, edgecheck.DefaultWorkers)
				convey.So(cfg.Timeout, convey.ShouldEqual, edgecheck.DefaultTimeout)
				convey.So(cfg.Paths, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When paths and options are passed", func() {
			cfg, err := parseFlags([]string{"--path", "/", "--path", "/rules", "-k", "--timeout", "2s", "-w", "8"})

			convey.Convey("Then they are collected", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Paths, convey.ShouldResemble, []string{"/", "/rules"})
				convey.So(cfg.Insecure, convey.ShouldBeTrue)
				convey.So(cfg.Timeout, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.Workers, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When a positional argument is passed", func() {
			_, err := parseFlags([]string{"extra"})

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestRunAgainstMisbehavingEdge(t *testing.T) {
	convey.Convey("Given listeners that neither redirect nor set headers", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		var out bytes.Buffer
		err := run(context.Background(), []string{"--http", srv.URL, "--https", srv.URL, "--path", "/"}, &out)

		convey.Convey("Then the run fails and prints a summary", func() {
			convey.So(errors.Is(err, edgecheck.ErrChecksFailed), convey.ShouldBeTrue)
			convey.So(out.String(), convey.ShouldContainSubstring, "FAIL")
		})
	})
}
