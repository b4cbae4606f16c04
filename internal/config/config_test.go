package config_test

import (
	"testing"
	"time"

	"github.com/eastkentcx/ekcx/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Site.Listen, convey.ShouldEqual, "unix:///run/ekcx/ekcx.sock")
			convey.So(cfg.Site.ResultsStore, convey.ShouldEqual, "json")
			convey.So(cfg.Edge.UpstreamSocket, convey.ShouldEqual, "/run/ekcx/ekcx.sock")
			convey.So(cfg.Edge.HTTPAddrs, convey.ShouldResemble, []string{":80"})
			convey.So(cfg.Edge.HTTPSAddrs, convey.ShouldResemble, []string{":443"})
			convey.So(cfg.Edge.Hostnames, convey.ShouldHaveLength, 2)
		})

		convey.Convey("Then every upstream timeout should be 75 seconds", func() {
			convey.So(cfg.Edge.ConnectTimeout, convey.ShouldEqual, 75*time.Second)
			convey.So(cfg.Edge.SendTimeout, convey.ShouldEqual, 75*time.Second)
			convey.So(cfg.Edge.ReadTimeout, convey.ShouldEqual, 75*time.Second)
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
