package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eastkentcx/ekcx/internal/adapters/http/api"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

type mockStats struct {
	summary model.Summary
	ok      bool
}

func (m *mockStats) Summary() (model.Summary, bool) { return m.summary, m.ok }

func TestOperationalRoutes(t *testing.T) {
	Convey("Given an API server", t, func() {
		ctx := context.Background()
		stats := &mockStats{}
		mux := http.NewServeMux()
		api.NewServer("site", stats).Register(ctx, mux)

		Convey("When GET /healthz is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it should report ok as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["status"], ShouldEqual, "ok")
				So(body["service"], ShouldEqual, "site")
			})
		})

		Convey("When GET /metrics is requested after some traffic", func() {
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the request counter should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "ekcx_http_requests_total")
				So(w.Body.String(), ShouldContainSubstring, `handler="healthz"`)
			})
		})

		Convey("When /stats is requested before any generation", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then it should be not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, "no_summary")
			})
		})

		Convey("When /stats is requested after a generation", func() {
			stats.summary = model.Summary{Year: 2025, Riders: 42, RidersByCategory: map[string]int{"mens": 42}}
			stats.ok = true
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then it should return the summary", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var got model.Summary
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Riders, ShouldEqual, 42)
				So(got.RidersByCategory["mens"], ShouldEqual, 42)
			})
		})

		Convey("When a non-GET method is used", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/healthz", strings.NewReader("{}")))

			Convey("Then it should be rejected", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})

	Convey("Given an API server without stats", t, func() {
		mux := http.NewServeMux()
		api.NewServer("edge", nil).Register(context.Background(), mux)

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})
}

func TestResponseWriter(t *testing.T) {
	Convey("Given a wrapped response writer", t, func() {
		rec := httptest.NewRecorder()
		rw := api.NewResponseWriter(rec)

		Convey("When only the body is written", func() {
			_, _ = rw.Write([]byte("hello"))

			Convey("Then the status should default to 200 and bytes be counted", func() {
				So(rw.Status(), ShouldEqual, http.StatusOK)
				So(rw.Bytes(), ShouldEqual, 5)
			})
		})

		Convey("When the header is written twice", func() {
			rw.WriteHeader(http.StatusBadGateway)
			rw.WriteHeader(http.StatusOK)

			Convey("Then the first status should win", func() {
				So(rw.Status(), ShouldEqual, http.StatusBadGateway)
			})
		})

		Convey("Then it should unwrap to the original writer", func() {
			So(rw.Unwrap(), ShouldEqual, rec)
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped with metrics", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}, "probe")

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		Convey("Then the status should pass through and be recorded", func() {
			So(w.Code, ShouldEqual, http.StatusNotFound)
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			found := false
			for _, f := range families {
				if f.GetName() != "ekcx_http_requests_total" {
					continue
				}
				for _, m := range f.GetMetric() {
					for _, l := range m.GetLabel() {
						if l.GetName() == "handler" && l.GetValue() == "probe" {
							found = true
						}
					}
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
