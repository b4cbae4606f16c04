package calendar_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/eastkentcx/ekcx/internal/adapters/calendar"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestBuiltInSeason(t *testing.T) {
	convey.Convey("Given the built-in calendar", t, func() {
		cal, err := calendar.Load("")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the 2025 season should have five rounds in order", func() {
			convey.So(cal.Years(), convey.ShouldResemble, []int{2025})
			rounds := cal.Rounds(2025)
			convey.So(rounds, convey.ShouldHaveLength, 5)
			for i, ev := range rounds {
				convey.So(ev.Round, convey.ShouldEqual, i+1)
				convey.So(ev.Year, convey.ShouldEqual, 2025)
			}
		})

		convey.Convey("Then single events should be addressable", func() {
			ev, err := cal.Get(2025, 4)
			convey.So(err, convey.ShouldBeNil)
			convey.So(ev.Name, convey.ShouldEqual, "Round 4: Betteshanger")
			convey.So(ev.Location, convey.ShouldEqual, "Betteshanger Country Park, Deal")
			convey.So(ev.Completed(), convey.ShouldBeFalse)
		})

		convey.Convey("Then unknown events should be reported", func() {
			_, err := cal.Get(2025, 9)
			convey.So(errors.Is(err, calendar.ErrEventNotFound), convey.ShouldBeTrue)
			_, err = cal.Get(1999, 1)
			convey.So(errors.Is(err, calendar.ErrEventNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("Then saving should be refused", func() {
			convey.So(errors.Is(cal.Save(), calendar.ErrNoFile), convey.ShouldBeTrue)
		})
	})
}

func TestCompleteAndSave(t *testing.T) {
	convey.Convey("Given a calendar file", t, func() {
		path := filepath.Join(t.TempDir(), "events.yaml")
		convey.So(os.WriteFile(path, calendar.Default(), 0o644), convey.ShouldBeNil)
		cal, err := calendar.Load(path)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When an upcoming round is completed with photos", func() {
			already, err := cal.Complete(2025, 4, "https://photos.example/round-4")
			convey.So(err, convey.ShouldBeNil)
			convey.So(already, convey.ShouldBeFalse)
			convey.So(cal.Save(), convey.ShouldBeNil)

			convey.Convey("Then a fresh load should see the update", func() {
				reloaded, err := calendar.Load(path)
				convey.So(err, convey.ShouldBeNil)
				ev, err := reloaded.Get(2025, 4)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ev.Status, convey.ShouldEqual, model.StatusCompleted)
				convey.So(ev.PhotosURL, convey.ShouldEqual, "https://photos.example/round-4")

				other, _ := reloaded.Get(2025, 3)
				convey.So(other.Status, convey.ShouldEqual, model.StatusUpcoming)
			})

			convey.Convey("And it is completed again without photos", func() {
				already, err := cal.Complete(2025, 4, "")
				ev, _ := cal.Get(2025, 4)

				convey.Convey("Then the photos link should be kept", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(already, convey.ShouldBeTrue)
					convey.So(ev.PhotosURL, convey.ShouldEqual, "https://photos.example/round-4")
				})
			})
		})

		convey.Convey("When an unknown round is completed", func() {
			_, err := cal.Complete(2025, 12, "")
			convey.So(errors.Is(err, calendar.ErrEventNotFound), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a malformed calendar file", t, func() {
		path := filepath.Join(t.TempDir(), "events.yaml")
		convey.So(os.WriteFile(path, []byte("2025: [not, a, map"), 0o644), convey.ShouldBeNil)
		_, err := calendar.Load(path)
		convey.So(errors.Is(err, calendar.ErrParse), convey.ShouldBeTrue)
	})
}
