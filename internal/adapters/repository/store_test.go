package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eastkentcx/ekcx/internal/adapters/repository"
	"github.com/eastkentcx/ekcx/internal/domain/model"
	"github.com/eastkentcx/ekcx/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func openStores(t *testing.T) map[string]repository.Store {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := repository.New(repository.BackendSQLite, filepath.Join(dir, "results.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	jsonStore, err := repository.New(repository.BackendJSON, filepath.Join(dir, "data", "results.json"))
	if err != nil {
		t.Fatalf("open json store: %v", err)
	}

	return map[string]repository.Store{"json": jsonStore, "sqlite": sqliteStore}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	sections := []model.Section{
		{Title: "Senior Open", HTML: "<table><tr><td>Zoë</td></tr></table>"},
		{Title: "Women", HTML: "<table></table>"},
	}

	for name, store := range openStores(t) {
		convey.Convey("Given an empty "+name+" store", t, func() {
			convey.Convey("When loading a round that was never saved", func() {
				got, err := store.Load(ctx, 2025, 1)

				convey.Convey("Then it should return an empty list", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(got, convey.ShouldNotBeNil)
					convey.So(got, convey.ShouldBeEmpty)
				})
			})

			convey.Convey("When saving and loading a round", func() {
				convey.So(store.Save(ctx, 2025, 2, sections), convey.ShouldBeNil)
				got, err := store.Load(ctx, 2025, 2)

				convey.Convey("Then the sections should round trip in order", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(got, convey.ShouldResemble, sections)
				})
			})

			convey.Convey("When a round is saved twice", func() {
				convey.So(store.Save(ctx, 2025, 3, sections), convey.ShouldBeNil)
				convey.So(store.Save(ctx, 2025, 3, sections[:1]), convey.ShouldBeNil)
				got, err := store.Load(ctx, 2025, 3)

				convey.Convey("Then the later save should replace the earlier one", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(got, convey.ShouldHaveLength, 1)
				})
			})

			convey.Convey("When listing rounds", func() {
				convey.So(store.Save(ctx, 2024, 10, sections), convey.ShouldBeNil)
				convey.So(store.Save(ctx, 2024, 9, sections), convey.ShouldBeNil)
				rounds, err := store.Rounds(ctx, 2024)

				convey.Convey("Then they should be numeric and ascending", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(rounds, convey.ShouldResemble, []int{9, 10})
				})
			})

			convey.Convey("When the key is invalid", func() {
				err := store.Save(ctx, 0, 1, sections)
				_, loadErr := store.Load(ctx, 2025, -1)

				convey.Convey("Then it should be rejected", func() {
					convey.So(errors.Is(err, repository.ErrInvalidKey), convey.ShouldBeTrue)
					convey.So(errors.Is(loadErr, repository.ErrInvalidKey), convey.ShouldBeTrue)
				})
			})
		})
	}
}

func TestJSONStoreFile(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a JSON store", t, func() {
		path := filepath.Join(t.TempDir(), "results.json")
		store := repository.NewJSONStore(path)

		convey.Convey("When sections with markup and non-ASCII text are saved", func() {
			err := store.Save(ctx, 2025, 1, []model.Section{{Title: "Zoë", HTML: "<table></table>"}})
			data, readErr := os.ReadFile(path)

			convey.Convey("Then the file should be indented and unescaped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(readErr, convey.ShouldBeNil)
				text := string(data)
				convey.So(text, convey.ShouldContainSubstring, `"2025": {`)
				convey.So(text, convey.ShouldContainSubstring, "Zoë")
				convey.So(text, convey.ShouldContainSubstring, "<table></table>")
				convey.So(strings.Contains(text, "\n  "), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file is corrupt", func() {
			convey.So(os.WriteFile(path, []byte("{not json"), 0o644), convey.ShouldBeNil)
			got, err := store.Load(ctx, 2025, 1)

			convey.Convey("Then it should be treated as empty", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldBeEmpty)
			})

			convey.Convey("And a save should overwrite it", func() {
				convey.So(store.Save(ctx, 2025, 1, []model.Section{{Title: "Women"}}), convey.ShouldBeNil)
				got, err := store.Load(ctx, 2025, 1)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldHaveLength, 1)
			})
		})
	})
}

func TestNewUnknownBackend(t *testing.T) {
	convey.Convey("Given an unknown backend name", t, func() {
		_, err := repository.New("redis", "x")
		convey.So(errors.Is(err, repository.ErrUnknownBackend), convey.ShouldBeTrue)
	})
}
