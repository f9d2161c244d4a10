package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/pelada/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When recording a new key", func() {
			d := dedupe.NewInMemoryDeduper()
			value, seen := d.SeenAndRecord(ctx, "key-1", "player-1")

			Convey("Then it should store the value", func() {
				So(seen, ShouldBeFalse)
				So(value, ShouldEqual, "player-1")
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a retry should return the first value", func() {
				value, seen := d.SeenAndRecord(ctx, "key-1", "player-2")
				So(seen, ShouldBeTrue)
				So(value, ShouldEqual, "player-1")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When unrecording a key", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "key-1", "player-1")
			d.Unrecord(ctx, "key-1")

			Convey("Then the key can be recorded again with a new value", func() {
				So(d.Size(), ShouldEqual, 0)
				value, seen := d.SeenAndRecord(ctx, "key-1", "player-9")
				So(seen, ShouldBeFalse)
				So(value, ShouldEqual, "player-9")
			})

			Convey("And unrecording an unknown key is a no-op", func() {
				d.Unrecord(ctx, "missing")
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 1; i <= 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i), fmt.Sprintf("v%d", i))
			}

			Convey("Then the oldest key should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				_, seen := d.SeenAndRecord(ctx, "key-4", "x")
				So(seen, ShouldBeTrue)
				_, seen = d.SeenAndRecord(ctx, "key-1", "x")
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i), "v")
			}

			Convey("Then every key should be kept", func() {
				So(d.Size(), ShouldEqual, 1000)
				_, seen := d.SeenAndRecord(ctx, "key-0", "v")
				So(seen, ShouldBeTrue)
			})
		})

		Convey("When many goroutines race on the same key", func() {
			d := dedupe.NewInMemoryDeduper()
			var wg sync.WaitGroup
			var mu sync.Mutex
			winners := 0
			values := map[string]bool{}
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					v, seen := d.SeenAndRecord(ctx, "shared", fmt.Sprintf("v%d", i))
					mu.Lock()
					defer mu.Unlock()
					if !seen {
						winners++
					}
					values[v] = true
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one caller should record it", func() {
				So(winners, ShouldEqual, 1)
				So(len(values), ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
