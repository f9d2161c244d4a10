package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pelada/internal/domain/model"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()

		Convey("When players are added", func() {
			for _, name := range []string{"Ana", "Bruno", "Caio"} {
				So(s.Put(ctx, model.Player{ID: name, Name: name, Present: true}), ShouldBeNil)
			}

			Convey("Then List keeps insertion order", func() {
				players, err := s.List(ctx)
				So(err, ShouldBeNil)
				So(names(players), ShouldResemble, []string{"Ana", "Bruno", "Caio"})

				n, err := s.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})

			Convey("Then updating a player keeps its position", func() {
				So(s.Put(ctx, model.Player{ID: "Ana", Name: "Ana", AmountPaid: 20}), ShouldBeNil)

				players, err := s.List(ctx)
				So(err, ShouldBeNil)
				So(names(players), ShouldResemble, []string{"Ana", "Bruno", "Caio"})
				So(players[0].AmountPaid, ShouldEqual, 20)
				So(players[0].Present, ShouldBeFalse)
			})

			Convey("Then Get returns the stored player", func() {
				p, err := s.Get(ctx, "Bruno")
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Bruno")
			})

			Convey("Then Delete removes it and a second Delete reports not found", func() {
				So(s.Delete(ctx, "Bruno"), ShouldBeNil)
				So(s.Delete(ctx, "Bruno"), ShouldEqual, ErrNotFound)

				_, err := s.Get(ctx, "Bruno")
				So(err, ShouldEqual, ErrNotFound)

				players, _ := s.List(ctx)
				So(names(players), ShouldResemble, []string{"Ana", "Caio"})
			})
		})

		Convey("When the store is empty", func() {
			players, err := s.List(ctx)

			Convey("Then List returns an empty slice", func() {
				So(err, ShouldBeNil)
				So(players, ShouldNotBeNil)
				So(players, ShouldBeEmpty)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then operations fail with the context error", func() {
				_, err := s.List(cctx)
				So(err, ShouldEqual, context.Canceled)
				So(s.Put(cctx, model.Player{ID: "x"}), ShouldEqual, context.Canceled)
			})
		})

		Convey("When players are written concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := fmt.Sprintf("p%02d", i)
					_ = s.Put(ctx, model.Player{ID: id, Name: id})
					_ = s.Put(ctx, model.Player{ID: id, Name: id, Present: true})
				}(i)
			}
			wg.Wait()

			Convey("Then every player is stored once", func() {
				n, err := s.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 50)
			})
		})

		Reset(func() { _ = s.Close() })
	})
}

func TestOpen(t *testing.T) {
	Convey("Given Open", t, func() {
		ctx := context.Background()

		Convey("Then memory selects the memory store", func() {
			s, err := Open(ctx, "memory", "")
			So(err, ShouldBeNil)
			_, ok := s.(*MemoryStore)
			So(ok, ShouldBeTrue)
		})

		Convey("Then sqlite selects the SQL store", func() {
			s, err := Open(ctx, "sqlite", ":memory:", WithMaxOpenConns(1))
			So(err, ShouldBeNil)
			defer s.Close()
			_, ok := s.(*SQLStore)
			So(ok, ShouldBeTrue)
		})

		Convey("Then an unknown driver fails", func() {
			_, err := Open(ctx, "mongo", "")
			So(err, ShouldWrap, ErrUnknownDriver)
		})
	})
}

func names(players []model.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.Name
	}
	return out
}
