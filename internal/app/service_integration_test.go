package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/pelada/internal/adapters/repository"
	service "github.com/okian/pelada/internal/app"
	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/teams"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service backed by sqlite", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := repository.NewSQLStore(ctx, "sqlite", ":memory:", repository.WithMaxOpenConns(1))
		So(err, ShouldBeNil)

		svc := service.New(service.WithStore(store), service.WithDedupeSize(100))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a full week is played out", func() {
			var ids []string
			for i := 0; i < 14; i++ {
				p, _, err := svc.AddPlayer(ctx, fmt.Sprintf("P%02d", i), fmt.Sprintf("k%02d", i))
				So(err, ShouldBeNil)
				ids = append(ids, p.ID)
			}
			for _, id := range ids[:3] {
				_, err := svc.ToggleGoalkeeper(ctx, id)
				So(err, ShouldBeNil)
			}
			_, err := svc.TogglePresence(ctx, ids[13])
			So(err, ShouldBeNil)

			result, err := svc.BuildTeams(ctx, "week-1")

			Convey("Then the draw honours every roster rule", func() {
				So(err, ShouldBeNil)
				players, err := svc.Players(ctx)
				So(err, ShouldBeNil)
				assertDraw(players, result)
				So(len(result.TeamA), ShouldEqual, 5)
				So(len(result.TeamB), ShouldEqual, 5)
				So(len(result.Reserves), ShouldEqual, 3)
			})

			Convey("And the stats describe the roster", func() {
				stats := svc.GetStats()
				So(stats["players"], ShouldEqual, 14)
				So(stats["confirmed"], ShouldEqual, 13)
				So(stats["goalkeepers"], ShouldEqual, 3)
				So(stats["canBuildTeams"], ShouldEqual, true)
				So(stats["teamsCached"], ShouldEqual, true)
				So(stats["idempotencyKeys"], ShouldEqual, int64(14))
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a service with concurrent callers", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithMinConfirmed(0))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many goroutines retry the same add", func() {
			var wg sync.WaitGroup
			results := make([]model.Player, 20)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					p, _, err := svc.AddPlayer(ctx, "Same", "one-key")
					if err == nil {
						results[i] = p
					}
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one player exists", func() {
				players, err := svc.Players(ctx)
				So(err, ShouldBeNil)
				So(len(players), ShouldEqual, 1)
				for _, p := range results {
					So(p.ID, ShouldEqual, players[0].ID)
				}
			})
		})

		Convey("When draws race with roster changes", func() {
			for i := 0; i < 12; i++ {
				_, _, err := svc.AddPlayer(ctx, fmt.Sprintf("P%02d", i), "")
				So(err, ShouldBeNil)
			}

			var wg sync.WaitGroup
			var mu sync.Mutex
			var failures []string
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					for j := 0; j < 25; j++ {
						if _, err := svc.BuildTeams(ctx, ""); err != nil {
							mu.Lock()
							failures = append(failures, err.Error())
							mu.Unlock()
						}
					}
				}()
				go func(i int) {
					defer wg.Done()
					for j := 0; j < 25; j++ {
						if _, _, err := svc.AddPlayer(ctx, fmt.Sprintf("late-%d-%d", i, j), ""); err != nil {
							mu.Lock()
							failures = append(failures, err.Error())
							mu.Unlock()
						}
					}
				}(i)
			}
			wg.Wait()

			Convey("Then every call succeeds and any cached draw matches the final roster", func() {
				So(failures, ShouldBeEmpty)
				players, err := svc.Players(ctx)
				So(err, ShouldBeNil)
				So(len(players), ShouldEqual, 12+8*25)

				if current, ok := svc.CurrentTeams(ctx); ok {
					assertDraw(players, current)
				}
			})
		})
	})
}

// assertDraw checks conservation, size bound, goalkeeper cap and no duplication.
func assertDraw(players []model.Player, r teams.Result) {
	seen := map[string]int{}
	for _, group := range [][]model.Player{r.TeamA, r.TeamB, r.Reserves} {
		for _, p := range group {
			seen[p.ID]++
		}
	}

	present := 0
	for _, p := range players {
		if p.Present {
			present++
			So(seen[p.ID], ShouldEqual, 1)
		} else {
			So(seen[p.ID], ShouldEqual, 0)
		}
	}
	So(len(seen), ShouldEqual, present)

	for _, team := range [][]model.Player{r.TeamA, r.TeamB} {
		So(len(team), ShouldBeLessThanOrEqualTo, teams.SquadSize)
		keepers := 0
		for _, p := range team {
			if p.Goalkeeper {
				keepers++
			}
		}
		So(keepers, ShouldBeLessThanOrEqualTo, 1)
	}
}
