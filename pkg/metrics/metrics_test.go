package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the default namespace and subsystem are used", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "pelada")
				So(manager.subsystem, ShouldEqual, "roster")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("test"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.teamsBuilt.Inc()

			Convey("Then metric names carry the namespace, subsystem and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_test_teams_built_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "pelada")
				So(manager.subsystem, ShouldEqual, "roster")
				So(manager.histogramBuckets, ShouldResemble, latencyBucketsMs)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When a draw is recorded", func() {
			before := testutil.ToFloat64(globalManager.teamsBuilt)
			RecordTeamsBuilt(5, 4, 3, 0.2)

			Convey("Then the draw counter increases", func() {
				So(testutil.ToFloat64(globalManager.teamsBuilt), ShouldEqual, before+1)
			})
		})

		Convey("When a draw is refused", func() {
			before := testutil.ToFloat64(globalManager.teamsBuildRefused)
			RecordTeamsBuildRefused()

			Convey("Then the refusal counter increases", func() {
				So(testutil.ToFloat64(globalManager.teamsBuildRefused), ShouldEqual, before+1)
			})
		})

		Convey("When the roster gauges are updated", func() {
			UpdateRoster(14, 11, 3, 72.5)

			Convey("Then each gauge holds the latest value", func() {
				So(testutil.ToFloat64(globalManager.rosterPlayers), ShouldEqual, 14)
				So(testutil.ToFloat64(globalManager.rosterConfirmed), ShouldEqual, 11)
				So(testutil.ToFloat64(globalManager.rosterGoalkeepers), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.rosterCollected), ShouldEqual, 72.5)
			})
		})

		Convey("When roster mutations and replays are recorded", func() {
			add := globalManager.rosterMutations.WithLabelValues("add")
			before := testutil.ToFloat64(add)
			replays := testutil.ToFloat64(globalManager.idempotentReplays)
			RecordRosterMutation("add")
			RecordRosterMutation("add")
			RecordIdempotentReplay()

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(add), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.idempotentReplays), ShouldEqual, replays+1)
			})
		})

		Convey("When store metrics are recorded", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("put"))
			So(func() {
				RecordStoreLatency("list", 0.4)
				RecordStoreLatency("put", 1.2)
				RecordStoreError("put")
			}, ShouldNotPanic)

			Convey("Then store errors are counted per operation", func() {
				So(testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("put")), ShouldEqual, before+1)
			})
		})

		Convey("When HTTP and error metrics are recorded", func() {
			So(func() {
				RecordHTTPRequest("/players", "GET", "200")
				RecordHTTPRequestDuration("/players", "GET", "200", 3.0)
				RecordErrorByComponent("api", "not_found")
				RecordErrorByType("not_found", "warning")
				RecordErrorByEndpoint("/teams", "POST", "conflict")
				RecordErrorLatency("api", "conflict", 1.5)
			}, ShouldNotPanic)
		})

		Convey("When system metrics are recorded", func() {
			UpdateSystemMemoryUsage(1024)
			UpdateSystemGoroutineCount(12)
			So(func() { RecordSystemGCPauseTime(0.3) }, ShouldNotPanic)

			Convey("Then the gauges are set", func() {
				So(testutil.ToFloat64(globalManager.systemMemoryUsage), ShouldEqual, 1024)
				So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 12)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordTeamsBuilt(5, 5, 0, 0.1)
		families, err := GetRegistry().Gather()

		Convey("Then it exposes only pelada metrics", func() {
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "pelada_roster_"), ShouldBeTrue)
			}
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.teamsBuilt)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordTeamsBuilt(5, 5, j%3, 0.1)
					RecordRosterMutation("presence")
					RecordHTTPRequest("/teams", "POST", "200")
				}
			}()
		}
		wg.Wait()

		Convey("Then no update is lost", func() {
			So(testutil.ToFloat64(globalManager.teamsBuilt), ShouldEqual, before+1000)
		})
	})
}
