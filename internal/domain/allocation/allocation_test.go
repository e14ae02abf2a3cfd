package allocation_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tellsight/internal/domain/allocation"
	"github.com/okian/tellsight/internal/domain/model"
)

func TestAllocator_Allocate(t *testing.T) {
	Convey("Given the default 97/3 allocator", t, func() {
		alloc := allocation.New()

		Convey("When no worker has a positive score", func() {
			records := []model.ScoreRecord{
				{UID: 1, Composite: 0},
				{UID: 2, Composite: 0},
			}
			weights := alloc.Allocate(records)

			Convey("Then the reserved identity takes everything", func() {
				So(weights[model.ReservedUID], ShouldEqual, 1.0)
				So(len(weights), ShouldEqual, 1)
				So(weights.Sum(), ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When there are no records at all", func() {
			weights := alloc.Allocate(nil)

			Convey("Then the reserved identity still takes everything", func() {
				So(weights[model.ReservedUID], ShouldEqual, 1.0)
				So(weights.Sum(), ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When exactly one worker has a positive score", func() {
			records := []model.ScoreRecord{
				{UID: 7, Composite: 0.42},
				{UID: 9, Composite: 0},
			}
			weights := alloc.Allocate(records)

			Convey("Then the split is 97% reserved, 3% winner, 0% others", func() {
				So(weights[model.ReservedUID], ShouldAlmostEqual, 0.97, 1e-12)
				So(weights[7], ShouldAlmostEqual, 0.03, 1e-12)
				So(weights[9], ShouldEqual, 0.0)
				So(weights.Sum(), ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When two workers tie on the highest composite", func() {
			records := []model.ScoreRecord{
				{UID: 12, Composite: 0.8},
				{UID: 4, Composite: 0.8},
				{UID: 30, Composite: 0.5},
			}

			Convey("Then the lowest UID wins, reproducibly", func() {
				for i := 0; i < 50; i++ {
					weights := alloc.Allocate(records)
					So(weights[4], ShouldAlmostEqual, 0.03, 1e-12)
					So(weights[12], ShouldEqual, 0.0)
				}
			})
		})

		Convey("When the reserved identity itself carries a score", func() {
			records := []model.ScoreRecord{
				{UID: model.ReservedUID, Composite: 0.99},
				{UID: 3, Composite: 0.1},
			}
			weights := alloc.Allocate(records)

			Convey("Then it is never selected as the winner", func() {
				So(weights[3], ShouldAlmostEqual, 0.03, 1e-12)
				So(weights[model.ReservedUID], ShouldAlmostEqual, 0.97, 1e-12)
			})
		})
	})

	Convey("Given a custom burn fraction and sink", t, func() {
		alloc := allocation.New(
			allocation.WithBurnFraction(0.5),
			allocation.WithReservedUID(100),
		)
		weights := alloc.Allocate([]model.ScoreRecord{{UID: 2, Composite: 0.3}})

		Convey("Then the configured split applies and still sums to 1", func() {
			So(weights[100], ShouldAlmostEqual, 0.5, 1e-12)
			So(weights[2], ShouldAlmostEqual, 0.5, 1e-12)
			So(weights.Sum(), ShouldAlmostEqual, 1.0, 1e-9)
		})
	})
}
