package scoring_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tellsight/internal/domain/model"
	"github.com/okian/tellsight/internal/domain/scoring"
)

// evalChunk builds a chunk with humanCount human hands followed by botCount
// bot hands, matching the positional layout scoring aligns against.
func evalChunk(index, humanCount, botCount int) model.Chunk {
	mkHands := func(n int, label model.Label) []model.Hand {
		hands := make([]model.Hand, n)
		for i := range hands {
			hands[i] = model.Hand{
				ID:     fmt.Sprintf("c%d-%s-%d", index, label, i),
				Events: []model.HandEvent{{Action: "call"}},
				Label:  label,
			}
		}
		return hands
	}
	return model.Chunk{
		Index:         index,
		SchemaVersion: 1,
		Batches: []model.Batch{
			{Kind: model.KindHuman, Label: model.LabelHuman, Hands: mkHands(humanCount, model.LabelHuman)},
			{Kind: "pressure", Label: model.LabelBot, Hands: mkHands(botCount, model.LabelBot)},
		},
	}
}

// perfectPredictions answers a chunk built by evalChunk with full confidence.
func perfectPredictions(humanCount, botCount int) []model.Prediction {
	preds := make([]model.Prediction, 0, humanCount+botCount)
	for i := 0; i < humanCount; i++ {
		preds = append(preds, model.Prediction{Risk: 0.0, Bot: false})
	}
	for i := 0; i < botCount; i++ {
		preds = append(preds, model.Prediction{Risk: 1.0, Bot: true})
	}
	return preds
}

func TestEngine_Score(t *testing.T) {
	Convey("Given three workers and two chunks of 6 human / 4 bot hands", t, func() {
		engine := scoring.New()
		workers := []model.Worker{
			{UID: 1, URL: "http://a"},
			{UID: 2, URL: "http://b"},
			{UID: 3, URL: "http://c"},
		}
		chunks := []model.Chunk{evalChunk(0, 6, 4), evalChunk(1, 6, 4)}

		Convey("When worker 1 is perfect and the others never respond", func() {
			results := []model.ChunkResult{
				{UID: 1, Chunk: 0, Status: model.StatusOK, Predictions: perfectPredictions(6, 4)},
				{UID: 1, Chunk: 1, Status: model.StatusOK, Predictions: perfectPredictions(6, 4)},
				{UID: 2, Chunk: 0, Status: model.StatusTimeout},
				{UID: 2, Chunk: 1, Status: model.StatusTimeout},
			}

			records := engine.Score(workers, chunks, results)

			Convey("Then records come back for every worker, UID ascending", func() {
				So(len(records), ShouldEqual, 3)
				So(records[0].UID, ShouldEqual, 1)
				So(records[1].UID, ShouldEqual, 2)
				So(records[2].UID, ShouldEqual, 3)
			})

			Convey("And the perfect worker scores AP=1, recall=1, FPR=0", func() {
				So(records[0].AveragePrecision, ShouldAlmostEqual, 1.0)
				So(records[0].BotRecall, ShouldAlmostEqual, 1.0)
				So(records[0].FalsePositiveRate, ShouldAlmostEqual, 0.0)
				So(records[0].SafetyPenalty, ShouldAlmostEqual, 1.0)
				So(records[0].Composite, ShouldAlmostEqual, 1.0)
				So(records[0].Evidence, ShouldEqual, 20)
			})

			Convey("And silent workers score exactly zero with zero evidence", func() {
				So(records[1].Composite, ShouldEqual, 0.0)
				So(records[1].Evidence, ShouldEqual, 0)
				So(records[2].Composite, ShouldEqual, 0.0)
			})
		})

		Convey("When a worker flags every human as a bot", func() {
			allBot := make([]model.Prediction, 10)
			for i := range allBot {
				allBot[i] = model.Prediction{Risk: 1.0, Bot: true}
			}
			results := []model.ChunkResult{
				{UID: 1, Chunk: 0, Status: model.StatusOK, Predictions: allBot},
			}

			records := engine.Score(workers, chunks[:1], results)

			Convey("Then perfect recall cannot rescue it from the penalty floor", func() {
				So(records[0].BotRecall, ShouldAlmostEqual, 1.0)
				So(records[0].FalsePositiveRate, ShouldAlmostEqual, 1.0)
				So(records[0].SafetyPenalty, ShouldEqual, 0.0)
				So(records[0].Composite, ShouldEqual, 0.0)
			})
		})

		Convey("When a worker's FPR sits just above the cutoff", func() {
			// 6 humans: one flagged bot -> FPR 1/6 ≈ 0.167 >= 0.10 cutoff.
			preds := perfectPredictions(6, 4)
			preds[0] = model.Prediction{Risk: 0.9, Bot: true}
			results := []model.ChunkResult{
				{UID: 1, Chunk: 0, Status: model.StatusOK, Predictions: preds},
			}

			records := engine.Score(workers, chunks[:1], results)

			Convey("Then the hard cutoff zeroes the composite", func() {
				So(records[0].FalsePositiveRate, ShouldBeGreaterThanOrEqualTo, 0.10)
				So(records[0].Composite, ShouldEqual, 0.0)
			})
		})

		Convey("When scoring the same inputs twice", func() {
			results := []model.ChunkResult{
				{UID: 1, Chunk: 0, Status: model.StatusOK, Predictions: perfectPredictions(6, 4)},
				{UID: 3, Chunk: 0, Status: model.StatusInvalid},
			}

			first := engine.Score(workers, chunks, results)
			second := engine.Score(workers, chunks, results)

			Convey("Then the records are identical", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestEngine_InvalidEvidenceIsolation(t *testing.T) {
	Convey("Given one valid and one wrong-cardinality response", t, func() {
		engine := scoring.New()
		workers := []model.Worker{{UID: 1, URL: "http://a"}, {UID: 2, URL: "http://b"}}
		chunks := []model.Chunk{evalChunk(0, 3, 2)}

		short := []model.Prediction{{Risk: 1.0, Bot: true}} // 1 of 5 hands
		results := []model.ChunkResult{
			{UID: 1, Chunk: 0, Status: model.StatusOK, Predictions: perfectPredictions(3, 2)},
			{UID: 2, Chunk: 0, Status: model.StatusOK, Predictions: short},
		}

		records := engine.Score(workers, chunks, results)

		Convey("Then the mismatched worker contributes zero evidence", func() {
			So(records[1].UID, ShouldEqual, 2)
			So(records[1].Evidence, ShouldEqual, 0)
			So(records[1].Composite, ShouldEqual, 0.0)
		})

		Convey("And the valid worker's score is unaffected", func() {
			So(records[0].Composite, ShouldAlmostEqual, 1.0)
		})
	})
}

func TestAveragePrecision_RankingAndTies(t *testing.T) {
	Convey("Given an interleaved ranking of bots and humans", t, func() {
		engine := scoring.New()
		workers := []model.Worker{{UID: 5, URL: "http://x"}}
		// Layout: 1 human then 2 bots, so truth = [human, bot, bot].
		chunks := []model.Chunk{evalChunk(0, 1, 2)}

		Convey("When risks rank bot, human, bot", func() {
			results := []model.ChunkResult{{
				UID: 5, Chunk: 0, Status: model.StatusOK,
				Predictions: []model.Prediction{
					{Risk: 0.8, Bot: false}, // human, ranked second
					{Risk: 0.9, Bot: true},  // bot, ranked first
					{Risk: 0.7, Bot: true},  // bot, ranked third
				},
			}}

			records := engine.Score(workers, chunks, results)

			Convey("Then AP matches the step integration by hand", func() {
				// Positions 1 and 3 are positives: (1/1 + 2/3) / 2 = 5/6.
				So(records[0].AveragePrecision, ShouldAlmostEqual, 5.0/6.0, 1e-12)
			})
		})

		Convey("When all risks tie, original order breaks the tie", func() {
			results := []model.ChunkResult{{
				UID: 5, Chunk: 0, Status: model.StatusOK,
				Predictions: []model.Prediction{
					{Risk: 0.5, Bot: false},
					{Risk: 0.5, Bot: true},
					{Risk: 0.5, Bot: true},
				},
			}}

			records := engine.Score(workers, chunks, results)

			Convey("Then AP is computed on the stable order", func() {
				// Ranked order = original order; positives at 2 and 3:
				// (1/2 + 2/3) / 2 = 7/12.
				So(records[0].AveragePrecision, ShouldAlmostEqual, 7.0/12.0, 1e-12)
			})
		})

		Convey("When the chunk has no bot hands at all", func() {
			humanOnly := []model.Chunk{{
				Index:         0,
				SchemaVersion: 1,
				Batches: []model.Batch{{
					Kind: model.KindHuman, Label: model.LabelHuman,
					Hands: []model.Hand{{ID: "h"}, {ID: "h2"}},
				}},
			}}
			results := []model.ChunkResult{{
				UID: 5, Chunk: 0, Status: model.StatusOK,
				Predictions: []model.Prediction{{Risk: 0.1}, {Risk: 0.2}},
			}}

			records := engine.Score(workers, humanOnly, results)

			Convey("Then AP degrades to zero instead of dividing by zero", func() {
				So(records[0].AveragePrecision, ShouldEqual, 0.0)
			})
		})
	})
}
