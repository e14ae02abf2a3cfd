package dispatch

import "github.com/okian/tellsight/internal/domain/model"

// chunkPayload is the outbound wire shape. Ground-truth labels, provenance
// tags, and batch boundaries are stripped by construction: the type simply
// has no place to carry them.
type chunkPayload struct {
	SchemaVersion int           `json:"schema_version"`
	Chunk         int           `json:"chunk"`
	Hands         []handPayload `json:"hands"`
}

type handPayload struct {
	ID      string             `json:"id"`
	Events  []model.HandEvent  `json:"events"`
	Timings []float64          `json:"timings"`
	Context model.HandContext  `json:"context"`
}

// classifyResponse is the inbound wire shape: one prediction per hand, in
// chunk order.
type classifyResponse struct {
	Predictions []model.Prediction `json:"predictions" validate:"required,dive"`
}

// stripChunk flattens a chunk's batches into the outbound payload.
func stripChunk(c model.Chunk) chunkPayload {
	hands := make([]handPayload, 0, c.HandCount())
	for _, b := range c.Batches {
		for _, h := range b.Hands {
			hands = append(hands, handPayload{
				ID:      h.ID,
				Events:  h.Events,
				Timings: h.Timings,
				Context: h.Context,
			})
		}
	}
	return chunkPayload{
		SchemaVersion: c.SchemaVersion,
		Chunk:         c.Index,
		Hands:         hands,
	}
}
