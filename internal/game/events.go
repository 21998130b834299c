package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/colormatch/internal/domain"
	"github.com/phrazzld/colormatch/internal/events"
)

// SelectedPayload accompanies events.TypeCardSelected.
type SelectedPayload struct {
	Generation uuid.UUID    `json:"generation"`
	Index      int          `json:"index"`
	Color      domain.Color `json:"color"`
}

// ComparisonPayload accompanies events.TypePairMatched and
// events.TypePairMismatched. Counters are the values after resolution.
type ComparisonPayload struct {
	Generation   uuid.UUID `json:"generation"`
	FirstIndex   int       `json:"first_index"`
	SecondIndex  int       `json:"second_index"`
	Score        int       `json:"score"`
	Moves        int       `json:"moves"`
	MatchedPairs int       `json:"matched_pairs"`
}

// RevertedPayload accompanies events.TypeCardsReverted.
type RevertedPayload struct {
	Generation uuid.UUID `json:"generation"`
	Indices    []int     `json:"indices"`
}

// CompletedPayload accompanies events.TypeGameCompleted.
type CompletedPayload struct {
	Generation uuid.UUID `json:"generation"`
	Score      int       `json:"score"`
	Moves      int       `json:"moves"`
}

// RestartedPayload accompanies events.TypeGameRestarted.
type RestartedPayload struct {
	Generation uuid.UUID `json:"generation"`
	CardCount  int       `json:"card_count"`
}

// emission is an event waiting to be published once g.mu is released, so
// handlers may call back into the game.
type emission struct {
	eventType string
	payload   interface{}
}

func (g *Game) publish(ctx context.Context, out []emission) {
	for _, em := range out {
		event, err := events.NewGameEvent(g.id, em.eventType, em.payload)
		if err != nil {
			g.logger.ErrorContext(ctx, "failed to build game event",
				"event_type", em.eventType,
				"error", err)
			continue
		}
		if err := g.emitter.EmitEvent(ctx, event); err != nil {
			g.logger.WarnContext(ctx, "game event handler failed",
				"event_type", em.eventType,
				"event_id", event.ID,
				"error", err)
		}
	}
}
