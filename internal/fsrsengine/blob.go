package fsrsengine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaedesrs/kotoba/internal/apperr"
)

// SchemaVersion is the blob format version, carried in every serialized
// Card so a future migration can detect and upconvert older rows
// (spec.md §9's open question on recording an FSRS version for migrations).
const SchemaVersion = 1

// cardBlob mirrors spec.md §6's card-state blob layout, plus Reps/Lapses as
// an additive extension (see DESIGN.md) needed for library-accurate
// scheduling across calls.
type cardBlob struct {
	SchemaVersion int        `json:"schema_version"`
	CardID        int        `json:"card_id"`
	State         int        `json:"state"`
	Step          int        `json:"step"`
	Stability     *float64   `json:"stability,omitempty"`
	Difficulty    *float64   `json:"difficulty,omitempty"`
	Due           time.Time  `json:"due"`
	LastReview    *time.Time `json:"last_review,omitempty"`
	Reps          int        `json:"reps"`
	Lapses        int        `json:"lapses"`
}

// Serialize encodes card as the canonical blob for cardID. The encoding is
// bijective: Deserialize(Serialize(cardID, c)) == (cardID, c).
func Serialize(cardID int, card Card) ([]byte, error) {
	b := cardBlob{
		SchemaVersion: SchemaVersion,
		CardID:        cardID,
		State:         int(card.State),
		Step:          card.Step,
		Stability:     card.Stability,
		Difficulty:    card.Difficulty,
		Due:           card.Due,
		LastReview:    card.LastReview,
		Reps:          card.Reps,
		Lapses:        card.Lapses,
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, apperr.Wrap(apperr.Backend, "serialize card state", err)
	}
	return data, nil
}

// Deserialize decodes a blob produced by Serialize.
func Deserialize(data []byte) (cardID int, card Card, err error) {
	var b cardBlob
	if unmarshalErr := json.Unmarshal(data, &b); unmarshalErr != nil {
		return 0, Card{}, apperr.Wrap(apperr.Backend, "deserialize card state", unmarshalErr)
	}
	if b.SchemaVersion != SchemaVersion {
		return 0, Card{}, apperr.New(apperr.Integrity, fmt.Sprintf("unsupported card blob schema version %d", b.SchemaVersion))
	}
	card = Card{
		State:      State(b.State),
		Step:       b.Step,
		Stability:  b.Stability,
		Difficulty: b.Difficulty,
		Due:        b.Due,
		LastReview: b.LastReview,
		Reps:       b.Reps,
		Lapses:     b.Lapses,
	}
	return b.CardID, card, nil
}
