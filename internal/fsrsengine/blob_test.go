package fsrsengine

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/kaedesrs/kotoba/internal/domain"
)

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	stability := 12.5
	difficulty := 4.2
	last := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	card := Card{
		State:      Review,
		Step:       0,
		Stability:  &stability,
		Difficulty: &difficulty,
		Due:        time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
		LastReview: &last,
		Reps:       3,
		Lapses:     1,
	}

	data, err := Serialize(42, card)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	gotID, gotCard, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if gotID != 42 {
		t.Errorf("expected card id 42, got %d", gotID)
	}
	if diff := cmp.Diff(card, gotCard); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeDeserialize_RejectsUnknownSchemaVersion(t *testing.T) {
	data := []byte(`{"schema_version":99,"card_id":1,"state":1,"step":0,"due":"2025-01-01T00:00:00Z"}`)
	if _, _, err := Deserialize(data); err == nil {
		t.Error("expected error for unknown schema version")
	}
}

// Property test (spec.md §8 "Round-trip"): for every card c and rating
// sequence rs, deserialize(serialize(apply_all(c, rs))) == apply_all(c, rs).
func TestProperty_RoundTripAfterApplySequence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	ratingGen := gen.IntRange(1, 4).Map(func(i int) domain.Rating { return domain.Rating(i) })

	properties.Property("round trip is stable across a rating sequence", prop.ForAll(
		func(ratings []domain.Rating) bool {
			engine := New(noFuzzConfig(), nil)
			now := fixedNow()
			card := NewCard(now)

			for i, r := range ratings {
				next, _, err := engine.Apply(card, r, now.Add(time.Duration(i)*time.Hour))
				if err != nil {
					return false
				}
				card = next
			}

			data, err := Serialize(1, card)
			if err != nil {
				return false
			}
			_, roundTripped, err := Deserialize(data)
			if err != nil {
				return false
			}
			return cmp.Equal(card, roundTripped)
		},
		gen.SliceOfN(8, ratingGen),
	))

	properties.TestingRun(t)
}
