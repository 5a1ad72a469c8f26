package fsrsengine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/kaedesrs/kotoba/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func noFuzzConfig() Config {
	cfg := DefaultConfig()
	cfg.EnableFuzzing = false
	return cfg
}

// Scenario 1 from spec.md §8: new card first review (Good).
func TestApply_NewCardFirstReviewGood(t *testing.T) {
	engine := New(noFuzzConfig(), rand.New(rand.NewSource(1)))
	now := fixedNow()
	card := NewCard(now)

	updated, log, err := engine.Apply(card, domain.Good, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.State != Learning {
		t.Errorf("expected state Learning after first Good (2-step table), got %v", updated.State)
	}
	if updated.Step != 1 {
		t.Errorf("expected step 1 (advanced from step 0), got %d", updated.Step)
	}
	if !updated.Due.After(now) {
		t.Error("expected due strictly in the future")
	}
	if log.Rating != domain.Good {
		t.Errorf("expected history rating Good, got %v", log.Rating)
	}
}

// Scenario 2 from spec.md §8: lapse from Review state.
func TestApply_LapseFromReview(t *testing.T) {
	engine := New(noFuzzConfig(), rand.New(rand.NewSource(1)))
	now := fixedNow()

	stability := 30.0
	difficulty := 5.0
	card := Card{
		State:      Review,
		Step:       0,
		Stability:  &stability,
		Difficulty: &difficulty,
		Due:        now,
		LastReview: timePtr(now.Add(-30 * 24 * time.Hour)),
		Reps:       5,
	}

	updated, log, err := engine.Apply(card, domain.Again, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.State != Relearning {
		t.Errorf("expected Relearning after lapse, got %v", updated.State)
	}
	if *updated.Stability >= stability {
		t.Errorf("expected stability to decrease after lapse, was %f now %f", stability, *updated.Stability)
	}
	wantDue := now.Add(10 * time.Minute)
	if !updated.Due.Equal(wantDue) {
		t.Errorf("expected due within relearning step window %v, got %v", wantDue, updated.Due)
	}
	if log.Rating != domain.Again {
		t.Errorf("expected history rating Again, got %v", log.Rating)
	}
}

func TestApply_InvalidRating(t *testing.T) {
	engine := New(noFuzzConfig(), rand.New(rand.NewSource(1)))
	now := fixedNow()
	card := NewCard(now)

	if _, _, err := engine.Apply(card, domain.Rating(9), now); err == nil {
		t.Error("expected error for out-of-range rating")
	}
}

func TestApply_GraduatesAfterLearningSteps(t *testing.T) {
	engine := New(noFuzzConfig(), rand.New(rand.NewSource(1)))
	now := fixedNow()
	card := NewCard(now)

	card, _, err := engine.Apply(card, domain.Good, now)
	if err != nil {
		t.Fatal(err)
	}
	if card.State != Learning || card.Step != 1 {
		t.Fatalf("expected Learning step 1, got state=%v step=%d", card.State, card.Step)
	}

	card, _, err = engine.Apply(card, domain.Good, now.Add(10*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if card.State != Review {
		t.Errorf("expected graduation to Review after exhausting learning steps, got %v", card.State)
	}
	if card.Due.Before(now.Add(10 * time.Minute)) {
		t.Error("expected review interval strictly after graduation time")
	}
}

func TestApply_AgainResetsLearningStep(t *testing.T) {
	engine := New(noFuzzConfig(), rand.New(rand.NewSource(1)))
	now := fixedNow()
	card := NewCard(now)

	card, _, _ = engine.Apply(card, domain.Good, now)
	if card.Step != 1 {
		t.Fatalf("expected step 1, got %d", card.Step)
	}

	card, _, err := engine.Apply(card, domain.Again, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if card.Step != 0 {
		t.Errorf("expected Again to reset step to 0, got %d", card.Step)
	}
	if card.State != Learning {
		t.Errorf("expected state to remain Learning after Again, got %v", card.State)
	}
}

func TestApply_MaximumIntervalCap(t *testing.T) {
	cfg := noFuzzConfig()
	cfg.MaximumInterval = 5 * 24 * time.Hour
	engine := New(cfg, rand.New(rand.NewSource(1)))
	now := fixedNow()

	stability := 400.0
	difficulty := 2.0
	card := Card{
		State:      Review,
		Stability:  &stability,
		Difficulty: &difficulty,
		Due:        now,
		LastReview: timePtr(now.Add(-400 * 24 * time.Hour)),
		Reps:       20,
	}

	updated, _, err := engine.Apply(card, domain.Easy, now)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Due.After(now.Add(cfg.MaximumInterval)) {
		t.Errorf("expected due capped at %v, got %v", now.Add(cfg.MaximumInterval), updated.Due)
	}
}

func TestApplyAll_RatingSequence(t *testing.T) {
	engine := New(noFuzzConfig(), rand.New(rand.NewSource(7)))
	now := fixedNow()
	card := NewCard(now)

	ratings := []domain.Rating{domain.Good, domain.Good, domain.Hard, domain.Again, domain.Easy}
	for i, r := range ratings {
		next, _, err := engine.Apply(card, r, now.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
		card = next
	}
	if card.Reps != len(ratings) {
		t.Errorf("expected Reps==%d, got %d", len(ratings), card.Reps)
	}
}
