// Package fsrsengine is the sole owner of Card-state transition logic
// (spec.md §4.2, §9 "Reviews as a closed aggregate"). It wraps
// github.com/open-spaced-repetition/go-fsrs/v3 for the stability/difficulty
// numeric core, the way the teacher's internal/scheduler.Scheduler wraps
// the same library, and adds the configurable learning/relearning step
// table, interval capping, and fuzzing that spec.md §4.2 requires on top of
// it. Other components interact through Apply and the blob codec in blob.go;
// the one exception is internal/stats, whose Mastered query reads
// Card.Stability directly.
package fsrsengine

import (
	"math/rand"
	"time"

	gofsrs "github.com/open-spaced-repetition/go-fsrs/v3"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
)

// State is the FSRS phase a Card is in. Values line up with the
// underlying library's State for Learning/Review/Relearning so the two can
// be cast directly; a never-reviewed Card is represented as State=Learning,
// Step=0, LastReview=nil rather than a separate "New" state, per spec.md
// §3's three-state Card model.
type State int

const (
	Learning   State = 1
	Review     State = 2
	Relearning State = 3
)

func (s State) String() string {
	switch s {
	case Learning:
		return "Learning"
	case Review:
		return "Review"
	case Relearning:
		return "Relearning"
	default:
		return "Unknown"
	}
}

// Card is the FSRS memory unit owned by a Review record (spec.md §3).
// Stability/Difficulty are nil only for a brand new, never-reviewed card.
type Card struct {
	State      State
	Step       int
	Stability  *float64
	Difficulty *float64
	Due        time.Time
	LastReview *time.Time

	// Reps and Lapses are bookkeeping counters the underlying FSRS library
	// expects on every call; they are not part of spec.md §6's documented
	// blob contract but are carried as an additive extension so Apply can
	// reconstruct library-accurate scheduling across calls. See DESIGN.md.
	Reps   int
	Lapses int
}

// ReviewLog records what Apply did, for callers that want to append a
// FlashHistory/MCQHistory row without re-deriving it from before/after Card
// diffs.
type ReviewLog struct {
	Rating        domain.Rating
	ReviewedAt    time.Time
	PreviousState State
	ScheduledDays float64
}

// Config is the enumerated FSRS configuration of spec.md §4.2.
type Config struct {
	DesiredRetention float64
	LearningSteps    []time.Duration
	RelearningSteps  []time.Duration
	MaximumInterval  time.Duration
	EnableFuzzing    bool
}

// DefaultConfig matches spec.md §4.2's defaults.
func DefaultConfig() Config {
	return Config{
		DesiredRetention: 0.9,
		LearningSteps:    []time.Duration{1 * time.Minute, 10 * time.Minute},
		RelearningSteps:  []time.Duration{10 * time.Minute},
		MaximumInterval:  36500 * 24 * time.Hour,
		EnableFuzzing:    true,
	}
}

// Engine is the pure state-transition function of spec.md §4.2, parameterized
// by Config and (when fuzzing is enabled) a seedable randomness source so
// tests can obtain determinism by injecting rand.New(rand.NewSource(seed))
// or by setting EnableFuzzing=false.
type Engine struct {
	lib *gofsrs.FSRS
	cfg Config
	rng *rand.Rand
}

// New builds an Engine. rng may be nil when cfg.EnableFuzzing is false.
func New(cfg Config, rng *rand.Rand) *Engine {
	params := gofsrs.DefaultParam()
	params.RequestRetention = cfg.DesiredRetention
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Engine{lib: gofsrs.NewFSRS(params), cfg: cfg, rng: rng}
}

// NewCard mints a fresh Card in Learning state due immediately, per spec.md
// §3's lazy-creation rule.
func NewCard(now time.Time) Card {
	return Card{State: Learning, Step: 0, Due: now}
}

// Apply computes the next Card state for rating at now. It never touches
// storage; schedulers are responsible for persisting the result atomically.
func (e *Engine) Apply(card Card, rating domain.Rating, now time.Time) (Card, ReviewLog, error) {
	if !rating.Valid() {
		return Card{}, ReviewLog{}, apperr.New(apperr.Invalid, "rating must be one of 1..4")
	}

	libCard := toLibCard(card)
	result := e.lib.Next(libCard, now, gofsrs.Rating(rating))
	libAfter := result.Card

	newState, newStep, due := e.resolveSchedule(card, rating, libAfter, now)

	lapses := card.Lapses
	if card.State == Review && rating == domain.Again {
		lapses++
	}

	stability := libAfter.Stability
	difficulty := libAfter.Difficulty
	updated := Card{
		State:      newState,
		Step:       newStep,
		Stability:  &stability,
		Difficulty: &difficulty,
		Due:        due,
		LastReview: timePtr(now),
		Reps:       card.Reps + 1,
		Lapses:     lapses,
	}

	log := ReviewLog{
		Rating:        rating,
		ReviewedAt:    now,
		PreviousState: card.State,
		ScheduledDays: due.Sub(now).Hours() / 24,
	}
	return updated, log, nil
}

// Retrievability returns the library's current recall-probability estimate
// for card at now. No package in this module calls it, and Apply does not
// use it (scheduling only ever looks at Due).
func (e *Engine) Retrievability(card Card, now time.Time) float64 {
	return e.lib.GetRetrievability(toLibCard(card), now)
}

// resolveSchedule applies the configurable learning/relearning step table on
// top of the library's stability/difficulty-driven Review-phase interval.
func (e *Engine) resolveSchedule(card Card, rating domain.Rating, libAfter gofsrs.Card, now time.Time) (State, int, time.Time) {
	switch card.State {
	case Learning:
		return e.resolveSteps(Learning, e.cfg.LearningSteps, card.Step, rating, libAfter, now)
	case Relearning:
		return e.resolveSteps(Relearning, e.cfg.RelearningSteps, card.Step, rating, libAfter, now)
	default: // Review
		if rating == domain.Again {
			if len(e.cfg.RelearningSteps) == 0 {
				return Review, 0, e.capAndFuzz(now, libAfter.Due)
			}
			return Relearning, 0, now.Add(e.cfg.RelearningSteps[0])
		}
		return Review, 0, e.capAndFuzz(now, libAfter.Due)
	}
}

// resolveSteps implements one pass through a learning or relearning step
// table: Again resets to the first step, Hard repeats the current step,
// Good advances one step, and Easy graduates at once; Easy, or Good stepping
// off the end of the table, graduates to Review using the library's computed
// interval (capped and fuzzed).
func (e *Engine) resolveSteps(phase State, steps []time.Duration, currentStep int, rating domain.Rating, libAfter gofsrs.Card, now time.Time) (State, int, time.Time) {
	if len(steps) == 0 {
		return Review, 0, e.capAndFuzz(now, libAfter.Due)
	}

	switch rating {
	case domain.Again:
		return phase, 0, now.Add(steps[0])
	case domain.Hard:
		step := currentStep
		if step >= len(steps) {
			step = len(steps) - 1
		}
		return phase, step, now.Add(steps[step])
	case domain.Easy:
		return Review, 0, e.capAndFuzz(now, libAfter.Due)
	default: // Good
		next := currentStep + 1
		if next >= len(steps) {
			return Review, 0, e.capAndFuzz(now, libAfter.Due)
		}
		return phase, next, now.Add(steps[next])
	}
}

func (e *Engine) capAndFuzz(now, due time.Time) time.Time {
	interval := due.Sub(now)
	if interval > e.cfg.MaximumInterval {
		interval = e.cfg.MaximumInterval
	}
	if interval < 0 {
		interval = 0
	}
	if e.cfg.EnableFuzzing && interval > 0 {
		// +/-5% uniform jitter, bounded so fuzzing never pushes the
		// interval past the cap or negative.
		jitterRange := float64(interval) * 0.05
		jitter := (e.rng.Float64()*2 - 1) * jitterRange
		interval += time.Duration(jitter)
		if interval > e.cfg.MaximumInterval {
			interval = e.cfg.MaximumInterval
		}
		if interval < 0 {
			interval = 0
		}
	}
	return now.Add(interval)
}

func toLibCard(card Card) gofsrs.Card {
	lib := gofsrs.NewCard()
	if card.LastReview == nil {
		return lib // never reviewed: let the library treat it as brand new
	}

	lib.State = gofsrs.State(card.State)
	if card.Stability != nil {
		lib.Stability = *card.Stability
	}
	if card.Difficulty != nil {
		lib.Difficulty = *card.Difficulty
	}
	lib.Due = card.Due
	lib.LastReview = *card.LastReview
	lib.Reps = uint64(card.Reps)
	lib.Lapses = uint64(card.Lapses)
	return lib
}

func timePtr(t time.Time) *time.Time { return &t }
