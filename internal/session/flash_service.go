package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/scheduler"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// FlashService drives an interactive flashcard review pass, generalizing
// the teacher's review.Service.StartSession/GetNextCard/SubmitReview/
// EndSession pipeline onto FlashScheduler.
type FlashService struct {
	scheduler *scheduler.FlashScheduler
	sessions  map[string]*flashSessionState
}

type flashSessionState struct {
	*Session
	queue   []storage.FlashReview
	ratings map[domain.Rating]int
}

func NewFlashService(sched *scheduler.FlashScheduler) *FlashService {
	return &FlashService{scheduler: sched, sessions: make(map[string]*flashSessionState)}
}

// Start queries due flashcard reviews per opts and opens a session over them.
func (s *FlashService) Start(opts Options, now time.Time) (*Session, error) {
	due, err := s.scheduler.Due(opts.MaxItems, opts.JLPTLevel, opts.ItemKind, now)
	if err != nil {
		return nil, fmt.Errorf("query due flashcard reviews: %w", err)
	}
	if opts.Shuffle {
		rand.Shuffle(len(due), func(i, j int) { due[i], due[j] = due[j], due[i] })
	}

	session := &Session{
		ID:             uuid.New().String(),
		Mode:           domain.ModeFlash,
		StartedAt:      now,
		ItemsRemaining: len(due),
	}
	s.sessions[session.ID] = &flashSessionState{Session: session, queue: due, ratings: make(map[domain.Rating]int)}
	return session, nil
}

// Next returns the next due review in the session, or NotFound when the
// queue is empty.
func (s *FlashService) Next(sessionID string) (*storage.FlashReview, error) {
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	if len(state.queue) == 0 {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("no more reviews remaining in session %s", sessionID))
	}
	next := state.queue[0]
	state.CurrentReview = &next.ID
	return &next, nil
}

// SubmitRating applies rating to the current review and advances the queue.
func (s *FlashService) SubmitRating(sessionID string, reviewID int, rating domain.Rating, durationMs *int, now time.Time) error {
	state, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}

	if _, err := s.scheduler.Apply(reviewID, rating, durationMs, now); err != nil {
		return err
	}

	state.ratings[rating]++
	state.ItemsReviewed++
	state.ItemsRemaining--
	state.CurrentReview = nil
	if len(state.queue) > 0 && state.queue[0].ID == reviewID {
		state.queue = state.queue[1:]
	}
	return nil
}

// End finalizes the session and returns its tallies.
func (s *FlashService) End(sessionID string, now time.Time) (*Stats, error) {
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	stats := &Stats{
		SessionID:     sessionID,
		Mode:          domain.ModeFlash,
		Duration:      now.Sub(state.StartedAt),
		ItemsReviewed: state.ItemsReviewed,
		RatingCounts:  state.ratings,
	}
	delete(s.sessions, sessionID)
	return stats, nil
}
