package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/mcqgen"
	"github.com/kaedesrs/kotoba/internal/scheduler"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// MCQService mirrors FlashService but additionally generates a
// mcqgen.Question for each due item, since an MCQ review has no fixed
// correct_index until one is rolled (spec.md §4.5).
type MCQService struct {
	scheduler    *scheduler.MCQScheduler
	generator    *mcqgen.Generator
	lang         domain.Language
	questionType domain.QuestionType
	sessions     map[string]*mcqSessionState
}

type mcqSessionState struct {
	*Session
	queue     []storage.MCQReview
	current   *mcqgen.Question
	correct   int
	incorrect int
}

// NewMCQService builds an MCQService. questionType selects the prompt/answer
// shape (w2m, m2w, or mixed per-item coin flip) every Generate call in this
// service uses; the CLI constructs one service per invocation, so this is
// the natural place for the --question-type flag to live.
func NewMCQService(sched *scheduler.MCQScheduler, gen *mcqgen.Generator, lang domain.Language, questionType domain.QuestionType) *MCQService {
	return &MCQService{scheduler: sched, generator: gen, lang: lang, questionType: questionType, sessions: make(map[string]*mcqSessionState)}
}

// Start queries due MCQ reviews per opts and opens a session over them.
func (s *MCQService) Start(opts Options, now time.Time) (*Session, error) {
	due, err := s.scheduler.Due(opts.MaxItems, opts.JLPTLevel, opts.ItemKind, now)
	if err != nil {
		return nil, fmt.Errorf("query due mcq reviews: %w", err)
	}
	if opts.Shuffle {
		rand.Shuffle(len(due), func(i, j int) { due[i], due[j] = due[j], due[i] })
	}

	session := &Session{
		ID:             uuid.New().String(),
		Mode:           domain.ModeMCQ,
		StartedAt:      now,
		ItemsRemaining: len(due),
	}
	s.sessions[session.ID] = &mcqSessionState{Session: session, queue: due}
	return session, nil
}

// Next generates a Question for the next due review, or NotFound when the
// queue is empty.
func (s *MCQService) Next(sessionID string) (*storage.MCQReview, *mcqgen.Question, error) {
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, fmt.Errorf("session %s not found", sessionID)
	}
	if len(state.queue) == 0 {
		return nil, nil, apperr.New(apperr.NotFound, fmt.Sprintf("no more reviews remaining in session %s", sessionID))
	}
	next := state.queue[0]

	kind := domain.ItemKind(next.ItemKind)
	q, err := s.generator.Generate(next.ItemID, kind, s.questionType, s.lang)
	if err != nil {
		return nil, nil, err
	}

	state.CurrentReview = &next.ID
	state.current = &q
	return &next, &q, nil
}

// Skip drops the front of the queue without scheduling it, for the
// Unavailable case of spec.md §7: the generator couldn't assemble four
// unique options, so the session skips the item and continues.
func (s *MCQService) Skip(sessionID string) error {
	state, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}
	if len(state.queue) == 0 {
		return fmt.Errorf("no more reviews remaining in session %s", sessionID)
	}
	state.queue = state.queue[1:]
	state.ItemsRemaining--
	state.CurrentReview = nil
	state.current = nil
	return nil
}

// SubmitAnswer applies the user's selected option against the question
// last returned by Next, and advances the queue.
func (s *MCQService) SubmitAnswer(sessionID string, reviewID int, selectedOption int, durationMs *int, now time.Time) error {
	state, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}
	if state.current == nil {
		return fmt.Errorf("no active question in session %s", sessionID)
	}

	if _, err := s.scheduler.Apply(reviewID, selectedOption, state.current.CorrectIndex, durationMs, now); err != nil {
		return err
	}

	if selectedOption == state.current.CorrectIndex {
		state.correct++
	} else {
		state.incorrect++
	}
	state.ItemsReviewed++
	state.ItemsRemaining--
	state.CurrentReview = nil
	state.current = nil
	if len(state.queue) > 0 && state.queue[0].ID == reviewID {
		state.queue = state.queue[1:]
	}
	return nil
}

// End finalizes the session and returns its tallies.
func (s *MCQService) End(sessionID string, now time.Time) (*Stats, error) {
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	stats := &Stats{
		SessionID:      sessionID,
		Mode:           domain.ModeMCQ,
		Duration:       now.Sub(state.StartedAt),
		ItemsReviewed:  state.ItemsReviewed,
		CorrectCount:   state.correct,
		IncorrectCount: state.incorrect,
	}
	delete(s.sessions, sessionID)
	return stats, nil
}
