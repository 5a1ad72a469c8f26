// Package mcqgen builds multiple-choice questions from catalog items using
// a four-strategy distractor pool (spec.md §4.5): same JLPT level, similar
// meanings (semantic), similar readings (phonetic), and visual similarity
// (kanji radical/stroke count). No pack repo builds MCQ distractors; this
// package is shaped after the teacher's layered port/service split, one
// method per named strategy bound by a small interface, the way
// danieldreier-mcp-flashcards's internal/fsrs.FSRSManagerImpl lays out one
// method per algorithm step.
package mcqgen

import (
	"math/rand"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/catalog"
	"github.com/kaedesrs/kotoba/internal/domain"
)

// Question is the public contract of spec.md §4.5's generate().
type Question struct {
	Prompt               string
	Options              [4]string
	CorrectIndex         int
	ItemKind             domain.ItemKind
	QuestionTypeResolved domain.QuestionType
}

// Generator builds Questions from a catalog.Reader. rng drives the coin
// flip for Mixed, pool shuffling, sampling, and the final permutation; it
// is injected so tests can seed it for determinism (the permutation
// fairness property of spec.md §8 instead seeds a fresh *rand.Rand per
// assertion run).
type Generator struct {
	catalog catalog.Reader
	rng     *rand.Rand
}

func New(cat catalog.Reader, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Generator{catalog: cat, rng: rng}
}

// Generate implements spec.md §4.5's generate(). Returns Unavailable if the
// subject item does not exist, or if fewer than four unique display strings
// can be assembled from the entire catalog.
func (g *Generator) Generate(itemID int, kind domain.ItemKind, qType domain.QuestionType, lang domain.Language) (Question, error) {
	subject, err := g.catalog.Get(itemID, kind)
	if err != nil {
		return Question{}, apperr.New(apperr.Unavailable, "subject item does not exist")
	}

	resolved := qType
	if qType == domain.Mixed {
		if g.rng.Intn(2) == 0 {
			resolved = domain.WordToMeaning
		} else {
			resolved = domain.MeaningToWord
		}
	}

	var prompt, correct string
	switch resolved {
	case domain.WordToMeaning:
		prompt = subjectPrompt(subject)
		meanings := subject.MeaningsIn(lang)
		if len(meanings) == 0 {
			return Question{}, apperr.New(apperr.Unavailable, "subject has no meanings in requested language")
		}
		correct = meanings[0]
	case domain.MeaningToWord:
		meanings := subject.MeaningsIn(lang)
		if len(meanings) == 0 {
			return Question{}, apperr.New(apperr.Unavailable, "subject has no meanings in requested language")
		}
		prompt = meanings[0]
		correct = subject.DisplaySurface()
	default:
		return Question{}, apperr.New(apperr.Invalid, "unresolved question type")
	}

	pool, err := g.distractorPool(subject, resolved, lang)
	if err != nil {
		return Question{}, err
	}

	distractors, err := g.sampleThreeDistinct(pool, correct, subject, resolved, lang)
	if err != nil {
		return Question{}, err
	}

	options := [4]string{correct, distractors[0], distractors[1], distractors[2]}
	order := g.rng.Perm(4)
	var permuted [4]string
	correctIndex := 0
	for i, src := range order {
		permuted[i] = options[src]
		if src == 0 {
			correctIndex = i
		}
	}

	return Question{
		Prompt:               prompt,
		Options:              permuted,
		CorrectIndex:         correctIndex,
		ItemKind:             kind,
		QuestionTypeResolved: resolved,
	}, nil
}

// subjectPrompt is the Japanese-facing display string: surface (plus
// reading for vocabulary, per spec.md §4.5).
func subjectPrompt(item domain.Item) string {
	if v, ok := item.(*domain.VocabItem); ok {
		return v.Surface + " (" + v.Reading + ")"
	}
	return item.DisplaySurface()
}

// displayString is what a distractor or the correct option actually shows:
// a meaning for WordToMeaning, a surface form for MeaningToWord.
func displayString(item domain.Item, resolved domain.QuestionType, lang domain.Language) (string, bool) {
	if resolved == domain.WordToMeaning {
		meanings := item.MeaningsIn(lang)
		if len(meanings) == 0 {
			return "", false
		}
		return meanings[0], true
	}
	return item.DisplaySurface(), true
}
