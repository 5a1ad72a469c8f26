package mcqgen

import (
	"strings"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/storage"
)

const poolStrategyLimit = 10

// distractorPool gathers candidates from the four strategies of spec.md
// §4.5 and returns their union; strategies are a union, not a ranking, so
// duplicates across strategies are expected and deduplicated downstream.
func (g *Generator) distractorPool(subject domain.Item, resolved domain.QuestionType, lang domain.Language) ([]domain.Item, error) {
	var pool []domain.Item

	sameLevel, err := g.sameLevelCandidates(subject)
	if err != nil {
		return nil, err
	}
	pool = append(pool, sameLevel...)

	semantic, err := g.semanticCandidates(subject, lang)
	if err != nil {
		return nil, err
	}
	pool = append(pool, semantic...)

	phonetic, err := g.phoneticCandidates(subject)
	if err != nil {
		return nil, err
	}
	pool = append(pool, phonetic...)

	if subject.Kind() == domain.KindKanji {
		visual, err := g.visualCandidates(subject)
		if err != nil {
			return nil, err
		}
		pool = append(pool, visual...)
	}

	return pool, nil
}

// sameLevelCandidates: strategy 1, up to 10 items of the same kind and
// jlpt_level, excluding the subject, sampled uniformly by the caller.
func (g *Generator) sameLevelCandidates(subject domain.Item) ([]domain.Item, error) {
	level := string(subject.Level())
	return g.catalog.List(storage.ListItemsFilter{
		Kind:       string(subject.Kind()),
		JLPTLevel:  &level,
		ExcludeIDs: []int{subject.ItemID()},
		Limit:      poolStrategyLimit,
	})
}

// semanticCandidates: strategy 2, items whose meanings contain, as a
// substring, one of the first two whitespace-separated tokens of the
// subject's meanings in lang.
func (g *Generator) semanticCandidates(subject domain.Item, lang domain.Language) ([]domain.Item, error) {
	var out []domain.Item
	for _, meaning := range subject.MeaningsIn(lang) {
		tokens := strings.Fields(meaning)
		if len(tokens) > 2 {
			tokens = tokens[:2]
		}
		for _, token := range tokens {
			token := strings.ToLower(token)
			matches, err := g.catalog.List(storage.ListItemsFilter{
				Kind:             string(subject.Kind()),
				MeaningSubstring: &token,
				Language:         string(lang),
				ExcludeIDs:       []int{subject.ItemID()},
				Limit:            poolStrategyLimit,
			})
			if err != nil {
				return nil, err
			}
			out = append(out, matches...)
		}
	}
	return out, nil
}

// phoneticCandidates: strategy 3. Vocabulary shares the first two
// characters of subject's reading; kanji shares at least one on-reading.
// The on-reading overlap has no SQL-filterable column, so kanji candidates
// are fetched broadly and filtered client-side.
func (g *Generator) phoneticCandidates(subject domain.Item) ([]domain.Item, error) {
	switch v := subject.(type) {
	case *domain.VocabItem:
		prefix := firstNRunes(v.Reading, 2)
		if prefix == "" {
			return nil, nil
		}
		return g.catalog.List(storage.ListItemsFilter{
			Kind:          string(domain.KindVocab),
			ReadingPrefix: &prefix,
			ExcludeIDs:    []int{subject.ItemID()},
			Limit:         poolStrategyLimit,
		})
	case *domain.KanjiItem:
		candidates, err := g.catalog.List(storage.ListItemsFilter{
			Kind:       string(domain.KindKanji),
			ExcludeIDs: []int{subject.ItemID()},
			Limit:      100,
		})
		if err != nil {
			return nil, err
		}
		var out []domain.Item
		for _, c := range candidates {
			k, ok := c.(*domain.KanjiItem)
			if !ok {
				continue
			}
			if sharesAny(k.OnReadings, v.OnReadings) {
				out = append(out, c)
				if len(out) >= poolStrategyLimit {
					break
				}
			}
		}
		return out, nil
	default:
		return nil, nil
	}
}

// visualCandidates: strategy 4, kanji only. Shares the subject's radical,
// or has a stroke count within +/-2.
func (g *Generator) visualCandidates(subject domain.Item) ([]domain.Item, error) {
	k, ok := subject.(*domain.KanjiItem)
	if !ok {
		return nil, nil
	}
	var out []domain.Item

	if k.Radical != nil {
		byRadical, err := g.catalog.List(storage.ListItemsFilter{
			Kind:       string(domain.KindKanji),
			Radical:    k.Radical,
			ExcludeIDs: []int{subject.ItemID()},
			Limit:      poolStrategyLimit,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, byRadical...)
	}

	if k.StrokeCount != nil {
		min := *k.StrokeCount - 2
		max := *k.StrokeCount + 2
		byStroke, err := g.catalog.List(storage.ListItemsFilter{
			Kind:           string(domain.KindKanji),
			StrokeCountMin: &min,
			StrokeCountMax: &max,
			ExcludeIDs:     []int{subject.ItemID()},
			Limit:          poolStrategyLimit,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, byStroke...)
	}

	return out, nil
}

// sampleThreeDistinct shuffles and deduplicates pool by displayed text,
// samples three options distinct from each other and from correct, and
// falls back to random same-kind items until four unique display strings
// exist. Returns Unavailable if the entire catalog cannot supply them.
func (g *Generator) sampleThreeDistinct(pool []domain.Item, correct string, subject domain.Item, resolved domain.QuestionType, lang domain.Language) ([3]string, error) {
	var result [3]string

	seen := map[string]bool{correct: true}
	var chosen []string

	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, item := range pool {
		if len(chosen) == 3 {
			break
		}
		text, ok := displayString(item, resolved, lang)
		if !ok || seen[text] {
			continue
		}
		seen[text] = true
		chosen = append(chosen, text)
	}

	if len(chosen) < 3 {
		fallback, err := g.catalog.List(storage.ListItemsFilter{
			Kind:       string(subject.Kind()),
			ExcludeIDs: []int{subject.ItemID()},
			Limit:      0,
		})
		if err != nil {
			return result, err
		}
		g.rng.Shuffle(len(fallback), func(i, j int) { fallback[i], fallback[j] = fallback[j], fallback[i] })
		for _, item := range fallback {
			if len(chosen) == 3 {
				break
			}
			text, ok := displayString(item, resolved, lang)
			if !ok || seen[text] {
				continue
			}
			seen[text] = true
			chosen = append(chosen, text)
		}
	}

	if len(chosen) < 3 {
		return result, apperr.New(apperr.Unavailable, "fewer than four unique display strings available in catalog")
	}

	copy(result[:], chosen)
	return result, nil
}

func sharesAny(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if set[s] {
			return true
		}
	}
	return false
}

func firstNRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) < n {
		return ""
	}
	return string(runes[:n])
}
