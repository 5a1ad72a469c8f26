package mcqgen

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/catalog"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/storage"
)

func newTestCatalog(t *testing.T) (*storage.DB, *catalog.Catalog) {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, catalog.New(db)
}

func seedVocab(t *testing.T, db *storage.DB, surface, reading, meaning string) *domain.VocabItem {
	t.Helper()
	item := &domain.VocabItem{
		JLPT:     domain.N5,
		Surface:  surface,
		Reading:  reading,
		Meanings: map[domain.Language][]string{domain.LangEN: {meaning}},
	}
	require.NoError(t, db.CreateVocabItem(item))
	return item
}

func TestGenerate_WordToMeaning(t *testing.T) {
	db, cat := newTestCatalog(t)
	subject := seedVocab(t, db, "猫", "ねこ", "cat")
	seedVocab(t, db, "犬", "いぬ", "dog")
	seedVocab(t, db, "鳥", "とり", "bird")
	seedVocab(t, db, "魚", "さかな", "fish")

	g := New(cat, rand.New(rand.NewSource(1)))
	q, err := g.Generate(subject.ID, domain.KindVocab, domain.WordToMeaning, domain.LangEN)
	require.NoError(t, err)
	require.Equal(t, domain.WordToMeaning, q.QuestionTypeResolved)
	require.Contains(t, q.Options, "cat")

	seen := map[string]bool{}
	for _, opt := range q.Options {
		require.False(t, seen[opt], "options must be pairwise distinct: %v", q.Options)
		seen[opt] = true
	}
	require.Equal(t, "cat", q.Options[q.CorrectIndex])
}

func TestGenerate_MeaningToWord(t *testing.T) {
	db, cat := newTestCatalog(t)
	subject := seedVocab(t, db, "猫", "ねこ", "cat")
	seedVocab(t, db, "犬", "いぬ", "dog")
	seedVocab(t, db, "鳥", "とり", "bird")
	seedVocab(t, db, "魚", "さかな", "fish")

	g := New(cat, rand.New(rand.NewSource(1)))
	q, err := g.Generate(subject.ID, domain.KindVocab, domain.MeaningToWord, domain.LangEN)
	require.NoError(t, err)
	require.Equal(t, domain.MeaningToWord, q.QuestionTypeResolved)
	require.Equal(t, "cat", q.Prompt)

	// spec.md §4.5: MeaningToWord options are surface strings only, no
	// reading in parentheses.
	require.Contains(t, q.Options, "猫")
	for _, opt := range q.Options {
		require.NotContains(t, opt, "(", "MeaningToWord options must not include reading: %v", q.Options)
	}
	require.Equal(t, "猫", q.Options[q.CorrectIndex])
}

func TestGenerate_ShallowPoolIsUnavailable(t *testing.T) {
	db, cat := newTestCatalog(t)
	subject := seedVocab(t, db, "猫", "ねこ", "cat")
	seedVocab(t, db, "犬", "いぬ", "dog")

	g := New(cat, rand.New(rand.NewSource(1)))
	_, err := g.Generate(subject.ID, domain.KindVocab, domain.WordToMeaning, domain.LangEN)
	require.Error(t, err)
	require.True(t, apperr.IsUnavailable(err))
}

func TestGenerate_UnknownSubjectIsUnavailable(t *testing.T) {
	_, cat := newTestCatalog(t)
	g := New(cat, rand.New(rand.NewSource(1)))
	_, err := g.Generate(999, domain.KindVocab, domain.WordToMeaning, domain.LangEN)
	require.Error(t, err)
	require.True(t, apperr.IsUnavailable(err))
}

// Property test (spec.md §8 "permutation fairness"): over many generations
// of the same fixed subject and pool, the correct option's index should land
// on each of the four slots roughly equally often.
func TestProperty_CorrectIndexIsUniform(t *testing.T) {
	db, cat := newTestCatalog(t)
	subject := seedVocab(t, db, "猫", "ねこ", "cat")
	seedVocab(t, db, "犬", "いぬ", "dog")
	seedVocab(t, db, "鳥", "とり", "bird")
	seedVocab(t, db, "魚", "さかな", "fish")
	seedVocab(t, db, "馬", "うま", "horse")
	seedVocab(t, db, "牛", "うし", "cow")

	const trials = 4000
	counts := [4]int{}
	for i := 0; i < trials; i++ {
		g := New(cat, rand.New(rand.NewSource(int64(i))))
		q, err := g.Generate(subject.ID, domain.KindVocab, domain.WordToMeaning, domain.LangEN)
		require.NoError(t, err)
		counts[q.CorrectIndex]++
	}

	expected := float64(trials) / 4
	// Binomial stddev for p=1/4, n=trials; allow 5 sigma of slack for a
	// deterministic CI-friendly bound.
	stddev := math.Sqrt(float64(trials) * 0.25 * 0.75)
	for i, c := range counts {
		diff := float64(c) - expected
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqualf(t, diff, 5*stddev, "slot %d count %d far from uniform expectation %.1f", i, c, expected)
	}
}

// Property test: generation never returns duplicate option strings,
// regardless of the random seed driving pool shuffling and sampling.
func TestProperty_OptionsAlwaysDistinct(t *testing.T) {
	db, cat := newTestCatalog(t)
	subject := seedVocab(t, db, "猫", "ねこ", "cat")
	seedVocab(t, db, "犬", "いぬ", "dog")
	seedVocab(t, db, "鳥", "とり", "bird")
	seedVocab(t, db, "魚", "さかな", "fish")
	seedVocab(t, db, "馬", "うま", "horse")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("generated options are pairwise distinct", prop.ForAll(
		func(seed int64) bool {
			g := New(cat, rand.New(rand.NewSource(seed)))
			q, err := g.Generate(subject.ID, domain.KindVocab, domain.WordToMeaning, domain.LangEN)
			if err != nil {
				return false
			}
			seen := map[string]bool{}
			for _, opt := range q.Options {
				if seen[opt] {
					return false
				}
				seen[opt] = true
			}
			return true
		},
		gen.Int64Range(0, 1_000_000),
	))

	properties.TestingRun(t)
}
