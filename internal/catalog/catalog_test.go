package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/storage"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestList_FiltersByJLPTLevel(t *testing.T) {
	cat := newTestCatalog(t)

	for i, lvl := range []domain.JLPTLevel{domain.N5, domain.N5, domain.N4} {
		item := &domain.VocabItem{
			JLPT: lvl, Surface: rune2str('あ' + rune(i)), Reading: "あ",
			Meanings: map[domain.Language][]string{domain.LangEN: {"x"}},
		}
		require.NoError(t, cat.store.CreateVocabItem(item))
	}

	n5 := string(domain.N5)
	items, err := cat.List(storage.ListItemsFilter{Kind: string(domain.KindVocab), JLPTLevel: &n5})
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestList_MeaningSubstringScopedByLanguage(t *testing.T) {
	cat := newTestCatalog(t)

	item := &domain.VocabItem{
		JLPT: domain.N5, Surface: "猫", Reading: "ねこ",
		Meanings: map[domain.Language][]string{
			domain.LangEN: {"cat"},
			domain.LangVI: {"con mèo"},
		},
	}
	require.NoError(t, cat.store.CreateVocabItem(item))

	substr := "cat"

	// The subject's own meanings blob contains "cat" under "en", but "vi"'s
	// array is "con mèo" — scoping to vi must not pick up the en collision.
	matchesVI, err := cat.List(storage.ListItemsFilter{
		Kind:             string(domain.KindVocab),
		MeaningSubstring: &substr,
		Language:         string(domain.LangVI),
	})
	require.NoError(t, err)
	require.Empty(t, matchesVI)

	matchesEN, err := cat.List(storage.ListItemsFilter{
		Kind:             string(domain.KindVocab),
		MeaningSubstring: &substr,
		Language:         string(domain.LangEN),
	})
	require.NoError(t, err)
	require.Len(t, matchesEN, 1)
}

func TestGet_NotFound(t *testing.T) {
	cat := newTestCatalog(t)
	_, err := cat.Get(999, domain.KindVocab)
	require.Error(t, err)
}

func rune2str(r rune) string { return string(r) }
