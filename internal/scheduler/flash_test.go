package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
	"github.com/kaedesrs/kotoba/internal/storage"
)

func newTestStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedItem(t *testing.T, db *storage.DB) *domain.VocabItem {
	t.Helper()
	item := &domain.VocabItem{
		JLPT: domain.N5, Surface: "猫", Reading: "ねこ",
		Meanings: map[domain.Language][]string{domain.LangEN: {"cat"}},
	}
	require.NoError(t, db.CreateVocabItem(item))
	return item
}

func TestFlashScheduler_CreateReview_IdempotentConflict(t *testing.T) {
	db := newTestStore(t)
	item := seedItem(t, db)
	engine := fsrsengine.New(fsrsengine.DefaultConfig(), nil)
	sched := NewFlashScheduler(db, engine)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := sched.CreateReview(item.ID, domain.KindVocab, now)
	require.NoError(t, err)

	_, err = sched.CreateReview(item.ID, domain.KindVocab, now)
	require.Error(t, err)
}

func TestFlashScheduler_CreateReview_ItemNotFound(t *testing.T) {
	db := newTestStore(t)
	engine := fsrsengine.New(fsrsengine.DefaultConfig(), nil)
	sched := NewFlashScheduler(db, engine)

	_, err := sched.CreateReview(999, domain.KindVocab, time.Now())
	require.Error(t, err)
}

func TestFlashScheduler_ApplyAdvancesCard(t *testing.T) {
	db := newTestStore(t)
	item := seedItem(t, db)
	cfg := fsrsengine.DefaultConfig()
	cfg.EnableFuzzing = false
	engine := fsrsengine.New(cfg, nil)
	sched := NewFlashScheduler(db, engine)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	reviewID, err := sched.CreateReview(item.ID, domain.KindVocab, now)
	require.NoError(t, err)

	updated, err := sched.Apply(reviewID, domain.Good, nil, now)
	require.NoError(t, err)
	require.Equal(t, 1, updated.ReviewCount)
	require.True(t, updated.Due.After(now))
}

func TestFlashScheduler_Due_FilterComposition(t *testing.T) {
	db := newTestStore(t)
	cfg := fsrsengine.DefaultConfig()
	engine := fsrsengine.New(cfg, nil)
	sched := NewFlashScheduler(db, engine)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	n5Items := 3
	for i := 0; i < n5Items; i++ {
		item := &domain.VocabItem{
			JLPT: domain.N5, Surface: string(rune('亜' + i)), Reading: "あ",
			Meanings: map[domain.Language][]string{domain.LangEN: {"x"}},
		}
		require.NoError(t, db.CreateVocabItem(item))
		_, err := sched.CreateReview(item.ID, domain.KindVocab, now)
		require.NoError(t, err)
	}
	n4Item := &domain.VocabItem{
		JLPT: domain.N4, Surface: "違", Reading: "ちがう",
		Meanings: map[domain.Language][]string{domain.LangEN: {"different"}},
	}
	require.NoError(t, db.CreateVocabItem(n4Item))
	_, err := sched.CreateReview(n4Item.ID, domain.KindVocab, now)
	require.NoError(t, err)

	n5 := string(domain.N5)
	due, err := sched.Due(0, &n5, nil, now)
	require.NoError(t, err)
	require.Len(t, due, n5Items)
}
