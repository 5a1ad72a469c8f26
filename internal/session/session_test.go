package session

import (
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaedesrs/kotoba/internal/catalog"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
	"github.com/kaedesrs/kotoba/internal/mcqgen"
	"github.com/kaedesrs/kotoba/internal/scheduler"
	"github.com/kaedesrs/kotoba/internal/storage"
)

func newTestStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
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

func TestFlashService_FullPass(t *testing.T) {
	db := newTestStore(t)
	item := seedVocab(t, db, "猫", "ねこ", "cat")
	cfg := fsrsengine.DefaultConfig()
	cfg.EnableFuzzing = false
	engine := fsrsengine.New(cfg, nil)
	sched := scheduler.NewFlashScheduler(db, engine)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := sched.CreateReview(item.ID, domain.KindVocab, now)
	require.NoError(t, err)

	svc := NewFlashService(sched)
	sess, err := svc.Start(Options{MaxItems: 10}, now)
	require.NoError(t, err)
	require.Equal(t, 1, sess.ItemsRemaining)

	review, err := svc.Next(sess.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, review.ItemID)

	require.NoError(t, svc.SubmitRating(sess.ID, review.ID, domain.Good, nil, now))

	_, err = svc.Next(sess.ID)
	require.Error(t, err, "queue should be empty after the only review is submitted")

	stats, err := svc.End(sess.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, stats.ItemsReviewed)
	require.Equal(t, 1, stats.RatingCounts[domain.Good])
}

func TestMCQService_FullPass(t *testing.T) {
	db := newTestStore(t)
	item := seedVocab(t, db, "猫", "ねこ", "cat")
	seedVocab(t, db, "犬", "いぬ", "dog")
	seedVocab(t, db, "鳥", "とり", "bird")
	seedVocab(t, db, "魚", "さかな", "fish")
	engine := fsrsengine.New(fsrsengine.DefaultConfig(), nil)
	sched := scheduler.NewMCQScheduler(db, engine)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := sched.CreateReview(item.ID, domain.KindVocab, now)
	require.NoError(t, err)

	cat := catalog.New(db)
	gen := mcqgen.New(cat, rand.New(rand.NewSource(1)))
	svc := NewMCQService(sched, gen, domain.LangEN, domain.Mixed)

	sess, err := svc.Start(Options{MaxItems: 10}, now)
	require.NoError(t, err)
	require.Equal(t, 1, sess.ItemsRemaining)

	review, question, err := svc.Next(sess.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, review.ItemID)
	require.Len(t, question.Options, 4)

	require.NoError(t, svc.SubmitAnswer(sess.ID, review.ID, question.CorrectIndex, nil, now))

	stats, err := svc.End(sess.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, stats.ItemsReviewed)
	require.Equal(t, 1, stats.CorrectCount)
	require.Equal(t, 0, stats.IncorrectCount)
}
