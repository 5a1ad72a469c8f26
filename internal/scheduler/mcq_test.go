package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/fsrsengine"
)

func TestMCQScheduler_ApplyCorrectness(t *testing.T) {
	db := newTestStore(t)
	item := seedItem(t, db)
	cfg := fsrsengine.DefaultConfig()
	cfg.EnableFuzzing = false
	engine := fsrsengine.New(cfg, nil)
	sched := NewMCQScheduler(db, engine)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	reviewID, err := sched.CreateReview(item.ID, domain.KindVocab, now)
	require.NoError(t, err)

	updated, err := sched.Apply(reviewID, 2, 2, nil, now)
	require.NoError(t, err)
	require.Equal(t, 1, updated.ReviewCount)

	wrong, err := sched.Apply(reviewID, 0, 2, nil, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, wrong.ReviewCount)
}

func TestMCQScheduler_IndependentFromFlash(t *testing.T) {
	db := newTestStore(t)
	item := seedItem(t, db)
	engine := fsrsengine.New(fsrsengine.DefaultConfig(), nil)
	flashSched := NewFlashScheduler(db, engine)
	mcqSched := NewMCQScheduler(db, engine)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := flashSched.CreateReview(item.ID, domain.KindVocab, now)
	require.NoError(t, err)

	_, err = mcqSched.ReviewByItem(item.ID, domain.KindVocab)
	require.Error(t, err, "mcq review must not exist just because a flash review does")
}
