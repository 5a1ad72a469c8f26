package main

import (
	"time"

	"github.com/kaedesrs/kotoba/internal/apperr"
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/scheduler"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// reviewCreator is the shape create_review(item_id, item_kind) shares across
// FlashScheduler and MCQScheduler (spec.md §4.3/§4.4), so ensureReviews works
// against either without duplicating the bootstrap loop.
type reviewCreator interface {
	CreateReview(itemID int, kind domain.ItemKind, now time.Time) (int, error)
}

// ensureReviews mints a Review for every catalog item matching kind/level
// that does not already have one in this scheduler's mode. The catalog
// itself is populated by an external importer (spec.md §1's out-of-scope
// collaborator); this is the one place the CLI bridges "item exists" to
// "item is trackable," the way the teacher's deck-install step turned
// installed card files into schedulable Cards.
func ensureReviews(app *App, sched reviewCreator, kind *string, level *string, now time.Time) error {
	filter := storage.ListItemsFilter{}
	if kind != nil {
		filter.Kind = *kind
	}
	if level != nil {
		filter.JLPTLevel = level
	}

	if filter.Kind != "" {
		return ensureReviewsForKind(app, sched, domain.ItemKind(filter.Kind), filter, now)
	}

	for _, k := range []domain.ItemKind{domain.KindVocab, domain.KindKanji} {
		kindFilter := filter
		kindFilter.Kind = string(k)
		if err := ensureReviewsForKind(app, sched, k, kindFilter, now); err != nil {
			return err
		}
	}
	return nil
}

func ensureReviewsForKind(app *App, sched reviewCreator, kind domain.ItemKind, filter storage.ListItemsFilter, now time.Time) error {
	items, err := app.Catalog.List(filter)
	if err != nil {
		return err
	}
	for _, item := range items {
		if _, err := sched.CreateReview(item.ItemID(), kind, now); err != nil && !apperr.IsConflict(err) {
			return err
		}
	}
	return nil
}

var _ reviewCreator = (*scheduler.FlashScheduler)(nil)
var _ reviewCreator = (*scheduler.MCQScheduler)(nil)
