// Package catalog is the read-only item lookup layer consumed by the MCQ
// generator and the CLI (spec.md §6's "catalog read API"); the statistics
// package reads storage.Store directly.
// It is a thin typed wrapper over internal/storage, kept deliberately
// free of business logic: the teacher's storage.Storage port already draws
// this line between "typed reads" and "the service that interprets them."
package catalog

import (
	"github.com/kaedesrs/kotoba/internal/domain"
	"github.com/kaedesrs/kotoba/internal/storage"
)

// Reader is the surface the generator package depends on,
// so tests can substitute a fake catalog without a real database.
type Reader interface {
	Get(id int, kind domain.ItemKind) (domain.Item, error)
	List(filter storage.ListItemsFilter) ([]domain.Item, error)
}

// Catalog wraps a storage.Store.
type Catalog struct {
	store storage.Store
}

func New(store storage.Store) *Catalog {
	return &Catalog{store: store}
}

func (c *Catalog) Get(id int, kind domain.ItemKind) (domain.Item, error) {
	return c.store.GetItem(id, kind)
}

// List implements list_items(kind, jlpt_level?, reading_prefix?,
// meaning_substring?, radical?, stroke_count_range?, exclude_ids?, limit?)
// with conjunctive filter composition (spec.md §6).
func (c *Catalog) List(filter storage.ListItemsFilter) ([]domain.Item, error) {
	return c.store.ListItems(filter)
}

var _ Reader = (*Catalog)(nil)
