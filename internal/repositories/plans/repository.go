// Package plans persists the planner's documents in named slots: the plan
// collection, the favorites list and the single draft day.
package plans

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/slots"
	"github.com/dmitrijs2005/tripkeeper/internal/transfer"
)

// Slot names.
const (
	CollectionSlot = "jeju-travel-plans"
	FavoritesSlot  = "jeju-favorites"
	DraftSlot      = "jeju-plans"
)

// Repository is what the planner service needs from storage.
type Repository interface {
	Load(ctx context.Context) ([]models.TravelPlan, error)
	Save(ctx context.Context, plans []models.TravelPlan) error
	LoadFavorites(ctx context.Context) ([]transfer.Favorite, error)
	SaveFavorites(ctx context.Context, favs []transfer.Favorite) error
	LoadDraft(ctx context.Context) (*transfer.ItemsDocument, error)
	SaveDraft(ctx context.Context, doc transfer.ItemsDocument) error
	DiscardDraft(ctx context.Context) error
	Usage(ctx context.Context) ([]SlotUsage, error)
	Reset(ctx context.Context) error
}

// SlotUsage is the stored size of one slot.
type SlotUsage struct {
	Name  string
	Bytes int
}

// SlotRepository stores each document as JSON in a slots.Repository.
type SlotRepository struct {
	store slots.Repository
	loc   *time.Location
}

// NewSlotRepository reads offset-less timestamps in loc (time.Local if nil).
func NewSlotRepository(store slots.Repository, loc *time.Location) *SlotRepository {
	if loc == nil {
		loc = time.Local
	}
	return &SlotRepository{store: store, loc: loc}
}

func corrupt(op string, err error) error {
	return &common.PersistenceError{Kind: common.PersistenceCorrupt, Op: op, Err: err}
}

// Load returns the stored collection. An absent slot is an empty collection.
// Undecodable data also yields an empty collection, together with a corrupt
// PersistenceError so the caller can tell the two apart.
func (r *SlotRepository) Load(ctx context.Context) ([]models.TravelPlan, error) {
	data, err := r.store.Get(ctx, CollectionSlot)
	if err != nil {
		return []models.TravelPlan{}, err
	}
	if data == nil {
		return []models.TravelPlan{}, nil
	}
	plans, err := transfer.DecodeCollection(data, r.loc)
	if err != nil {
		return []models.TravelPlan{}, corrupt("load plans", err)
	}
	return plans, nil
}

// Save overwrites the collection slot.
func (r *SlotRepository) Save(ctx context.Context, plans []models.TravelPlan) error {
	data, err := transfer.EncodeCollection(plans)
	if err != nil {
		return &common.PersistenceError{Kind: common.PersistenceWrite, Op: "encode plans", Err: err}
	}
	return r.store.Set(ctx, CollectionSlot, data)
}

// LoadFavorites reads the favorites slot.
//
// Parameters:
//
//	ctx  context for the underlying store
//
// Returns:
//
//	The saved snapshots in the order they were added, empty when the slot
//	is absent. The error is the store error, or a corrupt PersistenceError
//	when the slot cannot be decoded.
func (r *SlotRepository) LoadFavorites(ctx context.Context) ([]transfer.Favorite, error) {
	data, err := r.store.Get(ctx, FavoritesSlot)
	if err != nil || data == nil {
		return []transfer.Favorite{}, err
	}
	favs, err := transfer.DecodeFavorites(data, r.loc)
	if err != nil {
		return []transfer.Favorite{}, corrupt("load favorites", err)
	}
	return favs, nil
}

// SaveFavorites overwrites the favorites slot with favs.
func (r *SlotRepository) SaveFavorites(ctx context.Context, favs []transfer.Favorite) error {
	data, err := transfer.EncodeFavorites(favs)
	if err != nil {
		return &common.PersistenceError{Kind: common.PersistenceWrite, Op: "encode favorites", Err: err}
	}
	return r.store.Set(ctx, FavoritesSlot, data)
}

// LoadDraft returns nil when no draft was saved.
func (r *SlotRepository) LoadDraft(ctx context.Context) (*transfer.ItemsDocument, error) {
	data, err := r.store.Get(ctx, DraftSlot)
	if err != nil || data == nil {
		return nil, err
	}
	doc, err := transfer.DecodeItems(data, transfer.ImportOptions{Location: r.loc})
	if err != nil {
		return nil, corrupt("load draft", err)
	}
	return &doc, nil
}

func (r *SlotRepository) SaveDraft(ctx context.Context, doc transfer.ItemsDocument) error {
	doc.ExportDate = time.Time{}
	data, err := transfer.EncodeItems(doc)
	if err != nil {
		return &common.PersistenceError{Kind: common.PersistenceWrite, Op: "encode draft", Err: err}
	}
	return r.store.Set(ctx, DraftSlot, data)
}

// DiscardDraft removes the draft slot. Discarding when no draft exists is not
// an error.
func (r *SlotRepository) DiscardDraft(ctx context.Context) error {
	return r.store.Delete(ctx, DraftSlot)
}

// Usage reports every stored slot with its size, sorted by name.
func (r *SlotRepository) Usage(ctx context.Context) ([]SlotUsage, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SlotUsage, 0, len(all))
	for name, data := range all {
		out = append(out, SlotUsage{Name: name, Bytes: len(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Reset empties the store: plans, favorites and the draft.
func (r *SlotRepository) Reset(ctx context.Context) error {
	return r.store.Clear(ctx)
}
