// Package itinerary holds the mutating operations on plans and their items.
// Every operation validates first and only then touches the plan, so a failed
// call leaves its input unchanged.
package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/reorder"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/google/uuid"
)

// CopySuffix is appended to the title of a duplicated plan.
const CopySuffix = " (copy)"

// Engine carries the clock and id source shared by all operations.
type Engine struct {
	Now   func() time.Time
	NewID func() string
}

// New returns an engine using the wall clock and random UUIDs.
func New() *Engine {
	return &Engine{Now: time.Now, NewID: uuid.NewString}
}

// PlanPatch lists the plan fields to change; nil means keep.
type PlanPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	IsPublic    *bool
	Tags        *[]string
	CoverImage  *string
}

// ItemPatch lists the item fields to change; nil means keep. The id is
// immutable and therefore absent.
type ItemPatch struct {
	Title       *string
	Location    *string
	Time        *time.Time
	Category    *models.Category
	Priority    *models.Priority
	Description *string
	IsCompleted *bool
}

// CreatePlan builds a new empty plan.
func (e *Engine) CreatePlan(in models.NewPlan) (models.TravelPlan, error) {
	if err := in.Validate(); err != nil {
		return models.TravelPlan{}, err
	}
	now := e.Now()
	p := models.TravelPlan{
		ID:          e.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        models.NormalizeTags(in.Tags),
		CoverImage:  in.CoverImage,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		IsPublic:    in.IsPublic,
		PlanItems:   []models.PlanItem{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.RefreshTotalDays()
	return p, nil
}

// UpdatePlan merges patch into p.
func (e *Engine) UpdatePlan(p *models.TravelPlan, patch PlanPatch) error {
	next := p.Clone()
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.StartDate != nil {
		next.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		next.EndDate = *patch.EndDate
	}
	if patch.IsPublic != nil {
		next.IsPublic = *patch.IsPublic
	}
	if patch.Tags != nil {
		next.Tags = models.NormalizeTags(*patch.Tags)
	}
	if patch.CoverImage != nil {
		next.CoverImage = *patch.CoverImage
	}
	if err := next.Validate(); err != nil {
		return err
	}

	next.RefreshTotalDays()
	next.UpdatedAt = e.Now()
	*p = next
	return nil
}

// DuplicatePlan deep-copies p under fresh ids with every item reset to
// incomplete.
func (e *Engine) DuplicatePlan(p models.TravelPlan) models.TravelPlan {
	now := e.Now()
	c := p.Clone()
	c.ID = e.NewID()
	c.Title = p.Title + CopySuffix
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.PlanItems == nil {
		c.PlanItems = []models.PlanItem{}
	}
	for i := range c.PlanItems {
		c.PlanItems[i].ID = e.NewID()
		c.PlanItems[i].IsCompleted = false
	}
	c.RefreshTotalDays()
	return c
}

// AddItem validates in and appends it to p.
func (e *Engine) AddItem(p *models.TravelPlan, in models.NewItem) (models.PlanItem, error) {
	if err := in.Validate(); err != nil {
		return models.PlanItem{}, err
	}
	it := models.PlanItem{
		ID:          e.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Location:    strings.TrimSpace(in.Location),
		Time:        in.Time,
		Category:    in.Category,
		Priority:    in.Priority,
		Description: in.Description,
	}
	p.PlanItems = append(p.PlanItems, it)
	p.UpdatedAt = e.Now()
	return it, nil
}

// UpdateItem merges patch into the item with the given id.
func (e *Engine) UpdateItem(p *models.TravelPlan, itemID string, patch ItemPatch) (models.PlanItem, error) {
	idx := p.ItemIndex(itemID)
	if idx < 0 {
		return models.PlanItem{}, &common.NotFoundError{Kind: "item", ID: itemID}
	}

	it := p.PlanItems[idx]
	if patch.Title != nil {
		it.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Location != nil {
		it.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Time != nil {
		it.Time = *patch.Time
	}
	if patch.Category != nil {
		it.Category = *patch.Category
	}
	if patch.Priority != nil {
		it.Priority = *patch.Priority
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.IsCompleted != nil {
		it.IsCompleted = *patch.IsCompleted
	}
	if err := it.Validate(); err != nil {
		return models.PlanItem{}, err
	}

	p.PlanItems[idx] = it
	p.UpdatedAt = e.Now()
	return it, nil
}

// AppendItems validates every item and then appends them all. Ids already
// present in p, or repeated within items, are replaced with fresh ones.
func (e *Engine) AppendItems(p *models.TravelPlan, items []models.PlanItem) ([]models.PlanItem, error) {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
	}

	taken := make(map[string]struct{}, len(p.PlanItems)+len(items))
	for _, it := range p.PlanItems {
		taken[it.ID] = struct{}{}
	}
	added := make([]models.PlanItem, 0, len(items))
	for _, it := range items {
		if _, clash := taken[it.ID]; clash || it.ID == "" {
			it.ID = e.NewID()
		}
		taken[it.ID] = struct{}{}
		added = append(added, it)
	}

	p.PlanItems = append(p.PlanItems, added...)
	if len(added) > 0 {
		p.UpdatedAt = e.Now()
	}
	return added, nil
}

// DeleteItem removes the item if present and reports whether it did.
func (e *Engine) DeleteItem(p *models.TravelPlan, itemID string) bool {
	idx := p.ItemIndex(itemID)
	if idx < 0 {
		return false
	}
	items := make([]models.PlanItem, 0, len(p.PlanItems)-1)
	items = append(items, p.PlanItems[:idx]...)
	p.PlanItems = append(items, p.PlanItems[idx+1:]...)
	p.UpdatedAt = e.Now()
	return true
}

// ToggleCompletion flips IsCompleted on the item.
func (e *Engine) ToggleCompletion(p *models.TravelPlan, itemID string) (models.PlanItem, error) {
	idx := p.ItemIndex(itemID)
	if idx < 0 {
		return models.PlanItem{}, &common.NotFoundError{Kind: "item", ID: itemID}
	}
	flipped := !p.PlanItems[idx].IsCompleted
	return e.UpdateItem(p, itemID, ItemPatch{IsCompleted: &flipped})
}

// ReorderItems replaces the item order. order must name every current item
// exactly once.
func (e *Engine) ReorderItems(p *models.TravelPlan, order []string) error {
	if len(order) != len(p.PlanItems) {
		return common.NewValidationError("order", fmt.Sprintf("expected %d ids, got %d", len(p.PlanItems), len(order)))
	}

	byID := make(map[string]models.PlanItem, len(p.PlanItems))
	for _, it := range p.PlanItems {
		byID[it.ID] = it
	}

	items := make([]models.PlanItem, 0, len(order))
	for _, id := range order {
		it, ok := byID[id]
		if !ok {
			return common.NewValidationError("order", fmt.Sprintf("unknown or repeated item id %q", id))
		}
		delete(byID, id)
		items = append(items, it)
	}

	p.PlanItems = items
	p.UpdatedAt = e.Now()
	return nil
}

// MoveItem moves the item at from to position to. Equal indices change
// nothing, not even UpdatedAt.
func (e *Engine) MoveItem(p *models.TravelPlan, from, to int) error {
	moved, err := reorder.Move(p.PlanItems, from, to)
	if err != nil {
		return common.NewValidationError("index", err.Error())
	}
	if from == to {
		return nil
	}
	p.PlanItems = moved
	p.UpdatedAt = e.Now()
	return nil
}

// Drop completes a drag session on p and reports whether the order changed.
func (e *Engine) Drop(p *models.TravelPlan, d *reorder.DragSession, to int) (bool, error) {
	from, moved, err := d.End(to, len(p.PlanItems))
	if err != nil {
		return false, common.NewValidationError("index", err.Error())
	}
	if !moved {
		return false, nil
	}
	return true, e.MoveItem(p, from, to)
}

// DefaultItemTime is the time given to an item added to day without an
// explicit time: 09:00 local to day.
func DefaultItemTime(day time.Time) time.Time {
	return timex.AtClock(day, 9, 0)
}

// PlanIndex returns the position of the plan with id, or -1.
func PlanIndex(plans []models.TravelPlan, id string) int {
	for i := range plans {
		if plans[i].ID == id {
			return i
		}
	}
	return -1
}

// DeletePlan removes the plan with id together with its items. An unknown id
// returns plans unchanged and false.
func DeletePlan(plans []models.TravelPlan, id string) ([]models.TravelPlan, bool) {
	idx := PlanIndex(plans, id)
	if idx < 0 {
		return plans, false
	}
	out := make([]models.TravelPlan, 0, len(plans)-1)
	out = append(out, plans[:idx]...)
	return append(out, plans[idx+1:]...), true
}
