// Package services holds the planner service: it owns the in-memory plan
// collection, runs itinerary operations against it and writes the collection
// back after every successful mutation.
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/itinerary"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/query"
	"github.com/dmitrijs2005/tripkeeper/internal/reorder"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/plans"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "PlannerService"

// Options tunes a PlannerService.
type Options struct {
	// ViewCacheTTL bounds how long derived plan lists are memoised. Zero
	// disables caching.
	ViewCacheTTL time.Duration
	// Location is used for calendar-day grouping and for imported timestamps
	// that carry no offset. Nil means time.Local.
	Location *time.Location
}

// PlannerService is not safe for concurrent use; one caller drives it.
type PlannerService struct {
	repo   plans.Repository
	engine *itinerary.Engine
	log    logging.Logger
	tracer trace.Tracer
	views  *cache.Cache
	loc    *time.Location

	plans []models.TravelPlan
	dirty bool
}

// NewPlannerService builds the service around an empty collection; call Load
// before use.
//
// Parameters:
//
//	repo    storage for the collection, favorites and draft
//	engine  the itinerary engine that validates and applies mutations
//	log     structured logger
//	opts    view cache lifetime and the planner timezone
//
// Returns:
//
//	A service whose derived plan lists are cached for opts.ViewCacheTTL,
//	or never cached when the TTL is zero.
func NewPlannerService(repo plans.Repository, engine *itinerary.Engine, log logging.Logger, opts Options) *PlannerService {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	s := &PlannerService{
		repo:   repo,
		engine: engine,
		log:    log,
		tracer: otel.Tracer(tracerName),
		loc:    loc,
		plans:  []models.TravelPlan{},
	}
	if opts.ViewCacheTTL > 0 {
		s.views = cache.New(opts.ViewCacheTTL, 2*opts.ViewCacheTTL)
	}
	return s
}

// Location is the zone used for day grouping.
func (s *PlannerService) Location() *time.Location { return s.loc }

// Now reads the engine clock.
func (s *PlannerService) Now() time.Time { return s.engine.Now().In(s.loc) }

func (s *PlannerService) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Load replaces the in-memory collection with the stored one. A corrupt store
// leaves an empty collection and still returns the error.
func (s *PlannerService) Load(ctx context.Context) error {
	ctx, span := s.start(ctx, "Load")
	defer span.End()

	loaded, err := s.repo.Load(ctx)
	if loaded == nil {
		loaded = []models.TravelPlan{}
	}
	s.plans = loaded
	s.dirty = false
	s.invalidate()

	if err != nil {
		if common.IsCorrupt(err) {
			s.log.Warn(ctx, "stored plans unreadable, starting empty", "error", err)
		} else {
			s.log.Error(ctx, "load plans failed", "error", err)
		}
		return fail(span, fmt.Errorf("load plans: %w", err))
	}

	span.SetAttributes(attribute.Int("plans.count", len(s.plans)))
	s.log.Debug(ctx, "plans loaded", "count", len(s.plans))
	return nil
}

// Flush writes the collection to the store. After a failed flush it can be
// called again with the same in-memory state.
func (s *PlannerService) Flush(ctx context.Context) error {
	ctx, span := s.start(ctx, "Flush", attribute.Int("plans.count", len(s.plans)))
	defer span.End()

	if err := s.repo.Save(ctx, s.plans); err != nil {
		s.dirty = true
		s.log.Error(ctx, "flush failed, in-memory state kept", "error", err)
		return fail(span, fmt.Errorf("save plans: %w", err))
	}
	s.dirty = false
	return nil
}

// Dirty reports whether the last flush failed.
func (s *PlannerService) Dirty() bool { return s.dirty }

func (s *PlannerService) invalidate() {
	if s.views != nil {
		s.views.Flush()
	}
}

// commit runs after every successful mutation.
func (s *PlannerService) commit(ctx context.Context) error {
	s.invalidate()
	return s.Flush(ctx)
}

func (s *PlannerService) index(id string) (int, error) {
	idx := itinerary.PlanIndex(s.plans, id)
	if idx < 0 {
		return -1, &common.NotFoundError{Kind: "plan", ID: id}
	}
	return idx, nil
}

// Plans returns a copy of the collection in stored order.
func (s *PlannerService) Plans() []models.TravelPlan {
	out := make([]models.TravelPlan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p.Clone())
	}
	return out
}

// Plan returns a copy of one plan.
func (s *PlannerService) Plan(id string) (models.TravelPlan, error) {
	idx, err := s.index(id)
	if err != nil {
		return models.TravelPlan{}, err
	}
	return s.plans[idx].Clone(), nil
}

// ResolvePlan finds a plan by exact id or by unique id prefix.
func (s *PlannerService) ResolvePlan(ref string) (models.TravelPlan, error) {
	if p, err := s.Plan(ref); err == nil {
		return p, nil
	}
	var found []int
	for i, p := range s.plans {
		if ref != "" && strings.HasPrefix(p.ID, ref) {
			found = append(found, i)
		}
	}
	switch len(found) {
	case 1:
		return s.plans[found[0]].Clone(), nil
	case 0:
		return models.TravelPlan{}, &common.NotFoundError{Kind: "plan", ID: ref}
	}
	return models.TravelPlan{}, common.NewValidationError("plan", fmt.Sprintf("id prefix %q is ambiguous", ref))
}

// QueryPlans applies q to the collection, memoising the result until the next
// mutation.
func (s *PlannerService) QueryPlans(ctx context.Context, q query.PlanQuery) []models.TravelPlan {
	_, span := s.start(ctx, "QueryPlans", attribute.String("query", q.Key()))
	defer span.End()

	if s.views != nil {
		if cached, found := s.views.Get(q.Key()); found {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return clonePlans(cached.([]models.TravelPlan))
		}
	}

	result := q.Apply(s.plans)
	if s.views != nil {
		s.views.Set(q.Key(), clonePlans(result), cache.DefaultExpiration)
	}
	span.SetAttributes(attribute.Int("plans.count", len(result)))
	return clonePlans(result)
}

func clonePlans(in []models.TravelPlan) []models.TravelPlan {
	out := make([]models.TravelPlan, 0, len(in))
	for _, p := range in {
		out = append(out, p.Clone())
	}
	return out
}

// RecentPlans lists up to n plans, most recently updated first.
func (s *PlannerService) RecentPlans(n int) []models.TravelPlan {
	return clonePlans(query.Recent(s.plans, n))
}

// CreatePlan adds a new empty plan. When the flush fails the plan is still
// created and returned alongside the error.
func (s *PlannerService) CreatePlan(ctx context.Context, in models.NewPlan) (models.TravelPlan, error) {
	ctx, span := s.start(ctx, "CreatePlan")
	defer span.End()

	p, err := s.engine.CreatePlan(in)
	if err != nil {
		return models.TravelPlan{}, fail(span, err)
	}
	s.plans = append(s.plans, p)
	span.SetAttributes(attribute.String("plan.id", p.ID))
	s.log.Info(ctx, "plan created", "plan_id", p.ID, "days", p.TotalDays)

	return p.Clone(), s.commit(ctx)
}

// UpdatePlan merges patch into the plan.
func (s *PlannerService) UpdatePlan(ctx context.Context, id string, patch itinerary.PlanPatch) (models.TravelPlan, error) {
	ctx, span := s.start(ctx, "UpdatePlan", attribute.String("plan.id", id))
	defer span.End()

	idx, err := s.index(id)
	if err != nil {
		return models.TravelPlan{}, fail(span, err)
	}
	if err := s.engine.UpdatePlan(&s.plans[idx], patch); err != nil {
		return models.TravelPlan{}, fail(span, err)
	}
	s.log.Info(ctx, "plan updated", "plan_id", id)
	return s.plans[idx].Clone(), s.commit(ctx)
}

// DeletePlan removes a plan and its items. Unknown ids are a no-op reported
// as false.
func (s *PlannerService) DeletePlan(ctx context.Context, id string) (bool, error) {
	ctx, span := s.start(ctx, "DeletePlan", attribute.String("plan.id", id))
	defer span.End()

	next, removed := itinerary.DeletePlan(s.plans, id)
	if !removed {
		s.log.Debug(ctx, "delete of unknown plan ignored", "plan_id", id)
		return false, nil
	}
	s.plans = next
	s.log.Info(ctx, "plan deleted", "plan_id", id)
	return true, s.commit(ctx)
}

// DuplicatePlan appends a deep copy of the plan.
func (s *PlannerService) DuplicatePlan(ctx context.Context, id string) (models.TravelPlan, error) {
	ctx, span := s.start(ctx, "DuplicatePlan", attribute.String("plan.id", id))
	defer span.End()

	idx, err := s.index(id)
	if err != nil {
		return models.TravelPlan{}, fail(span, err)
	}
	dup := s.engine.DuplicatePlan(s.plans[idx])
	s.plans = append(s.plans, dup)
	s.log.Info(ctx, "plan duplicated", "plan_id", id, "copy_id", dup.ID)
	return dup.Clone(), s.commit(ctx)
}

// mutatePlan runs fn on the stored plan and commits when fn reports a change.
func (s *PlannerService) mutatePlan(ctx context.Context, span trace.Span, id string, fn func(p *models.TravelPlan) (bool, error)) error {
	idx, err := s.index(id)
	if err != nil {
		return fail(span, err)
	}
	changed, err := fn(&s.plans[idx])
	if err != nil {
		return fail(span, err)
	}
	if !changed {
		return nil
	}
	return s.commit(ctx)
}

// DefaultItemTime is 09:00 on day.
func DefaultItemTime(day time.Time) time.Time {
	return itinerary.DefaultItemTime(day)
}

// AddItem appends a validated item to the plan.
func (s *PlannerService) AddItem(ctx context.Context, planID string, in models.NewItem) (models.PlanItem, error) {
	ctx, span := s.start(ctx, "AddItem", attribute.String("plan.id", planID))
	defer span.End()

	var added models.PlanItem
	err := s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		it, err := s.engine.AddItem(p, in)
		if err != nil {
			return false, err
		}
		added = it
		s.log.Info(ctx, "item added", "plan_id", planID, "item_id", it.ID)
		return true, nil
	})
	return added, err
}

// QuickAdd adds a place with defaults: now, attraction, medium priority.
func (s *PlannerService) QuickAdd(ctx context.Context, planID, title, location string) (models.PlanItem, error) {
	if strings.TrimSpace(location) == "" {
		location = title
	}
	return s.AddItem(ctx, planID, models.NewItem{
		Title:    title,
		Location: location,
		Time:     s.Now(),
		Category: models.CategoryAttraction,
		Priority: models.PriorityMedium,
	})
}

// UpdateItem merges patch into an item. An unknown item id is a
// NotFoundError and nothing is written.
func (s *PlannerService) UpdateItem(ctx context.Context, planID, itemID string, patch itinerary.ItemPatch) (models.PlanItem, error) {
	ctx, span := s.start(ctx, "UpdateItem", attribute.String("plan.id", planID), attribute.String("item.id", itemID))
	defer span.End()

	var updated models.PlanItem
	err := s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		it, err := s.engine.UpdateItem(p, itemID, patch)
		if err != nil {
			return false, err
		}
		updated = it
		s.log.Info(ctx, "item updated", "plan_id", planID, "item_id", itemID)
		return true, nil
	})
	return updated, err
}

// DeleteItem removes an item; an unknown id is a silent no-op.
func (s *PlannerService) DeleteItem(ctx context.Context, planID, itemID string) (bool, error) {
	ctx, span := s.start(ctx, "DeleteItem", attribute.String("plan.id", planID), attribute.String("item.id", itemID))
	defer span.End()

	var removed bool
	err := s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		removed = s.engine.DeleteItem(p, itemID)
		if removed {
			s.log.Info(ctx, "item deleted", "plan_id", planID, "item_id", itemID)
		}
		return removed, nil
	})
	return removed, err
}

// ToggleCompletion flips an item's completed flag.
func (s *PlannerService) ToggleCompletion(ctx context.Context, planID, itemID string) (models.PlanItem, error) {
	ctx, span := s.start(ctx, "ToggleCompletion", attribute.String("plan.id", planID), attribute.String("item.id", itemID))
	defer span.End()

	var toggled models.PlanItem
	err := s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		it, err := s.engine.ToggleCompletion(p, itemID)
		if err != nil {
			return false, err
		}
		toggled = it
		s.log.Debug(ctx, "item toggled", "plan_id", planID, "item_id", itemID, "completed", it.IsCompleted)
		return true, nil
	})
	return toggled, err
}

// ReorderItems replaces the manual order of a plan's items.
func (s *PlannerService) ReorderItems(ctx context.Context, planID string, order []string) error {
	ctx, span := s.start(ctx, "ReorderItems", attribute.String("plan.id", planID))
	defer span.End()

	return s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		if err := s.engine.ReorderItems(p, order); err != nil {
			return false, err
		}
		return true, nil
	})
}

// MoveItem drags the item at from to position to.
func (s *PlannerService) MoveItem(ctx context.Context, planID string, from, to int) error {
	ctx, span := s.start(ctx, "MoveItem", attribute.String("plan.id", planID), attribute.Int("from", from), attribute.Int("to", to))
	defer span.End()

	return s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		if err := s.engine.MoveItem(p, from, to); err != nil {
			return false, err
		}
		return from != to, nil
	})
}

// DropItem finishes a drag begun with d.Start over the plan's items.
func (s *PlannerService) DropItem(ctx context.Context, planID string, d *reorder.DragSession, to int) error {
	ctx, span := s.start(ctx, "DropItem", attribute.String("plan.id", planID), attribute.Int("to", to))
	defer span.End()

	return s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		return s.engine.Drop(p, d, to)
	})
}

// ResolveItem finds an item of a plan by exact id, unique id prefix, or its
// 1-based position in the manual order.
func ResolveItem(p models.TravelPlan, ref string) (models.PlanItem, error) {
	if idx := p.ItemIndex(ref); idx >= 0 {
		return p.PlanItems[idx], nil
	}
	if pos, err := strconv.Atoi(ref); err == nil {
		if pos >= 1 && pos <= len(p.PlanItems) {
			return p.PlanItems[pos-1], nil
		}
		return models.PlanItem{}, &common.NotFoundError{Kind: "item", ID: ref}
	}
	var hit *models.PlanItem
	for i := range p.PlanItems {
		if ref != "" && strings.HasPrefix(p.PlanItems[i].ID, ref) {
			if hit != nil {
				return models.PlanItem{}, common.NewValidationError("item", fmt.Sprintf("id prefix %q is ambiguous", ref))
			}
			hit = &p.PlanItems[i]
		}
	}
	if hit == nil {
		return models.PlanItem{}, &common.NotFoundError{Kind: "item", ID: ref}
	}
	return *hit, nil
}
