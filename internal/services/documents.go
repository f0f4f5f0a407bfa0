package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/export"
	"github.com/dmitrijs2005/tripkeeper/internal/filex"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/query"
	"github.com/dmitrijs2005/tripkeeper/internal/repositories/plans"
	"github.com/dmitrijs2005/tripkeeper/internal/transfer"
	"go.opentelemetry.io/otel/attribute"
)

// Buckets groups a plan's items by calendar day.
func (s *PlannerService) Buckets(planID string) ([]query.DayBucket, error) {
	p, err := s.Plan(planID)
	if err != nil {
		return nil, err
	}
	return query.BucketByDay(p.PlanItems, s.loc), nil
}

// Timeline counts a plan's items per day of its range.
func (s *PlannerService) Timeline(planID string) ([]query.DayCount, error) {
	p, err := s.Plan(planID)
	if err != nil {
		return nil, err
	}
	return query.Timeline(p), nil
}

func (s *PlannerService) Stats(planID string) (query.Stats, error) {
	p, err := s.Plan(planID)
	if err != nil {
		return query.Stats{}, err
	}
	return query.ItemStats(p), nil
}

// CategoryCounts returns the per-category item counts of a plan, one row per
// category in display order, zero rows included.
func (s *PlannerService) CategoryCounts(planID string) ([]query.CategoryCount, error) {
	p, err := s.Plan(planID)
	if err != nil {
		return nil, err
	}
	return query.CategoryCounts(p.PlanItems), nil
}

// ShareSummary renders the plan as plain text for messaging apps.
func (s *PlannerService) ShareSummary(planID string) (string, error) {
	p, err := s.Plan(planID)
	if err != nil {
		return "", err
	}
	return query.ShareSummary(p), nil
}

func (s *PlannerService) importOptions() transfer.ImportOptions {
	return transfer.ImportOptions{Location: s.loc, NewID: s.engine.NewID}
}

// ExportItems writes the items scheduled on day to dir as a day-scoped
// document and returns the file path.
func (s *PlannerService) ExportItems(ctx context.Context, planID string, day time.Time, dir string) (string, error) {
	ctx, span := s.start(ctx, "ExportItems", attribute.String("plan.id", planID))
	defer span.End()

	p, err := s.Plan(planID)
	if err != nil {
		return "", fail(span, err)
	}
	doc := transfer.ItemsDocument{
		Date:       day,
		Items:      query.ItemsOn(p, day),
		ExportDate: s.Now(),
	}
	data, err := transfer.EncodeItems(doc)
	if err != nil {
		return "", fail(span, fmt.Errorf("encode items: %w", err))
	}
	path, err := filex.WriteFile(dir, transfer.ExportFileName(day), data)
	if err != nil {
		return "", fail(span, err)
	}
	s.log.Info(ctx, "items exported", "plan_id", planID, "count", len(doc.Items), "path", path)
	return path, nil
}

// ImportItems appends the items of a day-scoped document to the plan. The
// document is validated in full first; a rejected document changes nothing.
func (s *PlannerService) ImportItems(ctx context.Context, planID string, data []byte) ([]models.PlanItem, error) {
	ctx, span := s.start(ctx, "ImportItems", attribute.String("plan.id", planID))
	defer span.End()

	if _, err := s.index(planID); err != nil {
		return nil, fail(span, err)
	}
	items, err := transfer.ImportItems(data, s.importOptions())
	if err != nil {
		s.log.Warn(ctx, "import rejected", "plan_id", planID, "error", err)
		return nil, fail(span, err)
	}

	var added []models.PlanItem
	err = s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		var aerr error
		if added, aerr = s.engine.AppendItems(p, items); aerr != nil {
			return false, aerr
		}
		return len(added) > 0, nil
	})
	if added != nil {
		s.log.Info(ctx, "items imported", "plan_id", planID, "count", len(added))
	}
	return added, err
}

// ExportPlan writes the full plan document to dir.
func (s *PlannerService) ExportPlan(ctx context.Context, planID, dir string) (string, error) {
	ctx, span := s.start(ctx, "ExportPlan", attribute.String("plan.id", planID))
	defer span.End()

	p, err := s.Plan(planID)
	if err != nil {
		return "", fail(span, err)
	}
	data, err := transfer.EncodePlan(p)
	if err != nil {
		return "", fail(span, fmt.Errorf("encode plan: %w", err))
	}
	path, err := filex.WriteFile(dir, transfer.PlanFileName(p), data)
	if err != nil {
		return "", fail(span, err)
	}
	s.log.Info(ctx, "plan exported", "plan_id", planID, "path", path)
	return path, nil
}

// ImportPlan adds a plan read from a full plan document under fresh ids.
func (s *PlannerService) ImportPlan(ctx context.Context, data []byte) (models.TravelPlan, error) {
	ctx, span := s.start(ctx, "ImportPlan")
	defer span.End()

	p, err := transfer.DecodePlan(data, s.importOptions())
	if err != nil {
		s.log.Warn(ctx, "plan import rejected", "error", err)
		return models.TravelPlan{}, fail(span, err)
	}
	now := s.engine.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.plans = append(s.plans, p)
	s.log.Info(ctx, "plan imported", "plan_id", p.ID, "items", len(p.PlanItems))
	return p.Clone(), s.commit(ctx)
}

// ExportPDF renders the plan timeline into dir.
func (s *PlannerService) ExportPDF(ctx context.Context, planID, dir string) (string, error) {
	ctx, span := s.start(ctx, "ExportPDF", attribute.String("plan.id", planID))
	defer span.End()

	p, err := s.Plan(planID)
	if err != nil {
		return "", fail(span, err)
	}
	var buf bytes.Buffer
	if err := export.WriteTimeline(&buf, p, s.loc); err != nil {
		return "", fail(span, fmt.Errorf("render pdf: %w", err))
	}
	path, err := filex.WriteFile(dir, export.FileName(p), buf.Bytes())
	if err != nil {
		return "", fail(span, err)
	}
	s.log.Info(ctx, "pdf exported", "plan_id", planID, "path", path)
	return path, nil
}

// Favorites lists saved snapshots, oldest first.
func (s *PlannerService) Favorites(ctx context.Context) ([]transfer.Favorite, error) {
	return s.repo.LoadFavorites(ctx)
}

// SaveFavorite snapshots the plan's items under name (the plan title when
// blank).
func (s *PlannerService) SaveFavorite(ctx context.Context, planID, name string) (transfer.Favorite, error) {
	ctx, span := s.start(ctx, "SaveFavorite", attribute.String("plan.id", planID))
	defer span.End()

	p, err := s.Plan(planID)
	if err != nil {
		return transfer.Favorite{}, fail(span, err)
	}
	favs, err := s.repo.LoadFavorites(ctx)
	if err != nil {
		return transfer.Favorite{}, fail(span, err)
	}
	if strings.TrimSpace(name) == "" {
		name = p.Title
	}
	fav := transfer.Favorite{
		ID:        s.engine.NewID(),
		Name:      strings.TrimSpace(name),
		Items:     p.PlanItems,
		CreatedAt: s.engine.Now(),
	}
	if err := s.repo.SaveFavorites(ctx, append(favs, fav)); err != nil {
		return transfer.Favorite{}, fail(span, err)
	}
	s.log.Info(ctx, "favorite saved", "plan_id", planID, "favorite_id", fav.ID)
	return fav, nil
}

// SaveDraft stores the plan's items of day as the working draft.
func (s *PlannerService) SaveDraft(ctx context.Context, planID string, day time.Time) (int, error) {
	ctx, span := s.start(ctx, "SaveDraft", attribute.String("plan.id", planID))
	defer span.End()

	p, err := s.Plan(planID)
	if err != nil {
		return 0, fail(span, err)
	}
	items := query.ItemsOn(p, day)
	if err := s.repo.SaveDraft(ctx, transfer.ItemsDocument{Date: day, Items: items}); err != nil {
		return 0, fail(span, err)
	}
	return len(items), nil
}

// DiscardDraft drops the saved draft, if any.
func (s *PlannerService) DiscardDraft(ctx context.Context) error {
	ctx, span := s.start(ctx, "DiscardDraft")
	defer span.End()

	if err := s.repo.DiscardDraft(ctx); err != nil {
		return fail(span, err)
	}
	s.log.Info(ctx, "draft discarded")
	return nil
}

// StorageUsage lists the stored slots and their sizes.
func (s *PlannerService) StorageUsage(ctx context.Context) ([]plans.SlotUsage, error) {
	ctx, span := s.start(ctx, "StorageUsage")
	defer span.End()

	usage, err := s.repo.Usage(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	return usage, nil
}

// Reset deletes everything the planner has stored and empties the in-memory
// collection. Sealed stores keep their key material, so the passphrase stays
// valid afterwards.
//
// Parameters:
//
//	ctx  context for the store
//
// Returns:
//
//	The store error, if any. The in-memory collection is left as it was
//	when the store could not be cleared.
func (s *PlannerService) Reset(ctx context.Context) error {
	ctx, span := s.start(ctx, "Reset", attribute.Int("plans.count", len(s.plans)))
	defer span.End()

	if err := s.repo.Reset(ctx); err != nil {
		s.log.Error(ctx, "reset failed", "error", err)
		return fail(span, err)
	}
	s.plans = []models.TravelPlan{}
	s.dirty = false
	s.invalidate()
	s.log.Warn(ctx, "all stored data deleted")
	return nil
}

// LoadDraft appends the saved draft's items to the plan.
func (s *PlannerService) LoadDraft(ctx context.Context, planID string) ([]models.PlanItem, error) {
	ctx, span := s.start(ctx, "LoadDraft", attribute.String("plan.id", planID))
	defer span.End()

	if _, err := s.index(planID); err != nil {
		return nil, fail(span, err)
	}
	doc, err := s.repo.LoadDraft(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	if doc == nil {
		return nil, fail(span, &common.NotFoundError{Kind: "draft", ID: plans.DraftSlot})
	}

	var added []models.PlanItem
	err = s.mutatePlan(ctx, span, planID, func(p *models.TravelPlan) (bool, error) {
		var aerr error
		if added, aerr = s.engine.AppendItems(p, doc.Items); aerr != nil {
			return false, aerr
		}
		return len(added) > 0, nil
	})
	return added, err
}
