// Package models defines the itinerary data model: plans, their items and the
// fixed category/priority vocabularies, together with the validators that
// guard every mutation boundary.
package models

import (
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// Category classifies an item.
type Category string

const (
	CategoryAttraction    Category = "attraction"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
	CategoryShopping      Category = "shopping"
	CategoryNature        Category = "nature"
	CategoryBeach         Category = "beach"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAttraction,
	CategoryFood,
	CategoryTransport,
	CategoryAccommodation,
	CategoryShopping,
	CategoryNature,
	CategoryBeach,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority is a display tier; it never affects ordering.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of Priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// PlanItem is one scheduled activity. Its position inside the owning plan is
// the slice index, not a field.
type PlanItem struct {
	ID          string
	Title       string
	Location    string
	Time        time.Time
	Category    Category
	Priority    Priority
	Description string
	IsCompleted bool
}

// TravelPlan is an itinerary container. TotalDays is derived from the date
// range and must only be written through RefreshTotalDays.
type TravelPlan struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	CoverImage  string
	StartDate   time.Time
	EndDate     time.Time
	IsPublic    bool
	PlanItems   []PlanItem
	TotalDays   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPlan carries the user-supplied fields of a plan about to be created.
type NewPlan struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	IsPublic    bool
	Tags        []string
	CoverImage  string
}

// NewItem carries the user-supplied fields of an item about to be added.
type NewItem struct {
	Title       string
	Location    string
	Time        time.Time
	Category    Category
	Priority    Priority
	Description string
}

// TotalDays computes ceil((end-start)/1 day) + 1.
func TotalDays(start, end time.Time) int {
	return timex.InclusiveDays(start, end)
}

// RefreshTotalDays recomputes the derived day count.
func (p *TravelPlan) RefreshTotalDays() {
	p.TotalDays = TotalDays(p.StartDate, p.EndDate)
}

// ItemIndex returns the position of the item with the given id, or -1.
func (p *TravelPlan) ItemIndex(id string) int {
	for i := range p.PlanItems {
		if p.PlanItems[i].ID == id {
			return i
		}
	}
	return -1
}

// CompletedCount counts items flagged complete.
func (p *TravelPlan) CompletedCount() int {
	n := 0
	for _, it := range p.PlanItems {
		if it.IsCompleted {
			n++
		}
	}
	return n
}

// CompletionRatio is completed/max(total,1); an empty plan scores 0.
func (p *TravelPlan) CompletionRatio() float64 {
	total := len(p.PlanItems)
	if total < 1 {
		total = 1
	}
	return float64(p.CompletedCount()) / float64(total)
}

// CompletionPercent is round(100*completed/total), 0 for an empty plan.
func (p *TravelPlan) CompletionPercent() int {
	return CompletionPercent(p.CompletedCount(), len(p.PlanItems))
}

// CompletionPercent rounds 100*done/total half away from zero.
func CompletionPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}

// Clone deep-copies the plan so callers can't alias the owner's slices.
func (p TravelPlan) Clone() TravelPlan {
	c := p
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	if p.PlanItems != nil {
		c.PlanItems = append([]PlanItem(nil), p.PlanItems...)
	}
	return c
}

// NormalizeTags trims tags, drops blanks and removes duplicates while keeping
// the first occurrence. Comparison is case-sensitive.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateDates enforces startDate <= endDate.
func ValidateDates(start, end time.Time) error {
	if start.IsZero() {
		return common.NewValidationError("startDate", "is required")
	}
	if end.IsZero() {
		return common.NewValidationError("endDate", "is required")
	}
	if end.Before(start) {
		return common.NewValidationError("endDate", "must not be earlier than startDate")
	}
	return nil
}

// Validate checks the plan-level invariants.
func (p *TravelPlan) Validate() error {
	if blank(p.Title) {
		return common.NewValidationError("title", "must not be blank")
	}
	return ValidateDates(p.StartDate, p.EndDate)
}

// Validate checks the fields required on item creation.
func (n NewItem) Validate() error {
	return validateItemFields(n.Title, n.Location, n.Time, n.Category, n.Priority)
}

// Validate checks an existing item after a merge.
func (it *PlanItem) Validate() error {
	return validateItemFields(it.Title, it.Location, it.Time, it.Category, it.Priority)
}

func validateItemFields(title, location string, at time.Time, c Category, p Priority) error {
	if blank(title) {
		return common.NewValidationError("title", "must not be blank")
	}
	if blank(location) {
		return common.NewValidationError("location", "must not be blank")
	}
	if at.IsZero() {
		return common.NewValidationError("time", "is required")
	}
	if !c.Valid() {
		return common.NewValidationError("category", "unknown category "+string(c))
	}
	if !p.Valid() {
		return common.NewValidationError("priority", "unknown priority "+string(p))
	}
	return nil
}

// Validate checks a plan about to be created.
func (n NewPlan) Validate() error {
	if blank(n.Title) {
		return common.NewValidationError("title", "must not be blank")
	}
	return ValidateDates(n.StartDate, n.EndDate)
}
