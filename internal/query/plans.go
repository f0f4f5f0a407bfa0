package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
)

type Visibility string

const (
	VisibilityAll     Visibility = "all"
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type SortKey string

const (
	SortTitle      SortKey = "title"
	SortStartDate  SortKey = "startDate"
	SortCreatedAt  SortKey = "createdAt"
	SortCompletion SortKey = "completion"
)

// PlanQuery describes a filtered, sorted view over the plan collection.
// The zero value lists every plan, newest first.
type PlanQuery struct {
	Search     string
	Visibility Visibility
	Sort       SortKey
	Asc        bool
}

// ParseVisibility accepts "" as all.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(s); v {
	case "", VisibilityAll:
		return VisibilityAll, nil
	case VisibilityPublic, VisibilityPrivate:
		return v, nil
	}
	return "", common.NewValidationError("visibility", fmt.Sprintf("unknown value %q", s))
}

// ParseSortKey accepts "" as createdAt.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "", SortCreatedAt:
		return SortCreatedAt, nil
	case SortTitle, SortStartDate, SortCompletion:
		return k, nil
	}
	return "", common.NewValidationError("sort", fmt.Sprintf("unknown key %q", s))
}

// Key identifies the query for view caching.
func (q PlanQuery) Key() string {
	return fmt.Sprintf("plans|%s|%s|%s|%t", strings.ToLower(q.Search), q.Visibility, q.Sort, q.Asc)
}

// Matches reports whether p passes the search and visibility filters.
// Search is a case-insensitive substring match on title, description or any
// tag. The term is used as given, so surrounding spaces take part in the
// match.
func (q PlanQuery) Matches(p models.TravelPlan) bool {
	switch q.Visibility {
	case VisibilityPublic:
		if !p.IsPublic {
			return false
		}
	case VisibilityPrivate:
		if p.IsPublic {
			return false
		}
	}

	term := strings.ToLower(q.Search)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func compare(key SortKey, a, b *models.TravelPlan) int {
	switch key {
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortStartDate:
		return a.StartDate.Compare(b.StartDate)
	case SortCompletion:
		ra, rb := a.CompletionRatio(), b.CompletionRatio()
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Apply filters and sorts plans into a new slice. The sort is stable, so
// plans comparing equal keep their collection order in either direction.
func (q PlanQuery) Apply(plans []models.TravelPlan) []models.TravelPlan {
	out := make([]models.TravelPlan, 0, len(plans))
	for _, p := range plans {
		if q.Matches(p) {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(q.Sort, &out[i], &out[j])
		if q.Asc {
			return c < 0
		}
		return c > 0
	})
	return out
}

// Recent returns up to n plans with the latest UpdatedAt first.
func Recent(plans []models.TravelPlan, n int) []models.TravelPlan {
	out := append([]models.TravelPlan(nil), plans...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
