package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// CategoryCount pairs a category with how many items carry it.
type CategoryCount struct {
	Category models.Category
	Count    int
}

// CategoryCounts counts items per category. All categories are present, in
// their display order, including those with zero items.
func CategoryCounts(items []models.PlanItem) []CategoryCount {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, it := range items {
		counts[it.Category]++
	}
	out := make([]CategoryCount, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	return out
}

// TopCategories returns up to n non-empty categories by descending count;
// ties keep display order.
func TopCategories(items []models.PlanItem, n int) []CategoryCount {
	all := CategoryCounts(items)
	out := all[:0]
	for _, c := range all {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorGray   Color = "gray"
)

// PriorityColor maps a priority to its display tier.
func PriorityColor(p models.Priority) Color {
	switch p {
	case models.PriorityHigh:
		return ColorRed
	case models.PriorityMedium:
		return ColorYellow
	case models.PriorityLow:
		return ColorGreen
	}
	return ColorGray
}

// Stats summarises completion over a plan's items.
type Stats struct {
	Total     int
	Completed int
	Percent   int
}

// ItemStats counts a plan's items and completed items.
//
// Parameters:
//
//	p  the plan to summarise
//
// Returns:
//
//	Total and Completed item counts, plus Percent as round(100*Completed/Total).
//	Percent is 0 for a plan without items.
func ItemStats(p models.TravelPlan) Stats {
	done := p.CompletedCount()
	return Stats{
		Total:     len(p.PlanItems),
		Completed: done,
		Percent:   models.CompletionPercent(done, len(p.PlanItems)),
	}
}

// DayCount is one row of a plan timeline.
type DayCount struct {
	Day   time.Time
	Count int
}

// Timeline lists every day of the plan's range with the number of items
// scheduled on it.
func Timeline(p models.TravelPlan) []DayCount {
	days := timex.DaysInRange(p.StartDate, p.EndDate)
	out := make([]DayCount, 0, len(days))
	for _, d := range days {
		out = append(out, DayCount{Day: d, Count: len(ItemsOn(p, d))})
	}
	return out
}

// ShareSummary renders the plain-text summary users paste into messages.
func ShareSummary(p models.TravelPlan) string {
	s := ItemStats(p)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Title)
	fmt.Fprintf(&b, "%d items, %d%% complete\n", s.Total, s.Percent)
	if len(p.PlanItems) > 0 {
		b.WriteString("\n")
	}
	for _, it := range p.PlanItems {
		fmt.Fprintf(&b, "- %s (%s)\n", it.Title, it.Location)
	}
	return strings.TrimRight(b.String(), "\n")
}
