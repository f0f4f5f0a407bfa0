package query

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return june1.AddDate(0, 0, day-1).Add(time.Duration(hour) * time.Hour)
}

func ids(items []models.PlanItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func planIDs(plans []models.TravelPlan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.ID
	}
	return out
}

func TestBucketByDay_Scenario(t *testing.T) {
	items := []models.PlanItem{
		{ID: "C", Time: at(2, 10)},
		{ID: "B", Time: at(1, 18)},
		{ID: "A", Time: at(1, 9)},
	}

	got := BucketByDay(items, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, june1, got[0].Day)
	assert.Equal(t, []string{"A", "B"}, ids(got[0].Items))
	assert.Equal(t, at(2, 0), got[1].Day)
	assert.Equal(t, []string{"C"}, ids(got[1].Items))

	assert.Equal(t, []string{"C", "B", "A"}, ids(items), "input order must survive")
}

func TestBucketByDay_PartitionAndStableTies(t *testing.T) {
	items := []models.PlanItem{
		{ID: "x1", Time: at(3, 9)},
		{ID: "y", Time: at(1, 9)},
		{ID: "x2", Time: at(3, 9)},
		{ID: "z", Time: at(2, 23)},
	}

	got := BucketByDay(items, nil)
	total := 0
	for i, b := range got {
		total += len(b.Items)
		if i > 0 {
			assert.True(t, got[i-1].Day.Before(b.Day))
		}
	}
	assert.Equal(t, len(items), total)
	assert.Equal(t, []string{"x1", "x2"}, ids(got[2].Items))
	assert.Empty(t, BucketByDay(nil, nil))
}

func TestBucketByDay_UsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)
	items := []models.PlanItem{{ID: "late", Time: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)}}

	got := BucketByDay(items, seoul)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-02", got[0].Day.Format(time.DateOnly))
}

func samplePlans() []models.TravelPlan {
	return []models.TravelPlan{
		{ID: "1", Title: "beach days", Tags: []string{"Summer"}, IsPublic: true, StartDate: at(5, 0), CreatedAt: at(1, 1), UpdatedAt: at(1, 1),
			PlanItems: []models.PlanItem{{IsCompleted: true}, {}}},
		{ID: "2", Title: "Food tour", Description: "best BBQ spots", StartDate: at(2, 0), CreatedAt: at(1, 3), UpdatedAt: at(9, 0)},
		{ID: "3", Title: "Hallasan", Tags: []string{"hike", "beach"}, IsPublic: true, StartDate: at(9, 0), CreatedAt: at(1, 2), UpdatedAt: at(4, 0),
			PlanItems: []models.PlanItem{{IsCompleted: true}}},
	}
}

func TestPlanQuery_Search(t *testing.T) {
	plans := samplePlans()

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"2", "3", "1"}},
		{"BEACH", []string{"3", "1"}},
		{"bbq", []string{"2"}},
		{"summer", []string{"1"}},
		{"nothing", []string{}},
		{" ", []string{"2", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got := PlanQuery{Search: tt.search}.Apply(plans)
			assert.Equal(t, tt.want, planIDs(got))
		})
	}
}

func TestPlanQuery_Visibility(t *testing.T) {
	plans := samplePlans()
	assert.Equal(t, []string{"3", "1"}, planIDs(PlanQuery{Visibility: VisibilityPublic}.Apply(plans)))
	assert.Equal(t, []string{"2"}, planIDs(PlanQuery{Visibility: VisibilityPrivate}.Apply(plans)))
}

func TestPlanQuery_SortKeysAndDirection(t *testing.T) {
	plans := samplePlans()

	tests := []struct {
		key  SortKey
		asc  bool
		want []string
	}{
		{SortTitle, true, []string{"2", "3", "1"}},
		{SortTitle, false, []string{"1", "3", "2"}},
		{SortStartDate, true, []string{"2", "1", "3"}},
		{SortCreatedAt, false, []string{"2", "3", "1"}},
		{SortCreatedAt, true, []string{"1", "3", "2"}},
		{SortCompletion, false, []string{"3", "1", "2"}},
		{SortCompletion, true, []string{"2", "1", "3"}},
	}
	for _, tt := range tests {
		got := PlanQuery{Sort: tt.key, Asc: tt.asc}.Apply(plans)
		assert.Equal(t, tt.want, planIDs(got), "%s asc=%t", tt.key, tt.asc)
	}
	assert.Equal(t, []string{"1", "2", "3"}, planIDs(plans), "input untouched")

	mixed := []models.TravelPlan{{ID: "a", Title: "apple"}, {ID: "B", Title: "Banana"}}
	assert.Equal(t, []string{"B", "a"}, planIDs(PlanQuery{Sort: SortTitle, Asc: true}.Apply(mixed)))
}

func TestPlanQuery_StableOnTies(t *testing.T) {
	plans := []models.TravelPlan{{ID: "a", Title: "Same"}, {ID: "b", Title: "Same"}, {ID: "c", Title: "Same"}}
	assert.Equal(t, []string{"a", "b", "c"}, planIDs(PlanQuery{Sort: SortTitle, Asc: true}.Apply(plans)))
	assert.Equal(t, []string{"a", "b", "c"}, planIDs(PlanQuery{Sort: SortTitle}.Apply(plans)))
}

func TestParse(t *testing.T) {
	v, err := ParseVisibility("")
	require.NoError(t, err)
	assert.Equal(t, VisibilityAll, v)
	_, err = ParseVisibility("secret")
	require.ErrorIs(t, err, common.ErrValidation)

	k, err := ParseSortKey("completion")
	require.NoError(t, err)
	assert.Equal(t, SortCompletion, k)
	_, err = ParseSortKey("rating")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestPlanQuery_Key(t *testing.T) {
	a := PlanQuery{Search: "Beach", Sort: SortTitle}
	b := PlanQuery{Search: "beach", Sort: SortTitle}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), PlanQuery{Search: " beach", Sort: SortTitle}.Key())
	assert.NotEqual(t, a.Key(), PlanQuery{Search: "beach", Sort: SortTitle, Asc: true}.Key())
}

func TestTimeline_AgreesWithTotalDaysAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2025, 11, 1, 0, 0, 0, 0, ny)
	p := models.TravelPlan{StartDate: start, EndDate: start.AddDate(0, 0, 2)}
	p.RefreshTotalDays()
	assert.Len(t, Timeline(p), p.TotalDays)
	assert.Equal(t, 3, p.TotalDays)
}

func TestRecent(t *testing.T) {
	plans := samplePlans()
	assert.Equal(t, []string{"2", "3"}, planIDs(Recent(plans, 2)))
	assert.Len(t, Recent(plans, 10), 3)
}

func TestCategoryCountsAndTop(t *testing.T) {
	items := []models.PlanItem{
		{Category: models.CategoryFood},
		{Category: models.CategoryBeach},
		{Category: models.CategoryFood},
		{Category: models.CategoryNature},
	}

	counts := CategoryCounts(items)
	require.Len(t, counts, 7)
	assert.Equal(t, CategoryCount{models.CategoryAttraction, 0}, counts[0])
	assert.Equal(t, CategoryCount{models.CategoryFood, 2}, counts[1])

	top := TopCategories(items, 2)
	assert.Equal(t, []CategoryCount{{models.CategoryFood, 2}, {models.CategoryNature, 1}}, top)
	assert.Empty(t, TopCategories(nil, 3))
}

func TestPriorityColor(t *testing.T) {
	assert.Equal(t, ColorRed, PriorityColor(models.PriorityHigh))
	assert.Equal(t, ColorYellow, PriorityColor(models.PriorityMedium))
	assert.Equal(t, ColorGreen, PriorityColor(models.PriorityLow))
	assert.Equal(t, ColorGray, PriorityColor("other"))
}

func TestItemStats(t *testing.T) {
	assert.Equal(t, Stats{}, ItemStats(models.TravelPlan{}))
	p := models.TravelPlan{PlanItems: []models.PlanItem{{IsCompleted: true}, {}, {}}}
	assert.Equal(t, Stats{Total: 3, Completed: 1, Percent: 33}, ItemStats(p))
}

func TestTimeline(t *testing.T) {
	p := models.TravelPlan{
		StartDate: june1,
		EndDate:   at(3, 0),
		PlanItems: []models.PlanItem{{Time: at(1, 9)}, {Time: at(1, 18)}, {Time: at(3, 10)}, {Time: at(7, 10)}},
	}
	got := Timeline(p)
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 0, 1}, []int{got[0].Count, got[1].Count, got[2].Count})
	assert.Equal(t, at(2, 0), got[1].Day)
}

func TestShareSummary(t *testing.T) {
	p := models.TravelPlan{
		Title: "Jeju",
		PlanItems: []models.PlanItem{
			{Title: "Seongsan", Location: "Ilchulbong", IsCompleted: true},
			{Title: "Lunch", Location: "Dongmun market"},
		},
	}
	want := "Jeju\n2 items, 50% complete\n\n- Seongsan (Ilchulbong)\n- Lunch (Dongmun market)"
	assert.Equal(t, want, ShareSummary(p))
	assert.Equal(t, "Empty\n0 items, 0% complete", ShareSummary(models.TravelPlan{Title: "Empty"}))
}
