// Package query derives read-only views from plans: day buckets, filtered and
// sorted plan lists, and aggregates. Nothing here mutates its input.
package query

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// DayBucket groups the items that fall on one calendar day.
type DayBucket struct {
	Day   time.Time
	Items []models.PlanItem
}

// BucketByDay partitions items by the calendar day of their time in loc.
// Buckets ascend by day; within a bucket items ascend by time, ties keeping
// their manual order. A nil loc means each item's own location.
func BucketByDay(items []models.PlanItem, loc *time.Location) []DayBucket {
	index := make(map[string]int)
	var buckets []DayBucket

	for _, it := range items {
		when := it.Time
		if loc != nil {
			when = when.In(loc)
		}
		key := timex.DayKey(when)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DayBucket{Day: timex.StartOfDay(when)})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})
	for _, b := range buckets {
		items := b.Items
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Time.Before(items[j].Time)
		})
	}
	return buckets
}

// ItemsOn returns the items of p scheduled on day, ascending by time.
func ItemsOn(p models.TravelPlan, day time.Time) []models.PlanItem {
	var out []models.PlanItem
	for _, it := range p.PlanItems {
		if timex.SameDay(it.Time.In(day.Location()), day) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}
