package models

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestTotalDays(t *testing.T) {
	assert.Equal(t, 1, TotalDays(june1, june1))
	assert.Equal(t, 3, TotalDays(june1, june1.AddDate(0, 0, 2)))
}

func TestCompletion(t *testing.T) {
	p := TravelPlan{}
	assert.Equal(t, 0, p.CompletionPercent())
	assert.Equal(t, 0.0, p.CompletionRatio())

	p.PlanItems = []PlanItem{{IsCompleted: true}, {}, {}}
	assert.Equal(t, 33, p.CompletionPercent())
	assert.InDelta(t, 1.0/3.0, p.CompletionRatio(), 1e-9)

	p.PlanItems[1].IsCompleted = true
	assert.Equal(t, 67, p.CompletionPercent())
	assert.Equal(t, 50, CompletionPercent(1, 2))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" beach", "Beach", "beach", "", "  ", "food"})
	assert.Equal(t, []string{"beach", "Beach", "food"}, got)
	assert.Empty(t, NormalizeTags(nil))
}

func TestNewPlan_Validate(t *testing.T) {
	tests := []struct {
		name  string
		plan  NewPlan
		field string
	}{
		{"ok", NewPlan{Title: "Jeju", StartDate: june1, EndDate: june1}, ""},
		{"blank title", NewPlan{Title: "  ", StartDate: june1, EndDate: june1}, "title"},
		{"end before start", NewPlan{Title: "Jeju", StartDate: june1, EndDate: june1.Add(-time.Hour)}, "endDate"},
		{"missing start", NewPlan{Title: "Jeju", EndDate: june1}, "startDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *common.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestNewItem_Validate(t *testing.T) {
	ok := NewItem{Title: "Seongsan", Location: "Ilchulbong", Time: june1, Category: CategoryNature, Priority: PriorityHigh}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name   string
		mutate func(*NewItem)
		field  string
	}{
		{"blank title", func(n *NewItem) { n.Title = "" }, "title"},
		{"blank location", func(n *NewItem) { n.Location = " " }, "location"},
		{"zero time", func(n *NewItem) { n.Time = time.Time{} }, "time"},
		{"bad category", func(n *NewItem) { n.Category = "museum" }, "category"},
		{"bad priority", func(n *NewItem) { n.Priority = "urgent" }, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ok
			tt.mutate(&n)
			var ve *common.ValidationError
			require.ErrorAs(t, n.Validate(), &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	p := TravelPlan{Tags: []string{"a"}, PlanItems: []PlanItem{{ID: "1", Title: "x"}}}
	c := p.Clone()
	c.Tags[0] = "b"
	c.PlanItems[0].Title = "y"
	assert.Equal(t, "a", p.Tags[0])
	assert.Equal(t, "x", p.PlanItems[0].Title)
}

func TestItemIndex(t *testing.T) {
	p := TravelPlan{PlanItems: []PlanItem{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, 1, p.ItemIndex("b"))
	assert.Equal(t, -1, p.ItemIndex("zzz"))
}
