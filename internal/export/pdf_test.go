package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestWriteTimeline(t *testing.T) {
	p := models.TravelPlan{
		Title:       "Jeju",
		Description: "Three days on the island",
		StartDate:   june1,
		EndDate:     june1.AddDate(0, 0, 2),
		PlanItems: []models.PlanItem{
			{ID: "c", Title: "Hallasan", Location: "Seongpanak", Time: june1.Add(34 * time.Hour), Category: models.CategoryNature, Priority: models.PriorityHigh},
			{ID: "a", Title: "Seongsan", Location: "Ilchulbong", Time: june1.Add(9 * time.Hour), Category: models.CategoryAttraction, Priority: models.PriorityMedium, IsCompleted: true},
			{ID: "b", Title: "Dinner", Location: "Dongmun", Time: june1.Add(18 * time.Hour), Category: models.CategoryFood, Priority: models.PriorityLow, Description: "black pork"},
		},
	}
	p.RefreshTotalDays()

	var buf bytes.Buffer
	require.NoError(t, WriteTimeline(&buf, p, time.UTC))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
}

func TestWriteTimeline_EmptyPlan(t *testing.T) {
	p := models.TravelPlan{Title: "Empty", StartDate: june1, EndDate: june1}

	var buf bytes.Buffer
	require.NoError(t, WriteTimeline(&buf, p, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "jeju-plan-2025-06-01.pdf", FileName(models.TravelPlan{StartDate: june1}))
}
