// Package transfer converts plans and items to and from their JSON document
// forms: the stored collection, the day-scoped export file, the full plan
// export and the favorites list. Dates travel as ISO-8601 strings.
package transfer

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

type itemDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Time        string `json:"time"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
}

type planDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
	IsPublic    bool      `json:"isPublic"`
	PlanItems   []itemDTO `json:"planItems"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Tags        []string  `json:"tags"`
	TotalDays   int       `json:"totalDays"`
}

func itemToDTO(it models.PlanItem) itemDTO {
	return itemDTO{
		ID:          it.ID,
		Title:       it.Title,
		Location:    it.Location,
		Time:        timex.FormatISO(it.Time),
		Category:    string(it.Category),
		Priority:    string(it.Priority),
		Description: it.Description,
		IsCompleted: it.IsCompleted,
	}
}

func itemsToDTO(items []models.PlanItem) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, itemToDTO(it))
	}
	return out
}

func planToDTO(p models.TravelPlan) planDTO {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return planDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StartDate:   timex.FormatISO(p.StartDate),
		EndDate:     timex.FormatISO(p.EndDate),
		CreatedAt:   timex.FormatISO(p.CreatedAt),
		UpdatedAt:   timex.FormatISO(p.UpdatedAt),
		IsPublic:    p.IsPublic,
		PlanItems:   itemsToDTO(p.PlanItems),
		CoverImage:  p.CoverImage,
		Tags:        tags,
		TotalDays:   p.TotalDays,
	}
}

func parseTime(field, s string, loc *time.Location) (time.Time, error) {
	t, err := timex.ParseISO(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return t, nil
}

func itemFromDTO(d itemDTO, loc *time.Location) (models.PlanItem, error) {
	at, err := parseTime("time", d.Time, loc)
	if err != nil {
		return models.PlanItem{}, err
	}
	return models.PlanItem{
		ID:          d.ID,
		Title:       d.Title,
		Location:    d.Location,
		Time:        at,
		Category:    models.Category(d.Category),
		Priority:    models.Priority(d.Priority),
		Description: d.Description,
		IsCompleted: d.IsCompleted,
	}, nil
}

// planFromDTO revives dates. TotalDays is recomputed, never trusted.
func planFromDTO(d planDTO, loc *time.Location) (models.TravelPlan, error) {
	p := models.TravelPlan{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		IsPublic:    d.IsPublic,
		CoverImage:  d.CoverImage,
		Tags:        models.NormalizeTags(d.Tags),
		PlanItems:   make([]models.PlanItem, 0, len(d.PlanItems)),
	}

	var err error
	if p.StartDate, err = parseTime("startDate", d.StartDate, loc); err != nil {
		return p, err
	}
	if p.EndDate, err = parseTime("endDate", d.EndDate, loc); err != nil {
		return p, err
	}
	if p.CreatedAt, err = parseTime("createdAt", d.CreatedAt, loc); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime("updatedAt", d.UpdatedAt, loc); err != nil {
		return p, err
	}

	for i, di := range d.PlanItems {
		it, err := itemFromDTO(di, loc)
		if err != nil {
			return p, fmt.Errorf("planItems[%d]: %w", i, err)
		}
		p.PlanItems = append(p.PlanItems, it)
	}
	p.RefreshTotalDays()
	return p, nil
}
