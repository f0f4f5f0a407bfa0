package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// PlanFileName names a full plan export.
func PlanFileName(p models.TravelPlan) string {
	return FilePrefix + timex.DayKey(p.StartDate) + "-" + shortID(p.ID) + ".json"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// EncodePlan renders a single plan in the collection's plan shape.
func EncodePlan(p models.TravelPlan) ([]byte, error) {
	return json.MarshalIndent(planToDTO(p), "", "  ")
}

type rawPlan struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	StartDate   *string         `json:"startDate"`
	EndDate     *string         `json:"endDate"`
	IsPublic    *bool           `json:"isPublic"`
	CoverImage  *string         `json:"coverImage"`
	Tags        []string        `json:"tags"`
	PlanItems   json.RawMessage `json:"planItems"`
}

// DecodePlan parses an untrusted full plan document. The result carries fresh
// plan and item ids, so importing the same file twice never collides.
// CreatedAt and UpdatedAt are left for the caller to stamp.
func DecodePlan(data []byte, opts ImportOptions) (models.TravelPlan, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.TravelPlan{}, importErr("", "not a JSON object", nil)
	}

	var r rawPlan
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return models.TravelPlan{}, importErr("", "wrong field type", err)
	}

	var raws []rawItem
	if len(bytes.TrimSpace(r.PlanItems)) > 0 && !bytes.Equal(bytes.TrimSpace(r.PlanItems), []byte("null")) {
		var err error
		if raws, err = decodeRawItems("planItems", r.PlanItems); err != nil {
			return models.TravelPlan{}, err
		}
	}

	p := models.TravelPlan{
		Title:       strings.TrimSpace(deref(r.Title)),
		Description: deref(r.Description),
		CoverImage:  deref(r.CoverImage),
		Tags:        models.NormalizeTags(r.Tags),
	}
	if r.IsPublic != nil {
		p.IsPublic = *r.IsPublic
	}

	var err error
	if p.StartDate, err = requiredDate("startDate", r.StartDate, opts.Location); err != nil {
		return models.TravelPlan{}, err
	}
	if p.EndDate, err = requiredDate("endDate", r.EndDate, opts.Location); err != nil {
		return models.TravelPlan{}, err
	}
	if err := p.Validate(); err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return models.TravelPlan{}, importErr(ve.Field, ve.Reason, err)
		}
		return models.TravelPlan{}, importErr("", "invalid plan", err)
	}

	items, err := reviveItems("planItems", raws, opts)
	if err != nil {
		return models.TravelPlan{}, err
	}
	for i := range items {
		items[i].ID = opts.newID()
	}
	p.ID = opts.newID()
	p.PlanItems = items
	p.RefreshTotalDays()
	return p, nil
}

func requiredDate(path string, s *string, loc *time.Location) (time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, importErr(path, "missing", nil)
	}
	t, err := timex.ParseISO(strings.TrimSpace(*s), loc)
	if err != nil {
		return time.Time{}, importErr(path, "unparsable", err)
	}
	return t, nil
}
