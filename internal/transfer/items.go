package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
	"github.com/google/uuid"
)

// FilePrefix starts every day-scoped export file name.
const FilePrefix = "jeju-plan-"

// ItemsDocument is the day-scoped export: the items of one selected day.
// ExportDate is zero for drafts.
type ItemsDocument struct {
	Date       time.Time
	Items      []models.PlanItem
	ExportDate time.Time
}

type itemsDocDTO struct {
	Date       string    `json:"date"`
	Plans      []itemDTO `json:"plans"`
	ExportDate string    `json:"exportDate,omitempty"`
}

// ExportFileName names the export file after the calendar day of date, read
// in date's own location.
func ExportFileName(date time.Time) string {
	return FilePrefix + timex.DayKey(date) + ".json"
}

// EncodeItems renders an ItemsDocument.
func EncodeItems(doc ItemsDocument) ([]byte, error) {
	dto := itemsDocDTO{
		Date:  timex.FormatISO(doc.Date),
		Plans: itemsToDTO(doc.Items),
	}
	if !doc.ExportDate.IsZero() {
		dto.ExportDate = timex.FormatISO(doc.ExportDate)
	}
	return json.MarshalIndent(dto, "", "  ")
}

// ImportOptions tunes how untrusted documents are read.
type ImportOptions struct {
	// Location applies to timestamps without an offset; nil means time.Local.
	Location *time.Location
	// NewID supplies ids for items that arrive without one.
	NewID func() string
}

func (o ImportOptions) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

// rawItem mirrors itemDTO with pointers so absent fields can be told apart
// from empty ones.
type rawItem struct {
	ID          *string `json:"id"`
	Title       *string `json:"title"`
	Location    *string `json:"location"`
	Time        *string `json:"time"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
}

func importErr(path, reason string, err error) error {
	return &common.ImportError{Path: path, Reason: reason, Err: err}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decodeRawItems checks the structure of a "plans"-style array without
// looking at any date.
func decodeRawItems(path string, data json.RawMessage) ([]rawItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, importErr(path, "missing", nil)
	}
	if trimmed[0] != '[' {
		return nil, importErr(path, "not an array", nil)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, importErr(path, "malformed array", err)
	}

	items := make([]rawItem, 0, len(elems))
	for i, el := range elems {
		at := fmt.Sprintf("%s[%d]", path, i)
		el = bytes.TrimSpace(el)
		if len(el) == 0 || el[0] != '{' {
			return nil, importErr(at, "not an object", nil)
		}
		var r rawItem
		if err := json.Unmarshal(el, &r); err != nil {
			return nil, importErr(at, "wrong field type", err)
		}
		items = append(items, r)
	}
	return items, nil
}

// reviveItems turns structurally valid raw items into validated models.
func reviveItems(path string, raws []rawItem, opts ImportOptions) ([]models.PlanItem, error) {
	seen := make(map[string]struct{}, len(raws))
	items := make([]models.PlanItem, 0, len(raws))

	for i, r := range raws {
		at := fmt.Sprintf("%s[%d]", path, i)

		if r.Time == nil || strings.TrimSpace(*r.Time) == "" {
			return nil, importErr(at+".time", "missing", nil)
		}
		when, err := timex.ParseISO(strings.TrimSpace(*r.Time), opts.Location)
		if err != nil {
			return nil, importErr(at+".time", "unparsable", err)
		}

		it := models.PlanItem{
			ID:          strings.TrimSpace(deref(r.ID)),
			Title:       strings.TrimSpace(deref(r.Title)),
			Location:    strings.TrimSpace(deref(r.Location)),
			Time:        when,
			Category:    models.CategoryAttraction,
			Priority:    models.PriorityMedium,
			Description: deref(r.Description),
		}
		if r.Category != nil {
			it.Category = models.Category(*r.Category)
		}
		if r.Priority != nil {
			it.Priority = models.Priority(*r.Priority)
		}
		if r.IsCompleted != nil {
			it.IsCompleted = *r.IsCompleted
		}
		if it.ID == "" {
			it.ID = opts.newID()
		}
		if _, dup := seen[it.ID]; dup {
			return nil, importErr(at+".id", "duplicate id "+it.ID, nil)
		}
		seen[it.ID] = struct{}{}

		if err := it.Validate(); err != nil {
			var ve *common.ValidationError
			if errors.As(err, &ve) {
				return nil, importErr(at+"."+ve.Field, ve.Reason, err)
			}
			return nil, importErr(at, "invalid item", err)
		}
		items = append(items, it)
	}
	return items, nil
}

// DecodeItems parses an untrusted day-scoped document. The whole document is
// checked for shape before any date is parsed; any failure is an ImportError
// and no partial result is returned.
func DecodeItems(data []byte, opts ImportOptions) (ItemsDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return ItemsDocument{}, importErr("", "not a JSON object", err)
	}

	raws, err := decodeRawItems("plans", top["plans"])
	if err != nil {
		return ItemsDocument{}, err
	}

	var doc ItemsDocument
	doc.Date, err = optionalDate("date", top["date"], opts.Location)
	if err != nil {
		return ItemsDocument{}, err
	}
	doc.ExportDate, err = optionalDate("exportDate", top["exportDate"], opts.Location)
	if err != nil {
		return ItemsDocument{}, err
	}

	if doc.Items, err = reviveItems("plans", raws, opts); err != nil {
		return ItemsDocument{}, err
	}
	return doc, nil
}

// ImportItems returns just the items of a day-scoped document.
func ImportItems(data []byte, opts ImportOptions) ([]models.PlanItem, error) {
	doc, err := DecodeItems(data, opts)
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func optionalDate(path string, raw json.RawMessage, loc *time.Location) (time.Time, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, importErr(path, "not a string", err)
	}
	t, err := timex.ParseISO(s, loc)
	if err != nil {
		return time.Time{}, importErr(path, "unparsable", err)
	}
	return t, nil
}
