// Package export renders a plan as a printable PDF timeline: one section per
// day with the items in time order and a QR code carrying the share text.
package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/query"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// FileName names the PDF for p.
func FileName(p models.TravelPlan) string {
	return fmt.Sprintf("jeju-plan-%s.pdf", p.StartDate.Format(time.DateOnly))
}

var tierRGB = map[query.Color][3]int{
	query.ColorRed:    {200, 40, 40},
	query.ColorYellow: {200, 150, 0},
	query.ColorGreen:  {40, 140, 60},
	query.ColorGray:   {120, 120, 120},
}

// WriteTimeline renders p to w. Items are grouped by their calendar day in
// loc; a nil loc keeps each item's own location.
func WriteTimeline(w io.Writer, p models.TravelPlan, loc *time.Location) error {
	qrPNG, err := qrcode.Encode(query.ShareSummary(p), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(p.Title, true)
	pdf.AddPage()

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("share-qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("share-qr", 160, 10, 35, 35, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(140, 9, tr(p.Title), "", "L", false)

	pdf.SetFont("Arial", "", 11)
	stats := query.ItemStats(p)
	pdf.Cell(0, 6, fmt.Sprintf("%s - %s (%d days)",
		p.StartDate.Format(time.DateOnly), p.EndDate.Format(time.DateOnly), p.TotalDays))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("%d items, %d%% complete", stats.Total, stats.Percent))
	pdf.Ln(6)
	if p.Description != "" {
		pdf.MultiCell(140, 5, tr(p.Description), "", "L", false)
	}
	pdf.SetY(50)

	buckets := query.BucketByDay(p.PlanItems, loc)
	if len(buckets) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(0, 8, "No items yet.")
		pdf.Ln(8)
	}

	for _, b := range buckets {
		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 9, b.Day.Format("Monday, 2 January 2006"))
		pdf.Ln(9)

		for _, it := range b.Items {
			mark := "[ ]"
			if it.IsCompleted {
				mark = "[x]"
			}
			rgb := tierRGB[query.PriorityColor(it.Priority)]

			pdf.SetFont("Arial", "", 10)
			pdf.SetTextColor(0, 0, 0)
			pdf.CellFormat(10, 6, mark, "", 0, "L", false, 0, "")
			pdf.CellFormat(15, 6, it.Time.Format("15:04"), "", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(70, 6, tr(it.Title), "", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(55, 6, tr(it.Location), "", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, string(it.Category), "", 0, "L", false, 0, "")
			pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
			pdf.CellFormat(15, 6, string(it.Priority), "", 1, "L", false, 0, "")

			if it.Description != "" {
				pdf.SetTextColor(90, 90, 90)
				pdf.SetFont("Arial", "I", 9)
				pdf.SetX(pdf.GetX() + 25)
				pdf.MultiCell(160, 5, tr(it.Description), "", "L", false)
			}
		}
		pdf.Ln(3)
	}

	return pdf.Output(w)
}
