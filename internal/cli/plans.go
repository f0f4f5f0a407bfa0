package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/itinerary"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/query"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func visibilityLabel(public bool) string {
	if public {
		return "public"
	}
	return "private"
}

func printPlanRow(w io.Writer, p models.TravelPlan) {
	fmt.Fprintf(w, "%-8s  %-28s %s..%s  %2d days  %2d items  %3d%%  %s\n",
		shortID(p.ID), p.Title,
		timex.DayKey(p.StartDate), timex.DayKey(p.EndDate),
		p.TotalDays, len(p.PlanItems), p.CompletionPercent(),
		visibilityLabel(p.IsPublic))
}

func (a *App) listPlans(ctx context.Context, args []string) error {
	fs := newFlagSet("plans", a.out)
	search := fs.String("q", "", "search title, description and tags")
	vis := fs.String("vis", "all", "visibility filter")
	sortKey := fs.String("sort", "createdAt", "sort key")
	asc := fs.Bool("asc", false, "ascending order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v, err := query.ParseVisibility(*vis)
	if err != nil {
		return err
	}
	k, err := query.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}

	plans := a.svc.QueryPlans(ctx, query.PlanQuery{Search: *search, Visibility: v, Sort: k, Asc: *asc})
	if len(plans) == 0 {
		fmt.Fprintln(a.out, "No plans.")
		return nil
	}
	for _, p := range plans {
		printPlanRow(a.out, p)
	}
	return nil
}

func (a *App) recentPlans(_ context.Context, args []string) error {
	fs := newFlagSet("recent", a.out)
	n := fs.Int("n", 5, "how many plans")
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, p := range a.svc.RecentPlans(*n) {
		printPlanRow(a.out, p)
	}
	return nil
}

func (a *App) newPlan(ctx context.Context, args []string) error {
	fs := newFlagSet("new", a.out)
	title := fs.String("title", "", "plan title")
	start := fs.String("start", "", "first day, YYYY-MM-DD")
	end := fs.String("end", "", "last day, YYYY-MM-DD (defaults to start)")
	desc := fs.String("desc", "", "description")
	tags := fs.String("tags", "", "comma-separated tags")
	cover := fs.String("cover", "", "cover image URL")
	public := fs.Bool("public", false, "mark the plan public")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *title == "" {
		if *title, err = a.ask("Title"); err != nil {
			return err
		}
		if *start, err = a.ask("Start date (YYYY-MM-DD)"); err != nil {
			return err
		}
		if *end, err = a.ask("End date (YYYY-MM-DD, empty for a day trip)"); err != nil {
			return err
		}
		if *desc, err = GetMultiline(a.lines, "Description", a.out); err != nil {
			return err
		}
	}
	if *end == "" {
		*end = *start
	}

	loc := a.svc.Location()
	in := models.NewPlan{
		Title:       *title,
		Description: *desc,
		Tags:        splitTags(*tags),
		CoverImage:  *cover,
		IsPublic:    *public,
	}
	if in.StartDate, err = parseTime("startDate", *start, loc); err != nil {
		return err
	}
	if in.EndDate, err = parseTime("endDate", *end, loc); err != nil {
		return err
	}

	p, err := a.svc.CreatePlan(ctx, in)
	if p.ID != "" {
		a.current = p.ID
		fmt.Fprintf(a.out, "Created plan %s %q (%d days)\n", shortID(p.ID), p.Title, p.TotalDays)
	}
	return err
}

func (a *App) editPlan(ctx context.Context, args []string) error {
	fs := newFlagSet("edit", a.out)
	ref := fs.String("p", "", "plan (defaults to the open plan)")
	title := fs.String("title", "", "")
	desc := fs.String("desc", "", "")
	start := fs.String("start", "", "")
	end := fs.String("end", "", "")
	tags := fs.String("tags", "", "")
	cover := fs.String("cover", "", "")
	public := fs.Bool("public", false, "")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.plan(*ref)
	if err != nil {
		return err
	}

	seen := setFlags(fs)
	loc := a.svc.Location()
	var patch itinerary.PlanPatch
	if seen["title"] {
		patch.Title = title
	}
	if seen["desc"] {
		patch.Description = desc
	}
	if seen["start"] {
		t, err := parseTime("startDate", *start, loc)
		if err != nil {
			return err
		}
		patch.StartDate = &t
	}
	if seen["end"] {
		t, err := parseTime("endDate", *end, loc)
		if err != nil {
			return err
		}
		patch.EndDate = &t
	}
	if seen["tags"] {
		t := splitTags(*tags)
		patch.Tags = &t
	}
	if seen["cover"] {
		patch.CoverImage = cover
	}
	if seen["public"] {
		patch.IsPublic = public
	}

	updated, err := a.svc.UpdatePlan(ctx, p.ID, patch)
	if updated.ID != "" {
		fmt.Fprintf(a.out, "Updated plan %s %q (%d days)\n", shortID(updated.ID), updated.Title, updated.TotalDays)
	}
	return err
}

func (a *App) removePlan(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return common.NewValidationError("plan", "usage: rm <plan>")
	}
	p, err := a.svc.ResolvePlan(args[0])
	if err != nil {
		return err
	}
	removed, err := a.svc.DeletePlan(ctx, p.ID)
	if removed {
		if a.current == p.ID {
			a.current = ""
		}
		fmt.Fprintf(a.out, "Deleted plan %s %q\n", shortID(p.ID), p.Title)
	}
	return err
}

func (a *App) duplicatePlan(ctx context.Context, args []string) error {
	p, err := a.plan(optionalArg(args))
	if err != nil {
		return err
	}
	dup, err := a.svc.DuplicatePlan(ctx, p.ID)
	if dup.ID != "" {
		a.current = dup.ID
		fmt.Fprintf(a.out, "Created plan %s %q\n", shortID(dup.ID), dup.Title)
	}
	return err
}

func (a *App) openPlan(_ context.Context, args []string) error {
	if len(args) == 0 {
		return common.NewValidationError("plan", "usage: open <plan>")
	}
	p, err := a.svc.ResolvePlan(args[0])
	if err != nil {
		return err
	}
	a.current = p.ID
	fmt.Fprintf(a.out, "Opened %s %q\n", shortID(p.ID), p.Title)
	return nil
}

// showPlan prints the plan header and its items grouped by day. The number
// in front of each item is its manual position, usable as an item reference.
func (a *App) showPlan(_ context.Context, args []string) error {
	p, err := a.plan(optionalArg(args))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s  [%s]\n", p.Title, p.ID)
	fmt.Fprintf(a.out, "%s .. %s, %d days, %s\n", timex.DayKey(p.StartDate), timex.DayKey(p.EndDate), p.TotalDays, visibilityLabel(p.IsPublic))
	if p.Description != "" {
		fmt.Fprintln(a.out, p.Description)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(a.out, "tags: %v\n", p.Tags)
	}

	buckets, err := a.svc.Buckets(p.ID)
	if err != nil {
		return err
	}
	if len(buckets) == 0 {
		fmt.Fprintln(a.out, "No items yet.")
		return nil
	}
	loc := a.svc.Location()
	for _, b := range buckets {
		fmt.Fprintf(a.out, "\n%s (%s)\n", timex.DayKey(b.Day), b.Day.Weekday())
		for _, it := range b.Items {
			printItem(a.out, p, it, loc)
		}
	}
	return nil
}

func printItem(w io.Writer, p models.TravelPlan, it models.PlanItem, loc *time.Location) {
	mark := " "
	if it.IsCompleted {
		mark = "x"
	}
	fmt.Fprintf(w, "  %2d. [%s] %s  %-24s @ %s  %s, %s (%s)\n",
		p.ItemIndex(it.ID)+1, mark, it.Time.In(loc).Format("15:04"),
		it.Title, it.Location, it.Category, it.Priority, query.PriorityColor(it.Priority))
	if it.Description != "" {
		fmt.Fprintf(w, "        %s\n", it.Description)
	}
}

func (a *App) timeline(_ context.Context, args []string) error {
	p, err := a.plan(optionalArg(args))
	if err != nil {
		return err
	}
	rows, err := a.svc.Timeline(p.ID)
	if err != nil {
		return err
	}
	for i, r := range rows {
		fmt.Fprintf(a.out, "Day %d  %s  %d items\n", i+1, timex.DayKey(r.Day), r.Count)
	}
	return nil
}

// stats prints completion and the top three categories, or every category
// with -all.
func (a *App) stats(_ context.Context, args []string) error {
	fs := newFlagSet("stats", a.out)
	all := fs.Bool("all", false, "count every category, including empty ones")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.plan(fs.Arg(0))
	if err != nil {
		return err
	}
	s, err := a.svc.Stats(p.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d items, %d completed, %d%% complete\n", s.Total, s.Completed, s.Percent)

	counts := query.TopCategories(p.PlanItems, 3)
	if *all {
		if counts, err = a.svc.CategoryCounts(p.ID); err != nil {
			return err
		}
	}
	for _, c := range counts {
		fmt.Fprintf(a.out, "  %-14s %d\n", c.Category, c.Count)
	}
	return nil
}

func (a *App) share(_ context.Context, args []string) error {
	p, err := a.plan(optionalArg(args))
	if err != nil {
		return err
	}
	text, err := a.svc.ShareSummary(p.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, text)
	return nil
}
