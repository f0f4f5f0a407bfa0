package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/timex"
)

// dayFlag parses -day, defaulting to the plan's first day.
func (a *App) dayFlag(name string, args []string, p models.TravelPlan) (time.Time, error) {
	fs := newFlagSet(name, a.out)
	day := fs.String("day", "", "YYYY-MM-DD (defaults to the first day of the plan)")
	if err := fs.Parse(args); err != nil {
		return time.Time{}, err
	}
	loc := a.svc.Location()
	if *day == "" {
		return timex.StartOfDay(p.StartDate.In(loc)), nil
	}
	t, err := parseTime("date", *day, loc)
	if err != nil {
		return time.Time{}, err
	}
	return timex.StartOfDay(t), nil
}

func readImportFile(args []string, usage string) ([]byte, error) {
	if len(args) == 0 {
		return nil, common.NewValidationError("file", "usage: "+usage)
	}
	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, &common.ImportError{Reason: "only .json files can be imported"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &common.ImportError{Reason: "cannot read " + path, Err: err}
	}
	return data, nil
}

func (a *App) exportItems(ctx context.Context, args []string) error {
	p, err := a.plan("")
	if err != nil {
		return err
	}
	day, err := a.dayFlag("export", args, p)
	if err != nil {
		return err
	}
	path, err := a.svc.ExportItems(ctx, p.ID, day, a.config.ExportDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Exported to", path)
	return nil
}

func (a *App) importItems(ctx context.Context, args []string) error {
	p, err := a.plan("")
	if err != nil {
		return err
	}
	data, err := readImportFile(args, "import <file.json>")
	if err != nil {
		return err
	}
	added, err := a.svc.ImportItems(ctx, p.ID, data)
	if len(added) > 0 || err == nil {
		fmt.Fprintf(a.out, "Imported %d items\n", len(added))
	}
	return err
}

func (a *App) exportPlan(ctx context.Context, args []string) error {
	p, err := a.plan(optionalArg(args))
	if err != nil {
		return err
	}
	path, err := a.svc.ExportPlan(ctx, p.ID, a.config.ExportDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Exported to", path)
	return nil
}

func (a *App) importPlan(ctx context.Context, args []string) error {
	data, err := readImportFile(args, "importplan <file.json>")
	if err != nil {
		return err
	}
	p, err := a.svc.ImportPlan(ctx, data)
	if p.ID != "" {
		a.current = p.ID
		fmt.Fprintf(a.out, "Imported plan %s %q with %d items\n", shortID(p.ID), p.Title, len(p.PlanItems))
	}
	return err
}

func (a *App) exportPDF(ctx context.Context, args []string) error {
	p, err := a.plan(optionalArg(args))
	if err != nil {
		return err
	}
	path, err := a.svc.ExportPDF(ctx, p.ID, a.config.ExportDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Written", path)
	return nil
}

func (a *App) saveFavorite(ctx context.Context, args []string) error {
	p, err := a.plan("")
	if err != nil {
		return err
	}
	fav, err := a.svc.SaveFavorite(ctx, p.ID, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved favorite %q with %d items\n", fav.Name, len(fav.Items))
	return nil
}

func (a *App) listFavorites(ctx context.Context, _ []string) error {
	favs, err := a.svc.Favorites(ctx)
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		fmt.Fprintln(a.out, "No favorites.")
		return nil
	}
	loc := a.svc.Location()
	for _, f := range favs {
		fmt.Fprintf(a.out, "%-8s  %-28s %2d items  %s\n", shortID(f.ID), f.Name, len(f.Items), f.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) saveDraft(ctx context.Context, args []string) error {
	p, err := a.plan("")
	if err != nil {
		return err
	}
	day, err := a.dayFlag("draft", args, p)
	if err != nil {
		return err
	}
	n, err := a.svc.SaveDraft(ctx, p.ID, day)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Draft for %s saved with %d items\n", timex.DayKey(day), n)
	return nil
}

func (a *App) loadDraft(ctx context.Context, _ []string) error {
	p, err := a.plan("")
	if err != nil {
		return err
	}
	added, err := a.svc.LoadDraft(ctx, p.ID)
	if len(added) > 0 || err == nil {
		fmt.Fprintf(a.out, "Loaded %d draft items\n", len(added))
	}
	return err
}

func (a *App) discardDraft(ctx context.Context, _ []string) error {
	if err := a.svc.DiscardDraft(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Draft discarded.")
	return nil
}

func (a *App) storageUsage(ctx context.Context, _ []string) error {
	usage, err := a.svc.StorageUsage(ctx)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Fprintln(a.out, "Nothing stored.")
		return nil
	}
	total := 0
	for _, u := range usage {
		fmt.Fprintf(a.out, "  %-20s %8d bytes\n", u.Name, u.Bytes)
		total += u.Bytes
	}
	fmt.Fprintf(a.out, "  %-20s %8d bytes\n", "total", total)
	return nil
}

// reset wipes every plan, favorite and the draft after a typed confirmation.
func (a *App) reset(ctx context.Context, _ []string) error {
	answer, err := a.ask("This deletes every plan, favorite and draft. Type 'yes' to continue")
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) != "yes" {
		fmt.Fprintln(a.out, "Reset aborted.")
		return nil
	}
	if err := a.svc.Reset(ctx); err != nil {
		return err
	}
	a.current = ""
	a.drag.Cancel()
	fmt.Fprintln(a.out, "All data deleted.")
	return nil
}
