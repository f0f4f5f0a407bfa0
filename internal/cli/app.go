// Package cli implements the interactive planner shell on top of
// services.PlannerService.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/config"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/reorder"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
)

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

// App holds the shell state: the service, the input source and the plan
// currently open.
type App struct {
	svc      *services.PlannerService
	config   *config.Config
	lines    LineReader
	out      io.Writer
	current  string
	commands map[string]command

	drag     reorder.DragSession
	dragPlan string
}

func NewApp(svc *services.PlannerService, cfg *config.Config, lines LineReader, out io.Writer) *App {
	a := &App{
		svc:    svc,
		config: cfg,
		lines:  lines,
		out:    out,
	}
	a.commands = map[string]command{
		"plans":        {"plans [-q text] [-vis all|public|private] [-sort title|startDate|createdAt|completion] [-asc]", a.listPlans},
		"recent":       {"recent [-n 5]", a.recentPlans},
		"new":          {"new [-title T -start DATE [-end DATE] -desc D -tags a,b -cover URL -public]", a.newPlan},
		"edit":         {"edit [-p plan] [-title T] [-desc D] [-start DATE] [-end DATE] [-tags a,b] [-cover URL] [-public=bool]", a.editPlan},
		"rm":           {"rm <plan>", a.removePlan},
		"dup":          {"dup [plan]", a.duplicatePlan},
		"open":         {"open <plan>", a.openPlan},
		"show":         {"show [plan]", a.showPlan},
		"timeline":     {"timeline [plan]", a.timeline},
		"add":          {"add [-title T -loc L -time DATETIME | -day DATE] [-cat C] [-prio P] [-desc D]", a.addItem},
		"quick":        {"quick <title> [location]", a.quickAdd},
		"edititem":     {"edititem <item> [-title T] [-loc L] [-time DATETIME] [-cat C] [-prio P] [-desc D] [-done=bool]", a.editItem},
		"done":         {"done <item>", a.toggleItem},
		"del":          {"del <item>", a.deleteItem},
		"move":         {"move <from> <to>", a.moveItem},
		"order":        {"order <item> <item> ...", a.orderItems},
		"grab":         {"grab <item>", a.grabItem},
		"drop":         {"drop [position] (no position cancels)", a.dropItem},
		"stats":        {"stats [-all] [plan]", a.stats},
		"export":       {"export [-day DATE]", a.exportItems},
		"import":       {"import <file>", a.importItems},
		"exportplan":   {"exportplan [plan]", a.exportPlan},
		"importplan":   {"importplan <file>", a.importPlan},
		"pdf":          {"pdf [plan]", a.exportPDF},
		"share":        {"share [plan]", a.share},
		"fav":          {"fav [name]", a.saveFavorite},
		"favs":         {"favs", a.listFavorites},
		"draft":        {"draft [-day DATE]", a.saveDraft},
		"loaddraft":    {"loaddraft", a.loadDraft},
		"discarddraft": {"discarddraft", a.discardDraft},
		"storage":      {"storage", a.storageUsage},
		"reset":        {"reset", a.reset},
		"flush":        {"flush", a.flush},
	}
	return a
}

// Run starts the shell and blocks until the user leaves.
func (a *App) Run(ctx context.Context) {
	printlnFn("Jeju trip planner (type 'help' for commands)")
	if recent := a.svc.RecentPlans(1); len(recent) > 0 {
		a.current = recent[0].ID
	}
	runREPL(ctx, a, a.status, a.lines)
}

func (a *App) status() string {
	s := ""
	if p, err := a.svc.Plan(a.current); err == nil {
		s = p.Title
	}
	if a.drag.Active() {
		s += " grabbing"
	}
	if a.svc.Dirty() {
		s += "*"
	}
	if s != "" {
		s = fmt.Sprintf(" (%s)", s)
	}
	return s
}

func (a *App) Exec(ctx context.Context, name string, args []string) (bool, error) {
	c, ok := a.commands[name]
	if !ok {
		return false, nil
	}
	return true, c.run(ctx, args)
}

func (a *App) Help() string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", a.commands[name].usage)
	}
	b.WriteString("  help\n  exit | quit")
	return b.String()
}

// Shutdown retries a failed flush so nothing is silently lost on exit.
func (a *App) Shutdown(ctx context.Context) error {
	if !a.svc.Dirty() {
		return nil
	}
	return a.svc.Flush(ctx)
}

// plan resolves ref, falling back to the open plan when ref is empty.
func (a *App) plan(ref string) (models.TravelPlan, error) {
	if ref == "" {
		ref = a.current
	}
	if ref == "" {
		return models.TravelPlan{}, common.NewValidationError("plan", "no plan open; use 'open <plan>'")
	}
	return a.svc.ResolvePlan(ref)
}

// optionalArg returns args[0] or "".
func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func (a *App) ask(prompt string) (string, error) {
	return GetSimpleText(a.lines, prompt)
}

func (a *App) flush(ctx context.Context, _ []string) error {
	if err := a.svc.Flush(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}
