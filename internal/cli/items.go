package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/itinerary"
	"github.com/dmitrijs2005/tripkeeper/internal/models"
	"github.com/dmitrijs2005/tripkeeper/internal/services"
)

// itemTime reads an explicit -time value, or 09:00 on -day, or 09:00 on the
// plan's first day.
func itemTime(at, day string, p models.TravelPlan, loc *time.Location) (time.Time, error) {
	if at != "" {
		return parseTime("time", at, loc)
	}
	if day != "" {
		d, err := parseTime("time", day, loc)
		if err != nil {
			return time.Time{}, err
		}
		return services.DefaultItemTime(d), nil
	}
	return services.DefaultItemTime(p.StartDate.In(loc)), nil
}

func (a *App) addItem(ctx context.Context, args []string) error {
	fs := newFlagSet("add", a.out)
	title := fs.String("title", "", "item title")
	location := fs.String("loc", "", "where")
	at := fs.String("time", "", "YYYY-MM-DD HH:MM")
	day := fs.String("day", "", "YYYY-MM-DD, scheduled at 09:00")
	cat := fs.String("cat", string(models.CategoryAttraction), "category")
	prio := fs.String("prio", string(models.PriorityMedium), "priority")
	desc := fs.String("desc", "", "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.plan("")
	if err != nil {
		return err
	}

	if *title == "" {
		if *title, err = a.ask("Title"); err != nil {
			return err
		}
		if *location, err = a.ask("Location"); err != nil {
			return err
		}
		if *at, err = a.ask("Time (YYYY-MM-DD HH:MM, empty for 09:00 on the first day)"); err != nil {
			return err
		}
		if *desc, err = GetMultiline(a.lines, "Notes", a.out); err != nil {
			return err
		}
	}

	in := models.NewItem{Title: *title, Location: *location, Description: *desc}
	if in.Time, err = itemTime(*at, *day, p, a.svc.Location()); err != nil {
		return err
	}
	if in.Category, err = parseCategory(*cat); err != nil {
		return err
	}
	if in.Priority, err = parsePriority(*prio); err != nil {
		return err
	}

	it, err := a.svc.AddItem(ctx, p.ID, in)
	if it.ID != "" {
		fmt.Fprintf(a.out, "Added %q at %s\n", it.Title, it.Time.In(a.svc.Location()).Format("2006-01-02 15:04"))
	}
	return err
}

func (a *App) quickAdd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return common.NewValidationError("title", "usage: quick <title> [location]")
	}
	p, err := a.plan("")
	if err != nil {
		return err
	}
	location := ""
	if len(args) > 1 {
		location = strings.Join(args[1:], " ")
	}
	it, err := a.svc.QuickAdd(ctx, p.ID, args[0], location)
	if it.ID != "" {
		fmt.Fprintf(a.out, "Added %q\n", it.Title)
	}
	return err
}

// item resolves the first argument against the open plan.
func (a *App) item(args []string, usage string) (models.TravelPlan, models.PlanItem, error) {
	if len(args) == 0 {
		return models.TravelPlan{}, models.PlanItem{}, common.NewValidationError("item", "usage: "+usage)
	}
	p, err := a.plan("")
	if err != nil {
		return models.TravelPlan{}, models.PlanItem{}, err
	}
	it, err := services.ResolveItem(p, args[0])
	if err != nil {
		return models.TravelPlan{}, models.PlanItem{}, err
	}
	return p, it, nil
}

func (a *App) editItem(ctx context.Context, args []string) error {
	p, it, err := a.item(args, a.commands["edititem"].usage)
	if err != nil {
		return err
	}

	fs := newFlagSet("edititem", a.out)
	title := fs.String("title", "", "")
	location := fs.String("loc", "", "")
	at := fs.String("time", "", "")
	cat := fs.String("cat", "", "")
	prio := fs.String("prio", "", "")
	desc := fs.String("desc", "", "")
	done := fs.Bool("done", false, "")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	seen := setFlags(fs)
	var patch itinerary.ItemPatch
	if seen["title"] {
		patch.Title = title
	}
	if seen["loc"] {
		patch.Location = location
	}
	if seen["time"] {
		t, err := parseTime("time", *at, a.svc.Location())
		if err != nil {
			return err
		}
		patch.Time = &t
	}
	if seen["cat"] {
		c, err := parseCategory(*cat)
		if err != nil {
			return err
		}
		patch.Category = &c
	}
	if seen["prio"] {
		pr, err := parsePriority(*prio)
		if err != nil {
			return err
		}
		patch.Priority = &pr
	}
	if seen["desc"] {
		patch.Description = desc
	}
	if seen["done"] {
		patch.IsCompleted = done
	}

	updated, err := a.svc.UpdateItem(ctx, p.ID, it.ID, patch)
	if updated.ID != "" {
		fmt.Fprintf(a.out, "Updated %q\n", updated.Title)
	}
	return err
}

func (a *App) toggleItem(ctx context.Context, args []string) error {
	p, it, err := a.item(args, "done <item>")
	if err != nil {
		return err
	}
	toggled, err := a.svc.ToggleCompletion(ctx, p.ID, it.ID)
	if toggled.ID != "" {
		state := "open"
		if toggled.IsCompleted {
			state = "done"
		}
		fmt.Fprintf(a.out, "%q is %s\n", toggled.Title, state)
	}
	return err
}

func (a *App) deleteItem(ctx context.Context, args []string) error {
	p, it, err := a.item(args, "del <item>")
	if err != nil {
		return err
	}
	removed, err := a.svc.DeleteItem(ctx, p.ID, it.ID)
	if removed {
		fmt.Fprintf(a.out, "Deleted %q\n", it.Title)
	}
	return err
}

// moveItem takes 1-based positions as shown by 'show'.
func (a *App) moveItem(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return common.NewValidationError("index", "usage: move <from> <to>")
	}
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return common.NewValidationError("index", fmt.Sprintf("%q is not a position", args[0]))
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return common.NewValidationError("index", fmt.Sprintf("%q is not a position", args[1]))
	}
	p, err := a.plan("")
	if err != nil {
		return err
	}
	if err := a.svc.MoveItem(ctx, p.ID, from-1, to-1); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved item %d to %d\n", from, to)
	return nil
}

// orderItems sets the full manual order from item references.
func (a *App) orderItems(ctx context.Context, args []string) error {
	p, err := a.plan("")
	if err != nil {
		return err
	}
	order := make([]string, 0, len(args))
	for _, ref := range args {
		it, err := services.ResolveItem(p, ref)
		if err != nil {
			return err
		}
		order = append(order, it.ID)
	}
	if err := a.svc.ReorderItems(ctx, p.ID, order); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Order saved.")
	return nil
}

// grabItem starts a drag of one item; dropItem finishes it at a 1-based
// position.
func (a *App) grabItem(_ context.Context, args []string) error {
	p, it, err := a.item(args, "grab <item>")
	if err != nil {
		return err
	}
	a.drag.Cancel()
	if err := a.drag.Start(p.ItemIndex(it.ID), len(p.PlanItems)); err != nil {
		return common.NewValidationError("index", err.Error())
	}
	a.dragPlan = p.ID
	fmt.Fprintf(a.out, "Grabbed %q; 'drop <position>' to place it\n", it.Title)
	return nil
}

func (a *App) dropItem(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.drag.Cancel()
		fmt.Fprintln(a.out, "Drag cancelled.")
		return nil
	}
	if !a.drag.Active() || a.dragPlan != a.current {
		a.drag.Cancel()
		return common.NewValidationError("index", "nothing grabbed in this plan; use 'grab <item>' first")
	}
	to, err := strconv.Atoi(args[0])
	if err != nil {
		return common.NewValidationError("index", fmt.Sprintf("%q is not a position", args[0]))
	}
	if err := a.svc.DropItem(ctx, a.dragPlan, &a.drag, to-1); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Dropped at %d\n", to)
	return nil
}
