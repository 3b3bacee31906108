package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/listwise/internal/category"
	"github.com/dukerupert/listwise/internal/domain"
	"github.com/dukerupert/listwise/internal/form"
	"github.com/dukerupert/listwise/internal/remote"
	"github.com/dukerupert/listwise/internal/state"
	"github.com/dukerupert/listwise/internal/stats"
)

var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(a *app, ctx context.Context, fs *flag.FlagSet, args []string) error
}

var commands = map[string]command{
	"signup":    {"create an account: -email -password", (*app).signUp},
	"signin":    {"sign in: -email -password", (*app).signIn},
	"signout":   {"sign out and forget the saved session", (*app).signOut},
	"watch":     {"wait for the session to end elsewhere", (*app).watch},
	"lists":     {"show lists: [-q text]", (*app).lists},
	"show":      {"show one list by category: -list ID [-ghost]", (*app).show},
	"new":       {"create a list: -name [-category] [-budget]", (*app).newList},
	"rename":    {"rename a list: -list ID -name", (*app).rename},
	"limit":     {"set a list's own budget: -list ID -amount", (*app).limit},
	"pin":       {"pin a list: -list ID [-undo]", (*app).pin},
	"complete":  {"complete a list and record its prices: -list ID", (*app).complete},
	"archive":   {"archive a list: -list ID", (*app).archive},
	"delete":    {"delete a list: -list ID", (*app).deleteList},
	"dup":       {"duplicate a list: -list ID", (*app).duplicate},
	"add":       {"add an item: -list ID -name -qty [-price] [-category]", (*app).addItem},
	"edit":      {"edit an item: -list ID -item ID -name -qty [-price] [-category]", (*app).editItem},
	"check":     {"mark an item purchased: -list ID -item ID [-undo]", (*app).check},
	"rm":        {"remove an item: -list ID -item ID", (*app).removeItem},
	"move":      {"move an item to a position: -list ID -item ID -to N", (*app).move},
	"budget":    {"set the monthly budget: -amount [-month YYYY-MM]", (*app).budget},
	"stats":     {"spending statistics", (*app).statistics},
	"history":   {"finished lists: [-period 7d|30d|90d|all] [-sort date_desc|date_asc|value_desc|value_asc]", (*app).history},
	"prices":    {"price evolution of an item: -item NAME", (*app).prices},
	"suggest":   {"item suggestions from price history: -q text", (*app).suggest},
	"theme":     {"show or set the theme: [light|dark|system]", (*app).theme},
	"onboarded": {"mark onboarding as seen", (*app).onboarded},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: listwise <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
}

type app struct {
	st  *state.Store
	rc  *remote.Client
	out io.Writer
	now func() time.Time
}

func newApp(st *state.Store, rc *remote.Client, out io.Writer) *app {
	return &app{st: st, rc: rc, out: out, now: time.Now}
}

func (a *app) run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		usage(a.out)
		return fmt.Errorf("unknown command %q", name)
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return cmd.run(a, ctx, fs, args)
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func required(fs *flag.FlagSet, names ...string) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, n := range names {
		if !set[n] {
			return fmt.Errorf("-%s is required", n)
		}
	}
	return nil
}

// load fetches the signed-in user's data into the store.
func (a *app) load(ctx context.Context) error {
	if a.st.Snapshot().Session == nil {
		return errors.New("not signed in; run listwise signin")
	}
	return a.st.FetchInitialData(ctx)
}

func (a *app) list(id string) (*domain.ShoppingList, error) {
	l := a.st.Snapshot().FindList(id)
	if l == nil {
		return nil, fmt.Errorf("no list %q", id)
	}
	return l, nil
}

func (a *app) signUp(ctx context.Context, fs *flag.FlagSet, args []string) error {
	return a.authenticate(ctx, fs, args, a.rc.SignUp)
}

func (a *app) signIn(ctx context.Context, fs *flag.FlagSet, args []string) error {
	return a.authenticate(ctx, fs, args, a.rc.SignIn)
}

func (a *app) authenticate(ctx context.Context, fs *flag.FlagSet, args []string,
	fn func(ctx context.Context, email, password string) (*domain.Session, error)) error {
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "email", "password"); err != nil {
		return err
	}

	sess, err := fn(ctx, *email, *password)
	if err != nil {
		return err
	}
	a.st.Wait()
	if msg := a.st.Snapshot().Error; msg != "" {
		return errors.New(msg)
	}
	fmt.Fprintf(a.out, "Signed in as %s (until %s)\n", sess.Email, sess.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func (a *app) signOut(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.st.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) watch(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args); err != nil {
		return err
	}
	done := make(chan domain.AuthEventType, 1)
	unsubscribe := a.rc.OnAuthStateChange(func(ev domain.AuthEvent) {
		if ev.Session == nil {
			select {
			case done <- ev.Type:
			default:
			}
		}
	})
	defer unsubscribe()

	fmt.Fprintln(a.out, "Watching session, press Ctrl+C to stop")
	if err := a.rc.Listen(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	select {
	case typ := <-done:
		fmt.Fprintf(a.out, "Session ended: %s\n", typ)
	default:
	}
	return nil
}

func (a *app) lists(ctx context.Context, fs *flag.FlagSet, args []string) error {
	query := fs.String("q", "", "filter by name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	st := a.st.Snapshot()
	renderLists(a.out, stats.SearchLists(st.Lists, *query))
	renderMonth(a.out, st, a.now())
	return nil
}

func (a *app) show(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	ghost := fs.Bool("ghost", false, "hide purchased items")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list"); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	l, err := a.list(*id)
	if err != nil {
		return err
	}
	a.st.SetCurrentPage(domain.PageListDetail, l.ID)
	renderList(a.out, *l, *ghost)
	return nil
}

func (a *app) newList(ctx context.Context, fs *flag.FlagSet, args []string) error {
	name := fs.String("name", "", "list name")
	cat := fs.String("category", "", "list category")
	budget := fs.String("budget", "", "list budget")
	if err := parse(fs, args); err != nil {
		return err
	}
	in, err := form.ParseList(*name, *cat, *budget)
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	l, err := a.st.AddList(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created list %s %q\n", l.ID, l.Name)
	return nil
}

func (a *app) updateList(ctx context.Context, id string, u domain.ListUpdate, done string) error {
	if err := a.load(ctx); err != nil {
		return err
	}
	l, err := a.list(id)
	if err != nil {
		return err
	}
	if err := a.st.UpdateList(ctx, l.ID, u); err != nil {
		return err
	}
	a.st.Wait()
	fmt.Fprintf(a.out, "%s %q\n", done, a.st.Snapshot().FindList(l.ID).Name)
	return nil
}

func (a *app) rename(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	name := fs.String("name", "", "new name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list", "name"); err != nil {
		return err
	}
	in, err := form.ParseList(*name, "", "")
	if err != nil {
		return err
	}
	return a.updateList(ctx, *id, domain.ListUpdate{Name: &in.Name}, "Renamed")
}

func (a *app) limit(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	amount := fs.String("amount", "", "budget for this list, 0 to clear the usage meter")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list", "amount"); err != nil {
		return err
	}
	b, err := form.ParseListBudget(*amount)
	if err != nil {
		return err
	}
	return a.updateList(ctx, *id, domain.ListUpdate{ListBudget: &b}, "Budget set on")
}

func (a *app) pin(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	undo := fs.Bool("undo", false, "unpin")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list"); err != nil {
		return err
	}
	done := "Pinned"
	if *undo {
		done = "Unpinned"
	}
	return a.updateList(ctx, *id, domain.ListUpdate{IsPinned: domain.Ptr(!*undo)}, done)
}

func (a *app) complete(ctx context.Context, fs *flag.FlagSet, args []string) error {
	return a.setStatus(ctx, fs, args, domain.StatusCompleted, "Completed")
}

func (a *app) archive(ctx context.Context, fs *flag.FlagSet, args []string) error {
	return a.setStatus(ctx, fs, args, domain.StatusArchived, "Archived")
}

func (a *app) setStatus(ctx context.Context, fs *flag.FlagSet, args []string, status domain.ListStatus, done string) error {
	id := fs.String("list", "", "list id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list"); err != nil {
		return err
	}
	return a.updateList(ctx, *id, domain.ListUpdate{Status: &status}, done)
}

func (a *app) deleteList(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list"); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.st.DeleteList(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted list", *id)
	return nil
}

func (a *app) duplicate(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list"); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	l, err := a.st.DuplicateList(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created list %s %q with %d items\n", l.ID, l.Name, len(l.Items))
	return nil
}

func (a *app) addItem(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	name := fs.String("name", "", "item name")
	qty := fs.String("qty", "1", "quantity")
	price := fs.String("price", "", "unit price")
	cat := fs.String("category", "", "one of "+strings.Join(category.Names(), ", ")+" (guessed when empty)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list"); err != nil {
		return err
	}
	in, err := form.ParseItem(*name, *qty, *price, *cat)
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	it, err := a.st.AddItemToList(ctx, *id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %q (%s)\n", it.ID, it.Name, it.Category)
	return nil
}

func (a *app) editItem(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	itemID := fs.String("item", "", "item id")
	name := fs.String("name", "", "item name")
	qty := fs.String("qty", "", "quantity")
	price := fs.String("price", "", "unit price")
	cat := fs.String("category", "", "category")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list", "item"); err != nil {
		return err
	}
	u, err := form.ItemUpdate(*name, *qty, *price, *cat)
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.st.UpdateItemInList(ctx, *id, *itemID, u); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Updated item", *itemID)
	return nil
}

func (a *app) check(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	itemID := fs.String("item", "", "item id")
	undo := fs.Bool("undo", false, "mark as not purchased")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list", "item"); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.st.UpdateItemInList(ctx, *id, *itemID, domain.ItemUpdate{IsPurchased: domain.Ptr(!*undo)}); err != nil {
		return err
	}
	l, err := a.list(*id)
	if err != nil {
		return err
	}
	renderList(a.out, *l, false)
	return nil
}

func (a *app) removeItem(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	itemID := fs.String("item", "", "item id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list", "item"); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.st.RemoveItemFromList(ctx, *id, *itemID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed item", *itemID)
	return nil
}

func (a *app) move(ctx context.Context, fs *flag.FlagSet, args []string) error {
	id := fs.String("list", "", "list id")
	itemID := fs.String("item", "", "item id")
	to := fs.Int("to", 0, "new position, starting at 0")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "list", "item", "to"); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	l, err := a.list(*id)
	if err != nil {
		return err
	}
	orders, err := moveOrders(l.Items, *itemID, *to)
	if err != nil {
		return err
	}
	if err := a.st.UpdateItemOrder(ctx, l.ID, orders); err != nil {
		return err
	}
	l, err = a.list(*id)
	if err != nil {
		return err
	}
	renderList(a.out, *l, false)
	return nil
}

// moveOrders renumbers items 0..n-1 with itemID moved to position to.
func moveOrders(items []domain.ListItem, itemID string, to int) ([]domain.ItemOrder, error) {
	sorted := append([]domain.ListItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	from := -1
	for i, it := range sorted {
		if it.ID == itemID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("no item %q", itemID)
	}
	moved := sorted[from]
	sorted = append(sorted[:from], sorted[from+1:]...)
	to = max(0, min(to, len(sorted)))
	sorted = append(sorted[:to], append([]domain.ListItem{moved}, sorted[to:]...)...)

	orders := make([]domain.ItemOrder, len(sorted))
	for i, it := range sorted {
		orders[i] = domain.ItemOrder{ItemID: it.ID, NewOrder: i}
	}
	return orders, nil
}

func (a *app) budget(ctx context.Context, fs *flag.FlagSet, args []string) error {
	amountText := fs.String("amount", "", "monthly budget")
	month := fs.String("month", "", "month as YYYY-MM (default: current)")
	if err := parse(fs, args); err != nil {
		return err
	}
	amount, err := form.ParseMonthlyBudget(*amountText)
	if err != nil {
		return err
	}
	date := a.now()
	if *month != "" {
		date, err = time.ParseInLocation("2006-01", *month, time.Local)
		if err != nil {
			return fmt.Errorf("invalid -month %q: want YYYY-MM", *month)
		}
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	b, err := a.st.SetMonthlyBudget(ctx, amount, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Budget for %04d-%02d set to %s\n", b.Year, b.Month, money(b.Amount))
	return nil
}

func (a *app) statistics(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	a.st.SetCurrentPage(domain.PageStatistics, "")
	renderStats(a.out, a.st.Snapshot().Lists)
	return nil
}

func (a *app) history(ctx context.Context, fs *flag.FlagSet, args []string) error {
	periodText := fs.String("period", string(stats.Last30Days), "7d, 30d, 90d or all")
	sortText := fs.String("sort", string(stats.DateDesc), "date_desc, date_asc, value_desc or value_asc")
	if err := parse(fs, args); err != nil {
		return err
	}
	period, err := stats.ParsePeriod(*periodText)
	if err != nil {
		return err
	}
	order, err := stats.ParseSortOrder(*sortText)
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	a.st.SetCurrentPage(domain.PageHistory, "")
	renderLists(a.out, stats.History(a.st.Snapshot().Lists, period, order, a.now()))
	return nil
}

func (a *app) prices(ctx context.Context, fs *flag.FlagSet, args []string) error {
	item := fs.String("item", "", "item name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "item"); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	points := stats.PriceEvolution(a.st.Snapshot().PriceHistory, *item, nil)
	if len(points) == 0 {
		fmt.Fprintf(a.out, "No prices recorded for %q\n", *item)
		return nil
	}
	for _, p := range points {
		fmt.Fprintf(a.out, "%s  %s\n", p.Date.Local().Format(time.DateOnly), money(p.Price))
	}
	return nil
}

func (a *app) suggest(ctx context.Context, fs *flag.FlagSet, args []string) error {
	query := fs.String("q", "", "partial item name")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}
	for _, s := range stats.Suggestions(a.st.Snapshot().PriceHistory, *query, 5) {
		fmt.Fprintf(a.out, "%s  %s\n", s.Name, money(s.LastPrice))
	}
	return nil
}

func (a *app) theme(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		if err := a.st.SetTheme(domain.Theme(strings.ToLower(fs.Arg(0)))); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, "Theme:", a.st.Snapshot().Theme)
	return nil
}

func (a *app) onboarded(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args); err != nil {
		return err
	}
	return a.st.SetHasSeenOnboarding(true)
}
