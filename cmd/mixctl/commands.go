package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/do/v2"

	"github.com/hookahmix/miniapp/internal/apiclient"
	"github.com/hookahmix/miniapp/internal/di/providers"
	"github.com/hookahmix/miniapp/internal/domain"
	domainerrors "github.com/hookahmix/miniapp/internal/errors"
	"github.com/hookahmix/miniapp/internal/nav"
	"github.com/hookahmix/miniapp/internal/pages"
	"github.com/hookahmix/miniapp/internal/state"
)

var errUsage = errors.New("usage")

type command struct {
	run   func(c *cli, ctx context.Context, args []string) error
	usage string
	help  string
}

var commands = map[string]command{
	"me":              {run: (*cli).me, help: "show the current user"},
	"health":          {run: (*cli).health, help: "check the backend"},
	"stats":           {run: (*cli).stats, help: "show collection counts"},
	"tab":             {run: (*cli).tab, usage: "<home|collection|mix|history|favorites>", help: "switch tab and load its data"},
	"tobaccos":        {run: (*cli).tobaccos, usage: "[query]", help: "list the collection, optionally filtered"},
	"add":             {run: (*cli).add, usage: "<name> [brand]", help: "add a tobacco"},
	"bulk":            {run: (*cli).bulk, help: "add tobaccos from stdin, one \"name | brand\" per line"},
	"rename":          {run: (*cli).rename, usage: "<id> <name>", help: "rename a tobacco"},
	"delete":          {run: (*cli).deleteTobacco, usage: "<id>", help: "delete a tobacco"},
	"delete-all":      {run: (*cli).deleteAll, help: "delete the whole collection"},
	"generate":        {run: (*cli).generate, usage: "<surprise|base <tobacco>|profile <taste>>", help: "generate a mix"},
	"history":         {run: (*cli).history, help: "list recent mixes"},
	"favorites":       {run: (*cli).favorites, help: "list favorite mixes"},
	"rate":            {run: (*cli).rate, usage: "<id> <like|dislike>", help: "rate a mix"},
	"fav":             {run: (*cli).fav, usage: "<id>", help: "add a mix to favorites"},
	"unfav":           {run: (*cli).unfav, usage: "<id>", help: "remove a mix from favorites"},
	"clear-favorites": {run: (*cli).clearFavorites, help: "remove every mix from favorites"},
	"serve":           {run: (*cli).serve, help: "keep the session open until interrupted"},
}

// cli binds the resolved services to terminal output.
type cli struct {
	client *apiclient.Client
	store  *state.Store
	pages  *pages.Pages
	nav    *nav.Navigator
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
}

func newCLI(injector do.Injector, term *providers.Terminal) *cli {
	return &cli{
		client: do.MustInvoke[*apiclient.Client](injector),
		store:  do.MustInvoke[*providers.StoreHandle](injector).Store,
		pages:  do.MustInvoke[*providers.PagesHandle](injector).Pages,
		nav:    do.MustInvoke[*nav.Navigator](injector),
		logger: do.MustInvoke[*slog.Logger](injector),
		in:     term.In,
		out:    term.Out,
	}
}

// run dispatches the positional arguments left over after flag parsing.
func run(ctx context.Context, injector do.Injector, term *providers.Terminal) error {
	args := do.MustInvoke[*providers.Invocation](injector).Args
	c := newCLI(injector, term)

	if len(args) == 0 {
		c.printUsage()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		c.printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	err := cmd.run(c, ctx, args[1:])
	if errors.Is(err, errUsage) {
		return fmt.Errorf("usage: mixctl %s %s", args[0], cmd.usage)
	}
	if err != nil {
		return errors.New(domainerrors.MessageOf(err))
	}
	return nil
}

func (c *cli) printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(c.out, "Usage: mixctl [flags] <command> [args]")
	fmt.Fprintln(c.out)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(c.out, "  %-16s %-14s %s\n", name, cmd.usage, cmd.help)
	}
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func parseID(args []string, n int) (int64, error) {
	if len(args) < n {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.Validationf("invalid id %q", args[0])
	}
	return id, nil
}

func (c *cli) me(ctx context.Context, _ []string) error {
	profile, err := c.client.User.Me(ctx)
	if err != nil {
		return err
	}
	c.printf("%s (telegram id %d)\n", c.pages.Greeting(), profile.TelegramID)
	return nil
}

func (c *cli) health(ctx context.Context, _ []string) error {
	h, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	c.printf("%s: %s\n", c.client.BaseURL(), h.Status)
	if !h.OK() {
		return domainerrors.Internalf("backend reports %q", h.Status)
	}
	return nil
}

func (c *cli) stats(ctx context.Context, _ []string) error {
	if err := c.pages.EnterHome(ctx); err != nil {
		return err
	}
	stats, _ := c.store.Stats()
	c.printf("Привет, %s!\n", c.pages.Greeting())
	c.printf("Табаков: %d\nМиксов: %d\nИзбранных: %d\n", stats.TobaccosCount, stats.MixesCount, stats.FavoritesCount)
	return nil
}

func (c *cli) tab(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	tab, err := c.nav.SelectName(args[0])
	if err != nil {
		return err
	}
	if err := c.pages.Enter(ctx, tab); err != nil {
		return err
	}
	c.printf("%s\n", tab)
	return nil
}

func (c *cli) tobaccos(ctx context.Context, args []string) error {
	if err := c.pages.EnterCollection(ctx); err != nil {
		return err
	}
	list, err := c.pages.Collection(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, t := range list {
		c.printf("%6d  %s\n", t.ID, t.Title())
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errUsage
	}
	in := apiclient.TobaccoInput{Name: args[0]}
	if len(args) == 2 {
		in.Brand = &args[1]
	}
	t, err := c.pages.AddTobacco(ctx, in)
	if err != nil {
		return err
	}
	c.printf("%6d  %s\n", t.ID, t.Title())
	return nil
}

func (c *cli) bulk(ctx context.Context, _ []string) error {
	text, err := io.ReadAll(c.in)
	if err != nil {
		return err
	}
	report, err := c.pages.BulkAdd(ctx, string(text))
	if err != nil {
		return err
	}
	c.printf("%s\n", report.Summary)
	return nil
}

func (c *cli) rename(ctx context.Context, args []string) error {
	id, err := parseID(args, 2)
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")
	t, err := c.pages.UpdateTobacco(ctx, id, apiclient.TobaccoUpdate{Name: &name})
	if err != nil {
		return err
	}
	c.printf("%6d  %s\n", t.ID, t.Title())
	return nil
}

func (c *cli) deleteTobacco(ctx context.Context, args []string) error {
	id, err := parseID(args, 1)
	if err != nil {
		return err
	}
	if err := c.pages.EnterCollection(ctx); err != nil {
		return err
	}
	deleted, err := c.pages.DeleteTobacco(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		c.printf("deleted %d\n", id)
	}
	return nil
}

func (c *cli) deleteAll(ctx context.Context, _ []string) error {
	msg, err := c.pages.DeleteAll(ctx)
	if err != nil {
		return err
	}
	if msg != "" {
		c.printf("%s\n", msg)
	}
	return nil
}

func (c *cli) generate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	req := apiclient.GenerateRequest{RequestType: domain.RequestType(args[0])}
	value := strings.Join(args[1:], " ")
	switch req.RequestType {
	case domain.RequestBase:
		req.BaseTobacco = &value
	case domain.RequestProfile:
		req.TasteProfile = &value
	}

	if err := c.pages.EnterMix(ctx); err != nil {
		return err
	}
	if hint := c.pages.GenerateHint(); hint != "" {
		return domainerrors.Validation(hint)
	}

	mix, err := c.pages.Generate(ctx, req)
	if err != nil {
		return err
	}
	c.printGenerated(mix)
	return nil
}

func (c *cli) printGenerated(m domain.GeneratedMix) {
	c.printf("#%d %s\n", m.ID, m.Name)
	for _, comp := range m.Components {
		c.printf("  %s %s %s\n", comp.Role.Glyph(), comp.Tobacco, domain.FormatPortion(comp.Portion))
	}
	if m.Description != "" {
		c.printf("%s\n", m.Description)
	}
	if m.Tips != "" {
		c.printf("💡 %s\n", m.Tips)
	}
}

func (c *cli) printMixes(list []domain.Mix) {
	for _, m := range list {
		marks := ""
		if m.IsFavorite {
			marks += " ⭐"
		}
		if m.Rating != nil {
			marks += " " + m.Rating.Glyph()
		}
		c.printf("%6d  %s%s\n", m.ID, m.Name, marks)
		for _, name := range m.ComponentNames() {
			p := m.Components[name]
			c.printf("        %s %s %s\n", p.Role.Glyph(), name, domain.FormatPortion(p.Portion))
		}
	}
}

func (c *cli) history(ctx context.Context, _ []string) error {
	if err := c.pages.EnterHistory(ctx); err != nil {
		return err
	}
	c.printMixes(c.store.Mixes())
	return nil
}

func (c *cli) favorites(ctx context.Context, _ []string) error {
	if err := c.pages.EnterFavorites(ctx); err != nil {
		return err
	}
	c.printMixes(c.store.Favorites())
	return nil
}

func parseRating(s string) (domain.Rating, error) {
	switch strings.ToLower(s) {
	case "like", "+1", "1", "👍":
		return domain.Like, nil
	case "dislike", "-1", "👎":
		return domain.Dislike, nil
	default:
		return 0, domainerrors.Validationf("invalid rating %q", s)
	}
}

func (c *cli) rate(ctx context.Context, args []string) error {
	id, err := parseID(args, 2)
	if err != nil {
		return err
	}
	rating, err := parseRating(args[1])
	if err != nil {
		return err
	}
	m, err := c.pages.Rate(ctx, id, rating)
	if err != nil {
		return err
	}
	c.printMixes([]domain.Mix{m})
	return nil
}

func (c *cli) fav(ctx context.Context, args []string) error {
	id, err := parseID(args, 1)
	if err != nil {
		return err
	}
	m, err := c.pages.ToggleFavorite(ctx, id, true)
	if err != nil {
		return err
	}
	c.printMixes([]domain.Mix{m})
	return nil
}

func (c *cli) unfav(ctx context.Context, args []string) error {
	id, err := parseID(args, 1)
	if err != nil {
		return err
	}
	removed, err := c.pages.Unfavorite(ctx, id)
	if err != nil {
		return err
	}
	if removed {
		c.printf("removed %d from favorites\n", id)
	}
	return nil
}

func (c *cli) clearFavorites(ctx context.Context, _ []string) error {
	msg, err := c.pages.ClearFavorites(ctx)
	if err != nil {
		return err
	}
	if msg != "" {
		c.printf("%s\n", msg)
	}
	return nil
}

func (c *cli) serve(ctx context.Context, _ []string) error {
	if err := c.pages.EnterHome(ctx); err != nil {
		return err
	}
	c.logger.Info("session open, press Ctrl+C to exit")
	<-ctx.Done()
	return nil
}
