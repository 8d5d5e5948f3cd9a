// Package cli implements the command set of the interactive trip browser.
// A Session executes one command line at a time against an app.App and
// renders the result as text; cmd/tripbrowser drives it from a line editor.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"github.com/natefinch/atomic"

	"github.com/pkordes/trip-browser/internal/app"
	"github.com/pkordes/trip-browser/internal/domain"
	"github.com/pkordes/trip-browser/internal/filter"
	"github.com/pkordes/trip-browser/internal/query"
	"github.com/pkordes/trip-browser/internal/service"
)

// titleWidth is the column width titles are truncated to in listings.
const titleWidth = 36

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// command is one REPL verb.
type command struct {
	name  string
	args  string
	short string
	run   func(ctx context.Context, s *Session, args []string) error
}

// commands is the full command table in help order. It is populated in
// init because the help command refers back to it.
var commands []command

func init() {
	commands = []command{
		{"show", "", "Show the current page", cmdShow},
		{"sort", "<field>", "Sort by title, price, rating or creationDate", cmdSort},
		{"order", "", "Toggle ascending/descending order", cmdOrder},
		{"title", "[text]", "Filter by title (empty clears)", inputCmd(filter.FieldTitle)},
		{"min-price", "[n]", "Minimum price (empty clears)", inputCmd(filter.FieldMinPrice)},
		{"max-price", "[n]", "Maximum price (empty clears)", inputCmd(filter.FieldMaxPrice)},
		{"min-rating", "[0-5]", "Minimum rating (empty clears)", inputCmd(filter.FieldMinRating)},
		{"max-rating", "[0-5]", "Maximum rating (empty clears)", inputCmd(filter.FieldMaxRating)},
		{"tag", "<tag>[,tag...]", "Add tags", cmdTag},
		{"untag", "[tag]", "Remove a tag (no argument removes the last one)", cmdUntag},
		{"clear", "", "Clear every filter", cmdClear},
		{"next", "", "Next page", cmdNext},
		{"prev", "", "Previous page", cmdPrev},
		{"page", "<n>", "Go to page n", cmdPage},
		{"detail", "<id>", "Show one trip in full", cmdDetail},
		{"today", "", "Show the trip of the day", cmdToday},
		{"refresh", "", "Pick a new trip of the day", cmdRefresh},
		{"reload", "", "Reload the current page", cmdReload},
		{"clear-cache", "", "Empty the response cache and reload", cmdClearCache},
		{"url", "", "Print the current location", cmdURL},
		{"export", "<file> [json|csv]", "Write the current page to a file", cmdExport},
		{"help", "", "Show this help", cmdHelp},
		{"quit", "", "Exit", func(context.Context, *Session, []string) error { return ErrQuit }},
	}
}

// aliases map shorthand verbs to command names.
var aliases = map[string]string{
	"ls": "show", "list": "show", "previous": "prev", "goto": "page",
	"exit": "quit", "q": "quit", "?": "help",
}

// Session runs commands against one browsing session.
type Session struct {
	app *app.App
	out io.Writer
}

// NewSession returns a Session writing its output to out.
func NewSession(a *app.App, out io.Writer) *Session {
	return &Session{app: a, out: out}
}

// Exec runs one command line. Unknown commands and bad arguments are
// reported to the output, not returned; the returned error is ErrQuit or a
// failure the caller should surface.
func (s *Session) Exec(ctx context.Context, line string) error {
	verb, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	if verb == "" {
		return nil
	}
	verb = strings.ToLower(verb)
	if name, ok := aliases[verb]; ok {
		verb = name
	}
	for _, c := range commands {
		if c.name == verb {
			return c.run(ctx, s, splitArgs(rest))
		}
	}
	s.printf("Unknown command: %s (type 'help' for commands)\n", verb)
	return nil
}

// Complete returns every command name starting with line.
func Complete(line string) []string {
	prefix := strings.ToLower(strings.TrimLeft(line, " "))
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c.name, prefix) {
			out = append(out, c.name)
		}
	}
	return out
}

// splitArgs splits on whitespace. Commands taking free text (titles, tags)
// join the fields back together.
func splitArgs(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	return strings.Fields(rest)
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// ---- listing ----

func cmdShow(ctx context.Context, s *Session, _ []string) error {
	if s.app.Browser.View().Status == service.StatusIdle {
		_ = s.app.Browser.Load(ctx)
	}
	s.render()
	return nil
}

func cmdReload(ctx context.Context, s *Session, _ []string) error {
	_ = s.app.Browser.Load(ctx)
	s.render()
	return nil
}

func cmdClearCache(ctx context.Context, s *Session, _ []string) error {
	_ = s.app.Browser.ClearCache(ctx)
	s.render()
	return nil
}

func cmdSort(ctx context.Context, s *Session, args []string) error {
	if len(args) != 1 {
		s.printf("usage: sort <field>\n")
		return nil
	}
	field, ok := domain.ParseSortField(args[0])
	if !ok {
		s.printf("unknown sort field %q (one of %s)\n", args[0], sortFieldList())
		return nil
	}
	return s.apply(ctx, query.SortChanged{Field: field})
}

func cmdOrder(ctx context.Context, s *Session, _ []string) error {
	return s.apply(ctx, query.SortDirectionToggled{})
}

// inputCmd binds a raw filter input command to field.
func inputCmd(field filter.Field) func(context.Context, *Session, []string) error {
	return func(ctx context.Context, s *Session, args []string) error {
		raw := strings.Join(args, " ")
		res, err := s.app.Browser.Input(ctx, field, raw)
		if res.ResetInput() {
			s.printf("%s: %q is not a valid value, filter cleared\n", field, raw)
		}
		return s.afterChange(res, err)
	}
}

func cmdTag(ctx context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		s.printf("usage: tag <tag>[,tag...]\n")
		return nil
	}
	res, err := s.app.Browser.TypeTags(ctx, strings.Join(args, " "))
	if err != nil {
		return s.afterChange(res, err)
	}
	// Text after the last comma is still pending; commit it as well.
	committed, err := s.app.Browser.CommitTag(ctx)
	res.Changed = res.Changed || committed.Changed
	return s.afterChange(res, err)
}

func cmdUntag(ctx context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		res, err := s.app.Browser.DeleteTagKey(ctx)
		return s.afterChange(res, err)
	}
	return s.apply(ctx, query.TagRemoved{Tag: strings.Join(args, " ")})
}

func cmdClear(ctx context.Context, s *Session, _ []string) error {
	res, err := s.app.Browser.ClearFilters(ctx)
	return s.afterChange(res, err)
}

// ---- paging ----

func cmdNext(ctx context.Context, s *Session, _ []string) error {
	return s.navigate(s.app.Browser.Next(ctx))
}

func cmdPrev(ctx context.Context, s *Session, _ []string) error {
	return s.navigate(s.app.Browser.Previous(ctx))
}

func cmdPage(ctx context.Context, s *Session, args []string) error {
	if len(args) != 1 {
		s.printf("usage: page <n>\n")
		return nil
	}
	return s.navigate(s.app.Browser.GoTo(ctx, args[0]))
}

func (s *Session) navigate(err error) error {
	if errors.Is(err, domain.ErrNavigationRejected) {
		v := s.app.Browser.View()
		s.printf("no such page (page %d of %d)\n", v.Query.Page.Page, v.TotalPages())
		return nil
	}
	s.render()
	return nil
}

// ---- details and daily pick ----

func cmdDetail(ctx context.Context, s *Session, args []string) error {
	if len(args) != 1 {
		s.printf("usage: detail <id>\n")
		return nil
	}
	t, err := s.app.Details.Load(ctx, args[0])
	if err != nil {
		s.printf("%s\n", service.DetailErrorMessage)
		return nil
	}
	s.renderTrip(t)
	return nil
}

func cmdToday(ctx context.Context, s *Session, _ []string) error {
	t, ok, err := s.app.Picks.Current(ctx)
	return s.renderPick(t, ok, err)
}

func cmdRefresh(ctx context.Context, s *Session, _ []string) error {
	t, ok, err := s.app.Picks.Refresh(ctx)
	return s.renderPick(t, ok, err)
}

func (s *Session) renderPick(t domain.Trip, ok bool, err error) error {
	switch {
	case err != nil:
		s.printf("could not load the trip of the day\n")
	case !ok:
		s.printf("no trips available\n")
	default:
		s.printf("Trip of the day (%s)\n", s.app.Picks.Today())
		s.renderTrip(t)
	}
	return nil
}

// ---- location and export ----

func cmdURL(_ context.Context, s *Session, _ []string) error {
	s.printf("%s\n", s.app.Location.String())
	return nil
}

func cmdExport(ctx context.Context, s *Session, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		s.printf("usage: export <file> [json|csv]\n")
		return nil
	}
	path := args[0]
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if len(args) == 2 {
		format = strings.ToLower(args[1])
	}

	rows, err := s.app.Export.Export(ctx)
	if err != nil {
		return fmt.Errorf("cli.export: %w", err)
	}
	n, err := writeExport(path, format, rows)
	if errors.Is(err, domain.ErrValidation) {
		s.printf("unsupported export format %q (json or csv)\n", format)
		return nil
	}
	if err != nil {
		return fmt.Errorf("cli.export: %w", err)
	}
	s.printf("wrote %d trips to %s (%d bytes)\n", len(rows), path, n)
	return nil
}

func cmdHelp(_ context.Context, s *Session, _ []string) error {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s %s\t%s\n", c.name, c.args, c.short)
	}
	return tw.Flush()
}

// ---- rendering ----

func (s *Session) apply(ctx context.Context, e query.Event) error {
	res, err := s.app.Browser.Apply(ctx, e)
	return s.afterChange(res, err)
}

// afterChange renders the view after an event. A failed reload is shown in
// the view itself, so it is not returned.
func (s *Session) afterChange(res query.Result, err error) error {
	if errors.Is(err, domain.ErrValidation) {
		s.printf("%v\n", err)
		return nil
	}
	if !res.Changed {
		if v := s.app.Browser.View(); v.PendingTag != "" {
			s.printf("pending tag: %s\n", v.PendingTag)
		}
		return nil
	}
	s.render()
	return nil
}

func (s *Session) render() {
	v := s.app.Browser.View()
	q := v.Query

	s.printf("Sorted by %s %s", q.Sort.Field, q.Sort.Direction)
	if filters := describeFilters(q.Filter); filters != "" {
		s.printf(" | %s", filters)
	}
	s.printf("\n")

	switch v.Status {
	case service.StatusLoading:
		s.printf("loading...\n")
		return
	case service.StatusFailed:
		s.printf("error: %s\n", v.Error)
		return
	}
	if len(v.Items) == 0 {
		s.printf("No trips found.\n")
		return
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tRATING\tSCORE")
	for _, t := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%d)\t%.1f %s\n",
			t.ID,
			runewidth.Truncate(t.Title, titleWidth, "..."),
			domain.FormatFloat(t.Price),
			domain.FormatFloat(t.Rating), t.RatingCount,
			t.Score(), t.ScoreTier(),
		)
	}
	_ = tw.Flush()
	s.printf("Page %d of %d (%d trips)\n", q.Page.Page, v.TotalPages(), v.Total())
}

func (s *Session) renderTrip(t domain.Trip) {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  id\t%s\n", t.ID)
	fmt.Fprintf(tw, "  title\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "  description\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "  price\t%s\n", domain.FormatFloat(t.Price))
	fmt.Fprintf(tw, "  rating\t%s (%d ratings)\n", domain.FormatFloat(t.Rating), t.RatingCount)
	fmt.Fprintf(tw, "  score\t%.1f %s\n", t.Score(), t.ScoreTier())
	if len(t.Tags) > 0 {
		fmt.Fprintf(tw, "  tags\t%s\n", strings.Join(t.Tags, ", "))
	}
	if t.CreatedOn != "" {
		fmt.Fprintf(tw, "  created\t%s\n", t.CreatedOn)
	}
	_ = tw.Flush()
}

func describeFilters(f domain.FilterSpec) string {
	params := f.Params()
	parts := make([]string, 0, len(params))
	for _, name := range domain.FilterParamNames {
		if v, ok := params[name]; ok {
			parts = append(parts, name+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

func sortFieldList() string {
	names := make([]string, len(domain.SortFields))
	for i, f := range domain.SortFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// writeExport renders rows and writes them to path atomically.
func writeExport(path, format string, rows []domain.ExportRow) (int, error) {
	var buf strings.Builder
	if err := service.WriteTo(&buf, format, rows); err != nil {
		return 0, err
	}
	if err := atomic.WriteFile(path, strings.NewReader(buf.String())); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// HistoryPath returns the REPL history file, or "" when there is no home dir.
func HistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tripbrowser_history")
}
