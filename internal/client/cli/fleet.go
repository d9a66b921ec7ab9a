package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/fleetconsole/internal/client/client"
	"github.com/dmitrijs2005/fleetconsole/internal/client/models"
)

// getFields is a test seam for GetFields.
var getFields = GetFields

// maxColumns caps how many record fields a list table shows.
const maxColumns = 6

func (a *App) resource(name string) (models.Resource, bool) {
	res, err := models.ParseResource(name)
	if err != nil {
		printlnFn(err.Error()+":", name)
		return "", false
	}
	return res, true
}

// report prints a failed fleet call. The session is left as it is.
func (a *App) report(what string, err error) error {
	if client.IsCanceled(err) {
		return err
	}
	printlnFn(what+" failed:", client.MessageOf(err, err.Error()))
	return err
}

func (a *App) ListResources(ctx context.Context) error {
	names := make([]string, len(models.Resources))
	for i, r := range models.Resources {
		names[i] = string(r)
	}
	printlnFn("Resources:", strings.Join(names, ", "))
	return nil
}

// parseQuery reads page=, limit= and search= options.
func parseQuery(opts []string) (models.Query, error) {
	var q models.Query
	for _, o := range opts {
		name, value, ok := strings.Cut(o, "=")
		if !ok {
			return q, fmt.Errorf("%w: %s", models.ErrIncorrectField, o)
		}
		switch name {
		case "page", "limit":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return q, fmt.Errorf("%s must be a positive number", name)
			}
			if name == "page" {
				q.Page = n
			} else {
				q.Limit = n
			}
		case "search":
			q.Search = value
		default:
			return q, fmt.Errorf("unknown option %q", name)
		}
	}
	return q, nil
}

// List prints one page of a collection as a table.
func (a *App) List(ctx context.Context, resource string, opts []string) error {
	res, ok := a.resource(resource)
	if !ok {
		return nil
	}
	q, err := parseQuery(opts)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	page, err := a.fleet.List(ctx, res, q)
	if err != nil {
		return a.report("List", err)
	}
	if len(page.Items) == 0 {
		printlnFn("No records")
		return nil
	}

	cols := columns(page.Items)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
	for _, rec := range page.Items {
		cells := make([]string, len(cols))
		for i, c := range cols {
			if c == "id" {
				cells[i] = rec.ID()
				continue
			}
			cells[i] = cell(rec[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Showing %d of %d", len(page.Items), page.Total))
	return nil
}

// columns returns "id" followed by the other field names seen in recs,
// sorted and capped at maxColumns.
func columns(recs []models.Record) []string {
	seen := map[string]struct{}{}
	for _, r := range recs {
		for k, v := range r {
			if k == "id" || k == "_id" {
				continue
			}
			switch v.(type) {
			case map[string]any, []any:
				continue
			}
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxColumns-1 {
		keys = keys[:maxColumns-1]
	}
	return append([]string{"id"}, keys...)
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func (a *App) printRecord(rec models.Record) error {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s:\t%s\n", k, cell(rec[k]))
	}
	return tw.Flush()
}

func (a *App) Get(ctx context.Context, resource, id string) error {
	res, ok := a.resource(resource)
	if !ok {
		return nil
	}
	rec, err := a.fleet.Get(ctx, res, id)
	if err != nil {
		return a.report("Get", err)
	}
	return a.printRecord(rec)
}

func (a *App) readRecord() (models.Record, error) {
	lines, err := getFields(a.reader, a.out)
	if err != nil {
		return nil, inputFailed(err)
	}
	rec, err := models.RecordFromPairs(lines)
	if err != nil {
		printlnFn(err.Error())
		return nil, err
	}
	return rec, nil
}

// Create reads name=value fields and creates a record from them.
func (a *App) Create(ctx context.Context, resource string) error {
	res, ok := a.resource(resource)
	if !ok {
		return nil
	}
	rec, err := a.readRecord()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		printlnFn("Nothing to create")
		return nil
	}
	created, err := a.fleet.Create(ctx, res, rec)
	if err != nil {
		return a.report("Create", err)
	}
	printlnFn("Created", created.ID())
	return nil
}

// Update reads name=value fields and applies them to the record id.
func (a *App) Update(ctx context.Context, resource, id string) error {
	res, ok := a.resource(resource)
	if !ok {
		return nil
	}
	rec, err := a.readRecord()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		printlnFn("Nothing to update")
		return nil
	}
	if _, err := a.fleet.Update(ctx, res, id, rec); err != nil {
		return a.report("Update", err)
	}
	printlnFn("Updated", id)
	return nil
}

// Delete removes the record id after the user confirms.
func (a *App) Delete(ctx context.Context, resource, id string) error {
	res, ok := a.resource(resource)
	if !ok {
		return nil
	}
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %s %s? Type yes to confirm", res, id), a.out)
	if err != nil {
		return inputFailed(err)
	}
	if !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled")
		return nil
	}
	if err := a.fleet.Delete(ctx, res, id); err != nil {
		return a.report("Delete", err)
	}
	printlnFn("Deleted", id)
	return nil
}
