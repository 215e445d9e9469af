package sheets

import (
	"context"
	"fmt"
	"strings"

	"herald/internal/store"
	logx "herald/pkg/logx"
)

// Source lists importable rows. Satisfied by *Client.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
}

// Importer merges spreadsheet rows into the event store. Duplicates are
// matched by (title, date); sheet-sourced duplicates get a field refresh,
// manually created events are left alone.
type Importer struct {
	src Source
	st  store.Store
	log logx.Logger
}

func NewImporter(src Source, st store.Store, log logx.Logger) *Importer {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Importer{src: src, st: st, log: log}
}

// Result summarizes one sync run.
type Result struct {
	Imported int
	Updated  int
	Skipped  int
	Errors   int
	Details  []string
}

// Preview parses the sheet without writing anything.
func (im *Importer) Preview(ctx context.Context) ([]store.Event, error) {
	rows, err := im.src.Rows(ctx)
	if err != nil {
		return nil, err
	}
	var out []store.Event
	for _, r := range rows {
		ev, err := ParseRow(r)
		if err != nil {
			im.log.Warn("skipping sheet row", logx.Int("row", r.Number), logx.Err(err))
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Sync imports the sheet into the store. createdBy is recorded on new events.
func (im *Importer) Sync(ctx context.Context, createdBy int64) (Result, error) {
	rows, err := im.src.Rows(ctx)
	if err != nil {
		return Result{}, err
	}
	existing, err := im.st.List(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, r := range rows {
		ev, err := ParseRow(r)
		if err != nil {
			res.Errors++
			res.Details = append(res.Details, fmt.Sprintf("❌ row %d: %v", r.Number, err))
			im.log.Warn("skipping sheet row", logx.Int("row", r.Number), logx.Err(err))
			continue
		}
		ev.CreatedBy = createdBy

		dup := findDuplicate(existing, ev)
		if dup == nil {
			created, err := im.st.Create(ctx, ev)
			if err != nil {
				res.Errors++
				res.Details = append(res.Details, fmt.Sprintf("❌ %s: %v", ev.Title, err))
				continue
			}
			existing = append(existing, created)
			res.Imported++
			res.Details = append(res.Details, "✅ Imported: "+ev.Title)
			continue
		}

		if dup.Source != store.SourceSheets {
			res.Skipped++
			res.Details = append(res.Details,
				"⏭️ Skipped: "+ev.Title+" (already exists, preserving manual changes)")
			continue
		}

		up := diffUpdate(*dup, ev)
		if up.IsZero() {
			res.Skipped++
			res.Details = append(res.Details, "⏭️ Skipped: "+ev.Title+" (unchanged)")
			continue
		}
		if _, err := im.st.Update(ctx, dup.ID, up.Update); err != nil {
			res.Errors++
			res.Details = append(res.Details, fmt.Sprintf("❌ %s: %v", ev.Title, err))
			continue
		}
		res.Updated++
		res.Details = append(res.Details, "🔄 Updated: "+ev.Title)
	}

	im.log.Info("sheet sync done",
		logx.Int("imported", res.Imported), logx.Int("updated", res.Updated),
		logx.Int("skipped", res.Skipped), logx.Int("errors", res.Errors))
	return res, nil
}

func findDuplicate(existing []store.Event, ev store.Event) *store.Event {
	for i := range existing {
		if strings.EqualFold(existing[i].Title, ev.Title) && existing[i].Date.Equal(ev.Date) {
			return &existing[i]
		}
	}
	return nil
}

// update wraps store.Update with an emptiness check the store keeps private.
type update struct {
	store.Update
	set bool
}

func (u update) IsZero() bool { return !u.set }

// diffUpdate builds the refresh for a sheet-sourced duplicate. Only fields
// the sheet owns are touched; images and sent flags are never part of it.
func diffUpdate(old, fresh store.Event) update {
	var u update
	if old.Description != fresh.Description {
		u.Description, u.set = &fresh.Description, true
	}
	if old.Time != fresh.Time {
		u.Time, u.set = &fresh.Time, true
	}
	if old.Location != fresh.Location {
		u.Location, u.set = &fresh.Location, true
	}
	if old.Speaker != fresh.Speaker {
		u.Speaker, u.set = &fresh.Speaker, true
	}
	if old.RowNumber != fresh.RowNumber {
		u.RowNumber, u.set = &fresh.RowNumber, true
	}
	return u
}
