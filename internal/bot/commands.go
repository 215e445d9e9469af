// Package bot is the Telegram command layer: event CRUD, the manual
// announce flow, spreadsheet sync and calendar export.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"herald/internal/announce"
	icsx "herald/internal/ics"
	"herald/internal/sheets"
	"herald/internal/store"
	"herald/internal/timeofday"
	"herald/internal/transport"
	"herald/pkg/logx"
	"herald/pkg/tgui"
)

type Config struct {
	AdminUserIDs     []int64
	Timezone         *time.Location
	SelectionTimeout time.Duration
}

// Handlers wires the slash commands onto a telebot instance.
type Handlers struct {
	bot    *tele.Bot
	sender transport.Adapter
	st     store.Store
	driver *announce.Driver
	// importer is nil when the sheets source is not configured.
	importer *sheets.Importer
	log      logx.Logger

	mu     sync.RWMutex
	admins map[int64]struct{}
	loc    *time.Location
	selTTL time.Duration

	sel  *selector
	refs sync.Map // chatID -> transport.MessageRef of the live selection
}

func New(b *tele.Bot, sender transport.Adapter, st store.Store, driver *announce.Driver, importer *sheets.Importer, cfg Config, log logx.Logger) *Handlers {
	if log.IsZero() {
		log = logx.Nop()
	}
	h := &Handlers{
		bot:      b,
		sender:   sender,
		st:       st,
		driver:   driver,
		importer: importer,
		log:      log,
		sel:      newSelector(),
	}
	h.ApplyConfig(cfg)
	return h
}

// ApplyConfig swaps the admin list and timezone, used on config reload.
func (h *Handlers) ApplyConfig(cfg Config) {
	admins := make(map[int64]struct{}, len(cfg.AdminUserIDs))
	for _, id := range cfg.AdminUserIDs {
		admins[id] = struct{}{}
	}
	loc := cfg.Timezone
	if loc == nil {
		loc = time.Local
	}
	ttl := cfg.SelectionTimeout
	if ttl <= 0 {
		ttl = DefaultSelectionTimeout
	}

	h.mu.Lock()
	h.admins = admins
	h.loc = loc
	h.selTTL = ttl
	h.mu.Unlock()
}

func (h *Handlers) isAdmin(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.admins[userID]
	return ok
}

func (h *Handlers) location() *time.Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loc
}

// Register installs all handlers. Call before the adapter starts polling.
func (h *Handlers) Register() {
	h.bot.Handle("/addevent", h.adminOnly(h.handleAddEvent))
	h.bot.Handle("/events", h.handleEvents)
	h.bot.Handle("/deleteevent", h.adminOnly(h.handleDeleteEvent))
	h.bot.Handle("/editevent", h.adminOnly(h.handleEditEvent))
	h.bot.Handle("/announce", h.adminOnly(h.handleAnnounce))
	h.bot.Handle("/syncevents", h.adminOnly(h.handleSyncEvents))
	h.bot.Handle("/calendar", h.handleCalendar)
	h.bot.Handle("/about", h.handleAbout)
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

func (h *Handlers) adminOnly(fn tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil || !h.isAdmin(c.Sender().ID) {
			return c.Send("Sorry, this command is for organizers only.")
		}
		return fn(c)
	}
}

func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// --- /addevent ---

const addEventUsage = "Usage: /addevent Title | YYYY-MM-DD | time | location | description\n" +
	"Reply to a photo to attach it to the event."

func (h *Handlers) handleAddEvent(c tele.Context) error {
	parts := splitPipes(c.Message().Payload)
	if len(parts) < 4 {
		return c.Send(addEventUsage)
	}

	date, err := store.ParseDate(parts[1])
	if err != nil {
		return c.Send("❌ " + err.Error())
	}
	today := store.Today(h.location(), time.Now())
	if date.Before(today) {
		return c.Send("❌ The event date is in the past.")
	}

	ev := store.Event{
		Title:    parts[0],
		Date:     date,
		Time:     parts[2],
		Location: parts[3],
		Source:   store.SourceManual,
	}
	if len(parts) > 4 {
		ev.Description = parts[4]
	}
	if c.Sender() != nil {
		ev.CreatedBy = c.Sender().ID
	}

	ctx, cancel := handlerContext()
	defer cancel()
	created, err := h.st.Create(ctx, ev)
	if err != nil {
		h.log.Error("addevent failed", logx.Err(err))
		return c.Send("❌ Could not save the event.")
	}

	note := ""
	if photo := replyPhoto(c.Message()); photo != nil {
		if err := h.attachPhoto(ctx, created.ID, photo); err != nil {
			h.log.Warn("photo attach failed", logx.String("event_id", created.ID), logx.Err(err))
			note = "\n⚠️ The photo could not be attached."
		} else {
			note = "\n🖼 Photo attached."
		}
	}
	if _, ok := timeofday.Parse(created.Time); !ok {
		note += "\n⚠️ I can't parse that time, so no same-day reminder will go out until it is edited."
	}

	return c.Send(fmt.Sprintf("✅ Added **%s** on %s (`%s`).%s",
		created.Title, announce.FormatLongDate(created.Date), created.ID, note),
		tele.ModeMarkdown)
}

func replyPhoto(m *tele.Message) *tele.Photo {
	if m == nil || m.ReplyTo == nil {
		return nil
	}
	return m.ReplyTo.Photo
}

func (h *Handlers) attachPhoto(ctx context.Context, eventID string, photo *tele.Photo) error {
	rc, err := h.bot.File(&photo.File)
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, 10<<20))
	if err != nil {
		return err
	}
	_, err = h.st.SaveImage(ctx, eventID, data, "jpg")
	return err
}

// --- /events ---

func (h *Handlers) handleEvents(c tele.Context) error {
	ctx, cancel := handlerContext()
	defer cancel()

	events, err := h.st.List(ctx)
	if err != nil {
		h.log.Error("listing events failed", logx.Err(err))
		return c.Send("❌ Could not load events.")
	}

	showAll := strings.EqualFold(strings.TrimSpace(c.Message().Payload), "all")
	if !showAll {
		today := store.Today(h.location(), time.Now())
		events = filterUpcoming(events, today)
	}
	if len(events) == 0 {
		if showAll {
			return c.Send("No events yet. Add one with /addevent.")
		}
		return c.Send("No upcoming events. Use `/events all` to include past ones.", tele.ModeMarkdown)
	}

	var b strings.Builder
	if showAll {
		fmt.Fprintf(&b, "📋 **All events (%d)**\n", len(events))
	} else {
		fmt.Fprintf(&b, "📋 **Upcoming events (%d)**\n", len(events))
	}
	for _, ev := range events {
		fmt.Fprintf(&b, "\n**%s** — %s, %s\n", ev.Title, announce.FormatLongDate(ev.Date), ev.Time)
		if ev.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", ev.Location)
		}
		fmt.Fprintf(&b, "`%s` · 📣 %s · ⏰ %s\n", ev.ID, flag(ev.Announcement), flag(ev.Reminder))
	}
	return c.Send(b.String(), tele.ModeMarkdown)
}

func filterUpcoming(events []store.Event, today store.Date) []store.Event {
	var out []store.Event
	for _, ev := range events {
		if !ev.Date.Before(today) {
			out = append(out, ev)
		}
	}
	return out
}

func flag(s store.SentState) string {
	if s == store.Sent {
		return "sent"
	}
	return "pending"
}

// --- event lookup shared by delete/edit ---

// resolve finds an event by exact id, then by case-insensitive title
// substring. Ambiguity is reported to the user, never guessed away.
func (h *Handlers) resolve(ctx context.Context, query string) (store.Event, []store.Event, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return store.Event{}, nil, errors.New("empty query")
	}
	if ev, err := h.st.Get(ctx, query); err == nil {
		return ev, nil, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Event{}, nil, err
	}

	events, err := h.st.List(ctx)
	if err != nil {
		return store.Event{}, nil, err
	}
	var matches []store.Event
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Title), strings.ToLower(query)) {
			matches = append(matches, ev)
		}
	}
	switch len(matches) {
	case 0:
		return store.Event{}, nil, store.ErrNotFound
	case 1:
		return matches[0], nil, nil
	default:
		return store.Event{}, matches, nil
	}
}

func ambiguousReply(matches []store.Event) string {
	var b strings.Builder
	b.WriteString("That matches several events, use the id instead:\n")
	for _, ev := range matches {
		fmt.Fprintf(&b, "- %s (%s) `%s`\n", ev.Title, ev.Date, ev.ID)
	}
	return b.String()
}

// --- /deleteevent ---

func (h *Handlers) handleDeleteEvent(c tele.Context) error {
	ctx, cancel := handlerContext()
	defer cancel()

	ev, matches, err := h.resolve(ctx, c.Message().Payload)
	if errors.Is(err, store.ErrNotFound) {
		return c.Send("❌ No event matches that id or title.")
	}
	if err != nil {
		if err.Error() == "empty query" {
			return c.Send("Usage: /deleteevent <id or title>")
		}
		h.log.Error("deleteevent lookup failed", logx.Err(err))
		return c.Send("❌ Lookup failed.")
	}
	if matches != nil {
		return c.Send(ambiguousReply(matches), tele.ModeMarkdown)
	}

	kb := tgui.ConfirmInline(
		tgui.Btn("🗑 Delete", tgui.Data("del", "yes", ev.ID)),
		tgui.Btn("Cancel", tgui.Data("del", "no", "")),
	)
	return c.Send(
		fmt.Sprintf("Delete **%s** on %s?", ev.Title, announce.FormatLongDate(ev.Date)),
		kb.Markup(), tele.ModeMarkdown)
}

// --- /editevent ---

const editEventUsage = "Usage: /editevent <id or title> | field=value | ...\n" +
	"Fields: title, date (YYYY-MM-DD), time, location, description, speaker."

func (h *Handlers) handleEditEvent(c tele.Context) error {
	parts := splitPipes(c.Message().Payload)
	if len(parts) < 2 {
		return c.Send(editEventUsage)
	}

	ctx, cancel := handlerContext()
	defer cancel()

	ev, matches, err := h.resolve(ctx, parts[0])
	if errors.Is(err, store.ErrNotFound) {
		return c.Send("❌ No event matches that id or title.")
	}
	if err != nil {
		h.log.Error("editevent lookup failed", logx.Err(err))
		return c.Send("❌ Lookup failed.")
	}
	if matches != nil {
		return c.Send(ambiguousReply(matches), tele.ModeMarkdown)
	}

	up, err := parseFieldEdits(parts[1:], store.Today(h.location(), time.Now()))
	if err != nil {
		return c.Send("❌ " + err.Error())
	}

	updated, err := h.st.Update(ctx, ev.ID, up)
	if err != nil {
		h.log.Error("editevent failed", logx.String("event_id", ev.ID), logx.Err(err))
		return c.Send("❌ Could not update the event.")
	}
	return c.Send(fmt.Sprintf("✅ Updated **%s** (%s, %s).",
		updated.Title, updated.Date, updated.Time), tele.ModeMarkdown)
}

func parseFieldEdits(pairs []string, today store.Date) (store.Update, error) {
	var up store.Update
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return store.Update{}, fmt.Errorf("expected field=value, got %q", p)
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		switch k {
		case "title":
			up.Title = &v
		case "date":
			d, err := store.ParseDate(v)
			if err != nil {
				return store.Update{}, err
			}
			if d.Before(today) {
				return store.Update{}, errors.New("cannot move an event into the past")
			}
			up.Date = &d
		case "time":
			up.Time = &v
		case "location":
			up.Location = &v
		case "description":
			up.Description = &v
		case "speaker":
			up.Speaker = &v
		default:
			return store.Update{}, fmt.Errorf("unknown field %q", k)
		}
	}
	return up, nil
}

// --- /announce (manual selection flow) ---

func (h *Handlers) handleAnnounce(c tele.Context) error {
	ctx, cancel := handlerContext()
	defer cancel()

	kinds, err := announceKinds(c.Message().Payload)
	if err != nil {
		return c.Send("Usage: /announce [advance|reminder|both]")
	}

	// Manual runs evaluate with the wide catch-up windows so an operator can
	// push out anything recoverable right now.
	due, err := h.driver.DueNow(ctx, announce.ModeCatchUp, kinds...)
	if err != nil {
		h.log.Error("announce evaluation failed", logx.Err(err))
		return c.Send("❌ Could not evaluate pending announcements.")
	}
	if len(due) == 0 {
		return c.Send("Nothing is due right now. 🎉")
	}

	chatID := c.Chat().ID
	target := transport.ChatTarget{ChatID: chatID, ThreadID: c.Message().ThreadID}

	text := selectionText(due)
	markup := h.selectionMarkup(due, nil)
	ref, err := h.sender.SendText(ctx, target, text,
		&transport.SendOptions{ParseMode: "Markdown", ReplyMarkupAdapter: markup})
	if err != nil {
		h.log.Error("selection message failed", logx.Err(err))
		return c.Send("❌ Could not start the selection.")
	}

	h.mu.RLock()
	ttl := h.selTTL
	h.mu.RUnlock()

	var sess *Selection
	sess = NewSelection(due, ttl, func() {
		h.sel.drop(chatID, sess)
		h.refs.Delete(chatID)
		ectx, ecancel := handlerContext()
		defer ecancel()
		if err := h.sender.EditText(ectx, ref,
			"⏰ Selection timed out. No announcements were sent.", nil); err != nil {
			h.log.Warn("timeout edit failed", logx.Err(err))
		}
	})
	h.refs.Store(chatID, ref)
	h.sel.put(chatID, sess)
	return nil
}

func announceKinds(payload string) ([]announce.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(payload)) {
	case "", "both":
		return nil, nil
	case "advance":
		return []announce.Kind{announce.KindAdvance}, nil
	case "reminder":
		return []announce.Kind{announce.KindReminder}, nil
	default:
		return nil, errors.New("unknown kind")
	}
}

func selectionText(due []announce.Due) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📣 **%d announcement(s) ready.** Toggle and press Send.\n", len(due))
	for _, d := range due {
		fmt.Fprintf(&b, "\n- %s · **%s** (%s, %s)", d.Kind, d.Event.Title, d.Event.Date, d.Event.Time)
	}
	return b.String()
}

// selectionMarkup renders one toggle button per due item plus Send/Cancel.
// sess == nil means everything is selected (a session not yet created).
func (h *Handlers) selectionMarkup(due []announce.Due, sess *Selection) *tele.ReplyMarkup {
	kb := tgui.NewInline()
	for _, d := range due {
		k := key(d)
		box := "☑"
		if sess != nil && !sess.Chosen(k) {
			box = "☐"
		}
		label := fmt.Sprintf("%s %s · %s", box, d.Kind, tgui.TruncRunes(d.Event.Title, 24))
		kb.Row(tgui.Btn(label, tgui.Data("ann", "tog", k)))
	}
	kb.Row(
		tgui.Btn("📤 Send", tgui.Data("ann", "send", "")),
		tgui.Btn("Cancel", tgui.Data("ann", "cancel", "")),
	)
	return kb.Markup()
}

// --- callbacks ---

func (h *Handlers) handleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || c.Sender() == nil {
		return nil
	}
	if !h.isAdmin(c.Sender().ID) {
		return h.respond(cb.ID, "Organizers only.")
	}

	scope, action, payload := tgui.Split(strings.TrimPrefix(strings.TrimSpace(cb.Data), "\f"))
	switch scope {
	case "ann":
		return h.handleAnnounceCallback(c, cb, action, payload)
	case "del":
		return h.handleDeleteCallback(c, cb, action, payload)
	default:
		return h.respond(cb.ID, "")
	}
}

func (h *Handlers) respond(callbackID, text string) error {
	ctx, cancel := handlerContext()
	defer cancel()
	return h.sender.AnswerCallback(ctx, callbackID, tgui.TruncRunes(text, 180))
}

func (h *Handlers) handleAnnounceCallback(c tele.Context, cb *tele.Callback, action, payload string) error {
	chatID := c.Chat().ID
	sess := h.sel.get(chatID)
	if sess == nil {
		return h.respond(cb.ID, "That selection has expired.")
	}
	refVal, ok := h.refs.Load(chatID)
	if !ok {
		return h.respond(cb.ID, "That selection has expired.")
	}
	ref := refVal.(transport.MessageRef)

	ctx, cancel := handlerContext()
	defer cancel()

	switch action {
	case "tog":
		if _, ok := sess.Toggle(payload); !ok {
			return h.respond(cb.ID, "That selection has expired.")
		}
		markup := h.selectionMarkup(sess.Items(), sess)
		if err := h.sender.EditText(ctx, ref, selectionText(sess.Items()),
			&transport.SendOptions{ParseMode: "Markdown", ReplyMarkupAdapter: markup}); err != nil {
			h.log.Warn("selection edit failed", logx.Err(err))
		}
		return h.respond(cb.ID, "")

	case "send":
		out, ok := sess.Confirm()
		if !ok {
			return h.respond(cb.ID, "That selection has expired.")
		}
		h.sel.drop(chatID, sess)
		h.refs.Delete(chatID)

		if len(out.Selected) == 0 {
			_ = h.sender.EditText(ctx, ref, "Nothing selected, nothing sent.", nil)
			return h.respond(cb.ID, "")
		}
		sent, failed := h.driver.Dispatch(ctx, out.Selected)
		summary := fmt.Sprintf("✅ Sent %d announcement(s).", sent)
		if failed > 0 {
			summary += fmt.Sprintf(" %d failed and will be retried by the scheduler.", failed)
		}
		if err := h.sender.EditText(ctx, ref, summary, nil); err != nil {
			h.log.Warn("result edit failed", logx.Err(err))
		}
		return h.respond(cb.ID, "")

	case "cancel":
		if sess.Cancel() {
			h.sel.drop(chatID, sess)
			h.refs.Delete(chatID)
			_ = h.sender.EditText(ctx, ref, "Cancelled. Nothing was sent.", nil)
		}
		return h.respond(cb.ID, "")
	}
	return h.respond(cb.ID, "")
}

func (h *Handlers) handleDeleteCallback(c tele.Context, cb *tele.Callback, action, payload string) error {
	ctx, cancel := handlerContext()
	defer cancel()

	ref := transport.MessageRef{ChatID: c.Chat().ID, MessageID: c.Message().ID}
	switch action {
	case "yes":
		ev, err := h.st.Get(ctx, payload)
		if errors.Is(err, store.ErrNotFound) {
			_ = h.sender.EditText(ctx, ref, "That event is already gone.", nil)
			return h.respond(cb.ID, "")
		}
		if err == nil {
			err = h.st.Delete(ctx, payload)
		}
		if err != nil {
			h.log.Error("delete failed", logx.String("event_id", payload), logx.Err(err))
			return h.respond(cb.ID, "Delete failed.")
		}
		_ = h.sender.EditText(ctx, ref, fmt.Sprintf("🗑 Deleted %s.", ev.Title), nil)
		return h.respond(cb.ID, "")
	case "no":
		_ = h.sender.EditText(ctx, ref, "Kept it. Nothing was deleted.", nil)
		return h.respond(cb.ID, "")
	}
	return h.respond(cb.ID, "")
}

// --- /syncevents ---

func (h *Handlers) handleSyncEvents(c tele.Context) error {
	if h.importer == nil {
		return c.Send("Google Sheets sync is not configured.")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if strings.EqualFold(strings.TrimSpace(c.Message().Payload), "preview") {
		events, err := h.importer.Preview(ctx)
		if err != nil {
			h.log.Error("sheet preview failed", logx.Err(err))
			return c.Send("❌ Could not read the sheet: " + err.Error())
		}
		if len(events) == 0 {
			return c.Send("The sheet has no importable events.")
		}
		var b strings.Builder
		fmt.Fprintf(&b, "📊 **Preview: %d event(s) found**\n", len(events))
		for i, ev := range events {
			if i == 10 {
				fmt.Fprintf(&b, "\n… and %d more.", len(events)-10)
				break
			}
			fmt.Fprintf(&b, "\n**%s** — %s, %s (%s)", ev.Title, ev.Date, ev.Time, ev.Location)
		}
		b.WriteString("\n\nRun /syncevents to import.")
		return c.Send(b.String(), tele.ModeMarkdown)
	}

	var actor int64
	if c.Sender() != nil {
		actor = c.Sender().ID
	}
	res, err := h.importer.Sync(ctx, actor)
	if err != nil {
		h.log.Error("sheet sync failed", logx.Err(err))
		return c.Send("❌ Sync failed: " + err.Error())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Sheet sync complete**\n✅ Imported: %d\n🔄 Updated: %d\n⏭️ Skipped: %d\n❌ Errors: %d\n",
		res.Imported, res.Updated, res.Skipped, res.Errors)
	for i, d := range res.Details {
		if i == 20 {
			fmt.Fprintf(&b, "… and %d more.\n", len(res.Details)-20)
			break
		}
		b.WriteString(d)
		b.WriteString("\n")
	}
	return c.Send(b.String(), tele.ModeMarkdown)
}

// --- /calendar ---

func (h *Handlers) handleCalendar(c tele.Context) error {
	ctx, cancel := handlerContext()
	defer cancel()

	events, err := h.st.List(ctx)
	if err != nil {
		h.log.Error("calendar export failed", logx.Err(err))
		return c.Send("❌ Could not load events.")
	}
	loc := h.location()
	upcoming := filterUpcoming(events, store.Today(loc, time.Now()))
	if len(upcoming) == 0 {
		return c.Send("No upcoming events to export.")
	}

	doc := transport.Document{
		Name: "events.ics",
		Data: icsx.Export(upcoming, loc, time.Now()),
	}
	target := transport.ChatTarget{ChatID: c.Chat().ID, ThreadID: c.Message().ThreadID}
	if _, err := h.sender.SendDocument(ctx, target, doc,
		fmt.Sprintf("📆 %d upcoming event(s)", len(upcoming))); err != nil {
		h.log.Error("calendar send failed", logx.Err(err))
		return c.Send("❌ Could not send the calendar file.")
	}
	return nil
}

// --- /about ---

func (h *Handlers) handleAbout(c tele.Context) error {
	ctx, cancel := handlerContext()
	defer cancel()

	events, err := h.st.List(ctx)
	if err != nil {
		return c.Send("❌ Could not load events.")
	}
	today := store.Today(h.location(), time.Now())

	var upcoming, pendingAdv, pendingRem int
	bySource := map[string]int{}
	for _, ev := range events {
		if !ev.Date.Before(today) {
			upcoming++
		}
		if ev.Announcement == store.Pending {
			pendingAdv++
		}
		if ev.Reminder == store.Pending {
			pendingRem++
		}
		bySource[ev.Source]++
	}

	var b strings.Builder
	b.WriteString("🤖 **herald** — community calendar bot\n\n")
	fmt.Fprintf(&b, "Events: %d total, %d upcoming\n", len(events), upcoming)
	fmt.Fprintf(&b, "Pending: %d advance notices, %d reminders\n", pendingAdv, pendingRem)
	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		name := s
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "Source %s: %d\n", name, bySource[s])
	}
	return c.Send(b.String(), tele.ModeMarkdown)
}

// --- small helpers ---

func splitPipes(s string) []string {
	raw := strings.Split(s, "|")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
