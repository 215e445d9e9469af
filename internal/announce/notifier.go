package announce

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"herald/internal/store"
	"herald/internal/transport"
	logx "herald/pkg/logx"
)

// Sender delivers a composed notification. Satisfied by *Notifier; tests
// substitute fakes.
type Sender interface {
	Send(ctx context.Context, d Due, daysUntil int) error
}

// Notifier composes announcement text and delivers it through the transport
// adapter to the configured chat.
type Notifier struct {
	adapter transport.Adapter
	log     logx.Logger
	timeout time.Duration

	mu   sync.RWMutex
	chat transport.ChatTarget
}

func NewNotifier(adapter transport.Adapter, chat transport.ChatTarget, log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{
		adapter: adapter,
		chat:    chat,
		log:     log,
		timeout: 30 * time.Second,
	}
}

// SetChat swaps the announcement chat, used on config reload.
func (n *Notifier) SetChat(chat transport.ChatTarget) {
	n.mu.Lock()
	n.chat = chat
	n.mu.Unlock()
}

// Send delivers the notification for one due item. A missing chat id or any
// transport failure is a returned error; the caller decides what that means
// for the sent flag.
func (n *Notifier) Send(ctx context.Context, d Due, daysUntil int) error {
	n.mu.RLock()
	chat := n.chat
	n.mu.RUnlock()
	if chat.ChatID == 0 {
		return errors.New("announce chat is not configured")
	}

	text := ComposeReminder(d.Event)
	if d.Kind == KindAdvance {
		text = ComposeAdvance(d.Event, daysUntil)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	opt := &transport.SendOptions{ParseMode: "Markdown"}
	if p := d.Event.ImagePath; p != "" {
		if _, err := os.Stat(p); err == nil {
			_, err := n.adapter.SendPhoto(ctx, chat, p, text, opt)
			return err
		}
		n.log.Warn("event image missing, sending text only",
			logx.String("event_id", d.Event.ID), logx.String("path", p))
	}
	_, err := n.adapter.SendText(ctx, chat, text, opt)
	return err
}

// ComposeReminder is the casual same-day line.
func ComposeReminder(ev store.Event) string {
	return fmt.Sprintf("We have our **%s** today at **%s** in **%s**. Hope to see you there!",
		ev.Title, ev.Time, ev.Location)
}

// ComposeAdvance is the multi-line advance card.
func ComposeAdvance(ev store.Event, daysUntil int) string {
	plural := "s"
	if daysUntil == 1 {
		plural = ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 **Upcoming Event**\n\n")
	fmt.Fprintf(&b, "**%s** is coming up in %d day%s!\n\n", ev.Title, daysUntil, plural)
	if ev.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", ev.Description)
	}
	fmt.Fprintf(&b, "📅 **Date:** %s\n", FormatLongDate(ev.Date))
	fmt.Fprintf(&b, "🕐 **Time:** %s\n", ev.Time)
	fmt.Fprintf(&b, "📍 **Location:** %s\n", ev.Location)
	if ev.Speaker != "" {
		fmt.Fprintf(&b, "🎤 **Speaker:** %s\n", ev.Speaker)
	}
	b.WriteString("\nMark your calendars! 📝")
	return b.String()
}

// FormatLongDate renders a date like "Monday, September 22, 2025".
func FormatLongDate(d store.Date) string {
	return d.At(0, 0, time.UTC).Format("Monday, January 2, 2006")
}
