package sheets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"herald/internal/store"
)

var (
	ordinalRe    = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
	inlineDateRe = regexp.MustCompile(`^([A-Za-z]+ \d{1,2}(?:st|nd|rd|th)?, \d{4})`)
	timeRangeRe  = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)\s*-\s*(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`)
	singleTimeRe = regexp.MustCompile(`(?i)(\d{1,2}(?::\d{2})?\s*(?:am|pm))`)
)

// ParseRow turns a spreadsheet row into an event. The date cell carries
// free-text like "September 22nd, 2025\n7 - 8:30pm"; an unusable date is an
// error (the importer skips the row with a warning).
func ParseRow(r Row) (store.Event, error) {
	date, timeText, err := parseDateTimeText(r.DateTimeText)
	if err != nil {
		return store.Event{}, fmt.Errorf("row %d: %w", r.Number, err)
	}

	desc := r.Description
	if desc == "" {
		desc = r.Title
	}
	loc := r.Location
	if loc == "" {
		loc = "TBA"
	}
	if timeText == "" {
		timeText = "TBA"
	}

	return store.Event{
		Title:       r.Title,
		Speaker:     r.Speaker,
		Description: desc,
		Location:    loc,
		Date:        date,
		Time:        timeText,
		Source:      store.SourceSheets,
		RowNumber:   r.Number,
	}, nil
}

// parseDateTimeText splits "date \n time range" text; a single line may also
// carry both parts (`September 22, 2025 7 - 8:30pm`).
func parseDateTimeText(raw string) (store.Date, string, error) {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(raw), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return store.Date{}, "", fmt.Errorf("empty date cell")
	}

	dateStr := lines[0]
	timeStr := ""
	if len(lines) >= 2 {
		timeStr = lines[1]
	} else if m := inlineDateRe.FindString(dateStr); m != "" {
		timeStr = strings.TrimSpace(strings.TrimPrefix(dateStr, m))
		dateStr = m
	}

	clean := ordinalRe.ReplaceAllString(dateStr, "$1")
	parsed, err := time.Parse("January 2, 2006", clean)
	if err != nil {
		return store.Date{}, "", fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	return store.DateOf(parsed), extractStartTime(timeStr), nil
}

// extractStartTime pulls the start of a time range ("7 - 8:30pm" -> "7:00 PM")
// or a single time, normalized. Empty when nothing matches.
func extractStartTime(s string) string {
	if s == "" {
		return ""
	}
	if m := timeRangeRe.FindStringSubmatch(s); m != nil {
		return normalizeTime(m[1])
	}
	if m := singleTimeRe.FindStringSubmatch(s); m != nil {
		return normalizeTime(m[1])
	}
	return ""
}

var normRe = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// normalizeTime adds ":00" when minutes are missing and assumes PM for bare
// hours 1-12 (community events are evening events), producing "H:MM PM" form.
func normalizeTime(s string) string {
	m := normRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	hour, minute, meridiem := m[1], m[2], strings.ToUpper(m[3])
	if minute == "" {
		minute = "00"
	}
	if meridiem == "" {
		if h, err := strconv.Atoi(hour); err == nil && h >= 1 && h <= 12 {
			meridiem = "PM"
		}
	}
	if meridiem == "" {
		return hour + ":" + minute
	}
	return hour + ":" + minute + " " + meridiem
}
