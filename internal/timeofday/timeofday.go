// Package timeofday parses the loose wall-clock strings people type into
// event forms ("7 PM", "7:30pm", "19:00").
package timeofday

import (
	"regexp"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time in 24-hour form.
type TimeOfDay struct {
	Hour   int
	Minute int
}

var pattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([AaPp][Mm])?$`)

// Parse accepts "H", "H:MM", optionally followed by AM/PM (any case, with or
// without a space). 12 AM is midnight, 12 PM is noon, PM adds twelve to 1-11.
// ok is false for anything else; Parse never panics.
func Parse(s string) (TimeOfDay, bool) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeOfDay{}, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return TimeOfDay{}, false
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil {
			return TimeOfDay{}, false
		}
	}
	if minute > 59 {
		return TimeOfDay{}, false
	}

	switch strings.ToUpper(m[3]) {
	case "AM":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return TimeOfDay{}, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return TimeOfDay{}, false
		}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, true
}

// String formats as 24-hour "HH:MM".
func (t TimeOfDay) String() string {
	return pad2(t.Hour) + ":" + pad2(t.Minute)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
