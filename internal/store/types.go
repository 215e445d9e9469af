package store

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

// SentState tracks a notification that goes out at most once per event.
// The only legal transition is pending -> sent.
type SentState string

const (
	Pending SentState = "pending"
	Sent    SentState = "sent"
)

// Event sources.
const (
	SourceManual = "manual"
	SourceSheets = "sheets"
)

// Event is a single calendar entry.
//
// Time is free-form text ("7:30 PM", "19:00", "TBA"); it is parsed on demand
// and an unparseable value only disables same-day reminders. ImagePath is
// owned by the store and the blob is removed with the event.
type Event struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Speaker      string    `json:"speaker,omitempty" db:"speaker"`
	Description  string    `json:"description,omitempty" db:"description"`
	Location     string    `json:"location,omitempty" db:"location"`
	Date         Date      `json:"date" db:"date"`
	Time         string    `json:"time,omitempty" db:"time_text"`
	ImagePath    string    `json:"image_path,omitempty" db:"image_path"`
	Announcement SentState `json:"announcement" db:"announcement"`
	Reminder     SentState `json:"reminder" db:"reminder"`
	Source       string    `json:"source,omitempty" db:"source"`
	RowNumber    int       `json:"row_number,omitempty" db:"row_number"`
	CreatedBy    int64     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Update is a partial event update. Nil fields are left untouched. Sent
// flags are deliberately absent; they change only through the Mark calls.
type Update struct {
	Title       *string
	Speaker     *string
	Description *string
	Location    *string
	Date        *Date
	Time        *string
	RowNumber   *int
}

func (u Update) isEmpty() bool {
	return u.Title == nil && u.Speaker == nil && u.Description == nil &&
		u.Location == nil && u.Date == nil && u.Time == nil && u.RowNumber == nil
}

func (u Update) apply(ev *Event) {
	if u.Title != nil {
		ev.Title = *u.Title
	}
	if u.Speaker != nil {
		ev.Speaker = *u.Speaker
	}
	if u.Description != nil {
		ev.Description = *u.Description
	}
	if u.Location != nil {
		ev.Location = *u.Location
	}
	if u.Date != nil {
		ev.Date = *u.Date
	}
	if u.Time != nil {
		ev.Time = *u.Time
	}
	if u.RowNumber != nil {
		ev.RowNumber = *u.RowNumber
	}
}
