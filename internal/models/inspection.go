package models

import (
	"strings"
	"time"
)

type InspectionStatus string

const (
	InspectionStatusPlanned   InspectionStatus = "planned"
	InspectionStatusCompleted InspectionStatus = "completed"
)

// DisplayState is a render-time classification derived from the clock. It is
// never persisted.
type DisplayState string

const (
	DisplayPlanned   DisplayState = "planned"
	DisplayUrgent    DisplayState = "urgent"
	DisplayOverdue   DisplayState = "overdue"
	DisplayCompleted DisplayState = "completed"
)

// UrgentWindow is how close a planned inspection has to be before it is
// flagged as urgent.
const UrgentWindow = 24 * time.Hour

// Inspection is a scheduled or completed follow-up visit. Date and time keep
// the form's calendar date ("2006-01-02") and local time of day ("15:04").
type Inspection struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  string `json:"year,omitempty"`

	InspectionDate    string `json:"inspection_date"`
	InspectionTime    string `json:"inspection_time"`
	InspectionAddress string `json:"inspection_address"`
	CustomerPhone     string `json:"customer_phone"`
	SellerPhone       string `json:"seller_phone,omitempty"`
	InspectionNotes   string `json:"inspection_notes,omitempty"`

	Status       InspectionStatus `json:"status"`
	ReminderSent bool             `json:"reminder_sent"`
}

func (i *Inspection) RecordID() string         { return i.ID }
func (i *Inspection) SetRecordID(id string)    { i.ID = id }
func (i *Inspection) SetCreatedAt(t time.Time) { i.Timestamp = t }

// Clone returns a detached copy. All fields are values, so a shallow copy is
// a full one.
func (i *Inspection) Clone() *Inspection {
	c := *i
	return &c
}

// ScheduledAt combines the inspection date and local time of day into a
// single instant in the local timezone.
func (i *Inspection) ScheduledAt() (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04", i.InspectionDate+"T"+i.InspectionTime, time.Local)
}

// Overdue reports whether the scheduled instant has passed while the
// inspection is still planned.
func (i *Inspection) Overdue(now time.Time) bool {
	at, err := i.ScheduledAt()
	if err != nil {
		return false
	}
	return i.Status == InspectionStatusPlanned && at.Before(now)
}

// Urgent reports whether the scheduled instant is in the future and less than
// UrgentWindow away.
func (i *Inspection) Urgent(now time.Time) bool {
	at, err := i.ScheduledAt()
	if err != nil {
		return false
	}
	return at.After(now) && at.Sub(now) < UrgentWindow
}

// State classifies the inspection for display. Completed always wins over the
// clock-derived states.
func (i *Inspection) State(now time.Time) DisplayState {
	switch {
	case i.Status == InspectionStatusCompleted:
		return DisplayCompleted
	case i.Overdue(now):
		return DisplayOverdue
	case i.Urgent(now):
		return DisplayUrgent
	default:
		return DisplayPlanned
	}
}

func (i *Inspection) Matches(query string) bool {
	if query == "" {
		return true
	}
	return containsFold(i.Brand, query) ||
		containsFold(i.Model, query) ||
		containsFold(i.InspectionAddress, query)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
