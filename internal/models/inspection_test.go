package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scheduled(t time.Time) *Inspection {
	return &Inspection{
		Brand:          "Honda",
		Model:          "CB500X",
		InspectionDate: t.Format("2006-01-02"),
		InspectionTime: t.Format("15:04"),
		Status:         InspectionStatusPlanned,
	}
}

func TestStatePlannedFarInFuture(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)
	insp := scheduled(now.Add(72 * time.Hour))
	assert.Equal(t, DisplayPlanned, insp.State(now))
}

func TestStateUrgentWithinWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)
	insp := scheduled(now.Add(2 * time.Hour))
	assert.True(t, insp.Urgent(now))
	assert.Equal(t, DisplayUrgent, insp.State(now))
}

func TestStateOverdueWhenScheduledPassed(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)
	insp := scheduled(now.Add(-2 * time.Hour))
	assert.True(t, insp.Overdue(now))
	assert.Equal(t, DisplayOverdue, insp.State(now))
}

func TestStateCompletedOverridesClock(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)

	past := scheduled(now.Add(-2 * time.Hour))
	past.Status = InspectionStatusCompleted
	assert.Equal(t, DisplayCompleted, past.State(now))

	soon := scheduled(now.Add(2 * time.Hour))
	soon.Status = InspectionStatusCompleted
	assert.Equal(t, DisplayCompleted, soon.State(now))
}

func TestStateExactlyAtWindowBoundaryIsPlanned(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)
	insp := scheduled(now.Add(UrgentWindow))
	assert.False(t, insp.Urgent(now))
	assert.Equal(t, DisplayPlanned, insp.State(now))
}

func TestStateUnparsableScheduleIsPlanned(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)
	insp := &Inspection{InspectionDate: "когда-нибудь", Status: InspectionStatusPlanned}
	assert.Equal(t, DisplayPlanned, insp.State(now))
}

func TestInspectionMatches(t *testing.T) {
	insp := &Inspection{Brand: "Kawasaki", Model: "Z650", InspectionAddress: "Москва, Тверская 7"}

	assert.True(t, insp.Matches(""))
	assert.True(t, insp.Matches("kawa"))
	assert.True(t, insp.Matches("z650"))
	assert.True(t, insp.Matches("тверская"))
	assert.False(t, insp.Matches("suzuki"))
}

func TestReportMatches(t *testing.T) {
	r := &Report{Brand: "BMW", Model: "R1250GS", Year: "2020", VIN: "WB10A1234LZ000001", LicensePlate: "А123ВС77"}

	assert.True(t, r.Matches(""))
	assert.True(t, r.Matches("bmw"))
	assert.True(t, r.Matches("r1250"))
	assert.True(t, r.Matches("2020"))
	assert.True(t, r.Matches("wb10a"))
	assert.True(t, r.Matches("а123"))
	assert.False(t, r.Matches("ducati"))
}
