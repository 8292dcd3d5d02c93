package store

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/storage"
)

func newTestInspectionStore(t *testing.T, adapter *storage.Store, clk clock.Clock) (*InspectionStore, *recordingNotifier) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	notifier := &recordingNotifier{}
	return NewInspectionStore(adapter, notifier, clk, log), notifier
}

func plannedInspection(date, timeOfDay string) *models.Inspection {
	return &models.Inspection{
		Brand:             "Yamaha",
		Model:             "MT-07",
		Year:              "2021",
		InspectionDate:    date,
		InspectionTime:    timeOfDay,
		InspectionAddress: "Москва, ул. Ленина 1",
		CustomerPhone:     "+7 900 000-00-00",
		Status:            models.InspectionStatusPlanned,
	}
}

func TestCompleteIsOneWayAndIdempotent(t *testing.T) {
	adapter := newTestAdapter(t)
	inspections, _ := newTestInspectionStore(t, adapter, clock.System())

	insp := inspections.Add(plannedInspection("2026-06-01", "14:00"))

	require.True(t, inspections.Complete(insp.ID))
	got, ok := inspections.Find(insp.ID)
	require.True(t, ok)
	assert.Equal(t, models.InspectionStatusCompleted, got.Status)

	// Re-invoking is a no-op, not an error.
	require.True(t, inspections.Complete(insp.ID))
	got, _ = inspections.Find(insp.ID)
	assert.Equal(t, models.InspectionStatusCompleted, got.Status)

	assert.False(t, inspections.Complete("no-such-id"))
}

func TestCompletedStatusSurvivesOtherMutations(t *testing.T) {
	adapter := newTestAdapter(t)
	inspections, _ := newTestInspectionStore(t, adapter, clock.System())

	insp := inspections.Add(plannedInspection("2026-06-01", "14:00"))
	inspections.Complete(insp.ID)

	inspections.MarkReminderSent(insp.ID)
	inspections.Update(insp.ID, func(i *models.Inspection) { i.InspectionNotes = "перенос" })

	got, ok := inspections.Find(insp.ID)
	require.True(t, ok)
	assert.Equal(t, models.InspectionStatusCompleted, got.Status)
}

func TestMarkReminderSentIsMonotonic(t *testing.T) {
	adapter := newTestAdapter(t)
	inspections, _ := newTestInspectionStore(t, adapter, clock.System())

	insp := inspections.Add(plannedInspection("2026-06-01", "14:00"))
	require.False(t, insp.ReminderSent)

	require.True(t, inspections.MarkReminderSent(insp.ID))
	got, _ := inspections.Find(insp.ID)
	assert.True(t, got.ReminderSent)

	require.True(t, inspections.MarkReminderSent(insp.ID))
	got, _ = inspections.Find(insp.ID)
	assert.True(t, got.ReminderSent)

	assert.False(t, inspections.MarkReminderSent("no-such-id"))
}

func TestBeginEditLeavesOriginalInPlace(t *testing.T) {
	adapter := newTestAdapter(t)
	inspections, _ := newTestInspectionStore(t, adapter, clock.System())

	insp := inspections.Add(plannedInspection("2026-06-01", "14:00"))

	draft, ok := inspections.BeginEdit(insp.ID)
	require.True(t, ok)
	draft.InspectionAddress = "изменено"

	// An abandoned edit must lose nothing.
	got, ok := inspections.Find(insp.ID)
	require.True(t, ok)
	assert.Equal(t, "Москва, ул. Ленина 1", got.InspectionAddress)
	assert.Equal(t, 1, inspections.Len())
}

func TestCommitEditReplacesOriginal(t *testing.T) {
	adapter := newTestAdapter(t)
	clk := clock.NewMock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local))
	inspections, _ := newTestInspectionStore(t, adapter, clk)

	original := inspections.Add(plannedInspection("2026-06-01", "14:00"))
	inspections.MarkReminderSent(original.ID)

	draft, _ := inspections.BeginEdit(original.ID)
	draft.InspectionDate = "2026-06-02"

	replacement := inspections.CommitEdit(original.ID, draft)

	assert.Equal(t, 1, inspections.Len())
	_, ok := inspections.Find(original.ID)
	assert.False(t, ok)

	got, ok := inspections.Find(replacement.ID)
	require.True(t, ok)
	assert.Equal(t, "2026-06-02", got.InspectionDate)
	// The replacement starts a fresh lifecycle.
	assert.Equal(t, models.InspectionStatusPlanned, got.Status)
	assert.False(t, got.ReminderSent)
}

func TestListSortsSoonestFirst(t *testing.T) {
	adapter := newTestAdapter(t)
	inspections, _ := newTestInspectionStore(t, adapter, clock.System())

	inspections.Add(plannedInspection("2026-06-03", "10:00"))
	inspections.Add(plannedInspection("2026-06-01", "14:00"))
	inspections.Add(plannedInspection("2026-06-01", "09:30"))

	list := inspections.List("")
	require.Len(t, list, 3)
	assert.Equal(t, "09:30", list[0].InspectionTime)
	assert.Equal(t, "14:00", list[1].InspectionTime)
	assert.Equal(t, "2026-06-03", list[2].InspectionDate)
}

func TestCountByStatus(t *testing.T) {
	adapter := newTestAdapter(t)
	inspections, _ := newTestInspectionStore(t, adapter, clock.System())

	a := inspections.Add(plannedInspection("2026-06-01", "10:00"))
	inspections.Add(plannedInspection("2026-06-02", "10:00"))
	inspections.Complete(a.ID)

	assert.Equal(t, 1, inspections.CountByStatus(models.InspectionStatusPlanned))
	assert.Equal(t, 1, inspections.CountByStatus(models.InspectionStatusCompleted))
}
