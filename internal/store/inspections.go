package store

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/notify"
	"github.com/motodiag/internal/storage"
)

// InspectionStore owns the scheduled inspections collection and the status
// lifecycle: planned transitions to completed exactly once, deletion is the
// only other exit.
type InspectionStore struct {
	*Store[*models.Inspection]
	notifier notify.Notifier
}

func NewInspectionStore(adapter *storage.Store, notifier notify.Notifier, clk clock.Clock, log *logrus.Logger) *InspectionStore {
	return &InspectionStore{
		Store:    New[*models.Inspection](storage.KeyInspections, adapter, notifier, clk, log),
		notifier: notifier,
	}
}

// List returns the inspections matching query, soonest scheduled first.
// Entries with an unparsable schedule sort last.
func (s *InspectionStore) List(query string) []*models.Inspection {
	matched := s.Search(func(i *models.Inspection) bool { return i.Matches(query) })
	sort.SliceStable(matched, func(a, b int) bool {
		ta, errA := matched[a].ScheduledAt()
		tb, errB := matched[b].ScheduledAt()
		if errA != nil {
			return false
		}
		if errB != nil {
			return true
		}
		return ta.Before(tb)
	})
	return matched
}

// Complete flips a planned inspection to completed. Completing an already
// completed inspection is a no-op, not an error.
func (s *InspectionStore) Complete(id string) bool {
	insp, ok := s.Find(id)
	if !ok {
		return false
	}
	if insp.Status == models.InspectionStatusCompleted {
		return true
	}
	s.Update(id, func(i *models.Inspection) {
		i.Status = models.InspectionStatusCompleted
	})
	s.notifier.Notify("Проверка отмечена как выполненная!", notify.SeveritySuccess)
	return true
}

// MarkReminderSent records that the reminder for an inspection has fired.
// The flag only ever goes false to true.
func (s *InspectionStore) MarkReminderSent(id string) bool {
	insp, ok := s.Find(id)
	if !ok || insp.ReminderSent {
		return ok
	}
	return s.Update(id, func(i *models.Inspection) {
		i.ReminderSent = true
	})
}

// BeginEdit returns a copy of the inspection for form re-submission. The
// original stays in place until CommitEdit stores the replacement, so an
// abandoned edit loses nothing.
func (s *InspectionStore) BeginEdit(id string) (*models.Inspection, bool) {
	return s.Find(id)
}

// CommitEdit replaces the original record with the re-submitted one. The
// replacement is stored as a fresh planned entity; no confirmation is asked
// here because the operator already confirmed the edit.
func (s *InspectionStore) CommitEdit(originalID string, replacement *models.Inspection) *models.Inspection {
	s.Remove(originalID)
	replacement.Status = models.InspectionStatusPlanned
	replacement.ReminderSent = false
	return s.Add(replacement)
}

// CountByStatus counts inspections in the given lifecycle state.
func (s *InspectionStore) CountByStatus(status models.InspectionStatus) int {
	return len(s.Search(func(i *models.Inspection) bool { return i.Status == status }))
}
