// Package reminder arms best-effort timers that warn the operator ahead of
// scheduled inspections. Timers live in process memory only: they are
// recomputed at startup and after every inspections mutation, and a reminder
// whose fire instant has already passed is skipped, never fired retroactively.
package reminder

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/notify"
	"github.com/motodiag/internal/store"
)

// Entry is one planned reminder: the inspection it belongs to and the
// instant it should fire.
type Entry struct {
	InspectionID string    `json:"inspection_id"`
	FireAt       time.Time `json:"fire_at"`
}

// Plan computes the reminder set for the given inspections: one entry per
// planned, un-reminded inspection whose fire instant (scheduled − lead) is
// still in the future. Entries come back in fire order.
func Plan(inspections []*models.Inspection, lead time.Duration, now time.Time) []Entry {
	var entries []Entry
	for _, insp := range inspections {
		if insp.Status != models.InspectionStatusPlanned || insp.ReminderSent {
			continue
		}
		at, err := insp.ScheduledAt()
		if err != nil {
			continue
		}
		fireAt := at.Add(-lead)
		if !fireAt.After(now) {
			continue
		}
		entries = append(entries, Entry{InspectionID: insp.ID, FireAt: fireAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FireAt.Before(entries[j].FireAt)
	})
	return entries
}

// Scheduler owns the live timer set. It holds only inspection ids; the
// inspection is re-resolved when a timer fires, since it may have been
// completed, deleted or replaced in the meantime.
type Scheduler struct {
	inspections *store.InspectionStore
	notifier    notify.Notifier
	clock       clock.Clock
	lead        func() time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	log *logrus.Entry
}

// New builds a scheduler. lead is read at every recompute so a settings
// change takes effect on the next Recompute call.
func New(inspections *store.InspectionStore, notifier notify.Notifier, clk clock.Clock, lead func() time.Duration, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		inspections: inspections,
		notifier:    notifier,
		clock:       clk,
		lead:        lead,
		timers:      make(map[string]*time.Timer),
		log:         log.WithField("component", "reminder"),
	}
}

// Recompute cancels every pending timer and arms a fresh set from the
// current collection. At most one live timer exists per inspection id.
func (s *Scheduler) Recompute() {
	now := s.clock.Now()
	entries := Plan(s.inspections.All(), s.lead(), now)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[string]*time.Timer, len(entries))

	for _, e := range entries {
		id := e.InspectionID
		s.timers[id] = time.AfterFunc(e.FireAt.Sub(now), func() { s.fire(id) })
	}

	s.log.WithField("pending", len(entries)).Debug("reminder set recomputed")
}

// Stop cancels every pending timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[string]*time.Timer)
}

// Pending returns the currently armed reminder set.
func (s *Scheduler) Pending() []Entry {
	return Plan(s.inspections.All(), s.lead(), s.clock.Now())
}

// fire delivers one reminder. The inspection is re-resolved by id and the
// reminder is dropped if it is no longer eligible.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	insp, ok := s.inspections.Find(id)
	if !ok || insp.Status != models.InspectionStatusPlanned || insp.ReminderSent {
		return
	}

	hours := int(s.lead().Hours())
	s.notifier.Notify(
		fmt.Sprintf("🔔 Напоминание: Проверка %s %s через %d ч.\nАдрес: %s",
			insp.Brand, insp.Model, hours, insp.InspectionAddress),
		notify.SeverityInfo,
	)

	// Marking the flag persists the collection and triggers the store's
	// change callbacks, which recompute the remaining timer set.
	s.inspections.MarkReminderSent(id)
}
