// Package store owns the in-memory entity collections and mirrors every
// mutation to persistent storage. A full-collection write-through happens
// after each mutating operation; with a single operator and a personal-sized
// dataset there is no need for incremental writes, and the whole-blob model
// keeps load∘save an identity.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/notify"
	"github.com/motodiag/internal/storage"
)

// Record is an entity the store can own. Clone must return a detached copy:
// accessors hand copies to callers, so the stored entities are only ever
// touched under the store lock.
type Record[R any] interface {
	RecordID() string
	SetRecordID(id string)
	SetCreatedAt(t time.Time)
	Clone() R
}

// Store keeps one ordered collection of entities backed by a single storage
// key. Order is insertion order; deletion removes in place. Reads return
// copies; mutations go through Update so concurrent readers (HTTP handlers,
// reminder timers) never share a record with a writer.
type Store[R Record[R]] struct {
	mu       sync.RWMutex
	key      string
	adapter  *storage.Store
	notifier notify.Notifier
	ids      *idGenerator
	items    []R
	onChange []func()
	log      *logrus.Entry
}

func New[R Record[R]](key string, adapter *storage.Store, notifier notify.Notifier, clk clock.Clock, log *logrus.Logger) *Store[R] {
	return &Store[R]{
		key:      key,
		adapter:  adapter,
		notifier: notifier,
		ids:      newIDGenerator(clk),
		log:      log.WithField("collection", key),
	}
}

// LoadAll populates the collection from storage. A missing or malformed blob
// falls back to an empty collection and never fails the caller.
func (s *Store[R]) LoadAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	raw, ok := s.adapter.Load(s.key)
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, &s.items); err != nil {
		s.log.WithError(err).Warn("stored collection is malformed, starting empty")
		s.items = nil
	}
}

// Add assigns a unique id and creation timestamp, appends the entity and
// persists the collection. The store keeps its own copy; the caller's record
// stays private to the caller.
func (s *Store[R]) Add(r R) R {
	s.mu.Lock()
	r.SetRecordID(s.ids.next())
	r.SetCreatedAt(s.ids.clock.Now())
	s.items = append(s.items, r.Clone())
	s.persistLocked()
	s.mu.Unlock()

	s.changed()
	return r
}

// Find returns a copy of the entity with the given id.
func (s *Store[R]) Find(id string) (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.items {
		if r.RecordID() == id {
			return r.Clone(), true
		}
	}
	var zero R
	return zero, false
}

// Update applies mutate to the matching entity and persists. A missing id is
// logged and ignored.
func (s *Store[R]) Update(id string, mutate func(R)) bool {
	s.mu.Lock()
	var found bool
	for _, r := range s.items {
		if r.RecordID() == id {
			mutate(r)
			found = true
			break
		}
	}
	if found {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !found {
		s.log.WithField("id", id).Warn("update target not found")
		return false
	}
	s.changed()
	return true
}

// Remove filters the entity out and persists. Removing a missing id is a
// silent no-op.
func (s *Store[R]) Remove(id string) bool {
	s.mu.Lock()
	var removed bool
	for idx, r := range s.items {
		if r.RecordID() == id {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if removed {
		s.changed()
	}
	return removed
}

// Search returns copies of the entities matching pred, in collection order.
func (s *Store[R]) Search(pred func(R) bool) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []R
	for _, r := range s.items {
		if pred(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// All returns copies of the collection in insertion order.
func (s *Store[R]) All() []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]R, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r.Clone())
	}
	return out
}

func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Import appends the given entities to the collection and persists. It is a
// merge: existing entries are kept, duplicates are not filtered.
func (s *Store[R]) Import(items []R) int {
	if len(items) == 0 {
		return 0
	}
	s.mu.Lock()
	for _, r := range items {
		s.items = append(s.items, r.Clone())
	}
	s.persistLocked()
	s.mu.Unlock()

	s.changed()
	return len(items)
}

// ErrNotArray rejects import payloads whose top-level value is not an array.
var ErrNotArray = fmt.Errorf("import payload must be a JSON array")

// ImportJSON merges an exported JSON array into the collection. No partial
// merge happens on a malformed payload.
func (s *Store[R]) ImportJSON(data []byte) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, ErrNotArray
	}
	var items []R
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return 0, fmt.Errorf("failed to parse import payload: %w", err)
	}
	return s.Import(items), nil
}

// ExportJSON renders the collection as an indented JSON array.
func (s *Store[R]) ExportJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.items
	if items == nil {
		items = []R{}
	}
	return json.MarshalIndent(items, "", "  ")
}

// OnChange registers a callback invoked after every mutation. Callbacks run
// outside the store lock and may call back into the store.
func (s *Store[R]) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Store[R]) persistLocked() {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.log.WithError(err).Error("failed to encode collection")
		s.notifier.Notify("Ошибка при сохранении данных", notify.SeverityWarning)
		return
	}
	if err := s.adapter.Save(s.key, raw); err != nil {
		s.log.WithError(err).Error("failed to persist collection")
		s.notifier.Notify("Ошибка при сохранении данных", notify.SeverityWarning)
	}
}

func (s *Store[R]) changed() {
	s.mu.RLock()
	callbacks := append([]func(){}, s.onChange...)
	s.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}
