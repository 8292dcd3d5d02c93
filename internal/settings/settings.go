// Package settings keeps the operator preferences that live next to the
// collections: reminder lead time, theme and the last form snapshot.
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/motodiag/internal/storage"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Settings struct {
	adapter          *storage.Store
	defaultLeadHours int

	mu       sync.Mutex
	onChange []func()

	log *logrus.Entry
}

func New(adapter *storage.Store, defaultLeadHours int, log *logrus.Logger) *Settings {
	if defaultLeadHours <= 0 {
		defaultLeadHours = 2
	}
	return &Settings{
		adapter:          adapter,
		defaultLeadHours: defaultLeadHours,
		log:              log.WithField("component", "settings"),
	}
}

// LeadHours returns the configured reminder lead time in hours.
func (s *Settings) LeadHours() int {
	raw, ok := s.adapter.Load(storage.KeyReminderTime)
	if !ok {
		return s.defaultLeadHours
	}
	h, err := strconv.Atoi(string(raw))
	if err != nil || h <= 0 {
		s.log.WithField("value", string(raw)).Warn("stored lead time is invalid, using default")
		return s.defaultLeadHours
	}
	return h
}

func (s *Settings) LeadTime() time.Duration {
	return time.Duration(s.LeadHours()) * time.Hour
}

// SetLeadHours stores a new lead time and notifies subscribers so the
// reminder set gets recomputed.
func (s *Settings) SetLeadHours(hours int) error {
	if hours <= 0 {
		return fmt.Errorf("lead time must be positive, got %d", hours)
	}
	if err := s.adapter.Save(storage.KeyReminderTime, []byte(strconv.Itoa(hours))); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *Settings) Theme() string {
	raw, ok := s.adapter.Load(storage.KeyTheme)
	if !ok {
		return ThemeLight
	}
	return string(raw)
}

func (s *Settings) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme: %q", theme)
	}
	return s.adapter.Save(storage.KeyTheme, []byte(theme))
}

// FormSnapshot returns the last saved form state, if any.
func (s *Settings) FormSnapshot() ([]byte, bool) {
	return s.adapter.Load(storage.KeyFormSnapshot)
}

func (s *Settings) SaveFormSnapshot(raw []byte) error {
	return s.adapter.Save(storage.KeyFormSnapshot, raw)
}

func (s *Settings) ClearFormSnapshot() error {
	return s.adapter.Remove(storage.KeyFormSnapshot)
}

type exported struct {
	Theme        string          `json:"theme,omitempty"`
	FormData     json.RawMessage `json:"formData,omitempty"`
	ReminderTime string          `json:"reminderTime,omitempty"`
}

// Export bundles the preferences into one JSON object.
func (s *Settings) Export() ([]byte, error) {
	out := exported{
		Theme:        s.Theme(),
		ReminderTime: strconv.Itoa(s.LeadHours()),
	}
	if snap, ok := s.FormSnapshot(); ok {
		out.FormData = snap
	}
	return json.MarshalIndent(out, "", "  ")
}

// Import restores preferences from an exported bundle. Missing fields keep
// their current values.
func (s *Settings) Import(data []byte) error {
	var in exported
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to parse settings payload: %w", err)
	}
	if in.Theme != "" {
		if err := s.SetTheme(in.Theme); err != nil {
			return err
		}
	}
	if len(in.FormData) > 0 {
		if err := s.SaveFormSnapshot(in.FormData); err != nil {
			return err
		}
	}
	if in.ReminderTime != "" {
		h, err := strconv.Atoi(in.ReminderTime)
		if err != nil {
			return fmt.Errorf("invalid reminder time: %q", in.ReminderTime)
		}
		if err := s.SetLeadHours(h); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll removes every application key from storage: reports, inspections
// and preferences alike. Callers must have confirmed with the operator.
func (s *Settings) ClearAll() int {
	keys := s.adapter.Keys(storage.KeyPrefix)
	for _, key := range keys {
		if err := s.adapter.Remove(key); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("failed to remove key")
		}
	}
	s.changed()
	return len(keys)
}

// OnChange registers a callback fired after a lead-time change or bulk
// clear.
func (s *Settings) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Settings) changed() {
	s.mu.Lock()
	callbacks := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
