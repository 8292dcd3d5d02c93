package settings

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motodiag/internal/storage"
)

func newTestSettings(t *testing.T) (*Settings, *storage.Store) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	adapter, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return New(adapter, 2, log), adapter
}

func TestLeadHoursDefaultsWhenUnset(t *testing.T) {
	s, _ := newTestSettings(t)
	assert.Equal(t, 2, s.LeadHours())
	assert.Equal(t, 2*time.Hour, s.LeadTime())
}

func TestSetLeadHours(t *testing.T) {
	s, _ := newTestSettings(t)

	require.NoError(t, s.SetLeadHours(6))
	assert.Equal(t, 6, s.LeadHours())
	assert.Equal(t, 6*time.Hour, s.LeadTime())

	assert.Error(t, s.SetLeadHours(0))
	assert.Error(t, s.SetLeadHours(-3))
	assert.Equal(t, 6, s.LeadHours())
}

func TestLeadHoursFallsBackOnGarbage(t *testing.T) {
	s, adapter := newTestSettings(t)
	require.NoError(t, adapter.Save(storage.KeyReminderTime, []byte("скоро")))
	assert.Equal(t, 2, s.LeadHours())
}

func TestTheme(t *testing.T) {
	s, _ := newTestSettings(t)

	assert.Equal(t, ThemeLight, s.Theme())
	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, ThemeDark, s.Theme())

	assert.Error(t, s.SetTheme("neon"))
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestFormSnapshotRoundTrip(t *testing.T) {
	s, _ := newTestSettings(t)

	_, ok := s.FormSnapshot()
	assert.False(t, ok)

	require.NoError(t, s.SaveFormSnapshot([]byte(`{"brand":"Honda"}`)))
	snap, ok := s.FormSnapshot()
	require.True(t, ok)
	assert.JSONEq(t, `{"brand":"Honda"}`, string(snap))

	require.NoError(t, s.ClearFormSnapshot())
	_, ok = s.FormSnapshot()
	assert.False(t, ok)
}

func TestExportImport(t *testing.T) {
	src, _ := newTestSettings(t)
	require.NoError(t, src.SetTheme(ThemeDark))
	require.NoError(t, src.SetLeadHours(4))
	require.NoError(t, src.SaveFormSnapshot([]byte(`{"brand":"Honda"}`)))

	bundle, err := src.Export()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(bundle, &raw))
	assert.Contains(t, raw, "theme")
	assert.Contains(t, raw, "formData")
	assert.Contains(t, raw, "reminderTime")

	dst, _ := newTestSettings(t)
	require.NoError(t, dst.Import(bundle))
	assert.Equal(t, ThemeDark, dst.Theme())
	assert.Equal(t, 4, dst.LeadHours())
	snap, ok := dst.FormSnapshot()
	require.True(t, ok)
	assert.JSONEq(t, `{"brand":"Honda"}`, string(snap))
}

func TestImportMissingFieldsKeepCurrentValues(t *testing.T) {
	s, _ := newTestSettings(t)
	require.NoError(t, s.SetTheme(ThemeDark))
	require.NoError(t, s.SetLeadHours(5))

	require.NoError(t, s.Import([]byte(`{}`)))
	assert.Equal(t, ThemeDark, s.Theme())
	assert.Equal(t, 5, s.LeadHours())

	assert.Error(t, s.Import([]byte(`не json`)))
	assert.Error(t, s.Import([]byte(`{"reminderTime":"скоро"}`)))
}

func TestOnChangeFiresForLeadAndClear(t *testing.T) {
	s, _ := newTestSettings(t)

	fired := 0
	s.OnChange(func() { fired++ })

	require.NoError(t, s.SetLeadHours(3))
	assert.Equal(t, 1, fired)

	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, 1, fired, "theme changes do not affect the reminder set")

	s.ClearAll()
	assert.Equal(t, 2, fired)
}

func TestClearAllRemovesEveryApplicationKey(t *testing.T) {
	s, adapter := newTestSettings(t)
	require.NoError(t, s.SetTheme(ThemeDark))
	require.NoError(t, s.SetLeadHours(4))
	require.NoError(t, adapter.Save(storage.KeyReports, []byte(`[]`)))

	removed := s.ClearAll()
	assert.Equal(t, 3, removed)

	assert.Empty(t, adapter.Keys(storage.KeyPrefix))
	assert.Equal(t, ThemeLight, s.Theme())
	assert.Equal(t, 2, s.LeadHours())
}
