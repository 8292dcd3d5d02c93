package store

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/notify"
	"github.com/motodiag/internal/storage"
)

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string, _ notify.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func newTestAdapter(t *testing.T) *storage.Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	adapter, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func newTestReportStore(t *testing.T, adapter *storage.Store, clk clock.Clock) *ReportStore {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return NewReportStore(adapter, &recordingNotifier{}, clk, log)
}

func TestAddAssignsUniqueIDsWithinSameMillisecond(t *testing.T) {
	adapter := newTestAdapter(t)
	// A frozen clock forces every Add onto the same millisecond.
	clk := clock.NewMock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local))
	reports := newTestReportStore(t, adapter, clk)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		r := reports.Add(&models.Report{Brand: "Yamaha", Model: "MT-07"})
		assert.NotEmpty(t, r.ID)
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestRoundTrip(t *testing.T) {
	adapter := newTestAdapter(t)
	clk := clock.NewMock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	reports := newTestReportStore(t, adapter, clk)

	first := reports.Add(&models.Report{Brand: "Honda", Model: "CB500F", Price: "450 000"})
	second := reports.Add(&models.Report{Brand: "Suzuki", Model: "SV650"})
	reports.Add(&models.Report{Brand: "BMW", Model: "F900R"})

	reports.Update(second.ID, func(r *models.Report) { r.Decision = models.DecisionPurchased })
	reports.Remove(first.ID)

	reloaded := newTestReportStore(t, adapter, clk)
	reloaded.LoadAll()

	require.Equal(t, reports.Len(), reloaded.Len())
	assert.Equal(t, reports.All(), reloaded.All())

	got, ok := reloaded.Find(second.ID)
	require.True(t, ok)
	assert.Equal(t, models.DecisionPurchased, got.Decision)
}

func TestLoadAllFallsBackOnMalformedBlob(t *testing.T) {
	adapter := newTestAdapter(t)
	require.NoError(t, adapter.Save(storage.KeyReports, []byte("{not json")))

	reports := newTestReportStore(t, adapter, clock.System())
	reports.LoadAll()

	assert.Equal(t, 0, reports.Len())
}

func TestLoadAllMissingKeyStartsEmpty(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())
	reports.LoadAll()
	assert.Equal(t, 0, reports.Len())
}

func TestUpdateMissingIDIsNoop(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())
	reports.Add(&models.Report{Brand: "KTM", Model: "390 Duke"})

	ok := reports.Update("no-such-id", func(r *models.Report) { r.Brand = "changed" })
	assert.False(t, ok)

	for _, r := range reports.All() {
		assert.Equal(t, "KTM", r.Brand)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())
	r := reports.Add(&models.Report{Brand: "Ducati", Model: "Monster"})

	assert.True(t, reports.Remove(r.ID))
	assert.False(t, reports.Remove(r.ID))
	assert.False(t, reports.Remove("never-existed"))
	assert.Equal(t, 0, reports.Len())
}

func TestImportMergesWithoutDeduplication(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())
	reports.Add(&models.Report{Brand: "Yamaha", Model: "MT-09"})

	exported, err := reports.ExportJSON()
	require.NoError(t, err)

	// Importing the same file twice appends duplicates by design.
	n, err := reports.ImportJSON(exported)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = reports.ImportJSON(exported)
	require.NoError(t, err)

	assert.Equal(t, 3, reports.Len())
}

func TestImportJSONRejectsNonArray(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())

	for _, payload := range []string{`{"id":"1"}`, `"hello"`, `42`, ``} {
		_, err := reports.ImportJSON([]byte(payload))
		assert.ErrorIs(t, err, ErrNotArray, "payload %q", payload)
	}
	assert.Equal(t, 0, reports.Len())
}

func TestImportJSONNoPartialMergeOnBadPayload(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())

	_, err := reports.ImportJSON([]byte(`[{"id":"1"},`))
	assert.Error(t, err)
	assert.Equal(t, 0, reports.Len())
}

func TestReportListIsMostRecentFirst(t *testing.T) {
	adapter := newTestAdapter(t)
	clk := clock.NewMock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	reports := newTestReportStore(t, adapter, clk)

	reports.Add(&models.Report{Brand: "Yamaha", Model: "MT-07"})
	clk.Advance(time.Minute)
	reports.Add(&models.Report{Brand: "Honda", Model: "CBR650R"})
	clk.Advance(time.Minute)
	reports.Add(&models.Report{Brand: "Yamaha", Model: "MT-09"})

	list := reports.List("")
	require.Len(t, list, 3)
	assert.Equal(t, "MT-09", list[0].Model)
	assert.Equal(t, "MT-07", list[2].Model)

	filtered := reports.List("yamaha")
	require.Len(t, filtered, 2)
	assert.Equal(t, "MT-09", filtered[0].Model)
}

func TestOnChangeFiresAfterMutations(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())

	var calls int
	reports.OnChange(func() { calls++ })

	r := reports.Add(&models.Report{Brand: "Triumph", Model: "Street Triple"})
	reports.Update(r.ID, func(r *models.Report) { r.Year = "2022" })
	reports.Remove(r.ID)

	assert.Equal(t, 3, calls)
}

func TestAccessorsReturnDetachedCopies(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())

	added := reports.Add(&models.Report{Brand: "Honda", Model: "CB500X"})

	// Mutating the record returned by Add must not leak into the store.
	added.Brand = "changed"
	got, ok := reports.Find(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Honda", got.Brand)

	// Same for Find, All and Search results.
	got.Brand = "changed"
	reports.All()[0].Brand = "changed"
	reports.Search(func(*models.Report) bool { return true })[0].Brand = "changed"

	got, _ = reports.Find(added.ID)
	assert.Equal(t, "Honda", got.Brand)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	adapter := newTestAdapter(t)
	reports := newTestReportStore(t, adapter, clock.System())
	r := reports.Add(&models.Report{Brand: "Honda", Model: "CB500X"})

	// Readers hold records outside the store lock while a writer mutates
	// the same id, like a reminder timer racing an HTTP handler. The race
	// detector fails this test if a stored record is ever shared.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got, ok := reports.Find(r.ID); ok {
					_ = got.Decision
				}
				for _, item := range reports.All() {
					_ = item.Brand
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			reports.Update(r.ID, func(rep *models.Report) {
				rep.Decision = models.DecisionPurchased
			})
		}
	}()
	wg.Wait()

	got, ok := reports.Find(r.ID)
	require.True(t, ok)
	assert.Equal(t, models.DecisionPurchased, got.Decision)
}

func TestPersistFailureNotifiesWithoutCrashing(t *testing.T) {
	adapter := newTestAdapter(t)
	notifier := &recordingNotifier{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	reports := &ReportStore{Store: New[*models.Report](storage.KeyReports, adapter, notifier, clock.System(), log)}

	// Closing the adapter makes every write fail; the store must keep the
	// in-memory mutation and surface a warning notification.
	require.NoError(t, adapter.Close())

	r := reports.Add(&models.Report{Brand: "Kawasaki", Model: "Z900"})
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 1, reports.Len())
	assert.NotEmpty(t, notifier.Messages())
}
