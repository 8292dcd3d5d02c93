package store

import (
	"github.com/sirupsen/logrus"

	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/notify"
	"github.com/motodiag/internal/storage"
)

// ReportStore owns the saved reports collection.
type ReportStore struct {
	*Store[*models.Report]
}

func NewReportStore(adapter *storage.Store, notifier notify.Notifier, clk clock.Clock, log *logrus.Logger) *ReportStore {
	return &ReportStore{
		Store: New[*models.Report](storage.KeyReports, adapter, notifier, clk, log),
	}
}

// List returns the reports matching query, most recent first.
func (s *ReportStore) List(query string) []*models.Report {
	matched := s.Search(func(r *models.Report) bool { return r.Matches(query) })
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched
}
