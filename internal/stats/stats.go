// Package stats is a read-only reducer over the report and inspection
// collections.
package stats

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/money"
)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// PeriodStart returns the inclusive lower bound for a period: a rolling
// seven days for week, calendar boundaries for the rest.
func PeriodStart(p Period, now time.Time) time.Time {
	switch p {
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case PeriodQuarter:
		q := (int(now.Month()) - 1) / 3
		return time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, now.Location())
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}

// Summary is the aggregate view for one period. Inspection counts are
// global, not period-bounded.
type Summary struct {
	Period               Period          `json:"period"`
	TotalReports         int             `json:"total_reports"`
	Purchased            int             `json:"purchased"`
	AvgSavings           decimal.Decimal `json:"avg_savings"`
	AvgSavingsFormatted  string          `json:"avg_savings_formatted"`
	TopBrand             string          `json:"top_brand"`
	PlannedInspections   int             `json:"planned_inspections"`
	CompletedInspections int             `json:"completed_inspections"`
}

// Compute aggregates the collections for a period. Average savings covers
// purchased reports only; a report contributes when its savings are strictly
// positive. Brand ties break to the brand seen first in collection order.
func Compute(reports []*models.Report, inspections []*models.Inspection, p Period, now time.Time) Summary {
	start := PeriodStart(p, now)

	s := Summary{Period: p, AvgSavings: decimal.Zero}

	totalSavings := decimal.Zero
	brandCounts := make(map[string]int)
	var brandOrder []string

	for _, r := range reports {
		if r.Timestamp.Before(start) {
			continue
		}
		s.TotalReports++

		if r.Decision == models.DecisionPurchased {
			s.Purchased++
			if sv, ok := money.Savings(r.Price, r.ObjectiveCost, r.SellerDiscount, r.InvestmentCost); ok {
				totalSavings = totalSavings.Add(sv)
			}
		}

		if r.Brand != "" {
			if _, seen := brandCounts[r.Brand]; !seen {
				brandOrder = append(brandOrder, r.Brand)
			}
			brandCounts[r.Brand]++
		}
	}

	if s.Purchased > 0 {
		s.AvgSavings = totalSavings.DivRound(decimal.NewFromInt(int64(s.Purchased)), 2)
	}
	s.AvgSavingsFormatted = money.Format(s.AvgSavings)

	s.TopBrand = "Нет данных"
	best := 0
	for _, brand := range brandOrder {
		if brandCounts[brand] > best {
			best = brandCounts[brand]
			s.TopBrand = brand
		}
	}

	for _, i := range inspections {
		switch i.Status {
		case models.InspectionStatusPlanned:
			s.PlannedInspections++
		case models.InspectionStatusCompleted:
			s.CompletedInspections++
		}
	}

	return s
}

var postTmpl = template.Must(template.New("post").Parse(`📊 СТАТИСТИКА МОТОПОДБОРА

За все время работы:

🏍️ Просмотрено мотоциклов: {{.Total}}
✅ Успешных сделок: {{.Purchased}}
📈 Процент успеха: {{.SuccessRate}}%
💵 Общая экономия клиентов: {{.TotalSavings}}
📅 Запланировано проверок: {{.Planned}}
✅ Выполнено проверок: {{.Completed}}

🔧 Профессиональная диагностика = уверенность в покупке!
📞 Звоните: 8 950 005-05-08
🌐 Сайт: motopodbor.ru`))

// Post renders the all-time statistics text the operator publishes as-is.
func Post(reports []*models.Report, inspections []*models.Inspection) string {
	total := len(reports)
	purchased := 0
	totalSavings := decimal.Zero
	for _, r := range reports {
		if r.Decision == models.DecisionPurchased {
			purchased++
		}
		if sv, ok := money.Savings(r.Price, r.ObjectiveCost, r.SellerDiscount, r.InvestmentCost); ok {
			totalSavings = totalSavings.Add(sv)
		}
	}

	successRate := 0
	if total > 0 {
		successRate = int(float64(purchased)/float64(total)*100 + 0.5)
	}

	planned, completed := 0, 0
	for _, i := range inspections {
		switch i.Status {
		case models.InspectionStatusPlanned:
			planned++
		case models.InspectionStatusCompleted:
			completed++
		}
	}

	var buf bytes.Buffer
	_ = postTmpl.Execute(&buf, map[string]interface{}{
		"Total":        total,
		"Purchased":    purchased,
		"SuccessRate":  successRate,
		"TotalSavings": money.Format(totalSavings),
		"Planned":      planned,
		"Completed":    completed,
	})
	return buf.String()
}

// ParsePeriod validates a period string, defaulting to week when empty.
func ParsePeriod(raw string) (Period, error) {
	if raw == "" {
		return PeriodWeek, nil
	}
	p := Period(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown period: %q", raw)
	}
	return p, nil
}
