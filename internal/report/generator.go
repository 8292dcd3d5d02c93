// Package report renders the operator-facing texts: the frozen report body
// stored with every saved report and the scheduled-visit details view.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/motodiag/internal/models"
)

// Business contact lines baked into every generated text.
const (
	contactName  = "Сергей Ландик"
	contactPhone = "8 950 005-05-08"
	contactSite  = "motopodbor.ru"
)

// Generate renders the full report body for a validated form. The result is
// frozen into the stored report and never regenerated.
func Generate(r *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏍️ Мотоподбор, осмотр мотоцикла перед покупкой, выездная диагностика, подбор под ключ.\n")
	fmt.Fprintf(&b, "📞 %s %s\n", contactName, contactPhone)
	fmt.Fprintf(&b, "🌐 Сайт: %s\n\n", contactSite)

	fmt.Fprintf(&b, "🏍️ %s %s\n", r.Brand, r.Model)
	if r.Year != "" {
		fmt.Fprintf(&b, "📅 Год выпуска: %s\n", r.Year)
	}
	if r.Mileage != "" {
		fmt.Fprintf(&b, "🛣️ Пробег: %s тыс. км\n", r.Mileage)
	}
	if r.MotorcycleClass != "" {
		fmt.Fprintf(&b, "🏷️ Класс: %s\n", r.MotorcycleClass)
	}
	if r.LegalCheck != "" {
		fmt.Fprintf(&b, "📋 Юридическая проверка: %s\n\n", r.LegalCheck)
	}

	b.WriteString("🔍 РЕЗУЛЬТАТЫ ДИАГНОСТИКИ:\n\n")
	ratings := []struct {
		label string
		value string
	}{
		{"👁️ Внешний вид", r.AppearanceRating},
		{"⚙️ Двигатель/КПП", r.EngineRating},
		{"🔌 Электрооборудование", r.ElectronicsRating},
		{"🛠️ Подвеска", r.SuspensionRating},
	}
	for _, rt := range ratings {
		if rt.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", rt.label, Stars(rt.value))
		}
	}

	b.WriteString("\n💼 ВЫВОДЫ:\n")
	if r.KeyFinding != "" {
		fmt.Fprintf(&b, "🔑 Ключевая находка: %s\n", r.KeyFinding)
	}
	if r.ExpertVerdict != "" {
		fmt.Fprintf(&b, "👨‍💼 Вердикт эксперта: %s\n", r.ExpertVerdict)
	}
	if r.Decision != "" {
		fmt.Fprintf(&b, "🤔 Решение: %s\n", r.Decision)
		if r.Decision == models.DecisionScheduleVisit {
			if r.InspectionDate != "" && r.InspectionTime != "" {
				if at, err := time.ParseInLocation("2006-01-02T15:04", r.InspectionDate+"T"+r.InspectionTime, time.Local); err == nil {
					fmt.Fprintf(&b, "📅 Запланированная проверка: %s\n", at.Format("02.01.2006 15:04"))
				}
			}
			if r.InspectionAddress != "" {
				fmt.Fprintf(&b, "📍 Адрес: %s\n", r.InspectionAddress)
			}
		}
	}

	if r.Price != "" || r.ObjectiveCost != "" || r.SellerDiscount != "" || r.InvestmentCost != "" {
		b.WriteString("\n💰 ФИНАНСОВАЯ ИНФОРМАЦИЯ:\n")
		if r.Price != "" {
			fmt.Fprintf(&b, "💵 Цена продавца: %s\n", r.Price)
		}
		if r.ObjectiveCost != "" {
			fmt.Fprintf(&b, "📊 Объективная стоимость: %s\n", r.ObjectiveCost)
		}
		if r.SellerDiscount != "" {
			fmt.Fprintf(&b, "🎁 Скидка с продавца: %s\n", r.SellerDiscount)
		}
		if r.InvestmentCost != "" {
			fmt.Fprintf(&b, "🔧 Стоимость вложений: %s\n", r.InvestmentCost)
		}
	}

	b.WriteString("\n────────────────────────────\n")
	b.WriteString("📞 Готовы найти свой идеальный мотоцикл?\n")
	fmt.Fprintf(&b, "Звоните: %s\n", contactPhone)
	b.WriteString("Мы поможем сделать правильный выбор! ✅")

	return b.String()
}

// Stars renders a 1-5 rating as filled and empty stars. Out-of-range input
// is clamped.
func Stars(rating string) string {
	n, err := strconv.Atoi(rating)
	if err != nil {
		return ""
	}
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

var detailsTmpl = template.Must(template.New("details").Parse(`🏍️ Детали запланированной проверки:

Мотоцикл: {{.Brand}} {{.Model}} ({{.Year}})
📅 Дата и время: {{.When}}
📍 Адрес: {{.Address}}
📞 Телефон заказчика: {{.CustomerPhone}}
📞 Телефон продавца: {{.SellerPhone}}
{{- if .Notes}}
📝 Заметки: {{.Notes}}
{{- end}}
📊 Статус: {{.Status}}

Для связи: {{.Contact}}
`))

// InspectionDetails renders the scheduled-visit view text.
func InspectionDetails(insp *models.Inspection) string {
	when := insp.InspectionDate + " " + insp.InspectionTime
	if at, err := insp.ScheduledAt(); err == nil {
		when = at.Format("02.01.2006 15:04")
	}

	seller := insp.SellerPhone
	if seller == "" {
		seller = "Не указан"
	}

	status := "📅 Запланировано"
	if insp.Status == models.InspectionStatusCompleted {
		status = "✅ Выполнено"
	}

	var buf bytes.Buffer
	_ = detailsTmpl.Execute(&buf, map[string]string{
		"Brand":         insp.Brand,
		"Model":         insp.Model,
		"Year":          insp.Year,
		"When":          when,
		"Address":       insp.InspectionAddress,
		"CustomerPhone": insp.CustomerPhone,
		"SellerPhone":   seller,
		"Notes":         insp.InspectionNotes,
		"Status":        status,
		"Contact":       contactPhone,
	})
	return buf.String()
}
