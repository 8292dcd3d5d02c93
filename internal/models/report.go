package models

import "time"

// Decision values as they appear in stored reports. The operator-facing form
// is Russian, and the literals are persisted verbatim so exported archives
// stay compatible with existing data.
const (
	DecisionPurchased     = "✅ Куплен"
	DecisionDeclined      = "❌ Отказаться"
	DecisionScheduleVisit = "📅 Запланировать проверку"
)

// Placeholder brand/model values that switch the form to free-text entry.
const (
	BrandCustom = "Другая марка"
	ModelCustom = "Другая модель"
)

// Report is a finalized inspection record. Money fields keep the free-text
// form values ("1 200 000", "120,5"); parsing happens in the money package.
type Report struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Brand           string `json:"brand"`
	Model           string `json:"model"`
	Year            string `json:"year,omitempty"`
	Mileage         string `json:"mileage,omitempty"`
	VIN             string `json:"vin,omitempty"`
	LicensePlate    string `json:"license_plate,omitempty"`
	MotorcycleClass string `json:"motorcycle_class,omitempty"`
	LegalCheck      string `json:"legal_check,omitempty"`

	AppearanceRating  string `json:"appearance_rating,omitempty"`
	EngineRating      string `json:"engine_rating,omitempty"`
	ElectronicsRating string `json:"electronics_rating,omitempty"`
	SuspensionRating  string `json:"suspension_rating,omitempty"`

	KeyFinding    string `json:"key_finding,omitempty"`
	ExpertVerdict string `json:"expert_verdict,omitempty"`
	Decision      string `json:"decision,omitempty"`

	Price          string `json:"price,omitempty"`
	ObjectiveCost  string `json:"objective_cost,omitempty"`
	SellerDiscount string `json:"seller_discount,omitempty"`
	InvestmentCost string `json:"investment_cost,omitempty"`

	InspectionDate    string `json:"inspection_date,omitempty"`
	InspectionTime    string `json:"inspection_time,omitempty"`
	InspectionAddress string `json:"inspection_address,omitempty"`
	CustomerPhone     string `json:"customer_phone,omitempty"`
	SellerPhone       string `json:"seller_phone,omitempty"`
	InspectionNotes   string `json:"inspection_notes,omitempty"`

	// GeneratedText is the rendered report body frozen at save time. It is
	// never regenerated for a stored report.
	GeneratedText string `json:"generated_text"`
}

func (r *Report) RecordID() string         { return r.ID }
func (r *Report) SetRecordID(id string)    { r.ID = id }
func (r *Report) SetCreatedAt(t time.Time) { r.Timestamp = t }

// Clone returns a detached copy. All fields are values, so a shallow copy is
// a full one.
func (r *Report) Clone() *Report {
	c := *r
	return &c
}

// Matches reports whether the report matches a free-text search over brand,
// model, year, VIN and license plate.
func (r *Report) Matches(query string) bool {
	if query == "" {
		return true
	}
	return containsFold(r.Brand, query) ||
		containsFold(r.Model, query) ||
		containsFold(r.Year, query) ||
		containsFold(r.VIN, query) ||
		containsFold(r.LicensePlate, query)
}
