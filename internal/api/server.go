package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/motodiag/internal/auth"
	"github.com/motodiag/internal/clock"
	"github.com/motodiag/internal/models"
	"github.com/motodiag/internal/money"
	"github.com/motodiag/internal/notify"
	"github.com/motodiag/internal/reminder"
	"github.com/motodiag/internal/report"
	"github.com/motodiag/internal/settings"
	"github.com/motodiag/internal/stats"
	"github.com/motodiag/internal/store"
)

type Server struct {
	reports     *store.ReportStore
	inspections *store.InspectionStore
	scheduler   *reminder.Scheduler
	settings    *settings.Settings
	notifier    notify.Notifier
	clock       clock.Clock
	auth        *auth.Authenticator
	router      *gin.Engine
	log         *logrus.Entry
}

func NewServer(reports *store.ReportStore, inspections *store.InspectionStore, scheduler *reminder.Scheduler, prefs *settings.Settings, notifier notify.Notifier, clk clock.Clock, authenticator *auth.Authenticator, log *logrus.Logger) *Server {
	server := &Server{
		reports:     reports,
		inspections: inspections,
		scheduler:   scheduler,
		settings:    prefs,
		notifier:    notifier,
		clock:       clk,
		auth:        authenticator,
		router:      gin.Default(),
		log:         log.WithField("component", "api"),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.POST("/api/v1/auth/login", s.login)

	api := s.router.Group("/api/v1")
	api.Use(s.auth.Middleware())

	reports := api.Group("/reports")
	{
		reports.GET("", s.listReports)
		reports.POST("", s.createReport)
		reports.POST("/preview", s.previewReport)
		reports.GET("/export", s.exportReports)
		reports.POST("/import", s.importReports)
		reports.GET("/:id", s.getReport)
		reports.DELETE("/:id", s.deleteReport)
	}

	inspections := api.Group("/inspections")
	{
		inspections.GET("", s.listInspections)
		inspections.GET("/export", s.exportInspections)
		inspections.POST("/import", s.importInspections)
		inspections.GET("/:id", s.getInspection)
		inspections.GET("/:id/edit", s.beginEditInspection)
		inspections.PUT("/:id", s.commitEditInspection)
		inspections.PUT("/:id/complete", s.completeInspection)
		inspections.DELETE("/:id", s.deleteInspection)
	}

	api.GET("/reminders", s.listReminders)
	api.GET("/stats", s.getStats)
	api.GET("/stats/post", s.getStatsPost)
	api.GET("/settings", s.getSettings)
	api.PUT("/settings", s.putSettings)
	api.GET("/settings/export", s.exportSettings)
	api.POST("/settings/import", s.importSettings)
	api.DELETE("/data", s.clearAllData)
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// confirmed models the operator confirmation prompt: destructive endpoints
// refuse to act until the caller re-sends with confirm=true.
func confirmed(c *gin.Context, message string) bool {
	if c.Query("confirm") == "true" {
		return true
	}
	c.JSON(http.StatusConflict, gin.H{"error": "confirmation required", "message": message})
	return false
}

// ReportForm carries the validated diagnostic form. The custom brand/model
// fields take over when the placeholder values are selected.
type ReportForm struct {
	Brand       string `json:"brand" binding:"required"`
	BrandCustom string `json:"brand_custom"`
	Model       string `json:"model" binding:"required"`
	ModelCustom string `json:"model_custom"`

	Year            string `json:"year"`
	Mileage         string `json:"mileage"`
	VIN             string `json:"vin"`
	LicensePlate    string `json:"license_plate"`
	MotorcycleClass string `json:"motorcycle_class"`
	LegalCheck      string `json:"legal_check"`

	AppearanceRating  string `json:"appearance_rating"`
	EngineRating      string `json:"engine_rating"`
	ElectronicsRating string `json:"electronics_rating"`
	SuspensionRating  string `json:"suspension_rating"`

	KeyFinding    string `json:"key_finding"`
	ExpertVerdict string `json:"expert_verdict"`
	Decision      string `json:"decision"`

	Price          string `json:"price"`
	ObjectiveCost  string `json:"objective_cost"`
	SellerDiscount string `json:"seller_discount"`
	InvestmentCost string `json:"investment_cost"`

	InspectionDate    string `json:"inspection_date"`
	InspectionTime    string `json:"inspection_time"`
	InspectionAddress string `json:"inspection_address"`
	CustomerPhone     string `json:"customer_phone"`
	SellerPhone       string `json:"seller_phone"`
	InspectionNotes   string `json:"inspection_notes"`
}

func (f *ReportForm) toReport() *models.Report {
	brand := f.Brand
	if brand == models.BrandCustom && f.BrandCustom != "" {
		brand = f.BrandCustom
	}
	model := f.Model
	if model == models.ModelCustom && f.ModelCustom != "" {
		model = f.ModelCustom
	}

	return &models.Report{
		Brand:             brand,
		Model:             model,
		Year:              f.Year,
		Mileage:           f.Mileage,
		VIN:               f.VIN,
		LicensePlate:      f.LicensePlate,
		MotorcycleClass:   f.MotorcycleClass,
		LegalCheck:        f.LegalCheck,
		AppearanceRating:  f.AppearanceRating,
		EngineRating:      f.EngineRating,
		ElectronicsRating: f.ElectronicsRating,
		SuspensionRating:  f.SuspensionRating,
		KeyFinding:        f.KeyFinding,
		ExpertVerdict:     f.ExpertVerdict,
		Decision:          f.Decision,
		Price:             f.Price,
		ObjectiveCost:     f.ObjectiveCost,
		SellerDiscount:    f.SellerDiscount,
		InvestmentCost:    f.InvestmentCost,
		InspectionDate:    f.InspectionDate,
		InspectionTime:    f.InspectionTime,
		InspectionAddress: f.InspectionAddress,
		CustomerPhone:     f.CustomerPhone,
		SellerPhone:       f.SellerPhone,
		InspectionNotes:   f.InspectionNotes,
	}
}

func (f *ReportForm) validateVisitFields() error {
	if f.Decision != models.DecisionScheduleVisit {
		return nil
	}
	missing := func(name, value string) error {
		if value == "" {
			return fmt.Errorf("field %q is required when scheduling a visit", name)
		}
		return nil
	}
	for _, check := range []error{
		missing("inspection_date", f.InspectionDate),
		missing("inspection_time", f.InspectionTime),
		missing("inspection_address", f.InspectionAddress),
		missing("customer_phone", f.CustomerPhone),
	} {
		if check != nil {
			return check
		}
	}
	return nil
}

func (s *Server) listReports(c *gin.Context) {
	c.JSON(http.StatusOK, s.reports.List(c.Query("q")))
}

func (s *Server) previewReport(c *gin.Context) {
	var form ReportForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := form.toReport()
	resp := gin.H{"generated_text": report.Generate(r)}
	if sv, ok := money.Savings(r.Price, r.ObjectiveCost, r.SellerDiscount, r.InvestmentCost); ok {
		resp["savings"] = money.Format(sv)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) createReport(c *gin.Context) {
	var form ReportForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := form.validateVisitFields(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := form.toReport()
	r.GeneratedText = report.Generate(r)
	s.reports.Add(r)
	s.notifier.Notify("Отчет успешно сохранен в базу данных!", notify.SeveritySuccess)

	resp := gin.H{"report": r}
	if sv, ok := money.Savings(r.Price, r.ObjectiveCost, r.SellerDiscount, r.InvestmentCost); ok {
		resp["savings"] = money.Format(sv)
	}

	if r.Decision == models.DecisionScheduleVisit {
		insp := s.inspections.Add(&models.Inspection{
			Brand:             r.Brand,
			Model:             r.Model,
			Year:              r.Year,
			InspectionDate:    r.InspectionDate,
			InspectionTime:    r.InspectionTime,
			InspectionAddress: r.InspectionAddress,
			CustomerPhone:     r.CustomerPhone,
			SellerPhone:       r.SellerPhone,
			InspectionNotes:   r.InspectionNotes,
			Status:            models.InspectionStatusPlanned,
		})
		s.notifier.Notify("Проверка успешно запланирована!", notify.SeveritySuccess)
		resp["inspection"] = insp
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) getReport(c *gin.Context) {
	r, ok := s.reports.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) deleteReport(c *gin.Context) {
	if !confirmed(c, "Вы уверены, что хотите удалить этот отчет?") {
		return
	}
	s.reports.Remove(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "report deleted"})
}

func (s *Server) exportReports(c *gin.Context) {
	blob, err := s.reports.ExportJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	filename := fmt.Sprintf("motodiag_reports_%s.json", s.clock.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", blob)
}

func (s *Server) importReports(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	count, err := s.reports.ImportJSON(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.notifier.Notify(fmt.Sprintf("Успешно импортировано %d отчетов", count), notify.SeveritySuccess)
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

type inspectionView struct {
	*models.Inspection
	State models.DisplayState `json:"state"`
}

func (s *Server) listInspections(c *gin.Context) {
	now := s.clock.Now()
	list := s.inspections.List(c.Query("q"))
	views := make([]inspectionView, 0, len(list))
	for _, insp := range list {
		views = append(views, inspectionView{Inspection: insp, State: insp.State(now)})
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getInspection(c *gin.Context) {
	insp, ok := s.inspections.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "inspection not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inspection": inspectionView{Inspection: insp, State: insp.State(s.clock.Now())},
		"details":    report.InspectionDetails(insp),
	})
}

func (s *Server) completeInspection(c *gin.Context) {
	if !s.inspections.Complete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "inspection not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "inspection completed"})
}

func (s *Server) beginEditInspection(c *gin.Context) {
	draft, ok := s.inspections.BeginEdit(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "inspection not found"})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// InspectionForm carries an edited inspection re-submission.
type InspectionForm struct {
	Brand             string `json:"brand" binding:"required"`
	Model             string `json:"model" binding:"required"`
	Year              string `json:"year"`
	InspectionDate    string `json:"inspection_date" binding:"required"`
	InspectionTime    string `json:"inspection_time" binding:"required"`
	InspectionAddress string `json:"inspection_address" binding:"required"`
	CustomerPhone     string `json:"customer_phone" binding:"required"`
	SellerPhone       string `json:"seller_phone"`
	InspectionNotes   string `json:"inspection_notes"`
}

func (s *Server) commitEditInspection(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.inspections.Find(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "inspection not found"})
		return
	}

	var form InspectionForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replacement := s.inspections.CommitEdit(id, &models.Inspection{
		Brand:             form.Brand,
		Model:             form.Model,
		Year:              form.Year,
		InspectionDate:    form.InspectionDate,
		InspectionTime:    form.InspectionTime,
		InspectionAddress: form.InspectionAddress,
		CustomerPhone:     form.CustomerPhone,
		SellerPhone:       form.SellerPhone,
		InspectionNotes:   form.InspectionNotes,
	})
	c.JSON(http.StatusOK, replacement)
}

func (s *Server) deleteInspection(c *gin.Context) {
	if !confirmed(c, "Вы уверены, что хотите удалить эту проверку?") {
		return
	}
	if s.inspections.Remove(c.Param("id")) {
		s.notifier.Notify("Проверка успешно удалена", notify.SeveritySuccess)
	}
	c.JSON(http.StatusOK, gin.H{"message": "inspection deleted"})
}

func (s *Server) exportInspections(c *gin.Context) {
	blob, err := s.inspections.ExportJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	filename := fmt.Sprintf("motodiag_inspections_%s.json", s.clock.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", blob)
}

func (s *Server) importInspections(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	count, err := s.inspections.ImportJSON(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.notifier.Notify(fmt.Sprintf("Успешно импортировано %d проверок", count), notify.SeveritySuccess)
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

func (s *Server) listReminders(c *gin.Context) {
	entries := s.scheduler.Pending()
	if entries == nil {
		entries = []reminder.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) getStats(c *gin.Context) {
	period, err := stats.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary := stats.Compute(s.reports.All(), s.inspections.All(), period, s.clock.Now())
	c.JSON(http.StatusOK, summary)
}

func (s *Server) getStatsPost(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"post": stats.Post(s.reports.All(), s.inspections.All())})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"reminder_hours": s.settings.LeadHours(),
		"theme":          s.settings.Theme(),
	})
}

func (s *Server) putSettings(c *gin.Context) {
	var req struct {
		ReminderHours *int    `json:"reminder_hours"`
		Theme         *string `json:"theme"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ReminderHours != nil {
		if err := s.settings.SetLeadHours(*req.ReminderHours); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Theme != nil {
		if err := s.settings.SetTheme(*req.Theme); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reminder_hours": s.settings.LeadHours(),
		"theme":          s.settings.Theme(),
	})
}

func (s *Server) exportSettings(c *gin.Context) {
	blob, err := s.settings.Export()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	filename := fmt.Sprintf("motodiag_settings_%s.json", s.clock.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/json", blob)
}

func (s *Server) importSettings(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.settings.Import(data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.notifier.Notify("Настройки успешно импортированы", notify.SeveritySuccess)
	c.JSON(http.StatusOK, gin.H{
		"reminder_hours": s.settings.LeadHours(),
		"theme":          s.settings.Theme(),
	})
}

func (s *Server) clearAllData(c *gin.Context) {
	if !confirmed(c, "ВНИМАНИЕ! Это действие удалит все отчеты, проверки и настройки. Продолжить?") {
		return
	}
	removed := s.settings.ClearAll()
	s.reports.LoadAll()
	s.inspections.LoadAll()
	s.scheduler.Recompute()
	s.log.WithField("keys", removed).Info("all application data cleared")
	c.JSON(http.StatusOK, gin.H{"removed_keys": removed})
}
