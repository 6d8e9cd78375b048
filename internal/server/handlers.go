package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/assessments"
	"github.com/veritaslabs/veritas/internal/modules/statements"
	"github.com/veritaslabs/veritas/internal/services"
)

// Handlers serves the company, statement and assessment endpoints.
type Handlers struct {
	statements *statements.Repository
	analysis   *services.AnalysisService
	log        zerolog.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(stmts *statements.Repository, analysis *services.AnalysisService, log zerolog.Logger) *Handlers {
	return &Handlers{
		statements: stmts,
		analysis:   analysis,
		log:        log.With().Str("handler", "api").Logger(),
	}
}

// RegisterRoutes mounts the API routes.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.HandleListCompanies)
		r.Post("/", h.HandleCreateCompany)

		r.Route("/{companyID}", func(r chi.Router) {
			r.Get("/", h.HandleGetCompany)
			r.Post("/statements", h.HandleUploadStatements)
			r.Post("/analyze", h.HandleAnalyze)
			r.Get("/assessment", h.HandleLatestAssessment)
			r.Get("/report", h.HandleLatestReport)
			r.Get("/history", h.HandleHistory)
		})
	})

	r.Get("/assessments/{assessmentID}", h.HandleGetAssessment)
}

// HandleListCompanies handles GET /api/companies
func (h *Handlers) HandleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.statements.ListCompanies()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list companies")
		writeError(h.log, w, http.StatusInternalServerError, "failed to list companies")
		return
	}
	if companies == nil {
		companies = []statements.Company{}
	}
	writeData(h.log, w, http.StatusOK, companies)
}

// HandleCreateCompany handles POST /api/companies
func (h *Handlers) HandleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Sector string `json:"sector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.log, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(h.log, w, http.StatusBadRequest, "id and name are required")
		return
	}

	company := statements.Company{ID: req.ID, Name: req.Name, Sector: req.Sector}
	if err := h.statements.SaveCompany(company); err != nil {
		h.log.Error().Err(err).Str("company_id", req.ID).Msg("Failed to save company")
		writeError(h.log, w, http.StatusInternalServerError, "failed to save company")
		return
	}
	writeData(h.log, w, http.StatusCreated, company)
}

// HandleGetCompany handles GET /api/companies/{companyID}
func (h *Handlers) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	company, err := h.statements.GetCompany(companyID)
	if err != nil {
		h.log.Error().Err(err).Str("company_id", companyID).Msg("Failed to get company")
		writeError(h.log, w, http.StatusInternalServerError, "failed to get company")
		return
	}
	if company == nil {
		writeError(h.log, w, http.StatusNotFound, "company not found")
		return
	}

	count, err := h.statements.CountStatements(companyID)
	if err != nil {
		h.log.Error().Err(err).Str("company_id", companyID).Msg("Failed to count statements")
		writeError(h.log, w, http.StatusInternalServerError, "failed to get company")
		return
	}

	writeData(h.log, w, http.StatusOK, map[string]interface{}{
		"company":    company,
		"statements": count,
	})
}

// statementInput is the upload shape for one normalized statement.
type statementInput struct {
	PeriodEnd string             `json:"period_end"`
	Type      string             `json:"statement_type"`
	Currency  string             `json:"currency"`
	Units     string             `json:"units"`
	Fields    map[string]float64 `json:"fields"`
}

var validStatementTypes = map[domain.StatementType]bool{
	domain.StatementIncome:   true,
	domain.StatementBalance:  true,
	domain.StatementCashFlow: true,
}

// HandleUploadStatements handles POST /api/companies/{companyID}/statements.
// Accepts an array of normalized statements; re-filed periods are replaced.
func (h *Handlers) HandleUploadStatements(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	company, err := h.statements.GetCompany(companyID)
	if err != nil {
		writeError(h.log, w, http.StatusInternalServerError, "failed to get company")
		return
	}
	if company == nil {
		writeError(h.log, w, http.StatusNotFound, "company not found")
		return
	}

	var inputs []statementInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		writeError(h.log, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(inputs) == 0 {
		writeError(h.log, w, http.StatusBadRequest, "no statements provided")
		return
	}

	saved := 0
	for _, in := range inputs {
		periodEnd, err := time.Parse("2006-01-02", in.PeriodEnd)
		if err != nil {
			writeError(h.log, w, http.StatusBadRequest, "invalid period_end: "+in.PeriodEnd)
			return
		}
		stmtType := domain.StatementType(in.Type)
		if !validStatementTypes[stmtType] {
			writeError(h.log, w, http.StatusBadRequest, "invalid statement_type: "+in.Type)
			return
		}
		if len(in.Fields) == 0 {
			writeError(h.log, w, http.StatusBadRequest, "statement has no fields")
			return
		}

		stmt := domain.FinancialStatement{
			PeriodEnd: periodEnd,
			Type:      stmtType,
			Currency:  in.Currency,
			Units:     in.Units,
			Fields:    in.Fields,
		}
		if err := h.statements.SaveStatement(companyID, stmt); err != nil {
			h.log.Error().Err(err).Str("company_id", companyID).Msg("Failed to save statement")
			writeError(h.log, w, http.StatusInternalServerError, "failed to save statement")
			return
		}
		saved++
	}

	writeData(h.log, w, http.StatusCreated, map[string]int{"saved": saved})
}

// HandleAnalyze handles POST /api/companies/{companyID}/analyze. Pass
// ?force=true to recompute even when the statement series is unchanged.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	rec, snap, err := h.analysis.Analyze(r.Context(), companyID, force)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCompanyNotFound):
			writeError(h.log, w, http.StatusNotFound, "company not found")
		case errors.Is(err, services.ErrNoStatements):
			writeError(h.log, w, http.StatusUnprocessableEntity, "no statements on file")
		default:
			h.log.Error().Err(err).Str("company_id", companyID).Msg("Analysis failed")
			writeError(h.log, w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	writeData(h.log, w, http.StatusOK, map[string]interface{}{
		"assessment": rec,
		"snapshot":   snap,
	})
}

// HandleLatestAssessment handles GET /api/companies/{companyID}/assessment
func (h *Handlers) HandleLatestAssessment(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	rec, snap, err := h.analysis.Latest(companyID)
	if err != nil {
		h.log.Error().Err(err).Str("company_id", companyID).Msg("Failed to load assessment")
		writeError(h.log, w, http.StatusInternalServerError, "failed to load assessment")
		return
	}
	if rec == nil {
		writeError(h.log, w, http.StatusNotFound, "no assessment for company")
		return
	}

	writeData(h.log, w, http.StatusOK, map[string]interface{}{
		"assessment": rec,
		"snapshot":   snap,
	})
}

// HandleLatestReport handles GET /api/companies/{companyID}/report. Returns
// the flattened risk report of the latest assessment.
func (h *Handlers) HandleLatestReport(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	rec, snap, err := h.analysis.Latest(companyID)
	if err != nil {
		writeError(h.log, w, http.StatusInternalServerError, "failed to load report")
		return
	}
	if rec == nil {
		writeError(h.log, w, http.StatusNotFound, "no assessment for company")
		return
	}

	writeData(h.log, w, http.StatusOK, snap.Report)
}

// HandleHistory handles GET /api/companies/{companyID}/history
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.analysis.History(companyID, limit)
	if err != nil {
		writeError(h.log, w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if records == nil {
		records = []assessments.Record{}
	}
	writeData(h.log, w, http.StatusOK, records)
}

// HandleGetAssessment handles GET /api/assessments/{assessmentID}
func (h *Handlers) HandleGetAssessment(w http.ResponseWriter, r *http.Request) {
	assessmentID := chi.URLParam(r, "assessmentID")

	rec, snap, err := h.analysis.Get(assessmentID)
	if err != nil {
		writeError(h.log, w, http.StatusInternalServerError, "failed to load assessment")
		return
	}
	if rec == nil {
		writeError(h.log, w, http.StatusNotFound, "assessment not found")
		return
	}

	writeData(h.log, w, http.StatusOK, map[string]interface{}{
		"assessment": rec,
		"snapshot":   snap,
	})
}
