package server

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/veritaslabs/veritas/internal/config"
	"github.com/veritaslabs/veritas/internal/modules/assessments"
	"github.com/veritaslabs/veritas/internal/modules/compliance"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
	"github.com/veritaslabs/veritas/internal/modules/risk"
	"github.com/veritaslabs/veritas/internal/modules/statements"
	"github.com/veritaslabs/veritas/internal/services"
)

func setupTestServer(t *testing.T) *Server {
	openMem := func() *sql.DB {
		db, err := sql.Open("sqlite", ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return db
	}

	stmts, err := statements.NewRepository(openMem(), zerolog.Nop())
	require.NoError(t, err)
	store, err := assessments.NewStore(openMem(), zerolog.Nop())
	require.NoError(t, err)

	analysis := services.NewAnalysisService(
		stmts,
		store,
		forensic.NewPipeline(zerolog.Nop()),
		compliance.NewEngine(zerolog.Nop()),
		risk.NewScorer(nil, 0, zerolog.Nop()),
		zerolog.Nop(),
	)

	return New(Config{
		Log:        zerolog.Nop(),
		Config:     &config.Config{Port: 8080, DevMode: true},
		Statements: stmts,
		Analysis:   analysis,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func statementPayload() []map[string]interface{} {
	var out []map[string]interface{}
	for i, year := range []int{2022, 2023, 2024} {
		scale := 1.0 + 0.1*float64(i)
		end := fmt.Sprintf("%d-03-31", year)
		out = append(out,
			map[string]interface{}{
				"period_end":     end,
				"statement_type": "INCOME",
				"fields": map[string]float64{
					"total_revenue":      1000 * scale,
					"cost_of_goods_sold": 600 * scale,
					"gross_profit":       400 * scale,
					"operating_income":   200 * scale,
					"net_profit":         120 * scale,
					"depreciation":       40 * scale,
					"sga_expense":        110 * scale,
				},
			},
			map[string]interface{}{
				"period_end":     end,
				"statement_type": "BALANCE",
				"fields": map[string]float64{
					"total_assets":        2500 * scale,
					"current_assets":      900 * scale,
					"current_liabilities": 450 * scale,
					"total_liabilities":   1100 * scale,
					"total_equity":        1400 * scale,
					"retained_earnings":   700 * scale,
					"accounts_receivable": 180 * scale,
					"inventory":           210 * scale,
					"cash":                160 * scale,
				},
			},
			map[string]interface{}{
				"period_end":     end,
				"statement_type": "CASH_FLOW",
				"fields":         map[string]float64{"operating_cash_flow": 150 * scale},
			},
		)
	}
	return out
}

func TestCreateAndGetCompany(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/companies", map[string]string{
		"id": "ACME", "name": "Acme Industries", "sector": "Manufacturing",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/companies/ACME", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Company    statements.Company `json:"company"`
			Statements int                `json:"statements"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme Industries", resp.Data.Company.Name)
	assert.Zero(t, resp.Data.Statements)
}

func TestCreateCompanyValidation(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/companies", map[string]string{"id": "ACME"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadStatementsAndAnalyze(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/companies", map[string]string{"id": "ACME", "name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/companies/ACME/statements", statementPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/companies/ACME/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Assessment assessments.Record   `json:"assessment"`
			Snapshot   assessments.Snapshot `json:"snapshot"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ACME", resp.Data.Assessment.CompanyID)
	assert.Len(t, resp.Data.Snapshot.Risk.CategoryScores, 6)
	assert.True(t, resp.Data.Snapshot.Forensic.Altman.Success)

	rec = doJSON(t, s, http.MethodGet, "/api/companies/ACME/assessment", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/companies/ACME/report", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "ACME", report.Data["company_id"])
	assert.Contains(t, report.Data, "overall_score")

	rec = doJSON(t, s, http.MethodGet, "/api/assessments/"+resp.Data.Assessment.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeWithoutStatements(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/companies", map[string]string{"id": "EMPTY", "name": "Empty"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/companies/EMPTY/analyze", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyzeUnknownCompany(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/companies/GHOST/analyze", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadStatementsValidation(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/companies", map[string]string{"id": "ACME", "name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/companies/ACME/statements", []map[string]interface{}{
		{"period_end": "not-a-date", "statement_type": "INCOME", "fields": map[string]float64{"x": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/companies/ACME/statements", []map[string]interface{}{
		{"period_end": "2024-03-31", "statement_type": "PROFITS", "fields": map[string]float64{"x": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/companies/GHOST/statements", statementPayload())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/companies", map[string]string{"id": "ACME", "name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/api/companies/ACME/statements", statementPayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/api/companies/ACME/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/companies/ACME/history", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []assessments.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestHealthEndpoints(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/system/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/system/jobs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			SchedulerEnabled bool `json:"scheduler_enabled"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.SchedulerEnabled)
}
