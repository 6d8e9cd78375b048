// Package services coordinates repositories and the analysis engine into
// the operations the API and scheduler call.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/modules/assessments"
	"github.com/veritaslabs/veritas/internal/modules/compliance"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
	"github.com/veritaslabs/veritas/internal/modules/risk"
	"github.com/veritaslabs/veritas/internal/modules/statements"
)

// ErrCompanyNotFound is returned when the company ID is not registered.
var ErrCompanyNotFound = errors.New("company not found")

// ErrNoStatements is returned when a company has no stored statements.
var ErrNoStatements = errors.New("no statements on file")

// AnalysisService runs the full analysis flow for one company: load the
// statement series, run the forensic pipeline, validate compliance, score
// risk, and persist the snapshot.
type AnalysisService struct {
	statements *statements.Repository
	store      *assessments.Store
	pipeline   *forensic.Pipeline
	engine     *compliance.Engine
	scorer     *risk.Scorer
	log        zerolog.Logger
}

// NewAnalysisService creates the analysis service.
func NewAnalysisService(
	stmts *statements.Repository,
	store *assessments.Store,
	pipeline *forensic.Pipeline,
	engine *compliance.Engine,
	scorer *risk.Scorer,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		statements: stmts,
		store:      store,
		pipeline:   pipeline,
		engine:     engine,
		scorer:     scorer,
		log:        log.With().Str("service", "analysis").Logger(),
	}
}

// Analyze runs a full assessment for a company. When force is false and a
// snapshot for the identical statement series already exists, the stored
// snapshot is returned without recomputing; the engine is deterministic, so
// the result would be the same.
func (s *AnalysisService) Analyze(ctx context.Context, companyID string, force bool) (*assessments.Record, *assessments.Snapshot, error) {
	company, err := s.statements.GetCompany(companyID)
	if err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
	}

	series, err := s.statements.SeriesForCompany(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	if len(series) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoStatements, companyID)
	}

	seriesHash := assessments.HashSeries(series)
	if !force {
		rec, snap, err := s.store.Cached(companyID, seriesHash)
		if err != nil {
			return nil, nil, err
		}
		if rec != nil {
			s.log.Debug().Str("company_id", companyID).Str("assessment_id", rec.ID).Msg("reusing stored snapshot")
			return rec, snap, nil
		}
	}

	result := s.pipeline.Run(series)
	complianceAssessment := s.engine.Validate(result)
	riskAssessment := s.scorer.Score(ctx, companyID, company.Name, result, complianceAssessment)

	snap := assessments.Snapshot{
		Forensic:   result,
		Risk:       riskAssessment,
		Compliance: complianceAssessment,
		Report:     risk.BuildReport(riskAssessment),
	}

	rec, err := s.store.Save(companyID, seriesHash, snap)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("company_id", companyID).
		Str("assessment_id", rec.ID).
		Float64("overall_score", rec.CompositeScore).
		Str("risk_level", rec.RiskLevel).
		Msg("analysis complete")

	return &rec, &snap, nil
}

// Latest returns the most recent assessment for a company.
func (s *AnalysisService) Latest(companyID string) (*assessments.Record, *assessments.Snapshot, error) {
	return s.store.Latest(companyID)
}

// Get returns one assessment by ID.
func (s *AnalysisService) Get(id string) (*assessments.Record, *assessments.Snapshot, error) {
	return s.store.Get(id)
}

// History returns assessment summaries for a company, newest first.
func (s *AnalysisService) History(companyID string, limit int) ([]assessments.Record, error) {
	return s.store.History(companyID, limit)
}
