package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/modules/assessments"
	"github.com/veritaslabs/veritas/internal/modules/risk"
	"github.com/veritaslabs/veritas/internal/modules/statements"
)

// CompanyLister supplies the registered companies to sweep.
type CompanyLister interface {
	ListCompanies() ([]statements.Company, error)
}

// Assessor runs and retrieves analyses. Implemented by services.AnalysisService.
type Assessor interface {
	Analyze(ctx context.Context, companyID string, force bool) (*assessments.Record, *assessments.Snapshot, error)
	Latest(companyID string) (*assessments.Record, *assessments.Snapshot, error)
}

// monitoringIntervals maps an assessment's monitoring frequency to the age
// at which it goes stale.
var monitoringIntervals = map[string]time.Duration{
	risk.MonitorDaily:     24 * time.Hour,
	risk.MonitorWeekly:    7 * 24 * time.Hour,
	risk.MonitorMonthly:   30 * 24 * time.Hour,
	risk.MonitorQuarterly: 90 * 24 * time.Hour,
}

// MonitoringJob re-assesses companies whose latest assessment has outlived
// its own monitoring frequency. Re-runs are forced so the external
// sentiment signal refreshes even when statements are unchanged.
type MonitoringJob struct {
	companies CompanyLister
	assessor  Assessor
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewMonitoringJob creates the periodic re-analysis sweep.
func NewMonitoringJob(companies CompanyLister, assessor Assessor, log zerolog.Logger) *MonitoringJob {
	return &MonitoringJob{
		companies: companies,
		assessor:  assessor,
		timeout:   2 * time.Minute,
		now:       time.Now,
		log:       log.With().Str("job", "monitoring_sweep").Logger(),
	}
}

// Name implements Job.
func (j *MonitoringJob) Name() string {
	return "monitoring_sweep"
}

// Run sweeps every registered company once. Per-company failures are logged
// and do not stop the sweep.
func (j *MonitoringJob) Run() error {
	companies, err := j.companies.ListCompanies()
	if err != nil {
		return err
	}

	assessed := 0
	for _, company := range companies {
		due, err := j.isDue(company.ID)
		if err != nil {
			j.log.Error().Err(err).Str("company_id", company.ID).Msg("failed to check assessment age")
			continue
		}
		if !due {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		_, _, err = j.assessor.Analyze(ctx, company.ID, true)
		cancel()
		if err != nil {
			j.log.Error().Err(err).Str("company_id", company.ID).Msg("scheduled re-analysis failed")
			continue
		}
		assessed++
	}

	j.log.Info().Int("companies", len(companies)).Int("assessed", assessed).Msg("monitoring sweep complete")
	return nil
}

// isDue reports whether a company needs re-assessment. A company with no
// assessment at all is always due; otherwise the latest assessment's own
// monitoring frequency sets its shelf life.
func (j *MonitoringJob) isDue(companyID string) (bool, error) {
	rec, snap, err := j.assessor.Latest(companyID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return true, nil
	}

	interval, ok := monitoringIntervals[snap.Risk.MonitoringFrequency]
	if !ok {
		interval = monitoringIntervals[risk.MonitorQuarterly]
	}
	return j.now().Sub(rec.CreatedAt) >= interval, nil
}
