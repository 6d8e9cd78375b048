// Package forensic orchestrates the analysis modules into one
// partial-failure-tolerant forensic result.
package forensic

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/analysis"
	"github.com/veritaslabs/veritas/internal/modules/anomalies"
	"github.com/veritaslabs/veritas/internal/modules/benford"
	"github.com/veritaslabs/veritas/internal/modules/ratios"
	"github.com/veritaslabs/veritas/internal/modules/scoring/scorers"
)

// Section wraps one sub-analysis outcome. A failed section carries its
// error message and never aborts the sections around it.
type Section[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok[T any](data T) Section[T] {
	return Section[T]{Success: true, Data: data}
}

func failed[T any](err error) Section[T] {
	return Section[T]{Success: false, Error: err.Error()}
}

// Result aggregates every sub-analysis over one statement series. Callers
// always receive a well-formed Result; "insufficient data" lives inside the
// affected section, never as an error crossing this boundary.
type Result struct {
	Vertical   Section[[]analysis.VerticalAnalysis] `json:"vertical"`
	Horizontal Section[analysis.HorizontalAnalysis] `json:"horizontal"`
	Ratios     Section[ratios.RatioSet]             `json:"ratios"`
	Benford    Section[benford.Result]              `json:"benford"`
	Altman     Section[scorers.AltmanResult]        `json:"altman"`
	Beneish    Section[scorers.BeneishResult]       `json:"beneish"`
	Anomalies  Section[anomalies.Report]            `json:"anomalies"`
}

// Pipeline wires the analysis modules together. Sub-analyses share no
// mutable state, so one pipeline instance serves concurrent series.
type Pipeline struct {
	analyzer   *analysis.Analyzer
	calculator *ratios.Calculator
	benford    *benford.Tester
	altman     *scorers.AltmanScorer
	beneish    *scorers.BeneishScorer
	detector   *anomalies.Detector
	log        zerolog.Logger
}

// NewPipeline creates a pipeline with all analysis modules wired.
func NewPipeline(log zerolog.Logger) *Pipeline {
	return &Pipeline{
		analyzer:   analysis.NewAnalyzer(log),
		calculator: ratios.NewCalculator(log),
		benford:    benford.NewTester(log),
		altman:     scorers.NewAltmanScorer(log),
		beneish:    scorers.NewBeneishScorer(log),
		detector:   anomalies.NewDetector(log),
		log:        log.With().Str("component", "forensic").Logger(),
	}
}

// Run executes every sub-analysis against the series. The seven analyses
// have no mutual data dependency and fan out in parallel; each one writes
// only its own section, and the final result is assembled after all have
// joined.
func (p *Pipeline) Run(series domain.StatementSeries) Result {
	sorted := series.Sorted()

	var result Result
	var wg sync.WaitGroup

	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() { result.Vertical = p.runVertical(sorted) })
	run(func() { result.Horizontal = p.runHorizontal(sorted) })
	run(func() { result.Ratios = ok(p.calculator.Calculate(sorted)) })
	run(func() { result.Benford = p.runBenford(sorted) })
	run(func() { result.Altman = p.runAltman(sorted) })
	run(func() { result.Beneish = p.runBeneish(sorted) })
	run(func() { result.Anomalies = ok(p.detector.Detect(sorted)) })

	wg.Wait()

	p.log.Info().
		Bool("vertical", result.Vertical.Success).
		Bool("horizontal", result.Horizontal.Success).
		Bool("benford", result.Benford.Success).
		Bool("altman", result.Altman.Success).
		Bool("beneish", result.Beneish.Success).
		Msg("forensic pipeline complete")

	return result
}

// runVertical applies common-size analysis to every statement that has a
// usable base figure. The section fails only when no statement does.
func (p *Pipeline) runVertical(series domain.StatementSeries) Section[[]analysis.VerticalAnalysis] {
	var out []analysis.VerticalAnalysis
	var lastErr error

	for _, stmt := range series {
		va, err := p.analyzer.Vertical(stmt)
		if err != nil {
			if stmt.Type != domain.StatementCashFlow {
				lastErr = err
			}
			continue
		}
		out = append(out, va)
	}

	if len(out) == 0 {
		if lastErr == nil {
			lastErr = domain.ErrMissingBaseValue{Base: domain.FieldTotalRevenue}
		}
		return failed[[]analysis.VerticalAnalysis](lastErr)
	}
	return ok(out)
}

func (p *Pipeline) runHorizontal(series domain.StatementSeries) Section[analysis.HorizontalAnalysis] {
	ha, err := p.analyzer.Horizontal(series)
	if err != nil {
		return failed[analysis.HorizontalAnalysis](err)
	}
	return ok(ha)
}

func (p *Pipeline) runBenford(series domain.StatementSeries) Section[benford.Result] {
	br, err := p.benford.Test(series)
	if err != nil {
		return failed[benford.Result](err)
	}
	return ok(br)
}

// runAltman pairs the most recent balance sheet with the most recent income
// statement. Normalized ingestion aligns their periods; when a type is
// absent entirely the section fails with ErrMissingStatement.
func (p *Pipeline) runAltman(series domain.StatementSeries) Section[scorers.AltmanResult] {
	balance, hasBalance := series.Latest(domain.StatementBalance)
	if !hasBalance {
		return failed[scorers.AltmanResult](domain.ErrMissingStatement{Type: domain.StatementBalance})
	}
	income, hasIncome := series.Latest(domain.StatementIncome)
	if !hasIncome {
		return failed[scorers.AltmanResult](domain.ErrMissingStatement{Type: domain.StatementIncome})
	}

	ar, err := p.altman.Score(balance, income)
	if err != nil {
		return failed[scorers.AltmanResult](err)
	}
	return ok(ar)
}

// runBeneish merges the two most recent periods and scores them.
func (p *Pipeline) runBeneish(series domain.StatementSeries) Section[scorers.BeneishResult] {
	periods := series.Periods()
	if len(periods) < 2 {
		return failed[scorers.BeneishResult](domain.ErrInsufficientPeriods{Needed: 2, Got: len(periods)})
	}

	current := series.MergedPeriod(periods[len(periods)-1])
	previous := series.MergedPeriod(periods[len(periods)-2])
	return ok(p.beneish.Score(current, previous))
}
