package domain

import "context"

// StatementProvider supplies an already-normalized statement series for a
// company. Source validation (balance-sheet equation, unit reconciliation)
// is an ingestion-time concern; the engine computes on whatever it is given.
type StatementProvider interface {
	SeriesForCompany(ctx context.Context, companyID string) (StatementSeries, error)
}

// SentimentResult is the outcome of an external news-sentiment probe.
// RiskDelta is a bounded additive risk contribution in [0, 20].
type SentimentResult struct {
	RiskDelta float64  `json:"risk_delta"`
	Factors   []string `json:"factors"`
}

// SentimentProbe is the single network-facing collaborator in the engine.
// Implementations must honor the context deadline; callers treat any error
// or timeout as "no signal" and contribute zero risk.
type SentimentProbe interface {
	Search(ctx context.Context, companyName string) (SentimentResult, error)
}
