package domain

import "fmt"

// ErrInsufficientPeriods signals that an analysis needs more periods than
// the series provides. Recoverable: the pipeline records it under the
// failing section and continues.
type ErrInsufficientPeriods struct {
	Needed int
	Got    int
}

func (e ErrInsufficientPeriods) Error() string {
	return fmt.Sprintf("insufficient periods: need %d, got %d", e.Needed, e.Got)
}

// ErrMissingBaseValue signals that vertical analysis has no usable base
// figure (zero or absent revenue / total assets).
type ErrMissingBaseValue struct {
	Base string
}

func (e ErrMissingBaseValue) Error() string {
	return fmt.Sprintf("missing or zero base value %q for vertical analysis", e.Base)
}

// ErrInsufficientSample signals that the digit-distribution test has too few
// positive values to be meaningful.
type ErrInsufficientSample struct {
	Got int
	Min int
}

func (e ErrInsufficientSample) Error() string {
	return fmt.Sprintf("insufficient sample for digit test: %d values, need %d", e.Got, e.Min)
}

// ErrZeroTotalAssets signals that the Altman model cannot be computed
// because total assets are zero or absent.
type ErrZeroTotalAssets struct{}

func (e ErrZeroTotalAssets) Error() string {
	return "total assets are zero or missing"
}

// ErrMissingStatement signals that an analysis requires a statement type the
// series does not contain.
type ErrMissingStatement struct {
	Type StatementType
}

func (e ErrMissingStatement) Error() string {
	return fmt.Sprintf("no %s statement in series", e.Type)
}
