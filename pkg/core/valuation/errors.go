package valuation

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFundamental means a required snapshot field (EBIT, market cap,
	// shares outstanding) is absent. The valuation cannot proceed.
	ErrMissingFundamental = errors.New("missing required fundamental")

	// ErrInvalidFundamental means a snapshot field is present but outside its
	// domain, e.g. negative shares outstanding.
	ErrInvalidFundamental = errors.New("invalid fundamental")

	// ErrDomainViolation means a formula was asked to work outside its domain,
	// e.g. a perpetuity with WACC <= growth.
	ErrDomainViolation = errors.New("domain violation")

	// ErrDegenerateInput marks a mathematically well-defined degenerate case
	// for which a fallback value was used. It is never returned as a failure.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidAssumption means the macro assumptions are out of range.
	ErrInvalidAssumption = errors.New("invalid assumption")
)

// MissingFundamentalError names the absent snapshot field.
type MissingFundamentalError struct {
	Field string
}

func (e *MissingFundamentalError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingFundamental, e.Field)
}

func (e *MissingFundamentalError) Unwrap() error { return ErrMissingFundamental }

// InvalidFundamentalError names the out-of-domain snapshot field.
type InvalidFundamentalError struct {
	Field string
	Value float64
}

func (e *InvalidFundamentalError) Error() string {
	return fmt.Sprintf("%v: %s must not be negative, got %g", ErrInvalidFundamental, e.Field, e.Value)
}

func (e *InvalidFundamentalError) Unwrap() error { return ErrInvalidFundamental }

// DomainViolationError reports which formula was hit and the offending rates.
type DomainViolationError struct {
	Formula string
	WACC    float64
	Growth  float64
}

func (e *DomainViolationError) Error() string {
	return fmt.Sprintf("%v in %s: WACC (%.4f) must be greater than perpetual growth (%.4f)",
		ErrDomainViolation, e.Formula, e.WACC, e.Growth)
}

func (e *DomainViolationError) Unwrap() error { return ErrDomainViolation }

// DegenerateCase records a fallback taken during a valuation run.
type DegenerateCase struct {
	Input    string `json:"input"`
	Formula  string `json:"formula"`
	Fallback string `json:"fallback"`
}

func (d DegenerateCase) Error() string {
	return fmt.Sprintf("%v: %s in %s, used %s", ErrDegenerateInput, d.Input, d.Formula, d.Fallback)
}

func (d DegenerateCase) Unwrap() error { return ErrDegenerateInput }
