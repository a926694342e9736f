// Package core holds the ledger domain model: projects, workers, importers,
// assignments and payments, plus amount and date parsing.
//
// Amounts are stored exactly as float64 and rounded to two decimals for
// display only. Comparisons against contracted amounts tolerate Epsilon.
package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and display format for every date in the ledger.
const DateLayout = "02-01-2006"

// Epsilon tolerates floating-point drift when comparing paid sums against
// contracted amounts.
const Epsilon = 1e-9

// Date is a calendar day, persisted as a DD-MM-YYYY string.
type Date struct {
	time.Time
}

// ParseDate parses a DD-MM-YYYY string.
//
// Examples:
//
//	ParseDate("05-09-2026") -> 5 September 2026
//	ParseDate("2026-09-05") -> ErrInvalidDate
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// ParseAmount converts a decimal string to a positive amount. Both dot and
// comma decimal separators are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with two-decimal display rounding.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
