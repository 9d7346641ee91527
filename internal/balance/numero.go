// Package balance holds the shift reconciliation engine: meter gallons,
// per-shift balance, meter carryover and day-level aggregation.
// Every function here is pure; callers pass shifts and prices explicitly.
package balance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMonto parses a loosely typed numeric entry. Empty or malformed input
// yields zero instead of an error, since partial entries are normal mid-shift.
func ParseMonto(raw string) decimal.Decimal {
	if v := ParseOpcional(raw); v != nil {
		return *v
	}
	return decimal.Zero
}

// ParseOpcional is ParseMonto for fields where "not entered" differs from zero.
func ParseOpcional(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &v
}
