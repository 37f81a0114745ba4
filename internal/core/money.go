// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing user-typed amounts and ledger
// dates into their canonical forms.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
)

// ParseAmount converts a user-typed integer amount to minor units.
//
// Thousands separators (dot, comma, space, apostrophe) and an optional "Rp"
// prefix are ignored. Zero is accepted; negative values, fractions and
// anything non-numeric are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("1800000")     -> 1800000, nil
//	ParseAmount("1.800.000")   -> 1800000, nil
//	ParseAmount("Rp 1,800,000") -> 1800000, nil
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(s[2:])
	}
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.TrimPrefix(s, "+")
	groups := strings.FieldsFunc(s, isGroupSeparator)
	if len(groups) == 0 {
		return 0, ErrInvalidAmount
	}
	for i, g := range groups {
		for _, r := range g {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
		}
		// Separators only ever split thousands, so "1.5" is not 15.
		if len(groups) > 1 && ((i == 0 && len(g) > 3) || (i > 0 && len(g) != 3)) {
			return 0, ErrInvalidAmount
		}
	}
	digits := strings.Join(groups, "")
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func isGroupSeparator(r rune) bool {
	switch r {
	case '.', ',', ' ', '\'', '\u00a0':
		return true
	}
	return false
}

// ParseStoredAmount reads an amount cell. Stores hand back plain integers,
// thousands-grouped text such as "1.000" or spreadsheet-rendered numbers
// such as "1800000.0". Grouping wins over a decimal reading.
func ParseStoredAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return Money{}, ErrInvalidAmount
		}
		return Money{Minor: v}, nil
	}
	if v, err := ParseAmount(s); err == nil {
		return Money{Minor: v}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f == float64(int64(f)) {
		return Money{Minor: int64(f)}, nil
	}
	return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
}

// ParseDate accepts ISO-8601 and the common locale date formats found in
// historical rows. Numeric dates with an ambiguous day/month order are read
// month first. The time of day, if any, is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}
