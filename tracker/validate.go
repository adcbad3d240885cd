package tracker

import (
	"math"
	"strconv"
	"strings"
)

// Boundary validation. The cli and import paths call these before anything
// reaches a Store; Store and Aggregator never call them.

// ValidateType trims kind and rejects an empty label.
func ValidateType(kind string) (string, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return "", &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	return kind, nil
}

// ParseQuantity parses a finite, non-negative number.
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Value: s, Reason: "not a number"}
	}
	return q, ValidateQuantity(q)
}

// ValidateQuantity rejects negative, NaN and infinite quantities.
func ValidateQuantity(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return &ValidationError{Field: "quantity", Value: strconv.FormatFloat(q, 'g', -1, 64), Reason: "not a finite number"}
	}
	if q < 0 {
		return &ValidationError{Field: "quantity", Value: strconv.FormatFloat(q, 'g', -1, 64), Reason: "must not be negative"}
	}
	return nil
}

// ParseEntryID parses a positive integer ID.
func ParseEntryID(s string) (EntryID, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, &ValidationError{Field: "id", Value: s, Reason: "expected a positive integer"}
	}
	return EntryID(n), nil
}
