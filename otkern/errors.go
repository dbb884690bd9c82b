package otkern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOffsetOverflow is returned if an encoded GPOS table would need an offset
// which does not fit into 16 bits.
var ErrOffsetOverflow = errors.New("GPOS offset overflow")

// ErrorSeverity represents the severity level of a GPOS parsing issue.
type ErrorSeverity int

const (
	// SeverityCritical marks an issue that makes the table unusable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor marks an issue causing a lookup or subtable to be skipped.
	SeverityMajor
	// SeverityMinor marks an issue that can safely be ignored.
	SeverityMinor
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	}
	return "UNKNOWN"
}

// FontError is an issue encountered while reading pair positioning data.
type FontError struct {
	Table    string        // always "GPOS" for this package
	Section  string        // e.g. "LookupList", "PairPos/2"
	Issue    string        // human-readable description
	Severity ErrorSeverity //
	Offset   uint32        // byte offset within the table, 0 if unknown
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// ParseErrors is returned by ReadPairs if any subtable had to be skipped.
// Pairs read from intact subtables are returned alongside it.
type ParseErrors []FontError

func (pe ParseErrors) Error() string {
	if len(pe) == 1 {
		return pe[0].Error()
	}
	msgs := make([]string, len(pe))
	for i, e := range pe {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d GPOS issues: %s", len(pe), strings.Join(msgs, "; "))
}

// errorCollector accumulates issues during parsing.
type errorCollector struct {
	errors []FontError
}

func (ec *errorCollector) addError(section, issue string, severity ErrorSeverity, offset int) {
	tracer().Debugf("GPOS %s: %s", section, issue)
	ec.errors = append(ec.errors, FontError{
		Table:    "GPOS",
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   uint32(offset),
	})
}

// result returns nil if no issue beyond minor ones has been recorded.
func (ec *errorCollector) result() error {
	var relevant ParseErrors
	for _, e := range ec.errors {
		if e.Severity != SeverityMinor {
			relevant = append(relevant, e)
		}
	}
	if len(relevant) == 0 {
		return nil
	}
	return relevant
}
