/*
errors.go - Diagnostics for records the engine refuses to merge

PURPOSE:
  The engine degrades rather than fails: unparsable dates, malformed geo
  encodings, and missing optional fields all resolve to zero values. The
  ONLY conditions surfaced to callers are records missing a mandatory
  identity field (id or kind) and Actual records whose id/backReference
  is non-numeric. Such records are skipped and reported as diagnostics,
  never silently merged.

USAGE:
  result := rec.Reconcile(records)
  for _, d := range result.Diagnostics {
      log.Warn("skipped record", zap.String("reason", d.Reason))
  }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

// ErrMalformedRecord is the sentinel all record diagnostics unwrap to.
var ErrMalformedRecord = errors.New("malformed allocation record")

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MalformedRecordError describes one skipped input record.
type MalformedRecordError struct {
	// Index is the record's position in the input list.
	Index int

	// ID is the record id when one was readable, else zero.
	ID int64

	// Field names the offending field ("id", "kind", "backReference").
	Field string

	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d (id=%d): malformed %s: %s",
		e.Index, e.ID, e.Field, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// IsMalformedRecord reports whether err is a record diagnostic.
func IsMalformedRecord(err error) bool {
	return errors.Is(err, ErrMalformedRecord)
}

// validateRecord checks the mandatory identity fields. nil means usable.
func validateRecord(index int, r *RawAllocationRecord) *MalformedRecordError {
	switch r.Kind {
	case KindPlanned, KindActual:
	case "":
		return &MalformedRecordError{Index: index, ID: r.ID, Field: "kind", Reason: "missing"}
	default:
		return &MalformedRecordError{Index: index, ID: r.ID, Field: "kind",
			Reason: fmt.Sprintf("unknown kind %q", r.Kind)}
	}
	if r.ID <= 0 {
		return &MalformedRecordError{Index: index, Field: "id", Reason: "missing or non-positive"}
	}
	// Any numeric backReference is acceptable here; values matching no
	// Planned id simply produce orphan groups. Non-numeric input never
	// reaches the engine, the wire layer diagnoses it during decoding.
	if r.Kind == KindActual && r.Actual == nil {
		return &MalformedRecordError{Index: index, ID: r.ID, Field: "kind",
			Reason: "actual record without actual fields"}
	}
	return nil
}
