/*
Package engine reconciles planned work allocations with actual worked
sessions.

PURPOSE:
  The backend produces two independent record kinds for the same logical
  assignment: a Planned record (intended work, no attendance data) and
  zero-or-more Actual records (real check-in/out activity referencing the
  Planned record by id). This package reconstructs, per assignment and per
  calendar day, a coherent attendance picture: which days were worked,
  what time windows were checked in/out, how many items were processed,
  and what lifecycle state the assignment is in.

KEY CONCEPTS IN THIS FILE (types.go):
  - RawAllocationRecord: the kind-tagged input unit (Planned | Actual)
  - TimeSegmentRecord: one logged segment with its encoded geo event
  - ActivityGroup: one Planned record paired with its matching Actuals
  - DaySession / DayLog: per-day merged attendance
  - NormalizedActivity: the full derived view for one assignment

DESIGN PRINCIPLES:
  1. Purity: everything here is derived, immutable, rebuilt in full on
     every invocation; the engine is a function of (records, today)
  2. Precision: effort and hour sums use decimal.Decimal
  3. Ordering: "latest wins" always means ascending-id traversal order;
     that ordering is the sole tie-break mechanism
  4. Degradation: malformed dates/events resolve to zero values, never
     errors (see errors.go for the two exceptions)

SEE ALSO:
  - grouper.go: builds ActivityGroups from the raw list
  - daylog.go: merges a group's Actuals into per-day DayLogs
  - normalize.go: derives NormalizedActivity from group + day logs
  - aggregate.go: the independent dashboard rollup view
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW RECORDS - Input unit (kind-tagged union)
// =============================================================================

// RecordKind discriminates the two record kinds.
type RecordKind string

const (
	KindPlanned RecordKind = "Planned"
	KindActual  RecordKind = "Actual"
)

// StatusSubmitted is the backend's terminal status code on an Actual
// record. Anything else is treated as open.
const StatusSubmitted = "Submitted"

// RawAllocationRecord is one input record. Kind-specific fields are
// grouped: Actual holds everything only Actual records carry.
type RawAllocationRecord struct {
	Kind RecordKind
	ID   int64

	// Identity of the commercial order item and the people/work involved.
	OrderItemID  int64
	OrderItemKey string
	EmployeeID   int64
	EmployeeName string
	CustomerName string
	ProductName  string
	ProjectName  string
	ActivityName string
	ActivityID   int64

	// Validity bounds, inclusive. A reversed range is tolerated: it simply
	// never contains any date.
	StartDate DayDate
	EndDate   DayDate

	Effort     decimal.Decimal
	EffortUnit string
	Remarks    string

	// Actual is non-nil only when Kind == KindActual.
	Actual *ActualFields
}

// ActualFields groups the fields only Actual records carry.
type ActualFields struct {
	// BackReference is the Planned record id this Actual reports against.
	BackReference int64

	// ItemsCount is the record-level total, meaningful as a fallback when
	// no segment carries per-session counts.
	ItemsCount int

	// Status is the backend's domain code (StatusSubmitted vs open).
	Status string

	// TimeSegments in backend production order; not guaranteed globally
	// sorted.
	TimeSegments []TimeSegmentRecord
}

// TimeSegmentRecord is one logged segment within an Actual record.
type TimeSegmentRecord struct {
	Date         DayDate
	EncodedEvent string
	Remarks      string
	ItemsCount   int
}

// IsActual reports whether the record is a usable Actual record.
func (r *RawAllocationRecord) IsActual() bool {
	return r.Kind == KindActual && r.Actual != nil
}

// Range returns the record's inclusive validity range.
func (r *RawAllocationRecord) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}

// IsSubmitted reports whether an Actual record carries the terminal status.
func (r *RawAllocationRecord) IsSubmitted() bool {
	return r.IsActual() && r.Actual.Status == StatusSubmitted
}

// =============================================================================
// ACTIVITY GROUP - One Planned record with its matching Actuals
// =============================================================================

// ActivityGroup pairs one Planned record with all Actual records that
// reference it. A group with no Planned record is an orphan group.
// Invariant: at least one of Planned / Actuals is present.
type ActivityGroup struct {
	// Key is stable per group: "p:<plannedID>:<orderItemID>" for
	// Planned-derived groups, "a:<actualID>:<orderItemID>" for orphans.
	Key string

	Planned *RawAllocationRecord

	// Actuals ascending by id. Ascending-id order is the precedence rule
	// everywhere "latest wins" applies.
	Actuals []*RawAllocationRecord

	// LatestActual is the Actual with the highest id, or nil.
	LatestActual *RawAllocationRecord
}

// Anchor returns the record identity fields are copied from: the Planned
// record when present, else the latest Actual.
func (g *ActivityGroup) Anchor() *RawAllocationRecord {
	if g.Planned != nil {
		return g.Planned
	}
	return g.LatestActual
}

// =============================================================================
// DAY SESSIONS AND DAY LOGS - Per-day merged attendance
// =============================================================================

// DaySession is one check-in/check-out cycle within a date.
type DaySession struct {
	CheckIn    *GeoMark
	CheckOut   *GeoMark
	ItemsCount int
}

// DayLog is the merged attendance/progress summary for one calendar date
// within a group. Sessions accumulate additively across Actual records;
// Effort is last-writer-wins among records whose range covers the date.
type DayLog struct {
	Date     DayDate
	Sessions []DaySession

	FirstCheckIn *GeoMark // sessions[0].CheckIn
	LastCheckOut *GeoMark // from the last session that has a check-out

	// IsIncomplete is true when any session has a check-in without a
	// check-out.
	IsIncomplete bool

	// Remarks is the comma-joined concatenation of all contributing
	// remarks, in contribution order, duplicates allowed.
	Remarks string

	Effort     decimal.Decimal
	ItemsCount int // sum of session item counts
}

// =============================================================================
// NORMALIZED ACTIVITY - The UI-facing derived view
// =============================================================================

// PeriodStatus is the assignment lifecycle state.
type PeriodStatus string

const (
	PeriodPlanned    PeriodStatus = "Planned"
	PeriodInProgress PeriodStatus = "InProgress"
	PeriodCompleted  PeriodStatus = "Completed"
	PeriodPending    PeriodStatus = "Pending"
)

// TodayStatus describes today's day log in isolation.
type TodayStatus string

const (
	TodayPlanned  TodayStatus = "Planned"
	TodayActive   TodayStatus = "Active"
	TodayComplete TodayStatus = "Complete"
)

// NormalizedActivity is the full derived view for one ActivityGroup.
type NormalizedActivity struct {
	Key string

	// Identity, copied from the Planned record where one exists, else
	// from the latest Actual.
	OrderItemID  int64
	OrderItemKey string
	EmployeeID   int64
	EmployeeName string
	CustomerName string
	ProductName  string
	ProjectName  string
	ActivityName string
	ActivityID   int64
	EffortUnit   string

	// Planned bounds come from the Planned record only; Actual bounds are
	// the min/max day-log dates. Zero when absent.
	PlannedStart DayDate
	PlannedEnd   DayDate
	ActualStart  DayDate
	ActualEnd    DayDate

	DayLogs map[DayDate]*DayLog

	PeriodStatus PeriodStatus
	TodayStatus  TodayStatus

	ShowStartButton bool
	ShowEndButton   bool

	HasPendingCheckout  bool
	PendingCheckoutDate DayDate // zero when none

	TotalEffort decimal.Decimal // every Actual in the group contributes once
	TotalItems  int             // sum over day logs
}

// LogDates returns the day-log dates in ascending order.
func (a *NormalizedActivity) LogDates() []DayDate {
	dates := make([]DayDate, 0, len(a.DayLogs))
	for d := range a.DayLogs {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}
