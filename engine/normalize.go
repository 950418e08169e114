/*
normalize.go - Deriving the UI-facing view of one activity group

PURPOSE:
  Takes one ActivityGroup plus its DayLogs and derives everything a detail
  screen needs: lifecycle status, today's status, pending-checkout
  detection, start/end button visibility, and totals.

STATUS MACHINE (first match wins):
  1. Completed  : any Actual in the group is Submitted
  2. InProgress : the group has at least one Actual
  3. Pending    : no Planned record, or the Planned end date is strictly
                  before today
  4. Planned    : otherwise

"TODAY":
  Every date-relative decision here is a pure function of Reconciler.Today.
  Callers compute it once per invocation (engine.Today()) so the whole run
  sees one consistent calendar day.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// RECONCILER - One invocation's fixed clock
// =============================================================================

// Reconciler derives normalized activities against a fixed calendar day.
type Reconciler struct {
	Today DayDate
}

// NewReconciler fixes "today" at construction.
func NewReconciler(today DayDate) *Reconciler {
	return &Reconciler{Today: today}
}

// Result is the full output of one engine invocation.
type Result struct {
	Activities  []*NormalizedActivity
	Diagnostics []*MalformedRecordError
}

// Reconcile runs the whole per-activity pipeline: group, build day logs,
// normalize. Output order follows group first-appearance order.
func (rc *Reconciler) Reconcile(records []*RawAllocationRecord) *Result {
	groups, diagnostics := GroupRecords(records)

	activities := make([]*NormalizedActivity, 0, len(groups))
	for _, g := range groups {
		activities = append(activities, rc.Normalize(g))
	}
	return &Result{Activities: activities, Diagnostics: diagnostics}
}

// Normalize derives the full UI-facing view of one group.
func (rc *Reconciler) Normalize(g *ActivityGroup) *NormalizedActivity {
	logs := BuildDayLogs(g.Actuals)

	a := &NormalizedActivity{
		Key:     g.Key,
		DayLogs: logs,
	}

	if anchor := g.Anchor(); anchor != nil {
		a.OrderItemID = anchor.OrderItemID
		a.OrderItemKey = anchor.OrderItemKey
		a.EmployeeID = anchor.EmployeeID
		a.EmployeeName = anchor.EmployeeName
		a.CustomerName = anchor.CustomerName
		a.ProductName = anchor.ProductName
		a.ProjectName = anchor.ProjectName
		a.ActivityName = anchor.ActivityName
		a.ActivityID = anchor.ActivityID
		a.EffortUnit = anchor.EffortUnit
	}

	if g.Planned != nil {
		a.PlannedStart = g.Planned.StartDate
		a.PlannedEnd = g.Planned.EndDate
	}

	if dates := a.LogDates(); len(dates) > 0 {
		a.ActualStart = dates[0]
		a.ActualEnd = dates[len(dates)-1]
	}

	// Every Actual contributes its effort exactly once, regardless of
	// which record won a given date's in-range overwrite.
	total := decimal.Zero
	for _, rec := range g.Actuals {
		total = total.Add(rec.Effort)
	}
	a.TotalEffort = total

	for _, log := range logs {
		a.TotalItems += log.ItemsCount
	}

	a.PeriodStatus = rc.periodStatus(g)
	a.TodayStatus = rc.todayStatus(logs)
	a.HasPendingCheckout, a.PendingCheckoutDate = rc.pendingCheckout(a)
	a.ShowStartButton, a.ShowEndButton = rc.buttons(a, logs)

	return a
}

// periodStatus evaluates the lifecycle branches in order; first match wins.
func (rc *Reconciler) periodStatus(g *ActivityGroup) PeriodStatus {
	for _, rec := range g.Actuals {
		if rec.IsSubmitted() {
			return PeriodCompleted
		}
	}
	if len(g.Actuals) > 0 {
		return PeriodInProgress
	}
	if g.Planned == nil {
		return PeriodPending
	}
	if g.Planned.EndDate.Before(rc.Today) {
		return PeriodPending
	}
	return PeriodPlanned
}

// todayStatus looks only at today's day log.
func (rc *Reconciler) todayStatus(logs map[DayDate]*DayLog) TodayStatus {
	log, ok := logs[rc.Today]
	if !ok || log.FirstCheckIn == nil {
		return TodayPlanned
	}
	if log.LastCheckOut != nil {
		return TodayComplete
	}
	return TodayActive
}

// pendingCheckout scans day logs strictly before today for an open
// session, returning the earliest such date. Today's own open session is
// not a pending checkout.
func (rc *Reconciler) pendingCheckout(a *NormalizedActivity) (bool, DayDate) {
	for _, date := range a.LogDates() {
		if !date.Before(rc.Today) {
			break
		}
		if a.DayLogs[date].IsIncomplete {
			return true, date
		}
	}
	return false, DayDate{}
}

// buttons evaluates the four mutually exclusive visibility cases in order.
func (rc *Reconciler) buttons(a *NormalizedActivity, logs map[DayDate]*DayLog) (start, end bool) {
	today, checkedInToday := logs[rc.Today]
	checkedInToday = checkedInToday && today.FirstCheckIn != nil

	switch {
	case a.HasPendingCheckout:
		// An earlier day is still open: force the end flow first.
		return false, true
	case !checkedInToday:
		return true, false
	case today.LastCheckOut == nil:
		return false, true
	default:
		return false, false
	}
}
