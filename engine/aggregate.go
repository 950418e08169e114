/*
aggregate.go - Dashboard rollups over the same raw records

PURPOSE:
  An independent second view for manager dashboards. Unlike the
  per-activity pipeline (grouper/daylog/normalize), this grouping is keyed
  by (activityID, orderItemKey, employeeID) and uses a simpler merge rule:
  an Actual record wins over a Planned record for display, and the time
  segments of multiple same-key Actuals are concatenated as a plain union
  rather than precedence-merged.

OUTPUTS:
  ProjectRollup  : one per activityID+orderItemKey: assigned/working
                   employee counts, the team member list, summed hours
  EmployeeRollup : one per employee: distinct projects (deduplicated by
                   activityID+orderItemKey), summed hours
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLLUP TYPES
// =============================================================================

// TeamMember is one employee's entry within a ProjectRollup.
type TeamMember struct {
	EmployeeID   int64
	EmployeeName string
	IsWorking    bool
	Hours        decimal.Decimal
	Segments     []TimeSegmentRecord // union across same-key Actuals
}

// ProjectRollup accumulates one project's assignment picture.
type ProjectRollup struct {
	ActivityID   int64
	OrderItemKey string
	ActivityName string
	ProjectName  string
	CustomerName string
	ProductName  string

	AssignedCount int
	WorkingCount  int
	TeamMembers   []TeamMember
	TotalHours    decimal.Decimal
}

// EmployeeProject is one distinct project within an EmployeeRollup.
type EmployeeProject struct {
	ActivityID   int64
	OrderItemKey string
	ProjectName  string
	ActivityName string
	CustomerName string
	IsWorking    bool
	Hours        decimal.Decimal
}

// EmployeeRollup accumulates one employee's project list.
type EmployeeRollup struct {
	EmployeeID   int64
	EmployeeName string
	Projects     []EmployeeProject
	TotalHours   decimal.Decimal
}

// =============================================================================
// AGGREGATION
// =============================================================================

// allocationEntry is the merged state for one (activity, order item,
// employee) key.
type allocationEntry struct {
	display   *RawAllocationRecord // Actual wins over Planned
	isWorking bool
	hours     decimal.Decimal
	segments  []TimeSegmentRecord
}

// Aggregate builds both rollup views. Output order follows key
// first-appearance order in the input, so repeated runs over the same
// snapshot produce identical output. Malformed records are skipped with
// diagnostics, matching the per-activity pipeline.
func Aggregate(records []*RawAllocationRecord) ([]*ProjectRollup, []*EmployeeRollup, []*MalformedRecordError) {
	var (
		order       []string
		entries     = make(map[string]*allocationEntry)
		diagnostics []*MalformedRecordError
	)

	for i, r := range records {
		if diag := validateRecord(i, r); diag != nil {
			diagnostics = append(diagnostics, diag)
			continue
		}

		key := fmt.Sprintf("%d:%s:%d", r.ActivityID, r.OrderItemKey, r.EmployeeID)
		e, ok := entries[key]
		if !ok {
			e = &allocationEntry{hours: decimal.Zero}
			entries[key] = e
			order = append(order, key)
		}

		switch r.Kind {
		case KindActual:
			if !e.isWorking {
				// First Actual for the key: its data replaces any
				// Planned display, as does its effort.
				e.display = r
				e.isWorking = true
				e.hours = decimal.Zero
			}
			e.hours = e.hours.Add(r.Effort)
			e.segments = append(e.segments, r.Actual.TimeSegments...)
		case KindPlanned:
			if e.display == nil {
				e.display = r
				e.hours = r.Effort
			}
		}
	}

	return projectRollups(order, entries), employeeRollups(order, entries), diagnostics
}

func projectRollups(order []string, entries map[string]*allocationEntry) []*ProjectRollup {
	var (
		rollups []*ProjectRollup
		byKey   = make(map[string]*ProjectRollup)
	)

	for _, key := range order {
		e := entries[key]
		rec := e.display

		pk := fmt.Sprintf("%d:%s", rec.ActivityID, rec.OrderItemKey)
		p, ok := byKey[pk]
		if !ok {
			p = &ProjectRollup{
				ActivityID:   rec.ActivityID,
				OrderItemKey: rec.OrderItemKey,
				ActivityName: rec.ActivityName,
				ProjectName:  rec.ProjectName,
				CustomerName: rec.CustomerName,
				ProductName:  rec.ProductName,
				TotalHours:   decimal.Zero,
			}
			byKey[pk] = p
			rollups = append(rollups, p)
		}

		p.AssignedCount++
		if e.isWorking {
			p.WorkingCount++
		}
		p.TeamMembers = append(p.TeamMembers, TeamMember{
			EmployeeID:   rec.EmployeeID,
			EmployeeName: rec.EmployeeName,
			IsWorking:    e.isWorking,
			Hours:        e.hours,
			Segments:     e.segments,
		})
		p.TotalHours = p.TotalHours.Add(e.hours)
	}
	return rollups
}

func employeeRollups(order []string, entries map[string]*allocationEntry) []*EmployeeRollup {
	var (
		rollups []*EmployeeRollup
		byID    = make(map[int64]*EmployeeRollup)
		seen    = make(map[string]bool) // employee + project dedup
	)

	for _, key := range order {
		e := entries[key]
		rec := e.display

		r, ok := byID[rec.EmployeeID]
		if !ok {
			r = &EmployeeRollup{
				EmployeeID:   rec.EmployeeID,
				EmployeeName: rec.EmployeeName,
				TotalHours:   decimal.Zero,
			}
			byID[rec.EmployeeID] = r
			rollups = append(rollups, r)
		}

		dedup := fmt.Sprintf("%d:%d:%s", rec.EmployeeID, rec.ActivityID, rec.OrderItemKey)
		if seen[dedup] {
			continue
		}
		seen[dedup] = true

		r.Projects = append(r.Projects, EmployeeProject{
			ActivityID:   rec.ActivityID,
			OrderItemKey: rec.OrderItemKey,
			ProjectName:  rec.ProjectName,
			ActivityName: rec.ActivityName,
			CustomerName: rec.CustomerName,
			IsWorking:    e.isWorking,
			Hours:        e.hours,
		})
		r.TotalHours = r.TotalHours.Add(e.hours)
	}
	return rollups
}
