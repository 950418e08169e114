package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/allocation-engine/engine"
)

func TestAggregate_ActualWinsOverPlanned(t *testing.T) {
	// GIVEN: A Planned and an Actual record for the same
	//        (activity, order item, employee) key
	// WHEN: Aggregating
	// THEN: The employee shows as working and the Actual's data displays

	p := planned(10, 5, date(1), date(5))
	p.Effort = decimal.NewFromInt(5)
	a := actual(20, 10, 5)
	a.Effort = decimal.NewFromInt(2)

	projects, employees, diags := engine.Aggregate([]*engine.RawAllocationRecord{p, a})

	require.Empty(t, diags)
	require.Len(t, projects, 1)
	require.Len(t, employees, 1)

	proj := projects[0]
	assert.Equal(t, 1, proj.AssignedCount)
	assert.Equal(t, 1, proj.WorkingCount)
	require.Len(t, proj.TeamMembers, 1)
	assert.True(t, proj.TeamMembers[0].IsWorking)
	assert.True(t, proj.TeamMembers[0].Hours.Equal(decimal.NewFromInt(2)),
		"actual effort should replace the planned effort, got %s", proj.TeamMembers[0].Hours)
}

func TestAggregate_SegmentsUnionAcrossSameKeyActuals(t *testing.T) {
	// Multiple same-key Actuals: segments concatenate, hours add up.
	a1 := actual(20, 10, 5, segment(2, "I|09:00O|12:00"))
	a1.Effort = decimal.NewFromInt(1)
	a2 := actual(21, 10, 5, segment(3, "I|09:00O|12:00"), segment(4, "I|09:00"))
	a2.Effort = decimal.NewFromInt(2)

	projects, _, _ := engine.Aggregate([]*engine.RawAllocationRecord{a1, a2})

	require.Len(t, projects, 1)
	member := projects[0].TeamMembers[0]
	assert.Len(t, member.Segments, 3, "segments are a plain union, not precedence-merged")
	assert.True(t, member.Hours.Equal(decimal.NewFromInt(3)))
}

func TestAggregate_PlannedOnlyEmployeeNotWorking(t *testing.T) {
	projects, _, _ := engine.Aggregate([]*engine.RawAllocationRecord{
		planned(10, 5, date(1), date(5)),
	})

	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0].AssignedCount)
	assert.Equal(t, 0, projects[0].WorkingCount)
	assert.False(t, projects[0].TeamMembers[0].IsWorking)
}

func TestAggregate_ProjectCountsAcrossEmployees(t *testing.T) {
	p1 := planned(10, 5, date(1), date(5))
	p2 := planned(11, 5, date(1), date(5))
	p2.EmployeeID, p2.EmployeeName = 8, "Ravi"
	a := actual(20, 11, 5)
	a.EmployeeID, a.EmployeeName = 8, "Ravi"

	projects, employees, _ := engine.Aggregate([]*engine.RawAllocationRecord{p1, p2, a})

	require.Len(t, projects, 1, "same activity+order item rolls into one project")
	assert.Equal(t, 2, projects[0].AssignedCount)
	assert.Equal(t, 1, projects[0].WorkingCount)
	assert.Len(t, employees, 2)
}

func TestAggregate_EmployeeProjectsDeduplicated(t *testing.T) {
	// GIVEN: One employee on two distinct projects, one of them twice
	// THEN: The employee rollup lists each (activity, order item) once

	p1 := planned(10, 5, date(1), date(5))
	a1 := actual(20, 10, 5)
	p2 := planned(11, 6, date(1), date(5))
	p2.ActivityID = 200
	p2.OrderItemKey = "OI-OTHER"

	_, employees, _ := engine.Aggregate([]*engine.RawAllocationRecord{p1, a1, p2})

	require.Len(t, employees, 1)
	assert.Len(t, employees[0].Projects, 2)
}

func TestAggregate_TotalHours(t *testing.T) {
	p1 := planned(10, 5, date(1), date(5))
	p1.Effort = decimal.NewFromFloat(1.5)
	p2 := planned(11, 6, date(1), date(5))
	p2.ActivityID = 200
	p2.OrderItemKey = "OI-OTHER"
	p2.Effort = decimal.NewFromInt(2)

	_, employees, _ := engine.Aggregate([]*engine.RawAllocationRecord{p1, p2})

	require.Len(t, employees, 1)
	assert.True(t, employees[0].TotalHours.Equal(decimal.NewFromFloat(3.5)),
		"total hours = %s, want 3.5", employees[0].TotalHours)
}

func TestAggregate_MalformedRecordsReported(t *testing.T) {
	bad := planned(0, 5, date(1), date(5))

	projects, _, diags := engine.Aggregate([]*engine.RawAllocationRecord{
		bad, planned(10, 5, date(1), date(5)),
	})

	require.Len(t, diags, 1)
	assert.Equal(t, "id", diags[0].Field)
	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0].AssignedCount)
}
