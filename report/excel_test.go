package report_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/allocation-engine/engine"
	"github.com/warp/allocation-engine/report"
)

func TestWriteWorkbook(t *testing.T) {
	projects := []*engine.ProjectRollup{
		{
			ActivityID:    100,
			OrderItemKey:  "OI-1",
			ActivityName:  "Stock Count",
			ProjectName:   "Plant Audit",
			CustomerName:  "Acme",
			AssignedCount: 2,
			WorkingCount:  1,
			TeamMembers: []engine.TeamMember{
				{EmployeeID: 7, EmployeeName: "Asha", IsWorking: true, Hours: decimal.NewFromInt(3)},
				{EmployeeID: 8, EmployeeName: "Ravi", Hours: decimal.NewFromInt(5)},
			},
			TotalHours: decimal.NewFromInt(8),
		},
	}
	employees := []*engine.EmployeeRollup{
		{
			EmployeeID:   7,
			EmployeeName: "Asha",
			Projects: []engine.EmployeeProject{
				{ActivityID: 100, OrderItemKey: "OI-1", ProjectName: "Plant Audit",
					ActivityName: "Stock Count", IsWorking: true, Hours: decimal.NewFromInt(3)},
			},
			TotalHours: decimal.NewFromInt(3),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteWorkbook(&buf, projects, employees))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Projects")
	assert.Contains(t, sheets, "Employees")

	name, err := f.GetCellValue("Projects", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Plant Audit", name)

	status, err := f.GetCellValue("Projects", "H2")
	require.NoError(t, err)
	assert.Equal(t, "Working", status)

	status, err = f.GetCellValue("Projects", "H3")
	require.NoError(t, err)
	assert.Equal(t, "Assigned", status)

	emp, err := f.GetCellValue("Employees", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Asha", emp)
}

func TestWriteWorkbook_EmptyRollups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Projects", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Project", header)
}
