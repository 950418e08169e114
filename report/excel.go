// Package report renders the dashboard rollups as an XLSX workbook for
// managers who want the allocation picture outside the app.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/allocation-engine/engine"
)

const (
	projectSheet  = "Projects"
	employeeSheet = "Employees"
)

// WriteWorkbook writes both rollup views into one workbook: a Projects
// sheet (one row per team member, grouped by project) and an Employees
// sheet (one row per distinct project assignment).
func WriteWorkbook(w io.Writer, projects []*engine.ProjectRollup, employees []*engine.EmployeeRollup) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeProjects(f, projects); err != nil {
		return err
	}
	if err := writeEmployees(f, employees); err != nil {
		return err
	}

	// Drop excelize's default sheet so Projects opens first.
	f.DeleteSheet("Sheet1")

	return f.Write(w)
}

func writeProjects(f *excelize.File, projects []*engine.ProjectRollup) error {
	if _, err := f.NewSheet(projectSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", projectSheet, err)
	}

	header := []any{"Project", "Activity", "Customer", "Order Item",
		"Assigned", "Working", "Employee", "Status", "Hours"}
	if err := setRow(f, projectSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, p := range projects {
		for _, m := range p.TeamMembers {
			status := "Assigned"
			if m.IsWorking {
				status = "Working"
			}
			values := []any{p.ProjectName, p.ActivityName, p.CustomerName,
				p.OrderItemKey, p.AssignedCount, p.WorkingCount,
				m.EmployeeName, status, m.Hours.InexactFloat64()}
			if err := setRow(f, projectSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeEmployees(f *excelize.File, employees []*engine.EmployeeRollup) error {
	if _, err := f.NewSheet(employeeSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", employeeSheet, err)
	}

	header := []any{"Employee", "Project", "Activity", "Order Item",
		"Status", "Hours", "Total Hours"}
	if err := setRow(f, employeeSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, e := range employees {
		for _, p := range e.Projects {
			status := "Assigned"
			if p.IsWorking {
				status = "Working"
			}
			values := []any{e.EmployeeName, p.ProjectName, p.ActivityName,
				p.OrderItemKey, status, p.Hours.InexactFloat64(),
				e.TotalHours.InexactFloat64()}
			if err := setRow(f, employeeSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
