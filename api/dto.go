/*
dto.go - Wire shapes for the allocation API

PURPOSE:
  Maps the upstream service's JSON onto engine.RawAllocationRecord and the
  engine's derived types onto response JSON. These types decouple the
  engine's in-memory model from both wire contracts.

INPUT CONTRACT:
  The backend's field names and the "Planned"/"Actual" kind discriminator
  are fixed upstream. Numeric identity fields arrive as JSON numbers but
  have been observed as strings; they are decoded through json.Number so
  a non-numeric id or backReference becomes a MalformedRecord diagnostic
  instead of a decode failure for the whole payload.

OUTPUT CONTRACT:
  All dates are emitted in the backend's token form ("DD-Mon-YYYY").
  Effort and hour sums are emitted as JSON strings to preserve decimal
  precision.

SEE ALSO:
  - handlers.go: uses these types
  - engine/types.go: the in-memory model
*/
package api

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/allocation-engine/engine"
)

// =============================================================================
// INPUT - Backend record shape
// =============================================================================

// FlexNumber accepts a JSON number or a JSON string. The backend has
// been observed sending identity fields both ways; a non-numeric value
// must become a per-record diagnostic, not a payload-wide decode error.
type FlexNumber string

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "null" {
		s = ""
	}
	*n = FlexNumber(s)
	return nil
}

func (n FlexNumber) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// RawRecordDTO is one record as the upstream service sends it.
type RawRecordDTO struct {
	Kind          string     `json:"kind"`
	ID            FlexNumber `json:"id"`
	BackReference FlexNumber `json:"backReference,omitempty"`
	OrderItemID   json.Number `json:"orderItemId"`
	OrderItemKey  string      `json:"orderItemKey"`
	EmployeeID    json.Number `json:"employeeId"`
	EmployeeName  string      `json:"employeeName"`
	CustomerName  string      `json:"customerName"`
	ProductName   string      `json:"productName"`
	ProjectName   string      `json:"projectName"`
	ActivityName  string      `json:"activityName"`
	ActivityID    json.Number `json:"activityId"`
	StartDate     string      `json:"startDate"`
	EndDate       string      `json:"endDate"`
	Effort        json.Number `json:"effort"`
	EffortUnit    *string     `json:"effortUnit"`
	ItemsCount    int         `json:"itemsCount"`
	Remarks       *string     `json:"remarks"`
	Status        string      `json:"status"`

	TimeSegments []TimeSegmentDTO `json:"timeSegments,omitempty"`
}

// TimeSegmentDTO is one logged segment as the backend sends it.
type TimeSegmentDTO struct {
	Date         string `json:"date"`
	EncodedEvent string `json:"encodedEvent"`
	Remarks      string `json:"remarks"`
	ItemsCount   int    `json:"itemsCount"`
}

// ToRecord maps the wire shape onto the engine's tagged union. A
// non-numeric id or backReference yields a MalformedRecordError; every
// other malformed field degrades to its zero value.
func (d *RawRecordDTO) ToRecord(index int) (*engine.RawAllocationRecord, *engine.MalformedRecordError) {
	id, err := d.ID.Int64()
	if err != nil || d.ID == "" {
		return nil, &engine.MalformedRecordError{
			Index: index, Field: "id", Reason: "non-numeric or missing",
		}
	}

	r := &engine.RawAllocationRecord{
		Kind:         engine.RecordKind(d.Kind),
		ID:           id,
		OrderItemKey: d.OrderItemKey,
		EmployeeName: d.EmployeeName,
		CustomerName: d.CustomerName,
		ProductName:  d.ProductName,
		ProjectName:  d.ProjectName,
		ActivityName: d.ActivityName,
	}
	r.OrderItemID, _ = d.OrderItemID.Int64()
	r.EmployeeID, _ = d.EmployeeID.Int64()
	r.ActivityID, _ = d.ActivityID.Int64()
	r.StartDate, _ = engine.ParseTokenDate(d.StartDate)
	r.EndDate, _ = engine.ParseTokenDate(d.EndDate)
	if v, err := decimal.NewFromString(d.Effort.String()); err == nil {
		r.Effort = v
	}
	if d.EffortUnit != nil {
		r.EffortUnit = *d.EffortUnit
	}
	if d.Remarks != nil {
		r.Remarks = *d.Remarks
	}

	if r.Kind == engine.KindActual {
		backRef, err := d.BackReference.Int64()
		if err != nil && d.BackReference != "" {
			return nil, &engine.MalformedRecordError{
				Index: index, ID: id, Field: "backReference", Reason: "non-numeric",
			}
		}
		actual := &engine.ActualFields{
			BackReference: backRef,
			ItemsCount:    d.ItemsCount,
			Status:        d.Status,
		}
		for _, seg := range d.TimeSegments {
			date, _ := engine.ParseTokenDate(seg.Date)
			actual.TimeSegments = append(actual.TimeSegments, engine.TimeSegmentRecord{
				Date:         date,
				EncodedEvent: seg.EncodedEvent,
				Remarks:      seg.Remarks,
				ItemsCount:   seg.ItemsCount,
			})
		}
		r.Actual = actual
	}

	return r, nil
}

// decodeRecords maps a wire payload onto engine records, collecting
// diagnostics for records the mapping refuses.
func decodeRecords(dtos []RawRecordDTO) ([]*engine.RawAllocationRecord, []DiagnosticDTO) {
	var (
		records     []*engine.RawAllocationRecord
		diagnostics []DiagnosticDTO
	)
	for i, d := range dtos {
		rec, diag := d.ToRecord(i)
		if diag != nil {
			diagnostics = append(diagnostics, toDiagnosticDTO(diag))
			continue
		}
		records = append(records, rec)
	}
	return records, diagnostics
}

// =============================================================================
// OUTPUT - Derived views
// =============================================================================

// DiagnosticDTO reports one skipped record.
type DiagnosticDTO struct {
	Index  int    `json:"index"`
	ID     int64  `json:"id,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// GeoMarkDTO is one side of a check-in/check-out cycle.
type GeoMarkDTO struct {
	Time string   `json:"time"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// SessionDTO is one check-in/check-out cycle within a day.
type SessionDTO struct {
	CheckIn    *GeoMarkDTO `json:"check_in,omitempty"`
	CheckOut   *GeoMarkDTO `json:"check_out,omitempty"`
	ItemsCount int         `json:"items_count"`
}

// DayLogDTO is the merged attendance summary for one date.
type DayLogDTO struct {
	Date         string       `json:"date"`
	Sessions     []SessionDTO `json:"sessions"`
	FirstCheckIn *GeoMarkDTO  `json:"first_check_in,omitempty"`
	LastCheckOut *GeoMarkDTO  `json:"last_check_out,omitempty"`
	IsIncomplete bool         `json:"is_incomplete"`
	Remarks      string       `json:"remarks,omitempty"`
	Effort       string       `json:"effort"`
	ItemsCount   int          `json:"items_count"`
}

// ActivityDTO is the full derived view for one assignment.
type ActivityDTO struct {
	Key          string `json:"key"`
	OrderItemID  int64  `json:"order_item_id"`
	OrderItemKey string `json:"order_item_key"`
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	CustomerName string `json:"customer_name,omitempty"`
	ProductName  string `json:"product_name,omitempty"`
	ProjectName  string `json:"project_name,omitempty"`
	ActivityName string `json:"activity_name,omitempty"`
	ActivityID   int64  `json:"activity_id"`
	EffortUnit   string `json:"effort_unit,omitempty"`

	PlannedStart string `json:"planned_start,omitempty"`
	PlannedEnd   string `json:"planned_end,omitempty"`
	ActualStart  string `json:"actual_start,omitempty"`
	ActualEnd    string `json:"actual_end,omitempty"`

	DayLogs []DayLogDTO `json:"day_logs"`

	PeriodStatus string `json:"period_status"`
	TodayStatus  string `json:"today_status"`

	ShowStartButton bool `json:"show_start_button"`
	ShowEndButton   bool `json:"show_end_button"`

	HasPendingCheckout  bool   `json:"has_pending_checkout"`
	PendingCheckoutDate string `json:"pending_checkout_date,omitempty"`

	TotalEffort string `json:"total_effort"`
	TotalItems  int    `json:"total_items"`
}

// TeamMemberDTO is one employee inside a project rollup.
type TeamMemberDTO struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	IsWorking    bool   `json:"is_working"`
	Hours        string `json:"hours"`
}

// ProjectRollupDTO is the dashboard view of one project.
type ProjectRollupDTO struct {
	ActivityID    int64           `json:"activity_id"`
	OrderItemKey  string          `json:"order_item_key"`
	ActivityName  string          `json:"activity_name,omitempty"`
	ProjectName   string          `json:"project_name,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	AssignedCount int             `json:"assigned_count"`
	WorkingCount  int             `json:"working_count"`
	TeamMembers   []TeamMemberDTO `json:"team_members"`
	TotalHours    string          `json:"total_hours"`
}

// EmployeeProjectDTO is one distinct project inside an employee rollup.
type EmployeeProjectDTO struct {
	ActivityID   int64  `json:"activity_id"`
	OrderItemKey string `json:"order_item_key"`
	ProjectName  string `json:"project_name,omitempty"`
	ActivityName string `json:"activity_name,omitempty"`
	IsWorking    bool   `json:"is_working"`
	Hours        string `json:"hours"`
}

// EmployeeRollupDTO is the dashboard view of one employee.
type EmployeeRollupDTO struct {
	EmployeeID   int64                `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Projects     []EmployeeProjectDTO `json:"projects"`
	TotalHours   string               `json:"total_hours"`
}

// ReconcileResponse is the stateless reconcile endpoint's payload.
type ReconcileResponse struct {
	Activities  []ActivityDTO       `json:"activities"`
	Projects    []ProjectRollupDTO  `json:"projects"`
	Employees   []EmployeeRollupDTO `json:"employees"`
	Diagnostics []DiagnosticDTO     `json:"diagnostics,omitempty"`
}

// IngestResponse reports a snapshot ingest.
type IngestResponse struct {
	Stored      int             `json:"stored"`
	Diagnostics []DiagnosticDTO `json:"diagnostics,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toDiagnosticDTO(d *engine.MalformedRecordError) DiagnosticDTO {
	return DiagnosticDTO{Index: d.Index, ID: d.ID, Field: d.Field, Reason: d.Reason}
}

func toGeoMarkDTO(m *engine.GeoMark) *GeoMarkDTO {
	if m == nil {
		return nil
	}
	return &GeoMarkDTO{Time: m.Time, Lat: m.Lat, Lng: m.Lng}
}

func toDayLogDTO(log *engine.DayLog) DayLogDTO {
	dto := DayLogDTO{
		Date:         log.Date.Token(),
		FirstCheckIn: toGeoMarkDTO(log.FirstCheckIn),
		LastCheckOut: toGeoMarkDTO(log.LastCheckOut),
		IsIncomplete: log.IsIncomplete,
		Remarks:      log.Remarks,
		Effort:       log.Effort.String(),
		ItemsCount:   log.ItemsCount,
	}
	for _, s := range log.Sessions {
		dto.Sessions = append(dto.Sessions, SessionDTO{
			CheckIn:    toGeoMarkDTO(s.CheckIn),
			CheckOut:   toGeoMarkDTO(s.CheckOut),
			ItemsCount: s.ItemsCount,
		})
	}
	return dto
}

func toActivityDTO(a *engine.NormalizedActivity) ActivityDTO {
	dto := ActivityDTO{
		Key:                 a.Key,
		OrderItemID:         a.OrderItemID,
		OrderItemKey:        a.OrderItemKey,
		EmployeeID:          a.EmployeeID,
		EmployeeName:        a.EmployeeName,
		CustomerName:        a.CustomerName,
		ProductName:         a.ProductName,
		ProjectName:         a.ProjectName,
		ActivityName:        a.ActivityName,
		ActivityID:          a.ActivityID,
		EffortUnit:          a.EffortUnit,
		PlannedStart:        a.PlannedStart.Token(),
		PlannedEnd:          a.PlannedEnd.Token(),
		ActualStart:         a.ActualStart.Token(),
		ActualEnd:           a.ActualEnd.Token(),
		PeriodStatus:        string(a.PeriodStatus),
		TodayStatus:         string(a.TodayStatus),
		ShowStartButton:     a.ShowStartButton,
		ShowEndButton:       a.ShowEndButton,
		HasPendingCheckout:  a.HasPendingCheckout,
		PendingCheckoutDate: a.PendingCheckoutDate.Token(),
		TotalEffort:         a.TotalEffort.String(),
		TotalItems:          a.TotalItems,
	}
	for _, date := range a.LogDates() {
		dto.DayLogs = append(dto.DayLogs, toDayLogDTO(a.DayLogs[date]))
	}
	return dto
}

func toProjectRollupDTO(p *engine.ProjectRollup) ProjectRollupDTO {
	dto := ProjectRollupDTO{
		ActivityID:    p.ActivityID,
		OrderItemKey:  p.OrderItemKey,
		ActivityName:  p.ActivityName,
		ProjectName:   p.ProjectName,
		CustomerName:  p.CustomerName,
		AssignedCount: p.AssignedCount,
		WorkingCount:  p.WorkingCount,
		TotalHours:    p.TotalHours.String(),
	}
	for _, m := range p.TeamMembers {
		dto.TeamMembers = append(dto.TeamMembers, TeamMemberDTO{
			EmployeeID:   m.EmployeeID,
			EmployeeName: m.EmployeeName,
			IsWorking:    m.IsWorking,
			Hours:        m.Hours.String(),
		})
	}
	return dto
}

func toEmployeeRollupDTO(e *engine.EmployeeRollup) EmployeeRollupDTO {
	dto := EmployeeRollupDTO{
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		TotalHours:   e.TotalHours.String(),
	}
	for _, p := range e.Projects {
		dto.Projects = append(dto.Projects, EmployeeProjectDTO{
			ActivityID:   p.ActivityID,
			OrderItemKey: p.OrderItemKey,
			ProjectName:  p.ProjectName,
			ActivityName: p.ActivityName,
			IsWorking:    p.IsWorking,
			Hours:        p.Hours.String(),
		})
	}
	return dto
}
