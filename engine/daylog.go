/*
daylog.go - Merging a group's Actual records into per-day DayLogs

PURPOSE:
  A logical activity may be checked in, checked out, resumed under a new
  Actual record, and checked out again. This file merges every time
  segment of every Actual record in a group into one DayLog per calendar
  date, with two deliberately different policies:

  - Sessions accumulate ADDITIVELY: every decoded check-in/out cycle is
    preserved for audit/display, in ascending-id merge order.
  - Effort is LAST-WRITER-WINS among records whose [start, end] range
    covers the date: later records in ascending-id order overwrite.

  The overwrite-vs-accumulate asymmetry is intentional; do not unify the
  two policies.

PRECONDITION:
  The group's Actuals are already sorted ascending by id (grouper.go).
*/
package engine

// BuildDayLogs merges all time segments of a group's Actual records into
// a date-keyed DayLog map. The input order of actuals is the precedence
// order; callers pass ActivityGroup.Actuals as-is.
func BuildDayLogs(actuals []*RawAllocationRecord) map[DayDate]*DayLog {
	logs := make(map[DayDate]*DayLog)

	for _, rec := range actuals {
		if !rec.IsActual() {
			continue
		}
		recRange := rec.Range()

		for _, seg := range rec.Actual.TimeSegments {
			if seg.Date.IsZero() {
				continue
			}
			event := DecodeGeoEvent(seg.EncodedEvent)
			if event.CheckIn == nil && event.CheckOut == nil {
				continue
			}

			log, ok := logs[seg.Date]
			if !ok {
				log = &DayLog{Date: seg.Date}
				logs[seg.Date] = log
			}

			log.Sessions = append(log.Sessions, DaySession{
				CheckIn:    event.CheckIn,
				CheckOut:   event.CheckOut,
				ItemsCount: seg.ItemsCount,
			})

			appendRemarks(log, seg.Remarks, rec.Remarks)

			// The record whose span covers this date owns the
			// authoritative effort; later records overwrite.
			if recRange.Contains(seg.Date) {
				log.Effort = rec.Effort
			}
		}
	}

	for _, log := range logs {
		finalizeDayLog(log)
	}
	return logs
}

// appendRemarks adds the segment's remarks, falling back to the record's
// own remarks when the segment has none. Duplicates are allowed.
func appendRemarks(log *DayLog, segmentRemarks, recordRemarks string) {
	remarks := segmentRemarks
	if remarks == "" {
		remarks = recordRemarks
	}
	if remarks == "" {
		return
	}
	if log.Remarks == "" {
		log.Remarks = remarks
		return
	}
	log.Remarks = log.Remarks + ", " + remarks
}

// finalizeDayLog derives the summary fields from the accumulated sessions.
func finalizeDayLog(log *DayLog) {
	if len(log.Sessions) == 0 {
		return
	}

	log.FirstCheckIn = log.Sessions[0].CheckIn

	log.LastCheckOut = nil
	log.IsIncomplete = false
	log.ItemsCount = 0
	for _, s := range log.Sessions {
		if s.CheckOut != nil {
			log.LastCheckOut = s.CheckOut
		}
		if s.CheckIn != nil && s.CheckOut == nil {
			log.IsIncomplete = true
		}
		log.ItemsCount += s.ItemsCount
	}
}
