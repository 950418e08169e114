package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/allocation-engine/engine"
)

func TestBuildDayLogs_SingleOpenSession(t *testing.T) {
	// GIVEN: One actual with a check-in-only segment
	// WHEN: Building day logs
	// THEN: The date's log has a first check-in and is incomplete

	rec := actual(20, 10, 5, segment(2, "I|09:00|12.9|77.5"))

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{rec})

	require.Len(t, logs, 1)
	log := logs[date(2)]
	require.NotNil(t, log)
	require.NotNil(t, log.FirstCheckIn)
	assert.Equal(t, "09:00", log.FirstCheckIn.Time)
	assert.Nil(t, log.LastCheckOut)
	assert.True(t, log.IsIncomplete)
}

func TestBuildDayLogs_SessionsAccumulateAcrossRecords(t *testing.T) {
	// A checked-out day resumed under a later actual keeps both sessions.
	first := actual(20, 10, 5, segment(2, "I|09:00|12.9|77.5O|12:00|12.9|77.5"))
	second := actual(21, 10, 5, segment(2, "I|13:00|12.9|77.5O|17:00|12.9|77.5"))

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{first, second})

	log := logs[date(2)]
	require.NotNil(t, log)
	require.Len(t, log.Sessions, 2)
	assert.Equal(t, "09:00", log.FirstCheckIn.Time)
	assert.Equal(t, "17:00", log.LastCheckOut.Time)
	assert.False(t, log.IsIncomplete)
}

func TestBuildDayLogs_LastCheckOutFromLastSessionWithOne(t *testing.T) {
	// Second session is open: last check-out stays from session one, and
	// the day is incomplete.
	first := actual(20, 10, 5, segment(2, "I|09:00|12.9|77.5O|12:00|12.9|77.5"))
	second := actual(21, 10, 5, segment(2, "I|13:00|12.9|77.5"))

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{first, second})

	log := logs[date(2)]
	require.NotNil(t, log.LastCheckOut)
	assert.Equal(t, "12:00", log.LastCheckOut.Time)
	assert.True(t, log.IsIncomplete)
}

func TestBuildDayLogs_EffortLastWriterWins(t *testing.T) {
	// GIVEN: Two actuals whose ranges both cover the date
	// WHEN: Merging in ascending-id order
	// THEN: The later record's effort owns the date

	first := actual(20, 10, 5, segment(2, "I|09:00O|12:00"))
	first.Effort = decimal.NewFromInt(3)
	second := actual(21, 10, 5, segment(2, "I|13:00O|17:00"))
	second.Effort = decimal.NewFromInt(8)

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{first, second})

	assert.True(t, logs[date(2)].Effort.Equal(decimal.NewFromInt(8)),
		"effort = %s, want 8", logs[date(2)].Effort)
}

func TestBuildDayLogs_OutOfRangeRecordDoesNotOwnEffort(t *testing.T) {
	// Segment date outside the record's own span: session is kept, but
	// the record does not set the date's effort.
	rec := actual(20, 10, 5, segment(9, "I|09:00O|12:00"))
	rec.StartDate, rec.EndDate = date(1), date(5)
	rec.Effort = decimal.NewFromInt(4)

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{rec})

	log := logs[date(9)]
	require.NotNil(t, log, "session must still be recorded")
	assert.True(t, log.Effort.IsZero(), "effort = %s, want 0", log.Effort)
}

func TestBuildDayLogs_ItemsCountSumsSessions(t *testing.T) {
	s1 := segment(2, "I|09:00O|12:00")
	s1.ItemsCount = 10
	s2 := segment(2, "I|13:00O|17:00")
	s2.ItemsCount = 5

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{actual(20, 10, 5, s1, s2)})

	log := logs[date(2)]
	assert.Equal(t, 15, log.ItemsCount)

	sum := 0
	for _, s := range log.Sessions {
		sum += s.ItemsCount
	}
	assert.Equal(t, sum, log.ItemsCount, "items count must equal the session sum")
}

func TestBuildDayLogs_RemarksFallBackToRecord(t *testing.T) {
	// Segment remarks win; empty segment remarks fall back to the record's.
	withOwn := segment(2, "I|09:00O|12:00")
	withOwn.Remarks = "shelf A done"
	without := segment(2, "I|13:00O|17:00")

	rec := actual(20, 10, 5, withOwn, without)
	rec.Remarks = "resumed after lunch"

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{rec})

	assert.Equal(t, "shelf A done, resumed after lunch", logs[date(2)].Remarks)
}

func TestBuildDayLogs_SegmentWithoutEventIsIgnored(t *testing.T) {
	rec := actual(20, 10, 5,
		segment(2, ""),
		segment(3, "I|09:00|12.9|77.5"),
	)

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{rec})

	assert.Len(t, logs, 1)
	assert.Nil(t, logs[date(2)])
	assert.NotNil(t, logs[date(3)])
}

func TestBuildDayLogs_MultipleDates(t *testing.T) {
	rec := actual(20, 10, 5,
		segment(2, "I|09:00O|17:00"),
		segment(3, "I|09:30"),
	)

	logs := engine.BuildDayLogs([]*engine.RawAllocationRecord{rec})

	require.Len(t, logs, 2)
	assert.False(t, logs[date(2)].IsIncomplete)
	assert.True(t, logs[date(3)].IsIncomplete)
}
