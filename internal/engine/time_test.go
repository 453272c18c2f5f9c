package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the4estate/t4e/internal/calendar"
)

func TestTimeServiceAdvanceSegmentRaisesSignals(t *testing.T) {
	hub := NewHub()
	ts := NewTimeService(hub, at(1, calendar.Monday, calendar.Morning), discardLogger())

	var segs, days, weeks []calendar.Date
	hub.OnSegmentAdvanced(func(d calendar.Date) { segs = append(segs, d) })
	hub.OnDayAdvanced(func(d calendar.Date) { days = append(days, d) })
	hub.OnWeekAdvanced(func(d calendar.Date) { weeks = append(weeks, d) })

	ts.AdvanceSegment()
	require.Equal(t, at(1, calendar.Monday, calendar.Afternoon), ts.Current())
	assert.Len(t, segs, 1)
	assert.Empty(t, days)
	assert.Empty(t, weeks)
}

func TestTimeServiceDayRollRaisesDayAdvanced(t *testing.T) {
	hub := NewHub()
	ts := NewTimeService(hub, at(1, calendar.Monday, calendar.Night), discardLogger())

	var days []calendar.Date
	hub.OnDayAdvanced(func(d calendar.Date) { days = append(days, d) })

	ts.AdvanceSegment()
	require.Equal(t, at(1, calendar.Tuesday, calendar.Morning), ts.Current())
	require.Len(t, days, 1)
	assert.Equal(t, calendar.Tuesday, days[0].Day)
}

func TestTimeServiceWeekRollRaisesAllThree(t *testing.T) {
	hub := NewHub()
	ts := NewTimeService(hub, at(1, calendar.Sunday, calendar.Night), discardLogger())

	var segs, days, weeks int
	hub.OnSegmentAdvanced(func(calendar.Date) { segs++ })
	hub.OnDayAdvanced(func(calendar.Date) { days++ })
	hub.OnWeekAdvanced(func(calendar.Date) { weeks++ })

	ts.AdvanceSegment()
	assert.Equal(t, at(2, calendar.Monday, calendar.Morning), ts.Current())
	assert.Equal(t, 1, segs)
	assert.Equal(t, 1, days)
	assert.Equal(t, 1, weeks)
}

func TestTimeServiceAdvanceDayTicksEverySegment(t *testing.T) {
	hub := NewHub()
	ts := NewTimeService(hub, at(1, calendar.Wednesday, calendar.Morning), discardLogger())

	var segs []calendar.Date
	hub.OnSegmentAdvanced(func(d calendar.Date) { segs = append(segs, d) })

	ts.AdvanceDay()
	require.Len(t, segs, calendar.SegmentsPerDay, "a day advance is four observable ticks")
	assert.Equal(t, at(1, calendar.Thursday, calendar.Morning), ts.Current())

	// every intermediate slot appeared, in order
	want := at(1, calendar.Wednesday, calendar.Morning)
	for _, got := range segs {
		want = want.NextSegment()
		assert.Equal(t, want, got)
	}
}

func TestTimeServiceAdvanceWeekTicksTwentyEight(t *testing.T) {
	hub := NewHub()
	ts := NewTimeService(hub, at(1, calendar.Monday, calendar.Morning), discardLogger())

	var segs, days, weeks int
	hub.OnSegmentAdvanced(func(calendar.Date) { segs++ })
	hub.OnDayAdvanced(func(calendar.Date) { days++ })
	hub.OnWeekAdvanced(func(calendar.Date) { weeks++ })

	ts.AdvanceWeek()
	assert.Equal(t, calendar.SegmentsPerDay*calendar.DaysPerWeek, segs)
	assert.Equal(t, calendar.DaysPerWeek, days)
	assert.Equal(t, 1, weeks)
	assert.Equal(t, at(2, calendar.Monday, calendar.Morning), ts.Current())
}

func TestTimeServiceYearRoll(t *testing.T) {
	hub := NewHub()
	start := calendar.Date{Year: 1, Week: calendar.WeeksPerYear, Day: calendar.Sunday, Segment: calendar.Night}
	ts := NewTimeService(hub, start, discardLogger())

	var weeks int
	hub.OnWeekAdvanced(func(calendar.Date) { weeks++ })

	ts.AdvanceSegment()
	assert.Equal(t, calendar.Date{Year: 2, Week: 1, Day: calendar.Monday, Segment: calendar.Morning}, ts.Current())
	assert.Equal(t, 1, weeks, "year roll is also a week roll")
}
