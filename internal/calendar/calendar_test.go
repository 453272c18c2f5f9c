package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_NextSegment_WithinDay(t *testing.T) {
	d := NewDate(1850, 1, Monday, Morning)

	d = d.NextSegment()
	assert.Equal(t, NewDate(1850, 1, Monday, Afternoon), d)

	d = d.NextSegment()
	assert.Equal(t, NewDate(1850, 1, Monday, Evening), d)

	d = d.NextSegment()
	assert.Equal(t, NewDate(1850, 1, Monday, Night), d)
}

func TestDate_NextSegment_RollsDay(t *testing.T) {
	d := NewDate(1850, 1, Monday, Night)
	assert.Equal(t, NewDate(1850, 1, Tuesday, Morning), d.NextSegment())
}

func TestDate_NextSegment_RollsWeek(t *testing.T) {
	d := NewDate(1850, 1, Sunday, Night)
	assert.Equal(t, NewDate(1850, 2, Monday, Morning), d.NextSegment())
}

func TestDate_NextSegment_RollsYear(t *testing.T) {
	d := NewDate(1850, 52, Sunday, Night)
	assert.Equal(t, NewDate(1851, 1, Monday, Morning), d.NextSegment())
}

func TestDate_NextSegment_NeverSkipsSlots(t *testing.T) {
	// A full week is exactly 28 distinct slots, each reached once.
	d := NewDate(1850, 1, Monday, Morning)
	seen := map[Date]bool{d: true}

	for i := 0; i < SegmentsPerDay*DaysPerWeek; i++ {
		next := d.NextSegment()
		assert.False(t, seen[next], "slot %v visited twice", next)
		assert.Equal(t, 1, next.Compare(d), "next slot must be strictly later")
		seen[next] = true
		d = next
	}

	assert.Equal(t, NewDate(1850, 2, Monday, Morning), d)
}

func TestDate_Compare_Lexicographic(t *testing.T) {
	base := NewDate(1850, 10, Wednesday, Afternoon)

	cases := []struct {
		name  string
		other Date
		want  int
	}{
		{"equal", base, 0},
		{"earlier year", NewDate(1849, 52, Sunday, Night), 1},
		{"later year", NewDate(1851, 1, Monday, Morning), -1},
		{"earlier week", NewDate(1850, 9, Sunday, Night), 1},
		{"later day", NewDate(1850, 10, Thursday, Morning), -1},
		{"earlier segment", NewDate(1850, 10, Wednesday, Morning), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Compare(tc.other))
		})
	}
}

func TestDate_SlotKey_SortsLikeCompare(t *testing.T) {
	a := NewDate(1850, 2, Monday, Morning)
	b := NewDate(1850, 10, Monday, Morning)
	c := NewDate(1850, 10, Tuesday, Night)

	assert.Less(t, a.SlotKey(), b.SlotKey())
	assert.Less(t, b.SlotKey(), c.SlotKey())
}

func TestDate_AddDays_KeepsSegment(t *testing.T) {
	d := NewDate(1850, 1, Friday, Evening)
	assert.Equal(t, NewDate(1850, 1, Sunday, Evening), d.AddDays(2))
	assert.Equal(t, NewDate(1850, 2, Monday, Evening), d.AddDays(3))
}

func TestDate_AddWeeks(t *testing.T) {
	d := NewDate(1850, 51, Thursday, Morning)
	assert.Equal(t, NewDate(1850, 52, Thursday, Morning), d.AddWeeks(1))
	assert.Equal(t, NewDate(1851, 1, Thursday, Morning), d.AddWeeks(2))
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("Wednesday")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, d)

	_, err = ParseWeekday("Wensday")
	assert.Error(t, err)
}

func TestParseSegment(t *testing.T) {
	s, err := ParseSegment("Night")
	require.NoError(t, err)
	assert.Equal(t, Night, s)

	_, err = ParseSegment("Midnight")
	assert.Error(t, err)
}

func TestDate_String(t *testing.T) {
	d := NewDate(1850, 3, Saturday, Night)
	assert.Equal(t, "1850-W03 Saturday Night", d.String())
}
