// Package calendar implements the simulated week-structured timeline.
//
// A Date is a point in simulated time: (year, week, weekday, segment).
// Dates are value types and always valid by construction; NextSegment is
// pure and total, so the calendar can never reach an invalid state or
// skip a slot.
package calendar

import "fmt"

// Weekday enumerates the seven days, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday maps a name ("Monday".."Sunday") to a Weekday.
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if name == s {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Segment enumerates the four slots of a day, Morning first.
type Segment int

const (
	Morning Segment = iota
	Afternoon
	Evening
	Night
)

var segmentNames = [...]string{"Morning", "Afternoon", "Evening", "Night"}

func (s Segment) String() string {
	if s < Morning || s > Night {
		return fmt.Sprintf("Segment(%d)", int(s))
	}
	return segmentNames[s]
}

// ParseSegment maps a name ("Morning".."Night") to a Segment.
func ParseSegment(s string) (Segment, error) {
	for i, name := range segmentNames {
		if name == s {
			return Segment(i), nil
		}
	}
	return 0, fmt.Errorf("unknown segment %q", s)
}

// SegmentsPerDay and DaysPerWeek size one calendar tick group.
const (
	SegmentsPerDay = 4
	DaysPerWeek    = 7
	WeeksPerYear   = 52
)

// Date is a point in simulated time. The zero value is year 0, week 0,
// Monday Morning; content dates use week 1..52.
type Date struct {
	Year    int
	Week    int // 1..52
	Day     Weekday
	Segment Segment
}

// NewDate builds a Date without validation; callers own range correctness
// for year/week (weekday and segment are closed enums).
func NewDate(year, week int, day Weekday, seg Segment) Date {
	return Date{Year: year, Week: week, Day: day, Segment: seg}
}

func (d Date) String() string {
	return fmt.Sprintf("%d-W%02d %s %s", d.Year, d.Week, d.Day, d.Segment)
}

// NextSegment returns the immediately following slot. Rolling past Night
// advances the weekday; rolling past Sunday Night advances the week and,
// past week 52, the year.
func (d Date) NextSegment() Date {
	next := d
	if d.Segment < Night {
		next.Segment = d.Segment + 1
		return next
	}
	next.Segment = Morning
	if d.Day < Sunday {
		next.Day = d.Day + 1
		return next
	}
	next.Day = Monday
	if d.Week < WeeksPerYear {
		next.Week = d.Week + 1
		return next
	}
	next.Week = 1
	next.Year = d.Year + 1
	return next
}

// Compare orders two dates lexicographically on (year, week, day, segment).
// Returns -1, 0, or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Week != o.Week:
		return sign(d.Week - o.Week)
	case d.Day != o.Day:
		return sign(int(d.Day) - int(o.Day))
	case d.Segment != o.Segment:
		return sign(int(d.Segment) - int(o.Segment))
	}
	return 0
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// SlotKey renders the date as a fixed-width sortable slot prefix,
// e.g. "1850-03-2-1-". Lexicographic order of slot keys matches Compare
// for years 0..9999. Scheduler composite keys append the item id.
func (d Date) SlotKey() string {
	return fmt.Sprintf("%04d-%02d-%d-%d-", d.Year, d.Week, int(d.Day), int(d.Segment))
}

// AddDays returns the date moved forward by n whole days (n >= 0),
// keeping the segment.
func (d Date) AddDays(n int) Date {
	out := d
	for i := 0; i < n*SegmentsPerDay; i++ {
		out = out.NextSegment()
	}
	return out
}

// AddWeeks returns the date moved forward by n whole weeks (n >= 0).
func (d Date) AddWeeks(n int) Date {
	return d.AddDays(n * DaysPerWeek)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
