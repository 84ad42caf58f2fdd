package core

import (
	"errors"
	"time"
)

// Day is a calendar day with no clock or zone attached.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

var ErrInvalidDay = errors.New("invalid day")

// NewDay normalizes year, month and day (e.g. Feb 30 becomes Mar 2).
func NewDay(year int, month time.Month, day int) Day {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day{Year: t.Year(), Month: t.Month(), Dom: t.Day()}
}

// DayOf returns the calendar day an epoch-millisecond instant falls on in loc.
func DayOf(timestampMs int64, loc *time.Location) Day {
	return DayFromTime(time.UnixMilli(timestampMs).In(loc))
}

// DayFromTime returns the calendar day of t in its own location.
func DayFromTime(t time.Time) Day {
	return Day{Year: t.Year(), Month: t.Month(), Dom: t.Day()}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Day{}, ErrInvalidDay
	}
	return DayFromTime(t), nil
}

func (d Day) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, time.UTC)
}

// Start returns midnight of d in loc.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc)
}

// End returns the last millisecond of d in loc.
func (d Day) End(loc *time.Location) time.Time {
	return d.AddDays(1).Start(loc).Add(-time.Millisecond)
}

func (d Day) AddDays(n int) Day {
	return DayFromTime(d.utc().AddDate(0, 0, n))
}

func (d Day) AddMonths(n int) Day {
	return DayFromTime(time.Date(d.Year, d.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// FirstOfMonth returns day 1 of d's month.
func (d Day) FirstOfMonth() Day {
	return Day{Year: d.Year, Month: d.Month, Dom: 1}
}

// LastOfMonth returns the final day of d's month.
func (d Day) LastOfMonth() Day {
	return d.FirstOfMonth().AddMonths(1).AddDays(-1)
}

func (d Day) Weekday() time.Weekday {
	return d.utc().Weekday()
}

// Compare returns -1, 0 or +1.
func (d Day) Compare(o Day) int {
	return d.utc().Compare(o.utc())
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }

// DaysUntil returns the number of days from d to o (negative when o is earlier).
func (d Day) DaysUntil(o Day) int {
	return int(o.utc().Sub(d.utc()).Hours() / 24)
}

func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) String() string {
	return d.utc().Format(time.DateOnly)
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
