package models

import "time"

// DayLayout is the wire and storage format of a calendar day.
const DayLayout = "2006-01-02"

// Worktime is the persisted daily aggregate of a user.
type Worktime struct {
	UserID    string
	Day       string
	Worktime  int64
	Breaktime int64
}

// Net is worktime minus breaktime.
func (w *Worktime) Net() int64 {
	return w.Worktime - w.Breaktime
}

// Overtime sums net work minus the expected daily work over all days up to
// and including lastDay. Days are compared as DayLayout strings.
func Overtime(days []*Worktime, lastDay string, dailyWorkSeconds int64) int64 {
	var overtime int64
	for _, d := range days {
		if d.Day > lastDay {
			continue
		}
		overtime += d.Net() - dailyWorkSeconds
	}
	return overtime
}

// DayBounds returns [start of day, start of next day) for the calendar day of
// t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay parses a DayLayout string in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, Errorf(ErrValidation, "invalid day %q, must be of format %s", s, DayLayout)
	}
	return day, nil
}
