package models

import (
	"slices"
	"time"
)

// Activity is a time segment attributed to a project. EndedAt is nil while
// the segment is open.
type Activity struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"-"`
	ProjectName string     `json:"projectName"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// IsOpen reports whether the segment is still running.
func (a *Activity) IsOpen() bool {
	return a.EndedAt == nil
}

// DurationSeconds is end minus start in whole seconds. Open segments have no
// duration yet.
func (a *Activity) DurationSeconds() int64 {
	if a.EndedAt == nil || a.StartedAt.IsZero() {
		return 0
	}
	d := int64(a.EndedAt.Sub(a.StartedAt).Seconds())
	if d < 0 {
		return 0
	}
	return d
}

// end is the latest instant covered by the segment.
func (a *Activity) end() time.Time {
	if a.EndedAt == nil {
		return a.StartedAt
	}
	return *a.EndedAt
}

// Validate checks the invariants of a single segment.
func (a *Activity) Validate() error {
	if a.StartedAt.IsZero() {
		return Errorf(ErrValidation, "startedAt must be present")
	}
	if a.EndedAt != nil && a.EndedAt.Before(a.StartedAt) {
		return Errorf(ErrValidation, "startedAt must be before endedAt")
	}
	return nil
}

type Activities []*Activity

// Runtime sums the durations of all closed segments.
func (as Activities) Runtime() int64 {
	var total int64
	for _, a := range as {
		total += a.DurationSeconds()
	}
	return total
}

// RuntimePerProject sums durations by project name.
func (as Activities) RuntimePerProject() map[string]int64 {
	totals := make(map[string]int64)
	for _, a := range as {
		totals[a.ProjectName] += a.DurationSeconds()
	}
	return totals
}

// SortChronologically orders segments by start time, keeping the relative
// order of segments that start at the same instant.
func (as Activities) SortChronologically() {
	slices.SortStableFunc(as, func(a, b *Activity) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
}

// DailyActivities holds one calendar day of segments together with the
// derived work, break and overtime totals in seconds.
type DailyActivities struct {
	Day        string     `json:"day"`
	Activities Activities `json:"activities"`
	Worktime   int64      `json:"worktime"`
	Breaktime  int64      `json:"breaktime"`
	Overtime   int64      `json:"overtime"`
}

// CalculateWorktime sets Worktime to the span between the first start and
// the latest end of the day. Activities must be sorted.
func (d *DailyActivities) CalculateWorktime() {
	d.Worktime = 0
	if len(d.Activities) == 0 {
		return
	}

	first := d.Activities[0].StartedAt
	last := first
	for _, a := range d.Activities {
		if e := a.end(); e.After(last) {
			last = e
		}
	}

	d.Worktime = int64(last.Sub(first).Seconds())
}

// CalculateBreaktime sets Breaktime to the sum of gaps between segments.
// Overlapping segments do not produce negative breaks. Activities must be
// sorted.
func (d *DailyActivities) CalculateBreaktime() {
	d.Breaktime = 0
	if len(d.Activities) == 0 {
		return
	}

	covered := d.Activities[0].end()
	for _, a := range d.Activities[1:] {
		if a.StartedAt.After(covered) {
			d.Breaktime += int64(a.StartedAt.Sub(covered).Seconds())
		}
		if e := a.end(); e.After(covered) {
			covered = e
		}
	}
}

// NetWorktime is work minus breaks.
func (d *DailyActivities) NetWorktime() int64 {
	return d.Worktime - d.Breaktime
}
