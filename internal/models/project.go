package models

import "time"

// Project is a named bucket of tracked time. StartedAt is non-nil iff the
// project is currently running.
type Project struct {
	ID               int64      `json:"id"`
	UserID           string     `json:"-"`
	Name             string     `json:"name"`
	RuntimeInSeconds int64      `json:"runtimeInSeconds"`
	StartedAt        *time.Time `json:"startedAt"`
	CreatedAt        time.Time  `json:"-"`
	UpdatedAt        time.Time  `json:"-"`

	Activities Activities `json:"-"`
}

// IsRunning reports whether the project has an active timer.
func (p *Project) IsRunning() bool {
	return p.StartedAt != nil
}

// ElapsedSeconds is the runtime of the current run at now, 0 when stopped.
func (p *Project) ElapsedSeconds(now time.Time) int64 {
	if p.StartedAt == nil || now.Before(*p.StartedAt) {
		return 0
	}
	return int64(now.Sub(*p.StartedAt).Seconds())
}

// PaginatedProjects is one page of projects. The running project is never
// part of Projects; it is reported separately as ActiveProject.
type PaginatedProjects struct {
	Projects      []*Project `json:"projects"`
	ActiveProject *Project   `json:"activeProject"`
	Page          int        `json:"page"`
	PerPage       int        `json:"perPage"`
	Total         int        `json:"total"`
	TotalPages    int        `json:"totalPages"`
}
