package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"kuenkele/timetrack/internal/models"
	"kuenkele/timetrack/internal/timeutil"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF7CCB"))

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFF8C"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// projectRuntime adds the elapsed time of a running project to its stored
// runtime.
func projectRuntime(p *models.Project, now time.Time) int64 {
	return p.RuntimeInSeconds + timeutil.Elapsed(p.StartedAt, now)
}

func renderActiveProject(p *models.Project, now time.Time) string {
	if p == nil {
		return dimStyle.Render("No project running")
	}
	return fmt.Sprintf("%s %s  %s %s",
		activeStyle.Render("▶ "+p.Name),
		statsStyle.Render(timeutil.FormatClock(timeutil.Elapsed(p.StartedAt, now))),
		dimStyle.Render("total"),
		timeutil.FormatRuntime(projectRuntime(p, now)),
	)
}

func renderProjectPage(page *models.PaginatedProjects, now time.Time) string {
	var b strings.Builder

	b.WriteString(renderActiveProject(page.ActiveProject, now))
	b.WriteString("\n")

	if len(page.Projects) == 0 {
		b.WriteString(dimStyle.Render("No projects"))
		b.WriteString("\n")
	} else {
		t := newTable("NAME", "RUNTIME")
		for _, p := range page.Projects {
			t.Row(p.Name, timeutil.FormatRuntime(projectRuntime(p, now)))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("page %d of %d, %d projects", page.Page, page.TotalPages, page.Total)))
	b.WriteString("\n")
	return b.String()
}

func renderProject(p *models.Project, now time.Time) string {
	if p.StartedAt != nil {
		return renderActiveProject(p, now)
	}
	return fmt.Sprintf("%s  %s %s",
		titleStyle.Render(p.Name),
		dimStyle.Render("total"),
		timeutil.FormatRuntime(p.RuntimeInSeconds),
	)
}

func activityTable(activities models.Activities, loc *time.Location, now time.Time) string {
	t := newTable("ID", "PROJECT", "START", "END", "DURATION")
	for _, a := range activities {
		end := "running"
		duration := timeutil.Elapsed(&a.StartedAt, now)
		if a.EndedAt != nil {
			end = a.EndedAt.In(loc).Format(time.TimeOnly)
			duration = a.DurationSeconds()
		}
		t.Row(
			strconv.FormatInt(a.ID, 10),
			a.ProjectName,
			a.StartedAt.In(loc).Format(time.TimeOnly),
			end,
			timeutil.FormatClock(duration),
		)
	}
	return t.String()
}

func renderDaily(d *models.DailyActivities, loc *time.Location, now time.Time) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Day))
	b.WriteString("\n")

	if len(d.Activities) == 0 {
		b.WriteString(dimStyle.Render("No activities"))
		b.WriteString("\n")
	} else {
		b.WriteString(activityTable(d.Activities, loc, now))
		b.WriteString("\n")
	}

	stats := []struct {
		label   string
		seconds int64
	}{
		{"Worktime", d.Worktime},
		{"Breaktime", d.Breaktime},
		{"Net", d.NetWorktime()},
		{"Overtime", d.Overtime},
	}
	for _, s := range stats {
		fmt.Fprintf(&b, "%-10s %s\n", s.label, statsStyle.Render(timeutil.FormatRuntime(s.seconds)))
	}

	if totals := d.Activities.RuntimePerProject(); len(totals) > 1 {
		t := newTable("PROJECT", "TOTAL")
		for _, name := range slices.Sorted(maps.Keys(totals)) {
			t.Row(name, timeutil.FormatRuntime(totals[name]))
		}
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	return b.String()
}

func renderActivities(activities models.Activities, loc *time.Location, now time.Time) string {
	if len(activities) == 0 {
		return dimStyle.Render("No activities") + "\n"
	}

	t := newTable("ID", "PROJECT", "DAY", "START", "END", "DURATION")
	for _, a := range activities {
		end := "running"
		duration := timeutil.Elapsed(&a.StartedAt, now)
		if a.EndedAt != nil {
			end = a.EndedAt.In(loc).Format(time.TimeOnly)
			duration = a.DurationSeconds()
		}
		t.Row(
			strconv.FormatInt(a.ID, 10),
			a.ProjectName,
			a.StartedAt.In(loc).Format(timeutil.DayLayout),
			a.StartedAt.In(loc).Format(time.TimeOnly),
			end,
			timeutil.FormatClock(duration),
		)
	}

	return fmt.Sprintf("%s\n%s %s\n", t.String(), dimStyle.Render("total"), timeutil.FormatRuntime(activities.Runtime()))
}
