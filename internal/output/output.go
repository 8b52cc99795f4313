// Package output renders worklog results for the terminal.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rpggio/worklog/internal/domain/activity"
	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/process"
)

const timeLayout = "2006-01-02 15:04"

type Formatter struct {
	w io.Writer

	header lipgloss.Style
	title  lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
}

// NewFormatter styles output for w. Colors are dropped when w is not a
// terminal.
func NewFormatter(w io.Writer) *Formatter {
	r := lipgloss.NewRenderer(w)
	return &Formatter{
		w:      w,
		header: r.NewStyle().Bold(true).Underline(true),
		title:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		bad:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", f.bad.Render("✗"), msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", f.muted.Render("•"), msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", f.ok.Render("✓"), msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", f.warn.Render("!"), msg)
}

// MeetingState prints the tracked meeting slot.
func (f *Formatter) MeetingState(s meeting.State, now time.Time) {
	switch {
	case s.Ongoing != nil:
		fmt.Fprintf(f.w, "%s %s\n", f.ok.Render("● In meeting:"), f.title.Render(s.Ongoing.Title))
		fmt.Fprintf(f.w, "  started %s (%s ago)\n", s.Ongoing.StartDate.Local().Format(timeLayout), formatDuration(now.Sub(s.Ongoing.StartDate)))
		fmt.Fprintf(f.w, "  %s\n", f.muted.Render("id "+s.Ongoing.GUID.String()))
	case s.PendingEnd != nil:
		m := s.PendingEnd.Meeting
		fmt.Fprintf(f.w, "%s %s\n", f.warn.Render("◐ Awaiting end confirmation:"), f.title.Render(m.Title))
		fmt.Fprintf(f.w, "  started %s, undetected since %s\n",
			m.StartDate.Local().Format(timeLayout), s.PendingEnd.DetectedAt.Local().Format(timeLayout))
		fmt.Fprintf(f.w, "  %s\n", f.muted.Render("id "+m.GUID.String()))
	default:
		fmt.Fprintf(f.w, "%s\n", f.muted.Render("○ No meeting in progress"))
	}
	if p := s.Postponement; p != nil {
		fmt.Fprintf(f.w, "  end check postponed until %s\n", p.PostponedUntil.Local().Format(timeLayout))
	}
}

// EndedMeetings prints a list of ended meetings, newest first.
func (f *Formatter) EndedMeetings(meetings []meeting.EndedMeeting) {
	if len(meetings) == 0 {
		f.Info("No meetings recorded")
		return
	}
	fmt.Fprintf(f.w, "%s\n\n", f.header.Render("Meetings"))
	var total time.Duration
	for _, m := range meetings {
		total += m.Duration()
		fmt.Fprintf(f.w, "  %s  %7s  %s\n",
			m.StartDate.Local().Format(timeLayout),
			formatDuration(m.Duration()),
			m.Description())
	}
	fmt.Fprintf(f.w, "\n  %s\n", f.muted.Render(fmt.Sprintf("%d meetings, %s total", len(meetings), formatDuration(total))))
}

// Rules prints recognition rules in evaluation order.
func (f *Formatter) Rules(rules []rule.Rule) {
	if len(rules) == 0 {
		f.Info("No recognition rules configured")
		return
	}
	fmt.Fprintf(f.w, "%s\n\n", f.header.Render("Recognition rules"))
	for _, r := range rules {
		fmt.Fprintf(f.w, "  %3d  %s  %s\n", r.Priority, f.title.Render(r.Name), f.muted.Render(r.ID.String()))
		if r.ProcessNamePattern != nil {
			fmt.Fprintf(f.w, "       process %s\n", describePattern(*r.ProcessNamePattern))
		}
		if r.WindowTitlePattern != nil {
			fmt.Fprintf(f.w, "       title   %s\n", describePattern(*r.WindowTitlePattern))
		}
		matched := "never matched"
		if r.LastMatchedAt != nil {
			matched = "last " + r.LastMatchedAt.Local().Format(timeLayout)
		}
		fmt.Fprintf(f.w, "       %s\n", f.muted.Render(fmt.Sprintf("%s, %d matches, %s", r.Criteria, r.MatchCount, matched)))
	}
}

// Detection prints the result of a one-shot rule evaluation.
func (f *Formatter) Detection(match *rule.MeetingMatch, ruleName string, processes []process.Snapshot) {
	if match == nil {
		f.Info(fmt.Sprintf("No meeting detected among %d processes", len(processes)))
		return
	}
	f.Success(fmt.Sprintf("Meeting detected by %s", f.title.Render(ruleName)))
	fmt.Fprintf(f.w, "  process %s\n  title   %s\n", match.ProcessName, match.WindowTitle)
}

// Processes prints a process snapshot, one process per line.
func (f *Formatter) Processes(processes []process.Snapshot) {
	for _, p := range processes {
		title := p.MainWindowTitle
		if title == "" {
			title = f.muted.Render("-")
		}
		fmt.Fprintf(f.w, "  %-24s %s\n", p.ProcessName, title)
	}
}

// Activity prints activity log entries.
func (f *Formatter) Activity(entries []activity.ActivityEntry) {
	if len(entries) == 0 {
		f.Info("No activity recorded")
		return
	}
	fmt.Fprintf(f.w, "%s\n\n", f.header.Render("Activity"))
	for _, e := range entries {
		fmt.Fprintf(f.w, "  %s  %s\n", f.muted.Render(e.CreatedAt.Local().Format(timeLayout)), e.Summary)
	}
}

func describePattern(p rule.PatternDefinition) string {
	s := fmt.Sprintf("%s %q", p.MatchMode, p.Value)
	if p.CaseSensitive {
		s += " (case sensitive)"
	}
	return s
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
