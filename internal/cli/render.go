package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"creatorwatch/internal/domain"
)

const timeLayout = "Mon Jan _2 15:04"

func renderSchedule(out io.Writer, events []domain.ScheduleEvent) error {
	if len(events) == 0 {
		fmt.Fprintln(out, "No upcoming events.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tEND\tSTATUS\tCREATOR\tTITLE\tURL")
	for _, e := range events {
		end := ""
		if e.EndTime != nil {
			end = e.EndTime.Local().Format(timeLayout)
		}
		status := string(e.Status)
		if e.IsLive() && e.ConcurrentViewers > 0 {
			status = fmt.Sprintf("live (%d watching)", e.ConcurrentViewers)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.StartTime.Local().Format(timeLayout),
			end,
			status,
			authorName(e.Author),
			truncate(e.Title, 50),
			e.URL,
		)
	}
	return w.Flush()
}

func renderActivities(out io.Writer, items []domain.Activity) error {
	if len(items) == 0 {
		fmt.Fprintln(out, "No recent activity.")
		return nil
	}

	now := time.Now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tTYPE\tCREATOR\tTITLE\tVIEWS\tURL")
	for _, a := range items {
		views := ""
		if a.Views > 0 {
			views = fmt.Sprintf("%d", a.Views)
		}
		if a.Type == domain.ActivityLive && a.ConcurrentViewers > 0 {
			views = fmt.Sprintf("%d watching", a.ConcurrentViewers)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			relativeTime(a.Timestamp, now),
			a.Type,
			authorName(a.Author),
			truncate(a.Title, 50),
			views,
			a.URL,
		)
	}
	return w.Flush()
}

func authorName(c *domain.Creator) string {
	if c == nil {
		return ""
	}
	return displayName(*c)
}

func displayName(c domain.Creator) string {
	if c.Symbol != "" {
		return c.Symbol + " " + c.Name
	}
	return c.Name
}

func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return "in " + formatDuration(-d)
	case d < time.Minute:
		return "just now"
	default:
		return formatDuration(d) + " ago"
	}
}

func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour {
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
