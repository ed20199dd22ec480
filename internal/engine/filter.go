package engine

import (
	"time"

	"creatorwatch/internal/domain"
)

// The filter helpers below are shared by the cache-hit and fresh-fetch
// paths. Both paths must observe identical filtering, so these are the
// only definitions; call sites never reimplement the rules inline.

// sameCalendarDay reports whether a and b fall on the same local
// year/month/day. Cache entries are valid until local midnight.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// liveOrUnexpired reports whether an event should still be shown at now.
// Live events always survive. Events with a known end survive while the
// end is strictly in the future. Events without an end survive for the
// grace window past their start, tolerating late starts and upstream
// status staleness without showing genuinely finished streams.
func liveOrUnexpired(e domain.ScheduleEvent, now time.Time, grace time.Duration) bool {
	if e.IsLive() {
		return true
	}
	if e.EndTime != nil {
		return e.EndTime.After(now)
	}
	return !e.StartTime.Before(now.Add(-grace))
}

// filterLive applies liveOrUnexpired to a list, preserving order.
// Applying it twice yields the same result as applying it once.
func filterLive(events []domain.ScheduleEvent, now time.Time, grace time.Duration) []domain.ScheduleEvent {
	out := make([]domain.ScheduleEvent, 0, len(events))
	for _, e := range events {
		if liveOrUnexpired(e, now, grace) {
			out = append(out, e)
		}
	}
	return out
}

// calendarMatch reports whether a calendar event and an API event describe
// the same real occurrence: same creator, the calendar event has a known
// end, and the API event's start lies inside the calendar window
// (inclusive bounds). Cross-creator overlap never matches, and a calendar
// event without an end is ambiguous and never matches.
func calendarMatch(calEvent, apiEvent domain.ScheduleEvent) bool {
	if calEvent.Author == nil || apiEvent.Author == nil {
		return false
	}
	if calEvent.Author.ID != apiEvent.Author.ID {
		return false
	}
	if calEvent.EndTime == nil {
		return false
	}
	return !apiEvent.StartTime.Before(calEvent.StartTime) &&
		!apiEvent.StartTime.After(*calEvent.EndTime)
}

// withinRetention reports whether a calendar event is recent enough to
// keep at fetch time. The window is wider than the display filter so a
// calendar record for a stream that started hours ago can still backfill
// the end time of its API counterpart.
func withinRetention(e domain.ScheduleEvent, now time.Time, retention time.Duration) bool {
	cutoff := now.Add(-retention)
	if e.EndTime != nil {
		return e.EndTime.After(cutoff)
	}
	return e.StartTime.After(cutoff)
}
