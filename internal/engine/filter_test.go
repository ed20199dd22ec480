package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"creatorwatch/internal/domain"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestSameCalendarDay(t *testing.T) {
	base := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"same instant", base, base, true},
		{"same day different hour", base, base.Add(10 * time.Hour), true},
		{"next day", base, base.AddDate(0, 0, 1), false},
		{"just past midnight", time.Date(2025, 6, 15, 23, 59, 0, 0, time.Local), time.Date(2025, 6, 16, 0, 1, 0, 0, time.Local), false},
		{"same day next month", base, base.AddDate(0, 1, 0), false},
		{"same day next year", base, base.AddDate(1, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sameCalendarDay(tt.a, tt.b))
		})
	}
}

func TestLiveOrUnexpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	grace := 3 * time.Hour

	tests := []struct {
		name  string
		event domain.ScheduleEvent
		want  bool
	}{
		{
			"live event started long ago",
			domain.ScheduleEvent{Status: domain.StatusLive, StartTime: now.Add(-48 * time.Hour)},
			true,
		},
		{
			"end in the future",
			domain.ScheduleEvent{StartTime: now.Add(-2 * time.Hour), EndTime: timePtr(now.Add(time.Hour))},
			true,
		},
		{
			"end in the past",
			domain.ScheduleEvent{StartTime: now.Add(-2 * time.Hour), EndTime: timePtr(now.Add(-time.Minute))},
			false,
		},
		{
			"no end, starts in the future",
			domain.ScheduleEvent{StartTime: now.Add(time.Hour)},
			true,
		},
		{
			"no end, started within grace",
			domain.ScheduleEvent{StartTime: now.Add(-grace)},
			true,
		},
		{
			"no end, started past grace",
			domain.ScheduleEvent{StartTime: now.Add(-grace - time.Minute)},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, liveOrUnexpired(tt.event, now, grace))
		})
	}
}

func TestFilterLiveIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	grace := 3 * time.Hour

	events := []domain.ScheduleEvent{
		{ID: "live", Status: domain.StatusLive, StartTime: now.Add(-5 * time.Hour)},
		{ID: "future", StartTime: now.Add(2 * time.Hour)},
		{ID: "expired", StartTime: now.Add(-4 * time.Hour)},
		{ID: "ended", StartTime: now.Add(-3 * time.Hour), EndTime: timePtr(now.Add(-time.Hour))},
	}

	once := filterLive(events, now, grace)
	twice := filterLive(once, now, grace)

	require.Len(t, once, 2)
	require.Equal(t, "live", once[0].ID)
	require.Equal(t, "future", once[1].ID)
	require.Equal(t, once, twice)
}

func TestCalendarMatch(t *testing.T) {
	alice := &domain.Creator{ID: "alice"}
	bob := &domain.Creator{ID: "bob"}
	calStart := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	calEnd := time.Date(2025, 6, 15, 22, 30, 0, 0, time.UTC)

	cal := domain.ScheduleEvent{
		Author:    alice,
		StartTime: calStart,
		EndTime:   &calEnd,
		Platform:  domain.PlatformCalendar,
	}

	tests := []struct {
		name string
		api  domain.ScheduleEvent
		want bool
	}{
		{"api start inside window", domain.ScheduleEvent{Author: alice, StartTime: calStart.Add(2 * time.Hour)}, true},
		{"api start at window start", domain.ScheduleEvent{Author: alice, StartTime: calStart}, true},
		{"api start at window end", domain.ScheduleEvent{Author: alice, StartTime: calEnd}, true},
		{"api start before window", domain.ScheduleEvent{Author: alice, StartTime: calStart.Add(-time.Minute)}, false},
		{"api start after window", domain.ScheduleEvent{Author: alice, StartTime: calEnd.Add(time.Minute)}, false},
		{"different author", domain.ScheduleEvent{Author: bob, StartTime: calStart.Add(time.Hour)}, false},
		{"nil author", domain.ScheduleEvent{StartTime: calStart.Add(time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, calendarMatch(cal, tt.api))
		})
	}

	t.Run("calendar event without end never matches", func(t *testing.T) {
		open := domain.ScheduleEvent{Author: alice, StartTime: calStart}
		api := domain.ScheduleEvent{Author: alice, StartTime: calStart.Add(time.Hour)}
		require.False(t, calendarMatch(open, api))
	})
}

func TestWithinRetention(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	retention := 24 * time.Hour

	tests := []struct {
		name  string
		event domain.ScheduleEvent
		want  bool
	}{
		{"future start", domain.ScheduleEvent{StartTime: now.Add(time.Hour)}, true},
		{"started 23h ago, no end", domain.ScheduleEvent{StartTime: now.Add(-23 * time.Hour)}, true},
		{"started 25h ago, no end", domain.ScheduleEvent{StartTime: now.Add(-25 * time.Hour)}, false},
		{"old start but end within window", domain.ScheduleEvent{StartTime: now.Add(-30 * time.Hour), EndTime: timePtr(now.Add(-2 * time.Hour))}, true},
		{"ended past the window", domain.ScheduleEvent{StartTime: now.Add(-30 * time.Hour), EndTime: timePtr(now.Add(-25 * time.Hour))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, withinRetention(tt.event, now, retention))
		})
	}
}
