// Package domain defines the core data model shared by the source adapters
// and the aggregation engines.
package domain

import "time"

// Platform identifies the origin of an event or activity.
type Platform string

const (
	PlatformYouTube  Platform = "youtube"
	PlatformTwitch   Platform = "twitch"
	PlatformX        Platform = "x"
	PlatformCalendar Platform = "calendar"
)

// ActivityType classifies a feed item.
type ActivityType string

const (
	ActivityLive  ActivityType = "live"
	ActivityVideo ActivityType = "video"
	ActivityPost  ActivityType = "post"
)

// EventStatus is the live-state of a schedule event. Empty means unknown.
type EventStatus string

const (
	StatusLive     EventStatus = "live"
	StatusUpcoming EventStatus = "upcoming"
)

// Creator is a tracked content creator. The zero-value optional fields mean
// the creator has no presence on that platform.
type Creator struct {
	ID               string `json:"id"`                           // Stable slug, unique
	Name             string `json:"name"`                         // Display name
	YouTubeChannelID string `json:"youtube_channel_id,omitempty"` // UC...
	TwitchChannelID  string `json:"twitch_channel_id,omitempty"`  // Login name
	XUsername        string `json:"x_username,omitempty"`         // Without @
	CalendarURL      string `json:"calendar_url,omitempty"`       // iCal feed URL
	Color            string `json:"color,omitempty"`              // Display color
	Symbol           string `json:"symbol,omitempty"`             // Display symbol
}

// ScheduleEvent is a time-boxed occurrence from one of the sources.
// IDs are source-qualified (e.g. "youtube:<videoID>", "twitch:schedule:<id>")
// so records from different sources never collide.
type ScheduleEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty"` // nil means duration unknown
	URL         string      `json:"url,omitempty"`
	Description string      `json:"description,omitempty"`
	Platform    Platform    `json:"platform"`
	Author      *Creator    `json:"author,omitempty"`
	Status      EventStatus `json:"status,omitempty"`

	// Live-only metrics, zero unless Status is StatusLive.
	ConcurrentViewers int64 `json:"concurrent_viewers,omitempty"`
	LikeCount         int64 `json:"like_count,omitempty"`
}

// IsLive reports whether the event is currently in progress.
func (e ScheduleEvent) IsLive() bool {
	return e.Status == StatusLive
}

// WithEndTime returns a copy of the event with its end time replaced.
// The merge step uses this instead of mutating the original record.
func (e ScheduleEvent) WithEndTime(end time.Time) ScheduleEvent {
	e.EndTime = &end
	return e
}

// Activity is a past or ongoing content unit from a creator's feed.
// Unlike ScheduleEvents, activities are immutable facts per fetch cycle.
type Activity struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	URL          string       `json:"url"`
	Platform     Platform     `json:"platform"`
	Type         ActivityType `json:"type"`
	Timestamp    time.Time    `json:"timestamp"`
	ThumbnailURL string       `json:"thumbnail_url,omitempty"`
	Description  string       `json:"description,omitempty"`
	Author       *Creator     `json:"author,omitempty"`
	Views        int64        `json:"views,omitempty"`
	LikeCount    int64        `json:"like_count,omitempty"`

	// ConcurrentViewers is set for live activities only.
	ConcurrentViewers int64 `json:"concurrent_viewers,omitempty"`
}
