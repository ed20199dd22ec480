package engine

import (
	"context"
	"time"

	"creatorwatch/internal/calendar"
	"creatorwatch/internal/domain"
)

// Cache keys. The schedule key depends on whether the video-platform API
// credential is configured, because merge behavior differs materially
// between the two modes and their results must not be conflated.
const (
	CacheKeySchedules    = "calendar_schedules"
	CacheKeySchedulesAPI = "calendar_schedules_api"
	CacheKeyActivities   = "youtube_activities"
)

// CacheStore is the persistence contract the engines consume. Entries are
// whole values with a write time; the engines never partially update them.
type CacheStore interface {
	Get(key string, v any) (time.Time, bool)
	Set(key string, v any) error
}

// CalendarSource fetches raw calendar records for one feed URL.
type CalendarSource interface {
	Events(ctx context.Context, feedURL string) ([]calendar.Event, error)
}

// VideoSource is the quota-bearing video-platform API surface.
type VideoSource interface {
	UpcomingStreams(ctx context.Context, creators []domain.Creator) ([]domain.ScheduleEvent, error)
	LiveStreams(ctx context.Context, creators []domain.Creator) ([]domain.ScheduleEvent, error)
}

// LiveSource is the live-streaming-platform API surface.
type LiveSource interface {
	LiveStreams(ctx context.Context, creators []domain.Creator) ([]domain.Activity, error)
	UpcomingSchedules(ctx context.Context, creators []domain.Creator) ([]domain.ScheduleEvent, error)
}

// FeedSource fetches lightweight recent-activity records per creator.
type FeedSource interface {
	Activities(ctx context.Context, creators []domain.Creator) ([]domain.Activity, error)
}

// Enricher augments feed activities with authoritative per-item details.
type Enricher interface {
	EnrichActivities(ctx context.Context, items []domain.Activity, batchSize int) ([]domain.Activity, error)
}

// ArchiveSource fetches recent past broadcasts.
type ArchiveSource interface {
	RecentVideos(ctx context.Context, creators []domain.Creator) ([]domain.Activity, error)
}
