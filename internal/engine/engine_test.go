package engine

import (
	"context"
	"encoding/json"
	"time"

	"creatorwatch/internal/calendar"
	"creatorwatch/internal/domain"
)

// fakeCache stores entries the way the real cache does: JSON-encoded
// values with a write time, so round trips exercise serialization too.
type fakeCache struct {
	entries map[string]fakeEntry
	sets    int
	clock   func() time.Time
}

type fakeEntry struct {
	data      []byte
	writtenAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]fakeEntry), clock: time.Now}
}

func (c *fakeCache) Get(key string, v any) (time.Time, bool) {
	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	if err := json.Unmarshal(e.data, v); err != nil {
		return time.Time{}, false
	}
	return e.writtenAt, true
}

func (c *fakeCache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = fakeEntry{data: data, writtenAt: c.clock()}
	c.sets++
	return nil
}

func (c *fakeCache) setWrittenAt(key string, at time.Time) {
	e := c.entries[key]
	e.writtenAt = at
	c.entries[key] = e
}

type fakeCalendar struct {
	feeds map[string][]calendar.Event
	errs  map[string]error
	calls int
}

func (f *fakeCalendar) Events(_ context.Context, feedURL string) ([]calendar.Event, error) {
	f.calls++
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return f.feeds[feedURL], nil
}

type fakeVideo struct {
	upcoming []domain.ScheduleEvent
	live     []domain.ScheduleEvent
	err      error
	calls    int
}

func (f *fakeVideo) UpcomingStreams(context.Context, []domain.Creator) ([]domain.ScheduleEvent, error) {
	f.calls++
	return f.upcoming, f.err
}

func (f *fakeVideo) LiveStreams(context.Context, []domain.Creator) ([]domain.ScheduleEvent, error) {
	return f.live, f.err
}

type fakeLive struct {
	streams  []domain.Activity
	upcoming []domain.ScheduleEvent
	err      error
}

func (f *fakeLive) LiveStreams(context.Context, []domain.Creator) ([]domain.Activity, error) {
	return f.streams, f.err
}

func (f *fakeLive) UpcomingSchedules(context.Context, []domain.Creator) ([]domain.ScheduleEvent, error) {
	return f.upcoming, f.err
}

type fakeFeed struct {
	items []domain.Activity
	err   error
	calls int
}

func (f *fakeFeed) Activities(context.Context, []domain.Creator) ([]domain.Activity, error) {
	f.calls++
	return f.items, f.err
}

type fakeEnricher struct {
	fn    func([]domain.Activity) []domain.Activity
	err   error
	calls int
}

func (f *fakeEnricher) EnrichActivities(_ context.Context, items []domain.Activity, _ int) ([]domain.Activity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.fn != nil {
		return f.fn(items), nil
	}
	return items, nil
}

type fakeArchive struct {
	items []domain.Activity
	err   error
}

func (f *fakeArchive) RecentVideos(context.Context, []domain.Creator) ([]domain.Activity, error) {
	return f.items, f.err
}
