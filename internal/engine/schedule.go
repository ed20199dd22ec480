// Package engine implements the schedule aggregation and activity feed
// engines: fetch from the heterogeneous sources concurrently, reconcile
// records describing the same real-world event, filter by time window and
// live status, and memoize the result for the rest of the day.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"creatorwatch/internal/config"
	"creatorwatch/internal/domain"
)

// ScheduleService aggregates upcoming and live events from the calendar,
// video-platform and live-streaming-platform sources.
//
// A nil video or live source means that provider's credentials are not
// configured; that is a supported degraded mode, not an error.
type ScheduleService struct {
	cache    CacheStore
	calendar CalendarSource
	video    VideoSource
	live     LiveSource
	policy   config.Policy
	log      zerolog.Logger

	now func() time.Time
}

// NewScheduleService constructs the engine with explicit dependencies.
func NewScheduleService(cache CacheStore, cal CalendarSource, video VideoSource, live LiveSource, policy config.Policy, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		cache:    cache,
		calendar: cal,
		video:    video,
		live:     live,
		policy:   policy,
		log:      log.With().Str("component", "schedule").Logger(),
		now:      time.Now,
	}
}

// GetSchedules returns the deduplicated, time-filtered, ascending-sorted
// schedule for the given creators. The call always resolves to a list:
// every per-source failure is logged and contributes an empty result.
//
// Pass the full creator list, not a pre-filtered one; caller-side search
// filtering happens against the returned list so the cache stays valid
// for every caller.
func (s *ScheduleService) GetSchedules(ctx context.Context, creators []domain.Creator, forceRefresh bool) ([]domain.ScheduleEvent, error) {
	useAPI := s.video != nil
	key := CacheKeySchedules
	if useAPI {
		key = CacheKeySchedulesAPI
	}

	now := s.now()

	if !forceRefresh {
		var cached []domain.ScheduleEvent
		if writtenAt, ok := s.cache.Get(key, &cached); ok && sameCalendarDay(writtenAt, now) {
			// A same-day entry can still hold events that expired since it
			// was written; re-apply the live filter before returning.
			return filterLive(cached, now, s.policy.GraceWindow), nil
		}
	}

	var (
		wg            sync.WaitGroup
		videoEvents   []domain.ScheduleEvent
		liveEvents    []domain.ScheduleEvent
		calendarItems []domain.ScheduleEvent
	)

	if useAPI {
		wg.Add(1)
		go func() {
			defer wg.Done()
			videoEvents = s.fetchVideoEvents(ctx, creators, now)
		}()

		if s.live != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				liveEvents = s.fetchLiveEvents(ctx, creators)
			}()
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		calendarItems = s.fetchCalendarEvents(ctx, creators, now)
	}()

	wg.Wait()

	var schedules []domain.ScheduleEvent
	if useAPI {
		schedules = mergeCalendar(videoEvents, liveEvents, calendarItems)
	} else {
		// Without the API source there is nothing to reconcile against;
		// the calendar is the sole source of truth.
		schedules = calendarItems
	}

	schedules = filterLive(schedules, now, s.policy.GraceWindow)
	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].StartTime.Before(schedules[j].StartTime)
	})

	if err := s.cache.Set(key, schedules); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return schedules, nil
}

// fetchVideoEvents returns live broadcasts followed by upcoming ones
// capped to the configured horizon. Live events sort first naturally, but
// prepending also keeps them first among equal start times.
func (s *ScheduleService) fetchVideoEvents(ctx context.Context, creators []domain.Creator, now time.Time) []domain.ScheduleEvent {
	var events []domain.ScheduleEvent

	live, err := s.video.LiveStreams(ctx, creators)
	if err != nil {
		s.log.Warn().Err(err).Msg("video live fetch failed")
	} else {
		events = append(events, live...)
	}

	upcoming, err := s.video.UpcomingStreams(ctx, creators)
	if err != nil {
		s.log.Warn().Err(err).Msg("video upcoming fetch failed")
		return events
	}

	// Client-side horizon cap, independent of the API's own limits.
	horizon := now.AddDate(0, s.policy.HorizonMonths, 0)
	for _, e := range upcoming {
		if !e.StartTime.After(horizon) {
			events = append(events, e)
		}
	}
	return events
}

// fetchLiveEvents returns the live-platform events: current streams mapped
// to live schedule events (prepended) followed by schedule segments.
func (s *ScheduleService) fetchLiveEvents(ctx context.Context, creators []domain.Creator) []domain.ScheduleEvent {
	var events []domain.ScheduleEvent

	streams, err := s.live.LiveStreams(ctx, creators)
	if err != nil {
		s.log.Warn().Err(err).Msg("live streams fetch failed")
	} else {
		for _, a := range streams {
			events = append(events, domain.ScheduleEvent{
				ID:                a.ID,
				Title:             a.Title,
				StartTime:         a.Timestamp,
				URL:               a.URL,
				Description:       a.Description,
				Platform:          a.Platform,
				Author:            a.Author,
				Status:            domain.StatusLive,
				ConcurrentViewers: a.ConcurrentViewers,
			})
		}
	}

	upcoming, err := s.live.UpcomingSchedules(ctx, creators)
	if err != nil {
		s.log.Warn().Err(err).Msg("live schedule fetch failed")
		return events
	}
	return append(events, upcoming...)
}

// fetchCalendarEvents fans out one fetch per creator with a feed URL. A
// failure for one creator never aborts the others.
func (s *ScheduleService) fetchCalendarEvents(ctx context.Context, creators []domain.Creator, now time.Time) []domain.ScheduleEvent {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		events []domain.ScheduleEvent
	)

	for i := range creators {
		creator := creators[i]
		if creator.CalendarURL == "" {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			records, err := s.calendar.Events(ctx, creator.CalendarURL)
			if err != nil {
				s.log.Warn().Err(err).Str("creator", creator.ID).Msg("calendar fetch failed")
				return
			}

			author := creator
			var kept []domain.ScheduleEvent
			for _, r := range records {
				e := domain.ScheduleEvent{
					ID:          r.UID,
					Title:       r.Summary,
					StartTime:   r.Start,
					EndTime:     r.End,
					URL:         r.URL,
					Description: r.Description,
					Platform:    domain.PlatformCalendar,
					Author:      &author,
				}
				if withinRetention(e, now, s.policy.CalendarRetention) {
					kept = append(kept, e)
				}
			}

			mu.Lock()
			events = append(events, kept...)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return events
}

// mergeCalendar reconciles calendar events against the API-sourced ones.
// A calendar event matching a video-platform event is dropped and its end
// time patched onto the API record, which stays canonical. Unmatched
// calendar events are appended as-is; this is how platforms without API
// support still surface through a shared calendar.
//
// Patching builds a new record instead of mutating in place: overwriting
// the end time is a documented merge effect, not accidental aliasing.
func mergeCalendar(videoEvents, liveEvents, calendarItems []domain.ScheduleEvent) []domain.ScheduleEvent {
	merged := make([]domain.ScheduleEvent, 0, len(videoEvents)+len(liveEvents)+len(calendarItems))
	merged = append(merged, videoEvents...)
	merged = append(merged, liveEvents...)

	for _, calEvent := range calendarItems {
		matched := false
		for i := range merged {
			if merged[i].Platform != domain.PlatformYouTube {
				continue
			}
			if calendarMatch(calEvent, merged[i]) {
				merged[i] = merged[i].WithEndTime(*calEvent.EndTime)
				matched = true
				break
			}
		}
		if !matched {
			merged = append(merged, calEvent)
		}
	}
	return merged
}
