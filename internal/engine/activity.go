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

// ActivityService aggregates recent creator activity: feed entries from
// the video platform, optionally archives from the live platform, with
// optional API enrichment of feed entries.
//
// A nil enricher or archive source is a supported degraded mode.
type ActivityService struct {
	cache   CacheStore
	feed    FeedSource
	enrich  Enricher
	archive ArchiveSource
	policy  config.Policy
	log     zerolog.Logger

	now func() time.Time
}

// NewActivityService constructs the engine with explicit dependencies.
func NewActivityService(cache CacheStore, feed FeedSource, enrich Enricher, archive ArchiveSource, policy config.Policy, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		cache:   cache,
		feed:    feed,
		enrich:  enrich,
		archive: archive,
		policy:  policy,
		log:     log.With().Str("component", "activity").Logger(),
		now:     time.Now,
	}
}

// GetActivities returns the creators' recent activities, newest first.
// Per-source failures degrade to partial or unenriched results; the call
// itself only reflects the degradation in the logs.
func (s *ActivityService) GetActivities(ctx context.Context, creators []domain.Creator, forceRefresh bool) ([]domain.Activity, error) {
	now := s.now()

	if !forceRefresh {
		var cached []domain.Activity
		if writtenAt, ok := s.cache.Get(CacheKeyActivities, &cached); ok && sameCalendarDay(writtenAt, now) {
			return cached, nil
		}
	}

	var (
		wg        sync.WaitGroup
		feedItems []domain.Activity
		archives  []domain.Activity
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		items, err := s.feed.Activities(ctx, creators)
		if err != nil {
			s.log.Warn().Err(err).Msg("feed fetch failed")
			return
		}
		feedItems = items
	}()

	if s.archive != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := s.archive.RecentVideos(ctx, creators)
			if err != nil {
				s.log.Warn().Err(err).Msg("archive fetch failed")
				return
			}
			archives = items
		}()
	}

	wg.Wait()

	if s.enrich != nil && len(feedItems) > 0 {
		enriched, err := s.enrich.EnrichActivities(ctx, feedItems, s.policy.EnrichBatchSize)
		if err != nil {
			// Feed data alone is presentable; enrichment only adds detail.
			s.log.Warn().Err(err).Msg("enrichment failed, keeping feed data")
		} else {
			feedItems = enriched
		}
	}

	activities := append(feedItems, archives...)
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})

	if err := s.cache.Set(CacheKeyActivities, activities); err != nil {
		s.log.Warn().Err(err).Str("key", CacheKeyActivities).Msg("cache write failed")
	}
	return activities, nil
}
