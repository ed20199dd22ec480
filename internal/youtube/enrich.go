package youtube

import (
	"context"
	"strings"

	"google.golang.org/api/youtube/v3"

	"creatorwatch/internal/domain"
)

const defaultEnrichBatch = 50

// EnrichActivities augments feed activities with authoritative per-video
// details: official view and like counts, live status with concurrent
// viewers, and a corrected timestamp (actual start preferred over scheduled
// start over the feed's published time). IDs are matched with the source
// prefix stripped. Items without a matching detail pass through unchanged.
//
// batchSize caps IDs per request; values outside 1..50 use the API maximum.
func (c *Client) EnrichActivities(ctx context.Context, items []domain.Activity, batchSize int) ([]domain.Activity, error) {
	if len(items) == 0 {
		return items, nil
	}
	if batchSize <= 0 || batchSize > defaultEnrichBatch {
		batchSize = defaultEnrichBatch
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Platform != domain.PlatformYouTube {
			continue
		}
		ids = append(ids, strings.TrimPrefix(item.ID, "youtube:"))
	}
	if len(ids) == 0 {
		return items, nil
	}

	details := make(map[string]enrichDetail, len(ids))
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		videos, err := c.videosByID(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, v := range videos {
			details[v.Id] = detailOf(v)
		}
	}

	out := make([]domain.Activity, len(items))
	for i, item := range items {
		detail, ok := details[strings.TrimPrefix(item.ID, "youtube:")]
		if !ok {
			out[i] = item
			continue
		}
		out[i] = detail.apply(item)
	}
	return out, nil
}

// enrichDetail is the per-video correction extracted from the API.
type enrichDetail struct {
	views             int64
	likes             int64
	live              bool
	upcoming          bool
	concurrentViewers int64
	timestamp         string // RFC3339, empty to keep the feed's value
}

func detailOf(v *youtube.Video) enrichDetail {
	var d enrichDetail

	if v.Statistics != nil {
		d.views = int64(v.Statistics.ViewCount)
		d.likes = int64(v.Statistics.LikeCount)
	}
	if v.Snippet != nil {
		d.live = v.Snippet.LiveBroadcastContent == "live"
		d.upcoming = v.Snippet.LiveBroadcastContent == "upcoming"
	}
	if v.LiveStreamingDetails != nil {
		d.concurrentViewers = int64(v.LiveStreamingDetails.ConcurrentViewers)
		if v.LiveStreamingDetails.ActualStartTime != "" {
			d.timestamp = v.LiveStreamingDetails.ActualStartTime
		} else if v.LiveStreamingDetails.ScheduledStartTime != "" {
			d.timestamp = v.LiveStreamingDetails.ScheduledStartTime
		}
	}
	return d
}

func (d enrichDetail) apply(item domain.Activity) domain.Activity {
	item.Views = d.views
	item.LikeCount = d.likes

	switch {
	case d.live:
		item.Type = domain.ActivityLive
		item.ConcurrentViewers = d.concurrentViewers
	case d.upcoming:
		// Scheduled premieres stay in the feed as plain videos.
		item.Type = domain.ActivityVideo
	default:
		item.Type = domain.ActivityVideo
	}

	if ts := parseTimestamp(d.timestamp); !ts.IsZero() {
		item.Timestamp = ts
	}
	return item
}
