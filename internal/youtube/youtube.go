// Package youtube is the video-platform adapter: upcoming/live streams via
// the quota-bearing Data API v3, and the lightweight Atom feed for recent
// activity. Raw API payloads are mapped into domain records at this edge;
// the engines never see upstream JSON or XML.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"creatorwatch/internal/domain"
	"creatorwatch/internal/httpx"
	"creatorwatch/internal/retry"
)

// Sentinel errors for adapter operations.
var (
	ErrChannelNotFound = errors.New("youtube: channel not found")
	ErrQuotaExceeded   = errors.New("youtube: quota exceeded")
	ErrNetworkTimeout  = errors.New("youtube: network timeout")
)

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="

	// Estimated daily quota, used only for logging.
	dailyQuota = 10000

	searchQuotaCost = 100
	listQuotaCost   = 1
)

// APIError wraps errors with context about the API operation.
type APIError struct {
	Op      string // "search", "videos", "channels"
	Channel string // Channel ID involved, if any
	Err     error
}

func (e *APIError) Error() string {
	msg := "youtube: " + e.Op
	if e.Channel != "" {
		msg += " " + e.Channel
	}
	return msg + ": " + e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }

// ChannelInfo is the subset of channel metadata the CLI needs.
type ChannelInfo struct {
	ID    string
	Title string
}

// Client wraps the YouTube Data API v3 service. All calls are quota-bearing;
// usage is tracked and logged so the operator can see burn rate.
type Client struct {
	service *youtube.Service
	feed    *FeedReader
	log     zerolog.Logger

	retryCfg retry.Config

	mu             sync.Mutex
	estimatedQuota int
	lastQuotaReset time.Time
}

// NewClient creates an API-backed client. The feed reader handles the
// non-quota activity path and may be shared with a feed-only setup.
func NewClient(ctx context.Context, apiKey string, httpClient *httpx.Client, log zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: api key required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		service:        service,
		feed:           NewFeedReader(httpClient, log),
		log:            log.With().Str("component", "youtube").Logger(),
		retryCfg:       retry.DefaultConfig(),
		estimatedQuota: dailyQuota,
		lastQuotaReset: time.Now(),
	}, nil
}

// UpcomingStreams returns scheduled future broadcasts for every creator
// with a YouTube channel. A failure for one channel is logged and skipped.
func (c *Client) UpcomingStreams(ctx context.Context, creators []domain.Creator) ([]domain.ScheduleEvent, error) {
	return c.streams(ctx, creators, "upcoming")
}

// LiveStreams returns broadcasts currently in progress, with live metrics.
func (c *Client) LiveStreams(ctx context.Context, creators []domain.Creator) ([]domain.ScheduleEvent, error) {
	return c.streams(ctx, creators, "live")
}

func (c *Client) streams(ctx context.Context, creators []domain.Creator, eventType string) ([]domain.ScheduleEvent, error) {
	var events []domain.ScheduleEvent

	for i := range creators {
		creator := &creators[i]
		if creator.YouTubeChannelID == "" {
			continue
		}

		ids, err := c.searchBroadcasts(ctx, creator.YouTubeChannelID, eventType)
		if err != nil {
			c.log.Warn().Err(err).Str("creator", creator.ID).
				Str("event_type", eventType).Msg("broadcast search failed")
			continue
		}
		if len(ids) == 0 {
			continue
		}

		videos, err := c.videosByID(ctx, ids)
		if err != nil {
			c.log.Warn().Err(err).Str("creator", creator.ID).Msg("video details failed")
			continue
		}

		for _, v := range videos {
			event, ok := broadcastToEvent(v, creator, eventType)
			if !ok {
				continue
			}
			events = append(events, event)
		}
	}

	return events, nil
}

// searchBroadcasts finds video IDs of broadcasts with the given event type.
func (c *Client) searchBroadcasts(ctx context.Context, channelID, eventType string) ([]string, error) {
	var ids []string

	err := retry.Do(ctx, c.retryCfg, apiErrorClassifier, func(ctx context.Context) error {
		call := c.service.Search.List([]string{"id"}).
			ChannelId(channelID).
			EventType(eventType).
			Type("video").
			Order("date").
			MaxResults(25).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			if ctx.Err() != nil {
				return ErrNetworkTimeout
			}
			return err
		}

		c.trackQuotaUsage(searchQuotaCost)

		ids = ids[:0]
		for _, item := range resp.Items {
			if item.Id != nil && item.Id.VideoId != "" {
				ids = append(ids, item.Id.VideoId)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &APIError{Op: "search", Channel: channelID, Err: err}
	}

	return ids, nil
}

// videosByID fetches full video resources for the given IDs (max 50).
func (c *Client) videosByID(ctx context.Context, ids []string) ([]*youtube.Video, error) {
	var videos []*youtube.Video

	err := retry.Do(ctx, c.retryCfg, apiErrorClassifier, func(ctx context.Context) error {
		call := c.service.Videos.List([]string{"snippet", "liveStreamingDetails", "statistics"}).
			Id(ids...).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			if ctx.Err() != nil {
				return ErrNetworkTimeout
			}
			return err
		}

		c.trackQuotaUsage(listQuotaCost)
		videos = resp.Items
		return nil
	})
	if err != nil {
		return nil, &APIError{Op: "videos", Err: err}
	}

	return videos, nil
}

// broadcastToEvent maps a video resource to a schedule event. Finished
// broadcasts and records without a usable start time are dropped.
func broadcastToEvent(v *youtube.Video, creator *domain.Creator, eventType string) (domain.ScheduleEvent, bool) {
	if v.LiveStreamingDetails == nil {
		return domain.ScheduleEvent{}, false
	}
	if v.LiveStreamingDetails.ActualEndTime != "" {
		return domain.ScheduleEvent{}, false
	}

	start := parseTimestamp(v.LiveStreamingDetails.ActualStartTime)
	if start.IsZero() {
		start = parseTimestamp(v.LiveStreamingDetails.ScheduledStartTime)
	}
	if start.IsZero() {
		return domain.ScheduleEvent{}, false
	}

	event := domain.ScheduleEvent{
		ID:        "youtube:" + v.Id,
		Title:     titleOf(v),
		StartTime: start,
		URL:       watchURLPrefix + v.Id,
		Platform:  domain.PlatformYouTube,
		Author:    creator,
		Status:    domain.StatusUpcoming,
	}
	if v.Snippet != nil {
		event.Description = v.Snippet.Description
	}

	if eventType == "live" {
		event.Status = domain.StatusLive
		event.ConcurrentViewers = int64(v.LiveStreamingDetails.ConcurrentViewers)
		if v.Statistics != nil {
			event.LikeCount = int64(v.Statistics.LikeCount)
		}
	}

	return event, true
}

func titleOf(v *youtube.Video) string {
	if v.Snippet == nil {
		return ""
	}
	return v.Snippet.Title
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ChannelInfo resolves a channel ID to its display metadata. Returns nil
// without error when the channel does not exist.
func (c *Client) ChannelInfo(ctx context.Context, channelID string) (*ChannelInfo, error) {
	var info *ChannelInfo

	err := retry.Do(ctx, c.retryCfg, apiErrorClassifier, func(ctx context.Context) error {
		call := c.service.Channels.List([]string{"snippet"}).
			Id(channelID).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			if ctx.Err() != nil {
				return ErrNetworkTimeout
			}
			return err
		}

		c.trackQuotaUsage(listQuotaCost)

		if len(resp.Items) == 0 {
			info = nil
			return nil
		}
		ch := resp.Items[0]
		info = &ChannelInfo{ID: ch.Id}
		if ch.Snippet != nil {
			info.Title = ch.Snippet.Title
		}
		return nil
	})
	if err != nil {
		return nil, &APIError{Op: "channels", Channel: channelID, Err: err}
	}

	return info, nil
}

// Activities delegates to the feed reader; the quota-bearing enrichment
// pass is separate so feed-only mode stays free.
func (c *Client) Activities(ctx context.Context, creators []domain.Creator) ([]domain.Activity, error) {
	return c.feed.Activities(ctx, creators)
}

// trackQuotaUsage updates the estimated remaining quota for logging.
func (c *Client) trackQuotaUsage(units int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Reset quota if a day has passed
	if time.Since(c.lastQuotaReset) > 24*time.Hour {
		c.estimatedQuota = dailyQuota
		c.lastQuotaReset = time.Now()
		c.log.Info().Msg("quota reset (new day)")
	}

	c.estimatedQuota -= units
	c.log.Debug().Int("remaining", c.estimatedQuota).Int("cost", units).Msg("quota usage")

	if c.estimatedQuota <= 0 {
		c.log.Warn().Int("remaining", c.estimatedQuota).Msg("estimated quota exhausted")
	}
}

// apiErrorClassifier determines if an API error is retryable.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrChannelNotFound) {
		return false
	}

	// Quota exhaustion does not recover within a single invocation.
	if strings.Contains(err.Error(), "quotaExceeded") {
		return false
	}
	if strings.Contains(err.Error(), "rateLimitExceeded") {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return true
}
