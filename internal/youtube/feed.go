package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"creatorwatch/internal/domain"
	"creatorwatch/internal/httpx"
)

const feedURLTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// FeedReader fetches recent activity from YouTube's Atom feeds. Feeds only
// return the ~15 most recent uploads and carry no live/upcoming status, so
// results are best-effort until enriched through the Data API.
type FeedReader struct {
	client *httpx.Client
	log    zerolog.Logger
}

// NewFeedReader creates a feed-based activity reader.
func NewFeedReader(client *httpx.Client, log zerolog.Logger) *FeedReader {
	return &FeedReader{
		client: client,
		log:    log.With().Str("component", "youtube-feed").Logger(),
	}
}

// Activities fetches each creator's feed concurrently. A failing feed is
// logged and contributes nothing; the call never fails as a whole.
func (f *FeedReader) Activities(ctx context.Context, creators []domain.Creator) ([]domain.Activity, error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []domain.Activity
	)

	for i := range creators {
		creator := &creators[i]
		if creator.YouTubeChannelID == "" {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			activities, err := f.creatorActivities(ctx, creator)
			if err != nil {
				f.log.Warn().Err(err).Str("creator", creator.ID).Msg("feed fetch failed")
				return
			}

			mu.Lock()
			results = append(results, activities...)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results, nil
}

func (f *FeedReader) creatorActivities(ctx context.Context, creator *domain.Creator) ([]domain.Activity, error) {
	feedURL := fmt.Sprintf(feedURLTemplate, creator.YouTubeChannelID)

	body, err := f.client.Get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := parseAtomFeed(body)
	if err != nil {
		return nil, err
	}

	activities := make([]domain.Activity, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if entry.VideoID == "" {
			continue
		}
		activities = append(activities, domain.Activity{
			ID:           "youtube:" + entry.VideoID,
			Title:        entry.Title,
			URL:          watchURLPrefix + entry.VideoID,
			Platform:     domain.PlatformYouTube,
			Type:         domain.ActivityVideo, // Feeds don't distinguish live from video
			Timestamp:    entry.Published,
			ThumbnailURL: entry.Thumbnail.URL,
			Description:  entry.Description,
			Author:       creator,
			Views:        entry.Community.Views.Views,
		})
	}
	return activities, nil
}

// --- Atom feed wire format ---

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Author  atomAuthor  `xml:"author"`
	Entries []atomEntry `xml:"entry"`
}

type atomAuthor struct {
	Name string `xml:"name"`
	URI  string `xml:"uri"`
}

type atomEntry struct {
	ID          string        `xml:"id"`
	VideoID     string        `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID   string        `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Title       string        `xml:"title"`
	Published   time.Time     `xml:"published"`
	Updated     time.Time     `xml:"updated"`
	Description string        `xml:"group>description"`
	Thumbnail   atomThumbnail `xml:"group>thumbnail"`
	Community   atomCommunity `xml:"group>community"`
}

type atomThumbnail struct {
	URL    string `xml:"url,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

type atomCommunity struct {
	Views atomViews `xml:"http://search.yahoo.com/mrss/ statistics"`
}

type atomViews struct {
	Views int64 `xml:"views,attr"`
}

// parseAtomFeed parses YouTube's Atom XML feed.
func parseAtomFeed(data []byte) (*atomFeed, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}
	return &feed, nil
}
