// Package twitch is the live-streaming-platform adapter over the Helix API.
// Authentication uses the OAuth2 client-credentials flow; responses are
// decoded into typed records at this edge.
package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"
	twitchoauth "golang.org/x/oauth2/twitch"

	"creatorwatch/internal/domain"
)

const defaultBaseURL = "https://api.twitch.tv/helix"

// streamsChunkSize is the Helix limit on logins per /streams request.
const streamsChunkSize = 100

// ErrNotFound indicates the requested resource does not exist. The schedule
// endpoint answers 404 for channels that never set one up; callers treat
// that as an empty schedule, not a failure.
var ErrNotFound = errors.New("twitch: not found")

// APIError wraps errors with context about the Helix call.
type APIError struct {
	Endpoint string
	Err      error
}

func (e *APIError) Error() string {
	return "twitch: " + e.Endpoint + ": " + e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }

// User is a Helix user record.
type User struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

type stream struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	UserLogin    string `json:"user_login"`
	UserName     string `json:"user_name"`
	GameName     string `json:"game_name"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	ViewerCount  int64  `json:"viewer_count"`
	StartedAt    string `json:"started_at"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type scheduleSegment struct {
	ID            string  `json:"id"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Title         string  `json:"title"`
	CanceledUntil *string `json:"canceled_until"`
	Category      *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
	IsRecurring bool `json:"is_recurring"`
}

type video struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	UserLogin    string `json:"user_login"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	ViewCount    int64  `json:"view_count"`
	Type         string `json:"type"`
	Duration     string `json:"duration"`
}

// Client talks to the Helix API.
type Client struct {
	clientID string
	http     *http.Client
	baseURL  string
	log      zerolog.Logger

	// ScheduleDepth is the number of schedule segments requested per channel.
	ScheduleDepth int

	// RecentVideoCount is the number of archive videos requested per channel.
	RecentVideoCount int
}

// NewClient creates a Helix client using the client-credentials grant.
// Tokens are fetched lazily and refreshed by the oauth2 transport.
func NewClient(ctx context.Context, clientID, clientSecret string, log zerolog.Logger) *Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     twitchoauth.Endpoint.TokenURL,
	}

	return &Client{
		clientID:         clientID,
		http:             cfg.Client(ctx),
		baseURL:          defaultBaseURL,
		log:              log.With().Str("component", "twitch").Logger(),
		ScheduleDepth:    10,
		RecentVideoCount: 5,
	}
}

// NewClientWithHTTP creates a client over a pre-authenticated HTTP client
// and base URL. Used by tests.
func NewClientWithHTTP(clientID string, httpClient *http.Client, baseURL string, log zerolog.Logger) *Client {
	return &Client{
		clientID:         clientID,
		http:             httpClient,
		baseURL:          strings.TrimSuffix(baseURL, "/"),
		log:              log.With().Str("component", "twitch").Logger(),
		ScheduleDepth:    10,
		RecentVideoCount: 5,
	}
}

// get performs a Helix GET and decodes the response into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Client-ID", c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return &APIError{Endpoint: endpoint, Err: ErrNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &APIError{Endpoint: endpoint, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// ChannelInfo resolves a login name to its user record. Returns nil without
// error when no such user exists.
func (c *Client) ChannelInfo(ctx context.Context, login string) (*User, error) {
	var resp struct {
		Data []User `json:"data"`
	}
	params := url.Values{"login": {login}}
	if err := c.get(ctx, "/users", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

// LiveStreams returns the currently-live streams for every creator with a
// Twitch channel, as activities.
func (c *Client) LiveStreams(ctx context.Context, creators []domain.Creator) ([]domain.Activity, error) {
	var logins []string
	for _, creator := range creators {
		if creator.TwitchChannelID != "" {
			logins = append(logins, creator.TwitchChannelID)
		}
	}
	if len(logins) == 0 {
		return nil, nil
	}

	var streams []stream
	for start := 0; start < len(logins); start += streamsChunkSize {
		end := start + streamsChunkSize
		if end > len(logins) {
			end = len(logins)
		}

		params := url.Values{}
		for _, login := range logins[start:end] {
			params.Add("user_login", login)
		}

		var resp struct {
			Data []stream `json:"data"`
		}
		if err := c.get(ctx, "/streams", params, &resp); err != nil {
			return nil, err
		}
		streams = append(streams, resp.Data...)
	}

	activities := make([]domain.Activity, 0, len(streams))
	for _, s := range streams {
		creator := matchCreator(creators, s.UserLogin, s.UserID)

		description := "Live Stream"
		if s.GameName != "" {
			description = "Playing " + s.GameName
		}

		activities = append(activities, domain.Activity{
			ID:                "twitch:" + s.ID,
			Title:             s.Title,
			URL:               "https://www.twitch.tv/" + s.UserLogin,
			Platform:          domain.PlatformTwitch,
			Type:              domain.ActivityLive,
			Timestamp:         parseTime(s.StartedAt),
			ThumbnailURL:      thumbnailURL(s.ThumbnailURL),
			Description:       description,
			Author:            creator,
			ConcurrentViewers: s.ViewerCount,
		})
	}
	return activities, nil
}

// UpcomingSchedules returns non-canceled schedule segments for every
// creator with a Twitch channel, ascending by start time. A channel without
// a schedule contributes nothing.
func (c *Client) UpcomingSchedules(ctx context.Context, creators []domain.Creator) ([]domain.ScheduleEvent, error) {
	var events []domain.ScheduleEvent

	for i := range creators {
		creator := &creators[i]
		if creator.TwitchChannelID == "" {
			continue
		}

		user, err := c.ChannelInfo(ctx, creator.TwitchChannelID)
		if err != nil {
			c.log.Warn().Err(err).Str("creator", creator.ID).Msg("user lookup failed")
			continue
		}
		if user == nil {
			continue
		}

		var resp struct {
			Data struct {
				Segments []scheduleSegment `json:"segments"`
			} `json:"data"`
		}
		params := url.Values{
			"broadcaster_id": {user.ID},
			"first":          {strconv.Itoa(c.ScheduleDepth)},
		}
		if err := c.get(ctx, "/schedule", params, &resp); err != nil {
			// No schedule configured is a normal state.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			c.log.Warn().Err(err).Str("creator", creator.ID).Msg("schedule fetch failed")
			continue
		}

		for _, segment := range resp.Data.Segments {
			if segment.CanceledUntil != nil && *segment.CanceledUntil != "" {
				continue
			}

			event := domain.ScheduleEvent{
				ID:        "twitch:schedule:" + segment.ID,
				Title:     segment.Title,
				StartTime: parseTime(segment.StartTime),
				URL:       "https://www.twitch.tv/" + creator.TwitchChannelID,
				Platform:  domain.PlatformTwitch,
				Author:    creator,
				Status:    domain.StatusUpcoming,
			}
			if end := parseTime(segment.EndTime); !end.IsZero() {
				event.EndTime = &end
			}
			if segment.Category != nil {
				event.Description = "Category: " + segment.Category.Name
			}
			events = append(events, event)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

// RecentVideos returns recent past broadcasts (archives) for every creator
// with a Twitch channel, most recent first.
func (c *Client) RecentVideos(ctx context.Context, creators []domain.Creator) ([]domain.Activity, error) {
	var activities []domain.Activity

	for i := range creators {
		creator := &creators[i]
		if creator.TwitchChannelID == "" {
			continue
		}

		user, err := c.ChannelInfo(ctx, creator.TwitchChannelID)
		if err != nil {
			c.log.Warn().Err(err).Str("creator", creator.ID).Msg("user lookup failed")
			continue
		}
		if user == nil {
			continue
		}

		var resp struct {
			Data []video `json:"data"`
		}
		params := url.Values{
			"user_id": {user.ID},
			"type":    {"archive"},
			"first":   {strconv.Itoa(c.RecentVideoCount)},
		}
		if err := c.get(ctx, "/videos", params, &resp); err != nil {
			c.log.Warn().Err(err).Str("creator", creator.ID).Msg("videos fetch failed")
			continue
		}

		for _, v := range resp.Data {
			activities = append(activities, domain.Activity{
				ID:           "twitch:video:" + v.ID,
				Title:        v.Title,
				URL:          v.URL,
				Platform:     domain.PlatformTwitch,
				Type:         domain.ActivityVideo,
				Timestamp:    parseTime(v.CreatedAt),
				ThumbnailURL: thumbnailURL(v.ThumbnailURL),
				Description:  v.Description,
				Author:       creator,
				Views:        v.ViewCount,
			})
		}
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})
	return activities, nil
}

func matchCreator(creators []domain.Creator, login, userID string) *domain.Creator {
	for i := range creators {
		c := &creators[i]
		if strings.EqualFold(c.TwitchChannelID, login) || c.TwitchChannelID == userID {
			return c
		}
	}
	return nil
}

// thumbnailURL fills Helix thumbnail size templates. Stream thumbnails use
// {width}x{height}, VOD thumbnails use %{width}x%{height}.
func thumbnailURL(tmpl string) string {
	r := strings.NewReplacer(
		"%{width}", "320", "%{height}", "180",
		"{width}", "320", "{height}", "180",
	)
	return r.Replace(tmpl)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
