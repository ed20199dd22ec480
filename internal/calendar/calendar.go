// Package calendar fetches and parses iCal feeds into raw event records.
// The adapter owns wire-format concerns only; all display filtering and
// merge policy stays in the aggregation engine.
package calendar

import (
	"bytes"
	"context"
	"errors"
	"time"

	ics "github.com/arran4/golang-ical"

	"creatorwatch/internal/httpx"
)

// ErrInvalidFeed indicates the fetched document is not a parseable calendar.
var ErrInvalidFeed = errors.New("calendar: invalid feed")

// Event is a raw calendar record. End is nil when the feed gives no DTEND.
type Event struct {
	UID         string
	Summary     string
	Start       time.Time
	End         *time.Time
	URL         string
	Description string
}

// FeedError wraps errors with context about the feed being fetched.
type FeedError struct {
	FeedURL string
	Err     error
}

func (e *FeedError) Error() string {
	return "calendar: fetch " + e.FeedURL + ": " + e.Err.Error()
}

func (e *FeedError) Unwrap() error { return e.Err }

// Fetcher retrieves iCal feeds over HTTP.
type Fetcher struct {
	client *httpx.Client
}

// NewFetcher creates a fetcher using the shared HTTP client.
func NewFetcher(client *httpx.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Events fetches the feed at feedURL and returns its VEVENT records.
// Records the parser cannot time-resolve are skipped rather than failing
// the whole feed.
func (f *Fetcher) Events(ctx context.Context, feedURL string) ([]Event, error) {
	body, err := f.client.Get(ctx, feedURL)
	if err != nil {
		return nil, &FeedError{FeedURL: feedURL, Err: err}
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, &FeedError{FeedURL: feedURL, Err: ErrInvalidFeed}
	}

	var events []Event
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			continue
		}

		event := Event{
			UID:         ve.Id(),
			Summary:     propValue(ve, ics.ComponentPropertySummary),
			Start:       start,
			URL:         propValue(ve, ics.ComponentProperty(ics.PropertyUrl)),
			Description: propValue(ve, ics.ComponentPropertyDescription),
		}

		if end, err := ve.GetEndAt(); err == nil {
			event.End = &end
		}

		events = append(events, event)
	}

	return events, nil
}

func propValue(ve *ics.VEvent, prop ics.ComponentProperty) string {
	p := ve.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}
