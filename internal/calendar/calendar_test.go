package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creatorwatch/internal/httpx"
	"creatorwatch/internal/retry"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Test//Test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:event-1@example.com\r\n" +
	"DTSTAMP:20260110T000000Z\r\n" +
	"DTSTART:20260115T200000Z\r\n" +
	"DTEND:20260115T223000Z\r\n" +
	"SUMMARY:Singing stream\r\n" +
	"DESCRIPTION:Karaoke night\r\n" +
	"URL:https://example.com/stream\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:event-2@example.com\r\n" +
	"DTSTAMP:20260110T000000Z\r\n" +
	"DTSTART:20260116T180000Z\r\n" +
	"SUMMARY:Chatting\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func testClient(server *httptest.Server) *httpx.Client {
	cfg := httpx.DefaultConfig()
	cfg.RPS = 0
	cfg.Retry = retry.Config{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 1}
	return httpx.NewWithHTTPClient(cfg, server.Client())
}

func TestFetcher_Events(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	f := NewFetcher(testClient(server))
	events, err := f.Events(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("Events() len = %d, want 2", len(events))
	}

	first := events[0]
	if first.UID != "event-1@example.com" {
		t.Errorf("UID = %q, want event-1@example.com", first.UID)
	}
	if first.Summary != "Singing stream" {
		t.Errorf("Summary = %q, want %q", first.Summary, "Singing stream")
	}
	wantStart := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	if !first.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", first.Start, wantStart)
	}
	if first.End == nil {
		t.Fatal("End = nil, want 22:30")
	}
	wantEnd := time.Date(2026, 1, 15, 22, 30, 0, 0, time.UTC)
	if !first.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", *first.End, wantEnd)
	}
	if first.URL != "https://example.com/stream" {
		t.Errorf("URL = %q, want https://example.com/stream", first.URL)
	}
	if first.Description != "Karaoke night" {
		t.Errorf("Description = %q, want %q", first.Description, "Karaoke night")
	}

	// Second event has no DTEND.
	if events[1].End != nil {
		t.Errorf("events[1].End = %v, want nil", events[1].End)
	}
}

func TestFetcher_Events_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(testClient(server))
	_, err := f.Events(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Events() error = nil, want error")
	}
}

func TestFetcher_Events_InvalidFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a calendar</html>"))
	}))
	defer server.Close()

	f := NewFetcher(testClient(server))
	_, err := f.Events(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Events() error = nil, want error")
	}
}
