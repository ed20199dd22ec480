package twitch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"creatorwatch/internal/domain"
)

var testCreators = []domain.Creator{
	{ID: "letora", Name: "Letora", TwitchChannelID: "utagawaletora"},
	{ID: "no_twitch", Name: "No Twitch"},
}

func newHelixServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Client-ID") != "test-client" {
			t.Errorf("Client-ID = %q, want test-client", r.Header.Get("Client-ID"))
		}
		if r.URL.Query().Get("login") != "utagawaletora" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		w.Write([]byte(`{"data":[{"id":"12345","login":"utagawaletora","display_name":"Letora"}]}`))
	})

	mux.HandleFunc("/streams", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query()["user_login"]; len(got) != 1 || got[0] != "utagawaletora" {
			t.Errorf("user_login = %v, want [utagawaletora]", got)
		}
		w.Write([]byte(`{"data":[{
			"id":"999","user_id":"12345","user_login":"utagawaletora","user_name":"Letora",
			"game_name":"Minecraft","type":"live","title":"building",
			"viewer_count":42,"started_at":"2026-01-15T20:00:00Z",
			"thumbnail_url":"https://cdn.example/{width}x{height}.jpg"}]}`))
	})

	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("broadcaster_id") != "12345" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":{"segments":[
			{"id":"seg1","start_time":"2026-01-16T20:00:00Z","end_time":"2026-01-16T22:00:00Z",
			 "title":"weekly stream","canceled_until":null,"category":{"id":"1","name":"Music"},"is_recurring":true},
			{"id":"seg2","start_time":"2026-01-17T20:00:00Z","end_time":"2026-01-17T22:00:00Z",
			 "title":"canceled stream","canceled_until":"2026-01-17T20:00:00Z","category":null,"is_recurring":true}
		]},"pagination":{}}`))
	})

	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "archive" {
			t.Errorf("type = %q, want archive", r.URL.Query().Get("type"))
		}
		w.Write([]byte(`{"data":[{
			"id":"v1","user_id":"12345","user_login":"utagawaletora","title":"past stream",
			"description":"", "created_at":"2026-01-10T20:00:00Z","url":"https://www.twitch.tv/videos/v1",
			"thumbnail_url":"https://cdn.example/%{width}x%{height}.jpg","view_count":1234,"type":"archive","duration":"2h1m2s"}]}`))
	})

	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return NewClientWithHTTP("test-client", server.Client(), server.URL, zerolog.Nop())
}

func TestClient_LiveStreams(t *testing.T) {
	server := newHelixServer(t)
	defer server.Close()
	c := newTestClient(t, server)

	activities, err := c.LiveStreams(context.Background(), testCreators)
	if err != nil {
		t.Fatalf("LiveStreams() error = %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("LiveStreams() len = %d, want 1", len(activities))
	}

	a := activities[0]
	if a.ID != "twitch:999" {
		t.Errorf("ID = %q, want twitch:999", a.ID)
	}
	if a.Type != domain.ActivityLive {
		t.Errorf("Type = %q, want live", a.Type)
	}
	if a.ConcurrentViewers != 42 {
		t.Errorf("ConcurrentViewers = %d, want 42", a.ConcurrentViewers)
	}
	if a.Author == nil || a.Author.ID != "letora" {
		t.Errorf("Author = %+v, want letora", a.Author)
	}
	if a.ThumbnailURL != "https://cdn.example/320x180.jpg" {
		t.Errorf("ThumbnailURL = %q, want sized URL", a.ThumbnailURL)
	}
	if a.Description != "Playing Minecraft" {
		t.Errorf("Description = %q, want Playing Minecraft", a.Description)
	}
	wantStart := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	if !a.Timestamp.Equal(wantStart) {
		t.Errorf("Timestamp = %v, want %v", a.Timestamp, wantStart)
	}
}

func TestClient_LiveStreams_NoTwitchCreators(t *testing.T) {
	server := newHelixServer(t)
	defer server.Close()
	c := newTestClient(t, server)

	activities, err := c.LiveStreams(context.Background(), []domain.Creator{{ID: "a", Name: "A"}})
	if err != nil {
		t.Fatalf("LiveStreams() error = %v", err)
	}
	if len(activities) != 0 {
		t.Errorf("LiveStreams() len = %d, want 0", len(activities))
	}
}

func TestClient_UpcomingSchedules_SkipsCanceled(t *testing.T) {
	server := newHelixServer(t)
	defer server.Close()
	c := newTestClient(t, server)

	events, err := c.UpcomingSchedules(context.Background(), testCreators)
	if err != nil {
		t.Fatalf("UpcomingSchedules() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("UpcomingSchedules() len = %d, want 1 (canceled segment skipped)", len(events))
	}

	e := events[0]
	if e.ID != "twitch:schedule:seg1" {
		t.Errorf("ID = %q, want twitch:schedule:seg1", e.ID)
	}
	if e.Status != domain.StatusUpcoming {
		t.Errorf("Status = %q, want upcoming", e.Status)
	}
	if e.EndTime == nil || !e.EndTime.Equal(time.Date(2026, 1, 16, 22, 0, 0, 0, time.UTC)) {
		t.Errorf("EndTime = %v, want 2026-01-16T22:00:00Z", e.EndTime)
	}
	if e.Description != "Category: Music" {
		t.Errorf("Description = %q, want Category: Music", e.Description)
	}
}

func TestClient_UpcomingSchedules_NoScheduleIs404(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"55","login":"utagawaletora","display_name":"Letora"}]}`))
	})
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	c := newTestClient(t, server)

	events, err := c.UpcomingSchedules(context.Background(), testCreators)
	if err != nil {
		t.Fatalf("UpcomingSchedules() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("UpcomingSchedules() len = %d, want 0", len(events))
	}
}

func TestClient_RecentVideos(t *testing.T) {
	server := newHelixServer(t)
	defer server.Close()
	c := newTestClient(t, server)

	activities, err := c.RecentVideos(context.Background(), testCreators)
	if err != nil {
		t.Fatalf("RecentVideos() error = %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("RecentVideos() len = %d, want 1", len(activities))
	}

	a := activities[0]
	if a.ID != "twitch:video:v1" {
		t.Errorf("ID = %q, want twitch:video:v1", a.ID)
	}
	if a.Type != domain.ActivityVideo {
		t.Errorf("Type = %q, want video", a.Type)
	}
	if a.Views != 1234 {
		t.Errorf("Views = %d, want 1234", a.Views)
	}
	if a.ThumbnailURL != "https://cdn.example/320x180.jpg" {
		t.Errorf("ThumbnailURL = %q, want sized URL", a.ThumbnailURL)
	}
}

func TestClient_ChannelInfo_Missing(t *testing.T) {
	server := newHelixServer(t)
	defer server.Close()
	c := newTestClient(t, server)

	user, err := c.ChannelInfo(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ChannelInfo() error = %v", err)
	}
	if user != nil {
		t.Errorf("ChannelInfo() = %+v, want nil", user)
	}
}
