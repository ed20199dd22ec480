// Package cli implements the creatorwatch command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"creatorwatch/internal/calendar"
	"creatorwatch/internal/config"
	"creatorwatch/internal/engine"
	"creatorwatch/internal/httpx"
	"creatorwatch/internal/store"
	"creatorwatch/internal/twitch"
	"creatorwatch/internal/youtube"
)

// app carries the shared state the subcommands need. Stores and engines
// are opened lazily so commands like "list" never touch the network.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	creators *store.ConfigStore
	cache    *store.Cache
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "creatorwatch",
		Short:         "Track online creators' schedules and activities",
		Long:          "creatorwatch aggregates upcoming streams and recent activity\nfor a personal list of creators across YouTube, Twitch and shared calendars.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	rootCmd.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newAuthCmd(a),
		newScheduleCmd(a),
		newCheckCmd(a),
		newRefreshCmd(a),
	)
	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func (a *app) close() {
	if a.creators != nil {
		if err := a.creators.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing creator store")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing cache")
		}
	}
}

func (a *app) creatorStore() (*store.ConfigStore, error) {
	if a.creators != nil {
		return a.creators, nil
	}
	s, err := store.NewConfigStore(a.cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	a.creators = s
	return s, nil
}

func (a *app) cacheStore() (*store.Cache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	c, err := store.NewCache(a.cfg.CacheFile)
	if err != nil {
		return nil, err
	}
	a.cache = c
	return c, nil
}

// youtubeAPIKey resolves the API key: environment and config file win,
// the creator store value is the fallback.
func (a *app) youtubeAPIKey() string {
	if a.cfg.YouTubeAPIKey != "" {
		return a.cfg.YouTubeAPIKey
	}
	if a.creators != nil {
		return a.creators.YouTubeAPIKey()
	}
	return ""
}

func (a *app) twitchCredentials() (string, string) {
	if a.cfg.TwitchClientID != "" && a.cfg.TwitchClientSecret != "" {
		return a.cfg.TwitchClientID, a.cfg.TwitchClientSecret
	}
	if a.creators != nil {
		return a.creators.TwitchCredentials()
	}
	return "", ""
}

// engines wires the source adapters and both engines from the current
// credentials. Missing credentials disable the corresponding sources.
func (a *app) engines(ctx context.Context) (*engine.ScheduleService, *engine.ActivityService, error) {
	cache, err := a.cacheStore()
	if err != nil {
		return nil, nil, err
	}

	httpClient := httpx.New(httpx.DefaultConfig())
	calFetcher := calendar.NewFetcher(httpClient)

	var (
		video    engine.VideoSource
		feed     engine.FeedSource
		enricher engine.Enricher
		live     engine.LiveSource
		archive  engine.ArchiveSource
	)

	feed = youtube.NewFeedReader(httpClient, a.log)

	if key := a.youtubeAPIKey(); key != "" {
		yt, err := youtube.NewClient(ctx, key, httpClient, a.log)
		if err != nil {
			return nil, nil, fmt.Errorf("youtube client: %w", err)
		}
		video = yt
		enricher = yt
		feed = yt
	}

	if id, secret := a.twitchCredentials(); id != "" && secret != "" {
		tw := twitch.NewClient(ctx, id, secret, a.log)
		tw.ScheduleDepth = a.cfg.Policy.ScheduleDepth
		tw.RecentVideoCount = a.cfg.Policy.RecentVideoCount
		live = tw
		archive = tw
	}

	schedules := engine.NewScheduleService(cache, calFetcher, video, live, a.cfg.Policy, a.log)
	activities := engine.NewActivityService(cache, feed, enricher, archive, a.cfg.Policy, a.log)
	return schedules, activities, nil
}

func queryFromArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
