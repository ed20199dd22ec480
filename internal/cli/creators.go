package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"creatorwatch/internal/domain"
	"creatorwatch/internal/httpx"
	"creatorwatch/internal/twitch"
	"creatorwatch/internal/youtube"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config and cache files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creators, err := a.creatorStore()
			if err != nil {
				return err
			}
			cache, err := a.cacheStore()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Creators:", creators.Path())
			fmt.Fprintln(cmd.OutOrStdout(), "Cache:   ", cache.Path())
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var creator domain.Creator

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a creator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if creator.Name == "" {
				return fmt.Errorf("--name required")
			}
			s, err := a.creatorStore()
			if err != nil {
				return err
			}
			if err := s.SaveCreator(creator); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", creator.Name)
			a.verifyChannels(cmd.Context(), cmd.OutOrStdout(), creator)
			return nil
		},
	}

	cmd.Flags().StringVarP(&creator.Name, "name", "n", "", "Display name (required)")
	cmd.Flags().StringVar(&creator.ID, "id", "", "Stable ID (defaults to a slug of the name)")
	cmd.Flags().StringVar(&creator.YouTubeChannelID, "youtube", "", "YouTube channel ID")
	cmd.Flags().StringVar(&creator.TwitchChannelID, "twitch", "", "Twitch channel login")
	cmd.Flags().StringVar(&creator.XUsername, "x", "", "X username")
	cmd.Flags().StringVar(&creator.CalendarURL, "calendar", "", "iCal feed URL")
	cmd.Flags().StringVar(&creator.Color, "color", "", "Display color")
	cmd.Flags().StringVar(&creator.Symbol, "symbol", "", "Display symbol")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// verifyChannels resolves the creator's channel IDs against the platform
// APIs when credentials are available. Best effort: lookup failures warn
// but never fail the add.
func (a *app) verifyChannels(ctx context.Context, out io.Writer, c domain.Creator) {
	httpClient := httpx.New(httpx.DefaultConfig())

	if c.YouTubeChannelID != "" {
		if key := a.youtubeAPIKey(); key != "" {
			yt, err := youtube.NewClient(ctx, key, httpClient, a.log)
			if err != nil {
				a.log.Warn().Err(err).Msg("youtube client")
			} else if info, err := yt.ChannelInfo(ctx, c.YouTubeChannelID); err != nil {
				a.log.Warn().Err(err).Str("channel", c.YouTubeChannelID).Msg("youtube lookup failed")
			} else if info == nil {
				fmt.Fprintf(out, "Warning: YouTube channel %s not found\n", c.YouTubeChannelID)
			} else {
				fmt.Fprintf(out, "YouTube: %s\n", info.Title)
			}
		}
	}

	if c.TwitchChannelID != "" {
		if id, secret := a.twitchCredentials(); id != "" && secret != "" {
			tw := twitch.NewClient(ctx, id, secret, a.log)
			if user, err := tw.ChannelInfo(ctx, c.TwitchChannelID); err != nil {
				a.log.Warn().Err(err).Str("channel", c.TwitchChannelID).Msg("twitch lookup failed")
			} else if user == nil {
				fmt.Fprintf(out, "Warning: Twitch channel %s not found\n", c.TwitchChannelID)
			} else {
				fmt.Fprintf(out, "Twitch: %s\n", user.DisplayName)
			}
		}
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a creator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.creatorStore()
			if err != nil {
				return err
			}
			if err := s.RemoveCreator(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered creators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.creatorStore()
			if err != nil {
				return err
			}
			creators := s.Creators()
			if len(creators) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No creators registered. Add one with: creatorwatch add --name ...")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tYOUTUBE\tTWITCH\tX\tCALENDAR")
			for _, c := range creators {
				calendar := ""
				if c.CalendarURL != "" {
					calendar = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.ID, displayName(c), c.YouTubeChannelID, c.TwitchChannelID, c.XUsername, calendar)
			}
			return w.Flush()
		},
	}
}

func newAuthCmd(a *app) *cobra.Command {
	var youtubeKey, twitchID, twitchSecret string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store API credentials",
		Long: "Store API credentials in the creator config file.\n" +
			"Environment variables (YOUTUBE_API_KEY, TWITCH_CLIENT_ID,\n" +
			"TWITCH_CLIENT_SECRET) take precedence over stored values.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if youtubeKey == "" && (twitchID == "" || twitchSecret == "") {
				return fmt.Errorf("nothing to store: pass --youtube-key or both --twitch-id and --twitch-secret")
			}
			s, err := a.creatorStore()
			if err != nil {
				return err
			}
			if youtubeKey != "" {
				if err := s.SetYouTubeAPIKey(youtubeKey); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stored YouTube API key")
			}
			if twitchID != "" && twitchSecret != "" {
				if err := s.SetTwitchCredentials(twitchID, twitchSecret); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stored Twitch credentials")
			}
			fmt.Fprintln(os.Stderr, "Note: credentials are stored in plain text at "+s.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&youtubeKey, "youtube-key", "", "YouTube Data API key")
	cmd.Flags().StringVar(&twitchID, "twitch-id", "", "Twitch application client ID")
	cmd.Flags().StringVar(&twitchSecret, "twitch-secret", "", "Twitch application client secret")
	return cmd
}
