package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"creatorwatch/internal/domain"
	"creatorwatch/internal/engine"
)

func newScheduleCmd(a *app) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "schedule [query]",
		Short: "Show upcoming and live events",
		Long: "Show upcoming and live events for all creators, or only those\n" +
			"matching the query (name, ID or handle; multiple words must all match).",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creators, err := a.loadCreators()
			if err != nil {
				return err
			}

			schedules, _, err := a.engines(cmd.Context())
			if err != nil {
				return err
			}

			events, err := schedules.GetSchedules(cmd.Context(), creators, refresh)
			if err != nil {
				return err
			}

			if query := queryFromArgs(args); query != "" {
				selected := domain.FilterCreators(creators, query)
				events = eventsForCreators(events, selected)
			}
			return renderSchedule(cmd.OutOrStdout(), events)
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the daily cache")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var refresh bool
	var limit int

	cmd := &cobra.Command{
		Use:   "check [query]",
		Short: "Show recent creator activity",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creators, err := a.loadCreators()
			if err != nil {
				return err
			}

			_, activities, err := a.engines(cmd.Context())
			if err != nil {
				return err
			}

			items, err := activities.GetActivities(cmd.Context(), creators, refresh)
			if err != nil {
				return err
			}

			if query := queryFromArgs(args); query != "" {
				selected := domain.FilterCreators(creators, query)
				items = activitiesForCreators(items, selected)
			}
			if limit > 0 && len(items) > limit {
				items = items[:limit]
			}
			return renderActivities(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the daily cache")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum rows to show (0 = all)")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	var clearOnly bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refetch schedules and activities, replacing the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearOnly {
				cache, err := a.cacheStore()
				if err != nil {
					return err
				}
				for _, key := range []string{engine.CacheKeySchedules, engine.CacheKeySchedulesAPI, engine.CacheKeyActivities} {
					if err := cache.Clear(key); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
				return nil
			}

			creators, err := a.loadCreators()
			if err != nil {
				return err
			}

			schedules, activities, err := a.engines(cmd.Context())
			if err != nil {
				return err
			}

			events, err := schedules.GetSchedules(cmd.Context(), creators, true)
			if err != nil {
				return err
			}
			items, err := activities.GetActivities(cmd.Context(), creators, true)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed: %d events, %d activities\n", len(events), len(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearOnly, "clear", false, "Only clear the cache, without refetching")
	return cmd
}

func (a *app) loadCreators() ([]domain.Creator, error) {
	s, err := a.creatorStore()
	if err != nil {
		return nil, err
	}
	creators := s.Creators()
	if len(creators) == 0 {
		return nil, fmt.Errorf("no creators registered; add one with: creatorwatch add --name ...")
	}
	return creators, nil
}

// eventsForCreators keeps events whose author is in the selected set. The
// engines always run over the full creator list so the daily cache stays
// valid for unfiltered calls; the query narrows display only.
func eventsForCreators(events []domain.ScheduleEvent, selected []domain.Creator) []domain.ScheduleEvent {
	ids := make(map[string]bool, len(selected))
	for _, c := range selected {
		ids[c.ID] = true
	}
	out := make([]domain.ScheduleEvent, 0, len(events))
	for _, e := range events {
		if e.Author != nil && ids[e.Author.ID] {
			out = append(out, e)
		}
	}
	return out
}

func activitiesForCreators(items []domain.Activity, selected []domain.Creator) []domain.Activity {
	ids := make(map[string]bool, len(selected))
	for _, c := range selected {
		ids[c.ID] = true
	}
	out := make([]domain.Activity, 0, len(items))
	for _, a := range items {
		if a.Author != nil && ids[a.Author.ID] {
			out = append(out, a)
		}
	}
	return out
}
