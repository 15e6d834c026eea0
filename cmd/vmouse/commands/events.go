package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/vmouse/internal/store"
)

var (
	flagLimit     int
	flagOlderThan time.Duration
)

// eventsCmd lists recent gesture events
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent gesture events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			events, err := st.Events().Recent(flagLimit)
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), events)
		})
	},
}

var eventsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count recorded gestures by kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			counts, err := st.Events().CountByKind()
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), counts)
		})
	},
}

var eventsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old gesture events",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			n, err := st.Events().Prune(time.Now().Add(-flagOlderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d events\n", n)
			return nil
		})
	},
}

func init() {
	eventsCmd.Flags().IntVarP(&flagLimit, "limit", "n", store.DefaultEventLimit, "number of events to show")
	eventsPruneCmd.Flags().DurationVar(&flagOlderThan, "older-than", 30*24*time.Hour, "delete events older than this")
	eventsCmd.AddCommand(eventsStatsCmd)
	eventsCmd.AddCommand(eventsPruneCmd)
}

func withStore(fn func(*store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openExistingStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func printEvents(out io.Writer, events []*store.Event) error {
	if len(events) == 0 {
		fmt.Fprintln(out, "No events recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tGESTURE\tFINGERS\tDETAIL")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Kind, e.Fingers, eventDetail(e))
	}
	return w.Flush()
}

func eventDetail(e *store.Event) string {
	switch e.Kind {
	case "volume":
		return fmt.Sprintf("level %.0f%%", e.Level)
	case "scroll_up", "scroll_down":
		return fmt.Sprintf("amount %d", e.Amount)
	case "drag_start":
		return fmt.Sprintf("at %.0f,%.0f", e.X, e.Y)
	}
	return ""
}

func printStats(out io.Writer, counts map[string]int) error {
	if len(counts) == 0 {
		fmt.Fprintln(out, "No events recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GESTURE\tCOUNT")
	var total int
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(w, "%s\t%d\n", k, counts[k])
		total += counts[k]
	}
	fmt.Fprintf(w, "total\t%d\n", total)
	return w.Flush()
}
