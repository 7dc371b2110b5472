package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gigscope/gigscope/pkg/model"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <date>",
	Short: "Print one show's reconciled setlist with durations and gaps.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := args[0]
		if _, err := model.ParseDate(date); err != nil {
			return err
		}

		db, release, err := openDB(cmd, false)
		if err != nil {
			return err
		}
		defer release()
		defer db.Close()

		show, err := db.LoadShow(cmd.Context(), date)
		if err != nil {
			return err
		}
		if show == nil {
			return fmt.Errorf("no persisted show on %s (run 'gigscope sync' first)", date)
		}

		location := show.Show.City
		if show.Show.State != "" {
			location += ", " + show.Show.State
		}
		fmt.Printf("%s — %s (%s)", show.Show.Date, show.Show.Venue, location)
		if show.Show.ShowNumber > 0 {
			fmt.Printf("  [show %d/%d]", show.Show.ShowNumber, show.Show.TotalShows)
		}
		fmt.Println()
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		currentSet := ""
		for _, s := range show.Songs {
			if s.Entry.Set != currentSet {
				currentSet = s.Entry.Set
				fmt.Fprintf(w, "SET %s\t\t\t\n", currentSet)
			}

			dur := "duration unavailable"
			if s.Duration != nil {
				dur = model.FormatDuration(s.Duration.Seconds)
			}

			gap := ""
			if s.Gap != nil {
				if s.Gap.Debut {
					gap = "debut"
				} else if s.Gap.Gap > 0 {
					gap = fmt.Sprintf("gap %d", s.Gap.Gap)
				}
			}

			fmt.Fprintf(w, "  %s%s\t%s\t%s\t\n", s.Entry.Song, s.Entry.Transition, dur, gap)
		}
		w.Flush()

		var missing []string
		if !show.HasDurations {
			missing = append(missing, "durations")
		}
		if !show.HasGaps {
			missing = append(missing, "gaps")
		}
		if len(missing) > 0 {
			fmt.Println()
			fmt.Printf("Incomplete: missing %v\n", missing)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
