package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gigscope/gigscope/pkg/cache"
	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/pipeline"
	"github.com/gigscope/gigscope/pkg/sources"
	"github.com/gigscope/gigscope/pkg/sources/songfish"
	"github.com/gigscope/gigscope/pkg/whttp"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print tour statistics (longest, rarest and most-played songs).",
	Long: `Print tour statistics (longest, rarest and most-played songs).

Statistics are recomputed only when the tour control record says something
changed since the last snapshot; use --regen to force it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tour, err := resolveTour(cmd)
		if err != nil {
			return err
		}

		db, release, err := openDB(cmd, true)
		if err != nil {
			return err
		}
		defer release()
		defer db.Close()

		topN, _ := cmd.Flags().GetInt("top")
		if topN <= 0 {
			topN = viper.GetInt("stats.top_n")
		}
		force, _ := cmd.Flags().GetBool("regen")

		// Gap enrichment needs the setlist source; without an API key the
		// raw gap numbers still rank correctly.
		var setlists sources.SetlistSource
		if apiKey := viper.GetString("songfish.api_key"); apiKey != "" {
			setlists = songfish.New(viper.GetString("songfish.base_url"), apiKey, whttp.DefaultClient())
		}
		lookupCache := cache.New(30*time.Minute, 10*time.Minute)

		snapshot, regenerated, err := pipeline.RegenerateStatistics(cmd.Context(), db, setlists, lookupCache, tour, topN, force)
		if err != nil {
			return err
		}
		if !regenerated {
			fmt.Printf("Statistics are up to date (as of %s).\n\n", snapshot.GeneratedAt.Format(time.RFC3339))
		}

		printStatistics(snapshot)
		return nil
	},
}

func printStatistics(ts *model.TourStatistics) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Fprintf(w, "LONGEST SONGS — %s\t\t\t\n", ts.Tour)
	for i, s := range ts.Longest {
		fmt.Fprintf(w, "%d. %s\t%s\t%s\t%s\n", i+1, s.Song, s.Display, s.ShowDate, s.Venue)
	}

	fmt.Fprintln(w, "\t\t\t")
	fmt.Fprintf(w, "RAREST SONGS\t\t\t\n")
	for i, s := range ts.Rarest {
		detail := ""
		if s.LastDate != "" {
			detail = fmt.Sprintf("last %s at %s", s.LastDate, s.LastVenue)
		}
		fmt.Fprintf(w, "%d. %s\t%d shows\t%s\t%s\n", i+1, s.Song, s.Gap, s.ShowDate, detail)
	}

	fmt.Fprintln(w, "\t\t\t")
	fmt.Fprintf(w, "MOST PLAYED\t\t\t\n")
	for i, s := range ts.MostPlayed {
		fmt.Fprintf(w, "%d. %s\t%d plays\t\t\n", i+1, s.Song, s.Plays)
	}

	if len(ts.Debuts) > 0 {
		fmt.Fprintln(w, "\t\t\t")
		fmt.Fprintf(w, "DEBUTS\t\t\t\n")
		for _, d := range ts.Debuts {
			fmt.Fprintf(w, "   %s\t\t\t\n", d)
		}
	}

	w.Flush()
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntP("top", "n", 0, "Ranking depth (default from stats.top_n config)")
	statsCmd.Flags().Bool("regen", false, "Force regeneration even when nothing changed")
}
