package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gigscope/gigscope/internal/utils"
	"github.com/gigscope/gigscope/pkg/pipeline"
	"github.com/gigscope/gigscope/pkg/sources/relisten"
	"github.com/gigscope/gigscope/pkg/sources/songfish"
	"github.com/gigscope/gigscope/pkg/storage"
	"github.com/gigscope/gigscope/pkg/whttp"
)

// syncCmd implements: gigscope sync
//
// Fetches every show of the tour from both sources, reconciles setlists with
// durations and gaps, and upserts the enriched records. Re-running upgrades
// records whose durations have been published since the last sync.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and reconcile the tour's shows into the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		tour, err := resolveTour(cmd)
		if err != nil {
			return err
		}

		apiKey := viper.GetString("songfish.api_key")
		if apiKey == "" {
			return fmt.Errorf("songfish.api_key not found in config")
		}
		artistSlug := viper.GetString("artist.slug")
		if artistSlug == "" {
			return fmt.Errorf("artist.slug not found in config")
		}

		db, release, err := openDB(cmd, true)
		if err != nil {
			return err
		}
		defer release()
		defer db.Close()

		httpClient := whttp.DefaultClient()
		setlists := songfish.New(viper.GetString("songfish.base_url"), apiKey, httpClient)
		audio := relisten.New(viper.GetString("relisten.base_url"), artistSlug, httpClient)

		concurrency, _ := cmd.Flags().GetInt("concurrency")

		result, err := pipeline.SyncTour(cmd.Context(), pipeline.Config{
			Setlists:    setlists,
			Audio:       audio,
			DB:          db,
			Tour:        tour,
			Concurrency: concurrency,
			Log:         utils.Log,
			OnShowDone: func(date string, change *storage.Change) {
				if change != nil {
					fmt.Printf("[%s] %s\n", change.ChangeType, date)
				}
			},
		})
		if err != nil {
			return err
		}

		for _, e := range result.Errors {
			utils.Log.Warnf("%v", e)
		}

		utils.Log.Infof("Synced %d shows for %q (%d with durations, latest %s)",
			len(result.SyncedDates), tour, result.Control.ShowsWithDurations, result.Control.LatestShowDate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntP("concurrency", "c", 4, "Number of concurrent show fetches")
}
