package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// changesCmd represents the changes command
var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Print recent record changes from the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, release, err := openDB(cmd, false)
		if err != nil {
			return err
		}
		defer release()
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		changes, err := db.RecentChanges(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(changes) == 0 {
			fmt.Println("No recorded changes.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "WHEN\tSHOW\tTOUR\tCHANGE\t")
		for _, c := range changes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", c.OccurredAt.Format("2006-01-02 15:04"), c.ShowDate, c.Tour, c.ChangeType)
		}
		w.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(changesCmd)
	changesCmd.Flags().IntP("limit", "n", 50, "Maximum number of changes to print")
}
