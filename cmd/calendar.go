package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/spans"
)

// calendarCmd represents the calendar command
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print venue-run spans for calendar overlays.",
	Long: `Print venue-run spans for calendar overlays.

Consecutive nights at the same venue group into one span; each date carries
its (week row, column) position within its month's grid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tour, err := resolveTour(cmd)
		if err != nil {
			return err
		}

		db, release, err := openDB(cmd, false)
		if err != nil {
			return err
		}
		defer release()
		defer db.Close()

		shows, err := db.ListShows(cmd.Context(), tour)
		if err != nil {
			return err
		}

		var days []spans.Day
		for _, show := range shows {
			days = append(days, spans.Day{
				Date:    show.Show.Date,
				HasShow: true,
				Venue:   show.Show.Venue,
				City:    show.Show.City,
				State:   show.Show.State,
			})
		}

		month, _ := cmd.Flags().GetString("month")
		for _, span := range spans.Detect(days) {
			if month != "" && !spanTouchesMonth(span.Days, month) {
				continue
			}
			nights := len(span.Days)
			fmt.Printf("%s — %s (%d night", span.Venue, span.City, nights)
			if nights != 1 {
				fmt.Print("s")
			}
			fmt.Println(")")
			for i, d := range span.Days {
				fmt.Printf("  N%d/%d  %s  row %d col %d\n", i+1, nights, d.Date, d.Grid.Row, d.Grid.Col)
			}
		}
		return nil
	},
}

func spanTouchesMonth(days []model.SpanDay, month string) bool {
	for _, d := range days {
		if len(d.Date) >= 7 && d.Date[:7] == month {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.Flags().StringP("month", "m", "", "Only spans touching this month (yyyy-mm)")
}
