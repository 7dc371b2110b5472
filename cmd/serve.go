package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gigscope/gigscope/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tour data as a JSON API.",
	Long: `Serve the tour data as a JSON API for the presentation layer:
/api/stats, /api/shows, /api/show?date=, /api/spans?month=, /api/changes.

Set server.username and server.password in the config to require basic auth.`,
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

		addr, _ := cmd.Flags().GetString("addr")
		srv := server.New(db, tour, viper.GetString("server.username"), viper.GetString("server.password"))
		return srv.Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:8789", "Listen address")
}
