package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/gigscope/gigscope/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `	        _
	  __ _ (_) __ _ ___  ___ ___  _ __   ___
	 / _` + "`" + ` || |/ _` + "`" + ` / __|/ __/ _ \| '_ \ / _ \
	| (_| || | (_| \__ \ (_| (_) | |_) |  __/
	 \__, ||_|\__, |___/\___\___/| .__/ \___|
	 |___/    |___/              |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gigscope",
	Short: "A setlist and tour statistics tracker for a touring act.",
	Long: LOGO + `gigscope reconciles setlists, song gaps and audio durations from two
independent sources into one enriched record per show, and computes rolling
tour statistics (longest, rarest and most-played songs) on top of them.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gigscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("dbpath", "", "", "Path to the SQLite database (default is $HOME/.config/gigscope/gigscope.sqlite)")
	rootCmd.PersistentFlags().StringP("tour", "t", "", "Tour name (overrides tour.name from config)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gigscope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.gigscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("songfish.api_key", "")
	viper.SetDefault("songfish.base_url", "")
	viper.SetDefault("relisten.base_url", "")
	viper.SetDefault("artist.slug", "")
	viper.SetDefault("tour.name", "")
	viper.SetDefault("stats.top_n", 3)
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// resolveTour picks the tour from the flag, falling back to config.
func resolveTour(cmd *cobra.Command) (string, error) {
	tour, _ := cmd.Flags().GetString("tour")
	if tour == "" {
		tour = viper.GetString("tour.name")
	}
	if tour == "" {
		return "", fmt.Errorf("no tour given: set --tour or tour.name in the config")
	}
	return tour, nil
}
