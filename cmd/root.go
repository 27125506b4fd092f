// Package cmd implements the slopwatch command-line interface.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "slopwatch",
		Short: "Discover and classify slop video channels",
		Long: `slopwatch discovers candidate video channels from seed lists, keyword
search, and trending charts, scores them with a deterministic risk engine,
and escalates ambiguous cases to a generative classifier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so credentials are visible to config loading.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("slopwatch %s\n", version)
		},
	})

	rootCmd.AddCommand(scanCommand())
	rootCmd.AddCommand(scheduleCommand())
	rootCmd.AddCommand(statsCommand())
}
