/*
Copyright © 2025 silicus-edu
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "silicus-ta",
	Short: "Course teaching-assistant backend",
	Long: `Backend for a course teaching assistant. Students chat over ingested
lecture slides with page-level citations; instructors manage courses and
their PDF sources, with every change mirrored to a versioned remote store.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Subcommands load cfgFile themselves through config.LoadConfig, which
	// runs its own viper instance with env bindings.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}
