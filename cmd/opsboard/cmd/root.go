// Package cmd implements the CLI commands for opsboard.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "opsboard",
	Short: "Operational analytics dashboards over a hosted row source",
	Long: "opsboard bulk-fetches operational records from a hosted relational\n" +
		"source, aggregates them into procurement, CRM, marketing, and supply\n" +
		"network dashboards, and serves the reports over an HTTP API.",
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(versionCommand())
}

func initEnv() {
	// A missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	viper.SetEnvPrefix("OPSBOARD")
	viper.AutomaticEnv()
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
