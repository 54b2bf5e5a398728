// Package cmd provides the command-line interface for liveserve.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--port, --diff, ...)
//  2. Environment variables with the LIVESERVE_ prefix
//     (LIVESERVE_SERVER_PORT, LIVESERVE_SERVER_DIFF, ...)
//  3. A .liveserve.yml file in the working directory
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "liveserve",
	Short: "A live-reloading local development file server",
	Long: `Liveserve serves a directory over HTTP and pushes live-update
notifications to connected browser tabs when files change on disk.

In the default mode every change triggers a full page reload. With
--diff, HTML and CSS changes are communicated as targeted update
instructions instead, so stylesheets swap in place and pages refresh
without losing scroll position.

Quick Start:
  liveserve serve                 Serve the current directory
  liveserve serve ./public --diff Serve ./public with diff updates`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .liveserve.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".liveserve")
	}

	viper.SetEnvPrefix("LIVESERVE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config files are fine; flags and env still apply.
	_ = viper.ReadInConfig()
}
