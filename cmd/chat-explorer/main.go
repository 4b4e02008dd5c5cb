// Package main implements the chat-explorer CLI: a local server for
// browsing conversation export files, plus helpers for splitting and
// validating exports.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"chat-explorer/internal/config"
)

var (
	configPath string

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "chat-explorer",
	Short: "Browse and search conversation history exports",
	Long: `chat-explorer loads JSON conversation exports, builds an in-memory
search index over them, and serves a local browsing UI with a JSON API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(checkCmd)
}

// loadConfig resolves file + env configuration and overlays any flags the
// user set on cmd. Flags win.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("data") {
		cfg.DataDir, _ = flags.GetString("data")
	}
	if flags.Changed("static") {
		cfg.StaticDir, _ = flags.GetString("static")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("pretty") {
		cfg.LogPretty, _ = flags.GetBool("pretty")
	}
	if flags.Changed("search-limit") {
		cfg.SearchLimit, _ = flags.GetInt("search-limit")
	}
	if flags.Changed("no-watch") {
		noWatch, _ := flags.GetBool("no-watch")
		cfg.Watch = !noWatch
	}
	return cfg, cfg.Validate()
}
