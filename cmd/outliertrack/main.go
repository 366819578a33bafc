// Package main provides the outliertrack CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"outliertrack/config"
	"outliertrack/notion"
	"outliertrack/report"
	"outliertrack/tracker"
	"outliertrack/youtube"
)

var version = "0.1.0"

func main() {
	// A missing .env is fine; credentials can come from the environment.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the outliertrack CLI.
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "outliertrack",
		Short:   "Track outlier uploads across competitor channels",
		Long:    "Outliertrack checks competitor channels for uploads that outperform the channel's own baseline and syncs new findings to a record database.",
		Version: version,
	}

	rootCmd.SetVersionTemplate("outliertrack version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(newRunCmd(&configPath))
	rootCmd.AddCommand(newChannelsCmd(&configPath))

	return rootCmd
}

// newRunCmd creates the run subcommand, which executes one tracking cycle.
func newRunCmd(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one tracking cycle",
		Long:  "Sweep expired records, score recent uploads across all configured channels, and sync new outliers to the record database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if len(cfg.Channels) == 0 {
				return tracker.ErrNoChannels
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			// Both constructors validate credentials before any network call.
			platform, err := youtube.New(ctx, cfg.YouTubeAPIKey)
			if err != nil {
				return err
			}
			store, err := notion.New(cfg.NotionToken, cfg.NotionDatabaseID)
			if err != nil {
				return err
			}

			engine := tracker.NewEngine(cfg.EngineConfig(), platform, store)
			res, err := engine.Run(ctx, cfg.ChannelRefs())
			if err != nil {
				return err
			}

			formatter := report.NewFormatter()
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(res, cfg.TopResults))
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Minute, "Overall cycle timeout")

	return cmd
}

// newChannelsCmd creates the channels subcommand.
func newChannelsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List configured channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if len(cfg.Channels) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No channels configured.")
				return nil
			}
			for _, ch := range cfg.Channels {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ch.ID, ch.Label())
			}
			return nil
		},
	}
}
