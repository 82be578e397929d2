package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Verify that the configured bucket is reachable and writable",
	Long: `Write a small test object to the configured bucket through the same
presigned PUT path used by real uploads, to fail fast on misconfiguration.`,
	RunE: runPreflight,
}

func init() {
	rootCmd.AddCommand(preflightCmd)
	preflightCmd.Flags().StringVar(&uploadBucket, "bucket", "",
		"Destination bucket (overrides config)")
	preflightCmd.Flags().StringVar(&uploadKey, "key", "",
		"Destination object key (overrides config)")
}

func runPreflight(cmd *cobra.Command, args []string) error {
	uploader, err := buildUploader()
	if err != nil {
		return err
	}

	if err := uploader.Preflight(cmd.Context()); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}

	log.Info("Preflight write test succeeded")

	return nil
}
