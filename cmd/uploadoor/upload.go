package main

import (
	"fmt"

	"github.com/ethpandaops/uploadoor/pkg/config"
	"github.com/ethpandaops/uploadoor/pkg/upload"
	"github.com/spf13/cobra"
)

var (
	uploadFile        string
	uploadBucket      string
	uploadKey         string
	uploadDeleteAfter bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a local file to S3-compatible storage",
	Long: `Upload a single local file to the configured bucket and key via a
presigned PUT URL. The destination comes from the config file and can be
overridden with flags.`,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadFile, "file", "",
		"Path to the local file to upload")
	uploadCmd.Flags().StringVar(&uploadBucket, "bucket", "",
		"Destination bucket (overrides config)")
	uploadCmd.Flags().StringVar(&uploadKey, "key", "",
		"Destination object key (overrides config)")
	uploadCmd.Flags().BoolVar(&uploadDeleteAfter, "delete-after", false,
		"Delete the local file after a successful upload")

	_ = uploadCmd.MarkFlagRequired("file")
}

func runUpload(cmd *cobra.Command, args []string) error {
	uploader, err := buildUploader()
	if err != nil {
		return err
	}

	log.WithField("file", uploadFile).Info("Uploading file")

	result := make(chan bool, 1)

	uploader.StartUpload(uploadFile, func(success bool) {
		result <- success
	})
	uploader.WaitForUpload()

	if !<-result {
		return fmt.Errorf("upload failed, see log for details")
	}

	if uploadDeleteAfter {
		if err := uploader.DeleteLocalFile(uploadFile); err != nil {
			return fmt.Errorf("deleting local file: %w", err)
		}

		log.WithField("file", uploadFile).Info("Deleted local file")
	}

	return nil
}

// buildUploader loads config, applies flag overrides and constructs the
// S3 uploader shared by the upload and preflight commands.
func buildUploader() (upload.Uploader, error) {
	cfg := config.Default()

	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		cfg = loaded
	}

	if cfg.Upload.S3 == nil {
		cfg.Upload.S3 = &config.S3Config{}
	}

	if uploadBucket != "" {
		cfg.Upload.S3.Bucket = uploadBucket
	}

	if uploadKey != "" {
		cfg.Upload.S3.Key = uploadKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	uploader, err := upload.NewS3Uploader(log, cfg.Upload.S3)
	if err != nil {
		return nil, fmt.Errorf("creating S3 uploader: %w", err)
	}

	return uploader, nil
}
