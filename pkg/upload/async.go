package upload

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// StartUpload launches a background upload of the file at path. Uploads run
// on a background context and cannot be cancelled once started; use
// StartUploadContext for opt-in cancellation.
func (u *s3Uploader) StartUpload(path string, onComplete func(success bool)) {
	u.StartUploadContext(context.Background(), path, onComplete)
}

// StartUploadContext launches a background upload of the file at path,
// aborting if ctx is cancelled mid-transfer. Returns immediately; the
// outcome is delivered through onComplete and the log.
func (u *s3Uploader) StartUploadContext(
	ctx context.Context,
	path string,
	onComplete func(success bool),
) {
	done := make(chan struct{})

	u.mu.Lock()
	u.done = done
	u.mu.Unlock()

	go func() {
		// Closed after the callback has fired, so WaitForUpload only
		// returns once the outcome has been delivered.
		defer close(done)

		err := u.uploadFile(ctx, path)
		if err != nil {
			u.log.WithError(err).WithField("path", path).Error("Upload failed")
		} else {
			u.log.WithFields(logrus.Fields{
				"path": path,
				"dest": fmt.Sprintf("s3://%s/%s", u.cfg.Bucket, u.cfg.Key),
			}).Info("Upload completed")
		}

		if onComplete != nil {
			onComplete(err == nil)
		}
	}()
}

// uploadFile performs one upload: validate the source, presign, stream.
func (u *s3Uploader) uploadFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s: %w", path, err)
	}

	url, err := u.presignPutURL(ctx, u.cfg.Key)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}

	defer func() { _ = f.Close() }()

	return u.transfer(ctx, url, f, info.Size())
}

// WaitForUpload blocks until the most recently started upload finishes.
func (u *s3Uploader) WaitForUpload() {
	u.mu.Lock()
	done := u.done
	u.mu.Unlock()

	if done == nil {
		return
	}

	<-done
}

// DeleteLocalFile removes path from the local filesystem. A missing path is
// a no-op.
func (u *s3Uploader) DeleteLocalFile(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("removing %s: %w", path, err)
	}

	return nil
}
