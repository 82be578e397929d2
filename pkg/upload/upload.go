package upload

import "context"

// Uploader uploads single local files to remote storage in the background.
type Uploader interface {
	// Preflight verifies that the remote storage is reachable and writable.
	// Writes a small test object to the bucket to fail fast on misconfiguration.
	Preflight(ctx context.Context) error

	// StartUpload launches a background upload of the file at path and
	// returns immediately. onComplete, if non-nil, is invoked exactly once
	// on the background goroutine with the outcome. All upload failures are
	// reported through the callback and the log; none propagate to the
	// caller.
	StartUpload(path string, onComplete func(success bool))

	// StartUploadContext is StartUpload with caller-controlled cancellation.
	// A cancelled context surfaces as a failed upload through the callback.
	StartUploadContext(ctx context.Context, path string, onComplete func(success bool))

	// WaitForUpload blocks until the most recently started upload finishes.
	// Returns immediately if no upload was started or the last one is
	// already done. Earlier overlapping uploads are not tracked.
	WaitForUpload()

	// DeleteLocalFile removes path from the local filesystem. A missing
	// path is a no-op; other removal errors are returned.
	DeleteLocalFile(path string) error
}
