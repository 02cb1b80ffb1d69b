// Package fetch downloads distribution resources and verifies their
// integrity before they become visible to readers.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// StatusError reports a non-2xx response from the distribution endpoint.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// Download retrieves url and writes the full body to destPath. The body is
// written to a temporary file in the destination directory and renamed into
// place, so a failed download never leaves a partial file at destPath.
func Download(ctx context.Context, client *http.Client, url, destPath string) error {
	if client == nil {
		client = http.DefaultClient
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	tmpPath, err := downloadToTemp(ctx, client, url, destPath)
	if err != nil {
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to move downloaded file")
	}
	return nil
}

// DownloadVerified retrieves url, verifies the body against expectedSHA256,
// marks it executable, and only then renames it to destPath. A racing reader
// either sees no file or a fully verified executable, never an intermediate
// state.
func DownloadVerified(ctx context.Context, client *http.Client, url, destPath, expectedSHA256 string) error {
	if client == nil {
		client = http.DefaultClient
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	tmpPath, err := downloadToTemp(ctx, client, url, destPath)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := VerifySHA256(tmpPath, expectedSHA256); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0755); err != nil {
		return errors.Wrap(err, "failed to set permissions")
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.Wrap(err, "failed to move downloaded file")
	}

	success = true
	return nil
}

// downloadToTemp writes the response body for url to a unique temporary file
// next to destPath and returns its path. The temp file is removed on error.
func downloadToTemp(ctx context.Context, client *http.Client, url, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+"-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", errors.Wrapf(err, "failed to download %s", url)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", errors.Wrap(err, "failed to close temporary file")
	}

	return tmpPath, nil
}
