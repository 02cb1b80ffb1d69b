package toolchain

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/0xh4ty/emacs-solidity-server/pkg/catalog"
	"github.com/0xh4ty/emacs-solidity-server/pkg/fetch"
	"github.com/0xh4ty/emacs-solidity-server/pkg/httpclient"
	"github.com/0xh4ty/emacs-solidity-server/pkg/platform"
)

// ManifestName is the manifest filename within each cache tier.
const ManifestName = "list.json"

// SyncOptions configure one reconciliation cycle.
type SyncOptions struct {
	CacheDir      string
	ExactCacheDir string
	Platform      platform.Platform
	DistBase      string
	Client        *http.Client
	Retry         RetryPolicy
	Retention     time.Duration
}

// Sync runs one full reconciliation cycle: fetch the release manifest,
// rebuild the rolling cache to match its latest-per-minor set, publish the
// Manager handle, and sweep stale exact-pin binaries. It is meant to run in
// a detached goroutine at startup; a transient manifest download failure
// retries per opts.Retry, while a manifest that fails to parse is terminal.
func Sync(ctx context.Context, opts SyncOptions) (*Manager, error) {
	if opts.DistBase == "" {
		opts.DistBase = DefaultDistBase
	}
	if opts.Client == nil {
		opts.Client = httpclient.New()
	}
	if opts.Retry.Interval == 0 {
		opts.Retry.Interval = DefaultRetry.Interval
	}
	if opts.Retention == 0 {
		opts.Retention = DefaultRetention
	}

	manifestPath := filepath.Join(opts.CacheDir, ManifestName)
	manifestURL := opts.DistBase + "/" + opts.Platform.ID() + "/" + ManifestName

	cat, err := fetchManifest(ctx, opts, manifestURL, manifestPath)
	if err != nil {
		return nil, err
	}

	m := NewManager(opts.CacheDir, cat, Options{
		Platform: opts.Platform,
		DistBase: opts.DistBase,
		Client:   opts.Client,
		Retry:    opts.Retry,
	})

	if err := m.EnsureLatestVersions(ctx); err != nil {
		log.WithError(err).Error("failed to reconcile rolling cache")
		return nil, err
	}
	log.Info("rolling cache reconciled against latest releases")

	SetDefault(m)

	if opts.ExactCacheDir != "" {
		if err := CleanUnusedExactVersions(opts.ExactCacheDir, opts.Retention); err != nil {
			// Cleanup failures never block resolution.
			log.WithError(err).Warn("failed to sweep exact-pin cache")
		}
	}

	return m, nil
}

// fetchManifest downloads and parses the release manifest, retrying
// transient download failures per opts.Retry.
func fetchManifest(ctx context.Context, opts SyncOptions, url, path string) (*catalog.Catalog, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		err := fetch.Download(ctx, opts.Client, url, path)
		if err == nil {
			break
		}
		lastErr = err
		log.WithError(err).Warn("failed to download manifest, retrying")

		if opts.Retry.MaxAttempts > 0 && attempt >= opts.Retry.MaxAttempts {
			return nil, errors.Wrapf(lastErr, "giving up on manifest after %d attempts", attempt)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Retry.Interval):
		}
	}

	return catalog.Load(path)
}
