// Package toolchain maintains the on-disk caches of compiler binaries and
// reconciles them against the release catalog.
package toolchain

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/0xh4ty/emacs-solidity-server/pkg/catalog"
	"github.com/0xh4ty/emacs-solidity-server/pkg/fetch"
	"github.com/0xh4ty/emacs-solidity-server/pkg/httpclient"
	"github.com/0xh4ty/emacs-solidity-server/pkg/platform"
)

// DefaultDistBase is the well-known Solidity binary distribution endpoint.
const DefaultDistBase = "https://binaries.soliditylang.org"

// DefaultRetention is how long an unused exact-pin binary is kept.
const DefaultRetention = 30 * 24 * time.Hour

// RetryPolicy controls download/verify retry behaviour. The zero MaxAttempts
// means retry forever, which is the default for background work.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultRetry matches the background sync behaviour: fixed 5s delay,
// unbounded.
var DefaultRetry = RetryPolicy{Interval: 5 * time.Second}

// Options configure a Manager beyond its cache directory and catalog.
type Options struct {
	Platform platform.Platform
	DistBase string
	Client   *http.Client
	Retry    RetryPolicy
}

// Manager owns the rolling cache directory and a catalog snapshot.
// Construct once; safe for concurrent use thereafter.
type Manager struct {
	cacheDir string
	cat      *catalog.Catalog
	plat     platform.Platform
	distBase string
	client   *http.Client
	retry    RetryPolicy
}

// NewManager creates a Manager over cacheDir, creating the directory if
// needed.
func NewManager(cacheDir string, cat *catalog.Catalog, opts Options) *Manager {
	if opts.DistBase == "" {
		opts.DistBase = DefaultDistBase
	}
	if opts.Client == nil {
		opts.Client = httpclient.New()
	}
	if opts.Retry.Interval == 0 {
		opts.Retry.Interval = DefaultRetry.Interval
	}

	os.MkdirAll(cacheDir, 0755)

	return &Manager{
		cacheDir: cacheDir,
		cat:      cat,
		plat:     opts.Platform,
		distBase: opts.DistBase,
		client:   opts.Client,
		retry:    opts.Retry,
	}
}

// Catalog returns the catalog snapshot the Manager was built with.
func (m *Manager) Catalog() *catalog.Catalog { return m.cat }

// CacheDir returns the rolling cache directory.
func (m *Manager) CacheDir() string { return m.cacheDir }

// BinaryName returns the cache filename for a version, e.g. "solc-0.8.19"
// ("solc-0.8.19.exe" on Windows).
func (m *Manager) BinaryName(version string) string {
	return m.plat.ExecutableName("solc-" + version)
}

// BinaryPath looks up a cached binary by version. Presence implies the file
// was verified when written; no re-verification happens here.
func (m *Manager) BinaryPath(version string) (string, bool) {
	path := filepath.Join(m.cacheDir, m.BinaryName(version))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// DownloadURL returns the distribution URL for a release.
func (m *Manager) DownloadURL(rel catalog.Release) string {
	return fmt.Sprintf("%s/%s/%s", m.distBase, m.plat.ID(), rel.Path)
}

// EnsureLatestVersions reconciles the rolling cache against the catalog's
// latest-per-minor set: every target release ends up cached and verified, and
// every cached file outside the target set is removed.
func (m *Manager) EnsureLatestVersions(ctx context.Context) error {
	latest := m.cat.LatestPerMinor()

	for _, rel := range latest {
		if err := m.EnsureReleaseCached(ctx, rel); err != nil {
			return err
		}
	}

	return m.CleanOldVersions(latest)
}

// EnsureReleaseCached makes sure a verified binary for rel exists in the
// rolling cache. An existing entry is re-verified and replaced if corrupt.
// Downloads retry per the Manager's RetryPolicy (unbounded by default); the
// loop stops early when ctx is cancelled.
func (m *Manager) EnsureReleaseCached(ctx context.Context, rel catalog.Release) error {
	name := m.BinaryName(rel.Version)
	dest := filepath.Join(m.cacheDir, name)

	if _, err := os.Stat(dest); err == nil {
		verr := fetch.VerifySHA256(dest, rel.SHA256)
		if verr == nil {
			return nil // already downloaded and verified
		}
		log.WithField("binary", name).WithError(verr).Warn("cached binary corrupt, re-fetching")
		if err := os.Remove(dest); err != nil {
			return errors.Wrapf(err, "failed to remove corrupt binary %s", dest)
		}
	}

	url := m.DownloadURL(rel)
	log.WithField("version", rel.Version).WithField("url", url).Info("downloading compiler")

	var lastErr error
	for attempt := 1; ; attempt++ {
		err := fetch.DownloadVerified(ctx, m.client, url, dest, rel.SHA256)
		if err == nil {
			log.WithField("binary", name).Info("downloaded and verified")
			return nil
		}
		lastErr = err
		log.WithField("binary", name).WithError(err).Warn("download failed")

		if m.retry.MaxAttempts > 0 && attempt >= m.retry.MaxAttempts {
			return errors.Wrapf(lastErr, "giving up on %s after %d attempts", name, attempt)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.retry.Interval):
		}
	}
}

// CleanOldVersions removes rolling-cache entries whose version is not in
// keep. Individual removal failures are logged, not propagated.
func (m *Manager) CleanOldVersions(keep map[string]catalog.Release) error {
	entries, err := os.ReadDir(m.cacheDir)
	if err != nil {
		return errors.Wrap(err, "failed to read cache directory")
	}

	kept := make(map[string]struct{}, len(keep))
	for _, rel := range keep {
		kept[rel.Version] = struct{}{}
	}

	for _, entry := range entries {
		version, ok := cachedVersion(entry.Name())
		if !ok {
			continue
		}
		if _, keepIt := kept[version]; keepIt {
			continue
		}
		if err := os.Remove(filepath.Join(m.cacheDir, entry.Name())); err != nil {
			log.WithField("binary", entry.Name()).WithError(err).Warn("failed to remove old version")
			continue
		}
		log.WithField("version", version).Info("removed old version")
	}

	return nil
}

// CleanUnusedExactVersions removes exact-pin binaries untouched for longer
// than retention. A missing directory is a no-op. The tier's manifest copy is
// left alone.
func CleanUnusedExactVersions(dir string, retention time.Duration) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil // nothing to clean
	}
	if err != nil {
		return errors.Wrap(err, "failed to read exact cache directory")
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := cachedVersion(entry.Name()); !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= retention {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.WithField("binary", entry.Name()).WithError(err).Warn("failed to prune exact binary")
			continue
		}
		log.WithField("binary", entry.Name()).Info("removed unused exact binary")
	}

	return nil
}

// cachedVersion extracts the version encoded in a cache filename.
func cachedVersion(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, "solc-")
	if !ok {
		return "", false
	}
	rest = strings.TrimSuffix(rest, ".exe")
	if rest == "" {
		return "", false
	}
	return rest, true
}
