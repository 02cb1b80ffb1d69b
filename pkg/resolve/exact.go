package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/0xh4ty/emacs-solidity-server/pkg/catalog"
	"github.com/0xh4ty/emacs-solidity-server/pkg/fetch"
	"github.com/0xh4ty/emacs-solidity-server/pkg/toolchain"
)

// spawnExactFetch starts the detached fetch-and-verify task for an exact
// version. Concurrent resolutions of the same version collapse into one
// download; the task runs to completion on its own and never reports back to
// the resolution that spawned it.
func (r *Resolver) spawnExactFetch(version, binPath string) {
	go r.group.Do(version, func() (interface{}, error) {
		r.fetchExact(context.Background(), version, binPath)
		return nil, nil
	})
}

// fetchExact downloads a pinned version into the exact-pin cache. The tier
// keeps its own manifest copy for offline lookup; a version missing from the
// manifest is a terminal lookup failure, while download and integrity
// failures retry per the Resolver's policy.
func (r *Resolver) fetchExact(ctx context.Context, version, binPath string) {
	logger := log.WithField("version", version)

	if fileExists(binPath) {
		return // a racing fetch already finished
	}

	if err := os.MkdirAll(r.ExactDir, 0755); err != nil {
		logger.WithError(err).Error("failed to create exact cache directory")
		return
	}

	manifestPath := filepath.Join(r.ExactDir, toolchain.ManifestName)
	manifestURL := fmt.Sprintf("%s/%s/%s", r.distBase(), r.Platform.ID(), toolchain.ManifestName)

	if !fileExists(manifestPath) {
		if !r.retryLoop(ctx, logger, "download manifest", func() error {
			return fetch.Download(ctx, r.client(), manifestURL, manifestPath)
		}) {
			return
		}
	}

	cat, err := catalog.Load(manifestPath)
	if err != nil {
		logger.WithError(err).Error("failed to parse manifest copy")
		return
	}

	rel, ok := cat.ByVersion()[version]
	if !ok {
		logger.Error("version not present in release manifest")
		return
	}

	binaryURL := fmt.Sprintf("%s/%s/%s", r.distBase(), r.Platform.ID(), rel.Path)
	logger.WithField("url", binaryURL).Info("downloading pinned compiler")

	if r.retryLoop(ctx, logger, "download binary", func() error {
		return fetch.DownloadVerified(ctx, r.client(), binaryURL, binPath, rel.SHA256)
	}) {
		logger.Info("pinned compiler downloaded and verified")
	}
}

// retryLoop runs op until it succeeds, reporting false when the retry budget
// or the context runs out.
func (r *Resolver) retryLoop(ctx context.Context, logger log.Interface, what string, op func() error) bool {
	interval := r.Retry.Interval
	if interval == 0 {
		interval = toolchain.DefaultRetry.Interval
	}

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return true
		}
		logger.WithError(err).Warnf("failed to %s", what)

		if r.Retry.MaxAttempts > 0 && attempt >= r.Retry.MaxAttempts {
			logger.Errorf("giving up: failed to %s after %d attempts", what, attempt)
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}

func (r *Resolver) distBase() string {
	if r.DistBase != "" {
		return r.DistBase
	}
	return toolchain.DefaultDistBase
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
