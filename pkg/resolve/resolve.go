// Package resolve picks a concrete compiler binary for a source file's
// version constraint. Cache misses never block the caller: an exact pin that
// is not cached yet triggers a detached download while the current request
// degrades to the best available binary.
package resolve

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/apex/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/0xh4ty/emacs-solidity-server/pkg/httpclient"
	"github.com/0xh4ty/emacs-solidity-server/pkg/platform"
	"github.com/0xh4ty/emacs-solidity-server/pkg/pragma"
	"github.com/0xh4ty/emacs-solidity-server/pkg/toolchain"
)

// ErrToolchainNotFound means no binary satisfied the constraint by any
// strategy, including the system fallback.
var ErrToolchainNotFound = errors.New("no solc binary found")

// systemBinary is the executable name probed on the host PATH.
const systemBinary = "solc"

// Resolver resolves source files to compiler binary paths. The zero value is
// not usable; fill in the cache directories and platform.
type Resolver struct {
	// RollingDir and ExactDir are the two cache tiers.
	RollingDir string
	ExactDir   string

	Platform platform.Platform
	DistBase string
	Client   *http.Client

	// Retry bounds the detached exact-version fetch. Zero value retries
	// forever at the default interval.
	Retry toolchain.RetryPolicy

	// Manager returns the reconciled toolchain manager, or nil while the
	// background sync has not finished. Defaults to toolchain.Default.
	Manager func() *toolchain.Manager

	// LookPath locates the system compiler. Defaults to exec.LookPath.
	LookPath func(string) (string, error)

	// group collapses concurrent detached fetches of the same version.
	group singleflight.Group
}

// Resolve reads the source file at path and resolves its version constraint
// to a local executable.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	c, err := pragma.ExtractFile(path)
	if err != nil {
		return "", err
	}
	return r.resolveConstraint(ctx, c)
}

// ResolveSource resolves from source text already held by the caller.
func (r *Resolver) ResolveSource(ctx context.Context, path string, src []byte) (string, error) {
	c, err := pragma.Extract(src)
	if err != nil {
		return "", errors.Wrapf(err, "extracting pragma from %s", path)
	}
	return r.resolveConstraint(ctx, c)
}

func (r *Resolver) resolveConstraint(ctx context.Context, c pragma.Constraint) (string, error) {
	switch c.Kind {
	case pragma.Exact:
		return r.lookupExact(c.Version)
	default:
		return r.lookupRange(c.Req)
	}
}

// lookupExact serves an exact pin from the exact-pin cache. On a miss it
// spawns a detached fetch for that version and falls back to the system
// binary for this request; the fetch's outcome only affects future
// resolutions.
func (r *Resolver) lookupExact(version *semver.Version) (string, error) {
	name := r.Platform.ExecutableName("solc-" + version.String())
	binPath := filepath.Join(r.ExactDir, name)

	if fileExists(binPath) {
		log.WithField("version", version.String()).Debug("exact pin cache hit")
		return binPath, nil
	}

	r.spawnExactFetch(version.String(), binPath)

	log.WithField("version", version.String()).
		Info("exact version not cached yet, falling back to system solc")
	return r.lookupSystem()
}

// lookupRange picks the greatest cached version satisfying req. With a
// reconciled manager the lookup is catalog-driven; before the first sync
// completes it degrades to scanning the rolling cache directory.
func (r *Resolver) lookupRange(req *semver.Constraints) (string, error) {
	if m := r.manager(); m != nil {
		if version, ok := MatchCachedVersion(m, req); ok {
			path, _ := m.BinaryPath(version)
			log.WithField("version", version).Debug("rolling cache hit")
			return path, nil
		}
	} else if path, ok := r.scanRolling(req); ok {
		return path, nil
	}

	log.WithField("requirement", req.String()).
		Info("no cached version satisfies requirement, falling back to system solc")
	return r.lookupSystem()
}

func (r *Resolver) lookupSystem() (string, error) {
	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(systemBinary)
	if err != nil {
		return "", ErrToolchainNotFound
	}
	return path, nil
}

// MatchCachedVersion intersects "satisfies req" with "present in the rolling
// cache" over the manager's catalog and returns the greatest match.
func MatchCachedVersion(m *toolchain.Manager, req *semver.Constraints) (string, bool) {
	var best *semver.Version
	var bestStr string

	for _, rel := range m.Catalog().Builds {
		v, err := semver.StrictNewVersion(rel.Version)
		if err != nil {
			continue
		}
		if !req.Check(v) {
			continue
		}
		if _, cached := m.BinaryPath(rel.Version); !cached {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestStr = rel.Version
		}
	}

	return bestStr, best != nil
}

var rollingName = regexp.MustCompile(`^solc-(\d+\.\d+\.\d+)(\.exe)?$`)

// scanRolling is the catalog-less fallback: list the rolling cache directory
// and match versions out of the filenames.
func (r *Resolver) scanRolling(req *semver.Constraints) (string, bool) {
	entries, err := os.ReadDir(r.RollingDir)
	if err != nil {
		return "", false
	}

	var best *semver.Version
	var bestPath string
	for _, entry := range entries {
		name := entry.Name()
		match := rollingName.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		v, err := semver.StrictNewVersion(match[1])
		if err != nil || !req.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestPath = filepath.Join(r.RollingDir, name)
		}
	}

	if best == nil {
		return "", false
	}
	log.WithField("binary", bestPath).Debug("rolling cache hit (directory scan)")
	return bestPath, true
}

func (r *Resolver) manager() *toolchain.Manager {
	if r.Manager != nil {
		return r.Manager()
	}
	return toolchain.Default()
}

func (r *Resolver) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return httpclient.New()
}
