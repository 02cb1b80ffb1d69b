// Package catalog models the solc release manifest (list.json) and its
// derived lookup views.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Release is a single published compiler build from the manifest.
type Release struct {
	Path        string   `json:"path"`
	Version     string   `json:"version"`
	Build       string   `json:"build"`
	LongVersion string   `json:"longVersion"`
	Keccak256   string   `json:"keccak256,omitempty"`
	SHA256      string   `json:"sha256,omitempty"`
	URLs        []string `json:"urls,omitempty"`
}

// Catalog is the parsed release manifest.
type Catalog struct {
	Builds []Release `json:"builds"`

	// Releases maps a version to its download path; LatestRelease names the
	// newest published version. Both are optional in the manifest.
	Releases      map[string]string `json:"releases,omitempty"`
	LatestRelease string            `json:"latest_release,omitempty"`
}

// ParseError reports a manifest entry missing a mandatory field.
type ParseError struct {
	Index int
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("manifest entry %d: missing or empty %q", e.Index, e.Field)
}

// Parse deserializes a manifest document. Every entry must carry path,
// version, build and longVersion; an entry missing one fails the whole parse.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}

	for i, rel := range c.Builds {
		switch {
		case rel.Path == "":
			return nil, &ParseError{Index: i, Field: "path"}
		case rel.Version == "":
			return nil, &ParseError{Index: i, Field: "version"}
		case rel.Build == "":
			return nil, &ParseError{Index: i, Field: "build"}
		case rel.LongVersion == "":
			return nil, &ParseError{Index: i, Field: "longVersion"}
		}
	}

	return &c, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest: %s", path)
	}
	return Parse(data)
}

// LatestPerMinor returns the release with the greatest patch number for each
// major.minor series, keyed by "major.minor". Releases whose version does not
// parse are skipped.
func (c *Catalog) LatestPerMinor() map[string]Release {
	result := make(map[string]Release)
	parsed := make(map[string]*semver.Version)

	for _, rel := range c.Builds {
		v, err := semver.StrictNewVersion(rel.Version)
		if err != nil {
			continue
		}

		key := fmt.Sprintf("%d.%d", v.Major(), v.Minor())
		if cur, ok := parsed[key]; ok && !v.GreaterThan(cur) {
			continue
		}
		result[key] = rel
		parsed[key] = v
	}

	return result
}

// ByVersion returns a map of all releases keyed by exact version string.
// Duplicate versions in the manifest are last-write-wins.
func (c *Catalog) ByVersion() map[string]Release {
	m := make(map[string]Release, len(c.Builds))
	for _, rel := range c.Builds {
		m[rel.Version] = rel
	}
	return m
}

// Latest returns the release named by the manifest's latestRelease field.
func (c *Catalog) Latest() (Release, bool) {
	if c.LatestRelease == "" {
		return Release{}, false
	}
	rel, ok := c.ByVersion()[c.LatestRelease]
	return rel, ok
}
