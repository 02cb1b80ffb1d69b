// Package pragma extracts a Solidity source file's compiler version
// constraint and classifies it as an exact pin or a version range.
package pragma

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

const directive = "pragma solidity"

// ErrNoPragma is returned when a source file carries no version declaration.
var ErrNoPragma = errors.New("no solidity version pragma found")

// ParseError reports a version declaration that could not be parsed.
type ParseError struct {
	Text   string
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse version pragma %q: %v", e.Text, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Reason }

// Kind classifies a constraint.
type Kind int

const (
	// Exact pins one concrete compiler version, e.g. "=0.8.19".
	Exact Kind = iota
	// Range accepts any version satisfying a requirement expression,
	// e.g. "^0.8.0" or ">=0.8.7 <0.9.0".
	Range
)

// Constraint is a parsed version declaration. Version is set for Exact
// constraints, Req for Range constraints.
type Constraint struct {
	Kind    Kind
	Version *semver.Version
	Req     *semver.Constraints
}

// bareEquals matches an equality anchor: a '=' that is not the tail of a
// comparison operator such as >=, <= or !=.
var bareEquals = regexp.MustCompile(`(^|[^<>!=])=`)

// Extract finds the version declaration in src and classifies it.
// A declaration containing an equality anchor is Exact; everything else is
// parsed as a requirement expression supporting caret, tilde, comparison
// operators and space-separated conjunctions.
func Extract(src []byte) (Constraint, error) {
	for _, line := range strings.Split(string(src), "\n") {
		idx := strings.Index(line, directive)
		if idx < 0 {
			continue
		}

		rest := strings.TrimSpace(line[idx+len(directive):])
		rest = strings.TrimSuffix(rest, ";")
		rest = strings.TrimSpace(rest)

		if bareEquals.MatchString(rest) {
			return parseExact(rest)
		}
		return parseRange(rest)
	}

	return Constraint{}, ErrNoPragma
}

// ExtractFile reads path and extracts its version declaration.
func ExtractFile(path string) (Constraint, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Constraint{}, errors.Wrapf(err, "failed to read source file %s", path)
	}
	return Extract(src)
}

// parseExact takes the first token of the declaration, strips leading
// non-digit characters, and parses a concrete version.
func parseExact(rest string) (Constraint, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Constraint{}, &ParseError{Text: rest, Reason: errors.New("empty declaration")}
	}

	token := strings.TrimLeftFunc(fields[0], func(r rune) bool {
		return r < '0' || r > '9'
	})
	v, err := semver.StrictNewVersion(token)
	if err != nil {
		return Constraint{}, &ParseError{Text: rest, Reason: err}
	}

	return Constraint{Kind: Exact, Version: v}, nil
}

func parseRange(rest string) (Constraint, error) {
	req, err := semver.NewConstraint(rest)
	if err != nil {
		return Constraint{}, &ParseError{Text: rest, Reason: err}
	}
	return Constraint{Kind: Range, Req: req}, nil
}
