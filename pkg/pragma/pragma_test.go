package pragma

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.StrictNewVersion(s)
	require.NoError(t, err)
	return v
}

func TestExtractExact(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "equality pin",
			src:  "pragma solidity =0.8.19;",
			want: "0.8.19",
		},
		{
			name: "pin after license header",
			src:  "// SPDX-License-Identifier: MIT\npragma solidity =0.7.6;\n\ncontract C {}\n",
			want: "0.7.6",
		},
		{
			name: "indented declaration",
			src:  "  pragma solidity =0.8.4 ;",
			want: "0.8.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Extract([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, Exact, c.Kind)
			require.NotNil(t, c.Version)
			assert.Equal(t, tt.want, c.Version.String())
		})
	}
}

func TestExtractRange(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		satisfies []string
		violates  []string
	}{
		{
			name:      "caret",
			src:       "pragma solidity ^0.8.0;",
			satisfies: []string{"0.8.0", "0.8.21"},
			violates:  []string{"0.7.6", "0.9.0"},
		},
		{
			name:      "tilde",
			src:       "pragma solidity ~0.8.4;",
			satisfies: []string{"0.8.4", "0.8.19"},
			violates:  []string{"0.9.0"},
		},
		{
			name:      "space separated conjunction",
			src:       "pragma solidity >=0.8.7 <0.9.0;",
			satisfies: []string{"0.8.7", "0.8.21"},
			violates:  []string{"0.8.6", "0.9.0"},
		},
		{
			name:      "bare version",
			src:       "pragma solidity 0.8.19;",
			satisfies: []string{"0.8.19"},
			violates:  []string{"0.8.18"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Extract([]byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, Range, c.Kind)
			require.NotNil(t, c.Req)
			for _, v := range tt.satisfies {
				assert.True(t, c.Req.Check(mustVersion(t, v)), "%s should satisfy", v)
			}
			for _, v := range tt.violates {
				assert.False(t, c.Req.Check(mustVersion(t, v)), "%s should not satisfy", v)
			}
		})
	}
}

func TestExtractNoPragma(t *testing.T) {
	_, err := Extract([]byte("contract C {}\n"))
	assert.ErrorIs(t, err, ErrNoPragma)
}

func TestExtractParseError(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "garbage exact", src: "pragma solidity =latest;"},
		{name: "garbage range", src: "pragma solidity ^banana;"},
		{name: "empty declaration", src: "pragma solidity ;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.src))
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.sol")
	require.NoError(t, os.WriteFile(path, []byte("pragma solidity ^0.8.0;\n"), 0644))

	c, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, Range, c.Kind)

	_, err = ExtractFile(filepath.Join(t.TempDir(), "missing.sol"))
	assert.Error(t, err)
}
