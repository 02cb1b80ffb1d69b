package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256 of "hello world", 0x-prefixed as the manifest records it.
const helloWorldSHA256 = "0xb94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "solc-0.8.19")
	err := Download(context.Background(), server.Client(), server.URL, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestDownloadStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "solc-0.8.19")
	err := Download(context.Background(), server.Client(), server.URL, dest)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	// No partial file and no leftover temp file.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadVerified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "solc-0.8.19")
	err := DownloadVerified(context.Background(), server.Client(), server.URL, dest, helloWorldSHA256)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.NotZero(t, info.Mode()&0111, "binary should be executable")
	}
}

func TestDownloadVerifiedMismatchLeavesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("corrupted body"))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "solc-0.8.19")
	err := DownloadVerified(context.Background(), server.Client(), server.URL, dest, helloWorldSHA256)

	var integrityErr *IntegrityError
	require.ErrorAs(t, err, &integrityErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVerifySHA256(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
		wantErr  bool
	}{
		{
			name:     "matching digest",
			content:  "hello world",
			expected: helloWorldSHA256,
		},
		{
			name:     "case insensitive match",
			content:  "hello world",
			expected: "0xB94D27B9934D3E08A52E52D7DA7DABFAC484EFE37A5380EE9088F7ACE2EFCDE9",
		},
		{
			name:     "mismatch",
			content:  "hello world",
			expected: "0xdeadbeef",
			wantErr:  true,
		},
		{
			name:     "empty file",
			content:  "",
			expected: "0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "blob")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			err := VerifySHA256(path, tt.expected)
			if tt.wantErr {
				var integrityErr *IntegrityError
				require.ErrorAs(t, err, &integrityErr)
				assert.Equal(t, path, integrityErr.Path)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifySHA256MissingFile(t *testing.T) {
	err := VerifySHA256(filepath.Join(t.TempDir(), "absent"), helloWorldSHA256)
	require.Error(t, err)
	assert.NotErrorAs(t, err, new(*IntegrityError))
}
