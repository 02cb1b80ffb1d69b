package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	p, err := Detect()

	switch runtime.GOOS {
	case "linux", "darwin", "windows":
	default:
		assert.Error(t, err)
		return
	}
	switch runtime.GOARCH {
	case "amd64", "arm64":
	default:
		assert.Error(t, err)
		return
	}

	require.NoError(t, err)
	assert.NotEmpty(t, p.OS)
	assert.NotEmpty(t, p.Arch)
}

func TestID(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		want     string
	}{
		{
			name:     "linux amd64",
			platform: Platform{OS: Linux, Arch: Amd64},
			want:     "linux-amd64",
		},
		{
			name:     "macos renders as macosx",
			platform: Platform{OS: MacOS, Arch: Amd64},
			want:     "macosx-amd64",
		},
		{
			name:     "windows aarch64",
			platform: Platform{OS: Windows, Arch: Aarch64},
			want:     "windows-aarch64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.platform.ID())
			assert.Equal(t, tt.want, tt.platform.String())
		})
	}
}

func TestExecutableName(t *testing.T) {
	win := Platform{OS: Windows, Arch: Amd64}
	assert.Equal(t, "solc-0.8.19.exe", win.ExecutableName("solc-0.8.19"))

	lin := Platform{OS: Linux, Arch: Amd64}
	assert.Equal(t, "solc-0.8.19", lin.ExecutableName("solc-0.8.19"))
}

func TestBinaryBasename(t *testing.T) {
	p := Platform{OS: Linux, Arch: Amd64}
	got := p.BinaryBasename("0.8.19", "commit.7dd6d404")
	assert.Equal(t, "solc-linux-amd64-v0.8.19+commit.7dd6d404", got)
}
