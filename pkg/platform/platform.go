// Package platform maps the host OS and CPU architecture to the platform
// identifier used by the Solidity binary distribution.
package platform

import (
	"fmt"
	"runtime"
)

// OS is an operating system supported by the solc distribution.
type OS string

const (
	Linux   OS = "linux"
	MacOS   OS = "macosx"
	Windows OS = "windows"
)

// Arch is a CPU architecture supported by the solc distribution.
type Arch string

const (
	Amd64   Arch = "amd64"
	Aarch64 Arch = "aarch64"
)

// Platform is a combined OS + architecture target.
type Platform struct {
	OS   OS
	Arch Arch
}

// Detect maps the running process's OS and architecture to a Platform.
// It returns an error when either axis has no solc distribution.
func Detect() (Platform, error) {
	var p Platform

	switch runtime.GOOS {
	case "linux":
		p.OS = Linux
	case "darwin":
		p.OS = MacOS
	case "windows":
		p.OS = Windows
	default:
		return Platform{}, fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	switch runtime.GOARCH {
	case "amd64":
		p.Arch = Amd64
	case "arm64":
		p.Arch = Aarch64
	default:
		return Platform{}, fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
	}

	return p, nil
}

// ID returns the distribution path segment, e.g. "linux-amd64" or
// "macosx-amd64".
func (p Platform) ID() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

func (p Platform) String() string {
	return p.ID()
}

// ExecutableName appends the platform's executable suffix to base.
func (p Platform) ExecutableName(base string) string {
	if p.OS == Windows {
		return base + ".exe"
	}
	return base
}

// BinaryBasename returns the long distribution name of a solc binary,
// e.g. "solc-linux-amd64-v0.8.19+commit.7dd6d404".
func (p Platform) BinaryBasename(version, build string) string {
	return fmt.Sprintf("solc-%s-v%s+%s", p.ID(), version, build)
}
