package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// verifyChunkSize keeps memory use independent of file size.
const verifyChunkSize = 8192

// IntegrityError reports a digest mismatch between a file on disk and the
// catalog's recorded hash.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// VerifySHA256 streams the file at path through SHA-256 in fixed-size chunks
// and compares the digest against expected, a "0x"-prefixed hex string as
// recorded in the release manifest. Comparison is case-insensitive.
func VerifySHA256(path, expected string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	h := sha256.New()
	buf := make([]byte, verifyChunkSize)
	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errors.Wrap(readErr, "failed to read file")
		}
	}

	actual := "0x" + hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, expected) {
		return &IntegrityError{Path: path, Expected: expected, Actual: actual}
	}
	return nil
}
