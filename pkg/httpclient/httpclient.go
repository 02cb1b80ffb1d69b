package httpclient

import (
	"net/http"
	"time"
)

const userAgent = "emacs-solidity-server"

// New creates the HTTP client used for manifest and binary downloads.
// Compiler binaries run tens of megabytes, so the timeout is generous.
func New() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Minute,
		Transport: &userAgentTransport{
			Base: http.DefaultTransport,
		},
	}
}

// userAgentTransport is a custom RoundTripper that stamps the client's
// User-Agent on every request.
type userAgentTransport struct {
	Base http.RoundTripper
}

// RoundTrip implements the http.RoundTripper interface
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req2 := req.Clone(req.Context())
	if req2.Header.Get("User-Agent") == "" {
		req2.Header.Set("User-Agent", userAgent)
	}
	return t.Base.RoundTrip(req2)
}
