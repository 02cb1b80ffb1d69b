package logging

import (
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncDelivers(t *testing.T) {
	inner := memory.New()
	h := NewAsync(inner, 16)

	logger := &log.Logger{Handler: h, Level: log.InfoLevel}
	logger.WithField("version", "0.8.19").Info("downloaded")
	logger.Info("verified")

	h.Close()

	require.Len(t, inner.Entries, 2)
	assert.Equal(t, "downloaded", inner.Entries[0].Message)
	assert.Equal(t, "0.8.19", inner.Entries[0].Fields.Get("version"))
}

// A stalled sink must not block the logging call site.
type stalledHandler struct{}

func (stalledHandler) HandleLog(*log.Entry) error {
	time.Sleep(time.Hour)
	return nil
}

func TestAsyncDropsWhenFull(t *testing.T) {
	h := NewAsync(stalledHandler{}, 1)
	logger := &log.Logger{Handler: h, Level: log.InfoLevel}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			logger.Info("flood")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("logging blocked on a stalled sink")
	}
}
