package formatter

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards bytes.Buffer against the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_Frame(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "Fetching processes...")

	f := s.frame(0, 200*time.Millisecond)
	assert.Contains(t, f, "⠋")
	assert.Contains(t, f, "Fetching processes...")
	assert.NotContains(t, f, "0s")

	f = s.frame(11, 2500*time.Millisecond)
	assert.Contains(t, f, "⠙")
	assert.Contains(t, f, " 2s")
}

func TestSpinner_StopClearsLineAndIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Loading")
	s.interval = time.Millisecond
	s.Start()

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Loading"))
	}, time.Second, time.Millisecond)

	s.Stop()
	s.Stop()
	assert.True(t, bytes.HasSuffix([]byte(out.String()), []byte("\r\033[K")))
}
