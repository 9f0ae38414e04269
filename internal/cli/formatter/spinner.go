package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Braille dot spinner frames.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerInterval = 80 * time.Millisecond
	// Elapsed seconds appear once a fetch is slower than this.
	spinnerShowElapsed = time.Second
)

// Spinner animates a message on a terminal writer while a blocking call
// runs. Stop is safe to call more than once.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	message  string
	interval time.Duration
	started  time.Time
	stop     chan struct{}
	done     chan struct{}
	stopped  bool
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		interval: spinnerInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.started = time.Now()
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.stop:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case now := <-ticker.C:
				fmt.Fprint(s.w, "\r"+s.frame(i, now.Sub(s.started)))
			}
		}
	}()
}

// frame renders one animation step.
func (s *Spinner) frame(i int, elapsed time.Duration) string {
	line := fmt.Sprintf("  %s %s", StylePurple.Render(spinnerFrames[i%len(spinnerFrames)]), Dim(s.message))
	if elapsed >= spinnerShowElapsed {
		line += Dim(fmt.Sprintf(" %ds", int(elapsed.Seconds())))
	}
	return line
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.stop)
	<-s.done
}

// StartSpinner creates and starts a spinner; call the returned function to
// stop it.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
