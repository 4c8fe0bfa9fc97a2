package style

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a one-line progress message until stopped.
type Spinner struct {
	w     io.Writer
	msg   string
	delay time.Duration

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewSpinner returns a spinner writing to w. It does not draw anything
// until Start.
func NewSpinner(w io.Writer, msg string) *Spinner {
	return &Spinner{
		w:     w,
		msg:   msg,
		delay: 80 * time.Millisecond,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start begins drawing in the background
func (s *Spinner) Start() *Spinner {
	go func() {
		defer close(s.done)
		t := time.NewTicker(s.delay)
		defer t.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", C(Cyan, spinnerFrames[i%len(spinnerFrames)]), s.msg)
			select {
			case <-s.stop:
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-t.C:
			}
		}
	}()
	return s
}

// Stop clears the line and waits for the drawing goroutine. Calling it
// more than once is fine; calling it without Start is not.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}
