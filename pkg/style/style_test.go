package style

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestColorRespectsNoColor(t *testing.T) {
	prev := NoColor
	defer func() { NoColor = prev }()

	NoColor = true
	if got := C(Red, "x"); got != "x" {
		t.Errorf("C() with NoColor = %q", got)
	}
	if got := OK(); got != "✓" {
		t.Errorf("OK() with NoColor = %q", got)
	}

	NoColor = false
	if got := C(Red, "x"); got != Red+"x"+Reset {
		t.Errorf("C() = %q", got)
	}
}

func TestRpadStyled(t *testing.T) {
	prev := NoColor
	defer func() { NoColor = prev }()
	NoColor = false

	got := rpadStyled("serve", 9)
	if !strings.HasPrefix(got, Cyan+"serve"+Reset) {
		t.Errorf("rpadStyled() = %q", got)
	}
	if !strings.HasSuffix(got, "    ") || strings.HasSuffix(got, "     ") {
		t.Errorf("rpadStyled() padding wrong: %q", got)
	}
}

func TestSpinner(t *testing.T) {
	prev := NoColor
	defer func() { NoColor = prev }()
	NoColor = true

	var buf syncBuffer
	s := NewSpinner(&buf, "Optimizing")
	s.delay = time.Millisecond
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "⠋ Optimizing") {
		t.Errorf("spinner output missing first frame: %q", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("spinner did not clear line: %q", out)
	}
}
