package analysis

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/satyanarayana32518/plant-disease-detection/internal/agent"
	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
)

// manualScheduler fires callbacks only when the test advances its clock.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTimer
	// leaky makes Stop report success without cancelling, like a timer that
	// had already fired and was waiting for the lock.
	leaky bool
}

type manualTimer struct {
	s    *manualScheduler
	at   time.Duration
	f    func()
	done bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	if !t.s.leaky {
		t.done = true
	}
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d, firing due callbacks in time order.
// Callbacks scheduled while advancing fire too if they fall inside the window.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.tasks {
			if t.done || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.done = true
		s.now = next.at
		s.mu.Unlock()

		next.f()
	}
}

// Pending counts callbacks that have neither fired nor been stopped.
func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

var testEpoch = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestOrchestrator returns an orchestrator whose draws replay indices into
// the default catalog.
func newTestOrchestrator(t *testing.T, indices ...int) (*Orchestrator, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	detector := agent.NewSimulatedDetector(catalog.Default(), agent.NewSequence(indices...))
	o := NewOrchestrator(uuid.New(), detector,
		WithScheduler(sched),
		WithClock(func() time.Time { return testEpoch }),
		WithLogger(discardLogger()),
	)
	return o, sched
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{G: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngUpload(t *testing.T) Upload {
	t.Helper()
	return Upload{Filename: "leaf.png", MediaType: "image/png", Data: pngBytes(t, 4, 3)}
}

// runScript plays a whole analysis run including the settle pause.
func runScript(s *manualScheduler) {
	s.Advance(scriptDuration(DefaultScript, DefaultSettleDelay))
}
