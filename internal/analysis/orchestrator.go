package analysis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satyanarayana32518/plant-disease-detection/internal/agent"
)

const subscriberBuffer = 16

// Orchestrator owns one Session and drives it through
// idle -> intaken -> analyzing -> complete. It is the only writer of the
// session; everything else reads snapshots.
//
// The mutex stands in for the page's single thread: every mutation, including
// scheduled script steps, runs under it, and at most one analysis run is
// active at a time.
type Orchestrator struct {
	mu      sync.Mutex
	session Session
	pending Timer
	closed  bool

	subs    map[int]chan Snapshot
	nextSub int

	detector  agent.Detector
	scheduler Scheduler
	script    []Step
	settle    time.Duration
	pace      float64
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Orchestrator)

func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) {
		o.scheduler = s
	}
}

// WithScript replaces the staged status events and the pause before the diagnosis.
func WithScript(script []Step, settle time.Duration) Option {
	return func(o *Orchestrator) {
		o.script = script
		o.settle = settle
	}
}

// WithPace multiplies every script delay. 0 plays the script back to back.
func WithPace(pace float64) Option {
	return func(o *Orchestrator) {
		if pace >= 0 {
			o.pace = pace
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an idle session driven by detector.
func NewOrchestrator(id uuid.UUID, detector agent.Detector, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		subs:      make(map[int]chan Snapshot),
		detector:  detector,
		scheduler: NewRealScheduler(),
		script:    DefaultScript,
		settle:    DefaultSettleDelay,
		pace:      1,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	now := o.now()
	o.session = Session{
		ID:        id,
		Phase:     PhaseIdle,
		Log:       []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.logger = o.logger.With("session", id.String())
	return o
}

func (o *Orchestrator) ID() uuid.UUID {
	return o.session.ID
}

// Snapshot returns a copy of the current session.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.clone()
}

// SelectImage takes a new upload, replaces the conversation with one advisory
// message and moves the session to intaken. A run in flight is abandoned.
// On ErrInvalidImage the session is not modified.
func (o *Orchestrator) SelectImage(u Upload) (Message, error) {
	img, err := decodeImage(u)
	if err != nil {
		return Message{}, err
	}
	text, err := composeAdvisory(o.detector.Preview())
	if err != nil {
		return Message{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.cancelLocked()
	msg := Message{Text: text, Kind: KindAdvisory, At: o.now()}
	o.session.Image = img
	o.session.Diagnosis = nil
	o.session.Progress = 0
	o.session.Log = []Message{msg}
	o.session.Phase = PhaseIntaken
	o.logger.Info("image selected", "format", img.Format, "size", img.Size, "width", img.Width, "height", img.Height)
	o.publishLocked()
	return msg, nil
}

// StartAnalysis begins the staged script. It is single-flight: without an
// image it returns ErrNoImage and while running it returns ErrAlreadyRunning,
// leaving the session unchanged in both cases.
func (o *Orchestrator) StartAnalysis() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Image == nil {
		return ErrNoImage
	}
	if o.session.Phase == PhaseAnalyzing {
		return ErrAlreadyRunning
	}

	gen := o.cancelLocked()
	o.session.Log = []Message{}
	o.session.Diagnosis = nil
	o.session.Progress = 0
	o.session.Phase = PhaseAnalyzing
	o.logger.Info("analysis started", "steps", len(o.script), "eta", o.scale(scriptDuration(o.script, o.settle)))
	o.scheduleLocked(gen, 0)
	o.publishLocked()
	return nil
}

// Reset drops the image and every result and returns the session to idle.
// It is safe in any phase; a pending script step becomes a no-op.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked()
}

func (o *Orchestrator) resetLocked() {
	if o.session.Phase == PhaseIdle && o.pending == nil {
		return
	}
	o.cancelLocked()
	o.session.Image = nil
	o.session.Diagnosis = nil
	o.session.Log = []Message{}
	o.session.Progress = 0
	o.session.Phase = PhaseIdle
	o.logger.Info("session reset")
	o.publishLocked()
}

// Close resets the session and closes every subscription. Later calls to
// Subscribe return a closed channel.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.resetLocked()
	o.closed = true
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
}

// Subscribe streams snapshots, starting with the current one, until ctx is done.
// Sends never block the orchestrator: a subscriber that falls behind loses
// older snapshots but always gets the most recent one.
func (o *Orchestrator) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		close(ch)
		return ch
	}
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	ch <- o.session.clone()
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		defer o.mu.Unlock()
		if c, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(c)
		}
	}()
	return ch
}

// cancelLocked invalidates scheduled steps and returns the new generation.
func (o *Orchestrator) cancelLocked() uint64 {
	if o.pending != nil {
		o.pending.Stop()
		o.pending = nil
	}
	o.session.Generation++
	return o.session.Generation
}

// scheduleLocked arms step i of the script; i == len(script) is the diagnosis.
func (o *Orchestrator) scheduleLocked(gen uint64, i int) {
	delay := o.settle
	if i < len(o.script) {
		delay = o.script[i].Delay
	}
	o.pending = o.scheduler.AfterFunc(o.scale(delay), func() {
		o.fire(gen, i)
	})
}

func (o *Orchestrator) fire(gen uint64, i int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkLocked(gen); err != nil {
		o.logger.Debug("discarding analysis step", "step", i, "generation", gen, "err", err)
		return
	}
	o.pending = nil

	n := len(o.script)
	if i < n {
		o.appendLocked(o.script[i].Text, kindForStep(i, n))
		o.session.Progress = 100 * float64(i+1) / float64(n)
		o.scheduleLocked(gen, i+1)
		o.publishLocked()
		return
	}

	result := o.detector.Detect()
	o.session.Diagnosis = &result
	o.appendLocked(detectionSummary(result), KindStatus)
	o.session.Progress = 100
	o.session.Phase = PhaseComplete
	o.logger.Info("analysis complete", "diagnosis", result.Name, "confidence", result.Confidence)
	o.publishLocked()
}

func (o *Orchestrator) checkLocked(gen uint64) error {
	if gen != o.session.Generation || o.session.Phase != PhaseAnalyzing {
		return errStaleCallback
	}
	return nil
}

func (o *Orchestrator) appendLocked(text string, kind MessageKind) {
	o.session.Log = append(o.session.Log, Message{Text: text, Kind: kind, At: o.now()})
}

// publishLocked stamps the session and fans the new state out to subscribers.
func (o *Orchestrator) publishLocked() {
	o.session.UpdatedAt = o.now()
	if len(o.subs) == 0 {
		return
	}
	for _, ch := range o.subs {
		snap := o.session.clone()
		select {
		case ch <- snap:
			continue
		default:
		}
		// Full: drop the oldest snapshot to make room for the newest.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (o *Orchestrator) scale(d time.Duration) time.Duration {
	return time.Duration(float64(d) * o.pace)
}
