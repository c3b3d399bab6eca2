// Package voice turns a speech recognizer into a start/stop dictation
// session that keeps listening across recognizer segments.
package voice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vault/internal/logger"
)

// RestartDelay is the pause between a segment ending and the next one starting.
const RestartDelay = 100 * time.Millisecond

var ErrAlreadyListening = errors.New("voice: session already listening")

// Result is what a recognizer reports while a segment is open. Transcript
// is cumulative for the segment.
type Result struct {
	Transcript string
	Final      bool
}

// Recognizer captures one segment of speech. Listen returns nil when the
// segment ends normally and a *RecognitionError when the provider fails.
// It must return promptly once ctx is done.
type Recognizer interface {
	Listen(ctx context.Context, emit func(Result)) error
}

// Fragment is a Result tagged with the run and segment it belongs to.
// Runs are numbered from 1 in Start order.
type Fragment struct {
	Run        int
	Segment    int
	Transcript string
	Final      bool
}

// Session runs a recognizer in a loop until stopped or until a
// non-recoverable error. It can be started again after it stops.
type Session struct {
	rec   Recognizer
	log   logger.Logger
	delay time.Duration

	fragments chan Fragment
	errs      chan string

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	listening bool
	runs      int
}

func NewSession(rec Recognizer, log logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		rec:       rec,
		log:       log,
		delay:     RestartDelay,
		fragments: make(chan Fragment, 64),
		errs:      make(chan string, 4),
	}
}

// Fragments delivers transcript updates in order.
func (s *Session) Fragments() <-chan Fragment { return s.fragments }

// Errors delivers user-facing messages. The session has already stopped
// when one arrives.
func (s *Session) Errors() <-chan string { return s.errs }

// Listening reports whether the loop is running.
func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Runs reports how many times the session has been started.
func (s *Session) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Start begins listening. The session ends when ctx is done, Stop is
// called, or the recognizer fails.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listening {
		return ErrAlreadyListening
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.listening = true
	s.runs++

	go s.loop(ctx, cancel, s.done, s.runs)
	return nil
}

// Stop ends the session and waits for the loop to exit. Stopping an idle
// session does nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Toggle starts an idle session or stops a running one and reports
// whether it is now listening.
func (s *Session) Toggle(ctx context.Context) (bool, error) {
	if s.Listening() {
		s.Stop()
		return false, nil
	}
	if err := s.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) loop(ctx context.Context, cancel context.CancelFunc, done chan struct{}, run int) {
	defer func() {
		cancel()
		s.mu.Lock()
		s.listening = false
		s.cancel = nil
		s.mu.Unlock()
		close(done)
	}()

	for segment := 0; ; segment++ {
		err := s.rec.Listen(ctx, func(r Result) {
			select {
			case s.fragments <- Fragment{Run: run, Segment: segment, Transcript: r.Transcript, Final: r.Final}:
			case <-ctx.Done():
			}
		})
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			code := ""
			var re *RecognitionError
			if errors.As(err, &re) {
				code = re.Code
			}
			if code != CodeNoSpeech {
				s.log.Warn("speech recognition stopped", logger.String("code", code), logger.Error(err))
				s.report(Message(code))
				return
			}
		}

		// Segment over: restart unless stopped meanwhile.
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
		}
	}
}

func (s *Session) report(msg string) {
	select {
	case s.errs <- msg:
	default:
		s.log.Debug("dropping voice error, nobody is reading", logger.String("message", msg))
	}
}

// Compose appends dictated text to what was already typed.
func Compose(base, transcript string) string {
	if base == "" {
		return transcript
	}
	if transcript == "" {
		return base
	}
	return base + " " + transcript
}

// Draft accumulates fragments into an input line. A new segment builds on
// everything dictated before it.
type Draft struct {
	mu      sync.Mutex
	base    string
	current string
	run     int
	segment int
	minRun  int // fragments from earlier runs are ignored
}

// Reset sets the typed text dictation starts from.
func (d *Draft) Reset(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.base, d.current, d.segment = text, text, 0
}

// Discard empties the draft once its text has been used. Fragments from
// run lastRun or earlier that are still queued no longer apply.
func (d *Draft) Discard(lastRun int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.base, d.current, d.segment = "", "", 0
	d.minRun = lastRun + 1
}

// Apply folds a fragment in and returns the new text.
func (d *Draft) Apply(f Fragment) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f.Run < d.minRun {
		return d.current
	}
	if f.Run != d.run || f.Segment != d.segment {
		d.base = d.current
		d.run = f.Run
		d.segment = f.Segment
	}
	d.current = Compose(d.base, f.Transcript)
	return d.current
}

// Text returns the current line.
func (d *Draft) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}
