package autosave

import (
	"context"
	"sync"
	"time"

	"session-studio/internal/sessions/domain/model"
	"session-studio/internal/sessions/usecase"
)

// DefaultQuietPeriod is how long the editor must be idle before a debounced
// save fires.
const DefaultQuietPeriod = 5 * time.Second

// Saver is the slice of the API client the scheduler needs.
type Saver interface {
	SaveDraft(ctx context.Context, input usecase.SaveDraftInput) (*model.Session, error)
	Publish(ctx context.Context, input usecase.PublishInput) (*model.Session, error)
}

// Fields is the editor's current field values. The scheduler always sends the
// complete set it was last told about.
type Fields struct {
	Title       string
	Tags        model.TagList
	JSONFileURL string
	Duration    string
}

// Scheduler debounces autosaves for a single session document. Each edit
// resets the quiet-period timer, so at most one save is issued per quiet
// period after the last edit. Saves are single-flight: while one save request
// is outstanding no second one starts, and edits that arrive mid-flight are
// coalesced into a save that is re-armed once the flight completes. An
// explicit Publish cancels any pending debounced save and supersedes it.
type Scheduler struct {
	saver Saver
	quiet time.Duration

	mu         sync.Mutex
	flightDone *sync.Cond

	timer     *time.Timer
	sessionID string
	fields    Fields
	dirty     bool
	inFlight  bool
	closed    bool
	lastErr   error
	onSaved   func(*model.Session)
}

// NewScheduler creates a scheduler for one session document. sessionID may be
// empty for a not-yet-created draft; the id assigned by the first successful
// save is captured automatically.
func NewScheduler(s Saver, sessionID string, quiet time.Duration) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	sched := &Scheduler{
		saver:     s,
		quiet:     quiet,
		sessionID: sessionID,
	}
	sched.flightDone = sync.NewCond(&sched.mu)
	return sched
}

// OnSaved registers a callback invoked after every successful save or publish
// with the document as persisted by the server.
func (s *Scheduler) OnSaved(fn func(*model.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSaved = fn
}

// SessionID returns the server-assigned document id, or "" before the first
// successful save.
func (s *Scheduler) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// LastError returns the error from the most recent save attempt, if any.
func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Note records an edit. The latest field values replace any previously noted
// ones and the quiet-period timer restarts from zero.
func (s *Scheduler) Note(fields Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.fields = fields
	s.dirty = true
	s.armTimerLocked()
}

// armTimerLocked (re)starts the debounce timer. Callers hold s.mu.
func (s *Scheduler) armTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.quiet, s.fire)
}

// fire runs when the quiet period elapses with no further edits.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed || !s.dirty || s.inFlight {
		// An in-flight save re-arms on completion; nothing to do here.
		s.mu.Unlock()
		return
	}
	fields := s.fields
	id := s.sessionID
	s.dirty = false
	s.inFlight = true
	s.mu.Unlock()

	saved, err := s.saver.SaveDraft(context.Background(), draftInput(id, fields))

	s.mu.Lock()
	s.inFlight = false
	s.lastErr = err
	if err != nil {
		// Keep the edit pending so the next quiet period retries it.
		s.dirty = true
	} else if saved != nil {
		s.sessionID = saved.ID
	}
	if s.dirty && !s.closed {
		s.armTimerLocked()
	}
	callback := s.onSaved
	s.flightDone.Broadcast()
	s.mu.Unlock()

	if err == nil && callback != nil && saved != nil {
		callback(saved)
	}
}

// Publish cancels any pending debounced save, waits out an in-flight one, and
// publishes immediately with the current field values. A document that has
// never been saved is saved first so the server can assign its id.
func (s *Scheduler) Publish(ctx context.Context) (*model.Session, error) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for s.inFlight {
		s.flightDone.Wait()
	}
	fields := s.fields
	id := s.sessionID
	s.dirty = false
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.flightDone.Broadcast()
		s.mu.Unlock()
	}()

	if id == "" {
		saved, err := s.saver.SaveDraft(ctx, draftInput("", fields))
		if err != nil {
			s.recordErr(err)
			return nil, err
		}
		id = saved.ID
		s.mu.Lock()
		s.sessionID = id
		s.mu.Unlock()
	}

	published, err := s.saver.Publish(ctx, publishInput(id, fields))
	if err != nil {
		s.recordErr(err)
		return nil, err
	}

	s.mu.Lock()
	s.lastErr = nil
	callback := s.onSaved
	s.mu.Unlock()

	if callback != nil {
		callback(published)
	}
	return published, nil
}

// Flush issues a pending save immediately instead of waiting out the quiet
// period. It is a no-op when nothing is dirty.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for s.inFlight {
		s.flightDone.Wait()
	}
	if !s.dirty || s.closed {
		s.mu.Unlock()
		return nil
	}
	fields := s.fields
	id := s.sessionID
	s.dirty = false
	s.inFlight = true
	s.mu.Unlock()

	saved, err := s.saver.SaveDraft(ctx, draftInput(id, fields))

	s.mu.Lock()
	s.inFlight = false
	s.lastErr = err
	if err != nil {
		s.dirty = true
	} else if saved != nil {
		s.sessionID = saved.ID
	}
	s.flightDone.Broadcast()
	s.mu.Unlock()

	return err
}

// Close stops the timer and waits for any in-flight save. Pending unsaved
// edits are dropped; call Flush first to keep them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for s.inFlight {
		s.flightDone.Wait()
	}
	s.mu.Unlock()
}

func (s *Scheduler) recordErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func draftInput(id string, fields Fields) usecase.SaveDraftInput {
	input := usecase.SaveDraftInput{
		Title:       &fields.Title,
		Tags:        &fields.Tags,
		JSONFileURL: &fields.JSONFileURL,
		Duration:    &fields.Duration,
	}
	if id != "" {
		input.ID = &id
	}
	return input
}

func publishInput(id string, fields Fields) usecase.PublishInput {
	return usecase.PublishInput{
		ID:          id,
		Title:       &fields.Title,
		Tags:        &fields.Tags,
		JSONFileURL: &fields.JSONFileURL,
		Duration:    &fields.Duration,
	}
}
