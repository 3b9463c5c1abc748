// Package session holds the state of one translation surface and drives the
// stream client on its behalf.
//
// A Controller owns the request parameters, the status, the accumulated output
// and at most one running stream. Starting a new run cancels the previous one,
// and state changes coming from a superseded run are ignored.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oukeidos/codetr/internal/apperrors"
	"github.com/oukeidos/codetr/internal/language"
	"github.com/oukeidos/codetr/internal/logger"
	"github.com/oukeidos/codetr/internal/models"
	"github.com/oukeidos/codetr/internal/request"
	"github.com/oukeidos/codetr/internal/stream"
)

// Status is the lifecycle state of a Controller.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

const (
	MessageIdle       = `Enter some code and click "Translate"`
	MessageRunning    = "Translating..."
	MessageCopied     = "Output copied to clipboard!"
	MessageCopyFailed = "Translation complete. Could not copy to clipboard."
)

// ErrBusy is returned when the source text is edited during a run.
var ErrBusy = errors.New("a translation is in progress")

// CredentialStore loads and saves the single credential string.
type CredentialStore interface {
	Load() (string, bool, error)
	Save(string) error
}

// Clipboard receives the final output of every completed run.
type Clipboard interface {
	Write(text string) error
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	SourceLanguage string
	TargetLanguage string
	Model          models.Model
	SourceText     string
	OutputText     string
	Status         Status
	Message        string
	HasCredential  bool
	// SourceEditable is false while a run is in progress.
	SourceEditable bool
	// RunID identifies the latest stream session, empty before the first run.
	RunID string
}

// Options configure a Controller.
type Options struct {
	Streamer  stream.Starter
	Store     CredentialStore
	Clipboard Clipboard

	SourceLanguage string
	TargetLanguage string
	Model          models.Model

	// Context is the parent of runs started by a target language change.
	// Defaults to context.Background.
	Context context.Context
	// Timeout bounds each run; zero means no limit. Expiry cancels the run.
	Timeout time.Duration
}

// Controller is safe for concurrent use.
type Controller struct {
	streamer  stream.Starter
	store     CredentialStore
	clipboard Clipboard
	baseCtx   context.Context
	timeout   time.Duration

	mu             sync.Mutex
	sourceLanguage string
	targetLanguage string
	model          models.Model
	sourceText     string
	credential     string
	status         Status
	output         string
	message        string
	runID          string
	activeID       uint64
	active         *stream.Session
	runDone        chan struct{}

	listeners    map[int]func(Snapshot)
	nextListener int

	notifyMu sync.Mutex
}

// NewController builds a controller and loads the credential once.
func NewController(opts Options) *Controller {
	c := &Controller{
		streamer:       opts.Streamer,
		store:          opts.Store,
		clipboard:      opts.Clipboard,
		baseCtx:        opts.Context,
		timeout:        opts.Timeout,
		sourceLanguage: opts.SourceLanguage,
		targetLanguage: opts.TargetLanguage,
		model:          opts.Model,
		status:         StatusIdle,
		message:        MessageIdle,
		listeners:      make(map[int]func(Snapshot)),
	}
	if c.baseCtx == nil {
		c.baseCtx = context.Background()
	}
	if c.sourceLanguage == "" {
		c.sourceLanguage = language.DefaultSource
	}
	if c.targetLanguage == "" {
		c.targetLanguage = language.DefaultTarget
	}
	if c.model == "" {
		c.model = models.Default
	}
	if c.store != nil {
		key, ok, err := c.store.Load()
		if err != nil {
			logger.Warn("Failed to load stored credential", "error", err)
		}
		if ok {
			c.credential = key
		}
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		SourceLanguage: c.sourceLanguage,
		TargetLanguage: c.targetLanguage,
		Model:          c.model,
		SourceText:     c.sourceText,
		OutputText:     c.output,
		Status:         c.status,
		Message:        c.message,
		HasCredential:  strings.TrimSpace(c.credential) != "",
		SourceEditable: c.status != StatusRunning,
		RunID:          c.runID,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// Listeners run on the goroutine that made the change, one at a time, and
// must not call back into the controller's setters.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	snap := c.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// SetSourceLanguage clears the source text and the output and returns the
// controller to idle. It never starts a run.
func (c *Controller) SetSourceLanguage(name string) {
	c.mu.Lock()
	if name == c.sourceLanguage {
		c.mu.Unlock()
		return
	}
	c.stopActiveLocked("source language changed")
	c.sourceLanguage = name
	c.sourceText = ""
	c.output = ""
	c.status = StatusIdle
	c.message = MessageIdle
	c.mu.Unlock()
	c.notify()
}

// SetTargetLanguage clears the output. If the last run completed, a new run
// starts with the current parameters.
func (c *Controller) SetTargetLanguage(name string) error {
	c.mu.Lock()
	if name == c.targetLanguage {
		c.mu.Unlock()
		return nil
	}
	prev := c.status
	if prev == StatusRunning {
		c.stopActiveLocked("target language changed")
		c.status = StatusIdle
		c.message = MessageIdle
	}
	c.targetLanguage = name
	c.output = ""

	var err error
	if prev == StatusCompleted {
		logger.Info("Target language changed after a completed translation", "target", name)
		err = c.startLocked(c.baseCtx)
	}
	c.mu.Unlock()
	c.notify()
	return err
}

// SetSourceText replaces the source text. It fails with ErrBusy during a run.
// Editing after a completed run returns to idle, so a later target language
// change no longer translates automatically.
func (c *Controller) SetSourceText(text string) error {
	c.mu.Lock()
	if c.status == StatusRunning {
		c.mu.Unlock()
		return ErrBusy
	}
	if text == c.sourceText {
		c.mu.Unlock()
		return nil
	}
	c.sourceText = text
	if c.status == StatusCompleted {
		c.status = StatusIdle
		c.message = MessageIdle
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// SetModel selects the model for subsequent runs.
func (c *Controller) SetModel(m models.Model) {
	c.mu.Lock()
	if m == c.model {
		c.mu.Unlock()
		return
	}
	c.model = m
	c.mu.Unlock()
	c.notify()
}

// SetCredential replaces the credential and writes it to the store.
func (c *Controller) SetCredential(key string) error {
	c.mu.Lock()
	c.credential = key
	c.mu.Unlock()

	var err error
	if c.store != nil {
		if err = c.store.Save(key); err != nil {
			logger.Error("Failed to save credential", "error", err)
		}
	}
	c.notify()
	return err
}

// Credential returns the current credential string.
func (c *Controller) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credential
}

// Translate validates the current parameters and starts a run, canceling any
// run in progress. A rejection is returned as *request.Rejection; it updates
// the message but not the status, and no request is sent.
func (c *Controller) Translate(ctx context.Context) error {
	c.mu.Lock()
	err := c.startLocked(ctx)
	c.mu.Unlock()
	c.notify()
	return err
}

// Cancel stops the running translation and returns to idle. It does nothing
// when no run is in progress.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.status != StatusRunning {
		c.mu.Unlock()
		return
	}
	c.stopActiveLocked("canceled by user")
	c.status = StatusIdle
	c.message = MessageIdle
	c.mu.Unlock()
	c.notify()
}

// Wait blocks until no run is in progress or ctx is done, and returns the
// state at that point.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	for {
		c.mu.Lock()
		if c.status != StatusRunning || c.runDone == nil {
			snap := c.snapshotLocked()
			c.mu.Unlock()
			return snap, nil
		}
		done := c.runDone
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

func (c *Controller) requestLocked() request.Translation {
	return request.Translation{
		SourceLanguage: c.sourceLanguage,
		TargetLanguage: c.targetLanguage,
		SourceText:     c.sourceText,
		Model:          c.model,
		Credential:     c.credential,
	}
}

// stopActiveLocked cancels the running stream, if any, and invalidates
// callbacks that are still in flight for it.
func (c *Controller) stopActiveLocked(reason string) {
	c.activeID++
	if c.active != nil {
		logger.Info("Cancellation requested", "run_id", c.runID, "reason", reason)
		c.active.Cancel()
		c.active = nil
	}
}

func (c *Controller) startLocked(ctx context.Context) error {
	req := c.requestLocked()
	if err := request.ValidateForModel(req); err != nil {
		var rej *request.Rejection
		if errors.As(err, &rej) {
			c.message = rej.Message()
			logger.Info("Translation rejected", "reason", rej.Reason)
		} else {
			c.message = apperrors.PublicMessage(err)
		}
		return err
	}

	c.stopActiveLocked("superseded by a new translation")
	id := c.activeID

	runCtx := ctx
	var cancelTimeout context.CancelFunc
	if c.timeout > 0 {
		runCtx, cancelTimeout = context.WithTimeout(ctx, c.timeout)
	}

	// Callbacks block on c.mu until this function returns.
	sess := c.streamer.Start(runCtx, req, stream.Callbacks{
		OnOpen: func() {
			c.update(id, func() { c.output = "" })
		},
		OnChunk: func(_, accumulated string) {
			c.update(id, func() { c.output = accumulated })
		},
	})
	done := make(chan struct{})
	c.active = sess
	c.runID = sess.ID
	c.runDone = done
	c.status = StatusRunning
	c.message = MessageRunning

	go c.await(id, sess, done, cancelTimeout)
	return nil
}

// update applies fn if run id is still the active one.
func (c *Controller) update(id uint64, fn func()) {
	c.mu.Lock()
	if id != c.activeID || c.status != StatusRunning {
		c.mu.Unlock()
		return
	}
	fn()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) await(id uint64, sess *stream.Session, done chan struct{}, cancelTimeout context.CancelFunc) {
	defer close(done)
	res := sess.Wait()
	if cancelTimeout != nil {
		cancelTimeout()
	}

	c.mu.Lock()
	if id != c.activeID {
		c.mu.Unlock()
		logger.Debug("Ignoring result of superseded run", "run_id", sess.ID, "outcome", res.Outcome.String())
		return
	}
	c.active = nil
	copyOut := false
	switch res.Outcome {
	case stream.OutcomeCompleted:
		c.status = StatusCompleted
		c.output = res.Text
		c.message = MessageCopied
		copyOut = true
	case stream.OutcomeFailed:
		c.status = StatusFailed
		c.message = apperrors.PublicMessage(res.Err)
	default:
		c.status = StatusIdle
		c.message = MessageIdle
	}
	c.mu.Unlock()

	if copyOut && c.clipboard != nil {
		if err := c.clipboard.Write(res.Text); err != nil {
			logger.Warn("Failed to copy output to clipboard", "run_id", sess.ID, "error", err)
			c.mu.Lock()
			if id == c.activeID {
				c.message = MessageCopyFailed
			}
			c.mu.Unlock()
		}
	}
	c.notify()
}
