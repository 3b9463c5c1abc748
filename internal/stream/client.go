// Package stream issues a translation request and reads the streamed
// response incrementally.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oukeidos/codetr/internal/apperrors"
	"github.com/oukeidos/codetr/internal/httpclient"
	"github.com/oukeidos/codetr/internal/logger"
	"github.com/oukeidos/codetr/internal/request"
)

const (
	DefaultEndpoint = "http://localhost:3000/api/translate"
	readBufferSize  = 4096
)

// Outcome is how a session ended.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeCompleted
	OutcomeFailed
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Callbacks are invoked from the session goroutine, in order. None of them
// runs after the session was canceled.
type Callbacks struct {
	// OnOpen runs once the endpoint accepted the request, before any chunk.
	OnOpen func()
	// OnChunk receives the newly decoded text and the accumulation so far.
	OnChunk func(delta, accumulated string)
}

// Result summarizes a finished session.
type Result struct {
	Outcome  Outcome
	Text     string
	Err      error
	Chunks   int
	Bytes    int64
	Duration time.Duration
}

// Starter is what the session controller needs from a Client.
type Starter interface {
	Start(ctx context.Context, req request.Translation, cb Callbacks) *Session
}

// Client talks to a single translation endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ Starter = (*Client)(nil)

// NewClient returns a Client for endpoint. A nil httpClient uses the shared
// streaming client.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = httpclient.GetDefaultClient()
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// Endpoint returns the configured URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Session is one in-flight or finished call.
type Session struct {
	ID string

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	canceled bool
	finished bool
	text     strings.Builder
	result   Result
}

// Start sends req and begins reading the response in a new goroutine.
func (c *Client) Start(ctx context.Context, req request.Translation, cb Callbacks) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(ctx, c, req, cb)
	return s
}

// Cancel aborts the transfer. It is a no-op once the session finished.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.finished || s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	s.mu.Unlock()
	s.cancel()
}

// Done is closed when the session has finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session finished and returns its result.
func (s *Session) Wait() Result {
	<-s.done
	return s.Result()
}

// Result returns the outcome so far; Outcome is OutcomeRunning until Done.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.result
	r.Text = s.text.String()
	return r
}

// Output returns the text accumulated so far.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

func (s *Session) stopped(ctx context.Context) bool {
	s.mu.Lock()
	canceled := s.canceled
	s.mu.Unlock()
	return canceled || ctx.Err() != nil
}

func (s *Session) finish(outcome Outcome, err error, started time.Time) {
	s.mu.Lock()
	s.finished = true
	s.result.Outcome = outcome
	s.result.Err = err
	s.result.Duration = time.Since(started)
	r := s.result
	s.mu.Unlock()

	log := logger.ForRun(s.ID).With("outcome", outcome.String(), "chunks", r.Chunks, "bytes", r.Bytes, "duration", r.Duration)
	switch outcome {
	case OutcomeFailed:
		reason, _ := apperrors.ReasonOf(err)
		log.Warn("Translation stream failed", "reason", reason, "error", errors.Unwrap(err))
	default:
		log.Info("Translation stream finished")
	}
}

func (s *Session) run(ctx context.Context, c *Client, req request.Translation, cb Callbacks) {
	defer close(s.done)
	defer s.cancel()

	started := time.Now()
	logger.Info("Translation stream started", "run_id", s.ID, "request", req.String())

	body, err := c.open(ctx, req)
	if err != nil {
		if s.stopped(ctx) {
			s.finish(OutcomeCanceled, apperrors.Canceled(ctx.Err()), started)
			return
		}
		s.finish(OutcomeFailed, err, started)
		return
	}
	defer body.Close()

	if s.stopped(ctx) {
		s.finish(OutcomeCanceled, apperrors.Canceled(ctx.Err()), started)
		return
	}
	if cb.OnOpen != nil {
		cb.OnOpen()
	}

	dec := NewDecoder()
	buf := make([]byte, readBufferSize)
	for {
		n, rerr := body.Read(buf)
		if s.stopped(ctx) {
			// Bytes that arrived after cancellation are dropped.
			s.finish(OutcomeCanceled, apperrors.Canceled(ctx.Err()), started)
			return
		}
		if n > 0 {
			s.apply(dec.Decode(buf[:n]), int64(n), cb)
		}
		if errors.Is(rerr, io.EOF) {
			s.apply(dec.Flush(), 0, cb)
			s.finish(OutcomeCompleted, nil, started)
			return
		}
		if rerr != nil {
			s.finish(OutcomeFailed, apperrors.Transport(apperrors.ReasonNetworkFailure, fmt.Errorf("read stream: %w", rerr)), started)
			return
		}
	}
}

func (s *Session) apply(delta string, n int64, cb Callbacks) {
	s.mu.Lock()
	if n > 0 {
		s.result.Chunks++
		s.result.Bytes += n
	}
	s.text.WriteString(delta)
	accumulated := s.text.String()
	s.mu.Unlock()

	logger.Debug("Chunk received", "run_id", s.ID, "bytes", n, "decoded_len", len(delta))
	if delta != "" && cb.OnChunk != nil {
		cb.OnChunk(delta, accumulated)
	}
}

// open performs the request and returns the body only for a 2xx response
// that actually carries a stream.
func (c *Client) open(ctx context.Context, req request.Translation) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Transport(apperrors.ReasonNetworkFailure, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apperrors.Transport(apperrors.ReasonNetworkFailure, fmt.Errorf("request failed: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpclient.DrainAndClose(resp.Body)
		return nil, apperrors.Transport(apperrors.ReasonNonSuccessStatus, fmt.Errorf("endpoint returned status %s", resp.Status))
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, apperrors.Transport(apperrors.ReasonNoStreamBody, fmt.Errorf("endpoint returned status %s without a body", resp.Status))
	}
	return resp.Body, nil
}
