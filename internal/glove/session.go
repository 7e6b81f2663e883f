package glove

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/glove.report/internal/gloveserial"
)

// cmdRequestSample is the single command byte that triggers one frame
// response from the glove.
const cmdRequestSample = 0x47

// DefaultReadTimeout bounds a single frame-read attempt, matching the
// one-second timeout the device software uses.
const DefaultReadTimeout = time.Second

// ErrSessionClosed is returned by ReadSample on a session that has not
// been opened or has been closed.
var ErrSessionClosed = errors.New("glove session is closed")

// ErrSyncLost is returned when a retry ceiling is configured and that
// many consecutive exchanges failed to produce a complete frame. With
// the default unbounded policy it is never returned.
var ErrSyncLost = errors.New("glove: resync attempts exhausted")

// RetryPolicy controls the resync loop in ReadSample.
//
// The glove link is assumed lossy: short writes and short or garbled
// frames are transient noise, and the reference behaviour is to resync
// and retry forever. MaxAttempts == 0 preserves that; a positive value
// escalates to ErrSyncLost after that many consecutive failed
// exchanges so callers can bound latency without a context deadline.
type RetryPolicy struct {
	// MaxAttempts is the number of consecutive failed exchanges
	// tolerated before ReadSample gives up. Zero means unbounded.
	MaxAttempts int

	// ReadTimeout bounds a single frame-read attempt. Zero selects
	// DefaultReadTimeout.
	ReadTimeout time.Duration
}

// Session is the request/response protocol handler for one glove. It
// exclusively owns its transport; concurrent ReadSample calls are not
// supported, and Open/Close must not race a ReadSample in progress.
type Session struct {
	port   gloveserial.Porter
	model  Model
	cal    *Calibration
	policy RetryPolicy

	opened bool
	frame  []byte
}

// Option configures a Session.
type Option func(*Session)

// WithCalibration attaches a calibration so ReadSample returns degrees
// instead of raw counts. The calibration channel count must match the
// session model.
func WithCalibration(cal *Calibration) Option {
	return func(s *Session) { s.cal = cal }
}

// WithRetryPolicy overrides the default unbounded retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(s *Session) { s.policy = policy }
}

// NewSession creates a session for the given model over an already
// constructed port. The caller must Open the session before reading and
// should defer Close so the transport is released on every exit path.
func NewSession(port gloveserial.Porter, model Model, opts ...Option) (*Session, error) {
	if !model.Valid() {
		return nil, ErrInvalidModel
	}

	s := &Session{
		port:   port,
		model:  model,
		policy: RetryPolicy{ReadTimeout: DefaultReadTimeout},
		frame:  make([]byte, model.FrameSize()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy.ReadTimeout <= 0 {
		s.policy.ReadTimeout = DefaultReadTimeout
	}
	if s.cal != nil && s.cal.Channels() != model.Channels() {
		return nil, fmt.Errorf("%w: calibration has %d channels, model has %d",
			ErrInvalidModel, s.cal.Channels(), model.Channels())
	}
	return s, nil
}

// Model returns the glove model the session was constructed for.
func (s *Session) Model() Model { return s.model }

// Calibrated reports whether a calibration is attached.
func (s *Session) Calibrated() bool { return s.cal != nil }

// Open prepares the session for reading. It is idempotent: opening an
// open session is a no-op. On first open it discards any bytes buffered
// from before the session existed and arms the per-read timeout.
func (s *Session) Open() error {
	if s.opened {
		return nil
	}
	if err := s.port.SetReadTimeout(s.policy.ReadTimeout); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	if err := s.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("failed to discard output buffer: %w", err)
	}
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to discard input buffer: %w", err)
	}
	s.opened = true
	return nil
}

// Close releases the transport. It is idempotent: closing a closed
// session is a no-op. Buffered bytes are discarded before the port is
// closed so a later session starts clean.
func (s *Session) Close() error {
	if !s.opened {
		return nil
	}
	s.opened = false
	_ = s.port.ResetInputBuffer()
	_ = s.port.ResetOutputBuffer()
	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// exchange states for one ReadSample call.
type exchangeState int

const (
	stateResync exchangeState = iota
	stateAwaitingWrite
	stateAwaitingFrame
	stateDecoded
)

// ReadSample performs one request/response exchange and returns one
// value per channel: calibrated degrees when a calibration is attached,
// otherwise the raw counts widened to float64.
//
// The call blocks until a complete, well-formed frame arrives. Short
// writes and short frames are resynchronised silently (flush, rewrite
// the request) under the session's RetryPolicy; transport errors
// propagate immediately. ctx is the external interrupt for the
// unbounded default policy.
func (s *Session) ReadSample(ctx context.Context) ([]float64, error) {
	if !s.opened {
		return nil, ErrSessionClosed
	}

	attempts := 0
	state := stateResync
	for {
		switch state {
		case stateResync:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if s.policy.MaxAttempts > 0 && attempts >= s.policy.MaxAttempts {
				return nil, fmt.Errorf("%w after %d attempts", ErrSyncLost, attempts)
			}
			attempts++
			// Leftover bytes from a prior partial exchange would
			// shift every later frame boundary.
			if err := s.port.ResetInputBuffer(); err != nil {
				return nil, fmt.Errorf("failed to discard input buffer: %w", err)
			}
			state = stateAwaitingWrite

		case stateAwaitingWrite:
			n, err := s.port.Write([]byte{cmdRequestSample})
			if err != nil {
				return nil, fmt.Errorf("failed to write sample request: %w", err)
			}
			if n != 1 {
				// The request never made it onto the wire;
				// treat as "not sent" rather than an error.
				state = stateResync
				continue
			}
			state = stateAwaitingFrame

		case stateAwaitingFrame:
			n, err := s.readFrame(ctx)
			if err != nil {
				return nil, err
			}
			if n != len(s.frame) {
				state = stateResync
				continue
			}
			state = stateDecoded

		case stateDecoded:
			return s.decode(), nil
		}
	}
}

// readFrame accumulates up to one frame within the per-attempt read
// timeout. It returns however many bytes arrived; deciding whether that
// constitutes a complete frame is the caller's job.
func (s *Session) readFrame(ctx context.Context) (int, error) {
	deadline := time.Now().Add(s.policy.ReadTimeout)
	total := 0
	for total < len(s.frame) {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if !time.Now().Before(deadline) {
			break
		}
		n, err := s.port.Read(s.frame[total:])
		if err != nil {
			return total, fmt.Errorf("failed to read frame: %w", err)
		}
		if n == 0 {
			// Port-level read timeout with nothing buffered.
			break
		}
		total += n
	}
	return total, nil
}

// decode strips the reserved first and last frame bytes, widens the
// interior samples to float64, and applies calibration when attached.
func (s *Session) decode() []float64 {
	raw := make([]float64, s.model.Channels())
	for i := range raw {
		raw[i] = float64(s.frame[i+1])
	}
	if s.cal != nil {
		return s.cal.Apply(raw)
	}
	return raw
}

// ReadSamples performs n sequential exchanges and returns one reading
// per exchange. The device protocol is single-frame-per-request, so
// batches are host-side loops.
func (s *Session) ReadSamples(ctx context.Context, n int) ([][]float64, error) {
	out := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		sample, err := s.ReadSample(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, nil
}
