package gloveserial

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

// ScriptedPort implements Porter with scripted behaviour for testing.
// Read data is queued as chunks, one chunk per Read call, so tests can
// simulate partial frames and per-attempt timeouts; Write results can
// be scripted to simulate short writes. It also records an operation
// trace so tests can assert on the exact exchange ordering.
type ScriptedPort struct {
	mu sync.Mutex

	reads        [][]byte
	writeResults []int
	readErr      error
	writeErr     error
	closeErr     error

	closed      bool
	readTimeout time.Duration

	// Writes captures every buffer passed to Write.
	Writes [][]byte

	// ReadCalls and WriteCalls count the respective operations.
	ReadCalls  int
	WriteCalls int

	// InputResets and OutputResets count buffer discards.
	InputResets  int
	OutputResets int

	ops []string
}

// NewScriptedPort creates a ScriptedPort with no scripted behaviour:
// writes succeed in full and reads return no data.
func NewScriptedPort() *ScriptedPort {
	return &ScriptedPort{}
}

// QueueRead appends chunks to the read script. Each Read call consumes
// at most one chunk; a Read with an empty script returns 0 bytes, which
// models a port-level read timeout. A nil or empty chunk models the
// same timeout explicitly, letting a script force a frame boundary
// between two queued chunks.
func (p *ScriptedPort) QueueRead(chunks ...[]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads = append(p.reads, chunks...)
}

// ScriptWriteResults sets the byte counts the next Write calls report.
// Once the script is exhausted, writes accept the full buffer again.
func (p *ScriptedPort) ScriptWriteResults(counts ...int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeResults = append(p.writeResults, counts...)
}

// FailNextRead makes the next Read return err.
func (p *ScriptedPort) FailNextRead(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readErr = err
}

// FailNextWrite makes the next Write return err.
func (p *ScriptedPort) FailNextWrite(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// Read consumes the next scripted chunk. A chunk larger than buf is
// carried over to the following Read call.
func (p *ScriptedPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ReadCalls++

	if p.closed {
		return 0, errors.New("serial port closed")
	}
	if p.readErr != nil {
		err := p.readErr
		p.readErr = nil
		p.trace("read:err")
		return 0, err
	}
	if len(p.reads) == 0 {
		p.trace("read:0")
		return 0, nil
	}

	chunk := p.reads[0]
	if len(chunk) == 0 {
		p.reads = p.reads[1:]
		p.trace("read:0")
		return 0, nil
	}
	n := copy(buf, chunk)
	if n < len(chunk) {
		p.reads[0] = chunk[n:]
	} else {
		p.reads = p.reads[1:]
	}
	p.trace("read:" + strconv.Itoa(n))
	return n, nil
}

// Write captures the buffer and reports the next scripted byte count.
func (p *ScriptedPort) Write(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.WriteCalls++

	if p.closed {
		return 0, errors.New("serial port closed")
	}
	if p.writeErr != nil {
		err := p.writeErr
		p.writeErr = nil
		p.trace("write:err")
		return 0, err
	}

	captured := make([]byte, len(buf))
	copy(captured, buf)
	p.Writes = append(p.Writes, captured)

	n := len(buf)
	if len(p.writeResults) > 0 {
		n = p.writeResults[0]
		p.writeResults = p.writeResults[1:]
	}
	p.trace("write:" + strconv.Itoa(n))
	return n, nil
}

// Close marks the port as closed.
func (p *ScriptedPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.trace("close")
	return p.closeErr
}

// SetReadTimeout records the requested read timeout.
func (p *ScriptedPort) SetReadTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = timeout
	return nil
}

// ReadTimeout returns the last timeout set via SetReadTimeout.
func (p *ScriptedPort) ReadTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readTimeout
}

// ResetInputBuffer counts the discard; the read script is left intact
// because queued chunks model responses the device has not sent yet.
func (p *ScriptedPort) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.InputResets++
	p.trace("reset_in")
	return nil
}

// ResetOutputBuffer counts the discard.
func (p *ScriptedPort) ResetOutputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.OutputResets++
	p.trace("reset_out")
	return nil
}

// Closed reports whether Close has been called.
func (p *ScriptedPort) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Ops returns the recorded operation trace.
func (p *ScriptedPort) Ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.ops))
	copy(out, p.ops)
	return out
}

func (p *ScriptedPort) trace(op string) {
	p.ops = append(p.ops, op)
}
