// Package gloveserial provides the serial transport boundary for the
// glove driver: the minimal port interface the protocol session
// consumes, real-port construction, and a scriptable port for tests.
package gloveserial

import (
	"io"
	"time"
)

// Porter is the byte-stream transport the glove session owns. It is the
// only interface the protocol core consumes from the serial layer, and
// the abstraction point for unit testing without glove hardware.
// go.bug.st/serial.Port satisfies it directly.
type Porter interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds how long a single Read may block.
	SetReadTimeout(timeout time.Duration) error

	// ResetInputBuffer discards any unread received bytes.
	ResetInputBuffer() error

	// ResetOutputBuffer discards any unsent transmit bytes.
	ResetOutputBuffer() error
}
