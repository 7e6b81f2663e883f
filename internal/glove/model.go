// Package glove implements the host-side driver for the CyberGlove
// wearable data glove: the single-frame request/response protocol and
// the per-channel calibration transform.
package glove

import "errors"

// ErrInvalidModel is returned when a session or calibration is
// constructed for an unsupported channel count.
var ErrInvalidModel = errors.New("glove model must be 18 or 22 channels")

// Model identifies the glove hardware variant. The model fixes the
// channel count, the wire frame size, and the calibration file layout.
// It is supplied by the caller; the driver does not auto-detect it.
type Model int

const (
	// Model18 is the 18-sensor glove.
	Model18 Model = 18
	// Model22 is the 22-sensor glove.
	Model22 Model = 22
)

// Valid reports whether m is a supported glove model.
func (m Model) Valid() bool {
	return m == Model18 || m == Model22
}

// Channels returns the number of sensor channels for the model.
func (m Model) Channels() int {
	return int(m)
}

// FrameSize returns the on-wire response size in bytes. The device
// frames each sample with one reserved leading byte and one reserved
// trailing byte.
func (m Model) FrameSize() int {
	return int(m) + 2
}

func (m Model) String() string {
	switch m {
	case Model18:
		return "18-channel"
	case Model22:
		return "22-channel"
	default:
		return "unknown"
	}
}
