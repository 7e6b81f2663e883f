package glove

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedCalibration is returned when a calibration file is
// missing a required line or a field cannot be parsed as a number.
var ErrMalformedCalibration = errors.New("malformed calibration file")

const radToDeg = 180 / math.Pi

// Line-index tables for the DCU calibration file layout. Each entry is
// the zero-based line holding one channel's record; the offset is the
// 7th whitespace field of that line and the gain the 10th.
//
// The Finger1_3 and Finger5_3 lines carry no implemented sensor, which
// is why the tables skip lines. DCU additionally stores the Finger2_3
// gain in the Finger1_3 record (line 10), so the gain tables diverge
// from the offset tables in exactly one slot. That asymmetry is a
// property of the files the device software writes; do not "repair" it.
var (
	offsetLines18 = []int{2, 3, 4, 5, 7, 8, 12, 13, 15, 17, 18, 20, 22, 23, 25, 27, 28, 29}
	gainLines18   = []int{2, 3, 4, 5, 7, 8, 12, 13, 10, 17, 18, 20, 22, 23, 25, 27, 28, 29}

	offsetLines22 = []int{2, 3, 4, 5, 7, 8, 9, 12, 13, 14, 15, 17, 18, 19, 20, 22, 23, 24, 25, 27, 28, 29}
	gainLines22   = []int{2, 3, 4, 5, 7, 8, 9, 12, 13, 14, 10, 17, 18, 19, 20, 22, 23, 24, 25, 27, 28, 29}
)

// Calibration holds the per-channel affine transform derived from a
// DCU calibration file. Both vectors have one entry per sensor channel
// and are never mutated after construction.
type Calibration struct {
	// Offset is the negated offset field for each channel.
	Offset []float64
	// Gain is the gain field for each channel, converted from
	// radians to degrees.
	Gain []float64
}

// LoadCalibration reads a DCU calibration file and returns the offset
// and gain vectors for the given glove model. Gains are converted from
// radians to degrees. The file is read once; no handle is retained.
func LoadCalibration(path string, model Model) (*Calibration, error) {
	var offsetLines, gainLines []int
	switch model {
	case Model18:
		offsetLines, gainLines = offsetLines18, gainLines18
	case Model22:
		offsetLines, gainLines = offsetLines22, gainLines22
	default:
		return nil, ErrInvalidModel
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}
	lines := strings.Split(string(data), "\n")

	cal := &Calibration{
		Offset: make([]float64, model.Channels()),
		Gain:   make([]float64, model.Channels()),
	}
	for i, line := range offsetLines {
		v, err := calibrationField(lines, line, 6)
		if err != nil {
			return nil, err
		}
		cal.Offset[i] = -v
	}
	for i, line := range gainLines {
		v, err := calibrationField(lines, line, 9)
		if err != nil {
			return nil, err
		}
		cal.Gain[i] = v * radToDeg
	}
	return cal, nil
}

// calibrationField extracts one whitespace-delimited numeric field from
// the given zero-based line.
func calibrationField(lines []string, line, field int) (float64, error) {
	if line >= len(lines) {
		return 0, fmt.Errorf("%w: line %d missing", ErrMalformedCalibration, line+1)
	}
	fields := strings.Fields(lines[line])
	if field >= len(fields) {
		return 0, fmt.Errorf("%w: line %d has %d fields, need at least %d",
			ErrMalformedCalibration, line+1, len(fields), field+1)
	}
	v, err := strconv.ParseFloat(fields[field], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d field %d: %q is not a number",
			ErrMalformedCalibration, line+1, field+1, fields[field])
	}
	return v, nil
}

// Channels returns the number of channels the calibration covers.
func (c *Calibration) Channels() int {
	return len(c.Offset)
}

// Apply converts raw sensor values to degrees channel-wise:
// out[i] = raw[i]*Gain[i] + Offset[i].
func (c *Calibration) Apply(raw []float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v*c.Gain[i] + c.Offset[i]
	}
	return out
}
