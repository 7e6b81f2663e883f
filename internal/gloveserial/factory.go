package gloveserial

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// ErrNoPortAvailable is returned by ResolvePort when no port name was
// given and enumeration finds no serial ports on the host.
var ErrNoPortAvailable = errors.New("no serial ports available")

// listPorts enumerates host serial ports. Overridable in tests.
var listPorts = serial.GetPortsList

// ResolvePort returns the port to use for a session. A non-empty name
// is returned as-is; otherwise the first enumerated port is chosen.
// Resolution happens once, at construction time, so the fallback is an
// explicit step rather than hidden state.
func ResolvePort(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	ports, err := listPorts()
	if err != nil {
		return "", fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	if len(ports) == 0 {
		return "", ErrNoPortAvailable
	}
	return ports[0], nil
}

// Open opens a real serial port at the given path with the given
// options.
func Open(path string, opts PortOptions) (Porter, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return port, nil
}
