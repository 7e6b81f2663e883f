package gloveserial

import (
	"errors"
	"testing"
)

func withPortList(t *testing.T, ports []string, err error) {
	t.Helper()
	orig := listPorts
	listPorts = func() ([]string, error) { return ports, err }
	t.Cleanup(func() { listPorts = orig })
}

func TestResolvePortExplicitName(t *testing.T) {
	withPortList(t, nil, errors.New("enumeration must not run"))

	got, err := ResolvePort("/dev/ttyUSB3")
	if err != nil {
		t.Fatalf("ResolvePort failed: %v", err)
	}
	if got != "/dev/ttyUSB3" {
		t.Errorf("ResolvePort = %q, want /dev/ttyUSB3", got)
	}
}

func TestResolvePortPicksFirstEnumerated(t *testing.T) {
	withPortList(t, []string{"/dev/ttyACM0", "/dev/ttyUSB0"}, nil)

	got, err := ResolvePort("")
	if err != nil {
		t.Fatalf("ResolvePort failed: %v", err)
	}
	if got != "/dev/ttyACM0" {
		t.Errorf("ResolvePort = %q, want /dev/ttyACM0", got)
	}
}

func TestResolvePortNoneAvailable(t *testing.T) {
	withPortList(t, nil, nil)

	if _, err := ResolvePort(""); !errors.Is(err, ErrNoPortAvailable) {
		t.Errorf("err = %v, want ErrNoPortAvailable", err)
	}
}

func TestResolvePortEnumerationError(t *testing.T) {
	withPortList(t, nil, errors.New("udev unavailable"))

	_, err := ResolvePort("")
	if err == nil || errors.Is(err, ErrNoPortAvailable) {
		t.Errorf("err = %v, want wrapped enumeration error", err)
	}
}
