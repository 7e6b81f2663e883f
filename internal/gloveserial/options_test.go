package gloveserial

import (
	"testing"

	"go.bug.st/serial"
)

func TestNormalizeDefaults(t *testing.T) {
	opts, err := PortOptions{}.Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if opts.BaudRate != 115200 {
		t.Errorf("BaudRate = %d, want 115200", opts.BaudRate)
	}
	if opts.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", opts.DataBits)
	}
	if opts.StopBits != 1 {
		t.Errorf("StopBits = %d, want 1", opts.StopBits)
	}
	if opts.Parity != "N" {
		t.Errorf("Parity = %q, want N", opts.Parity)
	}
}

func TestNormalizeParityAliases(t *testing.T) {
	cases := map[string]string{
		"":     "N",
		"n":    "N",
		"none": "N",
		"E":    "E",
		"even": "E",
		"odd":  "O",
	}
	for in, want := range cases {
		opts, err := PortOptions{Parity: in}.Normalize()
		if err != nil {
			t.Errorf("Normalize(parity=%q) failed: %v", in, err)
			continue
		}
		if opts.Parity != want {
			t.Errorf("Normalize(parity=%q) = %q, want %q", in, opts.Parity, want)
		}
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	cases := []PortOptions{
		{DataBits: 4},
		{DataBits: 9},
		{StopBits: 3},
		{Parity: "M"},
	}
	for _, opts := range cases {
		if _, err := opts.Normalize(); err == nil {
			t.Errorf("Normalize(%+v) succeeded, want error", opts)
		}
	}
}

func TestSerialMode(t *testing.T) {
	mode, err := PortOptions{BaudRate: 9600, Parity: "odd", StopBits: 2}.SerialMode()
	if err != nil {
		t.Fatalf("SerialMode failed: %v", err)
	}
	if mode.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", mode.BaudRate)
	}
	if mode.Parity != serial.OddParity {
		t.Errorf("Parity = %v, want OddParity", mode.Parity)
	}
	if mode.StopBits != serial.StopBits(2) {
		t.Errorf("StopBits = %v, want 2", mode.StopBits)
	}
	if mode.DataBits != 8 {
		t.Errorf("DataBits = %d, want 8", mode.DataBits)
	}
}
