// Command glove-readings prints a reading from the glove at a fixed
// interval. The schedule rides a ticker rather than sleeping between
// reads, so the display period does not drift as read latency varies.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/glove.report/internal/glove"
	"github.com/banshee-data/glove.report/internal/gloveserial"
	"github.com/banshee-data/glove.report/internal/timeutil"
)

var (
	model    = flag.Int("model", 18, "Glove model: 18 or 22 channels")
	portName = flag.String("port", "", "Serial port (default: first available)")
	baudRate = flag.Int("baud", 115200, "Serial baud rate")
	calPath  = flag.String("cal", "", "Calibration file (omit for raw readings)")
	interval = flag.Duration("interval", 500*time.Millisecond, "Display interval")
)

func main() {
	flag.Parse()

	resolved, err := gloveserial.ResolvePort(*portName)
	if err != nil {
		log.Fatalf("failed to resolve serial port: %v", err)
	}

	port, err := gloveserial.Open(resolved, gloveserial.PortOptions{BaudRate: *baudRate})
	if err != nil {
		log.Fatalf("failed to open serial port: %v", err)
	}

	var opts []glove.Option
	if *calPath != "" {
		cal, err := glove.LoadCalibration(*calPath, glove.Model(*model))
		if err != nil {
			log.Fatalf("failed to load calibration: %v", err)
		}
		opts = append(opts, glove.WithCalibration(cal))
	}

	session, err := glove.NewSession(port, glove.Model(*model), opts...)
	if err != nil {
		log.Fatalf("failed to create glove session: %v", err)
	}
	if err := session.Open(); err != nil {
		log.Fatalf("failed to open glove session: %v", err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := timeutil.RealClock{}
	ticker := clock.NewTicker(*interval)
	defer ticker.Stop()

	kind := "raw"
	if session.Calibrated() {
		kind = "calibrated"
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			values, err := session.ReadSample(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Fatalf("read failed: %v", err)
			}
			fmt.Printf("\nGlove %s measurements:\n%v\n", kind, values)
		}
	}
}
