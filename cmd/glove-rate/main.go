// Command glove-rate reads from the glove as fast as the link allows
// and displays the sampling rate estimated over the most recent
// readings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/glove.report/internal/glove"
	"github.com/banshee-data/glove.report/internal/gloveserial"
)

var (
	model    = flag.Int("model", 18, "Glove model: 18 or 22 channels")
	portName = flag.String("port", "", "Serial port (default: first available)")
	baudRate = flag.Int("baud", 115200, "Serial baud rate")
	window   = flag.Int("window", 200, "Number of recent readings used for the estimate")
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

	session, err := glove.NewSession(port, glove.Model(*model))
	if err != nil {
		log.Fatalf("failed to create glove session: %v", err)
	}
	if err := session.Open(); err != nil {
		log.Fatalf("failed to open glove session: %v", err)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rate := glove.NewRateEstimator(*window, nil)
	for {
		if _, err := session.ReadSample(ctx); err != nil {
			if ctx.Err() != nil {
				fmt.Println()
				return
			}
			log.Fatalf("read failed: %v", err)
		}
		rate.Tick()
		fmt.Printf("\rGlove rate: %.1f Hz", rate.Rate())
		os.Stdout.Sync()
	}
}
