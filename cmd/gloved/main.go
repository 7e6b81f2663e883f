// Command gloved polls a CyberGlove over its serial port, records the
// readings to sqlite, and serves them over an HTTP API with a live SSE
// stream.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/glove.report/internal/glove"
	"github.com/banshee-data/glove.report/internal/gloveapi"
	"github.com/banshee-data/glove.report/internal/glovedb"
	"github.com/banshee-data/glove.report/internal/gloveserial"
	"github.com/banshee-data/glove.report/internal/monitoring"
)

var (
	model       = flag.Int("model", 18, "Glove model: 18 or 22 channels")
	portName    = flag.String("port", "", "Serial port (default: first available)")
	baudRate    = flag.Int("baud", 115200, "Serial baud rate")
	calPath     = flag.String("cal", "", "Calibration file (omit for raw readings)")
	dbPath      = flag.String("db", "glove_data.db", "Path to the sqlite capture database")
	listen      = flag.String("listen", ":8080", "HTTP listen address")
	interval    = flag.Duration("interval", 0, "Delay between polls (0 = poll continuously)")
	maxAttempts = flag.Int("max-attempts", 0, "Resync attempts per read before giving up (0 = retry forever)")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	resolved, err := gloveserial.ResolvePort(*portName)
	if err != nil {
		log.Fatalf("failed to resolve serial port: %v", err)
	}

	port, err := gloveserial.Open(resolved, gloveserial.PortOptions{BaudRate: *baudRate})
	if err != nil {
		log.Fatalf("failed to open serial port: %v", err)
	}

	opts := []glove.Option{
		glove.WithRetryPolicy(glove.RetryPolicy{MaxAttempts: *maxAttempts}),
	}
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

	db, err := glovedb.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	captureID, err := db.CreateCaptureSession(session.Model(), resolved, session.Calibrated())
	if err != nil {
		log.Fatalf("failed to create capture session: %v", err)
	}
	log.Printf("capturing %s glove on %s (session %s)", session.Model(), resolved, captureID)

	feed := gloveapi.NewFeed()
	defer feed.Close()

	api := gloveapi.NewServer(feed, gloveapi.Config{
		Model:      session.Model(),
		Channels:   session.Model().Channels(),
		Port:       resolved,
		Calibrated: session.Calibrated(),
		SessionID:  captureID,
	})
	httpServer := &http.Server{
		Addr:    *listen,
		Handler: gloveapi.LoggingMiddleware(api.ServeMux()),
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// single poller goroutine: the session does not support
	// concurrent reads
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			values, err := session.ReadSample(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				monitoring.Logf("read failed, stopping capture: %v", err)
				stop()
				return
			}
			reading := glove.Reading{Time: time.Now(), Values: values}
			feed.Publish(reading)
			if err := db.RecordReading(captureID, reading); err != nil {
				monitoring.Logf("failed to record reading: %v", err)
			}
			if *interval > 0 {
				select {
				case <-time.After(*interval):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("listening on %s", *listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			monitoring.Logf("http server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("http shutdown failed: %v", err)
	}

	wg.Wait()
	log.Print("capture stopped")
}
