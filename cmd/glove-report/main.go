// Command glove-report renders readings recorded by gloved as an HTML
// line chart, one series per sensor channel.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/glove.report/internal/glovedb"
)

var (
	dbPath    = flag.String("db", "glove_data.db", "Path to the sqlite capture database")
	sessionID = flag.String("session", "", "Capture session id (default: most recent)")
	since     = flag.Duration("since", time.Hour, "Report window, counted back from now")
	outPath   = flag.String("out", "glove_report.html", "Output HTML file")
	maxPoints = flag.Int("max-points", 5000, "Downsample to at most this many readings")
)

func main() {
	flag.Parse()

	db, err := glovedb.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	session := *sessionID
	if session == "" {
		session, err = db.LatestCaptureSession()
		if err != nil {
			log.Fatalf("failed to find a capture session: %v", err)
		}
	}

	readings, err := db.ReadingsSince(session, time.Now().Add(-*since))
	if err != nil {
		log.Fatalf("failed to load readings: %v", err)
	}
	if len(readings) == 0 {
		log.Fatalf("no readings recorded for session %s in the last %s", session, *since)
	}

	// Downsample by stride to keep the page responsive
	stride := 1
	if len(readings) > *maxPoints {
		stride = (len(readings) + *maxPoints - 1) / *maxPoints
	}

	channels := len(readings[0].Values)
	timestamps := make([]string, 0, len(readings)/stride+1)
	series := make([][]opts.LineData, channels)
	for i := 0; i < len(readings); i += stride {
		r := readings[i]
		timestamps = append(timestamps, r.Time.Local().Format("15:04:05.000"))
		for ch := 0; ch < channels && ch < len(r.Values); ch++ {
			series[ch] = append(series[ch], opts.LineData{Value: r.Values[ch]})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Glove Readings",
			Theme:     "dark",
			Width:     "1200px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Glove Readings",
			Subtitle: fmt.Sprintf("session=%s readings=%d stride=%d", session, len(timestamps), stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
	)

	line.SetXAxis(timestamps)
	for ch := 0; ch < channels; ch++ {
		line.AddSeries(fmt.Sprintf("ch%02d", ch), series[ch])
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		log.Fatalf("failed to render chart: %v", err)
	}
	log.Printf("wrote %s", *outPath)
}
