// Command trace-report renders the trajectories of a persisted
// tracking session as a standalone HTML chart.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jonmatthis/OmniTrax/internal/trackdb"
)

var (
	dbPath    = flag.String("db", "tracking.db", "sqlite database path")
	sessionID = flag.String("session", "", "session id (latest session when empty)")
	output    = flag.String("o", "trace-report.html", "output HTML path")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("trace-report: %v", err)
	}
}

func run() error {
	db, err := trackdb.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	session := *sessionID
	if session == "" {
		sessions, err := db.ListSessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return fmt.Errorf("no sessions in %s", *dbPath)
		}
		session = sessions[0].ID
	}

	tracks, err := db.ListTracks(session)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("session %s has no tracks", session)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Track Traces",
			Theme:     "dark",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Track Traces",
			Subtitle: fmt.Sprintf("session=%s tracks=%d", session, len(tracks)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y"}),
	)

	for _, ts := range tracks {
		points, err := db.TrackObservations(session, ts.TrackID)
		if err != nil {
			return err
		}

		data := make([]opts.LineData, 0, len(points))
		for _, p := range points {
			data = append(data, opts.LineData{Value: []interface{}{p.X, p.Y}})
		}

		name := fmt.Sprintf("track %d", ts.TrackID)
		if ts.Class != "" {
			name = fmt.Sprintf("track %d (%s)", ts.TrackID, ts.Class)
		}
		line.AddSeries(name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	log.Printf("wrote %s", *output)
	return nil
}
