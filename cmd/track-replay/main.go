// Command track-replay drives a Tracker over a recorded detection
// stream (JSONL, one frame per line) and persists the resulting tracks
// and trajectories to a SQLite session.
//
// Frame format:
//
//	{"detections":[[12.5,40.0],[88.1,90.2]],"classes":["ant","ant"],"boxes":[[10,38,5,4],[86,88,5,5]]}
//
// classes and boxes are optional unless the tuning config enables them.
// Use -resume to seed the tracker from a prior session's tracks.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jonmatthis/OmniTrax/internal/config"
	"github.com/jonmatthis/OmniTrax/internal/trackdb"
	"github.com/jonmatthis/OmniTrax/internal/version"
	"github.com/jonmatthis/OmniTrax/track"
)

var (
	input         = flag.String("input", "", "detections JSONL file (required)")
	dbPath        = flag.String("db", "tracking.db", "sqlite database path")
	migrationsDir = flag.String("migrations", "internal/trackdb/migrations", "migrations directory")
	tuningPath    = flag.String("config", "", "tracker tuning JSON (defaults used when empty)")
	label         = flag.String("label", "", "session label")
	resume        = flag.String("resume", "", "session id to restore prior tracks from")
	showVersion   = flag.Bool("version", false, "print version and exit")
)

// frameRecord is one line of the input stream.
type frameRecord struct {
	Detections [][2]float64 `json:"detections"`
	Classes    []string     `json:"classes,omitempty"`
	Boxes      [][4]float64 `json:"boxes,omitempty"`
}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("track-replay %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(); err != nil {
		log.Fatalf("track-replay: %v", err)
	}
}

func run() error {
	tuning := config.EmptyTuningConfig()
	if *tuningPath != "" {
		loaded, err := config.LoadTuningConfig(*tuningPath)
		if err != nil {
			return fmt.Errorf("load tuning: %w", err)
		}
		tuning = loaded
	}

	tracker, err := track.New(tuning.TrackerConfig())
	if err != nil {
		return fmt.Errorf("build tracker: %w", err)
	}

	db, err := trackdb.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.MigrateUp(*migrationsDir); err != nil {
		return err
	}

	if *resume != "" {
		records, err := db.LoadPriorState(*resume)
		if err != nil {
			return fmt.Errorf("load prior state: %w", err)
		}
		for _, rec := range records {
			if err := tracker.Restore(rec); err != nil {
				return fmt.Errorf("restore prior tracks: %w", err)
			}
		}
		log.Printf("restored %d tracks from session %s", len(records), *resume)
	}

	session, err := db.CreateSession(*label)
	if err != nil {
		return err
	}
	log.Printf("session %s", session.ID)

	f, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)

	frame := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec frameRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("frame %d: parse: %w", frame, err)
		}

		detections := make([]track.Point, len(rec.Detections))
		for i, d := range rec.Detections {
			detections[i] = track.Point{X: d[0], Y: d[1]}
		}
		var boxes []track.Box
		if rec.Boxes != nil {
			boxes = make([]track.Box, len(rec.Boxes))
			for i, b := range rec.Boxes {
				boxes[i] = track.Box{X: b[0], Y: b[1], W: b[2], H: b[3]}
			}
		}

		if err := tracker.Update(detections, rec.Classes, boxes); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}

		// Per-frame upsert keeps trajectories for tracks the tracker
		// later deletes.
		for _, tr := range tracker.Tracks() {
			if err := db.SaveTrack(session.ID, tr, frame); err != nil {
				return fmt.Errorf("frame %d: %w", frame, err)
			}
		}

		frame++
		if frame%100 == 0 {
			log.Printf("%d frames, %d live tracks", frame, tracker.Len())
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	log.Printf("done: %d frames, %d live tracks, session %s", frame, tracker.Len(), session.ID)
	return nil
}
