package track

import (
	"fmt"
	"math"
)

// Tracker owns the set of live tracks for one detection stream. It is
// exclusively owned by its caller: Update is frame-sequential and no
// internal locking is provided. Independent streams get independent
// Tracker instances.
type Tracker struct {
	cfg    Config
	tracks []*Track // ordered by creation
	nextID int64
}

// New creates a Tracker with the given configuration. The
// configuration is fixed for the instance's lifetime.
func New(cfg Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg, nextID: cfg.StartID}, nil
}

// Config returns the tracker's construction parameters.
func (tk *Tracker) Config() Config { return tk.cfg }

// Len returns the number of live tracks.
func (tk *Tracker) Len() int { return len(tk.tracks) }

// Tracks returns the live track set in creation order. The slice is a
// copy; the Track pointers refer to live state that the next Update
// will mutate.
func (tk *Tracker) Tracks() []*Track {
	out := make([]*Track, len(tk.tracks))
	copy(out, tk.tracks)
	return out
}

// Update processes one frame of detections:
//
//  1. Bootstrap: with no live tracks, every detection starts a track.
//  2. Build the N×M Euclidean cost matrix between track positions and
//     detections.
//  3. Pad with an N×N block priced at the distance threshold: one
//     synthetic no-match column per track, so a complete matching
//     always exists and no track pairs with a detection farther than
//     the threshold.
//  4. Solve the assignment problem for a globally optimal matching.
//  5. Classify outcomes: matched tracks reset their skip counter,
//     no-match tracks increment it.
//  6. Delete tracks whose counter exceeded the coasting budget,
//     rebuilding the track set and its assignment outcomes together.
//  7. Start a new track for every unclaimed detection.
//  8. Advance every surviving track's histories and estimator.
//
// classes and boxes must be index-aligned with detections when the
// corresponding history was enabled at construction; a length mismatch
// returns ErrLengthMismatch without touching any state.
func (tk *Tracker) Update(detections []Point, classes []string, boxes []Box) error {
	if tk.cfg.RecordClasses && len(classes) != len(detections) {
		return fmt.Errorf("classes has %d entries for %d detections: %w",
			len(classes), len(detections), ErrLengthMismatch)
	}
	if tk.cfg.RecordBoxes && len(boxes) != len(detections) {
		return fmt.Errorf("boxes has %d entries for %d detections: %w",
			len(boxes), len(detections), ErrLengthMismatch)
	}

	// Bootstrap: no assignment problem this frame.
	if len(tk.tracks) == 0 {
		for j := range detections {
			tk.spawn(detections[j], labelAt(classes, j), boxAt(boxes, j))
		}
		return nil
	}

	n := len(tk.tracks)
	m := len(detections)

	// Cost matrix with threshold-priced no-match padding. With m == 0
	// this degenerates to all no-match: every skip counter increments.
	cost := make([][]float64, n)
	for i, tr := range tk.tracks {
		row := make([]float64, m+n)
		for j := range detections {
			row[j] = euclidean(tr.pos, detections[j])
		}
		for j := m; j < m+n; j++ {
			row[j] = tk.cfg.DistThreshold
		}
		cost[i] = row
	}

	assignment := solveAssignment(cost)

	// Outcomes. A column index at or beyond m is the track's own
	// no-match option; normalise those to -1.
	for i, tr := range tk.tracks {
		if col := assignment[i]; col >= 0 && col < m {
			tr.skipped = 0
		} else {
			assignment[i] = -1
			tr.skipped++
		}
	}

	// Deletion. The survivor set and its assignment outcomes are
	// rebuilt together in a single pass so pending deletions can never
	// shift a live track away from its outcome.
	kept := make([]*Track, 0, n)
	keptAssign := make([]int, 0, n)
	for i, tr := range tk.tracks {
		if tr.skipped > tk.cfg.MaxFramesToSkip {
			continue
		}
		kept = append(kept, tr)
		keptAssign = append(keptAssign, assignment[i])
	}
	tk.tracks = kept

	// Birth. Only matched (hence surviving) tracks claim detections,
	// so claims are computed over the survivor outcomes.
	claimed := make([]bool, m)
	for _, col := range keptAssign {
		if col >= 0 {
			claimed[col] = true
		}
	}
	survivors := len(tk.tracks)
	for j := 0; j < m; j++ {
		if !claimed[j] {
			tk.spawn(detections[j], labelAt(classes, j), boxAt(boxes, j))
		}
	}

	// Per-track state update. Newly born tracks were fully seeded at
	// birth and are skipped this frame.
	for i, tr := range tk.tracks[:survivors] {
		col := keptAssign[i]
		matched := col >= 0

		if tk.cfg.RecordClasses {
			if matched {
				tr.classes = append(tr.classes, classes[col])
			} else {
				tr.classes = append(tr.classes, "")
			}
		}

		if tk.cfg.RecordBoxes {
			if matched {
				tr.appendBox(boxes[col], tk.cfg.MaxTraceLength)
			} else if tk.cfg.HoldBoxWhileCoasting && len(tr.boxTrace) > 0 {
				// Default policy: hold the last known box through
				// occlusion; object size is assumed to persist.
				tr.appendBox(tr.boxTrace[len(tr.boxTrace)-1], tk.cfg.MaxTraceLength)
			}
		}

		if tk.cfg.UseKalman {
			tr.filter.Predict()
			if matched {
				tr.pos = tr.filter.Correct(detections[col], true)
			} else if len(tr.trace) > 1 {
				tr.pos = tr.filter.Correct(Point{}, false)
			}
		} else if matched {
			tr.pos = detections[col]
		}

		tr.appendTrace(tk.cfg.MaxTraceLength)
	}

	return nil
}

// Restore re-seeds a track from a persisted record, preserving its
// identity. The auto-ID counter advances past the restored ID so the
// next new track never collides with it.
func (tk *Tracker) Restore(rec RestoreRecord) error {
	for _, tr := range tk.tracks {
		if tr.id == rec.ID {
			return fmt.Errorf("restore track %d: %w", rec.ID, ErrDuplicateID)
		}
	}

	t := &Track{id: rec.ID, pos: Point{X: rec.X, Y: rec.Y}}
	t.trace = []Point{t.pos}
	if tk.cfg.UseKalman {
		t.filter = newKalmanFilter(tk.cfg.Kalman, t.pos)
	}
	if tk.cfg.RecordClasses {
		t.classes = []string{rec.Class}
	}
	if tk.cfg.RecordBoxes {
		t.boxTrace = []Box{rec.Box}
	}
	tk.tracks = append(tk.tracks, t)

	if rec.ID >= tk.nextID {
		tk.nextID = rec.ID + 1
	}
	return nil
}

// SetStartingID overwrites the auto-ID counter so the next new track
// gets latest+1. Useful when resuming a stream whose prior tracks must
// keep their names.
func (tk *Tracker) SetStartingID(latest int64) {
	tk.nextID = latest + 1
}

// Clear empties the live track set while leaving configuration and the
// ID counter intact, so cleared identities are never reused.
func (tk *Tracker) Clear() {
	tk.tracks = nil
}

// spawn creates a live track from a detection, seeding its histories
// with the birth observation.
func (tk *Tracker) spawn(p Point, class string, box Box) *Track {
	t := &Track{id: tk.nextID, pos: p}
	tk.nextID++

	t.trace = []Point{p}
	if tk.cfg.UseKalman {
		t.filter = newKalmanFilter(tk.cfg.Kalman, p)
	}
	if tk.cfg.RecordClasses {
		t.classes = []string{class}
	}
	if tk.cfg.RecordBoxes {
		t.boxTrace = []Box{box}
	}

	tk.tracks = append(tk.tracks, t)
	return t
}

func euclidean(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func labelAt(classes []string, j int) string {
	if j < len(classes) {
		return classes[j]
	}
	return ""
}

func boxAt(boxes []Box, j int) Box {
	if j < len(boxes) {
		return boxes[j]
	}
	return Box{}
}
