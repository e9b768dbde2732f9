package track

// Track is a persistent identity linking detections across frames. It
// is a passive state record: every field is mutated exclusively by the
// owning Tracker during Update, Restore and Clear. Accessors return
// copies so callers can hold results across subsequent updates.
type Track struct {
	id      int64
	pos     Point
	filter  *kalmanFilter // nil when estimation is disabled
	skipped int           // consecutive frames without a real match

	trace    []Point  // bounded FIFO of past positions
	boxTrace []Box    // bounded FIFO of past boxes (boxes enabled only)
	classes  []string // per-frame labels, "" on coasting frames (classes enabled only)
}

// ID returns the track's identity. IDs are unique among live tracks
// and are never reassigned after deletion.
func (t *Track) ID() int64 { return t.id }

// Position returns the current position estimate.
func (t *Track) Position() Point { return t.pos }

// Velocity returns the estimator's current velocity. It is zero when
// estimation is disabled.
func (t *Track) Velocity() (vx, vy float64) {
	if t.filter == nil {
		return 0, 0
	}
	return t.filter.Velocity()
}

// SkippedFrames returns how many consecutive frames the track has gone
// without a real detection match.
func (t *Track) SkippedFrames() int { return t.skipped }

// Trace returns a copy of the bounded position history, oldest first.
func (t *Track) Trace() []Point {
	out := make([]Point, len(t.trace))
	copy(out, t.trace)
	return out
}

// BoxTrace returns a copy of the bounded bounding-box history, oldest
// first. It is nil when the tracker was built without boxes.
func (t *Track) BoxTrace() []Box {
	if t.boxTrace == nil {
		return nil
	}
	out := make([]Box, len(t.boxTrace))
	copy(out, t.boxTrace)
	return out
}

// ClassHistory returns a copy of the per-frame class labels, oldest
// first. Coasting frames carry an empty string. It is nil when the
// tracker was built without classes.
func (t *Track) ClassHistory() []string {
	if t.classes == nil {
		return nil
	}
	out := make([]string, len(t.classes))
	copy(out, t.classes)
	return out
}

// MajorityClass resolves the track's class by majority vote over its
// label history, ignoring the empty coasting sentinel. Ties go to the
// label seen first. Returns "" when no real label was ever observed.
func (t *Track) MajorityClass() string {
	counts := make(map[string]int, 4)
	order := make([]string, 0, 4)
	for _, c := range t.classes {
		if c == "" {
			continue
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	best := ""
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best
}

// appendTrace pushes the current position onto the trace, evicting the
// oldest entries beyond the limit.
func (t *Track) appendTrace(limit int) {
	t.trace = append(t.trace, t.pos)
	if len(t.trace) > limit {
		t.trace = t.trace[len(t.trace)-limit:]
	}
}

// appendBox pushes a box onto the box trace with the same FIFO bound
// as the position trace.
func (t *Track) appendBox(b Box, limit int) {
	t.boxTrace = append(t.boxTrace, b)
	if len(t.boxTrace) > limit {
		t.boxTrace = t.boxTrace[len(t.boxTrace)-limit:]
	}
}
