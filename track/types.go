package track

import "errors"

// Point is a 2D position in frame coordinates.
type Point struct {
	X float64
	Y float64
}

// Box is an axis-aligned bounding box: top-left corner plus extent.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// RestoreRecord is the minimal persisted state needed to re-seed a
// track under its original identity. Class and Box may be zero values
// when the tracker was built without those histories enabled.
type RestoreRecord struct {
	ID    int64
	X     float64
	Y     float64
	Class string
	Box   Box
}

// ErrLengthMismatch is returned by Update when the classes or boxes
// slice is not index-aligned with the detections slice. This is a
// caller contract violation, never silently truncated.
var ErrLengthMismatch = errors.New("input length mismatch")

// ErrDuplicateID is returned by Restore when the record's ID is
// already held by a live track.
var ErrDuplicateID = errors.New("track id already live")
