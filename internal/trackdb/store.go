package trackdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonmatthis/OmniTrax/track"
)

// Session groups the tracks of one processed stream (one video, one
// live capture). Session IDs are UUIDs so they stay unique across
// databases and process restarts.
type Session struct {
	ID               string
	Label            string
	CreatedUnixNanos int64
}

// TrackSummary is the per-track row persisted for a session: the last
// known state plus the majority-vote class label.
type TrackSummary struct {
	SessionID     string
	TrackID       int64
	Class         string
	X             float64
	Y             float64
	Box           track.Box
	HasBox        bool
	SkippedFrames int
	LastFrame     int
}

// CreateSession inserts a new session and returns it.
func (db *DB) CreateSession(label string) (Session, error) {
	s := Session{
		ID:               uuid.NewString(),
		Label:            label,
		CreatedUnixNanos: time.Now().UnixNano(),
	}

	_, err := db.Exec(
		`INSERT INTO sessions (session_id, label, created_unix_nanos) VALUES (?, ?, ?)`,
		s.ID, s.Label, s.CreatedUnixNanos,
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}

	return s, nil
}

// ListSessions returns all sessions, newest first.
func (db *DB) ListSessions() ([]Session, error) {
	rows, err := db.Query(
		`SELECT session_id, label, created_unix_nanos FROM sessions ORDER BY created_unix_nanos DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Label, &s.CreatedUnixNanos); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

// SaveTrack upserts a track's snapshot for the given frame and records
// its current position as an observation row. Called once per live
// track per frame, it captures full trajectories even for tracks that
// the tracker later deletes.
func (db *DB) SaveTrack(sessionID string, tr *track.Track, frame int) error {
	pos := tr.Position()

	var boxX, boxY, boxW, boxH interface{}
	if boxes := tr.BoxTrace(); len(boxes) > 0 {
		last := boxes[len(boxes)-1]
		boxX, boxY, boxW, boxH = last.X, last.Y, last.W, last.H
	}

	// ON CONFLICT DO UPDATE rather than INSERT OR REPLACE, so the
	// upsert never cascade-deletes the track's observation rows.
	_, err := db.Exec(`
		INSERT INTO tracks (
			session_id, track_id, class, x, y,
			box_x, box_y, box_w, box_h,
			skipped_frames, last_frame
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, track_id) DO UPDATE SET
			class = excluded.class,
			x = excluded.x,
			y = excluded.y,
			box_x = excluded.box_x,
			box_y = excluded.box_y,
			box_w = excluded.box_w,
			box_h = excluded.box_h,
			skipped_frames = excluded.skipped_frames,
			last_frame = excluded.last_frame
	`,
		sessionID, tr.ID(), tr.MajorityClass(), pos.X, pos.Y,
		boxX, boxY, boxW, boxH,
		tr.SkippedFrames(), frame,
	)
	if err != nil {
		return fmt.Errorf("upsert track %d: %w", tr.ID(), err)
	}

	_, err = db.Exec(
		`INSERT OR REPLACE INTO track_obs (session_id, track_id, frame, x, y) VALUES (?, ?, ?, ?, ?)`,
		sessionID, tr.ID(), frame, pos.X, pos.Y,
	)
	if err != nil {
		return fmt.Errorf("insert observation for track %d: %w", tr.ID(), err)
	}

	return nil
}

// ListTracks returns the persisted track summaries for a session in
// track-ID order.
func (db *DB) ListTracks(sessionID string) ([]TrackSummary, error) {
	rows, err := db.Query(`
		SELECT track_id, class, x, y, box_x, box_y, box_w, box_h, skipped_frames, last_frame
		FROM tracks
		WHERE session_id = ?
		ORDER BY track_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []TrackSummary
	for rows.Next() {
		ts := TrackSummary{SessionID: sessionID}
		var class sql.NullString
		var boxX, boxY, boxW, boxH sql.NullFloat64

		if err := rows.Scan(
			&ts.TrackID, &class, &ts.X, &ts.Y,
			&boxX, &boxY, &boxW, &boxH,
			&ts.SkippedFrames, &ts.LastFrame,
		); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}

		if class.Valid {
			ts.Class = class.String
		}
		if boxX.Valid && boxY.Valid && boxW.Valid && boxH.Valid {
			ts.Box = track.Box{X: boxX.Float64, Y: boxY.Float64, W: boxW.Float64, H: boxH.Float64}
			ts.HasBox = true
		}

		tracks = append(tracks, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}

	return tracks, nil
}

// LoadPriorState returns restore records for every track persisted in
// a session, suitable for re-seeding a Tracker via Restore.
func (db *DB) LoadPriorState(sessionID string) ([]track.RestoreRecord, error) {
	summaries, err := db.ListTracks(sessionID)
	if err != nil {
		return nil, err
	}

	records := make([]track.RestoreRecord, 0, len(summaries))
	for _, ts := range summaries {
		records = append(records, track.RestoreRecord{
			ID:    ts.TrackID,
			X:     ts.X,
			Y:     ts.Y,
			Class: ts.Class,
			Box:   ts.Box,
		})
	}

	return records, nil
}

// TrackObservations returns a track's recorded trajectory in frame
// order.
func (db *DB) TrackObservations(sessionID string, trackID int64) ([]track.Point, error) {
	rows, err := db.Query(`
		SELECT x, y FROM track_obs
		WHERE session_id = ? AND track_id = ?
		ORDER BY frame ASC
	`, sessionID, trackID)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var points []track.Point
	for rows.Next() {
		var p track.Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return points, nil
}
