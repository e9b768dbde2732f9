package trackdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonmatthis/OmniTrax/track"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "tracks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.MigrateUp("migrations"))
	return db
}

func testTracker(t *testing.T) *track.Tracker {
	t.Helper()

	cfg := track.DefaultConfig()
	cfg.UseKalman = false
	cfg.DistThreshold = 10
	cfg.RecordClasses = true
	cfg.RecordBoxes = true

	tk, err := track.New(cfg)
	require.NoError(t, err)
	return tk
}

func TestMigrations(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "tracks.db"))
	require.NoError(t, err)
	defer db.Close()

	// Fresh database has no version yet.
	version, dirty, err := db.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp("migrations"))
	version, dirty, err = db.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Up is idempotent.
	require.NoError(t, db.MigrateUp("migrations"))

	require.NoError(t, db.MigrateDown("migrations"))
	version, _, err = db.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}

func TestCreateAndListSessions(t *testing.T) {
	db := openTestDB(t)

	first, err := db.CreateSession("morning run")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "morning run", first.Label)

	time.Sleep(time.Millisecond)
	second, err := db.CreateSession("afternoon run")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	sessions, err := db.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID, "newest first")
	assert.Equal(t, first.ID, sessions[1].ID)
}

func TestSaveTrackRoundTrip(t *testing.T) {
	db := openTestDB(t)
	tk := testTracker(t)

	session, err := db.CreateSession("roundtrip")
	require.NoError(t, err)

	dets := []track.Point{{X: 10, Y: 20}, {X: 200, Y: 300}}
	classes := []string{"ant", "bee"}
	boxes := []track.Box{{X: 8, Y: 18, W: 4, H: 4}, {X: 198, Y: 298, W: 6, H: 6}}
	require.NoError(t, tk.Update(dets, classes, boxes))
	for _, tr := range tk.Tracks() {
		require.NoError(t, db.SaveTrack(session.ID, tr, 0))
	}

	dets = []track.Point{{X: 11, Y: 21}, {X: 201, Y: 301}}
	require.NoError(t, tk.Update(dets, classes, boxes))
	for _, tr := range tk.Tracks() {
		require.NoError(t, db.SaveTrack(session.ID, tr, 1))
	}

	summaries, err := db.ListTracks(session.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	want := TrackSummary{
		SessionID: session.ID,
		TrackID:   0,
		Class:     "ant",
		X:         11,
		Y:         21,
		Box:       boxes[0],
		HasBox:    true,
		LastFrame: 1,
	}
	if diff := cmp.Diff(want, summaries[0]); diff != "" {
		t.Errorf("track summary mismatch (-want +got):\n%s", diff)
	}

	bee := summaries[1]
	assert.Equal(t, int64(1), bee.TrackID)
	assert.Equal(t, "bee", bee.Class)

	obs, err := db.TrackObservations(session.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []track.Point{{X: 10, Y: 20}, {X: 11, Y: 21}}, obs)
}

func TestSaveTrackUpsertKeepsObservations(t *testing.T) {
	db := openTestDB(t)
	tk := testTracker(t)

	session, err := db.CreateSession("upsert")
	require.NoError(t, err)

	for frame := 0; frame < 5; frame++ {
		det := track.Point{X: float64(frame), Y: 0}
		require.NoError(t, tk.Update([]track.Point{det}, []string{"ant"}, []track.Box{{W: 2, H: 2}}))
		require.NoError(t, db.SaveTrack(session.ID, tk.Tracks()[0], frame))
	}

	summaries, err := db.ListTracks(session.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1, "one snapshot row per track")
	assert.Equal(t, 4, summaries[0].LastFrame)
	assert.Equal(t, 4.0, summaries[0].X)

	obs, err := db.TrackObservations(session.ID, 0)
	require.NoError(t, err)
	assert.Len(t, obs, 5, "every frame keeps its observation row")
}

func TestSaveTrackWithoutBoxes(t *testing.T) {
	db := openTestDB(t)

	cfg := track.DefaultConfig()
	cfg.UseKalman = false
	tk, err := track.New(cfg)
	require.NoError(t, err)

	session, err := db.CreateSession("no boxes")
	require.NoError(t, err)

	require.NoError(t, tk.Update([]track.Point{{X: 1, Y: 2}}, nil, nil))
	require.NoError(t, db.SaveTrack(session.ID, tk.Tracks()[0], 0))

	summaries, err := db.ListTracks(session.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].HasBox)
	assert.Equal(t, track.Box{}, summaries[0].Box)
}

func TestLoadPriorStateResumesIdentities(t *testing.T) {
	db := openTestDB(t)
	tk := testTracker(t)

	session, err := db.CreateSession("resume")
	require.NoError(t, err)

	dets := []track.Point{{X: 10, Y: 20}, {X: 200, Y: 300}}
	classes := []string{"ant", "bee"}
	boxes := []track.Box{{W: 4, H: 4}, {W: 6, H: 6}}
	require.NoError(t, tk.Update(dets, classes, boxes))
	for _, tr := range tk.Tracks() {
		require.NoError(t, db.SaveTrack(session.ID, tr, 0))
	}

	records, err := db.LoadPriorState(session.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// A fresh tracker re-seeded from the records keeps the old
	// identities and never reuses them for new objects.
	resumed := testTracker(t)
	for _, rec := range records {
		require.NoError(t, resumed.Restore(rec))
	}
	require.Equal(t, 2, resumed.Len())
	assert.Equal(t, int64(0), resumed.Tracks()[0].ID())
	assert.Equal(t, track.Point{X: 10, Y: 20}, resumed.Tracks()[0].Position())
	assert.Equal(t, []string{"bee"}, resumed.Tracks()[1].ClassHistory())

	require.NoError(t, resumed.Update(
		[]track.Point{{X: 10, Y: 20}, {X: 200, Y: 300}, {X: 999, Y: 999}},
		[]string{"ant", "bee", "wasp"},
		[]track.Box{{}, {}, {}},
	))
	require.Equal(t, 3, resumed.Len())
	assert.Equal(t, int64(2), resumed.Tracks()[2].ID())
}
