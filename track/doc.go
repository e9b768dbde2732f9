// Package track assigns persistent identities to objects observed as
// unordered 2D detections in a sequence of frames.
//
// Responsibilities: per-track state estimation (constant-acceleration
// Kalman filter), frame-to-frame data association (minimum-cost
// bipartite matching with a padded no-match option), and track
// lifecycle (birth, coasting through occlusion, death).
// Key types: Tracker, Track.
//
// The package is strictly frame-sequential: one Update call mutates the
// tracker state and must complete before the next begins. Detection
// production, video decoding, rendering and long-term persistence are
// the caller's concern; see internal/trackdb for the snapshot store.
package track
