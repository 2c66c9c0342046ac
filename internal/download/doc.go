// Package download orchestrates the concurrent fetch of chart-preview
// images.
//
// A Manager dispatches one unit of work per catalog song to an errgroup
// bounded at Settings.Workers. Each unit walks its song's tasks serially:
// the rate limiter gates the request start, the retrying fetcher pulls the
// bytes, and the dedup store decides write versus skip. Units never cancel
// each other; a song that fails (or panics) is recorded and the run moves
// on.
//
// Two synchronization domains exist: the rate limiter's timestamp and the
// Reporter's counters/ledger, each behind its own lock. Destination paths
// are deterministic and disjoint per task, so file writes need no locking.
package download
