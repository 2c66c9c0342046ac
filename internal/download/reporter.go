package download

import (
	"sync"

	"github.com/kirisamevanilla/chartdl/internal/model"
)

// Summary is a point-in-time copy of the run's aggregate counts.
type Summary struct {
	Downloaded     int
	SkippedImages  int
	FailedImages   int
	SkippedSongs   int
	CompletedSongs int
	BytesWritten   int64
	Failures       []model.Failure
}

// TotalImages returns the number of tasks that received an outcome.
func (s Summary) TotalImages() int {
	return s.Downloaded + s.SkippedImages + s.FailedImages
}

// Reporter aggregates per-song results. All methods are safe for concurrent
// use; workers hold their own per-song tallies and merge once when the song
// completes, so the lock guards bookkeeping only, never I/O.
type Reporter struct {
	mu             sync.Mutex
	downloaded     int
	skippedImages  int
	failedImages   int
	skippedSongs   int
	completedSongs int
	bytesWritten   int64
	failures       []model.Failure
}

// NewReporter creates an empty reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// MergeSong folds one completed song's tallies into the run totals.
func (r *Reporter) MergeSong(downloaded, skipped, failed int, bytes int64, failures []model.Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloaded += downloaded
	r.skippedImages += skipped
	r.failedImages += failed
	r.bytesWritten += bytes
	r.failures = append(r.failures, failures...)
	r.completedSongs++
}

// SkipSong records a song that produced no tasks (missing identifier or a
// processing error). Not a failure of the run.
func (r *Reporter) SkipSong() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skippedSongs++
	r.completedSongs++
}

// AddFailure appends one entry to the failure ledger outside the per-song
// merge path. Used for song-level processing errors, which appear in the
// ledger but do not count against the per-image totals.
func (r *Reporter) AddFailure(f model.Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
}

// CompletedSongs returns the number of song units finished so far.
func (r *Reporter) CompletedSongs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completedSongs
}

// Snapshot returns a copy of the current totals and the failure ledger in
// insertion order.
func (r *Reporter) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	failures := make([]model.Failure, len(r.failures))
	copy(failures, r.failures)
	return Summary{
		Downloaded:     r.downloaded,
		SkippedImages:  r.skippedImages,
		FailedImages:   r.failedImages,
		SkippedSongs:   r.skippedSongs,
		CompletedSongs: r.completedSongs,
		BytesWritten:   r.bytesWritten,
		Failures:       failures,
	}
}
