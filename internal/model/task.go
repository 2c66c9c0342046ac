package model

// Task is a single image download: one URL destined for one deterministic
// file under the song's directory. Tasks are immutable once built.
type Task struct {
	// SongNo is the owning song's catalog number.
	SongNo string

	// Difficulty is the numeric difficulty tier (1-5).
	Difficulty int

	// Index is the position of this image within its difficulty's image
	// list, starting at 0. It determines the destination filename.
	Index int

	// URL is the absolute source URL.
	URL string
}

// Filename returns the destination filename for this task. See Resolve for
// the naming contract.
func (t Task) Filename() string {
	return Resolve(t.Difficulty, t.Index, t.URL)
}

// Tasks expands the song into its download tasks: difficulty-mapping order,
// then image-list order. Nil courses, missing image lists and empty URL
// strings contribute nothing. A song without a number yields no tasks; the
// caller is expected to count it as skipped rather than treat it as an error.
func (s Song) Tasks() []Task {
	if s.SongNo == "" {
		return nil
	}

	var tasks []Task
	for _, d := range Difficulties {
		course := s.Courses[d.Name]
		if course == nil {
			continue
		}

		index := 0
		for _, url := range course.Images {
			if url == "" {
				continue
			}
			tasks = append(tasks, Task{
				SongNo:     s.SongNo,
				Difficulty: d.Value,
				Index:      index,
				URL:        url,
			})
			index++
		}
	}

	return tasks
}

// OutcomeKind tags the result of one task.
type OutcomeKind int

const (
	// OutcomeDownloaded means the fetched bytes were written to the store.
	OutcomeDownloaded OutcomeKind = iota

	// OutcomeSkipped means the store already held identical content.
	OutcomeSkipped

	// OutcomeFailed means the image could not be fetched or stored.
	OutcomeFailed
)

// Outcome is the result of processing one task. Exactly one outcome is
// recorded per task.
type Outcome struct {
	Kind OutcomeKind

	// Bytes is the number of bytes written (Downloaded only).
	Bytes int64

	// Reason explains a Skipped or Failed outcome.
	Reason string
}

// Downloaded returns an outcome for a successful write of n bytes.
func Downloaded(n int64) Outcome {
	return Outcome{Kind: OutcomeDownloaded, Bytes: n}
}

// Skipped returns an outcome for content that was already stored.
func Skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Reason: reason}
}

// Failed returns an outcome for a task that could not be completed.
func Failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}

// Failure is one entry of the run's failure ledger.
type Failure struct {
	SongNo string
	URL    string
	Reason string
}
