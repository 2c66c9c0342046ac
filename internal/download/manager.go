package download

import (
	"context"
	"fmt"
	"path"
	"time"

	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"

	"github.com/kirisamevanilla/chartdl/internal/config"
	"github.com/kirisamevanilla/chartdl/internal/httpx"
	"github.com/kirisamevanilla/chartdl/internal/model"
	"github.com/kirisamevanilla/chartdl/internal/ratelimit"
	"github.com/kirisamevanilla/chartdl/internal/store"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager coordinates chart-preview downloads: one unit of work per song,
// dispatched to a bounded worker pool. Within a unit the song's images are
// fetched serially through the rate limiter, written through the dedup
// store, and tallied; the unit reports to the shared Reporter exactly once.
type Manager struct {
	settings *config.Settings
	client   *httpx.Client
	limiter  *ratelimit.Limiter
	store    *store.Store
	reporter *Reporter

	onProgress func(ProgressEvent)
}

// NewManager creates a Manager persisting into bucket.
func NewManager(settings *config.Settings, bucket *blob.Bucket, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings: settings,
		client: httpx.NewClient(httpx.Options{
			Timeout:   secs(settings.RequestTimeout),
			Attempts:  settings.DownloadMaxRetries,
			Cooldown:  secs(settings.DownloadRetryCooldown),
			Exponent:  settings.DownloadRetryExponent,
			UserAgent: settings.UserAgent,
		}),
		limiter:    ratelimit.New(settings.ThrottledHost, secs(settings.MinRequestInterval)),
		store:      store.New(bucket, settings.VerifyImages),
		reporter:   NewReporter(),
		onProgress: onProgress,
	}
}

// Reporter exposes the run's aggregator, for live progress polling and the
// final summary.
func (m *Manager) Reporter() *Reporter {
	return m.reporter
}

// Run processes every song in the catalog and blocks until all units have
// completed. The run is best-effort: failures stay confined to their song,
// and no unit cancels another. The only returned error is ctx's, surfaced
// after all in-flight units drain.
func (m *Manager) Run(ctx context.Context, songs []model.Song) error {
	workers := m.settings.Workers
	if workers <= 0 {
		workers = 10
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, song := range songs {
		g.Go(func() error {
			m.processSong(ctx, song)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// processSong is one unit of work. Panics are confined here: a unit that
// blows up is recorded as a skipped song with a ledger entry and the rest of
// the run continues.
func (m *Manager) processSong(ctx context.Context, song model.Song) {
	defer func() {
		if rec := recover(); rec != nil {
			m.reporter.AddFailure(model.Failure{
				SongNo: song.SongNo,
				Reason: fmt.Sprintf("song processing error: %v", rec),
			})
			m.reporter.SkipSong()
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Song %s: processing error: %v", song.SongNo, rec),
				Level:   LevelError,
			})
		}
	}()

	if song.SongNo == "" {
		m.reporter.SkipSong()
		m.progress(ProgressEvent{Message: "Skipping song without songNo", Level: LevelWarning})
		return
	}

	var (
		downloaded int
		skipped    int
		failed     int
		bytes      int64
		failures   []model.Failure
	)

	for _, task := range song.Tasks() {
		outcome := m.processTask(ctx, task)
		switch outcome.Kind {
		case model.OutcomeDownloaded:
			downloaded++
			bytes += outcome.Bytes
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Downloaded %s/%s", task.SongNo, task.Filename()),
				Level:   LevelVerbose,
			})
		case model.OutcomeSkipped:
			skipped++
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Skipping %s/%s: %s", task.SongNo, task.Filename(), outcome.Reason),
				Level:   LevelVerbose,
			})
		case model.OutcomeFailed:
			failed++
			failures = append(failures, model.Failure{
				SongNo: task.SongNo,
				URL:    task.URL,
				Reason: outcome.Reason,
			})
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Failed %s: %s", task.URL, outcome.Reason),
				Level:   LevelError,
			})
		}
	}

	m.reporter.MergeSong(downloaded, skipped, failed, bytes, failures)
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Song %s done (%d downloaded, %d skipped, %d failed)",
			song.SongNo, downloaded, skipped, failed),
		Level: LevelInfo,
	})
}

// processTask runs one image through limiter, fetcher and store, producing
// exactly one outcome.
func (m *Manager) processTask(ctx context.Context, task model.Task) model.Outcome {
	if err := m.limiter.Wait(ctx, task.URL); err != nil {
		return model.Failed(fmt.Sprintf("rate limiter wait: %v", err))
	}

	data, err := m.client.Fetch(ctx, task.URL)
	if err != nil {
		return model.Failed(err.Error())
	}

	key := path.Join(task.SongNo, task.Filename())
	outcome, err := m.store.Save(ctx, key, data)
	if err != nil {
		return model.Failed(err.Error())
	}
	return outcome
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}

// secs converts a settings value in seconds to a duration.
func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
