package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gocloud.dev/blob/memblob"

	"github.com/kirisamevanilla/chartdl/internal/config"
	"github.com/kirisamevanilla/chartdl/internal/model"
)

// testSettings returns settings tuned for fast tests: no throttling, tiny
// backoff.
func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.Workers = 4
	s.RequestTimeout = 5
	s.DownloadMaxRetries = 2
	s.DownloadRetryCooldown = 0.001
	s.ThrottledHost = ""
	return s
}

func TestRun_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "bytes of %s", r.URL.Path)
	}))
	defer srv.Close()

	songs := []model.Song{
		{
			SongNo: "100",
			Courses: map[string]*model.Course{
				"oni": {Images: []string{srv.URL + "/a.png", srv.URL + "/b.png"}},
			},
		},
	}

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m := NewManager(testSettings(), bucket, nil)
	if err := m.Run(context.Background(), songs); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	summary := m.Reporter().Snapshot()
	if summary.Downloaded != 2 || summary.FailedImages != 0 || summary.SkippedImages != 0 {
		t.Errorf("summary = %+v, want 2 downloaded", summary)
	}
	if summary.CompletedSongs != 1 {
		t.Errorf("CompletedSongs = %d, want 1", summary.CompletedSongs)
	}

	ctx := context.Background()
	for _, key := range []string{"100/4.png", "100/4_2.png"} {
		exists, err := bucket.Exists(ctx, key)
		if err != nil || !exists {
			t.Errorf("expected key %q in bucket (exists=%v, err=%v)", key, exists, err)
		}
	}
}

func TestRun_SecondRunAllSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "stable content for %s", r.URL.Path)
	}))
	defer srv.Close()

	songs := []model.Song{
		{SongNo: "1", Courses: map[string]*model.Course{
			"easy": {Images: []string{srv.URL + "/e.jpg"}},
			"oni":  {Images: []string{srv.URL + "/o.png", srv.URL + "/o2.png"}},
		}},
		{SongNo: "2", Courses: map[string]*model.Course{
			"hard": {Images: []string{srv.URL + "/h.gif"}},
		}},
	}

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	first := NewManager(testSettings(), bucket, nil)
	if err := first.Run(context.Background(), songs); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if s := first.Reporter().Snapshot(); s.Downloaded != 4 {
		t.Fatalf("first run downloaded = %d, want 4", s.Downloaded)
	}

	second := NewManager(testSettings(), bucket, nil)
	if err := second.Run(context.Background(), songs); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	s := second.Reporter().Snapshot()
	if s.SkippedImages != 4 || s.Downloaded != 0 || s.BytesWritten != 0 {
		t.Errorf("second run summary = %+v, want all 4 skipped and zero bytes", s)
	}
}

func TestRun_OneOutcomePerTask(t *testing.T) {
	var mu sync.Mutex
	served := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "missing.png") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	songs := []model.Song{
		{SongNo: "10", Courses: map[string]*model.Course{
			"oni": {Images: []string{srv.URL + "/ok.png", srv.URL + "/missing.png", ""}},
		}},
		{SongNo: "11", Courses: map[string]*model.Course{
			"ura": {Images: []string{srv.URL + "/ok2.png"}},
		}},
		{SongNo: "12", Courses: map[string]*model.Course{"easy": nil}},
	}

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m := NewManager(testSettings(), bucket, nil)
	if err := m.Run(context.Background(), songs); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := m.Reporter().Snapshot()
	// 3 non-empty URLs across all songs; the empty string contributes no task.
	if got := s.TotalImages(); got != 3 {
		t.Errorf("TotalImages() = %d, want 3", got)
	}
	if s.Downloaded != 2 || s.FailedImages != 1 {
		t.Errorf("summary = %+v, want 2 downloaded / 1 failed", s)
	}
	if len(s.Failures) != 1 {
		t.Fatalf("failure ledger has %d entries, want 1", len(s.Failures))
	}
	f := s.Failures[0]
	if f.SongNo != "10" || !strings.Contains(f.Reason, "404") {
		t.Errorf("failure = %+v, want song 10 with a 404 reason", f)
	}
}

func TestRun_MalformedSongSkipped(t *testing.T) {
	songs := []model.Song{
		{Courses: map[string]*model.Course{
			"oni": {Images: []string{"https://host/a.png"}},
		}},
	}

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m := NewManager(testSettings(), bucket, nil)
	if err := m.Run(context.Background(), songs); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := m.Reporter().Snapshot()
	if s.SkippedSongs != 1 {
		t.Errorf("SkippedSongs = %d, want 1", s.SkippedSongs)
	}
	if s.TotalImages() != 0 {
		t.Errorf("TotalImages() = %d, want 0 (no fetch for malformed record)", s.TotalImages())
	}
	if len(s.Failures) != 0 {
		t.Errorf("failure ledger = %+v, want empty (malformed record is not a failure)", s.Failures)
	}
}

func TestRun_FailureIsolatedPerSong(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("img"))
	}))
	defer srv.Close()

	songs := []model.Song{
		{SongNo: "20", Courses: map[string]*model.Course{
			"oni": {Images: []string{srv.URL + "/bad.png"}},
		}},
		{SongNo: "21", Courses: map[string]*model.Course{
			"oni": {Images: []string{srv.URL + "/good.png"}},
		}},
	}

	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m := NewManager(testSettings(), bucket, nil)
	if err := m.Run(context.Background(), songs); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := m.Reporter().Snapshot()
	if s.Downloaded != 1 || s.FailedImages != 1 {
		t.Errorf("summary = %+v, want the good song downloaded despite the bad one", s)
	}
	if s.CompletedSongs != 2 {
		t.Errorf("CompletedSongs = %d, want 2", s.CompletedSongs)
	}
}

func TestProcessSong_PanicRecovered(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()

	m := NewManager(testSettings(), bucket, nil)

	// Force a panic through a poisoned progress callback to exercise the
	// unit boundary. Only the first call panics so the recovery path can
	// report normally.
	fired := false
	m.onProgress = func(ProgressEvent) {
		if !fired {
			fired = true
			panic("boom")
		}
	}

	song := model.Song{SongNo: "30", Courses: map[string]*model.Course{"easy": nil}}
	m.processSong(context.Background(), song) // must not panic

	m.onProgress = nil
	s := m.Reporter().Snapshot()
	if s.SkippedSongs != 1 {
		t.Errorf("SkippedSongs = %d, want 1 after recovered panic", s.SkippedSongs)
	}
	found := false
	for _, f := range s.Failures {
		if f.SongNo == "30" && strings.Contains(f.Reason, "song processing error") {
			found = true
		}
	}
	if !found {
		t.Errorf("failure ledger %+v missing song processing error entry", s.Failures)
	}
}

func TestReporter_ConcurrentMerges(t *testing.T) {
	r := NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.MergeSong(2, 1, 1, 100, []model.Failure{{SongNo: fmt.Sprint(i)}})
		}(i)
	}
	wg.Wait()

	s := r.Snapshot()
	if s.Downloaded != 100 || s.SkippedImages != 50 || s.FailedImages != 50 {
		t.Errorf("summary = %+v", s)
	}
	if s.CompletedSongs != 50 || len(s.Failures) != 50 || s.BytesWritten != 5000 {
		t.Errorf("summary = %+v", s)
	}
}
