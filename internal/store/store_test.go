package store

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"gocloud.dev/blob/memblob"

	"github.com/kirisamevanilla/chartdl/internal/model"
)

func TestSave_NewKey(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()
	s := New(bucket, false)
	ctx := context.Background()

	out, err := s.Save(ctx, "100/4.png", []byte("content"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if out.Kind != model.OutcomeDownloaded {
		t.Errorf("Save() outcome = %v, want Downloaded", out.Kind)
	}
	if out.Bytes != 7 {
		t.Errorf("Save() bytes = %d, want 7", out.Bytes)
	}

	stored, err := bucket.ReadAll(ctx, "100/4.png")
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(stored) != "content" {
		t.Errorf("stored content = %q", stored)
	}
}

func TestSave_IdenticalContentSkipped(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()
	s := New(bucket, false)
	ctx := context.Background()

	if _, err := s.Save(ctx, "100/4.png", []byte("content")); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	out, err := s.Save(ctx, "100/4.png", []byte("content"))
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if out.Kind != model.OutcomeSkipped {
		t.Errorf("second Save() outcome = %v, want Skipped", out.Kind)
	}
	if out.Reason != "identical content" {
		t.Errorf("second Save() reason = %q", out.Reason)
	}
}

func TestSave_ChangedContentOverwritten(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()
	s := New(bucket, false)
	ctx := context.Background()

	if _, err := s.Save(ctx, "100/4.png", []byte("old")); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	out, err := s.Save(ctx, "100/4.png", []byte("new"))
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if out.Kind != model.OutcomeDownloaded {
		t.Errorf("second Save() outcome = %v, want Downloaded", out.Kind)
	}

	stored, _ := bucket.ReadAll(ctx, "100/4.png")
	if string(stored) != "new" {
		t.Errorf("stored content = %q, want %q", stored, "new")
	}
}

func TestSave_VerifyRejectsNonImage(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()
	s := New(bucket, true)
	ctx := context.Background()

	_, err := s.Save(ctx, "100/4.png", []byte("<html>not found</html>"))
	if err == nil {
		t.Fatal("Save() error = nil, want verification failure")
	}
	if !strings.Contains(err.Error(), "not an image") {
		t.Errorf("Save() error = %v", err)
	}

	exists, _ := bucket.Exists(ctx, "100/4.png")
	if exists {
		t.Error("rejected payload was written to the bucket")
	}
}

func TestSave_VerifyAcceptsImage(t *testing.T) {
	bucket := memblob.OpenBucket(nil)
	defer bucket.Close()
	s := New(bucket, true)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("encode test image: %v", err)
	}

	out, err := s.Save(context.Background(), "100/4.png", buf.Bytes())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if out.Kind != model.OutcomeDownloaded {
		t.Errorf("Save() outcome = %v, want Downloaded", out.Kind)
	}
}
