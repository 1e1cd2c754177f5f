package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/ocrmd/ocrmd/internal/errors"
	"github.com/ocrmd/ocrmd/internal/logging"
)

func newTestReconciler() *Reconciler {
	return New(logging.Nop())
}

func TestMaterializeWritesDecodedImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "doc-images")
	r := newTestReconciler()

	paths, failures := r.Materialize(map[string]string{"img-0.jpeg": "aGVsbG8="}, dir)
	if len(failures) != 0 {
		t.Fatalf("failures = %v, want none", failures)
	}

	rel, ok := paths["img-0.jpeg"]
	if !ok {
		t.Fatal("mapping missing the written image")
	}
	want := "doc-images/" + ImageFilename("img-0.jpeg")
	if rel != want {
		t.Errorf("relative path = %q, want %q", rel, want)
	}

	data, err := os.ReadFile(filepath.Join(dir, ImageFilename("img-0.jpeg")))
	if err != nil {
		t.Fatalf("image file not written: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("file content = %q, want decoded payload", string(data))
	}
}

func TestMaterializeStripsDataURIPrefix(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "imgs")
	r := newTestReconciler()

	paths, failures := r.Materialize(map[string]string{"a": "data:image/png;base64,aGk="}, dir)
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}

	data, err := os.ReadFile(filepath.Join(dir, ImageFilename("a")))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hi" {
		t.Errorf("content = %q, want %q", string(data), "hi")
	}
	if len(paths) != 1 {
		t.Errorf("paths = %v", paths)
	}
}

func TestMaterializeSkipsBrokenImagesAndKeepsGoing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "imgs")
	r := newTestReconciler()

	images := map[string]string{
		"good-1": "aGk=",
		"broken": "!!!not-base64!!!",
		"empty":  "",
		"good-2": "aGVsbG8=",
	}

	paths, failures := r.Materialize(images, dir)

	if len(paths) != 2 {
		t.Errorf("paths = %v, want the two good images", paths)
	}
	if len(failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(failures))
	}
	for _, f := range failures {
		if !apperrors.HasCode(f.Err, apperrors.ErrorImageDecodeFailed) {
			t.Errorf("failure %q should be a decode error, got %v", f.ID, f.Err)
		}
		if _, ok := paths[f.ID]; ok {
			t.Errorf("failed id %q must stay out of the mapping", f.ID)
		}
	}
}

func TestMaterializeFilenamesAreIdempotent(t *testing.T) {
	r := newTestReconciler()

	dir1 := filepath.Join(t.TempDir(), "a")
	dir2 := filepath.Join(t.TempDir(), "b")

	first, _ := r.Materialize(map[string]string{"img-1": "aGk="}, dir1)
	// different payload, same id: the digest covers the id only
	second, _ := r.Materialize(map[string]string{"img-1": "aGVsbG8="}, dir2)

	if filepath.Base(first["img-1"]) != filepath.Base(second["img-1"]) {
		t.Errorf("filenames differ across runs: %q vs %q", first["img-1"], second["img-1"])
	}
}

func TestMaterializeDistinctIDsGetDistinctFiles(t *testing.T) {
	if ImageFilename("image-1") == ImageFilename("image-10") {
		t.Error("distinct ids must not collide")
	}
}

func TestMaterializeNoImagesCreatesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	r := newTestReconciler()

	paths, failures := r.Materialize(map[string]string{}, dir)
	if len(paths) != 0 || len(failures) != 0 {
		t.Errorf("empty input should be a no-op, got %v / %v", paths, failures)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("images directory must not be created without a write")
	}
}

func TestMaterializeOnlyBrokenImagesCreatesNoDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	r := newTestReconciler()

	_, failures := r.Materialize(map[string]string{"bad": "%%%"}, dir)
	if len(failures) != 1 {
		t.Fatalf("failures = %v", failures)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory should only appear on the first successful decode")
	}
}

func TestMaterializeRecordsWriteFailures(t *testing.T) {
	// a regular file where the directory should go makes MkdirAll fail
	parent := t.TempDir()
	blocked := filepath.Join(parent, "imgs")
	if err := os.WriteFile(blocked, []byte("in the way"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestReconciler()
	paths, failures := r.Materialize(map[string]string{"img": "aGk="}, blocked)

	if len(paths) != 0 {
		t.Errorf("paths = %v, want none", paths)
	}
	if len(failures) != 1 || !apperrors.HasCode(failures[0].Err, apperrors.ErrorImageWriteFailed) {
		t.Errorf("failures = %v, want one write failure", failures)
	}
}

func TestImageDigestStability(t *testing.T) {
	if ImageDigest("img-0.jpeg") != ImageDigest("img-0.jpeg") {
		t.Error("digest must be deterministic")
	}
	if len(ImageDigest("x")) != digestBytes*2 {
		t.Errorf("digest length = %d hex chars, want %d", len(ImageDigest("x")), digestBytes*2)
	}
}
