package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "")

	url, err := store.Save(context.Background(), "content/item-1/video_1.mp4", []byte("mp4-bytes"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !strings.HasPrefix(url, dir) {
		t.Errorf("url = %q, want path under %q", url, dir)
	}

	r, err := store.Open(context.Background(), "content/item-1/video_1.mp4")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "mp4-bytes" {
		t.Errorf("artifact = %q, want %q", data, "mp4-bytes")
	}
}

func TestLocalStoreBaseURL(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "https://media.example.com/")
	if got := store.URL("content/x/video_1.mp4"); got != "https://media.example.com/content/x/video_1.mp4" {
		t.Errorf("URL() = %q", got)
	}
}

func TestLocalStoreOpenMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "")
	if _, err := store.Open(context.Background(), "content/missing.mp4"); err == nil {
		t.Error("Open() = nil, want error")
	}
}

func TestLocalStoreList(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "")
	ctx := context.Background()

	if _, err := store.Save(ctx, "content/item-1/video_2.mp4", []byte("b")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := store.Save(ctx, "content/item-1/video_1.mp4", []byte("a")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := store.Save(ctx, "content/item-2/video_1.mp4", []byte("c")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	paths, err := store.List(ctx, "content/item-1/")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	want := []string{"content/item-1/video_1.mp4", "content/item-1/video_2.mp4"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("List() = %v, want %v", paths, want)
	}

	empty, err := store.List(ctx, "content/item-3/")
	if err != nil {
		t.Fatalf("List() on missing prefix error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List() on missing prefix = %v, want empty", empty)
	}
}

func TestArtifactPath(t *testing.T) {
	path := ArtifactPath("item-1")
	if !strings.HasPrefix(path, "content/item-1/video_") || !strings.HasSuffix(path, ".mp4") {
		t.Errorf("ArtifactPath() = %q", path)
	}
}
