package publish

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"contentflow/internal/store"
)

type fakeStore struct {
	item       *store.ContentItem
	postStatus []store.StageStatus
	updates    map[string]any
}

func (f *fakeStore) GetContentItem(ctx context.Context, id string) (*store.ContentItem, error) {
	if f.item == nil || f.item.ID != id {
		return nil, store.ErrNotFound
	}
	return f.item, nil
}

func (f *fakeStore) SetPostStatus(ctx context.Context, id string, status store.StageStatus) error {
	f.postStatus = append(f.postStatus, status)
	return nil
}

func (f *fakeStore) UpdateContentItem(ctx context.Context, id string, updates map[string]any) error {
	f.updates = updates
	return nil
}

type fakeUploader struct {
	resp *UploadResponse
	err  error
	req  UploadRequest
}

func (f *fakeUploader) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	f.req = req
	return f.resp, f.err
}

type fakeArtifacts struct {
	content   string
	openErr   error
	failPaths map[string]bool
	listed    []string
	opened    []string
}

func (f *fakeArtifacts) Save(ctx context.Context, objectPath string, data []byte) (string, error) {
	return "", nil
}

func (f *fakeArtifacts) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	f.opened = append(f.opened, objectPath)
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.failPaths[objectPath] {
		return nil, fmt.Errorf("object not found")
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeArtifacts) List(ctx context.Context, prefix string) ([]string, error) {
	return f.listed, nil
}

func (f *fakeArtifacts) URL(objectPath string) string { return "https://storage/" + objectPath }

func readyItem() *store.ContentItem {
	return &store.ContentItem{
		ID:            "item-1",
		Title:         "Why Rome Fell",
		Script:        "Rome did not fall in a day.",
		TopicKeywords: []string{"rome", "history"},
		Status:        store.ContentReady,
		VideoFilePath: "content/item-1/video_1.mp4",
	}
}

func TestRunPublishesItem(t *testing.T) {
	fs := &fakeStore{item: readyItem()}
	uploader := &fakeUploader{resp: &UploadResponse{VideoID: "yt-1", URL: "https://youtube.com/watch?v=yt-1"}}
	artifacts := &fakeArtifacts{content: "mp4-bytes"}

	worker := NewWorker(fs, uploader, artifacts, "private")
	if err := worker.Run(context.Background(), "item-1"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if uploader.req.Title != "Why Rome Fell" {
		t.Errorf("upload title = %q", uploader.req.Title)
	}
	if uploader.req.Filename != "video_1.mp4" {
		t.Errorf("upload filename = %q, want video_1.mp4", uploader.req.Filename)
	}
	if uploader.req.Privacy != "private" {
		t.Errorf("privacy = %q, want private", uploader.req.Privacy)
	}
	if len(uploader.req.Tags) != 2 {
		t.Errorf("tags = %v, want topic keywords", uploader.req.Tags)
	}

	if fs.updates["status"] != store.ContentPublished {
		t.Errorf("status update = %v, want published", fs.updates["status"])
	}
	if fs.updates["post_status"] != store.StageCompleted {
		t.Errorf("post status update = %v, want completed", fs.updates["post_status"])
	}
}

func TestRunItemNotReady(t *testing.T) {
	item := readyItem()
	item.Status = store.ContentGenerating
	fs := &fakeStore{item: item}

	worker := NewWorker(fs, &fakeUploader{}, &fakeArtifacts{}, "private")
	if err := worker.Run(context.Background(), "item-1"); err == nil {
		t.Error("Run() = nil, want error")
	}
	if len(fs.postStatus) != 0 {
		t.Errorf("post status touched for unready item: %v", fs.postStatus)
	}
}

func TestRunNoArtifact(t *testing.T) {
	item := readyItem()
	item.VideoFilePath = ""
	fs := &fakeStore{item: item}

	worker := NewWorker(fs, &fakeUploader{}, &fakeArtifacts{}, "private")
	if err := worker.Run(context.Background(), "item-1"); err == nil {
		t.Error("Run() = nil, want error")
	}
}

func TestRunUploadFailure(t *testing.T) {
	fs := &fakeStore{item: readyItem()}
	uploader := &fakeUploader{err: fmt.Errorf("quota exceeded")}

	worker := NewWorker(fs, uploader, &fakeArtifacts{}, "private")
	if err := worker.Run(context.Background(), "item-1"); err == nil {
		t.Fatal("Run() = nil, want error")
	}

	last := fs.postStatus[len(fs.postStatus)-1]
	if last != store.StageFailed {
		t.Errorf("post status = %s, want failed", last)
	}
	if fs.updates != nil {
		t.Error("item status should not change on upload failure")
	}
}

func TestRunFallsBackToLatestRender(t *testing.T) {
	fs := &fakeStore{item: readyItem()}
	uploader := &fakeUploader{resp: &UploadResponse{VideoID: "yt-2", URL: "https://youtube.com/watch?v=yt-2"}}
	artifacts := &fakeArtifacts{
		content:   "mp4-bytes",
		failPaths: map[string]bool{"content/item-1/video_1.mp4": true},
		listed: []string{
			"content/item-1/video_2.mp4",
			"content/item-1/video_9.mp4",
		},
	}

	worker := NewWorker(fs, uploader, artifacts, "private")
	if err := worker.Run(context.Background(), "item-1"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if uploader.req.Filename != "video_9.mp4" {
		t.Errorf("upload filename = %q, want the newest render", uploader.req.Filename)
	}
}

func TestRunArtifactOpenFailure(t *testing.T) {
	fs := &fakeStore{item: readyItem()}
	artifacts := &fakeArtifacts{openErr: fmt.Errorf("object not found")}

	worker := NewWorker(fs, &fakeUploader{}, artifacts, "private")
	if err := worker.Run(context.Background(), "item-1"); err == nil {
		t.Fatal("Run() = nil, want error")
	}

	last := fs.postStatus[len(fs.postStatus)-1]
	if last != store.StageFailed {
		t.Errorf("post status = %s, want failed", last)
	}
}
