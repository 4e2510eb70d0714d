package scenemedia

import (
	"context"
	"fmt"
	"testing"

	"contentflow/internal/media"
	"contentflow/internal/store"
)

type fakeStore struct {
	item   *store.ContentItem
	scenes []store.Scene
	media  map[uint]*store.SceneMedia

	nextMediaID uint
	stages      []store.Stage
	statuses    []store.ItemVideoStatus
}

func newFakeStore(item *store.ContentItem, scenes []store.Scene) *fakeStore {
	return &fakeStore{
		item:   item,
		scenes: scenes,
		media:  map[uint]*store.SceneMedia{},
	}
}

func (f *fakeStore) GetContentItem(ctx context.Context, id string) (*store.ContentItem, error) {
	if f.item == nil || f.item.ID != id {
		return nil, store.ErrNotFound
	}
	return f.item, nil
}

func (f *fakeStore) SetGenerationStage(ctx context.Context, id string, stage store.Stage) error {
	f.stages = append(f.stages, stage)
	return nil
}

func (f *fakeStore) SetItemVideoStatus(ctx context.Context, id string, status store.ItemVideoStatus) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeStore) ScenesForItem(ctx context.Context, itemID string) ([]store.Scene, error) {
	return f.scenes, nil
}

func (f *fakeStore) GetOrCreateSceneMedia(ctx context.Context, sceneID uint) (*store.SceneMedia, error) {
	if row, ok := f.media[sceneID]; ok {
		return row, nil
	}
	f.nextMediaID++
	row := &store.SceneMedia{ID: f.nextMediaID, SceneID: sceneID, VideoStatus: store.MediaNotStarted}
	f.media[sceneID] = row
	return row, nil
}

func (f *fakeStore) byMediaID(mediaID uint) *store.SceneMedia {
	for _, row := range f.media {
		if row.ID == mediaID {
			return row
		}
	}
	return nil
}

func (f *fakeStore) MarkSceneGenerating(ctx context.Context, mediaID uint) error {
	f.byMediaID(mediaID).VideoStatus = store.MediaGenerating
	return nil
}

func (f *fakeStore) MarkSceneCompleted(ctx context.Context, mediaID uint, url string) error {
	row := f.byMediaID(mediaID)
	row.VideoStatus = store.MediaCompleted
	row.VideoURL = url
	return nil
}

func (f *fakeStore) MarkSceneFailed(ctx context.Context, mediaID uint, message string) error {
	row := f.byMediaID(mediaID)
	row.VideoStatus = store.MediaFailed
	row.ErrorMessage = message
	return nil
}

func (f *fakeStore) SceneMediaForItem(ctx context.Context, itemID string) (map[uint]store.SceneMedia, error) {
	out := map[uint]store.SceneMedia{}
	for sceneID, row := range f.media {
		out[sceneID] = *row
	}
	return out, nil
}

func (f *fakeStore) lastStatus() store.ItemVideoStatus {
	if len(f.statuses) == 0 {
		return ""
	}
	return f.statuses[len(f.statuses)-1]
}

type fakeGateway struct {
	failPrompts map[string]bool
	calls       []string
}

func (f *fakeGateway) Generate(ctx context.Context, req media.Request) (*media.Result, error) {
	f.calls = append(f.calls, req.Prompt)
	if f.failPrompts[req.Prompt] {
		return nil, fmt.Errorf("all media providers failed")
	}
	return &media.Result{URL: "https://cdn/" + req.Prompt + ".png", Provider: "fake"}, nil
}

func testScenes() []store.Scene {
	return []store.Scene{
		{ID: 1, ContentItemID: "item-1", SceneNumber: 1, StartSeconds: 0, EndSeconds: 10, VisualDescription: "castle"},
		{ID: 2, ContentItemID: "item-1", SceneNumber: 2, StartSeconds: 10, EndSeconds: 20, VisualDescription: "forest"},
		{ID: 3, ContentItemID: "item-1", SceneNumber: 3, StartSeconds: 20, EndSeconds: 30, VisualDescription: "river"},
	}
}

func TestRunAllScenesComplete(t *testing.T) {
	fs := newFakeStore(&store.ContentItem{ID: "item-1"}, testScenes())
	gateway := &fakeGateway{}

	worker := NewWorker(fs, gateway, Options{})
	if err := worker.Run(context.Background(), "item-1"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := fs.lastStatus(); got != store.VideoCompleted {
		t.Errorf("final video status = %s, want completed", got)
	}
	if len(fs.stages) == 0 || fs.stages[len(fs.stages)-1] != store.StageMusic {
		t.Errorf("stages = %v, want to end at %s", fs.stages, store.StageMusic)
	}
	if len(gateway.calls) != 3 {
		t.Errorf("gateway calls = %d, want 3", len(gateway.calls))
	}
}

func TestRunSceneFailureIsIsolated(t *testing.T) {
	fs := newFakeStore(&store.ContentItem{ID: "item-1"}, testScenes())
	gateway := &fakeGateway{failPrompts: map[string]bool{"forest": true}}

	worker := NewWorker(fs, gateway, Options{})
	if err := worker.Run(context.Background(), "item-1"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// All three scenes are attempted even though the second fails.
	if len(gateway.calls) != 3 {
		t.Errorf("gateway calls = %d, want 3", len(gateway.calls))
	}
	if got := fs.lastStatus(); got != store.VideoFailed {
		t.Errorf("final video status = %s, want failed", got)
	}
	if fs.media[2].VideoStatus != store.MediaFailed || fs.media[2].ErrorMessage == "" {
		t.Errorf("failed scene row = %+v, want failed with message", fs.media[2])
	}
	if fs.media[1].VideoStatus != store.MediaCompleted || fs.media[3].VideoStatus != store.MediaCompleted {
		t.Error("sibling scenes should still complete")
	}
	for _, stage := range fs.stages {
		if stage == store.StageMusic {
			t.Error("item advanced to music stage with a failed scene")
		}
	}
}

func TestRunSkipsCompletedScenes(t *testing.T) {
	fs := newFakeStore(&store.ContentItem{ID: "item-1"}, testScenes())
	fs.media[1] = &store.SceneMedia{ID: 10, SceneID: 1, VideoStatus: store.MediaCompleted, VideoURL: "https://cdn/done.png"}
	fs.media[2] = &store.SceneMedia{ID: 11, SceneID: 2, VideoStatus: store.MediaFailed, ErrorMessage: "old failure"}
	fs.nextMediaID = 11

	gateway := &fakeGateway{}
	worker := NewWorker(fs, gateway, Options{})
	if err := worker.Run(context.Background(), "item-1"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Only the failed and not-started scenes are regenerated.
	if len(gateway.calls) != 2 {
		t.Fatalf("gateway calls = %v, want only forest and river", gateway.calls)
	}
	if fs.media[1].VideoURL != "https://cdn/done.png" {
		t.Error("completed scene was regenerated")
	}
	if got := fs.lastStatus(); got != store.VideoCompleted {
		t.Errorf("final video status = %s, want completed", got)
	}
}

func TestRunLeavesFinishedItemUntouched(t *testing.T) {
	fs := newFakeStore(&store.ContentItem{
		ID:              "item-1",
		VideoStatus:     store.VideoCompleted,
		GenerationStage: store.StagePost,
	}, testScenes())
	fs.media[1] = &store.SceneMedia{ID: 10, SceneID: 1, VideoStatus: store.MediaCompleted}
	fs.media[2] = &store.SceneMedia{ID: 11, SceneID: 2, VideoStatus: store.MediaCompleted}
	fs.media[3] = &store.SceneMedia{ID: 12, SceneID: 3, VideoStatus: store.MediaCompleted}
	fs.nextMediaID = 12

	gateway := &fakeGateway{}
	worker := NewWorker(fs, gateway, Options{})
	if err := worker.Run(context.Background(), "item-1"); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// An item that already moved past video creation keeps its stage and
	// statuses; nothing is regenerated.
	if len(gateway.calls) != 0 {
		t.Errorf("gateway calls = %v, want none", gateway.calls)
	}
	if len(fs.stages) != 0 {
		t.Errorf("stage writes = %v, want none", fs.stages)
	}
	if len(fs.statuses) != 0 {
		t.Errorf("video status writes = %v, want none", fs.statuses)
	}
}

func TestRunNoScenes(t *testing.T) {
	fs := newFakeStore(&store.ContentItem{ID: "item-1"}, nil)
	worker := NewWorker(fs, &fakeGateway{}, Options{})
	if err := worker.Run(context.Background(), "item-1"); err == nil {
		t.Error("Run() = nil, want error for item without scenes")
	}
}

func TestRunUnknownItem(t *testing.T) {
	fs := newFakeStore(nil, nil)
	worker := NewWorker(fs, &fakeGateway{}, Options{})
	if err := worker.Run(context.Background(), "missing"); err == nil {
		t.Error("Run() = nil, want error")
	}
}
