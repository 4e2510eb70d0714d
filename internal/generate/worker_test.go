package generate

import (
	"context"
	"fmt"
	"testing"

	"contentflow/internal/script"
	"contentflow/internal/store"
)

type fakeStore struct {
	entries    []store.GenerationQueueEntry
	channels   map[string]*store.Channel
	usedTopics map[string][]string

	processing []string
	completed  []string
	failed     map[string]string
	items      []*store.ContentItem
	scenes     [][]store.Scene
	createErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		channels:   map[string]*store.Channel{},
		usedTopics: map[string][]string{},
		failed:     map[string]string{},
	}
}

func (f *fakeStore) PendingGeneration(ctx context.Context, limit int) ([]store.GenerationQueueEntry, error) {
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeStore) MarkGenerationProcessing(ctx context.Context, id string) error {
	f.processing = append(f.processing, id)
	return nil
}

func (f *fakeStore) MarkGenerationCompleted(ctx context.Context, id string) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeStore) MarkGenerationFailed(ctx context.Context, id, message string) error {
	f.failed[id] = message
	return nil
}

func (f *fakeStore) GetChannel(ctx context.Context, id string) (*store.Channel, error) {
	channel, ok := f.channels[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return channel, nil
}

func (f *fakeStore) UsedTopicKeywords(ctx context.Context, channelID string) ([]string, error) {
	return f.usedTopics[channelID], nil
}

func (f *fakeStore) CreateContentItem(ctx context.Context, item *store.ContentItem, scenes []store.Scene) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.items = append(f.items, item)
	f.scenes = append(f.scenes, scenes)
	return nil
}

type fakeGateway struct {
	contents []*script.Content
	errs     []error
	calls    int
	requests []script.Request
}

func (f *fakeGateway) Generate(ctx context.Context, req script.Request) (*script.Content, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.contents) {
		return f.contents[i], nil
	}
	return testContent("Fallback Title", nil), nil
}

func testContent(title string, keywords []string) *script.Content {
	return &script.Content{
		Title:           title,
		Script:          "Narration.",
		DurationSeconds: 30,
		TopicKeywords:   keywords,
		Scenes: []script.SceneSpec{
			{SceneNumber: 1, StartSeconds: 0, EndSeconds: 30, VisualDescription: "v", NarrationText: "Narration."},
		},
	}
}

func TestRunCreatesItems(t *testing.T) {
	fs := newFakeStore()
	fs.entries = []store.GenerationQueueEntry{{ID: "e1", ChannelID: "ch1", ItemsToGenerate: 2}}
	fs.channels["ch1"] = &store.Channel{ID: "ch1", Name: "Facts", Schedule: store.ScheduleDaily}

	gateway := &fakeGateway{contents: []*script.Content{
		testContent("First", []string{"rome"}),
		testContent("Second", []string{"egypt"}),
	}}

	worker := NewWorker(fs, gateway, 5)
	created, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(created) != 2 {
		t.Fatalf("created %d items, want 2", len(created))
	}
	if len(fs.completed) != 1 || fs.completed[0] != "e1" {
		t.Errorf("completed = %v, want [e1]", fs.completed)
	}
	if len(fs.failed) != 0 {
		t.Errorf("failed = %v, want none", fs.failed)
	}

	item := fs.items[0]
	if item.ScriptStatus != store.StageCompleted {
		t.Errorf("script status = %s, want completed", item.ScriptStatus)
	}
	if item.GenerationStage != store.StageVideo {
		t.Errorf("stage = %s, want %s", item.GenerationStage, store.StageVideo)
	}
	if item.ID == "" {
		t.Error("item id not assigned")
	}
}

func TestRunAccumulatesUsedTopics(t *testing.T) {
	fs := newFakeStore()
	fs.entries = []store.GenerationQueueEntry{{ID: "e1", ChannelID: "ch1", ItemsToGenerate: 2}}
	fs.channels["ch1"] = &store.Channel{ID: "ch1", Schedule: store.ScheduleWeekly}
	fs.usedTopics["ch1"] = []string{"pompeii"}

	gateway := &fakeGateway{contents: []*script.Content{
		testContent("First", []string{"rome"}),
		testContent("Second", nil),
	}}

	worker := NewWorker(fs, gateway, 5)
	if _, err := worker.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	second := gateway.requests[1]
	want := map[string]bool{"pompeii": true, "rome": true}
	if len(second.UsedTopics) != 2 {
		t.Fatalf("second request used topics = %v, want pompeii and rome", second.UsedTopics)
	}
	for _, topic := range second.UsedTopics {
		if !want[topic] {
			t.Errorf("unexpected used topic %q", topic)
		}
	}
}

func TestRunPartialFailureKeepsCreatedItems(t *testing.T) {
	fs := newFakeStore()
	fs.entries = []store.GenerationQueueEntry{{ID: "e1", ChannelID: "ch1", ItemsToGenerate: 3}}
	fs.channels["ch1"] = &store.Channel{ID: "ch1", Schedule: store.ScheduleDaily}

	gateway := &fakeGateway{
		contents: []*script.Content{testContent("First", nil), nil},
		errs:     []error{nil, fmt.Errorf("all providers failed")},
	}

	worker := NewWorker(fs, gateway, 5)
	created, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(created) != 1 {
		t.Errorf("created %d items, want the 1 written before the failure", len(created))
	}
	if _, ok := fs.failed["e1"]; !ok {
		t.Error("entry not marked failed")
	}
	if len(fs.completed) != 0 {
		t.Errorf("completed = %v, want none", fs.completed)
	}
}

func TestRunMissingChannelFailsEntry(t *testing.T) {
	fs := newFakeStore()
	fs.entries = []store.GenerationQueueEntry{{ID: "e1", ChannelID: "gone", ItemsToGenerate: 1}}

	worker := NewWorker(fs, &fakeGateway{}, 5)
	created, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(created) != 0 {
		t.Errorf("created = %v, want none", created)
	}
	if _, ok := fs.failed["e1"]; !ok {
		t.Error("entry not marked failed")
	}
}

func TestRunEmptyQueue(t *testing.T) {
	worker := NewWorker(newFakeStore(), &fakeGateway{}, 5)
	created, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if created != nil {
		t.Errorf("created = %v, want nil", created)
	}
}
