package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ArtifactStore persists finished video artifacts and resolves their
// download URLs later.
type ArtifactStore interface {
	// Save writes the artifact under the given object path and returns
	// its resolvable URL.
	Save(ctx context.Context, objectPath string, data []byte) (string, error)
	// Open reads back a previously saved artifact.
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
	// List returns the object paths stored under a prefix, sorted
	// lexicographically.
	List(ctx context.Context, prefix string) ([]string, error)
	// URL resolves a previously saved object path to a download URL.
	URL(objectPath string) string
}

// ArtifactPrefix is the object prefix holding all artifacts of one
// content item. Paths under it sort by render time because ArtifactPath
// embeds a unix timestamp.
func ArtifactPrefix(contentItemID string) string {
	return fmt.Sprintf("content/%s/", contentItemID)
}

// ArtifactPath builds the content-item-scoped object path for a new
// artifact. The timestamp suffix keeps re-renders from overwriting
// older artifacts.
func ArtifactPath(contentItemID string) string {
	return fmt.Sprintf("content/%s/video_%d.mp4", contentItemID, time.Now().Unix())
}
