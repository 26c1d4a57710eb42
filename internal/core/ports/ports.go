package ports

import (
	"context"
	"time"

	"repograph/internal/data/history"
	"repograph/internal/engine/graph"
)

// SourceFetcher supplies a repository listing and file contents.
// ListFiles failing aborts an analysis; GetContent failing only drops that
// file's imports.
type SourceFetcher interface {
	ListFiles(ctx context.Context, owner, repo string) ([]graph.FileEntry, error)
	GetContent(ctx context.Context, owner, repo, path string) (string, error)
	ListLanguages(ctx context.Context, owner, repo string) (map[string]int64, error)
}

// NamedSource is implemented by fetchers that label their metrics.
type NamedSource interface {
	Name() string
}

// HistoryStore abstracts snapshot persistence for trend listings.
type HistoryStore interface {
	SaveSnapshot(ctx context.Context, snapshot history.Snapshot) error
	LoadSnapshots(ctx context.Context, repo string, since time.Time) ([]history.Snapshot, error)
}
