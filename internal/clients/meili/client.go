package meili

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"github.com/moviemetric/backend/internal/platform/logger"
)

const indexUID = "movies"

// Hit is one search result, decoded from the index document.
type Hit struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	PosterPath  string   `json:"poster_path"`
	ReleaseYear int      `json:"release_year"`
	Genres      []string `json:"genres"`
	Rating      *float64 `json:"rating"`
	VoteCount   int64    `json:"vote_count"`
	Popularity  *float64 `json:"popularity"`
}

type SearchResult struct {
	Hits               []Hit
	EstimatedTotalHits int64
	ProcessingTimeMs   int64
}

// Client wraps the Meilisearch movie index. EnsureIndex must run before the
// first AddDocuments.
type Client interface {
	EnsureIndex(ctx context.Context) error
	AddDocuments(ctx context.Context, docs any, count int) error
	Search(ctx context.Context, query string, limit int64) (*SearchResult, error)
	DeleteAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

type client struct {
	log   *logger.Logger
	sm    meilisearch.ServiceManager
	index meilisearch.IndexManager
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	host := strings.TrimSpace(os.Getenv("MEILI_HOST"))
	if host == "" {
		return nil, fmt.Errorf("missing MEILI_HOST")
	}

	opts := []meilisearch.Option{}
	if key := strings.TrimSpace(os.Getenv("MEILI_MASTER_KEY")); key != "" {
		opts = append(opts, meilisearch.WithAPIKey(key))
	}

	sm := meilisearch.New(host, opts...)
	if !sm.IsHealthy() {
		return nil, fmt.Errorf("meilisearch unhealthy at %s", host)
	}

	return &client{
		log:   log.With("client", "MeiliClient"),
		sm:    sm,
		index: sm.Index(indexUID),
	}, nil
}

func (c *client) EnsureIndex(ctx context.Context) error {
	task, err := c.sm.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
		Uid:        indexUID,
		PrimaryKey: "id",
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if _, err := c.sm.WaitForTaskWithContext(ctx, task.TaskUID, 50*time.Millisecond); err != nil {
		// Index creation is idempotent; an index_already_exists failure is fine.
		c.log.Debug("Index create task not successful (likely exists)", "error", err.Error())
	}

	settingsTask, err := c.index.UpdateSettingsWithContext(ctx, &meilisearch.Settings{
		SearchableAttributes: []string{"title", "overview", "genres"},
		FilterableAttributes: []string{"genres", "release_year"},
		SortableAttributes:   []string{"popularity", "rating", "release_year"},
	})
	if err != nil {
		return fmt.Errorf("update index settings: %w", err)
	}
	if _, err := c.sm.WaitForTaskWithContext(ctx, settingsTask.TaskUID, 50*time.Millisecond); err != nil {
		return fmt.Errorf("apply index settings: %w", err)
	}
	return nil
}

func (c *client) AddDocuments(ctx context.Context, docs any, count int) error {
	task, err := c.index.AddDocumentsWithContext(ctx, docs, nil)
	if err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	if _, err := c.sm.WaitForTaskWithContext(ctx, task.TaskUID, 100*time.Millisecond); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}
	c.log.Info("Indexed documents", "count", count)
	return nil
}

func (c *client) Search(ctx context.Context, query string, limit int64) (*SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	resp, err := c.index.SearchWithContext(ctx, query, &meilisearch.SearchRequest{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &SearchResult{
		EstimatedTotalHits: resp.EstimatedTotalHits,
		ProcessingTimeMs:   resp.ProcessingTimeMs,
		Hits:               make([]Hit, 0, len(resp.Hits)),
	}
	for _, raw := range resp.Hits {
		var hit Hit
		if err := raw.Decode(&hit); err != nil {
			c.log.Warn("Skipping undecodable search hit", "error", err.Error())
			continue
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func (c *client) DeleteAll(ctx context.Context) error {
	task, err := c.index.DeleteAllDocumentsWithContext(ctx)
	if err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	if _, err := c.sm.WaitForTaskWithContext(ctx, task.TaskUID, 100*time.Millisecond); err != nil {
		return fmt.Errorf("delete documents task: %w", err)
	}
	return nil
}

func (c *client) Ping(ctx context.Context) error {
	if _, err := c.sm.HealthWithContext(ctx); err != nil {
		return fmt.Errorf("meilisearch health: %w", err)
	}
	return nil
}
