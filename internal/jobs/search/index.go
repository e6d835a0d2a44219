package search

import (
	"context"
	"time"

	"github.com/moviemetric/backend/internal/clients/meili"
	"github.com/moviemetric/backend/internal/jobs/compute"
	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/repos"
	"github.com/moviemetric/backend/internal/types"
)

const TypeSearchIndex = "build_search_index"

const indexBatchSize = 500

// Document is the denormalized search record. Genres flatten to names so the
// index can filter and match on them without joins.
type Document struct {
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

func DocumentFromMovie(m *types.Movie) Document {
	doc := Document{
		ID:         m.ID,
		Title:      m.Title,
		Overview:   m.Overview,
		PosterPath: m.PosterPath,
		Rating:     m.Rating,
		VoteCount:  m.VoteCount,
		Popularity: m.Popularity,
		Genres:     make([]string, 0, len(m.Genres)),
	}
	if m.ReleaseDate != nil {
		doc.ReleaseYear = m.ReleaseDate.Year()
	}
	for _, g := range m.Genres {
		if g.Name == "" {
			continue
		}
		doc.Genres = append(doc.Genres, g.Name)
	}
	return doc
}

type IndexJob struct {
	log     *logger.Logger
	movies  repos.MovieRepo
	search  meili.Client
	metrics *observability.Metrics
}

func NewIndexJob(baseLog *logger.Logger, movies repos.MovieRepo, search meili.Client, metrics *observability.Metrics) *IndexJob {
	return &IndexJob{
		log:     baseLog.With("job", TypeSearchIndex),
		movies:  movies,
		search:  search,
		metrics: metrics,
	}
}

// Run rebuilds the whole search index from the movie catalog.
func (j *IndexJob) Run(ctx context.Context) compute.Result {
	if err := j.search.EnsureIndex(ctx); err != nil {
		return compute.Result{Status: compute.StatusError, Message: err.Error()}
	}

	movies, err := j.movies.ListAll(ctx, nil)
	if err != nil {
		return compute.Result{Status: compute.StatusError, Message: err.Error()}
	}

	docs := make([]Document, 0, len(movies))
	for _, m := range movies {
		docs = append(docs, DocumentFromMovie(m))
	}

	indexed := 0
	for start := 0; start < len(docs); start += indexBatchSize {
		if ctx.Err() != nil {
			return compute.Result{Status: compute.StatusError, Message: ctx.Err().Error()}
		}
		end := start + indexBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		if err := j.search.AddDocuments(ctx, batch, len(batch)); err != nil {
			return compute.Result{Status: compute.StatusError, Message: err.Error()}
		}
		indexed += len(batch)
	}

	j.metrics.AddDocumentsIndexed(indexed)
	j.log.Info("Search index rebuilt", "documents", indexed)
	return compute.Result{
		Status:          compute.StatusSuccess,
		MoviesProcessed: indexed,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}
