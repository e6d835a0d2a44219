package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/moviemetric/backend/internal/pkg/httpx"
	"github.com/moviemetric/backend/internal/platform/logger"
)

// MovieSummary is a single entry from a TMDB list endpoint. List responses
// carry genre ids only; names come from the details endpoint or the cached
// genre table.
type MovieSummary struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	GenreIDs     []int    `json:"genre_ids"`
	VoteAverage  *float64 `json:"vote_average"`
	VoteCount    int64    `json:"vote_count"`
	Popularity   *float64 `json:"popularity"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
}

// MovieDetails is the full record from /movie/{id}.
type MovieDetails struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	Genres       []Genre  `json:"genres"`
	VoteAverage  *float64 `json:"vote_average"`
	VoteCount    int64    `json:"vote_count"`
	Popularity   *float64 `json:"popularity"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	Runtime      *int     `json:"runtime"`
	Budget       *int64   `json:"budget"`
	Revenue      *int64   `json:"revenue"`
	Tagline      string   `json:"tagline"`
	Status       string   `json:"status"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Page is one page of a paginated list response.
type Page struct {
	Page         int            `json:"page"`
	Results      []MovieSummary `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Client is the TMDB API client used by the ingestion jobs.
type Client interface {
	ListMovies(ctx context.Context, category string, page int) (*Page, error)
	Trending(ctx context.Context, window string, page int) (*Page, error)
	Discover(ctx context.Context, genreID int, page int) (*Page, error)
	MovieDetails(ctx context.Context, id int) (*MovieDetails, error)
	Genres(ctx context.Context) ([]Genre, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("TMDB_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing TMDB_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("TMDB_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 30
	if v := os.Getenv("TMDB_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 3
	if v := os.Getenv("TMDB_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	// TMDB allows roughly 40 requests per 10 seconds per key.
	rps := 4.0
	if v := os.Getenv("TMDB_RATE_LIMIT_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && parsed > 0 {
			rps = parsed
		}
	}

	return &client{
		log:        log.With("client", "TMDBClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), 8),
		maxRetries: maxRetries,
	}, nil
}

type tmdbHTTPError struct {
	StatusCode int
	Body       string
}

func (e *tmdbHTTPError) Error() string {
	return fmt.Sprintf("tmdb http %d: %s", e.StatusCode, e.Body)
}

func (e *tmdbHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) getOnce(ctx context.Context, path string, query url.Values) (*http.Response, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	q := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &tmdbHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) get(ctx context.Context, path string, query url.Values, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.getOnce(ctx, path, query)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("tmdb decode error: %w", uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("TMDB request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

var listPaths = map[string]string{
	"popular":     "/movie/popular",
	"top_rated":   "/movie/top_rated",
	"now_playing": "/movie/now_playing",
	"upcoming":    "/movie/upcoming",
}

func (c *client) ListMovies(ctx context.Context, category string, page int) (*Page, error) {
	path, ok := listPaths[strings.TrimSpace(category)]
	if !ok {
		return nil, fmt.Errorf("unknown movie list category %q", category)
	}
	if page < 1 {
		page = 1
	}

	var out Page
	q := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Trending(ctx context.Context, window string, page int) (*Page, error) {
	window = strings.TrimSpace(window)
	if window != "day" && window != "week" {
		window = "week"
	}
	if page < 1 {
		page = 1
	}

	var out Page
	q := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.get(ctx, "/trending/movie/"+window, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Discover(ctx context.Context, genreID int, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	var out Page
	q := url.Values{
		"with_genres": {strconv.Itoa(genreID)},
		"sort_by":     {"popularity.desc"},
		"page":        {strconv.Itoa(page)},
	}
	if err := c.get(ctx, "/discover/movie", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) MovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	var out MovieDetails
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Genres(ctx context.Context) ([]Genre, error) {
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/movie/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}
