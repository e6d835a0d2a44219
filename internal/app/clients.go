package app

import (
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/moviemetric/backend/internal/clients/meili"
	"github.com/moviemetric/backend/internal/clients/rediscache"
	"github.com/moviemetric/backend/internal/clients/tmdb"
	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/temporalx"
)

type Clients struct {
	TMDB     tmdb.Client
	Cache    rediscache.Cache
	Search   meili.Client
	Temporal temporalsdkclient.Client
}

// wireClients degrades per dependency: a missing upstream disables the
// features built on it instead of failing startup. Reads from Postgres
// stay up either way.
func wireClients(log *logger.Logger, metrics *observability.Metrics) Clients {
	log.Info("Wiring clients...")
	var c Clients

	if tc, err := tmdb.NewClient(log); err != nil {
		log.Warn("TMDB client unavailable, ingestion disabled", "error", err)
	} else {
		c.TMDB = tc
	}

	if cache, err := rediscache.New(log, metrics); err != nil {
		log.Warn("Redis unavailable, serving uncached", "error", err)
	} else {
		c.Cache = cache
	}

	if search, err := meili.NewClient(log); err != nil {
		log.Warn("Meilisearch unavailable, search disabled", "error", err)
	} else {
		c.Search = search
	}

	if tc, err := temporalx.NewClient(log); err != nil {
		log.Warn("Temporal unavailable, jobs run inline", "error", err)
	} else {
		c.Temporal = tc
	}

	return c
}
