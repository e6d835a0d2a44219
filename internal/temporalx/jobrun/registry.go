package jobrun

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/moviemetric/backend/internal/jobs/compute"
)

// Handler runs one job type to completion and reports its result.
type Handler func(ctx context.Context, req JobRequest) compute.Result

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(jobType string, h Handler) {
	jobType = strings.TrimSpace(jobType)
	if jobType == "" || h == nil {
		return
	}
	r.mu.Lock()
	r.handlers[jobType] = h
	r.mu.Unlock()
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[strings.TrimSpace(jobType)]
	return h, ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
