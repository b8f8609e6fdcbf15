package server

import (
	"sync"

	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

// runRegistry holds the latest result of every CV run started by this
// process. A suspended run is checked out while it is being resumed so two
// answer submissions cannot resume it twice.
type runRegistry struct {
	mu       sync.Mutex
	runs     map[string]*pipeline.CVResult
	resuming map[string]bool
}

func newRunRegistry() *runRegistry {
	return &runRegistry{
		runs:     make(map[string]*pipeline.CVResult),
		resuming: make(map[string]bool),
	}
}

func (r *runRegistry) put(res *pipeline.CVResult) {
	if res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[res.RunID] = res
	delete(r.resuming, res.RunID)
}

func (r *runRegistry) get(id string) (*pipeline.CVResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return res, nil
}

// checkout marks a suspended run as resuming and returns it.
func (r *runRegistry) checkout(id string) (*pipeline.CVResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	if res.Status != workflow.StatusSuspended || r.resuming[id] {
		return nil, ErrRunNotSuspended
	}
	r.resuming[id] = true
	return res, nil
}

// release returns a checked out run without changing it.
func (r *runRegistry) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resuming, id)
}

func (r *runRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}
