package rag

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const KnowledgeFile = "knowledge.txt"

var ErrInvalidTenant = errors.New("invalid tenant id")

// Registry lazily builds one Pipeline per tenant from
// <dataDir>/<tenant>/knowledge.txt and keeps it for later queries.
type Registry struct {
	dataDir string
	topK    int
	logger  zerolog.Logger

	mu        sync.Mutex
	pipelines map[string]*Pipeline

	// loads collapses concurrent first loads of one tenant. r.mu is never
	// held during file IO.
	loads   singleflight.Group
	newPipe func(tenantID, path string, topK int) (*Pipeline, error)
}

type RegistryOption func(*Registry)

func WithTopK(k int) RegistryOption {
	return func(r *Registry) { r.topK = k }
}

func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

func NewRegistry(dataDir string, opts ...RegistryOption) *Registry {
	r := &Registry{
		dataDir:   dataDir,
		topK:      DefaultTopK,
		logger:    zerolog.Nop(),
		pipelines: make(map[string]*Pipeline),
		newPipe:   NewPipeline,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pipeline returns the tenant's pipeline, building it on first use. A
// failed build is not cached so a later call retries.
func (r *Registry) Pipeline(tenantID string) (*Pipeline, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	if p, ok := r.cached(tenantID); ok {
		return p, nil
	}

	v, err, _ := r.loads.Do(tenantID, func() (interface{}, error) {
		if p, ok := r.cached(tenantID); ok {
			return p, nil
		}
		p, err := r.newPipe(tenantID, r.knowledgePath(tenantID), r.topK)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.pipelines[tenantID] = p
		r.mu.Unlock()
		r.logger.Info().Str("tenant_id", tenantID).Int("documents", p.Documents()).Msg("retrieval pipeline loaded")
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Pipeline), nil
}

func (r *Registry) cached(tenantID string) (*Pipeline, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelines[tenantID]
	return p, ok
}

func (r *Registry) GetContext(ctx context.Context, tenantID, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := r.Pipeline(tenantID)
	if err != nil {
		return "", err
	}
	return p.GetContext(query), nil
}

// Reindex rebuilds the tenant's index from disk, creating the pipeline if
// it was never loaded.
func (r *Registry) Reindex(ctx context.Context, tenantID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validateTenant(tenantID); err != nil {
		return 0, err
	}

	p, loaded := r.cached(tenantID)
	if !loaded {
		p, err := r.Pipeline(tenantID)
		if err != nil {
			return 0, err
		}
		return p.Documents(), nil
	}
	if err := p.Reindex(); err != nil {
		return 0, err
	}
	r.logger.Info().Str("tenant_id", tenantID).Int("documents", p.Documents()).Msg("retrieval pipeline reindexed")
	return p.Documents(), nil
}

// Tenants lists tenants with a loaded pipeline.
func (r *Registry) Tenants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.pipelines))
	for t := range r.pipelines {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) knowledgePath(tenantID string) string {
	return filepath.Join(r.dataDir, tenantID, KnowledgeFile)
}

func validateTenant(tenantID string) error {
	if tenantID == "" || tenantID == "." || tenantID == ".." ||
		strings.ContainsAny(tenantID, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidTenant, tenantID)
	}
	return nil
}
