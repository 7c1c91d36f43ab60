package context

import (
	stdcontext "context"
	"errors"
	"fmt"
	"sync"
)

// ErrMerchantNotFound is returned for a merchant id with no configuration.
var ErrMerchantNotFound = errors.New("merchant config not found")

// MerchantConfigRepository defines an interface for fetching merchant configurations.
type MerchantConfigRepository interface {
	Get(merchantID string) (MerchantConfig, error)
}

// InMemoryMerchantConfigRepository keeps merchant configurations loaded at startup.
type InMemoryMerchantConfigRepository struct {
	mu      sync.RWMutex
	configs map[string]MerchantConfig
}

// NewInMemoryMerchantConfigRepository creates a new in-memory repository.
func NewInMemoryMerchantConfigRepository() *InMemoryMerchantConfigRepository {
	return &InMemoryMerchantConfigRepository{
		configs: make(map[string]MerchantConfig),
	}
}

// AddConfig adds a merchant configuration to the repository.
func (r *InMemoryMerchantConfigRepository) AddConfig(config MerchantConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[config.ID] = config
}

// Get fetches a merchant configuration by ID.
func (r *InMemoryMerchantConfigRepository) Get(merchantID string) (MerchantConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.configs[merchantID]
	if !ok {
		return MerchantConfig{}, fmt.Errorf("%w for ID: %s", ErrMerchantNotFound, merchantID)
	}
	return config, nil
}

// ContextBuilder is responsible for creating TraceContext and DomainContext.
type ContextBuilder struct {
	merchantRepo MerchantConfigRepository
}

// NewContextBuilder creates a new ContextBuilder.
func NewContextBuilder(repo MerchantConfigRepository) *ContextBuilder {
	return &ContextBuilder{
		merchantRepo: repo,
	}
}

// Domain resolves the merchant's configuration and builds its DomainContext.
func (cb *ContextBuilder) Domain(merchantID string) (DomainContext, error) {
	merchantCfg, err := cb.merchantRepo.Get(merchantID)
	if err != nil {
		return DomainContext{}, fmt.Errorf("failed to get merchant config: %w", err)
	}

	domainCtx, err := BuildDomainContext(merchantID, merchantCfg)
	if err != nil {
		return DomainContext{}, fmt.Errorf("failed to build domain context: %w", err)
	}
	return domainCtx, nil
}

// BuildContexts creates TraceContext and DomainContext for a caller request.
func (cb *ContextBuilder) BuildContexts(ctx stdcontext.Context, merchantID string) (TraceContext, DomainContext, error) {
	traceCtx := NewTraceContext(ctx)
	domainCtx, err := cb.Domain(merchantID)
	if err != nil {
		return traceCtx, DomainContext{}, err
	}
	return traceCtx, domainCtx, nil
}
