package alerting

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRuleRepository is an in-memory implementation of RuleRepository.
type InMemoryRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*ThresholdRule
}

// NewInMemoryRuleRepository creates a new in-memory rule repository.
func NewInMemoryRuleRepository() *InMemoryRuleRepository {
	return &InMemoryRuleRepository{rules: make(map[string]*ThresholdRule)}
}

// Get retrieves a rule by ID.
func (r *InMemoryRuleRepository) Get(_ context.Context, id string) (*ThresholdRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}
	cpy := *rule
	return &cpy, nil
}

// List retrieves all rules.
func (r *InMemoryRuleRepository) List(_ context.Context) ([]*ThresholdRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ThresholdRule, 0, len(r.rules))
	for _, rule := range r.rules {
		cpy := *rule
		out = append(out, &cpy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListActiveFor retrieves active rules matching a building and metric.
func (r *InMemoryRuleRepository) ListActiveFor(_ context.Context, buildingID, metric string) ([]*ThresholdRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ThresholdRule
	for _, rule := range r.rules {
		if rule.Matches(buildingID, metric) {
			cpy := *rule
			out = append(out, &cpy)
		}
	}
	return out, nil
}

// Create persists a new rule.
func (r *InMemoryRuleRepository) Create(_ context.Context, rule *ThresholdRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *rule
	r.rules[rule.ID] = &cpy
	return nil
}

// Update replaces an existing rule.
func (r *InMemoryRuleRepository) Update(_ context.Context, rule *ThresholdRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[rule.ID]; !ok {
		return ErrRuleNotFound
	}
	cpy := *rule
	r.rules[rule.ID] = &cpy
	return nil
}

// Delete removes a rule.
func (r *InMemoryRuleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[id]; !ok {
		return ErrRuleNotFound
	}
	delete(r.rules, id)
	return nil
}

// InMemoryAlertRepository is an in-memory implementation of AlertRepository.
type InMemoryAlertRepository struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
	order  []string // insertion order, oldest first
}

// NewInMemoryAlertRepository creates a new in-memory alert repository.
func NewInMemoryAlertRepository() *InMemoryAlertRepository {
	return &InMemoryAlertRepository{alerts: make(map[string]*Alert)}
}

// Get retrieves an alert by ID.
func (r *InMemoryAlertRepository) Get(_ context.Context, id string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	cpy := *a
	return &cpy, nil
}

// List retrieves alerts matching the filter, newest first.
func (r *InMemoryAlertRepository) List(_ context.Context, opts AlertListOptions) ([]*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Alert
	for i := len(r.order) - 1; i >= 0; i-- {
		a := r.alerts[r.order[i]]
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		if opts.Severity != "" && a.Severity != opts.Severity {
			continue
		}
		if opts.BuildingID != "" && a.BuildingID != opts.BuildingID {
			continue
		}
		if opts.Source != "" && a.Source != opts.Source {
			continue
		}
		cpy := *a
		out = append(out, &cpy)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Create persists a new alert.
func (r *InMemoryAlertRepository) Create(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *a
	r.alerts[a.ID] = &cpy
	r.order = append(r.order, a.ID)
	return nil
}

// Update replaces an existing alert.
func (r *InMemoryAlertRepository) Update(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[a.ID]; !ok {
		return ErrAlertNotFound
	}
	cpy := *a
	r.alerts[a.ID] = &cpy
	return nil
}

var (
	_ RuleRepository  = (*InMemoryRuleRepository)(nil)
	_ AlertRepository = (*InMemoryAlertRepository)(nil)
)
