// Copyright 2025 Author(s) of Checkmk MCP
// SPDX-License-Identifier: Apache-2.0

package params

import (
	"sort"
	"sync"
)

// Registry maps services to their best specialized handler. Resolution
// results are cached after the first lookup.
type Registry struct {
	mu            sync.RWMutex
	registrations []Registration
	resolved      map[string]*Registration
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		resolved: make(map[string]*Registration),
	}
}

// Register adds a handler registration. Registrations are data: patterns and
// priority, not code.
func (r *Registry) Register(reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations = append(r.registrations, reg)
	// Resolution order depends on the registration set.
	r.resolved = make(map[string]*Registration)
}

// List returns all registrations ordered by descending priority.
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, len(r.registrations))
	copy(out, r.registrations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Resolve returns the best handler for the given service and optional
// ruleset. Among all matching registrations the highest priority wins; on a
// priority tie a registration whose ruleset pattern matched beats one that
// matched only by service name. The second return is false when no handler
// matches.
func (r *Registry) Resolve(service, ruleset string) (*Registration, bool) {
	cacheKey := service + "\x00" + ruleset

	r.mu.RLock()
	if reg, ok := r.resolved[cacheKey]; ok {
		r.mu.RUnlock()
		return reg, reg != nil
	}
	r.mu.RUnlock()

	type match struct {
		reg            *Registration
		rulesetMatched bool
	}
	var matches []match

	r.mu.RLock()
	for i := range r.registrations {
		reg := &r.registrations[i]
		serviceMatched := service != "" && reg.MatchesService(service)
		rulesetMatched := ruleset != "" && reg.MatchesRuleset(ruleset)
		if serviceMatched || rulesetMatched {
			matches = append(matches, match{reg: reg, rulesetMatched: rulesetMatched})
		}
	}
	r.mu.RUnlock()

	var best *match
	for i := range matches {
		m := &matches[i]
		switch {
		case best == nil:
			best = m
		case m.reg.Priority > best.reg.Priority:
			best = m
		case m.reg.Priority == best.reg.Priority && m.rulesetMatched && !best.rulesetMatched:
			best = m
		}
	}

	r.mu.Lock()
	if best != nil {
		r.resolved[cacheKey] = best.reg
	} else {
		r.resolved[cacheKey] = nil
	}
	r.mu.Unlock()

	if best == nil {
		return nil, false
	}
	return best.reg, true
}
