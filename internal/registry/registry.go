// Package registry builds the hosted providers configured for a run.
package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/drewdunne/changedfiles/internal/config"
	"github.com/drewdunne/changedfiles/internal/provider"
	"github.com/drewdunne/changedfiles/internal/provider/github"
	"github.com/drewdunne/changedfiles/internal/provider/gitlab"
)

// Registry manages provider instances.
type Registry struct {
	providers   map[string]provider.Provider
	defaultName string
}

// New creates a new provider registry from config. A provider is registered
// when it has a token.
func New(cfg *config.Config) (*Registry, error) {
	r := &Registry{
		providers:   make(map[string]provider.Provider),
		defaultName: cfg.Providers.Default,
	}

	if gh := cfg.Providers.GitHub; gh.Token != "" {
		var opts []github.Option
		if gh.APIURL != "" {
			opts = append(opts, github.WithBaseURL(gh.APIURL))
		}
		p, err := github.New(gh.Token, opts...)
		if err != nil {
			return nil, err
		}
		r.providers["github"] = p
	}

	if gl := cfg.Providers.GitLab; gl.Token != "" {
		var opts []gitlab.Option
		if gl.BaseURL != "" {
			opts = append(opts, gitlab.WithBaseURL(gl.BaseURL))
		}
		p, err := gitlab.New(gl.Token, opts...)
		if err != nil {
			return nil, err
		}
		r.providers["gitlab"] = p
	}

	return r, nil
}

// Get returns the provider for the given name, or nil if not configured.
func (r *Registry) Get(name string) provider.Provider {
	return r.providers[name]
}

// Default returns the provider named in the config.
func (r *Registry) Default() (provider.Provider, error) {
	if p := r.Get(r.defaultName); p != nil {
		return p, nil
	}
	configured := r.List()
	if len(configured) == 0 {
		return nil, fmt.Errorf("provider %q is not configured: a token is required", r.defaultName)
	}
	return nil, fmt.Errorf("provider %q is not configured (configured: %s)", r.defaultName, strings.Join(configured, ", "))
}

// List returns all configured provider names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
