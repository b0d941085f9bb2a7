package source

import (
	"fmt"
	"sort"

	"jobboard-api/internal/config"
	"jobboard-api/internal/ingest/extract"
	"jobboard-api/pkg/models"
)

// Runtime bundles everything needed to run one source: its adapter (which
// owns the rate-limiter state), its extractor, and its operational
// parameters.
type Runtime struct {
	Adapter   Adapter
	Extractor *extract.Extractor
	Config    models.SourceConfig
}

// Registry maps source identifiers to their runtimes. It is resolved once
// at startup; unknown identifiers are rejected with a typed error.
type Registry struct {
	sources map[string]*Runtime
}

// BuiltinConfigs returns the default operational parameters for every
// source the binary knows how to scrape. Rows in the scraping_sources table
// override these.
func BuiltinConfigs() []models.SourceConfig {
	return []models.SourceConfig{
		{
			Name:             SiteIndeed,
			DisplayName:      "Indeed",
			BaseURL:          "https://www.indeed.com",
			IsActive:         true,
			RateLimitSeconds: 2,
			MaxJobsPerScrape: 100,
		},
		{
			Name:             SiteRemoteOK,
			DisplayName:      "Remote OK",
			BaseURL:          "https://remoteok.com",
			IsActive:         true,
			RateLimitSeconds: 2,
			MaxJobsPerScrape: 50,
		},
	}
}

// NewRegistry builds the source registry. Stored configs override the
// builtin defaults per source name; stored rows for unknown names are
// ignored (the binary has no adapter for them).
func NewRegistry(cfg *config.Config, stored []models.SourceConfig) (*Registry, error) {
	merged := make(map[string]models.SourceConfig)
	for _, c := range BuiltinConfigs() {
		merged[c.Name] = c
	}
	for _, c := range stored {
		if _, known := merged[c.Name]; known {
			merged[c.Name] = c
		}
	}

	sources := make(map[string]*Runtime, len(merged))
	for name, src := range merged {
		rt, err := newRuntime(cfg, src)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", name, err)
		}
		sources[name] = rt
	}

	return &Registry{sources: sources}, nil
}

func newRuntime(cfg *config.Config, src models.SourceConfig) (*Runtime, error) {
	switch src.Name {
	case SiteIndeed:
		return &Runtime{
			Adapter:   NewIndeed(cfg, &src),
			Extractor: extract.New(IndeedRules(src.BaseURL)),
			Config:    src,
		}, nil
	case SiteRemoteOK:
		return &Runtime{
			Adapter:   NewRemoteOK(cfg, &src),
			Extractor: extract.New(RemoteOKRules(src.BaseURL)),
			Config:    src,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, src.Name)
	}
}

// Resolve returns the runtime for the given source identifier
func (r *Registry) Resolve(name string) (*Runtime, error) {
	rt, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return rt, nil
}

// Names returns the registered source identifiers, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configs returns the operational parameters of every registered source
func (r *Registry) Configs() []models.SourceConfig {
	configs := make([]models.SourceConfig, 0, len(r.sources))
	for _, name := range r.Names() {
		configs = append(configs, r.sources[name].Config)
	}
	return configs
}
