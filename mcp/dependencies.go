package mcp

import (
	"github.com/ludo-technologies/docsim/app"
	"github.com/ludo-technologies/docsim/internal/config"
	"github.com/ludo-technologies/docsim/internal/metrics"
	"github.com/ludo-technologies/docsim/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	config     *config.Config
	configPath string
	metrics    *metrics.Metrics
}

// NewDependencies constructs the dependency set. A nil cfg makes every call
// resolve its configuration from configPath or by discovery from the target.
func NewDependencies(cfg *config.Config, configPath string, m *metrics.Metrics) *Dependencies {
	return &Dependencies{
		config:     cfg,
		configPath: configPath,
		metrics:    m,
	}
}

// Config exposes the preloaded configuration, if any.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// Metrics returns the collectors shared by all tool calls (may be nil).
func (d *Dependencies) Metrics() *metrics.Metrics {
	return d.metrics
}

// ResolveConfig returns the configuration for a call targeting targetDir.
func (d *Dependencies) ResolveConfig(targetDir string) (*config.Config, error) {
	if d.config != nil {
		return d.config, nil
	}
	return config.Load(d.configPath, targetDir)
}

// BuildSimilarityUseCase assembles a fresh SimilarityUseCase. MCP owns stdout,
// so no progress bar is drawn.
func (d *Dependencies) BuildSimilarityUseCase() (*app.SimilarityUseCase, error) {
	progress := service.NoOpProgressManager{}

	return app.NewSimilarityUseCaseBuilder().
		WithCorpusReader(service.NewCorpusReader(progress, d.metrics)).
		WithService(service.NewIndexService(progress, d.metrics)).
		WithFormatter(service.NewSimilarityOutputFormatter()).
		Build()
}
