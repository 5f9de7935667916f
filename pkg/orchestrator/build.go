package orchestrator

import (
	"github.com/charmbracelet/log"

	"github.com/victorsole/brubru/pkg/config"
	"github.com/victorsole/brubru/pkg/integrations"
	"github.com/victorsole/brubru/pkg/sources"
)

// NewFromConfig validates cfg and registers every enabled built-in source.
// opts are applied to every source after the logger option.
func NewFromConfig(cfg *config.Config, logger *log.Logger, opts ...sources.Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := New(cfg.MaxConcurrent, WithLogger(logger))

	for _, def := range sources.Catalog() {
		if !cfg.Enabled(def.Key) {
			o.logger.Debug("source disabled", "source", def.Key)
			continue
		}
		srcOpts := []sources.Option{sources.WithClientOptions(integrations.WithLogger(logger))}
		adapter := sources.New(def, cfg.ClientConfig(def), append(srcOpts, opts...)...)
		if err := o.Register(adapter); err != nil {
			return nil, err
		}
	}
	return o, nil
}
