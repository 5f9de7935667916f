package orchestrator

import (
	"testing"

	"github.com/victorsole/brubru/pkg/config"
	"github.com/victorsole/brubru/pkg/sources"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxConcurrent = 2
	cfg.Sources = map[string]config.SourceConfig{
		sources.IATE: {Disabled: true},
	}

	o, err := NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig() error: %v", err)
	}
	if o.MaxConcurrent() != 2 {
		t.Errorf("MaxConcurrent() = %d, want 2", o.MaxConcurrent())
	}
	if got, want := len(o.Sources()), len(sources.Catalog())-1; got != want {
		t.Errorf("len(Sources()) = %d, want %d", got, want)
	}
	if _, ok := o.Adapter(sources.IATE); ok {
		t.Error("disabled source was registered")
	}
	a, ok := o.Adapter(sources.OEIL)
	if !ok {
		t.Fatal("oeil not registered")
	}
	if _, ok := a.(sources.ProcedureTracker); !ok {
		t.Error("oeil does not track procedures")
	}
}

func TestNewFromConfigInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.MaxConcurrent = -1
	if _, err := NewFromConfig(cfg, nil); err == nil {
		t.Error("NewFromConfig() accepted an invalid config")
	}
}
