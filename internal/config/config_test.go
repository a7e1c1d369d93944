package config_test

import (
	"testing"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/patchc/compiler/internal/config"
	"github.com/patchc/compiler/internal/registry"
)

func TestBuildRequiresEngine(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Build to panic without an Engine")
		}
	}()
	config.NewBuilder().WithRegistry(registry.New()).Build()
}

func TestBuildRequiresRegistry(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Build to panic without a Registry")
		}
	}()
	config.NewBuilder().WithEngine(sim.NewSerialEngine()).Build()
}

func TestBuildDefaultsFreqAndLogger(t *testing.T) {
	reg := registry.New()
	cfg := config.NewBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithRegistry(reg).
		Build()

	if cfg.Freq != 1*sim.GHz {
		t.Fatalf("expected default freq of 1GHz, got %v", cfg.Freq)
	}
	if cfg.Logger == nil {
		t.Fatal("expected Build to default a logger")
	}
	if cfg.Registry != reg {
		t.Fatal("expected the configured registry to survive Build")
	}
}

func TestWithFreqOverridesDefault(t *testing.T) {
	cfg := config.NewBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithRegistry(registry.New()).
		WithFreq(2 * sim.GHz).
		Build()

	if cfg.Freq != 2*sim.GHz {
		t.Fatalf("expected overridden freq of 2GHz, got %v", cfg.Freq)
	}
}
