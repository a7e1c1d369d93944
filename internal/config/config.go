// Package config assembles the collaborators internal/orchestrator
// needs before it can run, with the same fluent Builder idiom the
// teacher uses to assemble a simulated device: core/builder.go's
// Builder (WithEngine/WithFreq/Build) and config/config.go's
// DeviceBuilder (WithEngine/WithFreq/WithMonitor/Build), adapted from
// "build a CGRA mesh" to "build a compile orchestrator".
package config

import (
	"log/slog"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/patchc/compiler/internal/logging"
	"github.com/patchc/compiler/internal/registry"
)

// CompilerConfig is everything internal/orchestrator.New needs:
// the akita engine/frequency driving its TickingComponent, the
// registry the compile pipeline reads from, an optional monitor for
// compile counters, and the logger compile tracing writes through.
type CompilerConfig struct {
	Engine   sim.Engine
	Freq     sim.Freq
	Registry *registry.Registry
	Monitor  *monitoring.Monitor
	Logger   *slog.Logger
}

// Builder builds a CompilerConfig field by field, mirroring the
// teacher's value-receiver fluent builders: every With* method returns
// a modified copy, so a partially configured Builder can be branched
// and reused safely.
type Builder struct {
	cfg CompilerConfig
}

// NewBuilder returns a Builder defaulted to 1GHz, the same default the
// teacher's cores and connections assume absent an explicit WithFreq.
func NewBuilder() Builder {
	return Builder{cfg: CompilerConfig{Freq: 1 * sim.GHz}}
}

// WithEngine sets the akita engine the orchestrator's TickingComponent
// runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.cfg.Engine = engine
	return b
}

// WithFreq sets the orchestrator's tick frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.cfg.Freq = freq
	return b
}

// WithRegistry sets the block registry compiles read from.
func (b Builder) WithRegistry(reg *registry.Registry) Builder {
	b.cfg.Registry = reg
	return b
}

// WithMonitor attaches an akita monitor the orchestrator registers
// itself with, mirroring config/config.go's d.monitor.RegisterComponent
// call for each tile core it builds.
func (b Builder) WithMonitor(monitor *monitoring.Monitor) Builder {
	b.cfg.Monitor = monitor
	return b
}

// WithLogger sets the logger compile tracing writes through. If
// WithLogger is never called, Build defaults to
// logging.New(logging.EnabledFromEnv()), so compile tracing then
// follows the PATCHC_LOG_COMPILE environment toggle.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.cfg.Logger = logger
	return b
}

// Build validates the required fields (engine and registry) and
// returns the assembled CompilerConfig, panicking on a missing
// required field the same way core/builder.go's WithDirections panics
// on an invalid direction count: these are programmer errors caught at
// wiring time, not data errors surfaced to a patch author.
func (b Builder) Build() *CompilerConfig {
	if b.cfg.Engine == nil {
		panic("config: Engine is required")
	}
	if b.cfg.Registry == nil {
		panic("config: Registry is required")
	}
	if b.cfg.Logger == nil {
		b.cfg.Logger = logging.New(logging.EnabledFromEnv())
	}
	cfg := b.cfg
	return &cfg
}
