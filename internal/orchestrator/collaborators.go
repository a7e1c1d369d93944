package orchestrator

import "github.com/patchc/compiler/internal/schedule"

// ProgramConsumer is implemented by the runtime executor that swaps in
// a freshly compiled program (spec.md 1's "animation/runtime loop"
// external collaborator, explicitly out of scope here — this package
// only calls it through the interface). Swap is invoked once per
// successful compile, just before ProgramSwapped is recorded in the
// diagnostics hub.
type ProgramConsumer interface {
	Swap(program *schedule.CompiledProgram, mode SwapMode)
}

// HealthSource is implemented by the runtime executor's health
// reporting path; the orchestrator does not call it, it only accepts
// RuntimeHealthSnapshotEvent values a HealthSource pushes in (spec.md
// 6: RuntimeHealthSnapshot originates outside the compile pipeline).
// Declared here, alongside ProgramConsumer, as the narrow Go-native
// shape spec.md 6 asks external collaborators to take.
type HealthSource interface {
	Snapshot() RuntimeHealthSnapshotEvent
}
