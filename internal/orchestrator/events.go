// Package orchestrator implements spec.md 5's compile lifecycle: a
// single-threaded, cooperative, run-to-completion compile loop wired
// as an akita sim.TickingComponent, the same shape the teacher gives
// its own single-threaded components (api/driver.go's driverImpl,
// core/builder.go's Core). Tick drains one queued GraphCommitted per
// invocation and runs Normalizer -> Inference -> IR -> Binder ->
// Scheduler to completion before returning, dispatching the five
// compile-lifecycle events (spec.md 6) to internal/diag.Hub along the
// way.
package orchestrator

import (
	"github.com/patchc/compiler/internal/diag"
	"github.com/patchc/compiler/internal/graph"
)

// Trigger names what caused a GraphCommitted (spec.md 6's `trigger`
// field on CompileBegin).
type Trigger string

const (
	TriggerEdit  Trigger = "edit"
	TriggerLoad  Trigger = "load"
	TriggerUndo  Trigger = "undo"
	TriggerPatch Trigger = "patch"
)

// SwapMode distinguishes a first compile's swap (hard: no prior program
// to migrate state from) from a recompile's swap (soft: continuity
// migrates state forward).
type SwapMode string

const (
	SwapHard SwapMode = "hard"
	SwapSoft SwapMode = "soft"
)

// RevisionState is one patch revision's position in spec.md 4.x's
// compile lifecycle state machine:
// Idle -> Pending(CompileBegin) -> Success(CompileEnd success) ->
// Active(ProgramSwapped) -> Idle(next GraphCommitted); or
// Pending -> Failed(CompileEnd failure), leaving the previous Active
// program in place.
type RevisionState string

const (
	StateIdle    RevisionState = "idle"
	StatePending RevisionState = "pending"
	StateSuccess RevisionState = "success"
	StateActive  RevisionState = "active"
	StateFailed  RevisionState = "failed"
)

// GraphCommittedEvent is spec.md 6's GraphCommitted: the editor/
// orchestrator boundary's notification that a new patch revision is
// ready to compile.
type GraphCommittedEvent struct {
	PatchID          string
	PatchRevision    int
	Reason           string
	DiffSummary      string
	AffectedBlockIDs []graph.BlockID
	Trigger          Trigger
	Patch            graph.Patch
}

// CompileBeginEvent is spec.md 6's CompileBegin.
type CompileBeginEvent struct {
	CompileID     string
	PatchID       string
	PatchRevision int
	Trigger       Trigger
}

// CompileEndEvent is spec.md 6's CompileEnd.
type CompileEndEvent struct {
	CompileID     string
	PatchID       string
	PatchRevision int
	Status        diag.CompileStatus
	DurationMs    float64
	Diagnostics   []diag.Diagnostic
}

// ProgramSwappedEvent is spec.md 6's ProgramSwapped.
type ProgramSwappedEvent struct {
	PatchID        string
	PatchRevision  int
	CompileID      string
	SwapMode       SwapMode
	InstanceCounts map[string]int
}

// DiagnosticsDelta is RuntimeHealthSnapshot's optional diagnosticsDelta:
// ids to add/refresh and ids whose condition has since resolved.
type DiagnosticsDelta struct {
	Raised   []diag.Diagnostic
	Resolved []string
}

// RuntimeHealthSnapshotEvent is spec.md 6's RuntimeHealthSnapshot, the
// only event this package's caller (the runtime executor, out of
// scope per spec.md 1) emits rather than the orchestrator itself.
type RuntimeHealthSnapshotEvent struct {
	PatchID             string
	ActivePatchRevision int
	TMs                 float64
	DiagnosticsDelta    *DiagnosticsDelta
}
