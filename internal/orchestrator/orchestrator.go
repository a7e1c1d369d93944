package orchestrator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/patchc/compiler/internal/bind"
	"github.com/patchc/compiler/internal/continuity"
	"github.com/patchc/compiler/internal/diag"
	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/infer"
	"github.com/patchc/compiler/internal/ir"
	"github.com/patchc/compiler/internal/logging"
	"github.com/patchc/compiler/internal/registry"
	"github.com/patchc/compiler/internal/schedule"
)

// Orchestrator implements spec.md 5's "single-threaded cooperative, no
// preemption" compile loop as an akita sim.TickingComponent: Tick
// drains exactly one queued commit per invocation and runs it to
// completion, matching the teacher's driverImpl (api/driver.go), which
// queues feedInTask/collectTask work and drains one slice entry worth
// per Tick.
type Orchestrator struct {
	*sim.TickingComponent

	Registry *registry.Registry
	Hub      *diag.Hub
	Store    *continuity.Store
	Logger   *slog.Logger
	Consumer ProgramConsumer

	pending []pendingCommit

	nextCompileID int
	revisions     map[int]RevisionState

	lastProgram  *schedule.CompiledProgram
	lastState    continuity.ProgramState
	lastRevision int
	hasLast      bool
}

type pendingCommit struct {
	event GraphCommittedEvent
}

// New builds an Orchestrator wired to engine/freq (mirroring
// core/builder.go's sim.NewTickingComponent(name, engine, freq, c)
// call), reading blocks from reg and logging compile tracing through
// logger. If monitor is non-nil, the orchestrator registers itself
// with it, mirroring config/config.go's d.monitor.RegisterComponent
// call for each component it builds.
func New(name string, engine sim.Engine, freq sim.Freq, reg *registry.Registry, logger *slog.Logger, monitor *monitoring.Monitor) *Orchestrator {
	o := &Orchestrator{
		Registry:  reg,
		Hub:       diag.NewHub(),
		Store:     continuity.NewStore(),
		Logger:    logger,
		revisions: map[int]RevisionState{},
	}
	o.TickingComponent = sim.NewTickingComponent(name, engine, freq, o)
	if monitor != nil {
		monitor.RegisterComponent(o)
	}
	return o
}

// Commit queues a GraphCommittedEvent to be drained on a future Tick,
// the compile-loop analogue of driverImpl.FeedIn queuing a feedInTask.
func (o *Orchestrator) Commit(e GraphCommittedEvent) {
	o.pending = append(o.pending, pendingCommit{event: e})
}

// RevisionState reports the compile lifecycle state (spec.md 4.x) of a
// patch revision, StateIdle if the orchestrator has never seen it.
func (o *Orchestrator) RevisionState(revision int) RevisionState {
	if s, ok := o.revisions[revision]; ok {
		return s
	}
	return StateIdle
}

// LastProgram returns the most recently swapped-in CompiledProgram, and
// its revision number, or (nil, 0, false) before any compile succeeds.
// cmd/patchc and tests use this to inspect/hot-patch the active program
// without the orchestrator needing to expose its full internal state.
func (o *Orchestrator) LastProgram() (*schedule.CompiledProgram, int, bool) {
	if !o.hasLast {
		return nil, 0, false
	}
	return o.lastProgram, o.lastRevision, true
}

// Tick drains at most one queued commit and runs it to completion,
// matching spec.md 5's "runs to completion, no cancellation": there is
// no suspension point inside compile, so madeProgress is true iff a
// commit was drained this call.
func (o *Orchestrator) Tick(now sim.VTimeInSec) (madeProgress bool) {
	if len(o.pending) == 0 {
		return false
	}
	next := o.pending[0]
	o.pending = o.pending[1:]
	o.compile(next.event)
	return true
}

// compile is spec.md 5's top-level compile-lifecycle state machine: it
// dispatches CompileBegin, runs the pipeline synchronously
// (Normalize -> Infer -> TopoOrder -> ir.Build -> bind.Bind/
// ApplyBinding -> schedule.Assemble -> continuity.Migrate), dispatches
// CompileEnd, and on success dispatches ProgramSwapped.
func (o *Orchestrator) compile(e GraphCommittedEvent) {
	revision := e.PatchRevision
	o.revisions[revision] = StateIdle

	authoring := diag.RunAuthoringValidators(e.Patch, o.Registry, revision)
	o.Hub.OnGraphCommitted(diag.GraphCommittedEvent{Revision: revision, Diagnostics: authoring})

	o.nextCompileID++
	compileID := fmt.Sprintf("c%d", o.nextCompileID)

	o.Hub.OnCompileBegin(diag.CompileBeginEvent{Revision: revision})
	o.revisions[revision] = StatePending
	logging.Compile(o.Logger, "compile begin",
		"compileId", compileID, "patchId", e.PatchID, "revision", revision, "trigger", e.Trigger)

	start := time.Now()
	program, diags, ok := o.runPipeline(e.Patch, revision)
	duration := time.Since(start)

	status := diag.CompileSuccess
	if !ok {
		status = diag.CompileFailure
	}
	o.Hub.OnCompileEnd(diag.CompileEndEvent{Revision: revision, Status: status, Diagnostics: diags})
	logging.Compile(o.Logger, "compile end",
		"compileId", compileID, "patchId", e.PatchID, "revision", revision,
		"status", status, "durationMs", duration.Milliseconds())

	if !ok {
		o.revisions[revision] = StateFailed
		return
	}
	o.revisions[revision] = StateSuccess

	mode := SwapHard
	if o.hasLast {
		mode = SwapSoft
	}
	if o.Consumer != nil {
		o.Consumer.Swap(program, mode)
	}
	o.Hub.OnProgramSwapped(diag.ProgramSwappedEvent{Revision: revision})
	o.revisions[revision] = StateActive

	o.lastProgram = program
	o.lastRevision = revision
	o.hasLast = true
}

// runPipeline is the synchronous compile call spec.md 5 requires: every
// stage that can fail appends to diags and, for a structural failure,
// returns ok=false without running later stages.
func (o *Orchestrator) runPipeline(p graph.Patch, revision int) (program *schedule.CompiledProgram, diags []diag.Diagnostic, ok bool) {
	normResult := graph.Normalize(p, o.Registry)
	for _, e := range normResult.Errors {
		diags = append(diags, diag.FromFrontendError(e, revision))
	}
	if !graph.BackendReady(normResult.Errors) {
		return nil, diags, false
	}
	norm := normResult.Patch

	result := infer.Infer(norm, o.Registry)
	for _, e := range result.Errors {
		diags = append(diags, diag.FromInferError(e, revision))
	}
	if !result.BackendReady {
		return nil, diags, false
	}

	order, err := graph.TopoOrder(norm, o.Registry)
	if err != nil {
		diags = append(diags, diag.NewDiagnostic(diag.CodeCycleDetected, err.Error(), diag.TargetRef{Kind: diag.TargetGraphSpan}, revision, ""))
		return nil, diags, false
	}

	build, err := ir.Build(norm, o.Registry, result.Snapshot, order)
	if err != nil {
		diags = append(diags, diag.NewDiagnostic(diag.CodeExprCompile, err.Error(), diag.TargetRef{Kind: diag.TargetGraphSpan}, revision, ""))
		return nil, diags, false
	}

	bindIn := bind.BindInputs{Build: build}
	binding := bind.Bind(bindIn)

	program, err = schedule.Assemble(norm, o.Registry, order, build, bindIn, binding)
	if err != nil {
		diags = append(diags, diag.NewDiagnostic(diag.CodeExprCompile, err.Error(), diag.TargetRef{Kind: diag.TargetGraphSpan}, revision, ""))
		return nil, diags, false
	}

	var oldProgram *schedule.CompiledProgram
	var oldState continuity.ProgramState
	if o.hasLast {
		oldProgram = o.lastProgram
		oldState = o.lastState
	}
	newState, migrateDiags := continuity.Migrate(o.Store, oldProgram, oldState, program, build.StateDecls, revision)
	diags = append(diags, migrateDiags...)
	o.lastState = newState

	return program, diags, true
}
