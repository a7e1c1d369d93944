package diag

import "sort"

// CompileStatus is CompileEnd's outcome tag.
type CompileStatus string

const (
	CompileSuccess CompileStatus = "success"
	CompileFailure CompileStatus = "failure"
)

// GraphCommittedEvent carries the authoring-time diagnostics produced
// by the fast validators for a freshly edited revision.
type GraphCommittedEvent struct {
	Revision    int
	Diagnostics []Diagnostic
}

// CompileBeginEvent marks revision as pending.
type CompileBeginEvent struct {
	Revision int
}

// CompileEndEvent replaces revision's compile diagnostics.
type CompileEndEvent struct {
	Revision    int
	Status      CompileStatus
	Diagnostics []Diagnostic
}

// ProgramSwappedEvent marks revision as the one now active in the
// runtime.
type ProgramSwappedEvent struct {
	Revision int
}

// RuntimeHealthSnapshotEvent carries the runtime diagnostics that are
// active as of one health snapshot; it replaces the Hub's runtime set.
type RuntimeHealthSnapshotEvent struct {
	DiagnosticsDelta []Diagnostic
}

// Hub is the single source of truth for editor diagnostics (spec.md
// 4.I): it subscribes to the five-event compile-lifecycle contract and
// answers GetActive with a deduplicated union, compile always winning
// ties. It is not safe for concurrent use without external
// synchronization — spec.md 5's single-threaded cooperative model means
// every event is expected to arrive from one dispatch loop.
type Hub struct {
	compileSnapshots       map[int][]Diagnostic
	authoringSnapshot      []Diagnostic
	runtimeDiagnostics     map[string]Diagnostic
	activeRevision         int
	hasActiveRevision      bool
	pendingCompileRevision int
	hasPendingCompile      bool
	latestCompileRevision  int
	hasLatestCompile       bool
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		compileSnapshots:   map[int][]Diagnostic{},
		runtimeDiagnostics: map[string]Diagnostic{},
	}
}

// OnGraphCommitted replaces the authoring snapshot.
func (h *Hub) OnGraphCommitted(e GraphCommittedEvent) {
	h.authoringSnapshot = append([]Diagnostic(nil), e.Diagnostics...)
}

// OnCompileBegin marks e.Revision as the pending compile.
func (h *Hub) OnCompileBegin(e CompileBeginEvent) {
	h.pendingCompileRevision = e.Revision
	h.hasPendingCompile = true
}

// OnCompileEnd replaces revision's compile diagnostics, regardless of
// status — a failed compile still reports its errors — and clears the
// pending marker if it matches.
func (h *Hub) OnCompileEnd(e CompileEndEvent) {
	h.compileSnapshots[e.Revision] = append([]Diagnostic(nil), e.Diagnostics...)
	if !h.hasLatestCompile || e.Revision > h.latestCompileRevision {
		h.latestCompileRevision = e.Revision
		h.hasLatestCompile = true
	}
	if h.hasPendingCompile && h.pendingCompileRevision == e.Revision {
		h.hasPendingCompile = false
	}
}

// OnProgramSwapped sets the revision GetActive should prefer.
func (h *Hub) OnProgramSwapped(e ProgramSwappedEvent) {
	h.activeRevision = e.Revision
	h.hasActiveRevision = true
}

// OnRuntimeHealthSnapshot replaces the runtime set with
// e.DiagnosticsDelta, keyed by id (a later entry for a repeated id
// wins). A diagnostic absent from the latest snapshot is dropped; there
// is no incremental raise/resolve merging across snapshots, so callers
// resend the full still-active set each time.
func (h *Hub) OnRuntimeHealthSnapshot(e RuntimeHealthSnapshotEvent) {
	merged := make(map[string]Diagnostic, len(e.DiagnosticsDelta))
	for _, d := range e.DiagnosticsDelta {
		merged[d.ID] = d
	}
	h.runtimeDiagnostics = merged
}

// GetActive answers the Hub's one query (spec.md 4.I): the union of
// compile[revision] (activeRevision, falling back to
// pendingCompileRevision, falling back to the latest compile seen),
// authoring, and runtime, deduplicated by id with compile winning any
// collision.
func (h *Hub) GetActive() []Diagnostic {
	rev, ok := h.compileRevisionForActive()
	var compile []Diagnostic
	if ok {
		compile = h.compileSnapshots[rev]
	}

	seen := map[string]Diagnostic{}
	for _, d := range h.authoringSnapshot {
		seen[d.ID] = d
	}
	for _, d := range h.runtimeDiagnostics {
		seen[d.ID] = d
	}
	for _, d := range compile {
		seen[d.ID] = d
	}

	out := make([]Diagnostic, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Hub) compileRevisionForActive() (int, bool) {
	if h.hasActiveRevision {
		if _, ok := h.compileSnapshots[h.activeRevision]; ok {
			return h.activeRevision, true
		}
	}
	if h.hasPendingCompile {
		if _, ok := h.compileSnapshots[h.pendingCompileRevision]; ok {
			return h.pendingCompileRevision, true
		}
	}
	if h.hasLatestCompile {
		return h.latestCompileRevision, true
	}
	return 0, false
}
