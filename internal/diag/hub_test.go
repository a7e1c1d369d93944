package diag_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/patchc/compiler/internal/diag"
)

var _ = Describe("Hub", func() {
	var hub *diag.Hub

	BeforeEach(func() {
		hub = diag.NewHub()
	})

	It("replaces the authoring snapshot on each GraphCommitted", func() {
		d1 := diag.NewDiagnostic(diag.CodeGraphDisconnectedBlock, "first", diag.TargetRef{Kind: diag.TargetBlock, BlockID: "a"}, 1, "")
		hub.OnGraphCommitted(diag.GraphCommittedEvent{Revision: 1, Diagnostics: []diag.Diagnostic{d1}})
		Expect(hub.GetActive()).To(ConsistOf(d1))

		d2 := diag.NewDiagnostic(diag.CodeGraphDisconnectedBlock, "second", diag.TargetRef{Kind: diag.TargetBlock, BlockID: "b"}, 2, "")
		hub.OnGraphCommitted(diag.GraphCommittedEvent{Revision: 2, Diagnostics: []diag.Diagnostic{d2}})
		Expect(hub.GetActive()).To(ConsistOf(d2))
	})

	It("prefers the active revision's compile snapshot, compile winning over authoring", func() {
		compileErr := diag.NewDiagnostic(diag.CodeTypeMismatch, "compile says no", diag.TargetRef{Kind: diag.TargetBlock, BlockID: "x"}, 3, "")
		hub.OnCompileBegin(diag.CompileBeginEvent{Revision: 3})
		hub.OnCompileEnd(diag.CompileEndEvent{Revision: 3, Status: diag.CompileFailure, Diagnostics: []diag.Diagnostic{compileErr}})
		hub.OnProgramSwapped(diag.ProgramSwappedEvent{Revision: 3})

		authoringWarn := diag.NewDiagnostic(diag.CodeGraphUnusedOutput, "unused", diag.TargetRef{Kind: diag.TargetBlock, BlockID: "y"}, 3, "")
		hub.OnGraphCommitted(diag.GraphCommittedEvent{Revision: 3, Diagnostics: []diag.Diagnostic{authoringWarn}})

		Expect(hub.GetActive()).To(ConsistOf(compileErr, authoringWarn))
	})

	It("lets compile win when a compile and authoring diagnostic share an id", func() {
		target := diag.TargetRef{Kind: diag.TargetBlock, BlockID: "z"}
		authoringVersion := diag.NewDiagnostic(diag.CodeTypeMismatch, "stale authoring guess", target, 4, "")
		compileVersion := diag.NewDiagnostic(diag.CodeTypeMismatch, "authoritative compile result", target, 4, "")

		hub.OnGraphCommitted(diag.GraphCommittedEvent{Revision: 4, Diagnostics: []diag.Diagnostic{authoringVersion}})
		hub.OnCompileBegin(diag.CompileBeginEvent{Revision: 4})
		hub.OnCompileEnd(diag.CompileEndEvent{Revision: 4, Status: diag.CompileSuccess, Diagnostics: []diag.Diagnostic{compileVersion}})
		hub.OnProgramSwapped(diag.ProgramSwappedEvent{Revision: 4})

		active := hub.GetActive()
		Expect(active).To(HaveLen(1))
		Expect(active[0].Message).To(Equal("authoritative compile result"))
	})

	It("keeps the last finished compile's snapshot while a newer revision is pending", func() {
		hub.OnCompileBegin(diag.CompileBeginEvent{Revision: 5})
		d := diag.NewDiagnostic(diag.CodeCycleDetected, "pending", diag.TargetRef{Kind: diag.TargetGraphSpan}, 5, "")
		hub.OnCompileEnd(diag.CompileEndEvent{Revision: 5, Status: diag.CompileSuccess, Diagnostics: []diag.Diagnostic{d}})
		hub.OnCompileBegin(diag.CompileBeginEvent{Revision: 6})

		Expect(hub.GetActive()).To(ConsistOf(d))
	})

	It("falls back to the latest compile when neither active nor pending is known", func() {
		d1 := diag.NewDiagnostic(diag.CodeCycleDetected, "rev1", diag.TargetRef{Kind: diag.TargetGraphSpan}, 1, "")
		d2 := diag.NewDiagnostic(diag.CodeCycleDetected, "rev2", diag.TargetRef{Kind: diag.TargetGraphSpan}, 2, "")
		hub.OnCompileEnd(diag.CompileEndEvent{Revision: 1, Status: diag.CompileSuccess, Diagnostics: []diag.Diagnostic{d1}})
		hub.OnCompileEnd(diag.CompileEndEvent{Revision: 2, Status: diag.CompileSuccess, Diagnostics: []diag.Diagnostic{d2}})

		Expect(hub.GetActive()).To(ConsistOf(d2))
	})

	It("replaces the runtime diagnostics on each snapshot", func() {
		d := diag.NewDiagnostic(diag.CodeFlagDowngraded, "stride mismatch", diag.TargetRef{Kind: diag.TargetBlock, BlockID: "s"}, 0, "")
		hub.OnRuntimeHealthSnapshot(diag.RuntimeHealthSnapshotEvent{DiagnosticsDelta: []diag.Diagnostic{d}})
		Expect(hub.GetActive()).To(ConsistOf(d))

		hub.OnRuntimeHealthSnapshot(diag.RuntimeHealthSnapshotEvent{DiagnosticsDelta: nil})
		Expect(hub.GetActive()).To(BeEmpty())
	})
})
