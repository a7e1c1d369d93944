package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/patchc/compiler/internal/diag"
	"github.com/patchc/compiler/internal/schedule"
	"github.com/patchc/compiler/internal/types"
)

// renderDiagnostics prints diags as one table, sorted by severity then
// id so a re-run with an unchanged patch produces byte-identical
// output, following the teacher's core/util.go PrintState shape
// (table.NewWriter, SetTitle, AppendHeader, AppendRow, Render).
func renderDiagnostics(w io.Writer, diags []diag.Diagnostic) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Diagnostics")
	t.AppendHeader(table.Row{"Severity", "Code", "Target", "Message"})

	sorted := append([]diag.Diagnostic(nil), diags...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Severity != sorted[j].Severity {
			return sorted[i].Severity < sorted[j].Severity
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, d := range sorted {
		t.AppendRow(table.Row{d.Severity, d.Code, d.Target.String(), d.Message})
	}
	if len(sorted) == 0 {
		t.AppendRow(table.Row{"-", "-", "-", "(none)"})
	}
	t.Render()
	fmt.Fprintln(w)
}

// renderSchedule prints a compiled program's slot table and instance
// declarations for the given revision.
func renderSchedule(w io.Writer, revision int, prog *schedule.CompiledProgram) {
	fmt.Fprintf(w, "revision %d compiled: %d slot(s), %d instance(s)\n\n", revision, len(prog.SlotMeta), len(prog.Instances))

	slots := table.NewWriter()
	slots.SetOutputMirror(w)
	slots.SetTitle("Slots")
	slots.AppendHeader(table.Row{"Slot", "Label", "State", "Type"})
	for _, s := range prog.SlotMeta {
		slots.AppendRow(table.Row{s.Slot, s.DebugLabel, s.IsState, s.Type.String()})
	}
	slots.Render()
	fmt.Fprintln(w)

	if len(prog.Instances) == 0 {
		return
	}
	instances := table.NewWriter()
	instances.SetOutputMirror(w)
	instances.SetTitle("Instances")
	instances.AppendHeader(table.Row{"InstanceId", "Count", "MaxCount", "Stride"})

	ids := make([]string, 0, len(prog.Instances))
	for id := range prog.Instances {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		decl := prog.Instances[types.InstanceRef(id)]
		instances.AppendRow(table.Row{id, decl.Count, decl.MaxCount, decl.Stride})
	}
	instances.Render()
	fmt.Fprintln(w)
}
