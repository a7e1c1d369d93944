package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/patchc/compiler/internal/graph"
)

// TargetKind distinguishes the three shapes primaryTarget can take
// (spec.md 4.J).
type TargetKind int

const (
	TargetBlock TargetKind = iota
	TargetPort
	TargetGraphSpan
)

// TargetRef names what a Diagnostic is about.
type TargetRef struct {
	Kind      TargetKind
	BlockID   graph.BlockID
	PortID    string
	GraphSpan []graph.BlockID
	SpanKind  string
}

// String is the canonical TargetRef serializer spec.md 4.I's stable id
// format embeds as targetStr: block ids inside a graphSpan are sorted
// lexically first, and optional fields are appended in a fixed
// position so the same logical target always serializes identically.
func (t TargetRef) String() string {
	switch t.Kind {
	case TargetBlock:
		return fmt.Sprintf("block:%s", t.BlockID)
	case TargetPort:
		return fmt.Sprintf("port:%s.%s", t.BlockID, t.PortID)
	case TargetGraphSpan:
		span := append([]graph.BlockID(nil), t.GraphSpan...)
		sort.Slice(span, func(i, j int) bool { return span[i] < span[j] })
		ids := make([]string, len(span))
		for i, id := range span {
			ids[i] = string(id)
		}
		s := fmt.Sprintf("span:%s", strings.Join(ids, ","))
		if t.SpanKind != "" {
			s += ":" + t.SpanKind
		}
		return s
	default:
		return "target:unknown"
	}
}

// Diagnostic is the Hub's unit of record (spec.md 4.I/4.J).
type Diagnostic struct {
	ID       string
	Code     Code
	Severity Severity
	Message  string
	Target   TargetRef
	Revision int
}

// NewDiagnostic builds a Diagnostic and derives its stable id from
// code, target, and revision (spec.md 4.I: "CODE:targetStr:revN[:signature]").
// signature lets two diagnostics with the same code/target/revision
// (e.g. two distinct cycles reported in the same graphSpan) stay
// distinct; pass "" when none is needed.
func NewDiagnostic(code Code, message string, target TargetRef, revision int, signature string) Diagnostic {
	id := fmt.Sprintf("%s:%s:rev%d", code, target.String(), revision)
	if signature != "" {
		id += ":" + signature
	}
	return Diagnostic{
		ID:       id,
		Code:     code,
		Severity: SeverityOf(code),
		Message:  message,
		Target:   target,
		Revision: revision,
	}
}
