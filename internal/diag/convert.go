package diag

import (
	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/infer"
)

// FromFrontendError converts a Normalizer error (spec.md 4.C) into a
// Diagnostic for the given revision.
func FromFrontendError(e graph.FrontendError, revision int) Diagnostic {
	code := frontendCode(e.Kind)
	target := frontendTarget(e)
	return NewDiagnostic(code, e.Message, target, revision, "")
}

func frontendCode(kind graph.FrontendErrorKind) Code {
	switch kind {
	case graph.ErrUnknownBlockType:
		return CodeUnknownBlockType
	case graph.ErrDanglingEdge:
		return CodeMissingInput
	case graph.ErrTimeRootMissing:
		return CodeTimeRootMissing
	case graph.ErrTimeRootMultiple:
		return CodeTimeRootMissing
	default:
		return CodeUnknownBlockType
	}
}

func frontendTarget(e graph.FrontendError) TargetRef {
	switch {
	case len(e.GraphSpan) > 0:
		return TargetRef{Kind: TargetGraphSpan, GraphSpan: e.GraphSpan}
	case e.PortID != "":
		return TargetRef{Kind: TargetPort, BlockID: e.BlockID, PortID: e.PortID}
	case e.BlockID != "":
		return TargetRef{Kind: TargetBlock, BlockID: e.BlockID}
	default:
		return TargetRef{Kind: TargetGraphSpan}
	}
}

// FromInferError converts an Inference Engine error (spec.md 4.D) into
// a Diagnostic for the given revision.
func FromInferError(e infer.InferError, revision int) Diagnostic {
	code := inferCode(e.Kind)
	target := inferTarget(e)
	return NewDiagnostic(code, e.Message, target, revision, "")
}

func inferCode(kind infer.InferErrorKind) Code {
	switch kind {
	case infer.ErrTypeMismatch:
		return CodeTypeMismatch
	case infer.ErrUnitMismatch:
		return CodeUnitMismatch
	case infer.ErrPayloadNotAllowed:
		return CodePayloadNotAllowed
	case infer.ErrPayloadCombinationNotAllowed:
		return CodePayloadCombinationNotAllowed
	case infer.ErrImplicitCastDisallowed:
		return CodeImplicitCastDisallowed
	case infer.ErrInstanceMismatch:
		return CodeInstanceMismatch
	case infer.ErrLaneCoupledDisallowed:
		return CodeLaneCoupledDisallowed
	case infer.ErrImplicitBroadcastDisallowed:
		return CodeImplicitBroadcastDisallowed
	case infer.ErrCycleDetected:
		return CodeCycleDetected
	default:
		return CodeUnknownBlockType
	}
}

func inferTarget(e infer.InferError) TargetRef {
	switch {
	case len(e.GraphSpan) > 0:
		return TargetRef{Kind: TargetGraphSpan, GraphSpan: e.GraphSpan, SpanKind: "cycle"}
	case e.PortID != "":
		return TargetRef{Kind: TargetPort, BlockID: e.BlockID, PortID: e.PortID}
	case e.BlockID != "":
		return TargetRef{Kind: TargetBlock, BlockID: e.BlockID}
	default:
		return TargetRef{Kind: TargetGraphSpan}
	}
}
