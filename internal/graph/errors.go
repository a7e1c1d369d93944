package graph

// FrontendErrorKind enumerates the structural errors the Normalizer can
// raise (spec.md 4.C, 7).
type FrontendErrorKind string

const (
	ErrUnknownBlockType FrontendErrorKind = "UnknownBlockType"
	ErrDanglingEdge     FrontendErrorKind = "DanglingEdge"
	ErrTimeRootMissing  FrontendErrorKind = "TimeRootMissing"
	ErrTimeRootMultiple FrontendErrorKind = "TimeRootMultiple"
)

// FrontendError carries a stable kind tag plus enough addressing
// information for internal/diag to build a TargetRef.
type FrontendError struct {
	Kind      FrontendErrorKind
	Message   string
	BlockID   BlockID
	PortID    string
	EdgeID    string
	GraphSpan []BlockID
}
