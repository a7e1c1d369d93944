// Package infer implements the Inference Engine (spec.md 4.D): it seeds
// every port and internal wire with a (possibly variable-carrying)
// CanonicalType, unifies across every enabled edge of an
// already-normalized patch, applies each block's cardinality/broadcast
// policy, and detects illegal cycles via Tarjan SCCs.
package infer

import (
	"fmt"

	"github.com/patchc/compiler/internal/graph"
	"github.com/patchc/compiler/internal/types"
)

// InferErrorKind enumerates the failures the inference engine can
// raise (spec.md 4.D, 4.J).
type InferErrorKind string

const (
	ErrTypeMismatch                 InferErrorKind = "TypeMismatch"
	ErrUnitMismatch                 InferErrorKind = "UnitMismatch"
	ErrPayloadNotAllowed             InferErrorKind = "PayloadNotAllowed"
	ErrPayloadCombinationNotAllowed InferErrorKind = "PayloadCombinationNotAllowed"
	ErrImplicitCastDisallowed       InferErrorKind = "ImplicitCastDisallowed"
	ErrInstanceMismatch             InferErrorKind = "InstanceMismatch"
	ErrLaneCoupledDisallowed        InferErrorKind = "LaneCoupledDisallowed"
	ErrImplicitBroadcastDisallowed  InferErrorKind = "ImplicitBroadcastDisallowed"
	ErrCycleDetected                InferErrorKind = "CycleDetected"
)

// InferError is one failure found during inference. It is addressed
// the same way graph.FrontendError is, so internal/diag can build a
// TargetRef from either without a type switch on package.
type InferError struct {
	Kind      InferErrorKind
	Message   string
	BlockID   graph.BlockID
	PortID    string
	EdgeID    string
	GraphSpan []graph.BlockID
}

func (e InferError) String() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// PortKey addresses one port of one block instance.
type PortKey struct {
	Block graph.BlockID
	Port  string
}

// Snapshot is the fully-resolved result of an inference pass: every
// seeded port's final CanonicalType, keyed for the IR builder and the
// diagnostics hub to consult.
type Snapshot struct {
	PortTypes map[PortKey]types.CanonicalType
}

// InferResult is the Inference Engine's output (spec.md 4.D).
type InferResult struct {
	Errors       []InferError
	BackendReady bool
	Snapshot     *Snapshot
}
