package orchestrator_test

import (
	"reflect"

	gomock "github.com/golang/mock/gomock"

	"github.com/patchc/compiler/internal/orchestrator"
	"github.com/patchc/compiler/internal/schedule"
)

// MockProgramConsumer is a hand-maintained double for
// orchestrator.ProgramConsumer, in the same shape mockgen would emit —
// the teacher's own api/driver_internal_test.go hand-maintains MockPort
// and MockDevice rather than checking in generated code, so this
// package follows suit for the one collaborator interface it has.
type MockProgramConsumer struct {
	ctrl     *gomock.Controller
	recorder *MockProgramConsumerMockRecorder
}

// MockProgramConsumerMockRecorder is MockProgramConsumer's EXPECT()
// target.
type MockProgramConsumerMockRecorder struct {
	mock *MockProgramConsumer
}

// NewMockProgramConsumer returns a MockProgramConsumer bound to ctrl.
func NewMockProgramConsumer(ctrl *gomock.Controller) *MockProgramConsumer {
	mock := &MockProgramConsumer{ctrl: ctrl}
	mock.recorder = &MockProgramConsumerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected
// use.
func (m *MockProgramConsumer) EXPECT() *MockProgramConsumerMockRecorder {
	return m.recorder
}

// Swap mocks base method.
func (m *MockProgramConsumer) Swap(program *schedule.CompiledProgram, mode orchestrator.SwapMode) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Swap", program, mode)
}

// Swap indicates an expected call of Swap.
func (mr *MockProgramConsumerMockRecorder) Swap(program, mode interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Swap", reflect.TypeOf((*MockProgramConsumer)(nil).Swap), program, mode)
}
