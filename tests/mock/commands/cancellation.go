// Package commandsmock holds hand-written gomock doubles for the command use cases.
package commandsmock

import (
	context "context"
	reflect "reflect"

	actor "booking-reconciler/internal/domain/actor"
	commands "booking-reconciler/internal/usecase/commands"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockCancellationCommands is a mock of CancellationCommands interface.
type MockCancellationCommands struct {
	ctrl     *gomock.Controller
	recorder *MockCancellationCommandsMockRecorder
	isgomock struct{}
}

// MockCancellationCommandsMockRecorder is the mock recorder for MockCancellationCommands.
type MockCancellationCommandsMockRecorder struct {
	mock *MockCancellationCommands
}

// NewMockCancellationCommands creates a new mock instance.
func NewMockCancellationCommands(ctrl *gomock.Controller) *MockCancellationCommands {
	mock := &MockCancellationCommands{ctrl: ctrl}
	mock.recorder = &MockCancellationCommandsMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCancellationCommands) EXPECT() *MockCancellationCommandsMockRecorder {
	return m.recorder
}

// Cancel mocks base method.
func (m *MockCancellationCommands) Cancel(ctx context.Context, bookingID uuid.UUID, req commands.CancelBookingRequest, idempotencyKey uuid.UUID, by actor.Actor) (*commands.CancelBookingResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Cancel", ctx, bookingID, req, idempotencyKey, by)
	ret0, _ := ret[0].(*commands.CancelBookingResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Cancel indicates an expected call of Cancel.
func (mr *MockCancellationCommandsMockRecorder) Cancel(ctx, bookingID, req, idempotencyKey, by any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Cancel", reflect.TypeOf((*MockCancellationCommands)(nil).Cancel), ctx, bookingID, req, idempotencyKey, by)
}
