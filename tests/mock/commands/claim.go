package commandsmock

import (
	context "context"
	reflect "reflect"

	actor "booking-reconciler/internal/domain/actor"
	booking "booking-reconciler/internal/domain/booking"
	queries "booking-reconciler/internal/usecase/queries"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockClaimCommands is a mock of ClaimCommands interface.
type MockClaimCommands struct {
	ctrl     *gomock.Controller
	recorder *MockClaimCommandsMockRecorder
	isgomock struct{}
}

// MockClaimCommandsMockRecorder is the mock recorder for MockClaimCommands.
type MockClaimCommandsMockRecorder struct {
	mock *MockClaimCommands
}

// NewMockClaimCommands creates a new mock instance.
func NewMockClaimCommands(ctrl *gomock.Controller) *MockClaimCommands {
	mock := &MockClaimCommands{ctrl: ctrl}
	mock.recorder = &MockClaimCommandsMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockClaimCommands) EXPECT() *MockClaimCommandsMockRecorder {
	return m.recorder
}

// WithholdDeposit mocks base method.
func (m *MockClaimCommands) WithholdDeposit(ctx context.Context, bookingID uuid.UUID, amount booking.Money, by actor.Actor) (*queries.CancellationView, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WithholdDeposit", ctx, bookingID, amount, by)
	ret0, _ := ret[0].(*queries.CancellationView)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// WithholdDeposit indicates an expected call of WithholdDeposit.
func (mr *MockClaimCommandsMockRecorder) WithholdDeposit(ctx, bookingID, amount, by any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WithholdDeposit", reflect.TypeOf((*MockClaimCommands)(nil).WithholdDeposit), ctx, bookingID, amount, by)
}
