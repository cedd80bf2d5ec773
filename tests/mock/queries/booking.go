// Package queriesmock holds hand-written gomock doubles for the query use cases.
package queriesmock

import (
	context "context"
	reflect "reflect"
	time "time"

	actor "booking-reconciler/internal/domain/actor"
	queries "booking-reconciler/internal/usecase/queries"
	uuid "github.com/google/uuid"
	gomock "go.uber.org/mock/gomock"
)

// MockBookingQueries is a mock of BookingQueries interface.
type MockBookingQueries struct {
	ctrl     *gomock.Controller
	recorder *MockBookingQueriesMockRecorder
	isgomock struct{}
}

// MockBookingQueriesMockRecorder is the mock recorder for MockBookingQueries.
type MockBookingQueriesMockRecorder struct {
	mock *MockBookingQueries
}

// NewMockBookingQueries creates a new mock instance.
func NewMockBookingQueries(ctrl *gomock.Controller) *MockBookingQueries {
	mock := &MockBookingQueries{ctrl: ctrl}
	mock.recorder = &MockBookingQueriesMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBookingQueries) EXPECT() *MockBookingQueriesMockRecorder {
	return m.recorder
}

// GetCancellation mocks base method.
func (m *MockBookingQueries) GetCancellation(ctx context.Context, bookingID uuid.UUID, viewer actor.Actor) (*queries.CancellationView, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetCancellation", ctx, bookingID, viewer)
	ret0, _ := ret[0].(*queries.CancellationView)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetCancellation indicates an expected call of GetCancellation.
func (mr *MockBookingQueriesMockRecorder) GetCancellation(ctx, bookingID, viewer any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetCancellation", reflect.TypeOf((*MockBookingQueries)(nil).GetCancellation), ctx, bookingID, viewer)
}

// Lifecycle mocks base method.
func (m *MockBookingQueries) Lifecycle(ctx context.Context, bookingID uuid.UUID, at *time.Time, viewer actor.Actor) (*queries.LifecycleView, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lifecycle", ctx, bookingID, at, viewer)
	ret0, _ := ret[0].(*queries.LifecycleView)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Lifecycle indicates an expected call of Lifecycle.
func (mr *MockBookingQueriesMockRecorder) Lifecycle(ctx, bookingID, at, viewer any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lifecycle", reflect.TypeOf((*MockBookingQueries)(nil).Lifecycle), ctx, bookingID, at, viewer)
}

// QuoteCancellation mocks base method.
func (m *MockBookingQueries) QuoteCancellation(ctx context.Context, bookingID uuid.UUID, at *time.Time, viewer actor.Actor) (*queries.QuoteView, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "QuoteCancellation", ctx, bookingID, at, viewer)
	ret0, _ := ret[0].(*queries.QuoteView)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// QuoteCancellation indicates an expected call of QuoteCancellation.
func (mr *MockBookingQueriesMockRecorder) QuoteCancellation(ctx, bookingID, at, viewer any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "QuoteCancellation", reflect.TypeOf((*MockBookingQueries)(nil).QuoteCancellation), ctx, bookingID, at, viewer)
}
