package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/posconsole/internal/domain/inventory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) ObserveFetch(resource, outcome string, d time.Duration) {
	m.Called(resource, outcome, d)
}

func (m *mockMetrics) ObserveMutation(resource, op, outcome string) {
	m.Called(resource, op, outcome)
}

func TestView_MetricsOnFetch(t *testing.T) {
	m := new(mockMetrics)
	m.On("ObserveFetch", "serials", OutcomeSuccess, mock.AnythingOfType("time.Duration")).Once()
	m.On("ObserveFetch", "serials", OutcomeError, mock.AnythingOfType("time.Duration")).Once()

	a := newFakeAdapter(5)
	v, _ := newView(t, a, WithMetrics(m))

	require.NoError(t, v.FetchPage(context.Background()))
	a.mu.Lock()
	a.listErr = errors.New("boom")
	a.mu.Unlock()
	require.Error(t, v.FetchPage(context.Background()))

	m.AssertExpectations(t)
}

func TestView_MetricsOnMutation(t *testing.T) {
	m := new(mockMetrics)
	m.On("ObserveMutation", "serials", "delete", OutcomeRejected).Once()
	m.On("ObserveMutation", "serials", "delete", OutcomeSuccess).Once()
	m.On("ObserveFetch", "serials", mock.Anything, mock.Anything).Maybe()

	a := newFakeAdapter(5)
	v, _ := newView(t, a, WithMetrics(m), WithDeletePolicy(inventory.SerialDeletePolicy))

	ctx := context.Background()
	require.Error(t, v.Delete(ctx, inventory.SerialNumber{ID: "1", Status: inventory.SerialStatusSold}))
	require.NoError(t, v.Delete(ctx, inventory.SerialNumber{ID: "2", Status: inventory.SerialStatusInStock}))

	m.AssertExpectations(t)
	m.AssertNumberOfCalls(t, "ObserveMutation", 2)
}
