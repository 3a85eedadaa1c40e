package reaper

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockSweeper mocks the Sweeper interface.
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context, grace time.Duration) {
	m.Called(ctx, grace)
}
