package rpc

import (
	"context"

	"github.com/sandkasten-run/boxd/internal/launcher"
	"github.com/sandkasten-run/boxd/internal/session"
	"github.com/stretchr/testify/mock"
)

// MockCommandService mocks the CommandService interface.
type MockCommandService struct {
	mock.Mock
}

func (m *MockCommandService) RunCommand(ctx context.Context, sessionID string, req session.CommandRequest) (session.CommandResult, error) {
	args := m.Called(ctx, sessionID, req)
	if res := args.Get(0); res != nil {
		return res.(session.CommandResult), args.Error(1)
	}
	return session.CommandResult{}, args.Error(1)
}

func (m *MockCommandService) WriteFile(sessionID, path string, content []byte) error {
	args := m.Called(sessionID, path, content)
	return args.Error(0)
}

func (m *MockCommandService) ReadFile(sessionID, path string, maxBytes int64) ([]byte, bool, error) {
	args := m.Called(sessionID, path, maxBytes)
	var content []byte
	if c := args.Get(0); c != nil {
		content = c.([]byte)
	}
	return content, args.Bool(1), args.Error(2)
}

func (m *MockCommandService) SetEnv(sessionID string, vars map[string]string) error {
	args := m.Called(sessionID, vars)
	return args.Error(0)
}

func (m *MockCommandService) SetCwd(sessionID, cwd string) error {
	args := m.Called(sessionID, cwd)
	return args.Error(0)
}

func (m *MockCommandService) OpenShell(sessionID string, cols, rows uint16) (*launcher.Shell, error) {
	args := m.Called(sessionID, cols, rows)
	if sh := args.Get(0); sh != nil {
		return sh.(*launcher.Shell), args.Error(1)
	}
	return nil, args.Error(1)
}
