package api

import (
	"context"
	"io"
	"time"

	"github.com/sandkasten-run/boxd/internal/session"
	"github.com/stretchr/testify/mock"
)

// MockSessionService mocks the SessionService interface.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) CreateInfo(ctx context.Context, opts session.CreateOpts) (session.Info, error) {
	args := m.Called(ctx, opts)
	info, _ := args.Get(0).(session.Info)
	return info, args.Error(1)
}

func (m *MockSessionService) GetInfo(id string) (session.Info, error) {
	args := m.Called(id)
	info, _ := args.Get(0).(session.Info)
	return info, args.Error(1)
}

func (m *MockSessionService) List() []session.Info {
	args := m.Called()
	if infos := args.Get(0); infos != nil {
		return infos.([]session.Info)
	}
	return nil
}

func (m *MockSessionService) Destroy(ctx context.Context, id string, grace time.Duration) error {
	args := m.Called(ctx, id, grace)
	return args.Error(0)
}

func (m *MockSessionService) SetEnv(sessionID string, vars map[string]string) error {
	args := m.Called(sessionID, vars)
	return args.Error(0)
}

func (m *MockSessionService) SetCwd(sessionID, cwd string) error {
	args := m.Called(sessionID, cwd)
	return args.Error(0)
}

func (m *MockSessionService) RunCommand(ctx context.Context, sessionID string, req session.CommandRequest) (session.CommandResult, error) {
	args := m.Called(ctx, sessionID, req)
	if res := args.Get(0); res != nil {
		return res.(session.CommandResult), args.Error(1)
	}
	return session.CommandResult{}, args.Error(1)
}

func (m *MockSessionService) WriteFile(sessionID, path string, content []byte) error {
	args := m.Called(sessionID, path, content)
	return args.Error(0)
}

func (m *MockSessionService) ReadFile(sessionID, path string, maxBytes int64) ([]byte, bool, error) {
	args := m.Called(sessionID, path, maxBytes)
	var content []byte
	if c := args.Get(0); c != nil {
		content = c.([]byte)
	}
	return content, args.Bool(1), args.Error(2)
}

func (m *MockSessionService) ListDirectory(sessionID, dirPath string) ([]session.DirEntry, error) {
	args := m.Called(sessionID, dirPath)
	if entries := args.Get(0); entries != nil {
		return entries.([]session.DirEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) SnapshotExists(sessionID, name string) bool {
	args := m.Called(sessionID, name)
	return args.Bool(0)
}

func (m *MockSessionService) CreateSnapshot(sessionID, name string) error {
	args := m.Called(sessionID, name)
	return args.Error(0)
}

func (m *MockSessionService) RestoreSnapshot(sessionID, name string) error {
	args := m.Called(sessionID, name)
	return args.Error(0)
}

func (m *MockSessionService) ListSnapshots(sessionID string) ([]session.SnapshotInfo, error) {
	args := m.Called(sessionID)
	if infos := args.Get(0); infos != nil {
		return infos.([]session.SnapshotInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionService) DeleteSnapshot(sessionID, name string) error {
	args := m.Called(sessionID, name)
	return args.Error(0)
}

func (m *MockSessionService) ExportSnapshot(sessionID, name string, w io.Writer) error {
	args := m.Called(sessionID, name, w)
	return args.Error(0)
}

func (m *MockSessionService) ImportSnapshot(sessionID, name string, r io.Reader) error {
	args := m.Called(sessionID, name, r)
	return args.Error(0)
}
