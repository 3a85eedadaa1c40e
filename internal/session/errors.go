package session

import "errors"

// Sentinel errors implementing the error taxonomy: each maps to exactly one
// HTTP status / gRPC code at the front door (internal/api, internal/rpc).
var (
	ErrSessionNotFound  = errors.New("session: not found")
	ErrSessionDestroying = errors.New("session: destroying")
	ErrPathEscape       = errors.New("session: path escapes workspace root")
	ErrInvalidArgument  = errors.New("session: invalid argument")
	ErrSnapshotNotFound = errors.New("session: snapshot not found")
	ErrImportFailed     = errors.New("session: import failed")
	ErrFileTooLarge     = errors.New("session: file too large")
	ErrSpawnFailed      = errors.New("session: spawn failed")
	ErrInternal         = errors.New("session: internal error")
)
