package api

import (
	"fmt"
	"regexp"
)

// sessionIDPattern matches the base64url alphabet newID produces (22 chars
// for 16 random bytes, no padding) without hardcoding the exact length, so a
// future entropy change doesn't require touching this pattern too.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateSessionID rejects anything that could misbehave when joined into a
// filesystem path (path separators, traversal) on top of the expected
// charset check.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("invalid session id format")
	}
	return nil
}

// snapshotNamePattern mirrors workspace.ValidateSnapshotName's charset so a
// malformed name is rejected before it ever reaches the workspace package.
var snapshotNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

func validateSnapshotName(name string) error {
	if !snapshotNamePattern.MatchString(name) {
		return fmt.Errorf("invalid snapshot name")
	}
	return nil
}

func validateCreateSessionRequest(req createSessionRequest) error {
	if req.IdleTTLSeconds < 0 {
		return fmt.Errorf("idle_ttl_seconds must be non-negative")
	}
	if req.IdleTTLSeconds > 86400 {
		return fmt.Errorf("idle_ttl_seconds must not exceed 86400 (24 hours)")
	}
	return nil
}

func validateCommandRequest(req commandRequest) error {
	if len(req.Command) == 0 {
		return fmt.Errorf("command is required")
	}
	if req.TimeMs < 0 {
		return fmt.Errorf("time_ms must be non-negative")
	}
	if req.TimeMs > 600000 {
		return fmt.Errorf("time_ms must not exceed 600000 (10 minutes)")
	}
	return nil
}

func validateWriteRequest(req writeRequest) error {
	if req.Path == "" {
		return fmt.Errorf("path is required")
	}
	if req.ContentBase64 == "" {
		return fmt.Errorf("content_base64 is required")
	}
	return nil
}

func validateReadRequest(path string, maxBytes int64) error {
	if path == "" {
		return fmt.Errorf("path query parameter is required")
	}
	if maxBytes < 0 {
		return fmt.Errorf("max_bytes must be non-negative")
	}
	if maxBytes > 100*1024*1024 {
		return fmt.Errorf("max_bytes must not exceed 104857600 (100MB)")
	}
	return nil
}
