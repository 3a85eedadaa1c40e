package rpc

// Message shapes mirror the wire contract documented for the gRPC fast path:
// one session id per call plus the same argv/limits fields internal/api uses
// for the HTTP exec endpoint, JSON-encoded instead of protobuf-encoded (see
// codec.go).

type RunCommandRequest struct {
	SessionID string            `json:"session_id"`
	Command   []string          `json:"command"`
	TimeMs    int64             `json:"time_ms"`
	MemKB     int64             `json:"mem_kb"`
	FsizeKB   int64             `json:"fsize_kb"`
	NoFile    int64             `json:"nofile"`
	Env       map[string]string `json:"env"`
	Cwd       string            `json:"cwd"`
}

type RunCommandResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Signal   int    `json:"signal"`
}

type WriteFileRequest struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	Content   []byte `json:"content"`
}

type WriteFileResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ReadFileRequest struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
	MaxBytes  int64  `json:"max_bytes"`
}

type ReadFileResponse struct {
	Content []byte `json:"content"`
	Error   string `json:"error,omitempty"`
}

type SetEnvRequest struct {
	SessionID string            `json:"session_id"`
	Env       map[string]string `json:"env"`
}

type SetEnvResponse struct{}

type SetCwdRequest struct {
	SessionID string `json:"session_id"`
	Cwd       string `json:"cwd"`
}

type SetCwdResponse struct{}

// ShellClientMessage is sent from the client to AttachShell. The first
// message on the stream must set SessionID (and may set Cols/Rows to pick an
// initial terminal size); every later message is either a Resize or a chunk
// of Stdin, never both.
type ShellClientMessage struct {
	SessionID string `json:"session_id,omitempty"`
	Cols      uint16 `json:"cols,omitempty"`
	Rows      uint16 `json:"rows,omitempty"`
	Resize    bool   `json:"resize,omitempty"`
	Stdin     []byte `json:"stdin,omitempty"`
}

// ShellServerMessage is sent from AttachShell to the client: either a chunk
// of the PTY's combined output stream, or a terminal Exited notice.
type ShellServerMessage struct {
	Stdout   []byte `json:"stdout,omitempty"`
	Exited   bool   `json:"exited,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}
