package rpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sandkasten-run/boxd/internal/launcher"
	"github.com/sandkasten-run/boxd/internal/session"
)

// Server implements the Sandbox gRPC service (the fast path of component H)
// over the same session registry the HTTP front door uses.
type Server struct {
	manager      CommandService
	logger       *slog.Logger
	maxReadBytes int64
}

// NewServer constructs a Server backed by manager. maxReadBytes is the
// configured cap applied to ReadFile calls that don't specify their own.
func NewServer(manager CommandService, maxReadBytes int64, logger *slog.Logger) *Server {
	return &Server{manager: manager, maxReadBytes: maxReadBytes, logger: logger}
}

// Register attaches the Sandbox service to grpcServer.
func Register(grpcServer *grpc.Server, srv *Server) {
	grpcServer.RegisterService(&serviceDesc, srv)
}

// NewGRPCServer builds a *grpc.Server wired with the JSON codec and the
// bearer-token auth interceptor on both unary and streaming calls, ready for
// Register. apiKey disables auth entirely when empty, the same open-access
// mode the HTTP front door uses when no api_key is configured.
func NewGRPCServer(apiKey string) *grpc.Server {
	auth := newAuthInterceptor(apiKey)
	return grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.ChainUnaryInterceptor(auth.unary),
		grpc.ChainStreamInterceptor(func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
			if err := auth.checkToken(ss.Context()); err != nil {
				return err
			}
			return handler(srv, ss)
		}),
	)
}

func (s *Server) RunCommand(ctx context.Context, req *RunCommandRequest) (*RunCommandResponse, error) {
	res, err := s.manager.RunCommand(ctx, req.SessionID, session.CommandRequest{
		Argv:    req.Command,
		Env:     req.Env,
		Cwd:     req.Cwd,
		WallMs:  req.TimeMs,
		MemKB:   req.MemKB,
		FsizeKB: req.FsizeKB,
		NoFile:  req.NoFile,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &RunCommandResponse{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Signal:   res.Signal,
	}, nil
}

func (s *Server) WriteFile(ctx context.Context, req *WriteFileRequest) (*WriteFileResponse, error) {
	if err := s.manager.WriteFile(req.SessionID, req.Path, req.Content); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, s.mapError(err)
		}
		return &WriteFileResponse{Success: false, Error: errMessage(err)}, nil
	}
	return &WriteFileResponse{Success: true}, nil
}

func (s *Server) ReadFile(ctx context.Context, req *ReadFileRequest) (*ReadFileResponse, error) {
	maxBytes := req.MaxBytes
	if maxBytes <= 0 {
		maxBytes = s.maxReadBytes
	}
	content, _, err := s.manager.ReadFile(req.SessionID, req.Path, maxBytes)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, s.mapError(err)
		}
		return &ReadFileResponse{Error: errMessage(err)}, nil
	}
	return &ReadFileResponse{Content: content}, nil
}

func (s *Server) SetEnv(ctx context.Context, req *SetEnvRequest) (*SetEnvResponse, error) {
	if err := s.manager.SetEnv(req.SessionID, req.Env); err != nil {
		return nil, s.mapError(err)
	}
	return &SetEnvResponse{}, nil
}

func (s *Server) SetCwd(ctx context.Context, req *SetCwdRequest) (*SetCwdResponse, error) {
	if err := s.manager.SetCwd(req.SessionID, req.Cwd); err != nil {
		return nil, s.mapError(err)
	}
	return &SetCwdResponse{}, nil
}

// AttachShell bridges a bidirectional gRPC stream to an interactive
// PTY-backed shell. The first message from the client must carry the
// session id; every message after that is either a terminal resize or a
// chunk of stdin, and every message the server sends back is a chunk of the
// shell's combined output until it exits.
func (s *Server) AttachShell(stream grpc.ServerStream) error {
	var open ShellClientMessage
	if err := stream.RecvMsg(&open); err != nil {
		return err
	}
	if open.SessionID == "" {
		return status.Error(codes.InvalidArgument, "first message must set session_id")
	}

	shell, err := s.manager.OpenShell(open.SessionID, open.Cols, open.Rows)
	if err != nil {
		return s.mapError(err)
	}
	defer shell.Close()

	errCh := make(chan error, 2)
	go s.pumpShellOutput(stream, shell, errCh)
	go s.pumpShellInput(stream, shell, errCh)
	return <-errCh
}

func (s *Server) pumpShellOutput(stream grpc.ServerStream, shell *launcher.Shell, errCh chan<- error) {
	buf := make([]byte, 32*1024)
	for {
		n, readErr := shell.Ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if sendErr := stream.SendMsg(&ShellServerMessage{Stdout: chunk}); sendErr != nil {
				errCh <- sendErr
				return
			}
		}
		if readErr != nil {
			_ = stream.SendMsg(&ShellServerMessage{Exited: true, ExitCode: shell.Wait()})
			errCh <- nil
			return
		}
	}
}

func (s *Server) pumpShellInput(stream grpc.ServerStream, shell *launcher.Shell, errCh chan<- error) {
	for {
		var in ShellClientMessage
		if err := stream.RecvMsg(&in); err != nil {
			errCh <- err
			return
		}
		if in.Resize {
			_ = shell.Resize(in.Rows, in.Cols)
			continue
		}
		if len(in.Stdin) > 0 {
			if _, err := shell.Ptmx.Write(in.Stdin); err != nil {
				errCh <- err
				return
			}
		}
	}
}

// internalErrorMessage is the only detail a caller learns about an internal
// failure over gRPC; the real error is logged server-side only, mirroring
// internal/api/errors.go's HTTP handling of the same case.
const internalErrorMessage = "internal error"

// errMessage is mapError's counterpart for responses that carry their error
// as a string field instead of a gRPC status (WriteFile/ReadFile's
// best-effort per-call failures).
func errMessage(err error) string {
	if errors.Is(err, session.ErrInternal) {
		return internalErrorMessage
	}
	return err.Error()
}

// mapError translates the session package's error taxonomy to gRPC status
// codes, mirroring internal/api/errors.go's HTTP mapping for the same
// sentinel set.
func (s *Server) mapError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSnapshotNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrSessionDestroying):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, session.ErrPathEscape), errors.Is(err, session.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, session.ErrFileTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, session.ErrSpawnFailed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		s.logger.Error("internal error", "error", err)
		return status.Error(codes.Internal, internalErrorMessage)
	}
}
