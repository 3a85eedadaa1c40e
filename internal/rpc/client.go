package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Dial opens a connection to a boxd daemon's gRPC front door at target
// (host:port), wired with the same JSON codec the server forces.
func Dial(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	)
}

// ShellStream is a client-side handle on an AttachShell call: Send/Resize
// write to the remote PTY, Recv reads its combined output stream.
type ShellStream struct {
	stream grpc.ClientStream
}

// AttachShell opens an interactive shell against sessionID over conn,
// sized to cols/rows. apiKey is attached as a bearer token when non-empty.
func AttachShell(ctx context.Context, conn *grpc.ClientConn, apiKey, sessionID string, cols, rows uint16) (*ShellStream, error) {
	if apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+apiKey)
	}
	desc := &grpc.StreamDesc{StreamName: "AttachShell", ServerStreams: true, ClientStreams: true}
	stream, err := conn.NewStream(ctx, desc, "/"+serviceName+"/AttachShell")
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&ShellClientMessage{SessionID: sessionID, Cols: cols, Rows: rows}); err != nil {
		return nil, err
	}
	return &ShellStream{stream: stream}, nil
}

// Send writes a chunk of stdin to the remote shell.
func (s *ShellStream) Send(stdin []byte) error {
	return s.stream.SendMsg(&ShellClientMessage{Stdin: stdin})
}

// Resize notifies the remote shell of a new terminal size.
func (s *ShellStream) Resize(rows, cols uint16) error {
	return s.stream.SendMsg(&ShellClientMessage{Resize: true, Rows: rows, Cols: cols})
}

// Recv reads the next output chunk or exit notice from the remote shell.
func (s *ShellStream) Recv() (*ShellServerMessage, error) {
	msg := new(ShellServerMessage)
	if err := s.stream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// CloseSend half-closes the stream once the local stdin reaches EOF.
func (s *ShellStream) CloseSend() error {
	return s.stream.CloseSend()
}
