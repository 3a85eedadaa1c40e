package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// serviceName matches the package/service path a .proto definition for this
// contract would declare, kept stable so client stubs generated from such a
// file would resolve against this hand-registered service unchanged.
const serviceName = "boxd.v1.Sandbox"

// serviceDesc is the hand-written equivalent of a protoc-generated
// grpc.ServiceDesc for the Sandbox service: one Methods entry per RPC, each
// decoding its request via the codec registered in codec.go and dispatching
// to the Server method of the same name.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*sandboxServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunCommand", Handler: runCommandHandler},
		{MethodName: "WriteFile", Handler: writeFileHandler},
		{MethodName: "ReadFile", Handler: readFileHandler},
		{MethodName: "SetEnv", Handler: setEnvHandler},
		{MethodName: "SetCwd", Handler: setCwdHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "AttachShell", Handler: attachShellHandler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "internal/rpc/sandbox.proto",
}

// sandboxServer is the interface grpc.ServiceDesc.HandlerType is declared
// against; *Server implements it.
type sandboxServer interface {
	RunCommand(ctx context.Context, req *RunCommandRequest) (*RunCommandResponse, error)
	WriteFile(ctx context.Context, req *WriteFileRequest) (*WriteFileResponse, error)
	ReadFile(ctx context.Context, req *ReadFileRequest) (*ReadFileResponse, error)
	SetEnv(ctx context.Context, req *SetEnvRequest) (*SetEnvResponse, error)
	SetCwd(ctx context.Context, req *SetCwdRequest) (*SetCwdResponse, error)
	AttachShell(stream grpc.ServerStream) error
}

func attachShellHandler(srv any, stream grpc.ServerStream) error {
	return srv.(sandboxServer).AttachShell(stream)
}

func runCommandHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RunCommandRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sandboxServer).RunCommand(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/RunCommand"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(sandboxServer).RunCommand(ctx, req.(*RunCommandRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func writeFileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(WriteFileRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sandboxServer).WriteFile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/WriteFile"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(sandboxServer).WriteFile(ctx, req.(*WriteFileRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func readFileHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReadFileRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sandboxServer).ReadFile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ReadFile"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(sandboxServer).ReadFile(ctx, req.(*ReadFileRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func setEnvHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SetEnvRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sandboxServer).SetEnv(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/SetEnv"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(sandboxServer).SetEnv(ctx, req.(*SetEnvRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func setCwdHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SetCwdRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(sandboxServer).SetCwd(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/SetCwd"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(sandboxServer).SetCwd(ctx, req.(*SetCwdRequest))
	}
	return interceptor(ctx, in, info, handler)
}
