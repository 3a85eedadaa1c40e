package main

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/sandkasten-run/boxd/internal/config"
	"github.com/sandkasten-run/boxd/internal/rpc"
	"github.com/sandkasten-run/boxd/internal/session"
)

type grpcServerHandle struct {
	server *grpc.Server
}

// startGRPCServer starts the gRPC fast path (component H's hot path) on its
// own listener alongside the HTTP front door, both backed by registry.
func startGRPCServer(cfg *config.Config, registry *session.Registry, logger *slog.Logger) (*grpcServerHandle, error) {
	lis, err := net.Listen("tcp", cfg.GRPC.Listen)
	if err != nil {
		return nil, err
	}

	rpcSrv := rpc.NewServer(registry, cfg.MaxReadBytes, logger)
	grpcServer := rpc.NewGRPCServer(cfg.APIKey)
	rpc.Register(grpcServer, rpcSrv)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server error", "error", err)
		}
	}()

	return &grpcServerHandle{server: grpcServer}, nil
}
