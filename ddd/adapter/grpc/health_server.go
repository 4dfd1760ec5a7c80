package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"livestream-pipeline/pkg/logger"
)

// CheckFunc 依赖探活，返回 nil 表示可用
type CheckFunc func(ctx context.Context) error

// HealthServer 标准 gRPC 健康检查，整体状态为所有依赖状态的与
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	checks map[string]CheckFunc
}

func NewHealthServer(checks map[string]CheckFunc) *HealthServer {
	h := &HealthServer{
		server: grpc.NewServer(),
		health: health.NewServer(),
		checks: checks,
	}
	healthpb.RegisterHealthServer(h.server, h.health)
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Refresh 执行一次探活并更新各依赖及整体状态
func (h *HealthServer) Refresh(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, check := range h.checks {
		status := healthpb.HealthCheckResponse_SERVING
		if err := check(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
			logger.Warnf("Health check failed dependency=%s error=%v", name, err)
		}
		h.health.SetServingStatus(name, status)
	}
	h.health.SetServingStatus("", overall)
}

// Serve 阻塞直到 Stop
func (h *HealthServer) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	logger.Infof("gRPC health server listening addr=%s", addr)
	return h.server.Serve(lis)
}

// Watch 周期性刷新直到 ctx 结束
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	h.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
