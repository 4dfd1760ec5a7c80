package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	grpcAdapter "livestream-pipeline/ddd/adapter/grpc"
	httpAdapter "livestream-pipeline/ddd/adapter/http"
	"livestream-pipeline/internal/resource"
	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/kafka"
	"livestream-pipeline/pkg/logger"
	"livestream-pipeline/pkg/manager"
	"livestream-pipeline/pkg/registry"
	"livestream-pipeline/pkg/task"
)

func Run() {
	// 先使用标准输出确保能看到日志
	fmt.Println("[STARTUP] Starting livestream pipeline...")

	cfgPath := ResolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	// 设置全局配置（必须在资源管理器初始化之前）
	config.SetGlobalConfig(cfg)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Info("Config loaded", map[string]interface{}{
		"path":   cfgPath,
		"level":  cfg.Log.Level,
		"format": cfg.Log.Format,
	})

	manager.MustInitResources()
	defer manager.CloseResources()
	logger.Infof("Resources initialized")

	if cfg.Kafka.Enabled {
		ensureTopics(cfg)
	}

	registerPlugins()
	deps := &manager.Dependencies{
		DB:     resource.DefaultMysqlResource().MainDB(),
		Config: cfg,
	}
	manager.MustInitComponents(deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := task.StartAll(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Background tasks started names=%v", task.Names())

	// gRPC 健康检查
	grpcAddr := net.JoinHostPort(cfg.GRPCServer.Host, strconv.Itoa(cfg.GRPCServer.Port))
	healthServer := grpcAdapter.NewHealthServer(dependencyChecks())
	go healthServer.Watch(ctx, 15*time.Second)
	go func() {
		if err := healthServer.Serve(grpcAddr); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Errorf("gRPC server encountered an error error=%v", err)
		}
	}()

	var serviceRegistry *registry.ServiceRegistry
	if cfg.ServiceRegistry.Enabled {
		serviceRegistry = mustRegister(cfg, grpcAddr)
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      httpAdapter.NewEngine(cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started addr=%s", server.Addr)

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Received shutdown signal, shutting down...")

	if serviceRegistry != nil {
		if err := serviceRegistry.Deregister(); err != nil {
			logger.Warnf("Deregister failed error=%v", err)
		}
	}
	healthServer.Stop()

	// 先取消上下文，正在等待重试的转写会立刻返回
	cancel()
	task.StopAll()
	manager.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to close error=%v", err)
	}

	logger.Infof("Livestream pipeline exited")
	logService.Close()
}

func dependencyChecks() map[string]grpcAdapter.CheckFunc {
	return map[string]grpcAdapter.CheckFunc{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := resource.DefaultMysqlResource().MainDB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return resource.DefaultRedisResource().Client().Ping(ctx).Err()
		},
	}
}

func ensureTopics(cfg *config.Config) {
	topics := cfg.Kafka.Topics
	for _, topic := range []string{topics.ObjectEvents, topics.UserLivestreamChanges, topics.TranscriptionEvents} {
		if topic == "" {
			continue
		}
		if err := kafka.DefaultClient().EnsureTopic(topic, 1, 1); err != nil {
			logger.Warnf("Ensure kafka topic failed topic=%s error=%v", topic, err)
		}
	}
}

func mustRegister(cfg *config.Config, grpcAddr string) *registry.ServiceRegistry {
	regCfg := cfg.ServiceRegistry
	if regCfg.ServiceID == "" {
		host, _ := os.Hostname()
		regCfg.ServiceID = fmt.Sprintf("%s-%s", regCfg.ServiceName, host)
	}
	addr := grpcAddr
	if regCfg.RegisterHost != "" {
		addr = net.JoinHostPort(regCfg.RegisterHost, strconv.Itoa(cfg.GRPCServer.Port))
	}
	r, err := registry.NewServiceRegistry(cfg.Etcd, regCfg, addr)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to create service registry error=%v", err))
	}
	if err := r.Register(); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to register service error=%v", err))
	}
	return r
}

// ResolveConfigPath 根据环境选择配置文件，支持CONFIG_PATH覆盖、CONFIG_ENV区分环境
func ResolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config_prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
