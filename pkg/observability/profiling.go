package observability

import (
	"os"

	"github.com/grafana/pyroscope-go"

	"livestream-pipeline/pkg/logger"
)

// StartProfiling 在配置了 PYROSCOPE_SERVER_ADDRESS 时启动持续性能分析，返回停止函数
func StartProfiling(appName string) func() {
	addr := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if addr == "" {
		return func() {}
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   addr,
		Logger:          logger.Raw(),
		Tags:            map[string]string{"hostname": hostname()},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		logger.Warnf("Pyroscope profiling disabled server=%s error=%v", addr, err)
		return func() {}
	}
	logger.Infof("Pyroscope profiling started app=%s server=%s", appName, addr)
	return func() { _ = profiler.Stop() }
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
