package config

import "sync/atomic"

var globalConfig atomic.Pointer[Config]

// SetGlobalConfig 设置全局配置
func SetGlobalConfig(cfg *Config) {
	globalConfig.Store(cfg)
}

// GetGlobalConfig 获取全局配置，未初始化时返回 nil
func GetGlobalConfig() *Config {
	return globalConfig.Load()
}
