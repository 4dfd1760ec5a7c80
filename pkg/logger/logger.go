package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"livestream-pipeline/pkg/config"
)

// Logger 基于 logrus 的日志服务
type Logger struct {
	entry *logrus.Logger
	file  *os.File
}

var global atomic.Pointer[Logger]

func init() {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	global.Store(&Logger{entry: l})
}

// NewLogger 根据配置创建日志服务
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()
	out := &Logger{entry: l}

	var logCfg config.LogConfig
	if cfg != nil {
		logCfg = cfg.Log
	}

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(logCfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(logCfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var writer io.Writer = os.Stdout
	if strings.EqualFold(logCfg.Output, "file") && logCfg.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(logCfg.Filename), 0o755); err == nil {
			f, err := os.OpenFile(logCfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				out.file = f
				writer = io.MultiWriter(os.Stdout, f)
			}
		}
	}
	l.SetOutput(writer)
	return out
}

// NewWithWriter 测试使用
func NewWithWriter(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{entry: l}
}

// SetGlobalLogger 设置全局日志器
func SetGlobalLogger(l *Logger) {
	if l != nil {
		global.Store(l)
	}
}

// Close 关闭日志文件
func (l *Logger) Close() {
	if l != nil && l.file != nil {
		_ = l.file.Close()
	}
}

func current() *logrus.Logger {
	return global.Load().entry
}

func withFields(fields []map[string]interface{}) *logrus.Entry {
	entry := logrus.NewEntry(current())
	for _, f := range fields {
		if len(f) > 0 {
			entry = entry.WithFields(logrus.Fields(f))
		}
	}
	return entry
}

func Debug(msg string, fields ...map[string]interface{}) { withFields(fields).Debug(msg) }
func Info(msg string, fields ...map[string]interface{})  { withFields(fields).Info(msg) }
func Warn(msg string, fields ...map[string]interface{})  { withFields(fields).Warn(msg) }
func Error(msg string, fields ...map[string]interface{}) { withFields(fields).Error(msg) }

func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { current().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { current().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }

// Fatal 记录日志后退出进程
func Fatal(msg string, fields ...map[string]interface{}) {
	withFields(fields).Fatal(msg)
}

// Raw 暴露底层 logrus 实例，供需要 Infof/Debugf/Errorf 接口的库使用
func Raw() *logrus.Logger {
	return current()
}
