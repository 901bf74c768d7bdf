// Package logging 提供 zap Logger 的标准构建方式。
// 库内各组件默认使用 zap.NewNop()，只有显式注入时才产生输出。
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 构建一个标准配置的 zap Logger。
// json 为 true 时输出 JSON 编码（生产），否则输出 console 编码（开发）；
// debug 为 true 时放开 Debug 级别。
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}
	return cfg.Build()
}

// OrNop 返回 logger 本身，logger 为 nil 时返回 Nop Logger。
// 各组件在构造时统一经过此函数，避免空指针检查散落各处。
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
