package server

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"platformserver/config"
)

// Log 是全局可用的 SugaredLogger，用于统一日志输出到文件
var Log *zap.SugaredLogger

// InitLogger 初始化 zap 日志到本地文件（支持滚动），按 cfg.Env 选择编码与级别：
// production 下输出 JSON 且只记录 Info 及以上，其余环境使用更易读的 console 编码并记录 Debug。
func InitLogger(cfg config.Config) error {
	lj := &lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}

	ws := zapcore.AddSync(lj)
	encCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		NameKey:       "logger",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stack",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	level := zapcore.DebugLevel
	var encoder zapcore.Encoder
	if cfg.IsProduction() {
		level = zapcore.InfoLevel
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(encoder, ws, level)

	// 添加调用者信息（文件:行号）
	logger := zap.New(core, zap.AddCaller())
	Log = logger.Sugar().With("env", cfg.Env)
	return nil
}

// SyncLogger 清理和同步缓冲
func SyncLogger() {
	if Log != nil {
		_ = Log.Sync()
	}
}
