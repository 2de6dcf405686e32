package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base *zap.SugaredLogger

// Init builds the process-wide JSON logger. Must be called once at startup
// before any other logger function.
func Init() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		level,
	)

	base = zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)).Sugar()
	base.Infow("logger initialized")
}

func Debug(msg string, fields map[string]any) {
	base.Debugw(msg, flatten(fields)...)
}

func Info(msg string, fields map[string]any) {
	base.Infow(msg, flatten(fields)...)
}

func Warn(msg string, fields map[string]any) {
	base.Warnw(msg, flatten(fields)...)
}

func Error(msg string, fields map[string]any) {
	base.Errorw(msg, flatten(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	base.Fatalw(msg, flatten(fields)...)
}

// Sync flushes buffered entries. Called once on shutdown.
func Sync() {
	_ = base.Sync()
}

func flatten(fields map[string]any) []any {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
