// Package observability contains logging setup for the twinlink daemon.
package observability

import (
    "os"
    "path/filepath"
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "gopkg.in/natefinch/lumberjack.v2"

    "twinlink/pkg/config"
)

// SetupLogger builds a zap.Logger from the provided configuration, sets it as
// the global logger, and redirects the stdlib log package. The caller should
// defer logger.Sync().
func SetupLogger(c config.LogConfig) (*zap.Logger, error) {
    level := parseLevel(c.Level)
    enc := newEncoder(c)

    cores := make([]zapcore.Core, 0, len(c.Outputs))
    for _, out := range c.Outputs {
        cores = append(cores, zapcore.NewCore(enc, newSink(out, c.Rotation), level))
    }

    opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}
    if c.Development {
        opts = append(opts, zap.Development())
    }

    logger := zap.New(zapcore.NewTee(cores...), opts...)
    zap.ReplaceGlobals(logger)
    _, _ = zap.RedirectStdLogAt(logger, zap.InfoLevel)
    return logger, nil
}

// parseLevel maps the config level string to an atomic level, defaulting
// to info for anything it does not recognize.
func parseLevel(s string) zap.AtomicLevel {
    lvl := zap.NewAtomicLevel()
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "debug":
        lvl.SetLevel(zap.DebugLevel)
    case "warn", "warning":
        lvl.SetLevel(zap.WarnLevel)
    case "error":
        lvl.SetLevel(zap.ErrorLevel)
    default:
        lvl.SetLevel(zap.InfoLevel)
    }
    return lvl
}

func newEncoder(c config.LogConfig) zapcore.Encoder {
    if strings.ToLower(c.Format) == "json" {
        return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
    }
    ec := zap.NewDevelopmentEncoderConfig()
    if c.Development {
        ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }
    return zapcore.NewConsoleEncoder(ec)
}

// newSink resolves one configured output to a write syncer. File outputs go
// through lumberjack when rotation is enabled; a file that cannot be opened
// falls back to stderr rather than failing the whole setup.
func newSink(out string, r config.RotationConfig) zapcore.WriteSyncer {
    switch strings.ToLower(out) {
    case "stdout":
        return zapcore.AddSync(os.Stdout)
    case "stderr":
        return zapcore.AddSync(os.Stderr)
    }

    if r.Enable {
        name := out
        if strings.TrimSpace(r.Filename) != "" {
            name = r.Filename
        }
        return zapcore.AddSync(&lumberjack.Logger{
            Filename:   name,
            MaxSize:    orDefault(r.MaxSizeMB, 10),
            MaxBackups: orDefault(r.MaxBackups, 1),
            MaxAge:     orDefault(r.MaxAgeDays, 7),
            Compress:   r.Compress,
        })
    }

    if dir := filepath.Dir(out); dir != "." {
        _ = os.MkdirAll(dir, 0o755)
    }
    f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
    if err != nil {
        return zapcore.AddSync(os.Stderr)
    }
    return zapcore.AddSync(f)
}

func orDefault(v, d int) int {
    if v > 0 {
        return v
    }
    return d
}
