package main

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLoggerProvider routes OpenTelemetry log records, such as the ones the
// interview engine emits through otelslog, into a zap logger.
type zapLoggerProvider struct {
	embedded.LoggerProvider

	log *zap.Logger
}

func newZapLoggerProvider(log *zap.Logger) *zapLoggerProvider {
	return &zapLoggerProvider{log: log}
}

func (p *zapLoggerProvider) Logger(name string, _ ...otellog.LoggerOption) otellog.Logger {
	log := p.log
	if name != "" {
		log = log.Named(name)
	}
	return &zapRecordLogger{log: log}
}

type zapRecordLogger struct {
	embedded.Logger

	log *zap.Logger
}

func (l *zapRecordLogger) Emit(_ context.Context, record otellog.Record) {
	ce := l.log.Check(zapLevel(record.Severity()), record.Body().String())
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, record.AttributesLen())
	record.WalkAttributes(func(kv otellog.KeyValue) bool {
		fields = append(fields, zapField(kv))
		return true
	})
	if ts := record.Timestamp(); !ts.IsZero() {
		ce.Time = ts
	}
	ce.Write(fields...)
}

func (l *zapRecordLogger) Enabled(_ context.Context, param otellog.EnabledParameters) bool {
	return l.log.Core().Enabled(zapLevel(param.Severity))
}

func zapLevel(severity otellog.Severity) zapcore.Level {
	// Fatal records stay at error level. A zap fatal entry exits the process.
	switch {
	case severity >= otellog.SeverityError:
		return zapcore.ErrorLevel
	case severity >= otellog.SeverityWarn:
		return zapcore.WarnLevel
	case severity >= otellog.SeverityInfo, severity == otellog.SeverityUndefined:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

func zapField(kv otellog.KeyValue) zap.Field {
	switch kv.Value.Kind() {
	case otellog.KindBool:
		return zap.Bool(kv.Key, kv.Value.AsBool())
	case otellog.KindInt64:
		return zap.Int64(kv.Key, kv.Value.AsInt64())
	case otellog.KindFloat64:
		return zap.Float64(kv.Key, kv.Value.AsFloat64())
	case otellog.KindString:
		return zap.String(kv.Key, kv.Value.AsString())
	case otellog.KindBytes:
		return zap.Binary(kv.Key, kv.Value.AsBytes())
	default:
		return zap.String(kv.Key, kv.Value.String())
	}
}
