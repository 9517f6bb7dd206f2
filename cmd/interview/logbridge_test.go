package main

import (
	"context"
	"testing"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerProviderWritesEngineLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	provider := newZapLoggerProvider(zap.New(core))

	logger := otelslog.NewLogger("interview", otelslog.WithLoggerProvider(provider))
	logger.Debug("dropped below the configured level")
	logger.Warn("speech capture error", "state", "awaiting response", "questions", 3)

	if count := logs.Len(); count != 1 {
		t.Fatalf("expected a single entry, got %d", count)
	}
	entry := logs.All()[0]
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %s", entry.Level)
	}
	if entry.Message != "speech capture error" {
		t.Fatalf("expected engine message, got %q", entry.Message)
	}
	if entry.LoggerName != "interview" {
		t.Fatalf("expected logger to be named after the scope, got %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["state"] != "awaiting response" || fields["questions"] != int64(3) {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestZapLoggerProviderKeepsFatalRecordsAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newZapLoggerProvider(zap.New(core)).Logger("")

	var record otellog.Record
	record.SetSeverity(otellog.SeverityFatal)
	record.SetBody(otellog.StringValue("unrecoverable"))
	record.AddAttributes(otellog.Bool("retry", false))
	logger.Emit(context.Background(), record)

	if count := logs.Len(); count != 1 {
		t.Fatalf("expected a single entry, got %d", count)
	}
	entry := logs.All()[0]
	if entry.Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entry.Level)
	}
	if entry.ContextMap()["retry"] != false {
		t.Fatalf("expected bool field, got %v", entry.ContextMap())
	}
	if !logger.Enabled(context.Background(), otellog.EnabledParameters{Severity: otellog.SeverityDebug}) {
		t.Fatalf("expected debug records to be enabled at debug level")
	}
}
