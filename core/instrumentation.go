package interview

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

const scopeName = "github.com/koscakluka/ema-interview/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	commitCounter, _         = meter.Int64Counter("interview.answers.committed")
	captureRestartCounter, _ = meter.Int64Counter("interview.capture.restarts")
)
