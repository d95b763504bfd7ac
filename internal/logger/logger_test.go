package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"election-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextIsAttached(t *testing.T) {
	var buf bytes.Buffer
	useJSON := true
	log := logger.NewWithOptions(logger.Options{Output: &buf, JSON: &useJSON, Level: "debug"})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	log.InfoContext(ctx, "vote recorded", "voter_id", 7)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "vote recorded", record["msg"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", record["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", record["span_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	useJSON := true
	log := logger.NewWithOptions(logger.Options{Output: &buf, JSON: &useJSON, Level: "warn"})

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestColorTextHandlerMarksErrors(t *testing.T) {
	var buf bytes.Buffer
	useJSON := false
	log := logger.NewWithOptions(logger.Options{Output: &buf, JSON: &useJSON})

	log.Error("tally failed")
	assert.Contains(t, buf.String(), "[31mtally failed")
}
