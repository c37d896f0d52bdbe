package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithField(ctx, "order_number", "ORD-1-abcdef")
	log.Error(ctx, "boom", errors.New("boom"))

	out := buf.String()
	require.Contains(t, out, `"request_id":"req-123"`)
	require.Contains(t, out, `"order_number":"ORD-1-abcdef"`)
	require.Contains(t, out, `"error":"boom"`)
	require.Contains(t, out, `"service":"test"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.WarnLevel, Output: buf})

	log.Info(context.Background(), "quiet")
	require.Empty(t, buf.String())

	log.Warn(context.Background(), "loud", nil)
	require.Contains(t, buf.String(), "loud")
}

func TestParseLevelDefaults(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	require.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
}

func TestFromContextUsesRequestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	ctx := log.WithRequestID(context.Background(), "req-9")

	FromContext(ctx).Info(ctx, "hello")
	require.Contains(t, buf.String(), `"request_id":"req-9"`)

	FromContext(context.Background()).Info(context.Background(), "dropped")
	require.NotContains(t, buf.String(), "dropped")
}
