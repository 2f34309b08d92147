package agentlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestBuild_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup, err := New().SetOutput(&buf).SetLevel(slog.LevelDebug).Build()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })

	ctx := context.Background()
	l.Debug(ctx, "debug msg")
	l.Info(ctx, "info msg", Component("binder"))
	l.Warn(ctx, "warn msg", Err(errors.New("boom")))
	l.Error(ctx, "error msg", Err(nil))

	out := buf.String()
	for _, want := range []string{"debug msg", "info msg", "component=binder", "error=boom", "error msg"} {
		assert.Contains(t, out, want)
	}
}

func TestBuild_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New().SetOutput(&buf).SetFormat(" JSON ").Build()
	require.NoError(t, err)

	l.Info(context.Background(), "hello", slog.Int("arity", 2))
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"arity":2`)
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, _, err := New().SetFormat("xml").SetLevelString("debug").Build()
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, _, err = New().SetLevelString("verbose").SetFormat("xml").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown level")

	_, _, err = New().SetRotation("  ", RotationConfig{}).Build()
	require.Error(t, err)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New().SetOutput(&buf).SetLevelString("warn").Build()
	require.NoError(t, err)

	ctx := context.Background()
	l.Info(ctx, "hidden")
	assert.Empty(t, buf.String())
	assert.False(t, l.Enabled(ctx, slog.LevelInfo))

	child := l.With(slog.String("k", "v"))
	child.SetLevel(slog.LevelDebug)
	l.Debug(ctx, "visible after child change")
	assert.Contains(t, buf.String(), "visible after child change")
}

func TestLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New().SetOutput(&buf).Build()
	require.NoError(t, err)

	//nolint:staticcheck // 验证 nil ctx 不 panic
	l.Info(nil, "nil ctx")
	assert.Contains(t, buf.String(), "nil ctx")
}

func TestLogger_WriteErrorIsCounted(t *testing.T) {
	var seen error
	l, _, err := New().
		SetOutput(failingWriter{}).
		SetOnError(func(err error) {
			seen = err
			panic("callback panic must not escape")
		}).
		Build()
	require.NoError(t, err)

	assert.NotPanics(t, func() { l.Error(context.Background(), "lost") })
	require.Error(t, seen)
	// 一次写入失败 + 一次回调 panic
	assert.Equal(t, uint64(2), ErrorCount(l))
}

func TestSetRotation_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	l, cleanup, err := New().SetRotation(path, RotationConfig{MaxSizeMB: 1}).Build()
	require.NoError(t, err)

	l.Info(context.Background(), "rotated")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup(), "cleanup must be idempotent")
	assert.FileExists(t, path)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	assert.NotPanics(t, func() { l.Error(context.Background(), "dropped") })
	assert.Equal(t, uint64(0), ErrorCount(l))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
