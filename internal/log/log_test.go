package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	underlying := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(&filteringHandler{underlying: underlying}), buf
}

func TestSectionsFilterRecords(t *testing.T) {
	logger, buf := newTestLogger()

	logger.Debug("no section")
	assert.Empty(t, buf.String())

	logger.Debug("unknown section", "section", "codegen")
	assert.Empty(t, buf.String())

	logger.Debug("record section", "section", "solve")
	assert.Contains(t, buf.String(), "record section")

	buf.Reset()
	logger.Warn("warnings always pass")
	assert.Contains(t, buf.String(), "warnings always pass")
}

func TestSectionOfDerivedLoggers(t *testing.T) {
	logger, buf := newTestLogger()

	logger.With("section", "infer").Debug("from infer", "var", "a1")
	assert.Contains(t, buf.String(), "from infer")
	assert.Contains(t, buf.String(), "section=infer")

	buf.Reset()
	logger.With("section", "codegen").Debug("from codegen")
	assert.Empty(t, buf.String())

	// the section survives groups
	logger.With("section", "analysis").WithGroup("graph").Debug("in group", "edges", 2)
	assert.Contains(t, buf.String(), "graph.edges=2")
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(slog.LevelWarn)

	assert.False(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))
	SetLevel(slog.LevelDebug)
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))
}
