package logger

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l, flush := New(Options{Level: "warn", JSON: true, Out: zapcore.AddSync(&buf)})
	l.Info("hidden")
	l.Warn("shown", zap.String("k", "v"))
	flush()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestToWriterAndRedirect(t *testing.T) {
	var buf bytes.Buffer
	l, flush := New(Options{Level: "debug", JSON: true, Out: zapcore.AddSync(&buf)})
	defer flush()

	_, err := fmt.Fprint(ToWriter(l, zapcore.InfoLevel), "from gin\n")
	require.NoError(t, err)

	undo := RedirectStdLog(l, zapcore.WarnLevel)
	log.Print("from std")
	undo()

	out := buf.String()
	assert.Contains(t, out, `"msg":"from gin"`)
	assert.Contains(t, out, `"msg":"from std"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestNew_RotateFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "app.log")
	l, flush := New(Options{
		Level:  "info",
		Out:    zapcore.AddSync(&buf),
		Rotate: FileRotate{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("to file")
	flush()
	assert.FileExists(t, file)
}
