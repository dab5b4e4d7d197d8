package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: levelVar})))
	t.Cleanup(func() {
		SetOutput(slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)))
	})
	return buf
}

func TestLogger_ComponentAndFields(t *testing.T) {
	buf := capture(t)
	SetLevel(INFO)

	InfoCF("dispatch", "Processing update", map[string]any{"update_id": 42})

	out := buf.String()
	if !strings.Contains(out, "component=dispatch") {
		t.Errorf("missing component attr: %s", out)
	}
	if !strings.Contains(out, "update_id=42") {
		t.Errorf("missing field attr: %s", out)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	buf := capture(t)

	SetLevel(WARN)
	InfoC("poller", "should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %s", buf.String())
	}

	SetLevel(DEBUG)
	DebugC("poller", "now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("debug dropped at debug level")
	}
}
