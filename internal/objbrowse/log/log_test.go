package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupAndRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, true)
	if !Initialized() {
		t.Fatal("Setup did not initialize")
	}
	slog.Debug("visible at debug")

	cleaned := false
	func() {
		defer RecoverPanic("worker", func() { cleaned = true })
		panic("bad state")
	}()

	if !cleaned {
		t.Error("cleanup not called")
	}
	out := buf.String()
	for _, want := range []string{"visible at debug", "Panic in worker", "bad state"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
