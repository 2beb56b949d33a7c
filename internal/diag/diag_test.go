package diag

import (
	"io"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %s", err)
	}
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()
	w.Close()
	out, _ := io.ReadAll(r)
	return string(out)
}

func TestErrorfPrefixesAndWritesToStderr(t *testing.T) {
	out := capture(t, func() { Errorf("boom: %d", 42) })
	if !strings.Contains(out, "cheshire: boom: 42") {
		t.Errorf("got %q", out)
	}
}

func TestWarnfPrefixesWarning(t *testing.T) {
	out := capture(t, func() { Warnf("heads up") })
	if !strings.Contains(out, "cheshire: warning: heads up") {
		t.Errorf("got %q", out)
	}
}

func TestTracefSilentUnlessVerbose(t *testing.T) {
	Verbose = false
	out := capture(t, func() { Tracef("should not print") })
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}

	Verbose = true
	defer func() { Verbose = false }()
	out = capture(t, func() { Tracef("should print") })
	if !strings.Contains(out, "cheshire: trace: should print") {
		t.Errorf("got %q", out)
	}
}
