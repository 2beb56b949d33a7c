package history

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndRecall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %s", err)
	}
	defer store.Close()

	forms := []string{"(+ 1 2)", "(* 3 4)", "(define x 5)"}
	for _, f := range forms {
		if err := store.Record(Entry{
			SessionID: "s1",
			Form:      f,
			Duration:  time.Millisecond,
			EvalCount: 1,
		}); err != nil {
			t.Fatalf("record: %s", err)
		}
	}

	got, err := store.Recall(2)
	if err != nil {
		t.Fatalf("recall: %s", err)
	}
	want := []string{"(* 3 4)", "(define x 5)"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecallOnEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %s", err)
	}
	defer store.Close()

	got, err := store.Recall(5)
	if err != nil {
		t.Fatalf("recall: %s", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %v", got)
	}
}
