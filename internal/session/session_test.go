package session

import "testing"

func TestNewProducesDistinctIDs(t *testing.T) {
	a := New()
	b := New()
	if a == b {
		t.Fatal("expected two distinct session IDs")
	}
}

func TestStringRoundTrips(t *testing.T) {
	id := New()
	if id.String() == "" {
		t.Fatal("expected a non-empty string representation")
	}
}

func TestContinuationLabel(t *testing.T) {
	id := New()
	label := ContinuationLabel(id)
	want := "cont:" + id.String()
	if label != want {
		t.Errorf("got %q, want %q", label, want)
	}
}
