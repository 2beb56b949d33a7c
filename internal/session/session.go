// Package session tags REPL/load invocations and captured continuations
// with a UUID, purely for diagnostic correlation — multiple live
// continuations are otherwise indistinguishable in printed output without
// leaking Go pointer identity into user-visible text.
package session

import "github.com/google/uuid"

// ID is a diagnostic-only identifier; it has no bearing on language
// semantics.
type ID uuid.UUID

func New() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// ContinuationLabel formats the `cont:<uuid>` label a continuation's
// printed form (`#<continuation cont:...>`) uses to tell captured
// continuations apart.
func ContinuationLabel(id ID) string {
	return "cont:" + id.String()
}
