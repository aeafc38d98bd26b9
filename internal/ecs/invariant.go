package ecs

import (
	"fmt"
	"log/slog"
)

// Invariant checks a core consistency condition. In builds tagged simdebug a failed
// check panics; otherwise it is logged and the caller treats the data as absent.
// It returns ok so call sites can guard: if !ecs.Invariant(...) { continue }.
func Invariant(ok bool, msg string, args ...any) bool {
	if ok {
		return true
	}
	if strictInvariants {
		panic(fmt.Sprintf("invariant violated: %s %v", msg, args))
	}
	slog.Warn("invariant violated", append([]any{"check", msg}, args...)...)
	return false
}
