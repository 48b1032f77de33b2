// Package invariants gates expensive consistency checks that are useful
// during development and testing but unnecessary overhead in a release
// build. It mirrors the sentinel pattern used throughout this codebase:
// an assertion that fires only when the invariants build tag is set.
package invariants

import "fmt"

// Enabled reports whether the invariants build tag is active. The
// default build excludes the extra assertions; run tests with
// `-tags invariants` to enable them.
const Enabled = enabled

// AssertFunc is invoked by Assert when the invariant does not hold and
// invariants are enabled. Tests may override it to capture the failure
// instead of panicking.
var AssertFunc = func(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// Assert panics (via AssertFunc) if cond is false and invariants are
// enabled. It is a no-op otherwise.
func Assert(cond bool, format string, args ...interface{}) {
	if Enabled && !cond {
		AssertFunc(format, args...)
	}
}
