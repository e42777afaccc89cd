//go:build debug

package check

import "fmt"

// Assert panics with a Violation if cond is false. Only active in debug
// builds.
func Assert(cond bool, msg string) {
	if !cond {
		panic(Violation(msg))
	}
}

// Assertf is Assert with a formatted message.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(Violation(fmt.Sprintf(format, args...)))
	}
}
