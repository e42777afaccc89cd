// Package check holds internal invariant assertions. They panic in builds
// tagged debug and compile to nothing otherwise.
package check

// Violation is the panic value of a failed assertion.
type Violation string

func (v Violation) Error() string {
	return "assertion failed: " + string(v)
}
