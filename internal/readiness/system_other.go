//go:build !windows

package readiness

// System is a process-local namespace outside Windows, where named kernel
// events do not exist.
var System Namespace = NewMemoryNamespace()
