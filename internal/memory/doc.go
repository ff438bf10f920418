// Package memory provides access to the address space of a target process.
//
// Everything above this package reads foreign memory through the Reader
// interface and decodes the returned bytes with bounds-checked accessors; no
// foreign address is ever converted into a Go pointer. Three readers exist:
//
//   - Process (Windows): ReadProcessMemory against a process handle. The
//     handle may be the current process, which is how the in-target service
//     reads its host without risking an access violation on a stale pointer.
//   - Image: a sparse, in-memory address space assembled from byte blocks.
//     Tests use it to lay out registries and records at chosen addresses.
//   - any user type that implements ReadMemory.
package memory
