// Command webmapsvc is the service module. Build it as a DLL and load it
// into the target process:
//
//	go build -buildmode=c-shared -o webmapsvc.dll ./cmd/webmapsvc
//
// Loading starts the service on a background goroutine; there are no
// exported entry points.
package main

import "C"

func main() {}
