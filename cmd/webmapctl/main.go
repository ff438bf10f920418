// Command webmapctl is the operator side of webmap: it finds the target
// process, loads the service module into it, and watches the map the service
// publishes.
package main

func main() {
	execute()
}
