// Command dsctl is a one-shot CLI client for driving or inspecting a
// robot connection directly — unlike dsdaemon, it owns the 50 Hz link
// only for the lifetime of a single command, not as a long-running
// service.
package main

import "github.com/frcnet/godriverstation/cmd/dsctl/commands"

func main() {
	commands.Execute()
}
