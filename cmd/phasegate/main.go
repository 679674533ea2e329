// phasegate mediates file modifications made by coding agents, gating them
// on the research → planning → implementation workflow.
package main

import "github.com/ppiankov/phasegate/internal/cli"

func main() {
	cli.Execute()
}
