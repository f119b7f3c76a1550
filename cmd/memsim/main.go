// Command memsim is an interactive physical memory and cache simulator.
package main

import "github.com/sarchlab/memsim/cmd/memsim/cmd"

func main() {
	cmd.Execute()
}
