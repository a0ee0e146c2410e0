// Command mimamem inspects and serves the main memory of a MIMA machine.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/mimavm/mima/mimamem/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
