// Command wasmtool decodes and validates a WebAssembly 1.0 binary module
// and, on request, prints a human-readable dump of it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jprendes/whasm/binary"
	"github.com/jprendes/whasm/wasm"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

// doMain is separated out for the purpose of unit testing.
func doMain(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("wasmtool", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var print bool
	flags.BoolVar(&print, "p", false, "print a human-readable dump of the decoded module")
	flags.BoolVar(&print, "print", false, "print a human-readable dump of the decoded module")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(stdErr, "usage: wasmtool [-p|--print] FILE.wasm")
		return 1
	}

	path := flags.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdErr, "wasmtool: %v\n", err)
		return 1
	}

	m, err := binary.DecodeModule(data)
	if err != nil {
		fmt.Fprintf(stdErr, "wasmtool: %v\n", err)
		return 1
	}

	mt, err := wasm.Validate(m)
	if err != nil {
		fmt.Fprintf(stdErr, "wasmtool: %v\n", err)
		return 1
	}

	if print {
		m.Fprint(stdOut)
		wasm.FprintTypes(stdOut, mt)
	}

	return 0
}
