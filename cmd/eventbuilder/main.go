// Package main implements the entry point for the event builder.
//
// With a single positional argument, it decodes a raw detector capture
// file into CSV on stdout and exits. With the "serve" subcommand, it runs
// the ingest/builder/merger pipeline against live TCP fragment traffic.
// With the "simulate" subcommand, it replays a CSV fragment stream at a
// running ingest server, for exercising the pipeline end to end without a
// real capture source.
package main

import (
	"fmt"
	"os"
	"runtime"
)

const appName = "eventbuilder"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("missing argument")
	}

	switch args[0] {
	case "serve":
		return runServe(args[1:])
	case "simulate":
		return runSimulate(args[1:])
	case "-h", "--help", "help":
		printUsage()
		return nil
	default:
		return runDecode(args[0])
	}
}

func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - detector fragment event builder

Usage:
  %s <raw-capture-file>        decode a raw capture to CSV on stdout
  %s serve [flags]             run the ingest/builder/merger pipeline
  %s simulate <addr> <csv-file> replay a CSV fragment stream at a running server
`, appName, appName, appName, appName)
}
