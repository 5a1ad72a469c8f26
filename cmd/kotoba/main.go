package main

import "os"

func main() {
	os.Exit(run())
}

// run executes the root command and returns a process exit code, kept
// separate from main so it stays testable.
func run() int {
	if err := Execute(); err != nil {
		return 1
	}
	return 0
}
