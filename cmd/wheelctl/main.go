// Command wheelctl lays out, analyses and watches consequence wheels from
// the terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
