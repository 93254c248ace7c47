// Command uvcmonitor inspects a UVC camera and manages its stored stream selection.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
