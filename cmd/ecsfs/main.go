// Command ecsfs formats ECS150FS volume images and moves files in and out of them.
package main

import (
	"os"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
