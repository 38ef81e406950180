package main

import (
	"fmt"
	"os"

	"github.com/rendis/resume-forge/cmd/api/bootstrap"
)

func main() {
	if err := bootstrap.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
