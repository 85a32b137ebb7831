package main

import (
	cmd "github.com/rohmanhakim/repo-manifest/internal/cli"
)

func main() {
	cmd.Execute()
}
