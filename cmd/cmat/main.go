package main

import "github.com/troyzx/cmat/internal/cli"

func main() {
	cli.Execute()
}
