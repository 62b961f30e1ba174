package main

import "github.com/agentic-research/rosgraph/cmd"

func main() {
	cmd.Execute()
}
