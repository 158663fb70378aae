package main

import "commit-analyzer/cmd"

func main() {
	cmd.Execute()
}
